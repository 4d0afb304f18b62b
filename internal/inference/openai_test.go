package inference_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/require"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/inference"
)

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":   0,
				"message": map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func newChatClient(t *testing.T, handler http.HandlerFunc) *inference.ChatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return inference.NewChat("test-key", "test-model", nil,
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
}

func TestChatAnswerBuildsPrompt(t *testing.T) {
	client := newChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var in struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "test-model", in.Model)
		require.Len(t, in.Messages, 1)
		require.Equal(t, "user", in.Messages[0].Role)
		require.Equal(t,
			"query: what happened in france Answer in 150 words. context: title: description\n",
			in.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("a lot happened"))
	})

	answer, err := client.Answer(context.Background(), inference.Request{
		Question: "what happened in france",
		Context:  "title: description\n",
	})
	require.NoError(t, err)
	require.Equal(t, "a lot happened", answer)
}

func TestChatAnswerOmitsEmptyContext(t *testing.T) {
	client := newChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "query: what happened Answer in 150 words. ", in.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("answer"))
	})

	answer, err := client.Answer(context.Background(), inference.Request{Question: "what happened"})
	require.NoError(t, err)
	require.Equal(t, "answer", answer)
}

func TestChatEmptyChoicesIsUnavailable(t *testing.T) {
	client := newChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []any{},
		})
	})

	_, err := client.Answer(context.Background(), inference.Request{Question: "q"})
	require.ErrorIs(t, err, inference.ErrUnavailable)
}

func TestChatEmptyContentDefaults(t *testing.T) {
	client := newChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(""))
	})

	answer, err := client.Answer(context.Background(), inference.Request{Question: "q"})
	require.NoError(t, err)
	require.Equal(t, inference.NoSummary, answer)
}

func TestChatServerErrorIsUnavailable(t *testing.T) {
	client := newChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	})

	_, err := client.Answer(context.Background(), inference.Request{Question: "q"})
	require.ErrorIs(t, err, inference.ErrUnavailable)
}
