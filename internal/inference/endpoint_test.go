package inference_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/inference"
)

func TestEndpointAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in struct {
			Question string `json:"question"`
			Context  string `json:"context"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "what happened", in.Question)
		require.Equal(t, "title: description\n", in.Context)

		json.NewEncoder(w).Encode(map[string]string{"answer": "a lot"})
	}))
	defer srv.Close()

	client := inference.NewEndpoint(srv.URL+"/invocations", nil)
	answer, err := client.Answer(context.Background(), inference.Request{
		Question: "what happened",
		Context:  "title: description\n",
	})
	require.NoError(t, err)
	require.Equal(t, "a lot", answer)
}

func TestEndpointErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not initialized"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := inference.NewEndpoint(srv.URL+"/invocations", nil)
	_, err := client.Answer(context.Background(), inference.Request{Question: "q"})
	require.ErrorIs(t, err, inference.ErrUnavailable)
}

func TestEndpointUnreachableIsUnavailable(t *testing.T) {
	client := inference.NewEndpoint("http://127.0.0.1:1/invocations", nil)
	_, err := client.Answer(context.Background(), inference.Request{Question: "q"})
	require.ErrorIs(t, err, inference.ErrUnavailable)
}

func TestEndpointEmptyAnswerDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"answer": ""})
	}))
	defer srv.Close()

	client := inference.NewEndpoint(srv.URL+"/invocations", nil)
	answer, err := client.Answer(context.Background(), inference.Request{Question: "q"})
	require.NoError(t, err)
	require.Equal(t, inference.NoSummary, answer)
}
