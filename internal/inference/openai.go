package inference

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const defaultChatModel = "gpt-4o-mini"

// ChatClient answers through a hosted chat-completion model, embedding the
// question and news context into a single user prompt.
type ChatClient struct {
	client openai.Client
	model  string
	log    *slog.Logger
}

// NewChat builds a hosted-model client. model may be empty for the default;
// opts can override the base URL or retry policy.
func NewChat(apiKey, model string, logger *slog.Logger, opts ...option.RequestOption) *ChatClient {
	if model == "" {
		model = defaultChatModel
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ChatClient{
		client: openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		model:  model,
		log:    logger,
	}
}

func (c *ChatClient) Answer(ctx context.Context, req Request) (string, error) {
	prompt := fmt.Sprintf("query: %s Answer in 150 words. ", req.Question)
	if req.Context != "" {
		prompt += "context: " + req.Context
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty chat response", ErrUnavailable)
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return NoSummary, nil
	}
	return text, nil
}
