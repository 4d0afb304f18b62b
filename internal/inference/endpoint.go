package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// EndpointClient calls a self-hosted question-answering inference server over
// its /invocations HTTP contract.
type EndpointClient struct {
	url   string
	httpc *http.Client
	log   *slog.Logger
}

// NewEndpoint builds a client for the given invocations URL.
func NewEndpoint(url string, logger *slog.Logger) *EndpointClient {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &EndpointClient{
		url:   url,
		httpc: &http.Client{Timeout: 60 * time.Second},
		log:   logger,
	}
}

func (c *EndpointClient) Answer(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"question": req.Question,
		"context":  req.Context,
	})
	if err != nil {
		return "", fmt.Errorf("marshal invocation: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build invocation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error("qa endpoint error",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return "", fmt.Errorf("%w: endpoint returned %d", ErrUnavailable, resp.StatusCode)
	}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode answer: %v", ErrUnavailable, err)
	}

	if out.Answer == "" {
		return NoSummary, nil
	}
	return out.Answer, nil
}
