package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/models"
)

const defaultBaseURL = "https://newsapi.org"

// Client talks to the news provider's REST API.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	log     *slog.Logger
}

// New builds a provider client. baseURL may be empty to use the public API.
func New(apiKey, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
}

// TopHeadlines queries the filtered headlines endpoint. Either countryCode or
// category may be empty, but not both.
func (c *Client) TopHeadlines(ctx context.Context, countryCode, category string) (*models.NewsPayload, error) {
	params := url.Values{}
	if countryCode != "" {
		params.Set("country", countryCode)
	}
	if category != "" {
		params.Set("category", category)
	}
	return c.get(ctx, "/v2/top-headlines", params)
}

// Everything queries the free-text relevance search endpoint.
func (c *Client) Everything(ctx context.Context, query string) (*models.NewsPayload, error) {
	params := url.Values{}
	params.Set("q", query)
	return c.get(ctx, "/v2/everything", params)
}

// Fetch runs the filtered headlines search and, when it comes back empty,
// falls back exactly once to a free-text search using the country name when
// present, otherwise the category.
func (c *Client) Fetch(ctx context.Context, countryCode, countryName, category string) (*models.NewsPayload, error) {
	payload, err := c.TopHeadlines(ctx, countryCode, category)
	if err != nil {
		return nil, err
	}
	if payload.TotalResults != 0 {
		return payload, nil
	}

	term := countryName
	if term == "" {
		term = category
	}
	c.log.Info("filtered search empty, falling back to free-text search",
		slog.String("term", term),
	)
	return c.Everything(ctx, term)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*models.NewsPayload, error) {
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("news provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload models.NewsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	if payload.Status != "" && payload.Status != "ok" {
		return nil, fmt.Errorf("news provider status %q", payload.Status)
	}

	return &payload, nil
}
