// Package pipeline runs a question through keyword extraction, news search,
// persistence, and inference, producing the answer for one request.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/extract"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/inference"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/models"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/storage"
)

var (
	// ErrNoQuery means the request carried no question at all.
	ErrNoQuery = errors.New("no query provided")

	// ErrInvalidInput means the question named no known country or category.
	ErrInvalidInput = errors.New("invalid country or category in query")

	// ErrNoResults means the news search found nothing, even after the
	// free-text fallback.
	ErrNoResults = errors.New("no news results")

	// ErrStorage wraps persistence failures.
	ErrStorage = errors.New("storage failure")
)

// NewsFetcher searches the news provider, falling back internally to a
// free-text search on zero filtered results.
type NewsFetcher interface {
	Fetch(ctx context.Context, countryCode, countryName, category string) (*models.NewsPayload, error)
}

// ObjectStore persists the pipeline's intermediate artifacts.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body []byte) error
}

// Result is what a completed run hands back to the caller.
type Result struct {
	RequestID string
	Summary   string
	Country   string
	Category  string
}

// Pipeline wires the stages together for one configured deployment.
type Pipeline struct {
	news        NewsFetcher
	store       ObjectStore
	svc         inference.Service
	inputBucket string
	legacyKeys  bool
	log         *slog.Logger

	now   func() time.Time
	newID func() string
}

// New builds a pipeline. legacyKeys restores the fixed-key storage scheme in
// which concurrent requests overwrite each other.
func New(news NewsFetcher, store ObjectStore, svc inference.Service, inputBucket string, legacyKeys bool, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		news:        news,
		store:       store,
		svc:         svc,
		inputBucket: inputBucket,
		legacyKeys:  legacyKeys,
		log:         logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Run executes the full pipeline for one question.
func (p *Pipeline) Run(ctx context.Context, query string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoQuery
	}

	keywords := extract.Extract(query)
	if keywords.Empty() {
		return nil, ErrInvalidInput
	}
	p.log.Info("keywords extracted",
		slog.String("country", keywords.CountryName),
		slog.String("category", keywords.Category),
	)

	payload, err := p.news.Fetch(ctx, keywords.CountryCode, keywords.CountryName, keywords.Category)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	if payload.TotalResults == 0 {
		return nil, ErrNoResults
	}

	requestID := p.newID()
	keyID := requestID
	if p.legacyKeys {
		keyID = ""
	}
	queryKey, newsKey, err := p.persist(ctx, keyID, query, payload)
	if err != nil {
		return nil, err
	}

	passage := BuildContext(payload)
	answer, err := p.svc.Answer(ctx, inference.Request{
		RequestID:  requestID,
		Question:   query,
		Context:    passage,
		QueryKey:   queryKey,
		NewsKey:    newsKey,
		SummaryKey: storage.SummaryKey(keyID),
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		RequestID: requestID,
		Summary:   answer,
		Country:   keywords.CountryName,
		Category:  keywords.Category,
	}, nil
}

// persist writes the news snapshot and the descriptor pointing at it. keyID
// is empty in legacy mode, selecting the fixed keys.
func (p *Pipeline) persist(ctx context.Context, keyID, query string, payload *models.NewsPayload) (queryKey, newsKey string, err error) {
	newsKey = storage.NewsKey(p.now(), keyID)
	queryKey = storage.QueryKey(keyID)

	newsBody, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal news payload: %w", err)
	}
	if err := p.store.Put(ctx, p.inputBucket, newsKey, newsBody); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	descriptor, err := json.Marshal(models.QueryDescriptor{Query: query, FileName: newsKey})
	if err != nil {
		return "", "", fmt.Errorf("marshal query descriptor: %w", err)
	}
	if err := p.store.Put(ctx, p.inputBucket, queryKey, descriptor); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return queryKey, newsKey, nil
}
