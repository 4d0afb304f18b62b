// Package inference answers a question against a news context through one of
// three interchangeable backends: a self-hosted QA endpoint, a hosted chat
// model, or a managed batch processing job.
package inference

import (
	"context"
	"errors"
)

// Backend names accepted by config.
const (
	BackendEndpoint = "endpoint"
	BackendOpenAI   = "openai"
	BackendBatch    = "batch"
)

// NoSummary is returned when a backend completed but produced no usable text.
const NoSummary = "No summary available"

var (
	// ErrUnavailable reports that the model backend errored or was
	// unreachable. Provider-specific failures are folded into this.
	ErrUnavailable = errors.New("inference unavailable")

	// ErrTimeout reports that the batch job missed its deadline.
	ErrTimeout = errors.New("inference timed out")
)

// Request carries the question and built context for direct backends, plus
// the request ID and persisted object keys the batch backend hands to its
// processing job.
type Request struct {
	RequestID  string
	Question   string
	Context    string
	QueryKey   string
	NewsKey    string
	SummaryKey string
}

// Service is the single capability the pipeline depends on.
type Service interface {
	Answer(ctx context.Context, req Request) (string, error)
}
