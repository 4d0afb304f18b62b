// The summarizer is the batch-job entry point. It reads the persisted query
// descriptor and news snapshot from object storage, builds the article
// context, asks the QA inference endpoint, and writes the summary object for
// the caller to pick up.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/config"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/inference"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/logger"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/models"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/pipeline"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/storage"
)

// objectStore is the slice of storage the job needs.
type objectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte) error
}

func main() {
	_ = godotenv.Load()

	log := logger.New("summarizer")
	cfg, err := config.LoadSummarizer()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, err := storage.New(ctx, log)
	if err != nil {
		log.Error("init storage", slog.Any("err", err))
		os.Exit(1)
	}

	svc := inference.NewEndpoint(cfg.EndpointURL, log)

	if err := run(ctx, log, store, svc, cfg); err != nil {
		log.Error("summarization failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("summary written",
		slog.String("bucket", cfg.OutputBucket),
		slog.String("key", cfg.SummaryKey),
	)
}

func run(ctx context.Context, log *slog.Logger, store objectStore, svc inference.Service, cfg *config.Summarizer) error {
	descriptorData, err := store.Get(ctx, cfg.InputBucket, cfg.QueryKey)
	if err != nil {
		return fmt.Errorf("read query descriptor: %w", err)
	}

	var descriptor models.QueryDescriptor
	if err := json.Unmarshal(descriptorData, &descriptor); err != nil {
		return fmt.Errorf("decode query descriptor: %w", err)
	}
	log.Info("query loaded", slog.String("query", descriptor.Query))

	newsData, err := store.Get(ctx, cfg.InputBucket, descriptor.FileName)
	if err != nil {
		return fmt.Errorf("read news snapshot: %w", err)
	}

	var payload models.NewsPayload
	if err := json.Unmarshal(newsData, &payload); err != nil {
		return fmt.Errorf("decode news snapshot: %w", err)
	}

	passage := pipeline.BuildContext(&payload)
	answer, err := svc.Answer(ctx, inference.Request{
		Question: descriptor.Query,
		Context:  passage,
	})
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}

	out, err := json.Marshal(models.Summary{Summary: answer})
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := store.Put(ctx, cfg.OutputBucket, cfg.SummaryKey, out); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}
