// The retention service prunes old news snapshots from the input bucket and
// old records from the query-history index. Nothing else cleans these up.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/archive"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/config"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/logger"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("retention")
	cfg, err := config.LoadRetention()
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

	archiveClient := connectArchive(ctx, log, cfg)
	if archiveClient == nil {
		os.Exit(1)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("retention job running",
		slog.Duration("interval", cfg.Interval),
		slog.Duration("max_age", cfg.MaxAge),
	)

	runOnce(ctx, log, store, archiveClient, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, store, archiveClient, cfg)
		}
	}
}

// connectArchive dials Elasticsearch with capped exponential backoff.
func connectArchive(ctx context.Context, log *slog.Logger, cfg *config.Retention) *archive.Client {
	const maxRetries = 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		client, err := archive.New(cfg.ArchiveAddr, cfg.ArchiveIndex, log)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := client.Ping(pingCtx)
			cancel()
			if pingErr == nil {
				log.Info("connected to archive")
				return client
			}
			err = pingErr
		}

		log.Warn("archive not reachable, retrying",
			slog.Any("err", err),
			slog.Int("attempt", i+1),
			slog.Int("max_retries", maxRetries),
			slog.Duration("retry_in", retryDelay),
		)

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			log.Info("shutdown signal received during startup")
			return nil
		}

		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}

	log.Error("failed to connect to archive after retries")
	return nil
}

func runOnce(ctx context.Context, log *slog.Logger, store *storage.Client, archiveClient *archive.Client, cfg *config.Retention) {
	subCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	snapshots, err := store.DeleteOlderThan(subCtx, cfg.InputBucket, storage.NewsPrefix, cfg.MaxAge)
	if err != nil {
		log.Warn("snapshot cleanup failed (will retry on next interval)", slog.Any("err", err))
	} else if snapshots > 0 {
		log.Info("snapshot cleanup completed", slog.Int("deleted", snapshots))
	}

	records, err := archiveClient.DeleteOlderThan(subCtx, cfg.MaxAge, cfg.BatchSize)
	if err != nil {
		log.Warn("history cleanup failed (will retry on next interval)", slog.Any("err", err))
		return
	}

	if records > 0 {
		log.Info("history cleanup completed", slog.Int64("deleted", records))
	} else {
		log.Debug("history cleanup completed, no old records found")
	}
}
