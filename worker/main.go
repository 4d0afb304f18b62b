package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/archive"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/config"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/logger"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/models"
)

// recordIndexer persists answered-query records.
type recordIndexer interface {
	IndexRecord(ctx context.Context, rec models.QueryRecord) error
}

func main() {
	_ = godotenv.Load()

	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	archiveClient, err := archive.New(cfg.ArchiveAddr, cfg.ArchiveIndex, log)
	if err != nil {
		log.Error("init archive", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, archiveClient, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
			if sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if err := reader.CommitMessages(ctx, msg); err != nil {
					log.Error("commit failed message to dlq", slog.Any("err", err))
				}
			}
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func processMessage(ctx context.Context, log *slog.Logger, indexer recordIndexer, msg kafka.Message) error {
	var rec models.QueryRecord
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		return err
	}

	rec.Question = strings.TrimSpace(rec.Question)
	if rec.Question == "" {
		return errors.New("record has no question")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if err := indexer.IndexRecord(ctx, rec); err != nil {
		return err
	}

	log.Info("archived query", slog.String("id", rec.ID), slog.String("question", rec.Question))
	return nil
}

// sendToDLQ writes a failed message to the dead-letter topic with retries.
// Returns true when the write succeeded and the original can be committed.
func sendToDLQ(ctx context.Context, log *slog.Logger, writer *kafka.Writer, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := 0; attempt < 5; attempt++ {
		if err := writer.WriteMessages(ctx, dlqMsg); err == nil {
			return true
		} else {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			log.Warn("DLQ write failed, retrying",
				slog.Any("err", err),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return false
			}
		}
	}

	log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)
	return false
}
