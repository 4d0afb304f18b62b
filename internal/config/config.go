package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/inference"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/storage"
)

// Common contains the history-archive parameters shared by every service
// that touches Elasticsearch.
type Common struct {
	ArchiveAddr  string
	ArchiveIndex string
}

// API describes the HTTP question-answering service.
type API struct {
	Common
	BindAddr string

	NewsAPIKey  string
	NewsBaseURL string

	InputBucket  string
	OutputBucket string
	LegacyKeys   bool

	InferenceBackend  string
	EndpointURL       string
	OpenAIAPIKey      string
	OpenAIModel       string
	BatchRoleARN      string
	BatchImageURI     string
	BatchModelPrefix  string
	BatchInstanceType string
	BatchPollInterval time.Duration
	BatchPollTimeout  time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	CacheCapacity int
	CacheTTL      time.Duration

	DefaultPage int
	MaxPage     int
}

// Worker holds configuration for the Kafka -> Elasticsearch history worker.
type Worker struct {
	Common
	KafkaBrokers  []string
	KafkaTopic    string
	KafkaConsumer string
}

// Summarizer configures the batch-job entry point that answers against
// persisted inputs. QueryKey and SummaryKey arrive through the processing
// job's environment; the defaults are the fixed legacy keys.
type Summarizer struct {
	InputBucket  string
	OutputBucket string
	QueryKey     string
	SummaryKey   string
	EndpointURL  string
}

// Retention configures the cleanup loop for news snapshots and history
// records.
type Retention struct {
	Common
	InputBucket string
	Interval    time.Duration
	MaxAge      time.Duration
	BatchSize   int
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:   loadCommon(),
		BindAddr: getEnv("API_BIND_ADDR", "0.0.0.0:8080"),

		NewsAPIKey:  getEnv("NEWS_API_KEY", ""),
		NewsBaseURL: getEnv("NEWS_API_BASE_URL", ""),

		InputBucket:  getEnv("INPUT_BUCKET", "inputbucket-123"),
		OutputBucket: getEnv("OUTPUT_BUCKET", "outputbucket-123"),
		LegacyKeys:   getBool("STORAGE_LEGACY_KEYS", false),

		InferenceBackend:  getEnv("INFERENCE_BACKEND", inference.BackendEndpoint),
		EndpointURL:       getEnv("INFERENCE_ENDPOINT_URL", "http://localhost:8081/invocations"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", ""),
		BatchRoleARN:      getEnv("BATCH_ROLE_ARN", ""),
		BatchImageURI:     getEnv("BATCH_IMAGE_URI", ""),
		BatchModelPrefix:  getEnv("BATCH_MODEL_PREFIX", "ML_model"),
		BatchInstanceType: getEnv("BATCH_INSTANCE_TYPE", "ml.m5.large"),
		BatchPollInterval: getDuration("BATCH_POLL_INTERVAL", "5s"),
		BatchPollTimeout:  getDuration("BATCH_POLL_TIMEOUT", "10m"),

		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "answered_queries"),

		CacheCapacity: getInt("ANSWER_CACHE_CAPACITY", 1000),
		CacheTTL:      getDuration("ANSWER_CACHE_TTL", "10m"),

		DefaultPage: getInt("API_PAGE_SIZE", 20),
		MaxPage:     getInt("API_MAX_PAGE_SIZE", 100),
	}

	if c.NewsAPIKey == "" {
		return nil, fmt.Errorf("NEWS_API_KEY must be set")
	}
	if c.InputBucket == "" || c.OutputBucket == "" {
		return nil, fmt.Errorf("INPUT_BUCKET and OUTPUT_BUCKET must be set")
	}

	switch c.InferenceBackend {
	case inference.BackendEndpoint:
		if c.EndpointURL == "" {
			return nil, fmt.Errorf("INFERENCE_ENDPOINT_URL must be set for the endpoint backend")
		}
	case inference.BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY must be set for the openai backend")
		}
	case inference.BackendBatch:
		if c.BatchRoleARN == "" || c.BatchImageURI == "" {
			return nil, fmt.Errorf("BATCH_ROLE_ARN and BATCH_IMAGE_URI must be set for the batch backend")
		}
	default:
		return nil, fmt.Errorf("unknown INFERENCE_BACKEND %q", c.InferenceBackend)
	}

	if c.CacheCapacity <= 0 {
		return nil, fmt.Errorf("ANSWER_CACHE_CAPACITY must be positive")
	}
	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:        loadCommon(),
		KafkaBrokers:  splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "answered_queries"),
		KafkaConsumer: getEnv("KAFKA_CONSUMER_GROUP", "history-worker"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}

	return c, nil
}

// LoadSummarizer builds a Summarizer config from environment variables.
func LoadSummarizer() (*Summarizer, error) {
	c := &Summarizer{
		InputBucket:  getEnv("INPUT_BUCKET", "inputbucket-123"),
		OutputBucket: getEnv("OUTPUT_BUCKET", "outputbucket-123"),
		QueryKey:     getEnv("QUERY_KEY", storage.LegacyQueryKey),
		SummaryKey:   getEnv("SUMMARY_KEY", storage.LegacySummaryKey),
		EndpointURL:  getEnv("INFERENCE_ENDPOINT_URL", "http://localhost:8081/invocations"),
	}

	if c.InputBucket == "" || c.OutputBucket == "" {
		return nil, fmt.Errorf("INPUT_BUCKET and OUTPUT_BUCKET must be set")
	}
	if c.EndpointURL == "" {
		return nil, fmt.Errorf("INFERENCE_ENDPOINT_URL must be set")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:      loadCommon(),
		InputBucket: getEnv("INPUT_BUCKET", "inputbucket-123"),
		Interval:    getDuration("RETENTION_CRON", "24h"),
		MaxAge:      getDuration("RETENTION_MAX_AGE", "168h"),
		BatchSize:   getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ArchiveAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ArchiveIndex: getEnv("ELASTICSEARCH_INDEX", "query_history"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
