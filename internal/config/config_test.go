package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/config"
)

func clearAPIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_BIND_ADDR", "NEWS_API_KEY", "NEWS_API_BASE_URL",
		"INPUT_BUCKET", "OUTPUT_BUCKET", "STORAGE_LEGACY_KEYS",
		"INFERENCE_BACKEND", "INFERENCE_ENDPOINT_URL", "OPENAI_API_KEY",
		"BATCH_ROLE_ARN", "BATCH_IMAGE_URI", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"ANSWER_CACHE_CAPACITY", "ANSWER_CACHE_TTL",
		"API_PAGE_SIZE", "API_MAX_PAGE_SIZE",
		"ELASTICSEARCH_ADDR", "ELASTICSEARCH_INDEX",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAPIDefaults(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("NEWS_API_KEY", "test-key")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, "inputbucket-123", cfg.InputBucket)
	require.Equal(t, "outputbucket-123", cfg.OutputBucket)
	require.False(t, cfg.LegacyKeys)
	require.Equal(t, "endpoint", cfg.InferenceBackend)
	require.Equal(t, "answered_queries", cfg.KafkaTopic)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, 1000, cfg.CacheCapacity)
	require.Equal(t, 10*time.Minute, cfg.CacheTTL)
	require.Equal(t, "query_history", cfg.ArchiveIndex)
}

func TestLoadAPIMissingNewsKey(t *testing.T) {
	clearAPIEnv(t)

	_, err := config.LoadAPI()
	require.Error(t, err)
	require.Contains(t, err.Error(), "NEWS_API_KEY")
}

func TestLoadAPIBackendValidation(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("NEWS_API_KEY", "test-key")
	t.Setenv("INFERENCE_BACKEND", "openai")

	_, err := config.LoadAPI()
	require.Error(t, err)
	require.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, "openai", cfg.InferenceBackend)
}

func TestLoadAPIBatchBackendValidation(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("NEWS_API_KEY", "test-key")
	t.Setenv("INFERENCE_BACKEND", "batch")

	_, err := config.LoadAPI()
	require.Error(t, err)

	t.Setenv("BATCH_ROLE_ARN", "arn:aws:iam::123:role/test")
	t.Setenv("BATCH_IMAGE_URI", "123.dkr.ecr.us-east-1.amazonaws.com/bot:v1")
	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.BatchPollInterval)
	require.Equal(t, 10*time.Minute, cfg.BatchPollTimeout)
}

func TestLoadAPIUnknownBackend(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("NEWS_API_KEY", "test-key")
	t.Setenv("INFERENCE_BACKEND", "quantum")

	_, err := config.LoadAPI()
	require.Error(t, err)
	require.Contains(t, err.Error(), "quantum")
}

func TestLoadAPIOverrides(t *testing.T) {
	clearAPIEnv(t)
	t.Setenv("NEWS_API_KEY", "test-key")
	t.Setenv("STORAGE_LEGACY_KEYS", "true")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")
	t.Setenv("ANSWER_CACHE_TTL", "1h")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.True(t, cfg.LegacyKeys)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "answered_queries", cfg.KafkaTopic)
	require.Equal(t, "history-worker", cfg.KafkaConsumer)
	require.Equal(t, "http://elasticsearch:9200", cfg.ArchiveAddr)
}

func TestLoadSummarizerDefaults(t *testing.T) {
	t.Setenv("INPUT_BUCKET", "")
	t.Setenv("OUTPUT_BUCKET", "")
	t.Setenv("QUERY_KEY", "")
	t.Setenv("SUMMARY_KEY", "")
	t.Setenv("INFERENCE_ENDPOINT_URL", "")

	cfg, err := config.LoadSummarizer()
	require.NoError(t, err)
	require.Equal(t, "input/query.json", cfg.QueryKey)
	require.Equal(t, "output/summary.json", cfg.SummaryKey)
}

// The processing job delivers per-request keys through the container
// environment; they must win over the legacy defaults.
func TestLoadSummarizerJobEnvironmentKeys(t *testing.T) {
	t.Setenv("INPUT_BUCKET", "input")
	t.Setenv("OUTPUT_BUCKET", "output")
	t.Setenv("QUERY_KEY", "input/query_req-1.json")
	t.Setenv("SUMMARY_KEY", "output/summary_req-1.json")
	t.Setenv("INFERENCE_ENDPOINT_URL", "")

	cfg, err := config.LoadSummarizer()
	require.NoError(t, err)
	require.Equal(t, "input/query_req-1.json", cfg.QueryKey)
	require.Equal(t, "output/summary_req-1.json", cfg.SummaryKey)
}

func TestLoadRetentionValidation(t *testing.T) {
	t.Setenv("RETENTION_CRON", "")
	t.Setenv("RETENTION_MAX_AGE", "")
	t.Setenv("RETENTION_BATCH_SIZE", "")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cfg.Interval)
	require.Equal(t, 168*time.Hour, cfg.MaxAge)
	require.Equal(t, 500, cfg.BatchSize)

	t.Setenv("RETENTION_BATCH_SIZE", "-1")
	_, err = config.LoadRetention()
	require.Error(t, err)
}
