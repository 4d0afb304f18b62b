package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/archive"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/config"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/extract"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/inference"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/logger"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/models"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/newsapi"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/pipeline"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/qacache"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Error("load aws config", slog.Any("err", err))
		os.Exit(1)
	}
	store := storage.NewWithAPI(s3.NewFromConfig(awsCfg), log)

	var svc inference.Service
	switch cfg.InferenceBackend {
	case inference.BackendEndpoint:
		svc = inference.NewEndpoint(cfg.EndpointURL, log)
	case inference.BackendOpenAI:
		svc = inference.NewChat(cfg.OpenAIAPIKey, cfg.OpenAIModel, log)
	case inference.BackendBatch:
		svc = inference.NewBatch(sagemaker.NewFromConfig(awsCfg), store, inference.BatchSettings{
			RoleARN:      cfg.BatchRoleARN,
			ImageURI:     cfg.BatchImageURI,
			InputBucket:  cfg.InputBucket,
			OutputBucket: cfg.OutputBucket,
			ModelPrefix:  cfg.BatchModelPrefix,
			InstanceType: cfg.BatchInstanceType,
			PollInterval: cfg.BatchPollInterval,
			PollTimeout:  cfg.BatchPollTimeout,
		}, log)
	}

	news := newsapi.New(cfg.NewsAPIKey, cfg.NewsBaseURL, log)
	pipe := pipeline.New(news, store, svc, cfg.InputBucket, cfg.LegacyKeys, log)

	archiveClient, err := archive.New(cfg.ArchiveAddr, cfg.ArchiveIndex, log)
	if err != nil {
		log.Error("init archive", slog.Any("err", err))
		os.Exit(1)
	}

	var publisher *kafka.Writer
	if len(cfg.KafkaBrokers) > 0 {
		publisher = &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer publisher.Close()
	}

	srv := &server{
		log:       log,
		cfg:       cfg,
		pipe:      pipe,
		cache:     qacache.New(cfg.CacheCapacity, cfg.CacheTTL),
		archive:   archiveClient,
		publisher: publisher,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Get("/health", srv.handleHealth)
	r.Get("/ask", srv.handleAsk)
	r.Get("/history", srv.handleHistory)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// The batch inference backend can take minutes per request.
		WriteTimeout: 15 * time.Minute,
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// asker runs the question-answering pipeline for one query.
type asker interface {
	Run(ctx context.Context, query string) (*pipeline.Result, error)
}

// historySearcher looks up previously answered queries.
type historySearcher interface {
	Search(ctx context.Context, params archive.SearchParams) (*archive.SearchResult, error)
	Health(ctx context.Context) error
}

type server struct {
	log       *slog.Logger
	cfg       *config.API
	pipe      asker
	cache     *qacache.Cache
	archive   historySearcher
	publisher *kafka.Writer
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.archive.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleAsk(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No query provided"})
		return
	}

	cacheKey := extract.Normalize(query)
	if summary, ok := s.cache.Get(cacheKey); ok {
		s.log.Info("answer served from cache", slog.String("query", query))
		writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
		return
	}

	res, err := s.pipe.Run(r.Context(), query)
	if err != nil {
		s.writeError(w, query, err)
		return
	}

	s.cache.Put(cacheKey, res.Summary)
	s.publish(res, query)

	writeJSON(w, http.StatusOK, summaryResponse{Summary: res.Summary})
}

func (s *server) writeError(w http.ResponseWriter, query string, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNoQuery):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No query provided"})
	case errors.Is(err, pipeline.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid country or category in query"})
	case errors.Is(err, pipeline.ErrNoResults):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No news results"})
	default:
		// Detail stays server-side; the client gets a generic body.
		s.log.Error("pipeline failed", slog.String("query", query), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

// publish records the answered query for the history worker. Best effort:
// losing a record never fails the request.
func (s *server) publish(res *pipeline.Result, query string) {
	if s.publisher == nil {
		return
	}

	rec := models.QueryRecord{
		ID:        res.RequestID,
		Question:  query,
		Country:   res.Country,
		Category:  res.Category,
		Summary:   res.Summary,
		Backend:   s.cfg.InferenceBackend,
		Timestamp: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := json.Marshal(rec)
		if err != nil {
			s.log.Error("marshal query record", slog.Any("err", err))
			return
		}
		if err := s.publisher.WriteMessages(ctx, kafka.Message{
			Key:   []byte(rec.ID),
			Value: payload,
		}); err != nil {
			s.log.Warn("publish query record", slog.Any("err", err))
		}
	}()
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	params := archive.SearchParams{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Country:  strings.TrimSpace(r.URL.Query().Get("country")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Backend:  strings.TrimSpace(r.URL.Query().Get("backend")),
		From:     clampInt(r.URL.Query().Get("from"), 0, 10_000),
		Size:     clampInt(r.URL.Query().Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage),
		Sort:     strings.TrimSpace(r.URL.Query().Get("sort")),
	}
	if start := parseTime(r.URL.Query().Get("start")); start != nil {
		params.Start = start
	}
	if end := parseTime(r.URL.Query().Get("end")); end != nil {
		params.End = end
	}

	result, err := s.archive.Search(ctx, params)
	if err != nil {
		s.log.Error("history search", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// withCORS attaches the fixed CORS header set to every response and answers
// preflight requests directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "*")
	w.Header().Set("Access-Control-Allow-Headers", "*")
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	return nil
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
