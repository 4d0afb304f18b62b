package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/archive"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/config"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/pipeline"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/qacache"
)

type stubAsker struct {
	result *pipeline.Result
	err    error
	calls  int
}

func (s *stubAsker) Run(_ context.Context, _ string) (*pipeline.Result, error) {
	s.calls++
	return s.result, s.err
}

type stubHistory struct {
	result *archive.SearchResult
	err    error
	params archive.SearchParams
}

func (s *stubHistory) Search(_ context.Context, params archive.SearchParams) (*archive.SearchResult, error) {
	s.params = params
	return s.result, s.err
}

func (s *stubHistory) Health(context.Context) error { return s.err }

func newTestServer(pipe asker, history historySearcher) *server {
	return &server{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:     &config.API{InferenceBackend: "endpoint", DefaultPage: 20, MaxPage: 100},
		pipe:    pipe,
		cache:   qacache.New(10, time.Minute),
		archive: history,
	}
}

func requireCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Headers"))
}

func askThrough(srv *server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	withCORS(http.HandlerFunc(srv.handleAsk)).ServeHTTP(rec, req)
	return rec
}

func TestHandleAskSuccess(t *testing.T) {
	pipe := &stubAsker{result: &pipeline.Result{
		RequestID: "req-1",
		Summary:   "the news in brief",
		Country:   "united states",
	}}
	srv := newTestServer(pipe, &stubHistory{})

	rec := askThrough(srv, "/ask?q=What+are+the+headlines+in+the+united+states%3F")

	require.Equal(t, http.StatusOK, rec.Code)
	requireCORS(t, rec)

	var body summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "the news in brief", body.Summary)
}

func TestHandleAskMissingQuery(t *testing.T) {
	pipe := &stubAsker{}
	srv := newTestServer(pipe, &stubHistory{})

	rec := askThrough(srv, "/ask")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	requireCORS(t, rec)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "No query provided", body.Error)
	require.Zero(t, pipe.calls)
}

func TestHandleAskInvalidInput(t *testing.T) {
	pipe := &stubAsker{err: pipeline.ErrInvalidInput}
	srv := newTestServer(pipe, &stubHistory{})

	rec := askThrough(srv, "/ask?q=tell+me+a+joke")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Invalid country or category in query", body.Error)
}

func TestHandleAskNoResults(t *testing.T) {
	pipe := &stubAsker{err: pipeline.ErrNoResults}
	srv := newTestServer(pipe, &stubHistory{})

	rec := askThrough(srv, "/ask?q=headlines+in+france")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "No news results", body.Error)
}

func TestHandleAskInternalErrorIsGeneric(t *testing.T) {
	pipe := &stubAsker{err: errors.New("s3 exploded with credentials abc")}
	srv := newTestServer(pipe, &stubHistory{})

	rec := askThrough(srv, "/ask?q=headlines+in+france")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	requireCORS(t, rec)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Internal server error", body.Error)
	require.NotContains(t, rec.Body.String(), "credentials")
}

func TestHandleAskServesRepeatFromCache(t *testing.T) {
	pipe := &stubAsker{result: &pipeline.Result{RequestID: "req-1", Summary: "cached answer"}}
	srv := newTestServer(pipe, &stubHistory{})

	first := askThrough(srv, "/ask?q=headlines+in+france")
	require.Equal(t, http.StatusOK, first.Code)

	second := askThrough(srv, "/ask?q=Headlines+in+France%21")
	require.Equal(t, http.StatusOK, second.Code)
	require.Contains(t, second.Body.String(), "cached answer")

	// Normalization makes the second phrasing the same cache key.
	require.Equal(t, 1, pipe.calls)
}

func TestHandleHistory(t *testing.T) {
	history := &stubHistory{result: &archive.SearchResult{Total: 1}}
	srv := newTestServer(&stubAsker{}, history)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/history?q=france&country=france&size=5", nil)
	srv.handleHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "france", history.params.Query)
	require.Equal(t, "france", history.params.Country)
	require.Equal(t, 5, history.params.Size)
}

func TestPreflightRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	withCORS(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run for preflight")
	})).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	requireCORS(t, rec)
}
