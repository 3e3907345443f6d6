package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onepager/internal/actions"
	"onepager/internal/domain/models/onepager"
	"onepager/internal/domain/services"
	"onepager/internal/metrics"
	"onepager/internal/middleware"
	"onepager/internal/service/analysis"
	"onepager/internal/service/llm"
	svc "onepager/internal/service/onepager"
)

type failingGenerator struct{}

func (failingGenerator) GenerateOnePager(ctx context.Context, req *services.GenerateOnePagerRequest) (*services.GenerateOnePagerResponse, error) {
	return nil, errors.New("connection refused")
}

func (failingGenerator) Refine(ctx context.Context, req *services.RefineRequest) (*services.RefineResponse, error) {
	return nil, errors.New("connection refused")
}

type testServer struct {
	handler http.Handler
	guestID string
}

func newTestServer(t *testing.T, gen func(*actions.Catalog, *slog.Logger) services.Generator) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := actions.Load()
	require.NoError(t, err)

	service := svc.NewService(svc.Deps{
		Analyzer:  analysis.NewEngine(),
		Generator: gen(catalog, logger),
		Catalog:   catalog,
		Metrics:   metrics.New(prometheus.NewRegistry()),
		Debounce:  time.Hour,
		Logger:    logger,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = service.Shutdown(ctx)
	})

	mux := http.NewServeMux()
	passthrough := func(next http.HandlerFunc) http.HandlerFunc { return next }
	RegisterRoutes(mux, NewOnePagerHandler(service, logger), passthrough)

	return &testServer{
		handler: middleware.AuthMiddleware(nil, logger)(mux),
		guestID: uuid.NewString(),
	}
}

func cannedGenerator(delay time.Duration) func(*actions.Catalog, *slog.Logger) services.Generator {
	return func(catalog *actions.Catalog, logger *slog.Logger) services.Generator {
		return llm.NewCannedGenerator(catalog, delay, logger)
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(middleware.GuestHeader, s.guestID)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) onepager.View {
	t.Helper()
	var view onepager.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

// firstSection returns the id of the first non-title block.
func (s *testServer) firstSection(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/onepager", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	require.Greater(t, len(view.Blocks), 1)
	return view.Blocks[1].ID
}

func TestGetView(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))

	rec := srv.do(t, http.MethodGet, "/api/onepager", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, "One-Pager Title", view.Title)
	require.Len(t, view.Blocks, 3)
	assert.Equal(t, onepager.TitleBlockID, view.Blocks[0].ID)
	assert.Equal(t, "Problem Statement", view.Blocks[1].Title)
}

func TestMissingCredentials(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))

	req := httptest.NewRequest(http.MethodGet, "/api/onepager", nil)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateTitle(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))

	rec := srv.do(t, http.MethodPatch, "/api/onepager/title", `{"title":"Checkout Revamp"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Checkout Revamp", decodeView(t, rec).Title)

	rec = srv.do(t, http.MethodGet, "/api/onepager", "")
	assert.Equal(t, "Checkout Revamp", decodeView(t, rec).Title)
}

func TestUpdateTitleTooLong(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))

	body := `{"title":"` + strings.Repeat("x", 501) + `"}`
	rec := srv.do(t, http.MethodPatch, "/api/onepager/title", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedBodies(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))
	id := srv.firstSection(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"invalid json", http.MethodPatch, "/api/onepager/title", `{"title":`},
		{"unknown field", http.MethodPatch, "/api/onepager/title", `{"name":"x"}`},
		{"null block title", http.MethodPatch, "/api/onepager/blocks/" + id, `{"title":null}`},
		{"empty block update", http.MethodPatch, "/api/onepager/blocks/" + id, `{}`},
		{"reorder without ids", http.MethodPost, "/api/onepager/reorder", `{}`},
		{"action without name", http.MethodPost, "/api/onepager/blocks/" + id + "/actions", `{"action":"  "}`},
		{"action on unknown field", http.MethodPost, "/api/onepager/blocks/" + id + "/actions", `{"action":"Shorten","field":"body"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestBlockLifecycle(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))
	id := srv.firstSection(t)

	rec := srv.do(t, http.MethodPost, "/api/onepager/blocks/"+id+"/after", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	require.Len(t, view.Blocks, 4)
	inserted := view.Blocks[2].ID
	assert.Empty(t, view.Blocks[2].Title)

	rec = srv.do(t, http.MethodPatch, "/api/onepager/blocks/"+inserted, `{"title":"Key Risks"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Key Risks", decodeView(t, rec).Blocks[2].Title)

	rec = srv.do(t, http.MethodPost, "/api/onepager/reorder", `{"active_id":"`+inserted+`","over_id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, inserted, decodeView(t, rec).Blocks[1].ID)

	rec = srv.do(t, http.MethodDelete, "/api/onepager/blocks/"+inserted, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeView(t, rec).Blocks, 3)
}

func TestUpdateUnknownBlock(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))

	rec := srv.do(t, http.MethodPatch, "/api/onepager/blocks/nope", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListActions(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))
	id := srv.firstSection(t)

	rec := srv.do(t, http.MethodGet, "/api/onepager/blocks/"+id+"/actions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp actionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.BlockID)
	assert.NotEmpty(t, resp.Actions)

	rec = srv.do(t, http.MethodGet, "/api/onepager/blocks/nope/actions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestActionIsAccepted(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(time.Hour))
	id := srv.firstSection(t)

	rec := srv.do(t, http.MethodPost, "/api/onepager/blocks/"+id+"/actions", `{"action":"Clarify Problem"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, decodeView(t, rec).Loading, id)

	rec = srv.do(t, http.MethodPost, "/api/onepager/blocks/"+id+"/actions", `{"action":"Clarify Problem"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "block", decodeProblem(t, rec)["resource_type"])
}

func TestSuggestionRoundTrip(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))
	id := srv.firstSection(t)

	rec := srv.do(t, http.MethodPost, "/api/onepager/blocks/"+id+"/actions", `{"action":"Clarify Problem"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		view := decodeView(t, srv.do(t, http.MethodGet, "/api/onepager", ""))
		return len(view.Loading) == 0 && view.Blocks[1].Suggestion != nil
	}, 2*time.Second, 10*time.Millisecond)

	rec = srv.do(t, http.MethodPost, "/api/onepager/blocks/"+id+"/suggestion/accept", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeView(t, rec).Blocks[1].Suggestion)

	rec = srv.do(t, http.MethodPost, "/api/onepager/blocks/"+id+"/suggestion/accept", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/onepager/blocks/"+id+"/suggestion/reject", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDismissFollowUpIsIdempotent(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))
	id := srv.firstSection(t)

	rec := srv.do(t, http.MethodDelete, "/api/onepager/blocks/"+id+"/follow-up", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerate(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))

	rec := srv.do(t, http.MethodPost, "/api/onepager/generate", `{"title":"Team Inbox"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, "Team Inbox", view.Title)
	require.Len(t, view.Blocks, len(llm.GeneratedSections)+1)
	assert.Equal(t, llm.GeneratedSections[0], view.Blocks[1].Title)
}

func TestGenerateUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, func(*actions.Catalog, *slog.Logger) services.Generator {
		return failingGenerator{}
	})
	before := decodeView(t, srv.do(t, http.MethodGet, "/api/onepager", ""))

	rec := srv.do(t, http.MethodPost, "/api/onepager/generate", `{"title":"Team Inbox"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, float64(http.StatusBadGateway), decodeProblem(t, rec)["status"])

	after := decodeView(t, srv.do(t, http.MethodGet, "/api/onepager", ""))
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, len(before.Blocks), len(after.Blocks))
}

func TestExportMarkdown(t *testing.T) {
	srv := newTestServer(t, cannedGenerator(0))

	rec := srv.do(t, http.MethodGet, "/api/onepager/export.md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="one-pager.md"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# One-Pager Title"))
	assert.Contains(t, rec.Body.String(), "## Problem Statement")
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
