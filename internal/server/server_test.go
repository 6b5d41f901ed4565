package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justinas/alice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/promotions"
	"sales-dashboard/internal/services"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cat := catalog.Default()
	store, err := promotions.NewStore(cat, 1)
	require.NoError(t, err)

	analytics := services.NewAnalytics(cat, store)
	analytics.SetData([]models.Record{{
		Date:             time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Country:          "Egypt",
		Region:           "North Africa",
		Product:          "Cloud IDE",
		JobTitle:         "Data Analyst",
		Sales:            80,
		SalesTarget:      100,
		UserEngagement:   6,
		PromoEvent:       catalog.NoPromotion,
		Converted:        true,
		Salesperson:      "John Doe",
		MarketingChannel: "Direct",
		UnitPrice:        40,
		Quantity:         2,
		AgeGroup:         "18-25",
		SessionDuration:  90,
		LogType:          "Info",
		Month:            "2023-06",
		Details:          "Data Analyst - Info - John Doe",
	}})

	dashboard := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html>dashboard</html>")
	}
	return NewServer(analytics, store, testLogger, &TemplateHandlers{Dashboard: dashboard})
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method      string
		path        string
		wantStatus  int
		contentType string
	}{
		{http.MethodGet, "/", http.StatusOK, "text/html"},
		{http.MethodGet, "/health", http.StatusOK, "application/json"},
		{http.MethodGet, "/admin/stats", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/filters", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/dashboard", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/overview?region=North+Africa", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/products?product=Cloud+IDE", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/regions", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/engagement?segment=age_group", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/promotions", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/logs?limit=1", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/salespeople", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/overview?region=Atlantis", http.StatusBadRequest, "application/json"},
		{http.MethodGet, "/sse/overview", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/sse/refresh-all", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/missing", http.StatusNotFound, "application/json"},
		{http.MethodDelete, "/api/promotions", http.StatusMethodNotAllowed, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), tt.contentType),
				"content type %q", w.Header().Get("Content-Type"))
		})
	}
}

func TestServer_RouteErrors(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/overview", nil))
	assert.Contains(t, w.Body.String(), `"code":"METHOD_NOT_ALLOWED"`)
	assert.Contains(t, w.Header().Get("Allow"), http.MethodGet)
}

func TestServer_CacheHeaders(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   string
	}{
		{"event stream", http.MethodGet, "/sse/logs", "", "no-cache"},
		{"promotion form stream", http.MethodPost, "/sse/promotions", `{"promoName":"Form Deal"}`, "no-cache"},
		{"promotion create", http.MethodPost, "/api/promotions", `{"name":"Cache Deal","start_date":"2023-12-01","end_date":"2023-12-24","target":"All","channel":"Email"}`, "no-store"},
		{"promotion create rejected", http.MethodPost, "/api/promotions", `{"name":"Cache Deal"}`, "no-store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, w.Header().Get("Cache-Control"))
		})
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	assert.NotEqual(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestServer_CreatePromotion(t *testing.T) {
	srv := newTestServer(t)
	body := `{"name":"Winter Deal","start_date":"2023-12-01","end_date":"2023-12-24","target":"Enterprise","channel":"Email"}`

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/promotions", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/promotions", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/promotions", nil))
	assert.Contains(t, w.Body.String(), "Winter Deal")
}

func TestRouter_RouteMiddleware(t *testing.T) {
	var order []string
	tag := func(name string) alice.Constructor {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewRouter(testLogger, Route{
		Method:      http.MethodGet,
		Path:        "/ping",
		Handler:     http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { order = append(order, "handler") }),
		Middlewares: []alice.Constructor{tag("first"), tag("second")},
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestGracefulServer_Serve(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	httpServer := &http.Server{Handler: newTestServer(t)}
	cfg := config.ServerConfig{ShutdownTimeout: 5 * time.Second}
	gs := NewGracefulServer(httpServer, testLogger, cfg)

	var hooks atomic.Int32
	for range 2 {
		gs.RegisterShutdownHook(func(ctx context.Context) error {
			hooks.Add(1)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, int32(2), hooks.Load())
}

func TestGracefulServer_HookError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	gs := NewGracefulServer(&http.Server{Handler: http.NotFoundHandler()}, testLogger, config.ServerConfig{ShutdownTimeout: time.Second})
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		return assert.AnError
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = gs.Serve(ctx, ln)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
