package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/promotions"
	"sales-dashboard/internal/services"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testRecord(date time.Time, region, salesperson string, sales float64) models.Record {
	return models.Record{
		Date:             date,
		Country:          "Kenya",
		Region:           region,
		Product:          "Cloud IDE",
		JobTitle:         "Data Scientist",
		Sales:            sales,
		SalesTarget:      100,
		UserEngagement:   7,
		PromoEvent:       catalog.NoPromotion,
		Converted:        sales > 0,
		Salesperson:      salesperson,
		MarketingChannel: "Email",
		UnitPrice:        50,
		Quantity:         2,
		AgeGroup:         "26-35",
		SessionDuration:  120,
		LogType:          "Info",
		Month:            date.Format("2006-01"),
		Details:          "Data Scientist - Info - " + salesperson,
	}
}

func createTestAnalytics() (*services.Analytics, *promotions.Store) {
	cat := catalog.Default()
	store, err := promotions.NewStore(cat, 1)
	if err != nil {
		panic(err)
	}

	a := services.NewAnalytics(cat, store)
	a.SetData([]models.Record{
		testRecord(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), "North Africa", "John Doe", 100),
		testRecord(time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), "East Africa", "Jane Smith", 0),
		testRecord(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "North Africa", "Jane Smith", 50),
	})
	return a, store
}

type envelope[T any] struct {
	Data    T                `json:"data"`
	Error   *errors.AppError `json:"error"`
	Success bool             `json:"success"`
}

func decodeEnvelope[T any](t *testing.T, body io.Reader) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func TestNewAPIHandlers(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewAPIHandlers() should set analytics field")
	}
	if handlers.promotions != store {
		t.Error("NewAPIHandlers() should set promotions field")
	}
}

func TestAPIHandlers_HandleOverview(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	tests := []struct {
		name       string
		query      string
		wantSales  float64
		wantConv   float64
		wantStatus int
	}{
		{"no filters", "", 150, 200.0 / 3, http.StatusOK},
		{"region", "?region=North+Africa", 150, 100, http.StatusOK},
		{"all sentinel", "?region=All&salesperson=All&channel=All", 150, 200.0 / 3, http.StatusOK},
		{"date range", "?start_date=2023-01-01&end_date=2023-12-31", 100, 50, http.StatusOK},
		{"inverted range", "?start_date=2024-01-01&end_date=2023-01-01", 0, 0, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/overview"+tt.query, nil)
			w := httptest.NewRecorder()

			handlers.HandleOverview()(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}

			env := decodeEnvelope[models.OverviewView](t, w.Body)
			if !env.Success {
				t.Error("expected success to be true")
			}
			if env.Data.TotalSales != tt.wantSales {
				t.Errorf("expected total sales %.2f, got %.2f", tt.wantSales, env.Data.TotalSales)
			}
			if diff := env.Data.ConversionRate - tt.wantConv; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected conversion %.4f, got %.4f", tt.wantConv, env.Data.ConversionRate)
			}
		})
	}
}

func TestAPIHandlers_BadParameters(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		query    string
		wantCode errors.ErrorCode
	}{
		{"malformed start date", handlers.HandleOverview(), "?start_date=15-01-2023", errors.CodeBadRequest},
		{"malformed end date", handlers.HandleProducts(), "?end_date=tomorrow", errors.CodeBadRequest},
		{"non numeric offset", handlers.HandleLogs(), "?offset=abc", errors.CodeBadRequest},
		{"negative limit", handlers.HandleLogs(), "?limit=-1", errors.CodeValidation},
		{"unknown region", handlers.HandleRegions(), "?region=Atlantis", errors.CodeValidation},
		{"unknown segment", handlers.HandleEngagement(), "?segment=shoe_size", errors.CodeValidation},
		{"unknown product", handlers.HandleProducts(), "?product=Teleporter", errors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/test"+tt.query, nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}

			env := decodeEnvelope[any](t, w.Body)
			if env.Success {
				t.Error("expected success to be false")
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("expected error code %s, got %+v", tt.wantCode, env.Error)
			}
		})
	}
}

func TestAPIHandlers_HandleProducts(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	req := httptest.NewRequest(http.MethodGet, "/api/products?product=Cloud+IDE", nil)
	w := httptest.NewRecorder()
	handlers.HandleProducts()(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	env := decodeEnvelope[models.ProductsView](t, w.Body)
	if env.Data.TopProduct != "Cloud IDE" {
		t.Errorf("expected top product Cloud IDE, got %s", env.Data.TopProduct)
	}
	if env.Data.Selected == nil || env.Data.Selected.Performance != 50 {
		t.Errorf("expected selected product at 50%% of target, got %+v", env.Data.Selected)
	}
}

func TestAPIHandlers_HandleEngagementSegment(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	req := httptest.NewRequest(http.MethodGet, "/api/engagement?segment=salesperson", nil)
	w := httptest.NewRecorder()
	handlers.HandleEngagement()(w, req)

	env := decodeEnvelope[models.EngagementView](t, w.Body)
	if env.Data.Segment != "salesperson" {
		t.Errorf("expected segment salesperson, got %s", env.Data.Segment)
	}
	if len(env.Data.SegmentTrend) != 3 {
		t.Errorf("expected 3 segment points, got %d", len(env.Data.SegmentTrend))
	}
	if env.Data.RetentionRate != 100 {
		t.Errorf("expected retention 100, got %.2f", env.Data.RetentionRate)
	}
}

func TestAPIHandlers_HandleLogs(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	req := httptest.NewRequest(http.MethodGet, "/api/logs?limit=2", nil)
	w := httptest.NewRecorder()
	handlers.HandleLogs()(w, req)

	env := decodeEnvelope[models.LogPage](t, w.Body)
	if env.Data.Total != 3 {
		t.Errorf("expected total 3, got %d", env.Data.Total)
	}
	if len(env.Data.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(env.Data.Entries))
	}
	if env.Data.Entries[0].Date != "2024-03-05" {
		t.Errorf("expected newest entry first, got %s", env.Data.Entries[0].Date)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	w = httptest.NewRecorder()
	handlers.HandleLogs()(w, req)

	env = decodeEnvelope[models.LogPage](t, w.Body)
	if env.Data.Limit != defaultLogLimit {
		t.Errorf("expected default limit %d, got %d", defaultLogLimit, env.Data.Limit)
	}
}

func TestAPIHandlers_HandleFilters(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	req := httptest.NewRequest(http.MethodGet, "/api/filters", nil)
	w := httptest.NewRecorder()
	handlers.HandleFilters(w, req)

	if cc := w.Header().Get("Cache-Control"); cc != cacheMaxAge {
		t.Errorf("expected Cache-Control %q, got %q", cacheMaxAge, cc)
	}

	env := decodeEnvelope[models.FilterOptions](t, w.Body)
	if env.Data.MinDate != "2023-01-15" || env.Data.MaxDate != "2024-03-05" {
		t.Errorf("unexpected date bounds %s..%s", env.Data.MinDate, env.Data.MaxDate)
	}
	if len(env.Data.Regions) == 0 || env.Data.Regions[0] != catalog.All {
		t.Errorf("expected regions to start with All, got %v", env.Data.Regions)
	}
}

func TestAPIHandlers_HandleCreatePromotion(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)
	before := store.Len()

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/promotions", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handlers.HandleCreatePromotion(w, req)
		return w
	}

	valid := `{"name":"Black Friday","start_date":"2024-11-01","end_date":"2024-11-30","target":"All","channel":"Email"}`

	w := post(valid)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeEnvelope[promotions.Result](t, w.Body)
	if created.Data.Message != "Added promotion: Black Friday for Email" {
		t.Errorf("unexpected message %q", created.Data.Message)
	}
	if store.Len() != before+1 {
		t.Errorf("expected %d promotions, got %d", before+1, store.Len())
	}

	w = post(valid)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
	conflict := decodeEnvelope[any](t, w.Body)
	if conflict.Error == nil || conflict.Error.Message != promotions.MessageExists {
		t.Errorf("expected conflict message, got %+v", conflict.Error)
	}
	if store.Len() != before+1 {
		t.Errorf("duplicate should not change the list, got %d", store.Len())
	}

	if w := post(`{"name":"Cyber Monday","start_date":"2024-11-01"}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for incomplete request, got %d", w.Code)
	}
	if w := post(`{not json`); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for malformed body, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/promotions", nil)
	rec := httptest.NewRecorder()
	handlers.HandlePromotions()(rec, req)
	view := decodeEnvelope[models.PromotionsView](t, rec.Body)
	if len(view.Data.Promotions) != before+1 {
		t.Errorf("expected promotions view to list %d campaigns, got %d", before+1, len(view.Data.Promotions))
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	env := decodeEnvelope[map[string]string](t, w.Body)
	if env.Data["status"] != "healthy" {
		t.Errorf("expected status healthy, got %s", env.Data["status"])
	}
	if _, err := time.Parse(time.RFC3339, env.Data["timestamp"]); err != nil {
		t.Errorf("timestamp should be RFC3339: %v", err)
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	handlers.HandleStats(w, req)

	env := decodeEnvelope[map[string]any](t, w.Body)
	if env.Data["record_count"] != float64(3) {
		t.Errorf("expected record_count 3, got %v", env.Data["record_count"])
	}
	if env.Data["promotions"] != float64(store.Len()) {
		t.Errorf("expected promotions %d, got %v", store.Len(), env.Data["promotions"])
	}
}

func TestAPIHandlers_HandleDashboard(t *testing.T) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?salesperson=Jane+Smith", nil)
	w := httptest.NewRecorder()
	handlers.HandleDashboard()(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	env := decodeEnvelope[models.DashboardView](t, w.Body)
	if env.Data.Overview.TotalSales != 50 {
		t.Errorf("expected total sales 50, got %.2f", env.Data.Overview.TotalSales)
	}
	if env.Data.Salespeople.TopSalesperson != "Jane Smith" {
		t.Errorf("expected top salesperson Jane Smith, got %s", env.Data.Salespeople.TopSalesperson)
	}
}

func BenchmarkAPIHandlers_HandleOverview(b *testing.B) {
	analytics, store := createTestAnalytics()
	handlers := NewAPIHandlers(analytics, store, testLogger)
	handler := handlers.HandleOverview()

	for b.Loop() {
		req := httptest.NewRequest(http.MethodGet, "/api/overview?region=North+Africa", nil)
		w := httptest.NewRecorder()
		handler(w, req)
	}
}
