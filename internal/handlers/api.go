package handlers

import (
	"log/slog"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	pkgerrors "github.com/pkg/errors"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/promotions"
	"sales-dashboard/internal/services"
)

const (
	cacheMaxAge     = "public, max-age=300"
	maxRequestBytes = 1 << 16
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type APIHandlers struct {
	analytics  *services.Analytics
	promotions *promotions.Store
	logger     *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, promotions *promotions.Store, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics:  analytics,
		promotions: promotions,
		logger:     logger,
	}
}

// withQuery parses the request selection and hands it to fn, answering 400
// on malformed parameters.
func (h *APIHandlers) withQuery(fn func(w http.ResponseWriter, r *http.Request, q services.DashboardQuery)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := selectionFromQuery(r)
		if err == nil {
			var q services.DashboardQuery
			if q, err = sel.query(h.analytics.Catalog()); err == nil {
				fn(w, r, q)
				return
			}
		}
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
	}
}

func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	headers := map[string]string{
		"Cache-Control": cacheMaxAge,
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.FilterOptions(), headers)
}

func (h *APIHandlers) HandleOverview() http.HandlerFunc {
	return h.withQuery(func(w http.ResponseWriter, r *http.Request, q services.DashboardQuery) {
		errors.WriteSuccess(w, h.analytics.Overview(q.Filter))
	})
}

func (h *APIHandlers) HandleProducts() http.HandlerFunc {
	return h.withQuery(func(w http.ResponseWriter, r *http.Request, q services.DashboardQuery) {
		errors.WriteSuccess(w, h.analytics.Products(q.Filter, q.Product))
	})
}

func (h *APIHandlers) HandleRegions() http.HandlerFunc {
	return h.withQuery(func(w http.ResponseWriter, r *http.Request, q services.DashboardQuery) {
		errors.WriteSuccess(w, h.analytics.Regions(q.Filter))
	})
}

func (h *APIHandlers) HandleEngagement() http.HandlerFunc {
	return h.withQuery(func(w http.ResponseWriter, r *http.Request, q services.DashboardQuery) {
		errors.WriteSuccess(w, h.analytics.Engagement(q.Filter, q.Segment))
	})
}

func (h *APIHandlers) HandlePromotions() http.HandlerFunc {
	return h.withQuery(func(w http.ResponseWriter, r *http.Request, q services.DashboardQuery) {
		errors.WriteSuccess(w, h.analytics.Promotions(q.Filter))
	})
}

func (h *APIHandlers) HandleLogs() http.HandlerFunc {
	return h.withQuery(func(w http.ResponseWriter, r *http.Request, q services.DashboardQuery) {
		errors.WriteSuccess(w, h.analytics.Logs(q.Filter, q.Offset, q.Limit))
	})
}

func (h *APIHandlers) HandleSalespeople() http.HandlerFunc {
	return h.withQuery(func(w http.ResponseWriter, r *http.Request, q services.DashboardQuery) {
		errors.WriteSuccess(w, h.analytics.Salespeople(q.Filter))
	})
}

func (h *APIHandlers) HandleDashboard() http.HandlerFunc {
	return h.withQuery(func(w http.ResponseWriter, r *http.Request, q services.DashboardQuery) {
		view, err := h.analytics.Dashboard(r.Context(), q)
		if err != nil {
			errors.WriteError(w, h.logger, errors.ServiceUnavailable("dashboard computation was interrupted"), observability.GetRequestID(r.Context()))
			return
		}
		errors.WriteSuccess(w, view)
	})
}

// HandleCreatePromotion answers 201 for a new campaign and 409 when the name
// is already taken.
func (h *APIHandlers) HandleCreatePromotion(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var req models.PromotionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "request body must be a JSON promotion"), requestID)
		return
	}

	res, err := h.promotions.Add(req)
	switch {
	case pkgerrors.Is(err, promotions.ErrInvalidRequest):
		errors.WriteError(w, h.logger, errors.ValidationWrap(err, err.Error()), requestID)
		return
	case err != nil:
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "failed to add promotion"), requestID)
		return
	case !res.Added:
		errors.WriteError(w, h.logger, errors.Conflict(res.Message), requestID)
		return
	}

	observability.Logger(r.Context(), h.logger).Info("promotion added",
		"name", res.Promotion.Name,
		"channel", res.Promotion.Channel,
		"id", res.Promotion.ID,
	)
	errors.WriteCreated(w, res)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.analytics.Len() == 0 {
		status = "degraded"
	}

	healthData := map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()
	stats["promotions"] = h.promotions.Len()

	errors.WriteSuccess(w, stats)
}
