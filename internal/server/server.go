package server

import (
	"log/slog"
	"net/http"

	"github.com/justinas/alice"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/promotions"
	"sales-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	router      *Router
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, store *promotions.Store, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, store, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, store, logger),
	}
	s.router = NewRouter(logger, s.routes(templateHandlers)...)
	return s
}

func (s *Server) routes(templateHandlers *TemplateHandlers) []Route {
	api, sse := s.apiHandlers, s.sseHandlers
	fresh := []alice.Constructor{middleware.NoStore()}

	return []Route{
		// Dashboard
		{Method: http.MethodGet, Path: "/", Handler: templateHandlers.Dashboard},
		{Method: http.MethodGet, Path: "/health", Handler: http.HandlerFunc(api.HandleHealth)},
		{Method: http.MethodGet, Path: "/admin/stats", Handler: http.HandlerFunc(api.HandleStats)},

		// REST API
		{Method: http.MethodGet, Path: "/api/filters", Handler: http.HandlerFunc(api.HandleFilters)},
		{Method: http.MethodGet, Path: "/api/dashboard", Handler: api.HandleDashboard()},
		{Method: http.MethodGet, Path: "/api/overview", Handler: api.HandleOverview()},
		{Method: http.MethodGet, Path: "/api/products", Handler: api.HandleProducts()},
		{Method: http.MethodGet, Path: "/api/regions", Handler: api.HandleRegions()},
		{Method: http.MethodGet, Path: "/api/engagement", Handler: api.HandleEngagement()},
		{Method: http.MethodGet, Path: "/api/promotions", Handler: api.HandlePromotions()},
		{Method: http.MethodPost, Path: "/api/promotions", Handler: http.HandlerFunc(api.HandleCreatePromotion), Middlewares: fresh},
		{Method: http.MethodGet, Path: "/api/logs", Handler: api.HandleLogs()},
		{Method: http.MethodGet, Path: "/api/salespeople", Handler: api.HandleSalespeople()},

		// Datastar SSE
		{Method: http.MethodGet, Path: "/sse/overview", Handler: http.HandlerFunc(sse.HandleOverview)},
		{Method: http.MethodGet, Path: "/sse/products", Handler: http.HandlerFunc(sse.HandleProducts)},
		{Method: http.MethodGet, Path: "/sse/regions", Handler: http.HandlerFunc(sse.HandleRegions)},
		{Method: http.MethodGet, Path: "/sse/engagement", Handler: http.HandlerFunc(sse.HandleEngagement)},
		{Method: http.MethodGet, Path: "/sse/promotions", Handler: http.HandlerFunc(sse.HandlePromotions)},
		{Method: http.MethodPost, Path: "/sse/promotions", Handler: http.HandlerFunc(sse.HandleAddPromotion)},
		{Method: http.MethodGet, Path: "/sse/logs", Handler: http.HandlerFunc(sse.HandleLogs)},
		{Method: http.MethodGet, Path: "/sse/salespeople", Handler: http.HandlerFunc(sse.HandleSalespeople)},
		{Method: http.MethodGet, Path: "/sse/refresh-all", Handler: http.HandlerFunc(sse.HandleRefreshAll)},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
