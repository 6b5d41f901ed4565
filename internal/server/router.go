package server

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
)

// Route binds one method and path to a handler with its own middleware on
// top of the shared stack.
type Route struct {
	Method      string
	Path        string
	Handler     http.Handler
	Middlewares []alice.Constructor
}

type Router struct {
	router *httprouter.Router
}

func NewRouter(logger *slog.Logger, routes ...Route) *Router {
	r := &Router{router: httprouter.New()}
	r.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errors.WriteError(w, logger, errors.NotFound("route not found"), observability.GetRequestID(req.Context()))
	})
	r.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		errors.WriteError(w, logger, errors.MethodNotAllowed("method not allowed"), observability.GetRequestID(req.Context()))
	})
	r.AddRoutes(routes...)
	return r
}

func (r *Router) AddRoutes(routes ...Route) {
	for _, route := range routes {
		r.router.Handler(route.Method, route.Path, alice.New(route.Middlewares...).Then(route.Handler))
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
