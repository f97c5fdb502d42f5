package api

import (
	"net/http"

	"github.com/happyhourhub/backend/internal/auth"
	"github.com/happyhourhub/backend/internal/health"
	"github.com/happyhourhub/backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type Router struct {
	mux              *http.ServeMux
	authHandlers     *auth.Handlers
	authService      *auth.Service
	listingHandlers  *ListingHandlers
	interestHandlers *InterestHandlers
	healthChecker    *health.Checker
	gatherer         prometheus.Gatherer
}

func NewRouter(
	authHandlers *auth.Handlers,
	authService *auth.Service,
	listingHandlers *ListingHandlers,
	interestHandlers *InterestHandlers,
	healthChecker *health.Checker,
	gatherer prometheus.Gatherer,
) *Router {
	r := &Router{
		mux:              http.NewServeMux(),
		authHandlers:     authHandlers,
		authService:      authService,
		listingHandlers:  listingHandlers,
		interestHandlers: interestHandlers,
		healthChecker:    healthChecker,
		gatherer:         gatherer,
	}
	r.setupRoutes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	// Operational endpoints
	r.mux.HandleFunc("GET /health", r.healthChecker.Handler)
	r.mux.Handle("GET /metrics", metrics.Handler(r.gatherer))

	// Auth routes (no auth required)
	r.mux.HandleFunc("POST /api/auth/signup", r.authHandlers.Signup)
	r.mux.HandleFunc("POST /api/auth/login", r.authHandlers.Login)
	r.mux.HandleFunc("POST /api/auth/logout", r.authHandlers.Logout)

	// Auth routes (auth required)
	r.mux.Handle("GET /api/auth/verify", r.withAuth(r.authHandlers.Verify))

	// Public browse routes; identity is attached when present
	r.mux.Handle("GET /api/happy-hours", r.withOptionalAuth(r.listingHandlers.List))
	r.mux.Handle("GET /api/happy-hours/{id}", r.withOptionalAuth(r.listingHandlers.GetByID))

	// Interest routes (auth required)
	r.mux.Handle("POST /api/interests", r.withAuth(r.interestHandlers.Create))
	r.mux.Handle("GET /api/interests", r.withAuth(r.interestHandlers.List))
	r.mux.Handle("DELETE /api/interests/{id}", r.withAuth(r.interestHandlers.Delete))
}

func (r *Router) withAuth(next http.HandlerFunc) http.Handler {
	return auth.RequireAuth(r.authService)(next)
}

func (r *Router) withOptionalAuth(next http.HandlerFunc) http.Handler {
	return auth.OptionalAuth(r.authService)(next)
}
