package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/clinaid/medassist/internal/api/handlers"
	"github.com/clinaid/medassist/internal/api/middleware"
	"github.com/clinaid/medassist/internal/infrastructure/observability"
)

// HealthProber reports whether the generation backends are reachable.
type HealthProber interface {
	Name() string
	Probe(ctx context.Context) bool
}

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	analysisHandler     *handlers.AnalysisHandler
	conversationHandler *handlers.ConversationHandler
	summaryHandler      *handlers.ArticleSummaryHandler

	prober HealthProber

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	analysisHandler *handlers.AnalysisHandler,
	conversationHandler *handlers.ConversationHandler,
	summaryHandler *handlers.ArticleSummaryHandler,
	prober HealthProber,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		analysisHandler:     analysisHandler,
		conversationHandler: conversationHandler,
		summaryHandler:      summaryHandler,

		prober: prober,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Provider reachability probe. Degraded backends still serve requests
	// through the keyword safety path, so this reports 200 either way.
	r.mux.HandleFunc("GET /health/providers", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()

		status := "unreachable"
		if r.prober != nil && r.prober.Probe(ctx) {
			status = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"providers":"` + status + `"}`)); err != nil {
			return
		}
	})

	// Analysis endpoint
	r.mux.HandleFunc("POST /api/assistant/analyze", r.analysisHandler.Analyze)

	// Conversation endpoints
	r.mux.HandleFunc("POST /api/conversations", r.conversationHandler.CreateConversation)
	r.mux.HandleFunc("GET /api/conversations/{id}", r.conversationHandler.GetConversation)
	r.mux.HandleFunc("GET /api/conversations/{id}/messages", r.conversationHandler.ListMessages)
	r.mux.HandleFunc("GET /api/conversations/{id}/analyses", r.conversationHandler.ListAnalyses)

	// Article summary endpoints
	r.mux.HandleFunc("POST /api/articles/{id}/summary", r.summaryHandler.Summarize)
	r.mux.HandleFunc("GET /api/articles/{id}/summary", r.summaryHandler.GetSummary)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
