package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/deckray/internal/api"
	"github.com/cloo-solutions/deckray/internal/api/handlers"
	"github.com/cloo-solutions/deckray/internal/api/middleware"
)

type RouterConfig struct {
	AnalyzeHandler *handlers.AnalyzeHandler
	RulesHandler   *handlers.RulesHandler
	ModelHandler   *handlers.ModelHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 60 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/analyze", func(r chi.Router) {
		r.Post("/structure", cfg.AnalyzeHandler.Structure)
		r.Post("/content", cfg.AnalyzeHandler.Content)
		r.Post("/visual", cfg.AnalyzeHandler.Visual)
	})

	r.Post("/rules/documents", cfg.RulesHandler.AddDocuments)

	r.Route("/models", func(r chi.Router) {
		r.Get("/", cfg.ModelHandler.List)
		r.Get("/{id}", cfg.ModelHandler.Get)
	})

	return r
}
