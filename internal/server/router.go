package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/api"
	"github.com/cloo-solutions/supportdesk/internal/api/handlers"
	"github.com/cloo-solutions/supportdesk/internal/api/middleware"
)

const maxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	ChatHandler *handlers.ChatHandler
	// AdminHandler and AdminAPIKey are both required to mount /admin.
	AdminHandler *handlers.AdminHandler
	AdminAPIKey  string
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/chat", func(r chi.Router) {
		r.Post("/respond", cfg.ChatHandler.Respond)
		r.Post("/emotion", cfg.ChatHandler.Emotion)
		r.Post("/client-info", cfg.ChatHandler.ClientInfo)
	})
	r.Post("/sessions/end", cfg.ChatHandler.EndSession)

	if cfg.AdminHandler != nil && cfg.AdminAPIKey != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminKeyAuth(cfg.AdminAPIKey))

			r.Get("/snippets", cfg.AdminHandler.ListSnippets)
			r.Post("/snippets", cfg.AdminHandler.AddSnippet)
			r.Delete("/snippets/{id}", cfg.AdminHandler.DeleteSnippet)

			r.Get("/knowledge", cfg.AdminHandler.ListKnowledge)
			r.Put("/knowledge", cfg.AdminHandler.SaveKnowledge)
			r.Delete("/knowledge/{id}", cfg.AdminHandler.DeleteKnowledge)

			r.Put("/manual", cfg.AdminHandler.SetManual)
			r.Delete("/manual", cfg.AdminHandler.ResetManual)

			r.Get("/landing", cfg.AdminHandler.GetLanding)
			r.Put("/landing", cfg.AdminHandler.SetLanding)

			r.Get("/candidates", cfg.AdminHandler.ListCandidates)
			r.Get("/logs", cfg.AdminHandler.ListLogs)
			r.Post("/expand", cfg.AdminHandler.Expand)
		})
	}

	return r
}
