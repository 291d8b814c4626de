package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/northlink/support-ai-platform/internal/approval"
	"github.com/northlink/support-ai-platform/internal/complaints"
	httpmiddleware "github.com/northlink/support-ai-platform/internal/http/middleware"
	"github.com/northlink/support-ai-platform/internal/triage"
	"github.com/northlink/support-ai-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger            *logging.Logger
	TriageHandler     *triage.Handler
	ComplaintsHandler *complaints.Handler
	ApprovalHandler   *approval.Handler
	MetricsHandler    http.Handler

	// AgentJWTSecret guards the agent workbench routes. Empty disables
	// auth, which is only acceptable in development.
	AgentJWTSecret string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (customer conversation, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.TriageHandler != nil {
			public.Post("/conversation/turn", cfg.TriageHandler.Turn)
		}
	})

	// Agent workbench endpoints
	r.Group(func(agent chi.Router) {
		if cfg.AgentJWTSecret != "" {
			agent.Use(httpmiddleware.AgentJWT(cfg.AgentJWTSecret))
		}
		agent.Route("/complaints/{complaintID}", func(c chi.Router) {
			if cfg.ComplaintsHandler != nil {
				c.Get("/", cfg.ComplaintsHandler.Get)
			}
			if cfg.ApprovalHandler != nil {
				c.Post("/draft-reply", cfg.ApprovalHandler.DraftReply)
				c.Post("/approve-reply", cfg.ApprovalHandler.ApproveReply)
			}
		})
		if cfg.ApprovalHandler != nil {
			agent.Get("/metrics/ai-performance", cfg.ApprovalHandler.AIPerformance)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
