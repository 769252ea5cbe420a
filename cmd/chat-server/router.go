package main

import (
	"context"
	"fmt"
	"net/http"

	"roomchat/internal/config"
	"roomchat/internal/handler"
	"roomchat/internal/httpx"
	"roomchat/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routerDeps are the collaborators mounted by newRouter
type routerDeps struct {
	cfg      *config.Config
	chat     *handler.ChatHandler
	sessions middleware.SessionValidator
	access   middleware.AccessChecker
	ready    http.HandlerFunc
}

func newRouter(ctx context.Context, d routerDeps) (http.Handler, error) {
	validator, err := middleware.OpenAPIValidator(
		middleware.DefaultOpenAPIValidatorConfig(d.cfg.OpenAPIValidation, d.cfg.OpenAPISpecPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(middleware.ParseOrigins(d.cfg.AllowedOrigins)))

	r.Get("/health", handler.Health)
	r.Get("/health/ready", d.ready)
	r.Handle("/metrics", promhttp.Handler())

	limiter := middleware.NewRateLimiter(ctx, d.cfg.RateLimitRPS, d.cfg.RateLimitBurst)

	// Guards apply per route so that unknown paths under a chat prefix
	// reach NotFound instead of Auth
	guarded := r.With(
		chimiddleware.Timeout(d.cfg.RequestTimeout),
		limiter.Middleware(),
		middleware.Auth(d.sessions),
		middleware.CSRF,
		middleware.RequireParticipant(d.access, d.cfg.AccessDeniedMessage),
		validator,
	)

	for _, prefix := range []string{"/api/v1/chat/{chat_room_id}", "/chat/{chat_room_id}"} {
		guarded.Get(prefix+"/messages", d.chat.FetchMessages)
		guarded.Post(prefix+"/send", d.chat.SendMessage)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r, nil
}
