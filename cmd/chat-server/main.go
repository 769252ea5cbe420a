package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomchat/internal/config"
	"roomchat/internal/handler"
	"roomchat/internal/messaging"
	"roomchat/internal/observability"
	"roomchat/internal/repository/postgres"
	"roomchat/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting chat server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connCtx, connCancel := context.WithTimeout(ctx, 60*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(connCtx, cfg.DatabaseURL, cfg.Pool(), 30*time.Second)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgresql")

	if err := postgres.Migrate(connCtx, db); err != nil {
		slog.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go observability.CollectDBStats(ctx, db, 15*time.Second)

	var (
		events service.EventPublisher = messaging.NopPublisher{}
		broker handler.BrokerStatus
	)
	if cfg.EventsEnabled() {
		rmq, err := messaging.NewRabbitMQWithRetry(connCtx, cfg.RabbitMQURL, 30*time.Second)
		if err != nil {
			slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rmq.Close()
		events, broker = rmq, rmq
		slog.Info("chat events enabled", slog.String("exchange", messaging.EventsExchange))
	} else {
		slog.Info("chat events disabled")
	}

	messageRepo := postgres.NewMessageRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	unreadRepo := postgres.NewUnreadMarkerRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	chatService := service.NewChatService(messageRepo, participantRepo, unreadRepo, events, cfg.MaxMessagesCount)
	authService := service.NewAuthService(sessionRepo)

	router, err := newRouter(ctx, routerDeps{
		cfg:      cfg,
		chat:     handler.NewChatHandler(chatService, cfg.AccessDeniedMessage),
		sessions: authService,
		access:   chatService,
		ready:    handler.Ready(db, broker),
	})
	if err != nil {
		slog.Error("failed to build router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("chat server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()

	slog.Info("server stopped gracefully")
}
