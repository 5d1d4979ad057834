package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chat-realtime-api/internal/auth"
	"chat-realtime-api/internal/cache"
	"chat-realtime-api/internal/chat"
	"chat-realtime-api/internal/config"
	"chat-realtime-api/internal/database"
	"chat-realtime-api/internal/handlers"
	"chat-realtime-api/internal/identity"
	"chat-realtime-api/internal/logger"
	"chat-realtime-api/internal/realtime"
	"chat-realtime-api/internal/routes"
	"chat-realtime-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, json or toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	gin.SetMode(gin.ReleaseMode)

	// Init database
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New(db)
	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL)

	identities := cache.New[string, identity.UserRecord](cfg.Chat.IdentityCacheTTL)
	go identities.Run(ctx, cfg.Chat.IdentityCacheTTL)
	resolver := identity.NewResolver(tokens, st, identities, log.Named("identity"))

	svc, err := chat.NewService(st, st, chat.Options{
		NodeID:           cfg.Chat.NodeID,
		MaxContentLength: cfg.Chat.MaxContentLength,
	}, log.Named("chat"))
	if err != nil {
		return err
	}

	registry := realtime.NewRegistry()
	rtLog := log.Named("realtime")
	h := handlers.New(handlers.Deps{
		Store:    st,
		Tokens:   tokens,
		Authn:    resolver,
		Registry: registry,
		Sessions: realtime.SessionDeps{
			Broadcaster: realtime.NewBroadcaster(registry, rtLog),
			Sender:      svc,
			Log:         rtLog,
		},
		WS: handlers.WSConfig{
			SendBuffer:    cfg.Chat.SendBuffer,
			PingInterval:  cfg.Chat.PingInterval,
			PongWait:      cfg.Chat.PongWait,
			MaxFrameBytes: cfg.Chat.MaxFrameBytes,
		},
		Log: log,
	})

	// Setup the routes (public, protected and websocket)
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: routes.SetupRoutes(h, log),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; close them
	// through the registry.
	registry.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}
