package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"auth-portal/internal/config"
	"auth-portal/internal/credentials"
	"auth-portal/internal/domain"
	apphttp "auth-portal/internal/http"
	"auth-portal/internal/oauth"
	"auth-portal/internal/service"
	"auth-portal/internal/session/sqlite"
	"auth-portal/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(apphttp.RecoveryMiddleware(logger))

	switch cfg.Auth.Mode {
	case config.ModeToken:
		secret := strings.TrimSpace(cfg.Auth.JWTSecret)
		if secret == "" {
			if cfg.Auth.RunMode != config.RunModeDevelopment {
				logger.Fatalf("JWT_SECRET is required outside development mode")
			}
			secret = config.DevSecret
			logger.Warn("JWT_SECRET not set, using the development fallback secret; tokens are forgeable by anyone with the source")
		}

		store := credentials.NewStore(domain.Identity{
			Username:     cfg.Identity.Username,
			PasswordHash: cfg.Identity.PasswordHash,
		})
		codec := token.NewCodec(secret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
		authSvc := service.NewAuthService(store, codec)

		handler := apphttp.NewHandler(authSvc, nil, nil, 0, logger)
		handler.RegisterTokenRoutes(router)
		logger.Infof("token mode, identity %q", store.Username())

	case config.ModeGitHub:
		if cfg.GitHub.ClientID == "" || cfg.GitHub.ClientSecret == "" {
			logger.Fatalf("github client credentials are required in github mode")
		}

		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Fatalf("open database: %v", err)
		}
		defer db.Close()

		sessions := sqlite.NewSessionStore(db)
		if err := sessions.Init(ctx); err != nil {
			logger.Fatalf("init session store: %v", err)
		}
		if n, err := sessions.DeleteExpired(ctx); err != nil {
			logger.Warnf("prune expired sessions: %v", err)
		} else if n > 0 {
			logger.Infof("pruned %d expired sessions", n)
		}

		provider := oauth.NewGitHubClient(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL)
		sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute

		handler := apphttp.NewHandler(nil, sessions, provider, sessionTTL, logger)
		handler.RegisterGitHubRoutes(router)
		logger.Info("github mode")

	default:
		logger.Fatalf("unknown auth mode %q", cfg.Auth.Mode)
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
