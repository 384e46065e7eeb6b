package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/postpad/postpad-go/internal/config"
	"github.com/postpad/postpad-go/internal/handler"
	"github.com/postpad/postpad-go/internal/middleware"
	"github.com/postpad/postpad-go/internal/repository"
	"github.com/postpad/postpad-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	tokenService := service.NewTokenService(repository.NewTokenRepository(db), cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(repository.NewUserRepository(db), tokenService)
	postService := service.NewPostService(repository.NewPostRepository(db))

	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokenService))
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/current_user", authHandler.HandleCurrentUser)
		r.Put("/user/update", authHandler.HandleUpdateProfile)
		r.Put("/user/updatepassword", authHandler.HandleUpdatePassword)
		r.Delete("/user/delete_account", authHandler.HandleDeleteAccount)

		r.Post("/posts", postHandler.HandleCreate)
		r.Get("/posts", postHandler.HandleList)
		r.Get("/posts/{post_id}", postHandler.HandleGet)
		r.Put("/posts/{post_id}", postHandler.HandleUpdate)
		r.Delete("/posts/{post_id}", postHandler.HandleDelete)
	})

	pruneCtx, stopPruner := context.WithCancel(context.Background())
	defer stopPruner()
	go pruneRevokedTokens(pruneCtx, tokenService, cfg.RevokedPruneEvery)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// pruneRevokedTokens periodically drops revocation entries whose tokens
// have expired anyway, keeping the blacklist bounded.
func pruneRevokedTokens(ctx context.Context, tokens *service.TokenService, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.PruneRevoked(ctx)
			if err != nil {
				slog.Warn("pruning revoked tokens failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("pruned revoked tokens", "deleted", n)
			}
		}
	}
}
