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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/taskmanager/taskmanager-go/internal/config"
	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/handler"
	"github.com/taskmanager/taskmanager-go/internal/middleware"
	"github.com/taskmanager/taskmanager-go/internal/repository"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

const banner = "Task Manager API v1"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("invalid database configuration", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	authService := service.NewAuthService(
		repository.NewUserRepository(db),
		crypto.NewPasswordHasher(crypto.DefaultHashParams()),
		cfg.JWTSecret,
		cfg.JWTExpiry,
	)
	taskService := service.NewTaskService(
		repository.NewTaskRepository(db),
		service.WithCache(cfg.CacheSize, cfg.CacheTTL),
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow,
		middleware.WithSweepInterval(cfg.RateLimitSweep))
	defer limiter.Close()

	r := newRouter(cfg, routes{
		users:   handler.NewUserHandler(authService),
		tasks:   handler.NewTaskHandler(taskService, cfg.Location),
		limiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "timezone", cfg.Location.String())
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

func newLogger(cfg config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type routes struct {
	users   *handler.UserHandler
	tasks   *handler.TaskHandler
	limiter *middleware.RateLimiter
}

func newRouter(cfg config.Config, h routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(banner))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.limiter.Handler)

		r.Post("/users/register", h.users.HandleRegister)
		r.Post("/users/login", h.users.HandleLogin)
		r.With(middleware.OptionalJWTAuth(cfg.JWTSecret)).Get("/users/{id}", h.users.HandleProfile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret))
			r.Get("/users/me", h.users.HandleMe)

			r.Get("/tasks", h.tasks.HandleList)
			r.Post("/tasks", h.tasks.HandleCreate)
			r.Get("/tasks/stats", h.tasks.HandleStats)
			r.Get("/tasks/analytics", h.tasks.HandleAnalytics)
			r.Get("/tasks/export", h.tasks.HandleExport)
			r.Post("/tasks/bulk", h.tasks.HandleBulk)
			r.Get("/tasks/{id}", h.tasks.HandleGet)
			r.Put("/tasks/{id}", h.tasks.HandleUpdate)
			r.Delete("/tasks/{id}", h.tasks.HandleDelete)
		})
	})

	return r
}
