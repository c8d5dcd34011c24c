package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutor-portal/internal/config"
	attendanceRecord "tutor-portal/internal/http-server/handlers/attendance/create"
	attendanceDelete "tutor-portal/internal/http-server/handlers/attendance/delete"
	attendanceGet "tutor-portal/internal/http-server/handlers/attendance/get"
	bookCreate "tutor-portal/internal/http-server/handlers/books/create"
	bookDelete "tutor-portal/internal/http-server/handlers/books/delete"
	bookGet "tutor-portal/internal/http-server/handlers/books/get"
	bookUpdate "tutor-portal/internal/http-server/handlers/books/update"
	dashboardAdmin "tutor-portal/internal/http-server/handlers/dashboard/admin"
	dashboardSummary "tutor-portal/internal/http-server/handlers/dashboard/summary"
	loanCreate "tutor-portal/internal/http-server/handlers/loans/create"
	loanDelete "tutor-portal/internal/http-server/handlers/loans/delete"
	loanGet "tutor-portal/internal/http-server/handlers/loans/get"
	loanUpdate "tutor-portal/internal/http-server/handlers/loans/update"
	materialCreate "tutor-portal/internal/http-server/handlers/materials/create"
	materialDelete "tutor-portal/internal/http-server/handlers/materials/delete"
	materialUpdate "tutor-portal/internal/http-server/handlers/materials/update"
	newsCreate "tutor-portal/internal/http-server/handlers/news/create"
	newsDelete "tutor-portal/internal/http-server/handlers/news/delete"
	newsGet "tutor-portal/internal/http-server/handlers/news/get"
	newsRestore "tutor-portal/internal/http-server/handlers/news/restore"
	newsUpdate "tutor-portal/internal/http-server/handlers/news/update"
	noteCreate "tutor-portal/internal/http-server/handlers/notes/create"
	noteDelete "tutor-portal/internal/http-server/handlers/notes/delete"
	noteGet "tutor-portal/internal/http-server/handlers/notes/get"
	noteUpdate "tutor-portal/internal/http-server/handlers/notes/update"
	parentDashboard "tutor-portal/internal/http-server/handlers/parent/dashboard"
	parentNotes "tutor-portal/internal/http-server/handlers/parent/notes"
	parentSchedules "tutor-portal/internal/http-server/handlers/parent/schedules"
	scheduleCreate "tutor-portal/internal/http-server/handlers/schedules/create"
	scheduleDelete "tutor-portal/internal/http-server/handlers/schedules/delete"
	scheduleGet "tutor-portal/internal/http-server/handlers/schedules/get"
	scheduleRestore "tutor-portal/internal/http-server/handlers/schedules/restore"
	scheduleStatus "tutor-portal/internal/http-server/handlers/schedules/status"
	scheduleUpdate "tutor-portal/internal/http-server/handlers/schedules/update"
	studentCreate "tutor-portal/internal/http-server/handlers/students/create"
	studentDelete "tutor-portal/internal/http-server/handlers/students/delete"
	studentGet "tutor-portal/internal/http-server/handlers/students/get"
	studentRestore "tutor-portal/internal/http-server/handlers/students/restore"
	studentUpdate "tutor-portal/internal/http-server/handlers/students/update"
	userCreate "tutor-portal/internal/http-server/handlers/users/create"
	userDelete "tutor-portal/internal/http-server/handlers/users/delete"
	userGet "tutor-portal/internal/http-server/handlers/users/get"
	userUpdate "tutor-portal/internal/http-server/handlers/users/update"
	"tutor-portal/internal/http-server/middleware/identity"
	"tutor-portal/internal/http-server/middleware/mwlogger"
	"tutor-portal/internal/lock"
	"tutor-portal/internal/models"
	svc "tutor-portal/internal/service"
	"tutor-portal/internal/storage/postgres"
	"tutor-portal/pkg/logger/sl"
	"tutor-portal/pkg/logger/slogpretty"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API",
		slog.String("env", cfg.Env),
		slog.String("timezone", cfg.Timezone),
		slog.String("locale", cfg.Locale),
	)
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = storage.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		log.Error("Failed to migrate storage", sl.Err(err))
		os.Exit(1)
	}

	var locker lock.Locker
	if cfg.Redis.Address != "" {
		locker, err = lock.NewRedisLock(cfg.Redis.Address, cfg.Redis.Password)
		if err != nil {
			log.Error("Failed to init redis lock", sl.Err(err))
			os.Exit(1)
		}
	} else {
		log.Warn("Redis address is empty, schedule locks are process-local")
		locker = lock.NewLocalLock()
	}

	service := svc.NewService(storage, locker,
		svc.WithLocation(cfg.Location()),
		svc.WithLocale(cfg.Locale),
		svc.WithLockTTL(cfg.Redis.LockTTL),
		svc.WithLockWait(cfg.Redis.LockWait),
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	authenticate := identity.New(log, cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	// Teacher
	router.Route("/guru", func(r chi.Router) {
		r.Use(authenticate, identity.RequireRole(models.RoleTeacher))

		r.Get("/dashboard/summary", dashboardSummary.New(log, service))

		r.Get("/schedules", scheduleGet.New(log, service))
		r.Post("/schedules", scheduleCreate.New(log, service))
		r.Get("/schedules/{id}", scheduleGet.New(log, service))
		r.Put("/schedules/{id}", scheduleUpdate.New(log, service))
		r.Delete("/schedules/{id}", scheduleDelete.New(log, service))
		r.Post("/schedules/{id}/restore", scheduleRestore.New(log, service))
		r.Put("/schedules/{id}/status", scheduleStatus.New(log, service))

		r.Post("/schedules/{id}/materials", materialCreate.New(log, service))
		r.Put("/materials/{id}", materialUpdate.New(log, service))
		r.Delete("/materials/{id}", materialDelete.New(log, service))

		r.Get("/attendance", attendanceGet.New(log, service))
		r.Post("/attendance", attendanceRecord.New(log, service))
		r.Delete("/attendance/{id}", attendanceDelete.New(log, service))

		r.Get("/notes", noteGet.New(log, service))
		r.Post("/notes", noteCreate.New(log, service))
		r.Put("/notes/{id}", noteUpdate.New(log, service))
		r.Delete("/notes/{id}", noteDelete.New(log, service))
	})

	// Parent
	router.Route("/parent", func(r chi.Router) {
		r.Use(authenticate, identity.RequireRole(models.RoleParent))

		r.Get("/dashboard", parentDashboard.New(log, service))
		r.Get("/schedules", parentSchedules.New(log, service))
		r.Get("/notes", parentNotes.New(log, service))
	})

	// Admin
	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate, identity.RequireRole(models.RoleAdmin))

		r.Get("/dashboard", dashboardAdmin.New(log, service))

		r.Get("/users", userGet.New(log, service))
		r.Post("/users", userCreate.New(log, service))
		r.Put("/users/{id}", userUpdate.New(log, service))
		r.Delete("/users/{id}", userDelete.New(log, service))

		r.Get("/students", studentGet.New(log, service))
		r.Post("/students", studentCreate.New(log, service))
		r.Put("/students/{id}", studentUpdate.New(log, service))
		r.Delete("/students/{id}", studentDelete.New(log, service))
		r.Post("/students/{id}/restore", studentRestore.New(log, service))

		r.Get("/books", bookGet.New(log, service))
		r.Post("/books", bookCreate.New(log, service))
		r.Put("/books/{id}", bookUpdate.New(log, service))
		r.Delete("/books/{id}", bookDelete.New(log, service))

		r.Get("/loans", loanGet.New(log, service))
		r.Post("/loans", loanCreate.New(log, service))
		r.Put("/loans/{id}", loanUpdate.New(log, service))
		r.Delete("/loans/{id}", loanDelete.New(log, service))

		r.Get("/news", newsGet.New(log, service))
		r.Post("/news", newsCreate.New(log, service))
		r.Put("/news/{id}", newsUpdate.New(log, service))
		r.Delete("/news/{id}", newsDelete.New(log, service))
		r.Post("/news/{id}/restore", newsRestore.New(log, service))
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
