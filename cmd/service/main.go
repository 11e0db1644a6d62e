package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gitlab.com/dirk.krummacker/contacts-book/internal/auth"
	"gitlab.com/dirk.krummacker/contacts-book/internal/config"
	"gitlab.com/dirk.krummacker/contacts-book/internal/database"
	"gitlab.com/dirk.krummacker/contacts-book/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-book/internal/metrics"
	"gitlab.com/dirk.krummacker/contacts-book/internal/service"
	"gitlab.com/dirk.krummacker/contacts-book/internal/store"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=dirk DBPWD=bullo92 JWT_SECRET=s3cr3t GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	if err := run(); err != nil {
		slog.Error("contacts service failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetupDefault(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// Open waits until the database accepts connections, so the migrations run afterwards.
	if cfg.MigrateOnStart {
		if err := database.RunMigrations(cfg.Database); err != nil {
			return err
		}
	}

	tokens, err := auth.NewService(auth.Config{
		Secret:          []byte(cfg.JWTSecret),
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "contacts"),
	)

	router := service.NewRouter(service.Dependencies{
		Contacts:           store.NewContactStore(db),
		Users:              store.NewUserStore(db),
		Tokens:             tokens,
		DB:                 db,
		Metrics:            metrics.NewCollector(registry),
		Gatherer:           registry,
		Logger:             slog.Default(),
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		RequestLogging:     cfg.RequestLogging(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("contacts service starting",
			slog.String("addr", server.Addr),
			slog.String("gin_mode", gin.Mode()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down contacts service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	slog.Info("contacts service stopped gracefully")
	return nil
}
