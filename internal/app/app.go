package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/dal/postgres"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/otel"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/adminsvc"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/authsvc"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/catalogsvc"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/ordersvc"
	httptransport "github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()

	authSvc := authsvc.MustNewAuthService(
		authsvc.WithPostgresClient(postgresClient),
	)
	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithPostgresClient(postgresClient),
	)
	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)
	adminSvc := adminsvc.MustNewAdminService(
		adminsvc.WithPostgresClient(postgresClient),
	)

	if err := authSvc.SeedAdmin(context.Background()); err != nil {
		slog.Error("Failed to seed admin account", "error", err)
	}

	transport := httptransport.NewHTTPTransport(authSvc, catalogSvc, orderSvc, adminSvc)
	transport.RegisterRoutes()

	return &App{
		transport:      transport,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
