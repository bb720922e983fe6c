// Package app contains the application setup for the catalog service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/abgdnv/catalog/internal/transport/rest"
	"github.com/abgdnv/catalog/pkg/auth"
	"github.com/abgdnv/catalog/pkg/messaging"
	pnats "github.com/abgdnv/catalog/pkg/nats"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/abgdnv/catalog/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "catalog"

type Dependencies struct {
	Store          store.Store
	CatalogService *catalog.Service
	Health         *health.Server
	Metrics        *telemetry.Metrics
	Logger         *slog.Logger
	MetricsPath    string
	NatsConn       *nats.Conn
	Verifier       auth.Verifier
}

// SetupDependencies opens the store and builds the catalog service around it.
// tp may be nil, in which case operations are not traced.
// The caller owns the returned dependencies and must call Close.
func SetupDependencies(ctx context.Context, cfg *config.Config, tp trace.TracerProvider, logger *slog.Logger) (*Dependencies, error) {
	st, err := store.Open(ctx, store.Options{
		URL:            cfg.Database.URL,
		ConnectTimeout: cfg.Database.Timeout,
		Migrate:        cfg.Database.Migrate,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var opts []catalog.Option
	if tp != nil {
		opts = append(opts, catalog.WithTracerProvider(tp))
	}
	deps := &Dependencies{
		Store:  st,
		Health: health.NewServer(),
		Logger: logger,
	}
	if cfg.Metrics.Enabled {
		m, err := telemetry.NewMetrics(ServiceName)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		deps.Metrics = m
		deps.MetricsPath = cfg.Metrics.Path
		opts = append(opts, catalog.WithMeterProvider(m.Provider))
	}
	if cfg.NATS.Enabled() {
		publisher, nc, err := setupPublisher(ctx, cfg)
		if err != nil {
			_ = deps.Close(ctx)
			return nil, err
		}
		deps.NatsConn = nc
		opts = append(opts, catalog.WithPublisher(publisher))
		logger.Info("Publishing catalog events", "stream", messaging.StreamName)
	}
	if cfg.Auth.Enabled() {
		verifier, err := auth.NewJWTVerifier(ctx, cfg.Auth)
		if err != nil {
			_ = deps.Close(ctx)
			return nil, err
		}
		deps.Verifier = verifier
	}
	deps.CatalogService = catalog.NewService(st, logger, opts...)
	deps.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	deps.Health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return deps, nil
}

// Close marks the service as not serving and releases the store and the meter provider.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Health.Shutdown()
	var err error
	if d.NatsConn != nil {
		if drainErr := d.NatsConn.Drain(); drainErr != nil {
			d.Logger.Warn("Failed to drain NATS connection", "error", drainErr)
		}
	}
	if d.Metrics != nil {
		err = d.Metrics.Provider.Shutdown(ctx)
	}
	if closeErr := d.Store.Close(); closeErr != nil {
		return closeErr
	}
	return err
}

// setupPublisher connects to NATS and makes sure the catalog stream exists.
func setupPublisher(ctx context.Context, cfg *config.Config) (_ messaging.Publisher, _ *nats.Conn, err error) {
	nc, err := pnats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			nc.Close()
		}
	}()
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if err = pnats.EnsureStream(ctx, js, messaging.StreamName, messaging.StreamSubjects); err != nil {
		return nil, nil, err
	}
	return pnats.NewNatsPublisher(js), nc, nil
}

// SetupHttpHandler initializes the routes and middleware of the catalog HTTP API.
// Used by tests to drive the API without a listening server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return server.Instrument(mux, "catalog.http")
}

// wireRoutes sets up the HTTP routes for the catalog application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	catalogHandler := rest.NewHandler(deps.CatalogService, deps.Logger)
	var writeMiddlewares []func(http.Handler) http.Handler
	if deps.Verifier != nil {
		writeMiddlewares = append(writeMiddlewares, auth.Middleware(deps.Verifier, deps.Logger))
	}
	catalogHandler.RegisterRoutes(mux, writeMiddlewares...)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.Metrics.Handler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the catalog application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer initializes the gRPC server exposing the standard health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, server.HealthRegistration(deps.Health))
}
