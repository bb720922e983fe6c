package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/catalog/internal/app"
	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/pkg/bootstrap"
	"github.com/abgdnv/catalog/pkg/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, gRPC and pprof servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServiceConfig(opts)
			if err != nil {
				return err
			}
			log.Printf("Configuration loaded: %v", cfg)
			return run(cmd.Context(), cfg)
		},
	}
}

// run sets up the store and starts the HTTP, gRPC and pprof servers until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	if cfg.Telemetry.Enabled() {
		sdkTP, err := telemetry.NewTracerProvider(ctx, app.ServiceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := sdkTP.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shutdown tracer provider", "error", err)
			}
		}()
		tp = sdkTP
	}

	deps, err := app.SetupDependencies(ctx, cfg, tp, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		if err := deps.Close(shutdownCtx); err != nil {
			logger.Warn("Failed to release dependencies", "error", err)
		}
	}()

	g, gCtx := errgroup.WithContext(ctx)
	serveHTTP(g, gCtx, "HTTP", app.SetupHttpServer(deps, cfg), cfg.Shutdown.Timeout, logger)

	if cfg.GRPC.Enabled {
		grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
		g.Go(func() error {
			grpcAddr := ":" + cfg.GRPC.Port
			lis, err := net.Listen("tcp", grpcAddr)
			if err != nil {
				return fmt.Errorf("failed to listen on gRPC port: %w", err)
			}
			logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
			return grpcServer.Serve(lis)
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down gRPC server...")
			return stopGrpc(grpcServer, cfg.Shutdown.Timeout, logger)
		})
	}

	if cfg.PProf.Enabled {
		// the blank net/http/pprof import registers its handlers on http.DefaultServeMux
		pprofServer := &http.Server{
			Addr:              cfg.PProf.Addr,
			ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		}
		serveHTTP(g, gCtx, "pprof", pprofServer, cfg.Shutdown.Timeout, logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("catalog stopped with error: %w", err)
	}
	logger.Info("Catalog stopped gracefully")
	return nil
}

// serveHTTP runs srv in g and shuts it down, within timeout, once gCtx is done.
func serveHTTP(g *errgroup.Group, gCtx context.Context, name string, srv *http.Server, timeout time.Duration, logger *slog.Logger) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// stopGrpc stops the server gracefully, forcing it down after timeout.
func stopGrpc(grpcServer *grpc.Server, timeout time.Duration, logger *slog.Logger) error {
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		logger.Info("gRPC server stopped gracefully")
		return nil
	case <-time.After(timeout):
		logger.Warn("gRPC server graceful stop timed out, forcing stop")
		grpcServer.Stop()
		return fmt.Errorf("grpc server graceful stop timed out")
	}
}
