package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abgdnv/catalog/internal/app"
	"github.com/abgdnv/catalog/pkg/client/grpc/interceptors"
	"github.com/abgdnv/catalog/pkg/config"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ErrNotServing is returned when the probed server answers with any status but SERVING.
var ErrNotServing = errors.New("not serving")

type healthOptions struct {
	probe   config.ProbeConfig
	service string
	watch   time.Duration
}

func newHealthCmd() *cobra.Command {
	opts := &healthOptions{}
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the gRPC health service of a running catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.probe.Validate(); err != nil {
				return err
			}
			conn, err := dialHealth(opts)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			client := healthpb.NewHealthClient(conn)

			if opts.watch <= 0 {
				return probe(cmd, client, opts.service)
			}
			return watch(cmd, client, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.probe.Addr, "addr", "localhost:9090", "gRPC server address")
	f.DurationVar(&opts.probe.Timeout, "timeout", 2*time.Second, "timeout of a single attempt")
	f.StringVar(&opts.service, "service", app.ServiceName, "service name to check, empty for the whole server")
	f.DurationVar(&opts.watch, "watch", 0, "keep probing at this interval until interrupted")
	f.UintVar(&opts.probe.Retry.MaxAttempts, "retries", 3, "attempts per probe on transient errors")
	f.DurationVar(&opts.probe.Retry.InitialBackoff, "backoff", 100*time.Millisecond, "initial retry backoff")
	f.Uint32Var(&opts.probe.CircuitBreaker.ConsecutiveFailures, "breaker-failures", 5, "consecutive failures that open the circuit breaker")
	f.IntVar(&opts.probe.CircuitBreaker.ErrorRatePercent, "breaker-error-rate", 60, "failure percentage that opens the circuit breaker")
	f.DurationVar(&opts.probe.CircuitBreaker.OpenTimeout, "breaker-open", 10*time.Second, "time the circuit breaker stays open")
	return cmd
}

func dialHealth(opts *healthOptions) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(opts.probe.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			interceptors.NewRetryInterceptor(opts.probe.Retry),
			interceptors.NewCircuitBreaker("health", opts.probe.CircuitBreaker),
			interceptors.UnaryClientTimeoutInterceptor(opts.probe.Timeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client for %s: %w", opts.probe.Addr, err)
	}
	return conn, nil
}

// probe runs a single health check and prints the reported status.
func probe(cmd *cobra.Command, client healthpb.HealthClient, service string) error {
	resp, err := client.Check(cmd.Context(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.GetStatus())
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", ErrNotServing, resp.GetStatus())
	}
	return nil
}

// watch probes every interval until the command context is cancelled.
func watch(cmd *cobra.Command, client healthpb.HealthClient, opts *healthOptions) error {
	ticker := time.NewTicker(opts.watch)
	defer ticker.Stop()
	for {
		if err := probe(cmd, client, opts.service); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
		select {
		case <-cmd.Context().Done():
			if errors.Is(cmd.Context().Err(), context.Canceled) {
				return nil
			}
			return cmd.Context().Err()
		case <-ticker.C:
		}
	}
}
