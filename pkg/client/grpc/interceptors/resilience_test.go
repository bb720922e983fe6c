package interceptors

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// mockHealth answers health checks from a queue of status codes.
type mockHealth struct {
	healthpb.UnimplementedHealthServer

	mu        sync.Mutex
	callCount int32
	responses []codes.Code
	delay     time.Duration
}

func (s *mockHealth) Check(ctx context.Context, _ *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	s.mu.Lock()
	s.callCount++
	code := codes.OK
	if len(s.responses) > 0 {
		code = s.responses[0]
		s.responses = s.responses[1:]
	}
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, status.FromContextError(ctx.Err()).Err()
		}
	}
	if code != codes.OK {
		return nil, status.Error(code, "mock error")
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

func (s *mockHealth) setResponses(responses ...codes.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = responses
	s.callCount = 0
}

func (s *mockHealth) setDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

func (s *mockHealth) getCallCount() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}

// setupTestEnvironment starts a bufconn server and returns a health client using the given interceptors.
func setupTestEnvironment(t *testing.T, interceptors ...grpc.UnaryClientInterceptor) (healthpb.HealthClient, *mockHealth) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	service := &mockHealth{}

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, service)
	go func() {
		_ = grpcServer.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough://bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(interceptors...),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		grpcServer.Stop()
		_ = lis.Close()
	})
	return healthpb.NewHealthClient(conn), service
}

func resilientClient(t *testing.T) (healthpb.HealthClient, *mockHealth) {
	retryCfg := config.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 10 * time.Millisecond,
	}
	circuitBreakerCfg := config.CircuitBreakerConfig{
		ConsecutiveFailures: 5,
		ErrorRatePercent:    60,
		OpenTimeout:         5 * time.Second,
	}
	return setupTestEnvironment(t,
		NewRetryInterceptor(retryCfg),
		NewCircuitBreaker("test", circuitBreakerCfg),
	)
}

func TestInterceptors_HappyPath(t *testing.T) {
	client, service := resilientClient(t)

	// given
	service.setResponses(codes.OK)

	// when
	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})

	// then
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	require.Equal(t, int32(1), service.getCallCount(), "Server should be called exactly once")
}

func TestInterceptors_RetryOnTransientError(t *testing.T) {
	client, service := resilientClient(t)

	// given
	service.setResponses(codes.Unavailable, codes.Unavailable, codes.OK)

	// when
	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})

	// then
	require.NoError(t, err)
	require.Equal(t, int32(3), service.getCallCount(), "Server should be called exactly 3 times due to retries")
}

func TestInterceptors_NoRetryOnNotFound(t *testing.T) {
	client, service := resilientClient(t)

	// given
	service.setResponses(codes.NotFound)

	// when
	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "unknown"})

	// then
	require.Error(t, err)
	require.Equal(t, codes.NotFound, status.Code(err))
	require.Equal(t, int32(1), service.getCallCount(), "Server should be called exactly once, no retries on NotFound")
}

func TestInterceptors_CircuitBreakerOpens(t *testing.T) {
	client, service := resilientClient(t)

	// given
	// Two calls of three attempts each exceed five consecutive failures.
	service.setResponses(
		codes.Unavailable, codes.Unavailable, codes.Unavailable,
		codes.Unavailable, codes.Unavailable, codes.Unavailable,
	)

	// when
	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.Error(t, err, "First call should fail")
	_, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.Error(t, err, "Second call should fail")
	require.Equal(t, int32(6), service.getCallCount(), "Server should be called 6 times")

	// then
	_, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, int32(6), service.getCallCount(), "Circuit breaker should block the call")
}

func TestInterceptors_CircuitBreakerIgnoresNotFound(t *testing.T) {
	client, service := resilientClient(t)

	// given
	responses := make([]codes.Code, 10)
	for i := range responses {
		responses[i] = codes.NotFound
	}
	service.setResponses(responses...)

	// when
	for i := 0; i < 10; i++ {
		_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
		require.Equal(t, codes.NotFound, status.Code(err))
	}

	// then
	require.Equal(t, int32(10), service.getCallCount(), "Circuit breaker should not trigger on NotFound")
}

func TestUnaryClientTimeoutInterceptor(t *testing.T) {
	testCases := []struct {
		name         string
		delay        time.Duration
		expectedCode codes.Code
	}{
		{name: "fast server", delay: 0, expectedCode: codes.OK},
		{name: "slow server", delay: 500 * time.Millisecond, expectedCode: codes.DeadlineExceeded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			client, service := setupTestEnvironment(t, UnaryClientTimeoutInterceptor(50*time.Millisecond))
			service.setDelay(tc.delay)

			// when
			_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})

			// then
			require.Equal(t, tc.expectedCode, status.Code(err))
		})
	}
}
