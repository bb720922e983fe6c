// Package e2e provides end-to-end tests for the catalog application.
// The suite runs the real HTTP handler in an httptest.Server against each storage backend:
// the in-memory store, SQLite through gorm, and PostgreSQL in a testcontainers-go container
// with the embedded migrations applied on startup.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/catalog/internal/app"
	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipIntegrationTests is the environment variable that can be set to skip container based tests.
const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

// productURL is the base URL for the catalog API.
const productURL = "/api/v1/products"

// CatalogE2ESuite is a test suite for end-to-end tests of the catalog.
type CatalogE2ESuite struct {
	suite.Suite
	// databaseURL returns the URL of a fresh, empty database for one test.
	databaseURL func(t *testing.T) string
	teardown    func()
	deps        *app.Dependencies
	server      *httptest.Server
	httpClient  *http.Client
	ctx         context.Context
}

// testConfig creates a configuration for the catalog with metrics enabled.
func testConfig(databaseURL string) *config.Config {
	var cfg config.Config
	cfg.Database.URL = databaseURL
	cfg.Database.Timeout = 30 * time.Second
	cfg.Database.Migrate = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	cfg.Log.Level = "debug"
	return &cfg
}

func (s *CatalogE2ESuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *CatalogE2ESuite) TearDownSuite() {
	if s.teardown != nil {
		s.teardown()
	}
}

// SetupTest starts the application on an empty database.
func (s *CatalogE2ESuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := app.SetupDependencies(s.ctx, testConfig(s.databaseURL(s.T())), nil, logger)
	require.NoError(s.T(), err, "Failed to setup application for E2E")
	s.deps = deps
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
}

func (s *CatalogE2ESuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
	}
	if s.deps != nil {
		s.NoError(s.deps.Close(s.ctx))
	}
}

func (s *CatalogE2ESuite) TestAddGetList() {
	// given
	widget := `{"id": 1, "name": "Widget", "description": "Blue widget", "cost": 2.5, "qty": 10}`
	gear := `{"id": 2, "name": "Gear", "description": "", "cost": 0, "qty": 0}`

	// when
	s.Equal(http.StatusCreated, s.status(http.MethodPost, productURL, widget))
	s.Equal(http.StatusCreated, s.status(http.MethodPost, productURL, gear))

	// then
	found, code := s.getProduct("1")
	s.Require().Equal(http.StatusOK, code)
	s.Equal(catalog.Product{ID: 1, Name: "Widget", Description: "Blue widget", Cost: 2.5, Qty: 10}, found)

	list := s.listProducts()
	s.Require().Len(list, 2)
	s.Equal(int64(1), list[0].ID)
	s.Equal(int64(2), list[1].ID)
}

func (s *CatalogE2ESuite) TestGetMissingProduct() {
	body, code := s.doRequest(http.MethodGet, productURL+"/404", "")
	s.Equal(http.StatusNotFound, code)
	s.JSONEq(`{"error":"Product with ID 404 not found"}`, string(body))
}

func (s *CatalogE2ESuite) TestAddProductValidation() {
	testCases := []struct {
		name         string
		body         string
		expectedBody string
	}{
		{
			name:         "missing key",
			body:         `{"id": 1, "name": "A", "cost": 1, "qty": 1}`,
			expectedBody: `{"error":"Product data must contain keys: {'id', 'name', 'description', 'cost', 'qty'}"}`,
		},
		{
			name:         "negative cost",
			body:         `{"id": 1, "name": "A", "description": "", "cost": -0.01, "qty": 1}`,
			expectedBody: `{"error":"Cost and quantity must be non-negative."}`,
		},
		{
			name:         "negative qty",
			body:         `{"id": 1, "name": "A", "description": "", "cost": 1, "qty": -1}`,
			expectedBody: `{"error":"Cost and quantity must be non-negative."}`,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			body, code := s.doRequest(http.MethodPost, productURL, tc.body)
			s.Equal(http.StatusBadRequest, code)
			s.JSONEq(tc.expectedBody, string(body))
		})
	}
	s.Empty(s.listProducts())
}

func (s *CatalogE2ESuite) TestDuplicateIDConflict() {
	body := `{"id": 1, "name": "A", "description": "", "cost": 1, "qty": 1}`
	s.Require().Equal(http.StatusCreated, s.status(http.MethodPost, productURL, body))
	s.Equal(http.StatusConflict, s.status(http.MethodPost, productURL, body))
}

func (s *CatalogE2ESuite) TestBatchIsAllOrNothing() {
	// given
	invalidBatch := `[
		{"id": 1, "name": "A", "description": "", "cost": 1, "qty": 1},
		{"id": 2, "name": "B", "description": "", "cost": 1}
	]`
	validBatch := `[
		{"id": 1, "name": "A", "description": "", "cost": 1, "qty": 1},
		{"id": 2, "name": "B", "description": "", "cost": 1, "qty": 5}
	]`

	// when
	rejected := s.status(http.MethodPost, productURL+"/batch", invalidBatch)
	listAfterReject := s.listProducts()
	accepted := s.status(http.MethodPost, productURL+"/batch", validBatch)

	// then
	s.Equal(http.StatusBadRequest, rejected)
	s.Empty(listAfterReject)
	s.Equal(http.StatusCreated, accepted)
	s.Len(s.listProducts(), 2)
}

func (s *CatalogE2ESuite) TestUpdateQty() {
	s.Require().Equal(http.StatusCreated,
		s.status(http.MethodPost, productURL, `{"id": 3, "name": "C", "description": "", "cost": 1, "qty": 1}`))

	s.Equal(http.StatusNoContent, s.status(http.MethodPut, productURL+"/3/qty", `{"qty": 99}`))
	s.Equal(http.StatusBadRequest, s.status(http.MethodPut, productURL+"/3/qty", `{"qty": -5}`))
	// unknown ids are not an error
	s.Equal(http.StatusNoContent, s.status(http.MethodPut, productURL+"/77/qty", `{"qty": 1}`))

	found, code := s.getProduct("3")
	s.Require().Equal(http.StatusOK, code)
	s.Equal(int64(99), found.Qty)
}

func (s *CatalogE2ESuite) TestMetricsExposed() {
	s.Require().Equal(http.StatusOK, s.status(http.MethodGet, productURL, ""))

	body, code := s.doRequest(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, code)
	s.Contains(string(body), "catalog_operations_total")
}

func TestCatalogE2E_Memory(t *testing.T) {
	suite.Run(t, &CatalogE2ESuite{
		databaseURL: func(*testing.T) string { return "memory://" },
	})
}

func TestCatalogE2E_SQLite(t *testing.T) {
	suite.Run(t, &CatalogE2ESuite{
		databaseURL: func(t *testing.T) string {
			return "sqlite://" + filepath.Join(t.TempDir(), "catalog.db")
		},
	})
}

func TestCatalogE2E_Postgres(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(t, err, "Failed to run PostgreSQL container")
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string from container")
	require.NoError(t, store.Migrate(connStr), "Failed to apply migrations")

	suite.Run(t, &CatalogE2ESuite{
		databaseURL: func(t *testing.T) string {
			t.Helper()
			cleanPostgres(t, connStr)
			return connStr
		},
		teardown: func() { _ = pgContainer.Terminate(ctx) },
	})
}

// cleanPostgres empties the products table.
func cleanPostgres(t *testing.T, connStr string) {
	t.Helper()
	dbPool, err := pgxpool.New(context.Background(), connStr)
	require.NoError(t, err, "Failed to create pgx pool")
	defer dbPool.Close()
	_, err = dbPool.Exec(context.Background(), "TRUNCATE TABLE products RESTART IDENTITY")
	require.NoError(t, err, "Failed to truncate products table")
}

// --------------------------------------------------------------------------
// ------------------------ Helper methods for E2E tests --------------------
// --------------------------------------------------------------------------

func (s *CatalogE2ESuite) getProduct(id string) (catalog.Product, int) {
	s.T().Helper()
	body, code := s.doRequest(http.MethodGet, productURL+"/"+id, "")
	var p catalog.Product
	if code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(body, &p))
	}
	return p, code
}

func (s *CatalogE2ESuite) listProducts() []catalog.Product {
	s.T().Helper()
	body, code := s.doRequest(http.MethodGet, productURL, "")
	s.Require().Equal(http.StatusOK, code)
	var list []catalog.Product
	s.Require().NoError(json.Unmarshal(body, &list))
	return list
}

func (s *CatalogE2ESuite) status(method, path, payload string) int {
	s.T().Helper()
	_, code := s.doRequest(method, path, payload)
	return code
}

// doRequest makes an HTTP request to the catalog and returns the response body and status code.
func (s *CatalogE2ESuite) doRequest(method, path, payload string) ([]byte, int) {
	s.T().Helper()
	var reader io.Reader = http.NoBody
	if payload != "" {
		reader = bytes.NewReader([]byte(strings.TrimSpace(payload)))
	}
	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return body, resp.StatusCode
}
