package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/humidorapp/humidor-server/internal/auth"
	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/metrics"
	"github.com/humidorapp/humidor-server/internal/ratelimit"
	"github.com/humidorapp/humidor-server/internal/service"
	"github.com/humidorapp/humidor-server/internal/sse"
	"github.com/humidorapp/humidor-server/internal/store/badger"
	"github.com/humidorapp/humidor-server/internal/validation"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api     humatest.TestAPI
	tokens  *auth.TokenService
	metrics *metrics.Metrics
	clock   time.Time
}

type testServerOptions struct {
	rps   float64
	burst int
}

// setupTestServer creates a server backed by an in-memory badger store.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWith(t, testServerOptions{rps: 1000, burst: 1000})
}

func setupTestServerWith(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := badger.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := auth.NewTokenService(testKey, "humidor", time.Hour)
	require.NoError(t, err)

	limiter := ratelimit.New(opts.rps, opts.burst)
	t.Cleanup(limiter.Stop)

	ts := &testServer{
		tokens:  tokens,
		metrics: metrics.New(),
		clock:   time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}

	sseManager := sse.NewManager(logger)
	v := validation.New()
	services := &Services{
		Tastings: service.NewTastingService(st, sseManager, v, ts.metrics, service.TastingOptions{
			Clock: func() time.Time { return ts.clock },
		}, logger),
		Inventory: service.NewInventoryService(st, sseManager, v, logger),
		Stats:     service.NewStatsService(st, nil, logger),
		Import:    service.NewImportService(st, v, logger),
	}

	ts.Server = NewServer(st, services, tokens, sseManager, ts.metrics, limiter, Options{Version: "test"}, logger)
	ts.api = humatest.Wrap(t, ts.Server.API())
	return ts
}

// bearer issues a token for userID and returns it as a header argument.
func (ts *testServer) bearer(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := ts.tokens.Issue(domain.Identity{ID: userID, Email: userID + "@example.com"})
	require.NoError(t, err)
	return "Authorization: Bearer " + token
}

// createCigar adds a cigar through the API and returns it.
func (ts *testServer) createCigar(t *testing.T, auth, name string, quantity int) domain.Cigar {
	t.Helper()
	resp := ts.api.Post("/api/v1/cigars", auth, map[string]any{
		"name":     name,
		"brand":    "Partagás",
		"origin":   "Cuba",
		"strength": 4,
		"price":    18.5,
		"quantity": quantity,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var c domain.Cigar
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &c))
	return c
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}
