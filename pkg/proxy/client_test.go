package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestExecuteOrdersPostsEnvelope(t *testing.T) {
	var gotEnvelope models.ExecuteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/proxy/trading/execute", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"accepted":true,"duplicate":true,"dryRun":true}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil, 100, testLogger())
	resp, err := client.ExecuteOrders(context.Background(), &models.ExecuteRequest{
		DryRun:    true,
		RequestID: "req-1700000000000-abc123",
		Orders: []models.OrderRequest{
			{Symbol: "AAPL", Side: models.OrderSideBuy, Qty: 10, Type: models.OrderTypeMarket},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.Accepted)
	assert.True(t, resp.Duplicate)
	assert.True(t, gotEnvelope.DryRun)
	assert.Equal(t, "req-1700000000000-abc123", gotEnvelope.RequestID)
	require.Len(t, gotEnvelope.Orders, 1)
	assert.Equal(t, "AAPL", gotEnvelope.Orders[0].Symbol)
}

func TestNon2xxCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil, 100, testLogger())
	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestNon2xxWithEmptyBodyUsesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil, 100, testLogger())
	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "Service Unavailable")
}

func TestHealthDecodesReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/proxy/api/health", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","time":"2026-08-21T10:00:00Z","redis":{"connected":true,"latency_ms":1.5}}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil, 100, testLogger())
	report, err := client.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, "2026-08-21T10:00:00Z", report.Time)
	require.NotNil(t, report.Redis)
	assert.True(t, report.Redis.Connected)
	assert.InDelta(t, 1.5, report.Redis.LatencyMS, 0.0001)
}

func TestPositionsAcceptsBothPayloadShapes(t *testing.T) {
	payloads := map[string]string{
		"bare array":     `[{"symbol":"aapl","qty":10,"avgPrice":150,"marketPrice":160}]`,
		"wrapped object": `{"positions":[{"ticker":"aapl","quantity":10,"average_price":150,"market_price":160}]}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/proxy/api/portfolio/positions", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, payload)
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL, nil, 100, testLogger())
			positions, err := client.Positions(context.Background())
			require.NoError(t, err)
			require.Len(t, positions, 1)
			assert.Equal(t, "AAPL", positions[0].Symbol)
			assert.True(t, positions[0].UnrealizedPL.IsPositive())
		})
	}
}

func TestAPIKeyAuthenticatorSetsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sekret-token", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, NewAPIKeyAuthenticator("sekret-token"), 100, testLogger())
	_, err := client.Health(context.Background())
	require.NoError(t, err)
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/proxy/api/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/", nil, 100, testLogger())
	_, err := client.Health(context.Background())
	require.NoError(t, err)
}
