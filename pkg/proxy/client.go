package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
	"github.com/SCPrime/ai-Trader-sub001/pkg/positions"
)

// Client is the slice of the dashboard proxy API this layer talks to.
type Client interface {
	ExecuteOrders(ctx context.Context, req *models.ExecuteRequest) (*models.ExecuteResponse, error)
	Health(ctx context.Context) (*models.HealthReport, error)
	Positions(ctx context.Context) ([]models.Position, error)
}

const (
	executePath   = "/api/proxy/trading/execute"
	healthPath    = "/api/proxy/api/health"
	positionsPath = "/api/proxy/api/portfolio/positions"

	defaultRequestsPerSec = 5
	maxResponseBytes      = 1 << 20
)

type HTTPClient struct {
	baseURL    string
	auth       Authenticator
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewHTTPClient builds a client for the proxy at baseURL. auth may be nil for
// proxies that require no credentials. rps caps outbound requests per second;
// zero or negative selects the default.
func NewHTTPClient(baseURL string, auth Authenticator, rps float64, logger *logrus.Logger) *HTTPClient {
	if rps <= 0 {
		rps = defaultRequestsPerSec
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       auth,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger,
	}
}

func (c *HTTPClient) ExecuteOrders(ctx context.Context, req *models.ExecuteRequest) (*models.ExecuteResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode execute request: %w", err)
	}

	var out models.ExecuteResponse
	if err := c.do(ctx, http.MethodPost, executePath, body, &out); err != nil {
		return nil, fmt.Errorf("execute orders: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*models.HealthReport, error) {
	var out models.HealthReport
	if err := c.do(ctx, http.MethodGet, healthPath, nil, &out); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) Positions(ctx context.Context) ([]models.Position, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, positionsPath, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	recs, err := positions.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse positions: %w", err)
	}
	return recs, nil
}

// do runs one request against the proxy. Non-2xx statuses are returned as
// errors carrying the status code and the (trimmed) response body, so the
// caller can surface them to the user as-is.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.auth != nil {
		if err := c.auth.AddAuthHeaders(req, method, path, string(body)); err != nil {
			return fmt.Errorf("auth headers: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("backend status %d: %s", resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
