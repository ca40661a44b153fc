// Package jikan provides a minimal client for the Jikan v4 seasonal catalog
// endpoint with error classification and request metrics.
//
// The client performs exactly one HTTP exchange per call. It never retries
// and never sleeps; pacing belongs to the caller (see pkg/ratelimit).
package jikan

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public Jikan API host.
const DefaultBaseURL = "https://api.jikan.moe"

// Prometheus metrics for Jikan requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animelist_requests_total",
		Help: "Total Jikan requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "animelist_request_duration_seconds",
		Help:    "Jikan request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animelist_errors_total",
		Help: "Total Jikan errors by class",
	}, []string{"class"})
)

// Client fetches season pages from the Jikan API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API host, without trailing slash.
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a single request including body read.
	Timeout time.Duration
}

// DefaultConfig returns a configuration for the public API.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new Jikan client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		logger:  log.With().Str("component", "jikan-client").Logger(),
	}, nil
}

// Do executes the request and returns the response for any 2xx status.
// Every other outcome is a *NetworkError and the body is already closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("query", req.URL.RawQuery).
		Msg("Executing Jikan request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &NetworkError{
			URL:        req.URL.String(),
			ErrorClass: errClass,
			Message:    "request failed",
			Err:        err,
		}
	}

	requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errClass := c.classifyError(resp, nil)
		errorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Jikan request error")

		resp.Body.Close()
		return nil, &NetworkError{
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	return resp, nil
}

// SeasonPage fetches and decodes one page of a season. page is the 1-based
// page number sent to the API.
func (c *Client) SeasonPage(ctx context.Context, key SeasonKey, page int) (*SeasonPage, error) {
	reqURL := fmt.Sprintf("%s%s?page=%d", c.baseURL, key.Endpoint(), page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &NetworkError{
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	result, err := DecodeSeasonPage(body)
	if err != nil {
		if netErr, ok := err.(*NetworkError); ok {
			netErr.URL = reqURL
			netErr.StatusCode = resp.StatusCode
			errorsTotal.WithLabelValues(string(netErr.ErrorClass)).Inc()
		}
		return nil, err
	}

	c.logger.Debug().
		Str("season", key.String()).
		Int("page", page).
		Int("entries", len(result.Data)).
		Bool("has_next_page", result.Pagination.HasNextPage).
		Msg("Season page decoded")

	return result, nil
}

// classifyError categorizes a failure for observability.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		// 1xx/3xx that the transport did not resolve.
		return ErrorClassClient
	}
}

// BaseURL returns the configured API host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
