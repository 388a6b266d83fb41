// Package upstream is the HTTP transport shared by the departure pipeline and the
// weather sources. It turns every non-success status and every transport failure into
// a *TransportError naming the feed it came from.
package upstream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	resty "gopkg.in/resty.v1"

	"asemataulu.org/internal/logging"
)

const defaultTimeout = 15 * time.Second

// Config holds transport settings for all upstream feeds.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Client performs GET requests against the open-data feeds.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a client with the given timeout and user agent.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
	if cfg.UserAgent != "" {
		// digitraffic asks clients to identify themselves
		rc.SetHeader("User-Agent", cfg.UserAgent).
			SetHeader("Digitraffic-User", cfg.UserAgent)
	}

	return &Client{
		http:   rc,
		logger: logger.With(logging.Component("upstream_client")),
	}
}

// Get fetches url with the given query parameters and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, source, url string, query map[string]string) ([]byte, error) {
	start := time.Now()

	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(url)
	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	if err != nil {
		logging.LogError(c.logger, "upstream request failed", err,
			slog.String("source", source),
			slog.String("url", url))
		return nil, &TransportError{Source: source, Err: err}
	}

	logging.LogUpstreamCall(c.logger, source, url, resp.StatusCode(), duration)

	if !resp.IsSuccess() {
		return nil, &TransportError{Source: source, StatusCode: resp.StatusCode()}
	}

	return resp.Body(), nil
}

// GetJSON fetches url and decodes the JSON body into v. A body that is not valid
// JSON for v is a *ParseError.
func (c *Client) GetJSON(ctx context.Context, source, url string, query map[string]string, v any) error {
	body, err := c.Get(ctx, source, url, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{Source: source, Err: err}
	}

	return nil
}
