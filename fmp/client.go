// Package fmp is a thin client for the Financial Modeling Prep market-data
// API. Every call is a single HTTP attempt; retries, if wanted, belong to the
// transport layer above this package.
package fmp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://financialmodelingprep.com/api"

// APIError is the typed error/status pair for an upstream data failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data: %s (status %d)", e.Message, e.Status)
}

// Client issues GET requests addressed by opaque endpoint paths, for example
// "v3/quote/AAPL" or "v4/stock_peers?symbol=AAPL".
type Client struct {
	http   *resty.Client
	apiKey string
	log    zerolog.Logger
}

// Option is a functional option for the client.
type Option func(*Client)

// WithAPIKey sets the API key appended to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(strings.TrimRight(url, "/")) }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client. The API key defaults to the FMP_API_KEY environment
// variable and the base URL to FMP_BASE_URL when set.
func New(opts ...Option) *Client {
	http := resty.New()
	http.SetBaseURL(defaultBaseURL)
	http.SetTimeout(15 * time.Second)
	// Single attempt per call is part of the client contract.
	http.SetRetryCount(0)

	c := &Client{http: http, log: zerolog.Nop()}
	if url := os.Getenv("FMP_BASE_URL"); url != "" {
		c.http.SetBaseURL(strings.TrimRight(url, "/"))
	}
	c.apiKey = os.Getenv("FMP_API_KEY")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches one endpoint and returns the decoded JSON document.
//
// Non-2xx responses and transport failures come back as *APIError; a 2xx body
// that fails to decode as JSON is reported as an *APIError with status 500.
func (c *Client) Get(ctx context.Context, endpoint string) (gjson.Result, error) {
	endpoint = strings.TrimLeft(endpoint, "/")
	if endpoint == "" {
		return gjson.Result{}, errors.New("fmp: endpoint is required")
	}

	c.log.Debug().Str("endpoint", Redact(endpoint, c.apiKey)).Msg("fetching market data")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("apikey", c.apiKey).
		Get("/" + endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return gjson.Result{}, ctx.Err()
		}
		return gjson.Result{}, &APIError{Status: 500, Message: errors.Wrap(err, "request failed").Error()}
	}

	body := resp.Body()
	if resp.IsError() {
		return gjson.Result{}, &APIError{
			Status:  resp.StatusCode(),
			Message: errorMessageFromBody(body, resp.StatusCode()),
		}
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &APIError{Status: 500, Message: "response body is not valid JSON"}
	}
	return gjson.ParseBytes(body), nil
}

// errorMessageFromBody derives a human-readable message from an error body.
func errorMessageFromBody(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		for _, key := range []string{"Error Message", "error", "message"} {
			if msg := doc.Get(key).String(); msg != "" {
				return msg
			}
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("upstream returned HTTP %d", status)
	}
	if len(trimmed) > 200 {
		trimmed = trimmed[:200]
	}
	return trimmed
}

// Redact masks the API key wherever it appears in a URL or endpoint string so
// it never reaches a log line.
func Redact(s, apiKey string) string {
	if apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, apiKey, "[REDACTED]")
}
