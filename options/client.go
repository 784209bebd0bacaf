// Package options talks to the options-chain provider and aggregates per-
// expiration chains into one bounded contract set.
package options

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

const defaultBaseURL = "https://query2.finance.yahoo.com/v7/finance/options"

// ErrNoData marks the normal outcome of a symbol with no chain data; it is a
// not-found condition, not a failure of the provider.
var ErrNoData = errors.New("options: no chain data for symbol")

// APIError is the typed error/status pair for an upstream chain failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("options chain: %s (status %d)", e.Message, e.Status)
}

// Quote is the underlying security's quote attached to a chain page.
type Quote struct {
	Symbol string
	Price  float64
}

// Contract is one raw option contract.
type Contract struct {
	Symbol       string
	Strike       float64
	LastPrice    float64
	OpenInterest int64
	Volume       int64
}

// Group is one expiration grouping with its calls and puts.
type Group struct {
	Marker any
	Calls  []Contract
	Puts   []Contract
}

// ChainPage is one provider response: the quote, the full expiration marker
// list for the symbol and the chain groups the page carries.
type ChainPage struct {
	Quote   Quote
	Markers []any
	Groups  []Group
}

// Client fetches chain pages addressed by (symbol, optional date). It is an
// explicitly constructed dependency; nothing in this package initializes one
// lazily.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// Option is a functional option for the client.
type Option func(*Client)

// WithBaseURL overrides the provider base URL.
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

// NewClient creates a chain client. The base URL defaults to
// OPTIONS_BASE_URL when set.
func NewClient(opts ...Option) *Client {
	http := resty.New()
	http.SetBaseURL(defaultBaseURL)
	http.SetTimeout(15 * time.Second)
	// Single attempt per call, same contract as the market-data client.
	http.SetRetryCount(0)

	c := &Client{http: http, log: zerolog.Nop()}
	if url := os.Getenv("OPTIONS_BASE_URL"); url != "" {
		c.http.SetBaseURL(strings.TrimRight(url, "/"))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chain fetches one chain page. An empty date fetches the next expiry plus the
// symbol's full expiration marker list. Missing data returns ErrNoData.
func (c *Client) Chain(ctx context.Context, symbol, date string) (*ChainPage, error) {
	if symbol == "" {
		return nil, errors.New("options: symbol is required")
	}

	req := c.http.R().SetContext(ctx)
	if date != "" {
		req.SetQueryParam("date", date)
	}

	c.log.Debug().Str("symbol", symbol).Str("date", date).Msg("fetching options chain")

	resp, err := req.Get("/" + symbol)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{Status: 500, Message: errors.Wrap(err, "request failed").Error()}
	}
	if resp.StatusCode() == 404 {
		return nil, ErrNoData
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, &APIError{Status: 500, Message: "response body is not valid JSON"}
	}

	result := gjson.GetBytes(body, "optionChain.result")
	pages := result.Array()
	if len(pages) == 0 {
		return nil, ErrNoData
	}
	return parsePage(pages[0]), nil
}

func parsePage(doc gjson.Result) *ChainPage {
	page := &ChainPage{
		Quote: Quote{
			Symbol: doc.Get("quote.symbol").String(),
			Price:  doc.Get("quote.regularMarketPrice").Float(),
		},
	}
	for _, marker := range doc.Get("expirationDates").Array() {
		page.Markers = append(page.Markers, marker.Value())
	}
	for _, group := range doc.Get("options").Array() {
		page.Groups = append(page.Groups, Group{
			Marker: group.Get("expirationDate").Value(),
			Calls:  parseContracts(group.Get("calls")),
			Puts:   parseContracts(group.Get("puts")),
		})
	}
	return page
}

func parseContracts(doc gjson.Result) []Contract {
	var contracts []Contract
	for _, c := range doc.Array() {
		contracts = append(contracts, Contract{
			Symbol:       c.Get("contractSymbol").String(),
			Strike:       c.Get("strike").Float(),
			LastPrice:    c.Get("lastPrice").Float(),
			OpenInterest: c.Get("openInterest").Int(),
			Volume:       c.Get("volume").Int(),
		})
	}
	return contracts
}
