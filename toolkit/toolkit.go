// Package toolkit binds the tool catalog to the market-data and options-chain
// clients. Each executor fetches raw data, applies its domain-specific
// extraction and absorbs upstream failures into error-bearing results; a
// failing tool never aborts its siblings.
package toolkit

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
	"github.com/stgisi414/ai-paper-trader-sub001/fmp"
	"github.com/stgisi414/ai-paper-trader-sub001/options"
)

// Toolkit owns the executors for the fixed tool catalog. Both clients are
// injected; the toolkit never constructs one lazily.
type Toolkit struct {
	market *fmp.Client
	chains *options.Aggregator
	log    zerolog.Logger
}

// Option is a functional option for the toolkit.
type Option func(*Toolkit)

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Toolkit) { t.log = log }
}

// New wires the toolkit to its data clients.
func New(market *fmp.Client, chains *options.Aggregator, opts ...Option) *Toolkit {
	t := &Toolkit{market: market, chains: chains, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tools returns one executor per catalog entry, in declaration order.
func (t *Toolkit) Tools() []advisor.Tool {
	return []advisor.Tool{
		&dataTool{t},
		&quoteTool{t},
		&newsTool{t},
		&ratingsTool{t},
		&peersTool{t},
		&dividendsTool{t},
		&insiderTool{t},
		&filingsTool{t},
		&moversTool{t},
		&optionsTool{t},
	}
}

// Registry builds the process-wide tool registry.
func (t *Toolkit) Registry() *advisor.Registry {
	return advisor.NewRegistry(t.Tools()...)
}

// fetch runs one market-data call and converts upstream failures into
// error-bearing results. Context cancellation propagates as an error so the
// orchestrator can mark the call interrupted.
func (t *Toolkit) fetch(ctx context.Context, endpoint string) (advisor.ToolResult, error) {
	doc, err := t.market.Get(ctx, endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return advisor.ToolResult{}, ctx.Err()
		}
		var apiErr *fmp.APIError
		if errors.As(err, &apiErr) {
			return advisor.ErrorResult(apiErr.Message, apiErr.Status), nil
		}
		return advisor.ErrorResult(err.Error(), 500), nil
	}
	return advisor.DataResult(doc.Value()), nil
}

func symbolArg(args map[string]any) (string, bool) {
	s, _ := args["symbol"].(string)
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, s != ""
}

func missingSymbol() advisor.ToolResult {
	return advisor.ErrorResult("A stock symbol is required for this tool.", 400)
}

func limitArg(args map[string]any, def, max int) int {
	limit := def
	if n, ok := args["limit"].(float64); ok && n > 0 {
		limit = int(n)
	}
	if limit > max {
		limit = max
	}
	return limit
}

type dataTool struct{ kit *Toolkit }

func (*dataTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_fmp_data",
		Description: "Fetches any Financial Modeling Prep endpoint by path, e.g. 'v3/profile/AAPL' or 'v3/income-statement/MSFT?period=annual'. Use a specific tool instead when one exists.",
		Parameters: map[string]any{
			"endpoint": map[string]any{
				"type":        "string",
				"description": "API endpoint path including query parameters, without the API key",
			},
		},
		Required: []string{"endpoint"},
	}
}

func (d *dataTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	endpoint, _ := args["endpoint"].(string)
	if strings.TrimSpace(endpoint) == "" {
		return advisor.ErrorResult("An endpoint path is required.", 400), nil
	}
	return d.kit.fetch(ctx, endpoint)
}

type quoteTool struct{ kit *Toolkit }

func (*quoteTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_stock_quote",
		Description: "Gets the latest price quote for a stock symbol.",
		Parameters: map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Stock ticker symbol, e.g. AAPL"},
		},
		Required: []string{"symbol"},
	}
}

func (q *quoteTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	symbol, ok := symbolArg(args)
	if !ok {
		return missingSymbol(), nil
	}
	return q.kit.fetch(ctx, "v3/quote/"+url.PathEscape(symbol))
}

type newsTool struct{ kit *Toolkit }

func (*newsTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_fmp_news",
		Description: "Gets recent news articles for a stock symbol.",
		Parameters: map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Stock ticker symbol"},
		},
		Required: []string{"symbol"},
	}
}

func (n *newsTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	symbol, ok := symbolArg(args)
	if !ok {
		return missingSymbol(), nil
	}
	// Fetch more than the shaped maximum so filtering still has five left.
	return n.kit.fetch(ctx, "v3/stock_news?tickers="+url.QueryEscape(symbol)+"&limit=20")
}

type ratingsTool struct{ kit *Toolkit }

func (*ratingsTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_analyst_ratings",
		Description: "Gets aggregated analyst buy/hold/sell ratings for a stock symbol.",
		Parameters: map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Stock ticker symbol"},
		},
		Required: []string{"symbol"},
	}
}

func (r *ratingsTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	symbol, ok := symbolArg(args)
	if !ok {
		return missingSymbol(), nil
	}
	return r.kit.fetch(ctx, "v3/analyst-stock-recommendations/"+url.PathEscape(symbol))
}

type peersTool struct{ kit *Toolkit }

func (*peersTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_stock_peers",
		Description: "Gets a stock's peer companies and competitors.",
		Parameters: map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Stock ticker symbol"},
		},
		Required: []string{"symbol"},
	}
}

func (p *peersTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	symbol, ok := symbolArg(args)
	if !ok {
		return missingSymbol(), nil
	}
	return p.kit.fetch(ctx, "v4/stock_peers?symbol="+url.QueryEscape(symbol))
}

type dividendsTool struct{ kit *Toolkit }

func (*dividendsTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_historical_dividends",
		Description: "Gets a stock's most recent dividend payments.",
		Parameters: map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Stock ticker symbol"},
		},
		Required: []string{"symbol"},
	}
}

func (d *dividendsTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	symbol, ok := symbolArg(args)
	if !ok {
		return missingSymbol(), nil
	}
	return d.kit.fetch(ctx, "v3/historical-price-full/stock_dividend/"+url.PathEscape(symbol))
}

type insiderTool struct{ kit *Toolkit }

func (*insiderTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_insider_trading",
		Description: "Gets recent insider transactions for a stock symbol.",
		Parameters: map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Stock ticker symbol"},
			"limit":  map[string]any{"type": "integer", "description": "Number of transactions to return, at most 20"},
		},
		Required: []string{"symbol"},
	}
}

func (i *insiderTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	symbol, ok := symbolArg(args)
	if !ok {
		return missingSymbol(), nil
	}
	limit := limitArg(args, 10, 20)
	return i.kit.fetch(ctx, fmt.Sprintf("v4/insider-trading?symbol=%s&page=0&limit=%d", url.QueryEscape(symbol), limit))
}

type filingsTool struct{ kit *Toolkit }

func (*filingsTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_sec_filings",
		Description: "Gets recent SEC filings for a stock symbol.",
		Parameters: map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Stock ticker symbol"},
			"limit":  map[string]any{"type": "integer", "description": "Number of filings to return, at most 10"},
		},
		Required: []string{"symbol"},
	}
}

func (f *filingsTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	symbol, ok := symbolArg(args)
	if !ok {
		return missingSymbol(), nil
	}
	limit := limitArg(args, 5, 10)
	return f.kit.fetch(ctx, fmt.Sprintf("v3/sec_filings/%s?page=0&limit=%d", url.PathEscape(symbol), limit))
}

type moversTool struct{ kit *Toolkit }

func (*moversTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_market_movers",
		Description: "Gets today's most active stocks, biggest gainers or biggest losers.",
		Parameters: map[string]any{
			"category": map[string]any{
				"type":        "string",
				"description": "One of actives, gainers or losers; defaults to actives",
				"enum":        []string{"actives", "gainers", "losers"},
			},
		},
	}
}

func (m *moversTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	category, _ := args["category"].(string)
	switch category {
	case "gainers", "losers":
	default:
		category = "actives"
	}
	return m.kit.fetch(ctx, "v3/stock_market/"+category)
}

type optionsTool struct{ kit *Toolkit }

func (*optionsTool) Spec() advisor.ToolSpec {
	return advisor.ToolSpec{
		Name:        "get_options_chain",
		Description: "Gets the options chain for a stock symbol. When no expiration date is given, all expirations are aggregated into one capped contract set.",
		Parameters: map[string]any{
			"symbol": map[string]any{"type": "string", "description": "Stock ticker symbol"},
			"date":   map[string]any{"type": "string", "description": "Optional expiration date, YYYY-MM-DD"},
		},
		Required: []string{"symbol"},
	}
}

func (o *optionsTool) Execute(ctx context.Context, args map[string]any) (advisor.ToolResult, error) {
	symbol, ok := symbolArg(args)
	if !ok {
		return missingSymbol(), nil
	}
	date, _ := args["date"].(string)

	chain, err := o.kit.chains.Aggregate(ctx, symbol, strings.TrimSpace(date))
	if err != nil {
		if ctx.Err() != nil {
			return advisor.ToolResult{}, ctx.Err()
		}
		if errors.Is(err, options.ErrNoData) {
			return advisor.ErrorResult(fmt.Sprintf("No options data found for %s.", symbol), 404), nil
		}
		var apiErr *options.APIError
		if errors.As(err, &apiErr) {
			return advisor.ErrorResult(apiErr.Message, apiErr.Status), nil
		}
		return advisor.ErrorResult(err.Error(), 500), nil
	}
	return advisor.DataResult(chain), nil
}
