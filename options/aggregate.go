package options

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// maxContracts is a context-window safety bound on the merged contract
	// set, not a relevance ranking. Truncation is stable: earlier expirations
	// win, calls before puts within one expiration.
	maxContracts = 50

	defaultFanout = 5
)

// Aggregator fans out across a symbol's expiration dates and merges the
// chains into one bounded, model-friendly structure.
type Aggregator struct {
	client *Client
	fanout int
	log    zerolog.Logger
}

// AggregatorOption is a functional option for the aggregator.
type AggregatorOption func(*Aggregator)

// WithFanout bounds the number of concurrent per-date fetches.
func WithFanout(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.fanout = n
		}
	}
}

// WithAggregatorLogger sets the structured logger.
func WithAggregatorLogger(log zerolog.Logger) AggregatorOption {
	return func(a *Aggregator) { a.log = log }
}

// NewAggregator wires the aggregator to an injected chain client.
func NewAggregator(client *Client, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{client: client, fanout: defaultFanout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate builds the combined chain for a symbol.
//
// The first fetch always goes out without a date to obtain the next-expiry
// chain and the full expiration marker list. With a date supplied, exactly
// that expiration's chain is fetched; with no date, every known expiration is
// fetched concurrently and the merged set is hard-capped at 50 contracts.
func (a *Aggregator) Aggregate(ctx context.Context, symbol, date string) (map[string]any, error) {
	base, err := a.client.Chain(ctx, symbol, "")
	if err != nil {
		return nil, err
	}

	exps := normalizeExpirations(base.Markers)

	var contracts []map[string]any
	var fetched []string

	if date != "" {
		// The upstream endpoint addresses expirations by their raw marker, so
		// a caller-supplied calendar date is resolved back to the marker the
		// provider advertised for it.
		exp := resolveExpiration(exps, date)
		page, err := a.client.Chain(ctx, symbol, exp.Query)
		if err != nil {
			return nil, err
		}
		contracts = flattenPage(page, exp.Date)
		fetched = []string{exp.Date}
	} else {
		pages := make([]*ChainPage, len(exps))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.fanout)
		for i, exp := range exps {
			g.Go(func() error {
				page, err := a.client.Chain(gctx, symbol, exp.Query)
				if err != nil {
					// One failing date degrades that date only.
					a.log.Warn().Err(err).Str("symbol", symbol).Str("date", exp.Date).Msg("expiration fetch failed")
					return nil
				}
				pages[i] = page
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for i, page := range pages {
			fetched = append(fetched, exps[i].Date)
			if page == nil {
				continue
			}
			contracts = append(contracts, flattenPage(page, exps[i].Date)...)
		}
		if len(contracts) > maxContracts {
			contracts = contracts[:maxContracts]
		}
	}

	underlying := base.Quote.Symbol
	if underlying == "" {
		underlying = symbol
	}
	return map[string]any{
		"underlyingSymbol":       underlying,
		"underlyingPrice":        base.Quote.Price,
		"allContracts":           contracts,
		"totalContractsReturned": len(contracts),
		"datesFetched":           fetched,
	}, nil
}

// flattenPage reduces a page's calls and puts across all groups to the
// compact contract shape, in stable order.
func flattenPage(page *ChainPage, fallbackDate string) []map[string]any {
	var out []map[string]any
	for _, group := range page.Groups {
		expiration, ok := normalizeMarker(group.Marker)
		if !ok {
			expiration = fallbackDate
		}
		for _, c := range append(append([]Contract{}, group.Calls...), group.Puts...) {
			out = append(out, map[string]any{
				"symbol":         c.Symbol,
				"expirationDate": expiration,
				"strike":         c.Strike,
				"type":           classifyContract(c.Symbol),
				"openInterest":   c.OpenInterest,
				"volume":         c.Volume,
				"lastPrice":      c.LastPrice,
			})
		}
	}
	return out
}

// classifyContract uses the inherited convention that a contract symbol
// containing the literal character C denotes a call. Valid symbols can carry
// a C elsewhere, so this can misclassify; confirm against the provider's
// actual side field before replacing it.
func classifyContract(symbol string) string {
	if strings.Contains(symbol, "C") {
		return "call"
	}
	return "put"
}

// Expiration pairs the calendar date reported to the model with the raw
// marker form the provider addresses that expiration by.
type Expiration struct {
	Date  string
	Query string
}

// NormalizeMarkers converts raw expiration markers to deduplicated calendar
// dates, preserving first-seen order. Unparseable markers are discarded.
func NormalizeMarkers(markers []any) []string {
	exps := normalizeExpirations(markers)
	out := make([]string, 0, len(exps))
	for _, exp := range exps {
		out = append(out, exp.Date)
	}
	return out
}

// normalizeExpirations keeps the raw marker alongside each normalized date so
// per-date fetches can echo the provider's own addressing back to it.
func normalizeExpirations(markers []any) []Expiration {
	seen := make(map[string]bool, len(markers))
	var out []Expiration
	for _, marker := range markers {
		date, ok := normalizeMarker(marker)
		if !ok || seen[date] {
			continue
		}
		seen[date] = true
		out = append(out, Expiration{Date: date, Query: markerQuery(marker)})
	}
	return out
}

// resolveExpiration maps a caller-supplied date to the advertised expiration
// carrying the same calendar date. An unknown date is passed through as-is.
func resolveExpiration(exps []Expiration, date string) Expiration {
	target, ok := normalizeMarker(date)
	if !ok {
		target = date
	}
	for _, exp := range exps {
		if exp.Date == target {
			return exp
		}
	}
	return Expiration{Date: target, Query: date}
}

// markerQuery renders a marker in the form the provider expects back in the
// date query parameter.
func markerQuery(marker any) string {
	switch v := marker.(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}

// normalizeMarker interprets a marker as a second- or millisecond-precision
// epoch (more than ten digits means milliseconds) or, when non-numeric, as a
// date string.
func normalizeMarker(marker any) (string, bool) {
	switch v := marker.(type) {
	case float64:
		return epochToDate(int64(v))
	case int64:
		return epochToDate(v)
	case int:
		return epochToDate(int64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return epochToDate(n)
		}
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format("2006-01-02"), true
			}
		}
		return "", false
	default:
		return "", false
	}
}

func epochToDate(n int64) (string, bool) {
	if n <= 0 {
		return "", false
	}
	if len(strconv.FormatInt(n, 10)) > 10 {
		n /= 1000
	}
	return time.Unix(n, 0).UTC().Format("2006-01-02"), true
}
