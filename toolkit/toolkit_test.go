package toolkit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
	"github.com/stgisi414/ai-paper-trader-sub001/fmp"
	"github.com/stgisi414/ai-paper-trader-sub001/options"
	"github.com/stgisi414/ai-paper-trader-sub001/toolkit"
)

var catalog = []string{
	"get_fmp_data",
	"get_stock_quote",
	"get_fmp_news",
	"get_analyst_ratings",
	"get_stock_peers",
	"get_historical_dividends",
	"get_insider_trading",
	"get_sec_filings",
	"get_market_movers",
	"get_options_chain",
}

func newKit(marketURL, chainsURL string) *toolkit.Toolkit {
	market := fmp.New(fmp.WithBaseURL(marketURL), fmp.WithAPIKey("test"))
	chains := options.NewAggregator(options.NewClient(options.WithBaseURL(chainsURL)))
	return toolkit.New(market, chains)
}

func execute(t *testing.T, kit *toolkit.Toolkit, name string, args map[string]any) advisor.ToolResult {
	t.Helper()
	tool, ok := kit.Registry().Lookup(name)
	require.True(t, ok, "tool %s not registered", name)
	res, err := tool.Execute(context.Background(), args)
	require.NoError(t, err)
	return res
}

func TestRegistryCarriesFullCatalog(t *testing.T) {
	kit := newKit("http://localhost:0", "http://localhost:0")
	specs := kit.Registry().Specs()
	require.Len(t, specs, len(catalog))
	for i, name := range catalog {
		assert.Equal(t, name, specs[i].Name)
	}
}

func TestQuoteToolFetchesAndUppercases(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[{"symbol":"AAPL","price":231.59}]`))
	}))
	defer srv.Close()

	kit := newKit(srv.URL, "http://localhost:0")
	res := execute(t, kit, "get_stock_quote", map[string]any{"symbol": " aapl "})
	require.False(t, res.IsError(), res.Err)
	assert.Equal(t, "/v3/quote/AAPL", gotPath)

	rows := res.Data.([]any)
	assert.Equal(t, "AAPL", rows[0].(map[string]any)["symbol"])
}

func TestSymbolToolsRejectMissingSymbol(t *testing.T) {
	kit := newKit("http://localhost:0", "http://localhost:0")
	for _, name := range []string{
		"get_stock_quote", "get_fmp_news", "get_analyst_ratings", "get_stock_peers",
		"get_historical_dividends", "get_insider_trading", "get_sec_filings", "get_options_chain",
	} {
		res := execute(t, kit, name, map[string]any{"symbol": "  "})
		require.True(t, res.IsError(), "%s accepted a blank symbol", name)
		assert.Equal(t, 400, res.Status, name)
	}
}

func TestDataToolRequiresEndpoint(t *testing.T) {
	kit := newKit("http://localhost:0", "http://localhost:0")
	res := execute(t, kit, "get_fmp_data", map[string]any{"endpoint": " "})
	require.True(t, res.IsError())
	assert.Equal(t, 400, res.Status)
}

func TestUpstreamFailureAbsorbedIntoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"Error Message":"Invalid API KEY."}`))
	}))
	defer srv.Close()

	kit := newKit(srv.URL, "http://localhost:0")
	res := execute(t, kit, "get_stock_quote", map[string]any{"symbol": "AAPL"})
	require.True(t, res.IsError())
	assert.Equal(t, 401, res.Status)
	assert.Equal(t, "Invalid API KEY.", res.Err)
}

func TestInsiderToolClampsLimit(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	kit := newKit(srv.URL, "http://localhost:0")
	execute(t, kit, "get_insider_trading", map[string]any{"symbol": "AAPL", "limit": 99.0})
	assert.Contains(t, gotQuery, "limit=20")

	execute(t, kit, "get_insider_trading", map[string]any{"symbol": "AAPL"})
	assert.Contains(t, gotQuery, "limit=10")
}

func TestFilingsToolClampsLimit(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	kit := newKit(srv.URL, "http://localhost:0")
	execute(t, kit, "get_sec_filings", map[string]any{"symbol": "AAPL", "limit": 50.0})
	assert.Contains(t, gotQuery, "limit=10")
}

func TestMoversToolValidatesCategory(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	kit := newKit(srv.URL, "http://localhost:0")
	execute(t, kit, "get_market_movers", map[string]any{"category": "gainers"})
	execute(t, kit, "get_market_movers", map[string]any{"category": "junk drawer"})
	execute(t, kit, "get_market_movers", nil)

	assert.Equal(t, []string{
		"/v3/stock_market/gainers",
		"/v3/stock_market/actives",
		"/v3/stock_market/actives",
	}, paths)
}

func TestOptionsToolNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	kit := newKit("http://localhost:0", srv.URL)
	res := execute(t, kit, "get_options_chain", map[string]any{"symbol": "ZZZZ"})
	require.True(t, res.IsError())
	assert.Equal(t, 404, res.Status)
	assert.Equal(t, "No options data found for ZZZZ.", res.Err)
}

func TestOptionsToolAggregates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"optionChain":{"result":[{` +
			`"quote":{"symbol":"AAPL","regularMarketPrice":231.59},` +
			`"expirationDates":[1787961600],` +
			`"options":[{"expirationDate":1787961600,"calls":[{"contractSymbol":"AAPL260829C00230000","strike":230,"lastPrice":4.2,"openInterest":12,"volume":5}],"puts":[]}]}]}}`))
	}))
	defer srv.Close()

	kit := newKit("http://localhost:0", srv.URL)
	res := execute(t, kit, "get_options_chain", map[string]any{"symbol": "aapl"})
	require.False(t, res.IsError(), res.Err)

	chain := res.Data.(map[string]any)
	assert.Equal(t, "AAPL", chain["underlyingSymbol"])
	assert.Equal(t, 1, chain["totalContractsReturned"])
}
