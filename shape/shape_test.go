package shape_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
	"github.com/stgisi414/ai-paper-trader-sub001/shape"
)

func shapeOne(t *testing.T, tool string, args map[string]any, res advisor.ToolResult) map[string]any {
	t.Helper()
	return shape.New().Shape(advisor.FunctionCall{Name: tool, Args: args}, res)
}

func TestErrorResultsShapeUniformly(t *testing.T) {
	res := advisor.ErrorResult("Invalid API KEY.", 401)
	for _, tool := range []string{"get_stock_quote", "get_fmp_news", "get_options_chain", "something_unknown"} {
		out := shapeOne(t, tool, nil, res)
		assert.Equal(t, map[string]any{"error": "Invalid API KEY.", "status": 401}, out, tool)
	}

	// A status of zero is omitted rather than serialized.
	out := shapeOne(t, "get_stock_quote", nil, advisor.ToolResult{Err: "Tool x not found."})
	assert.Equal(t, map[string]any{"error": "Tool x not found."}, out)
}

func TestDefaultShapeTruncatesLongPayloads(t *testing.T) {
	big := map[string]any{"blob": strings.Repeat("x", 5000)}
	out := shapeOne(t, "unregistered_tool", nil, advisor.DataResult(big))

	truncated, ok := out["truncated_data"].(string)
	require.True(t, ok, "expected truncated_data, got %v", out)
	assert.True(t, strings.HasSuffix(truncated, "...[TRUNCATED]"))
	assert.Len(t, truncated, shape.MaxSerialized+len("...[TRUNCATED]"))
}

func TestDefaultShapePassesSmallPayloads(t *testing.T) {
	out := shapeOne(t, "unregistered_tool", nil, advisor.DataResult(map[string]any{"k": "v"}))
	assert.Equal(t, map[string]any{"k": "v"}, out)

	out = shapeOne(t, "unregistered_tool", nil, advisor.DataResult([]any{"a", "b"}))
	assert.Equal(t, map[string]any{"data": []any{"a", "b"}}, out)
}

func TestShapeGenericData(t *testing.T) {
	// Array payloads cap at the first ten entries.
	rows := make([]any, 25)
	for i := range rows {
		rows[i] = map[string]any{"date": "2026-08-28"}
	}
	out := shapeOne(t, "get_fmp_data", map[string]any{"endpoint": "income-statement"}, advisor.DataResult(rows))
	assert.Len(t, out["data"], 10)
}

func TestShapeGenericDataTruncatesNonArrayPayloads(t *testing.T) {
	big := map[string]any{"profile": strings.Repeat("x", 5000)}
	out := shapeOne(t, "get_fmp_data", map[string]any{"endpoint": "profile"}, advisor.DataResult(big))

	truncated, ok := out["truncated_data"].(string)
	require.True(t, ok, "expected truncated_data, got %v", out)
	assert.True(t, strings.HasSuffix(truncated, "...[TRUNCATED]"))
	assert.Len(t, truncated, shape.MaxSerialized+len("...[TRUNCATED]"))

	// Small non-array payloads still pass through untouched.
	small := map[string]any{"companyName": "Apple Inc."}
	out = shapeOne(t, "get_fmp_data", map[string]any{"endpoint": "profile"}, advisor.DataResult(small))
	assert.Equal(t, small, out)
}

func TestShapeQuote(t *testing.T) {
	payload := []any{map[string]any{
		"symbol": "AAPL", "price": 231.59, "dayHigh": 233.0, "marketCap": 3.4e12,
	}}
	out := shapeOne(t, "get_stock_quote", map[string]any{"symbol": "AAPL"}, advisor.DataResult(payload))
	assert.Equal(t, map[string]any{"price": 231.59, "symbol": "AAPL"}, out)

	// Empty array degrades to an error shape naming the symbol.
	out = shapeOne(t, "get_stock_quote", map[string]any{"symbol": "ZZZZ"}, advisor.DataResult([]any{}))
	assert.Contains(t, out["error"], "ZZZZ")
}

func TestShapeNews(t *testing.T) {
	var articles []any
	for i := 0; i < 8; i++ {
		articles = append(articles, map[string]any{
			"title":         "headline",
			"publishedDate": "2026-08-28",
		})
	}
	// Undated and untitled rows are dropped before the cap applies.
	payload := append([]any{
		map[string]any{"title": "no date"},
		map[string]any{"publishedDate": "2026-08-28"},
	}, articles...)

	out := shapeOne(t, "get_fmp_news", map[string]any{"symbol": "AAPL"}, advisor.DataResult(payload))
	require.Len(t, out["articles"], 5)
	assert.Equal(t, "[2026-08-28] headline", out["articles"].([]any)[0])
}

func TestShapeNewsEmptyProducesStatusObject(t *testing.T) {
	out := shapeOne(t, "get_fmp_news", map[string]any{"symbol": "ZZZZ"}, advisor.DataResult([]any{}))
	assert.Equal(t, "No news found", out["status"])
	assert.Equal(t, "ZZZZ", out["symbol"])
	assert.Contains(t, out["message"], "ZZZZ")
}

func TestShapeAnalystRatings(t *testing.T) {
	payload := []any{
		map[string]any{
			"symbol":                   "AAPL",
			"date":                     "2026-08-01",
			"analystRatingsBuy":        21.0,
			"analystRatingsHold":       8.0,
			"analystRatingsSell":       2.0,
			"analystRatingsStrongBuy":  11.0,
			"analystRatingsStrongSell": 1.0,
		},
		map[string]any{"date": "2026-07-01"},
		map[string]any{"date": "2026-06-01"},
	}
	out := shapeOne(t, "get_analyst_ratings", map[string]any{"symbol": "AAPL"}, advisor.DataResult(payload))
	assert.Equal(t, 21.0, out["buy"])
	assert.Equal(t, 3, out["totalRatings"])
	assert.Equal(t, "2026-08-01", out["date"])
}

func TestShapeAnalystRatingsLowercaseKeyFallback(t *testing.T) {
	payload := []any{map[string]any{"analystRatingsbuy": 7.0}}
	out := shapeOne(t, "get_analyst_ratings", map[string]any{"symbol": "AAPL"}, advisor.DataResult(payload))
	assert.Equal(t, 7.0, out["buy"])
}

func TestShapePeers(t *testing.T) {
	var peers []any
	for _, p := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		peers = append(peers, p)
	}
	payload := []any{map[string]any{"symbol": "AAPL", "peersList": peers}}
	out := shapeOne(t, "get_stock_peers", map[string]any{"symbol": "AAPL"}, advisor.DataResult(payload))
	assert.Len(t, out["peers"], 10)

	out = shapeOne(t, "get_stock_peers", map[string]any{"symbol": "ZZZZ"}, advisor.DataResult([]any{}))
	assert.Contains(t, out["error"], "ZZZZ")
}

func TestShapeDividendsUnwrapsHistorical(t *testing.T) {
	var rows []any
	for i := 0; i < 7; i++ {
		rows = append(rows, map[string]any{"date": "2026-05-09", "dividend": 0.26})
	}
	payload := map[string]any{"symbol": "AAPL", "historical": rows}

	out := shapeOne(t, "get_historical_dividends", map[string]any{"symbol": "AAPL"}, advisor.DataResult(payload))
	require.Len(t, out["dividends"], 5)
	first := out["dividends"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"date": "2026-05-09", "dividend": 0.26}, first)
}

func TestShapeInsiderTrading(t *testing.T) {
	var rows []any
	for i := 0; i < 30; i++ {
		rows = append(rows, map[string]any{
			"transactionDate":      "2026-08-15",
			"reportingName":        "DOE JANE",
			"transactionType":      "S-Sale",
			"securitiesTransacted": 100.0,
			"price":                10.333,
		})
	}

	// The requested limit is clamped to twenty.
	out := shapeOne(t, "get_insider_trading", map[string]any{"symbol": "AAPL", "limit": 50.0}, advisor.DataResult(rows))
	require.Len(t, out["transactions"], 20)
	tx := out["transactions"].([]any)[0].(map[string]any)
	assert.Equal(t, 1033.3, tx["total"])

	// Default limit is ten.
	out = shapeOne(t, "get_insider_trading", map[string]any{"symbol": "AAPL"}, advisor.DataResult(rows))
	assert.Len(t, out["transactions"], 10)
}

func TestShapeSECFilingsPrefersFinalLink(t *testing.T) {
	var rows []any
	for i := 0; i < 15; i++ {
		rows = append(rows, map[string]any{
			"type":        "10-Q",
			"fillingDate": "2026-08-01",
			"link":        "https://example.com/index",
			"finalLink":   "https://example.com/final",
		})
	}

	out := shapeOne(t, "get_sec_filings", map[string]any{"symbol": "AAPL", "limit": 99.0}, advisor.DataResult(rows))
	require.Len(t, out["filings"], 10)
	filing := out["filings"].([]any)[0].(map[string]any)
	assert.Equal(t, "https://example.com/final", filing["link"])

	out = shapeOne(t, "get_sec_filings", map[string]any{"symbol": "AAPL"}, advisor.DataResult(rows))
	assert.Len(t, out["filings"], 5)
}

func TestShapeMarketMovers(t *testing.T) {
	var rows []any
	for i := 0; i < 9; i++ {
		rows = append(rows, map[string]any{
			"symbol":            "TSLA",
			"name":              "Tesla, Inc.",
			"change":            -4.2,
			"price":             241.0,
			"changesPercentage": -1.71,
		})
	}
	out := shapeOne(t, "get_market_movers", map[string]any{"category": "losers"}, advisor.DataResult(rows))
	require.Len(t, out["movers"], 5)
	assert.Equal(t, "losers", out["category"])

	// Missing category defaults to actives.
	out = shapeOne(t, "get_market_movers", nil, advisor.DataResult(rows))
	assert.Equal(t, "actives", out["category"])
}

func TestShapeOptionsChainPassesThrough(t *testing.T) {
	chain := map[string]any{
		"underlyingSymbol":       "AAPL",
		"allContracts":           []any{},
		"totalContractsReturned": 0,
	}
	out := shapeOne(t, "get_options_chain", map[string]any{"symbol": "AAPL"}, advisor.DataResult(chain))
	assert.Equal(t, chain, out)
}

func TestShapedResultsStayWithinBudget(t *testing.T) {
	// Every registered rule must keep large inputs under the serialized
	// ceiling; get_options_chain bounds itself upstream and is exempt.
	big := make([]any, 0, 500)
	for i := 0; i < 500; i++ {
		big = append(big, map[string]any{
			"symbol": "AAPL", "title": strings.Repeat("t", 40), "publishedDate": "2026-08-28",
			"price": 1.23, "peersList": []any{"A"}, "date": "2026-08-28", "dividend": 0.1,
		})
	}
	for _, tool := range []string{
		"get_fmp_data", "get_fmp_news", "get_analyst_ratings",
		"get_historical_dividends", "get_insider_trading", "get_sec_filings",
		"get_market_movers",
	} {
		out := shapeOne(t, tool, map[string]any{"symbol": "AAPL"}, advisor.DataResult(big))
		raw, err := json.Marshal(out)
		require.NoError(t, err, tool)
		assert.LessOrEqual(t, len(raw), shape.MaxSerialized*3, "%s shape is oversized", tool)
	}
}

func TestShapingIsPure(t *testing.T) {
	args := map[string]any{"symbol": "AAPL"}
	res := advisor.DataResult([]any{map[string]any{"symbol": "AAPL", "price": 1.0}})
	first := shapeOne(t, "get_stock_quote", args, res)
	second := shapeOne(t, "get_stock_quote", args, res)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("shaping is not deterministic: %v vs %v", first, second)
	}
}
