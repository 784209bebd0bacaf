package shape

import (
	"fmt"
	"math"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
)

// shapeGenericData caps array results from the generic endpoint tool at the
// first ten entries.
func shapeGenericData(args map[string]any, res advisor.ToolResult) map[string]any {
	arr, ok := asSlice(res.Data)
	if !ok {
		// Non-array payloads fall back to the default rule so they stay
		// under the serialized ceiling.
		return shapeDefault(args, res)
	}
	if len(arr) > 10 {
		arr = arr[:10]
	}
	return map[string]any{"data": arr}
}

// shapeQuote reduces the quote payload to a single scalar object, never an
// array.
func shapeQuote(args map[string]any, res advisor.ToolResult) map[string]any {
	q, ok := firstMap(res.Data)
	if !ok {
		return map[string]any{"error": fmt.Sprintf("No quote data found for %s.", argString(args, "symbol"))}
	}
	price, hasPrice := num(q, "price")
	symbol := str(q, "symbol")
	if symbol == "" {
		symbol = argString(args, "symbol")
	}
	if !hasPrice {
		return map[string]any{"error": fmt.Sprintf("No quote data found for %s.", symbol)}
	}
	return map[string]any{"price": price, "symbol": symbol}
}

// shapeNews drops articles missing a title or publication date, keeps at most
// five and renders them as "[date] title" strings. An empty post-filter list
// produces an explicit status object, never a bare empty array.
func shapeNews(args map[string]any, res advisor.ToolResult) map[string]any {
	symbol := argString(args, "symbol")
	arr, _ := asSlice(res.Data)

	var articles []any
	for _, item := range arr {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		title := str(m, "title")
		date := str(m, "publishedDate", "date")
		if title == "" || date == "" {
			continue
		}
		articles = append(articles, fmt.Sprintf("[%s] %s", date, title))
		if len(articles) == 5 {
			break
		}
	}

	if len(articles) == 0 {
		return map[string]any{
			"status":  "No news found",
			"symbol":  symbol,
			"message": fmt.Sprintf("No recent news articles were found for %s.", symbol),
		}
	}
	return map[string]any{"symbol": symbol, "articles": articles}
}

// shapeAnalystRatings keeps only the most recent aggregated buy/hold/sell row
// together with the total number of input rows.
func shapeAnalystRatings(args map[string]any, res advisor.ToolResult) map[string]any {
	arr, ok := asSlice(res.Data)
	if !ok || len(arr) == 0 {
		return map[string]any{"error": fmt.Sprintf("No analyst ratings found for %s.", argString(args, "symbol"))}
	}
	latest, ok := asMap(arr[0])
	if !ok {
		return map[string]any{"error": "Analyst ratings payload was malformed."}
	}

	buy, _ := num(latest, "analystRatingsBuy", "analystRatingsbuy", "buy")
	hold, _ := num(latest, "analystRatingsHold", "hold")
	sell, _ := num(latest, "analystRatingsSell", "sell")
	strongBuy, _ := num(latest, "analystRatingsStrongBuy", "strongBuy")
	strongSell, _ := num(latest, "analystRatingsStrongSell", "strongSell")

	symbol := str(latest, "symbol")
	if symbol == "" {
		symbol = argString(args, "symbol")
	}
	return map[string]any{
		"symbol":       symbol,
		"date":         str(latest, "date"),
		"buy":          buy,
		"hold":         hold,
		"sell":         sell,
		"strongBuy":    strongBuy,
		"strongSell":   strongSell,
		"totalRatings": len(arr),
	}
}

// shapePeers returns the symbol with the first ten entries of its peer list,
// or an error shape when the payload carries no list.
func shapePeers(args map[string]any, res advisor.ToolResult) map[string]any {
	m, ok := firstMap(res.Data)
	if !ok {
		return map[string]any{"error": fmt.Sprintf("No peer data found for %s.", argString(args, "symbol"))}
	}
	peers, ok := asSlice(m["peersList"])
	if !ok {
		return map[string]any{"error": fmt.Sprintf("No peer data found for %s.", argString(args, "symbol"))}
	}
	if len(peers) > 10 {
		peers = peers[:10]
	}
	symbol := str(m, "symbol")
	if symbol == "" {
		symbol = argString(args, "symbol")
	}
	return map[string]any{"symbol": symbol, "peers": peers}
}

// shapeDividends keeps the five most recent {date, dividend} pairs.
func shapeDividends(args map[string]any, res advisor.ToolResult) map[string]any {
	symbol := argString(args, "symbol")
	rows, _ := asSlice(res.Data)
	if m, ok := asMap(res.Data); ok {
		// historical-price-full wraps the rows under "historical".
		if s := str(m, "symbol"); s != "" {
			symbol = s
		}
		rows, _ = asSlice(m["historical"])
	}

	var dividends []any
	for _, row := range rows {
		m, ok := asMap(row)
		if !ok {
			continue
		}
		amount, hasAmount := num(m, "dividend", "adjDividend")
		date := str(m, "date")
		if date == "" || !hasAmount {
			continue
		}
		dividends = append(dividends, map[string]any{"date": date, "dividend": amount})
		if len(dividends) == 5 {
			break
		}
	}
	if len(dividends) == 0 {
		return map[string]any{"error": fmt.Sprintf("No dividend history found for %s.", symbol)}
	}
	return map[string]any{"symbol": symbol, "dividends": dividends}
}

// shapeInsiderTrading clamps the caller-requested limit to twenty rows and
// shapes each transaction.
func shapeInsiderTrading(args map[string]any, res advisor.ToolResult) map[string]any {
	limit := clampLimit(args, "limit", 10, 20)
	rows, _ := asSlice(res.Data)

	var transactions []any
	for _, row := range rows {
		m, ok := asMap(row)
		if !ok {
			continue
		}
		shares, _ := num(m, "securitiesTransacted", "shares")
		price, _ := num(m, "price")
		transactions = append(transactions, map[string]any{
			"date":    str(m, "transactionDate", "date"),
			"insider": str(m, "reportingName", "insider"),
			"type":    str(m, "transactionType", "type"),
			"shares":  shares,
			"price":   price,
			"total":   round2(shares * price),
		})
		if len(transactions) == limit {
			break
		}
	}
	if len(transactions) == 0 {
		return map[string]any{"error": fmt.Sprintf("No insider transactions found for %s.", argString(args, "symbol"))}
	}
	return map[string]any{"symbol": argString(args, "symbol"), "transactions": transactions}
}

// shapeSECFilings clamps the caller-requested limit to ten rows and prefers a
// filing's final link over the generic one.
func shapeSECFilings(args map[string]any, res advisor.ToolResult) map[string]any {
	limit := clampLimit(args, "limit", 5, 10)
	rows, _ := asSlice(res.Data)

	var filings []any
	for _, row := range rows {
		m, ok := asMap(row)
		if !ok {
			continue
		}
		link := str(m, "finalLink")
		if link == "" {
			link = str(m, "link")
		}
		filings = append(filings, map[string]any{
			"type": str(m, "type"),
			"date": str(m, "fillingDate", "date"),
			"link": link,
		})
		if len(filings) == limit {
			break
		}
	}
	if len(filings) == 0 {
		return map[string]any{"error": fmt.Sprintf("No SEC filings found for %s.", argString(args, "symbol"))}
	}
	return map[string]any{"symbol": argString(args, "symbol"), "filings": filings}
}

// shapeMarketMovers keeps the top five rows of the requested category.
func shapeMarketMovers(args map[string]any, res advisor.ToolResult) map[string]any {
	category := argString(args, "category")
	if category == "" {
		category = "actives"
	}
	rows, _ := asSlice(res.Data)

	var movers []any
	for _, row := range rows {
		m, ok := asMap(row)
		if !ok {
			continue
		}
		change, _ := num(m, "change", "changes")
		price, _ := num(m, "price")
		pct, _ := num(m, "changesPercentage", "percentChange")
		movers = append(movers, map[string]any{
			"symbol":        str(m, "symbol", "ticker"),
			"name":          str(m, "name", "companyName"),
			"change":        change,
			"price":         price,
			"percentChange": pct,
		})
		if len(movers) == 5 {
			break
		}
	}
	if len(movers) == 0 {
		return map[string]any{"error": fmt.Sprintf("No market movers found for category %q.", category)}
	}
	return map[string]any{"category": category, "movers": movers}
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// firstMap accepts either an object or a non-empty array of objects and
// returns the first object.
func firstMap(v any) (map[string]any, bool) {
	if m, ok := asMap(v); ok {
		return m, true
	}
	if arr, ok := asSlice(v); ok && len(arr) > 0 {
		return asMap(arr[0])
	}
	return nil, false
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func num(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		}
	}
	return 0, false
}

func argString(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}

func clampLimit(args map[string]any, key string, def, max int) int {
	limit := def
	if args != nil {
		if n, ok := args[key].(float64); ok && n > 0 {
			limit = int(n)
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
