// Package shape compresses raw tool results into compact, model-friendly
// structures. Shaping rules are a dispatch table keyed by tool name with a
// size-bounded default; every rule is a pure function of the call arguments
// and the tool result.
package shape

import (
	"encoding/json"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
)

// MaxSerialized is the default ceiling on a shaped result's serialized size.
// Tool-specific rules may supersede it.
const MaxSerialized = 1500

// Func is one shaping rule.
type Func func(args map[string]any, res advisor.ToolResult) map[string]any

// Shaper dispatches shaping rules by tool name.
type Shaper struct {
	rules map[string]Func
}

// New builds a shaper with the full rule table registered.
func New() *Shaper {
	s := &Shaper{rules: make(map[string]Func)}
	s.Register("get_fmp_data", shapeGenericData)
	s.Register("get_stock_quote", shapeQuote)
	s.Register("get_fmp_news", shapeNews)
	s.Register("get_analyst_ratings", shapeAnalystRatings)
	s.Register("get_stock_peers", shapePeers)
	s.Register("get_historical_dividends", shapeDividends)
	s.Register("get_insider_trading", shapeInsiderTrading)
	s.Register("get_sec_filings", shapeSECFilings)
	s.Register("get_market_movers", shapeMarketMovers)
	// The options aggregator already bounds its own output; pass it through
	// rather than letting the default rule truncate it mid-structure.
	s.Register("get_options_chain", shapePassthrough)
	return s
}

// Register binds a rule to a tool name, replacing any previous rule.
func (s *Shaper) Register(name string, fn Func) {
	s.rules[name] = fn
}

// Shape applies the rule registered for the call's tool name, or the default
// truncation rule when none matches. Error-bearing results shape uniformly
// across all tools.
func (s *Shaper) Shape(call advisor.FunctionCall, res advisor.ToolResult) map[string]any {
	if res.IsError() {
		return shapeError(res)
	}
	if fn, ok := s.rules[call.Name]; ok {
		return fn(call.Args, res)
	}
	return shapeDefault(call.Args, res)
}

// ShapeFunc adapts the shaper to the orchestrator's function type.
func (s *Shaper) ShapeFunc() advisor.ShapeFunc {
	return s.Shape
}

func shapeError(res advisor.ToolResult) map[string]any {
	out := map[string]any{"error": res.Err}
	if res.Status > 0 {
		out["status"] = res.Status
	}
	return out
}

// shapeDefault serializes the result and truncates anything beyond
// MaxSerialized characters.
func shapeDefault(_ map[string]any, res advisor.ToolResult) map[string]any {
	raw, err := json.Marshal(res.Data)
	if err != nil {
		return map[string]any{"error": "tool result could not be serialized"}
	}
	if len(raw) > MaxSerialized {
		return map[string]any{"truncated_data": string(raw[:MaxSerialized]) + "...[TRUNCATED]"}
	}
	if m, ok := res.Data.(map[string]any); ok {
		return m
	}
	return map[string]any{"data": res.Data}
}

func shapePassthrough(_ map[string]any, res advisor.ToolResult) map[string]any {
	if m, ok := res.Data.(map[string]any); ok {
		return m
	}
	return map[string]any{"data": res.Data}
}
