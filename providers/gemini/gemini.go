// Package gemini implements the model provider on the Google Gemini API.
// This is the primary backend: it supports native function calling, the
// web-search grounding tool and schema-constrained JSON responses.
package gemini

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	genai "google.golang.org/genai"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
	"github.com/stgisi414/ai-paper-trader-sub001/providers/base"
)

// Config configures the Gemini provider.
type Config struct {
	base.Config
}

// Option is a functional option for this provider.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithTemperature sets the temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = &t }
}

// WithMaxOutputTokens sets the max output tokens.
func WithMaxOutputTokens(n int) Option {
	return func(c *Config) { c.MaxOutputTokens = &n }
}

// WithDebug enables JSONL debug logging to the specified file path.
func WithDebug(path string) Option {
	return func(c *Config) { c.DebugPath = path }
}

// New creates a ModelProvider using the Gemini API.
// It reads GEMINI_API_KEY (or GOOGLE_API_KEY) and GEMINI_BASE_URL from
// environment if not explicitly set.
func New(model string, opts ...Option) advisor.ModelProvider {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	base.ApplyEnvDefaults(&cfg.Config, "GEMINI_API_KEY", "GEMINI_BASE_URL")
	if cfg.APIKey == "" {
		base.ApplyEnvDefaults(&cfg.Config, "GOOGLE_API_KEY", "")
	}
	debug, _ := base.NewDebugLogger(cfg.DebugPath)
	return &provider{model: model, cfg: cfg, debug: debug}
}

type provider struct {
	model string
	cfg   Config
	debug *base.DebugLogger
}

func (p *provider) Generate(ctx context.Context, req advisor.GenerateRequest) (*advisor.GenerateResult, error) {
	client, err := p.newClient(ctx)
	if err != nil {
		return nil, err
	}

	contents := makeContents(req.History)
	config := p.makeConfig(req)

	_ = p.debug.Log(base.NewDebugRecord("gemini", p.model, "request", map[string]any{
		"contents": len(contents),
		"tools":    len(req.Tools),
		"schema":   req.ResponseSchema != nil,
	}))

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, errors.Wrap(err, "gemini: generate content")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil, advisor.ErrNoCandidate
	}

	cand := resp.Candidates[0]
	result := &advisor.GenerateResult{FinishReason: mapFinishReason(cand.FinishReason)}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			result.FunctionCalls = append(result.FunctionCalls, advisor.FunctionCall{
				CallID: part.FunctionCall.ID,
				Name:   part.FunctionCall.Name,
				Args:   part.FunctionCall.Args,
			})
		}
	}
	result.Text = text.String()

	if resp.UsageMetadata != nil {
		result.Usage = &advisor.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	_ = p.debug.Log(base.NewDebugRecord("gemini", p.model, "response", map[string]any{
		"finish_reason":  cand.FinishReason,
		"function_calls": len(result.FunctionCalls),
	}))

	return result, nil
}

func (p *provider) newClient(ctx context.Context) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  p.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "gemini: new client")
	}
	return client, nil
}

func (p *provider) makeConfig(req advisor.GenerateRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if p.cfg.Temperature != nil {
		t := float32(*p.cfg.Temperature)
		config.Temperature = &t
	}
	if p.cfg.MaxOutputTokens != nil {
		config.MaxOutputTokens = int32(*p.cfg.MaxOutputTokens)
	}

	if req.ResponseSchema != nil {
		// Schema mode: constrain the reply and offer no tools, so the model
		// cannot respond with another function call.
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = toSchema(req.ResponseSchema)
		return config
	}

	if req.Grounding {
		config.Tools = append(config.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, spec := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  toSchema(spec.Schema()),
			})
		}
		config.Tools = append(config.Tools, &genai.Tool{FunctionDeclarations: decls})
	}
	return config
}

func makeContents(history []advisor.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		switch m := msg.(type) {
		case advisor.UserMessage:
			contents = append(contents, genai.NewContentFromParts(textParts(m.Parts), genai.RoleUser))
		case advisor.ModelMessage:
			var parts []*genai.Part
			for _, part := range m.Parts {
				switch p := part.(type) {
				case advisor.TextPart:
					parts = append(parts, genai.NewPartFromText(p.Text))
				case advisor.FunctionCallPart:
					parts = append(parts, genai.NewPartFromFunctionCall(p.Name, p.Args))
				}
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
		case advisor.ToolMessage:
			var parts []*genai.Part
			for _, part := range m.Parts {
				if p, ok := part.(advisor.FunctionResponsePart); ok {
					parts = append(parts, genai.NewPartFromFunctionResponse(p.Name, p.Response))
				}
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
		}
	}
	return contents
}

func textParts(parts []advisor.Part) []*genai.Part {
	var out []*genai.Part
	for _, part := range parts {
		if p, ok := part.(advisor.TextPart); ok {
			out = append(out, genai.NewPartFromText(p.Text))
		}
	}
	return out
}

// toSchema converts a JSON-Schema-like map to the Gemini schema type,
// covering the subset the tool catalog uses.
func toSchema(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}
	gs := &genai.Schema{}

	switch t, _ := schema["type"].(string); t {
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	case "array":
		gs.Type = genai.TypeArray
		if items, ok := schema["items"].(map[string]any); ok {
			gs.Items = toSchema(items)
		}
	default:
		gs.Type = genai.TypeObject
	}

	if desc, ok := schema["description"].(string); ok {
		gs.Description = desc
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		gs.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if pm, ok := prop.(map[string]any); ok {
				gs.Properties[name] = toSchema(pm)
			}
		}
	}
	switch required := schema["required"].(type) {
	case []string:
		gs.Required = required
	case []any:
		for _, r := range required {
			if s, ok := r.(string); ok {
				gs.Required = append(gs.Required, s)
			}
		}
	}
	switch enum := schema["enum"].(type) {
	case []string:
		gs.Enum = enum
	case []any:
		for _, e := range enum {
			if s, ok := e.(string); ok {
				gs.Enum = append(gs.Enum, s)
			}
		}
	}
	return gs
}

func mapFinishReason(reason genai.FinishReason) advisor.FinishReason {
	switch reason {
	case "", genai.FinishReasonStop:
		return advisor.FinishStop
	case genai.FinishReasonMaxTokens:
		return advisor.FinishMaxTokens
	case genai.FinishReasonSafety:
		return advisor.FinishSafety
	default:
		// Keep the provider's wording so the fallback message can name it.
		return advisor.FinishReason(strings.ToLower(string(reason)))
	}
}
