// Package anthropic implements the model provider on the Anthropic Messages
// API. Schema mode relies on the instruction alone, since the API has no
// response-schema parameter; the Grounding flag is ignored.
package anthropic

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
	"github.com/stgisi414/ai-paper-trader-sub001/providers/base"
)

const defaultMaxTokens = 4096

// Config configures the Anthropic Messages API provider.
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

// New creates a ModelProvider using the Anthropic Messages API.
// The SDK reads ANTHROPIC_API_KEY from environment when no key is set.
func New(model string, opts ...Option) advisor.ModelProvider {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(clientOpts...)
	debug, _ := base.NewDebugLogger(cfg.DebugPath)
	return &provider{model: model, cfg: cfg, client: client, debug: debug}
}

type provider struct {
	model  string
	cfg    Config
	client anthropic.Client
	debug  *base.DebugLogger
}

func (p *provider) Generate(ctx context.Context, req advisor.GenerateRequest) (*advisor.GenerateResult, error) {
	params := p.buildParams(req)

	_ = p.debug.Log(base.NewDebugRecord("anthropic", p.model, "request", params))

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic: create message")
	}
	if len(resp.Content) == 0 {
		return nil, advisor.ErrNoCandidate
	}

	result := &advisor.GenerateResult{FinishReason: mapStopReason(resp.StopReason)}
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			result.Text += b.Text
		case anthropic.ToolUseBlock:
			var args map[string]any
			if len(b.Input) > 0 {
				if err := json.Unmarshal(b.Input, &args); err != nil {
					return nil, errors.Wrapf(err, "anthropic: decode input for %s", b.Name)
				}
			}
			result.FunctionCalls = append(result.FunctionCalls, advisor.FunctionCall{
				CallID: b.ID,
				Name:   b.Name,
				Args:   args,
			})
		}
	}

	result.Usage = &advisor.Usage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		TotalTokens:  int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}

	_ = p.debug.Log(base.NewDebugRecord("anthropic", p.model, "response", resp))

	return result, nil
}

func (p *provider) buildParams(req advisor.GenerateRequest) anthropic.MessageNewParams {
	maxTokens := int64(defaultMaxTokens)
	if p.cfg.MaxOutputTokens != nil {
		maxTokens = int64(*p.cfg.MaxOutputTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages:  buildMessages(req.History),
	}
	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemInstruction}}
	}
	if p.cfg.Temperature != nil {
		params.Temperature = anthropic.Float(*p.cfg.Temperature)
	}

	// No tools in schema mode, so the reply cannot be another tool call.
	if req.ResponseSchema == nil {
		for _, spec := range req.Tools {
			params.Tools = append(params.Tools, convertToolSpec(spec))
		}
	}
	return params
}

func buildMessages(history []advisor.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, msg := range history {
		switch m := msg.(type) {
		case advisor.UserMessage:
			var blocks []anthropic.ContentBlockParamUnion
			for _, part := range m.Parts {
				if p, ok := part.(advisor.TextPart); ok {
					blocks = append(blocks, anthropic.NewTextBlock(p.Text))
				}
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		case advisor.ModelMessage:
			var blocks []anthropic.ContentBlockParamUnion
			for _, part := range m.Parts {
				switch p := part.(type) {
				case advisor.TextPart:
					blocks = append(blocks, anthropic.NewTextBlock(p.Text))
				case advisor.FunctionCallPart:
					blocks = append(blocks, anthropic.ContentBlockParamUnion{
						OfToolUse: &anthropic.ToolUseBlockParam{
							ID:    p.CallID,
							Name:  p.Name,
							Input: p.Args,
						},
					})
				}
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case advisor.ToolMessage:
			var blocks []anthropic.ContentBlockParamUnion
			for _, part := range m.Parts {
				if p, ok := part.(advisor.FunctionResponsePart); ok {
					content, _ := json.Marshal(p.Response)
					blocks = append(blocks, anthropic.ContentBlockParamUnion{
						OfToolResult: &anthropic.ToolResultBlockParam{
							ToolUseID: p.CallID,
							Content: []anthropic.ToolResultBlockParamContentUnion{
								{OfText: &anthropic.TextBlockParam{Text: string(content)}},
							},
						},
					})
				}
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		}
	}
	return out
}

func convertToolSpec(spec advisor.ToolSpec) anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        spec.Name,
			Description: anthropic.String(spec.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: spec.Parameters,
				Required:   spec.Required,
			},
		},
	}
}

func mapStopReason(reason anthropic.StopReason) advisor.FinishReason {
	switch reason {
	case "", anthropic.StopReasonEndTurn, anthropic.StopReasonToolUse, anthropic.StopReasonStopSequence:
		return advisor.FinishStop
	case anthropic.StopReasonMaxTokens:
		return advisor.FinishMaxTokens
	case anthropic.StopReasonRefusal:
		return advisor.FinishSafety
	default:
		return advisor.FinishReason(reason)
	}
}
