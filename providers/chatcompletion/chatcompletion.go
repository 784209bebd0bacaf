// Package chatcompletion implements the model provider on the OpenAI Chat
// Completions API. Web-search grounding is not available on this surface, so
// the Grounding flag is ignored.
package chatcompletion

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkg/errors"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
	"github.com/stgisi414/ai-paper-trader-sub001/providers/base"
)

// Config configures the OpenAI Chat Completions API provider.
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

// WithExtraHeader adds a custom header to requests.
func WithExtraHeader(key, value string) Option {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string)
		}
		c.ExtraHeaders[key] = value
	}
}

// New creates a ModelProvider using the OpenAI Chat Completions API.
// It reads OPENAI_API_KEY and OPENAI_BASE_URL from environment if not
// explicitly set.
func New(model string, opts ...Option) advisor.ModelProvider {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	base.ApplyEnvDefaults(&cfg.Config, "OPENAI_API_KEY", "OPENAI_BASE_URL")

	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	for k, v := range cfg.ExtraHeaders {
		clientOpts = append(clientOpts, option.WithHeader(k, v))
	}
	client := openai.NewClient(clientOpts...)
	debug, _ := base.NewDebugLogger(cfg.DebugPath)
	return &provider{model: model, cfg: cfg, client: client, debug: debug}
}

type provider struct {
	model  string
	cfg    Config
	client openai.Client
	debug  *base.DebugLogger
}

func (p *provider) Generate(ctx context.Context, req advisor.GenerateRequest) (*advisor.GenerateResult, error) {
	params := BuildMessages(req)
	params.Model = p.model

	if p.cfg.Temperature != nil {
		params.Temperature = openai.Float(*p.cfg.Temperature)
	}
	if p.cfg.MaxOutputTokens != nil {
		params.MaxTokens = openai.Int(int64(*p.cfg.MaxOutputTokens))
	}

	_ = p.debug.Log(base.NewDebugRecord("chatcompletion", p.model, "request", params))

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "chatcompletion: create completion")
	}
	if len(resp.Choices) == 0 {
		return nil, advisor.ErrNoCandidate
	}

	choice := resp.Choices[0]
	result := &advisor.GenerateResult{
		Text:         choice.Message.Content,
		FinishReason: mapFinishReason(choice.FinishReason),
	}

	for _, call := range choice.Message.ToolCalls {
		fn := call.Function
		var args map[string]any
		if fn.Arguments != "" {
			if err := json.Unmarshal([]byte(fn.Arguments), &args); err != nil {
				return nil, errors.Wrapf(err, "chatcompletion: decode arguments for %s", fn.Name)
			}
		}
		result.FunctionCalls = append(result.FunctionCalls, advisor.FunctionCall{
			CallID: call.ID,
			Name:   fn.Name,
			Args:   args,
		})
	}

	result.Usage = &advisor.Usage{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}

	_ = p.debug.Log(base.NewDebugRecord("chatcompletion", p.model, "response", resp))

	return result, nil
}

func mapFinishReason(reason string) advisor.FinishReason {
	switch reason {
	case "", "stop", "tool_calls":
		return advisor.FinishStop
	case "length":
		return advisor.FinishMaxTokens
	case "content_filter":
		return advisor.FinishSafety
	default:
		return advisor.FinishReason(reason)
	}
}
