package advisor

import "context"

// FinishReason explains why the model stopped generating.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishMaxTokens FinishReason = "max_tokens"
	FinishSafety    FinishReason = "safety"
	FinishOther     FinishReason = "other"
)

// Normal reports whether the generation ended with a normal stop.
func (f FinishReason) Normal() bool { return f == FinishStop || f == "" }

// Usage reports token accounting for one model call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// GenerateRequest is the provider-agnostic input for one model call.
type GenerateRequest struct {
	SystemInstruction string
	History           []Message

	// Tools lists the active tool declarations. Empty disables tool use
	// entirely for this call.
	Tools []ToolSpec

	// Grounding adds the provider's web-search capability ahead of the
	// declared tools, where the provider supports one.
	Grounding bool

	// ResponseSchema, when set, constrains the reply to a single raw JSON
	// object of this shape. Providers must not offer tools on such calls.
	ResponseSchema map[string]any
}

// GenerateResult is the provider-agnostic output of one model call.
type GenerateResult struct {
	Text          string
	FunctionCalls []FunctionCall
	FinishReason  FinishReason
	Usage         *Usage
}

// ModelProvider is the unified interface implemented by model backends.
//
// Generate returns ErrNoCandidate when the upstream response carries no
// candidate content; any other error is a model-call failure and fatal for
// the request.
type ModelProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}
