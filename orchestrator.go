// Package advisor implements the tool-orchestration engine behind the
// AI assistant: a two-phase model-call protocol that plans tool use, executes
// the selected market-data tools in parallel, compresses their output into
// token-budget-safe shapes and synthesizes a final answer.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultModel is used when the inbound request names no model.
const DefaultModel = "gemini-2.5-flash"

const planningInstruction = `You are a financial research assistant for a paper-trading dashboard with access to live market-data tools. If the user's request needs external data, respond ONLY with the required function call or calls, with no confirmation dialogue or commentary. If no tool is needed, answer the question directly now.`

const synthesisInstruction = `Present the tool results above to the user plainly and completely. Do not add analysis or commentary beyond what the data shows. If a tool reported an error, state the condition in plain language.`

const schemaInstruction = `Respond with a single raw JSON object that conforms to the requested schema. Output JSON only: no markdown fences, no prose before or after.`

const fallbackText = "I'm sorry, I couldn't generate a response for that request. Please try again or rephrase your question."

func abnormalFinishMessage(reason FinishReason) string {
	return fmt.Sprintf("The response could not be completed because generation stopped early (reason: %s). Please try rephrasing your request.", reason)
}

// Request is the inbound orchestration request from the surrounding service.
// The caller is assumed to have already authorized the call class against the
// user's quota.
type Request struct {
	Prompt      string `json:"prompt"`
	Model       string `json:"model,omitempty"`
	EnableTools bool   `json:"enableTools"`
	// ResponseSchema, when present, forces the final answer to be a single
	// raw JSON object of this shape.
	ResponseSchema map[string]any `json:"responseSchema,omitempty"`
}

// Response is the successful orchestration result.
type Response struct {
	Text string `json:"text"`
}

// ResolveFunc maps an inbound model name to a provider.
type ResolveFunc func(model string) (ModelProvider, error)

// StaticResolver resolves every model name to the same provider.
func StaticResolver(p ModelProvider) ResolveFunc {
	return func(string) (ModelProvider, error) { return p, nil }
}

// ShapeFunc compresses one tool result into a compact structure before it is
// handed back to the model. It must be a pure function of its inputs.
type ShapeFunc func(call FunctionCall, res ToolResult) map[string]any

// Orchestrator drives the two-phase planning/synthesis protocol. All state is
// request-scoped; one Orchestrator serves concurrent requests without locks.
type Orchestrator struct {
	resolve  ResolveFunc
	registry *Registry
	shape    ShapeFunc
	log      zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// NewOrchestrator wires the loop to its collaborators. The shaper is
// mandatory; registry may be nil for a tool-less deployment.
func NewOrchestrator(resolve ResolveFunc, registry *Registry, shape ShapeFunc, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolve:  resolve,
		registry: registry,
		shape:    shape,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ask runs one orchestration request to completion.
//
// Failure of either model call is fatal for the request and surfaced as a
// *StatusError; tool-level failures are absorbed into shaped results and
// never abort the run.
func (o *Orchestrator) Ask(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, &StatusError{Status: 400, Message: "prompt is required", Cause: ErrEmptyPrompt}
	}
	if o.resolve == nil {
		return nil, &StatusError{Status: 500, Message: "no model provider configured", Cause: ErrNoProvider}
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	provider, err := o.resolve(model)
	if err != nil {
		return nil, &StatusError{Status: 400, Message: fmt.Sprintf("unsupported model %q", model), Cause: err}
	}

	history := []Message{NewUserText(req.Prompt)}

	plan := GenerateRequest{
		SystemInstruction: planningInstruction,
		History:           history,
	}
	if req.EnableTools && o.registry != nil && o.registry.Len() > 0 {
		plan.Tools = o.registry.Specs()
		plan.Grounding = NeedsGrounding(req.Prompt)
	}

	o.log.Debug().
		Str("model", model).
		Int("tools", len(plan.Tools)).
		Bool("grounding", plan.Grounding).
		Msg("planning call")

	planRes, err := provider.Generate(ctx, plan)
	if err != nil {
		if errors.Is(err, ErrNoCandidate) {
			return &Response{Text: fallbackText}, nil
		}
		return nil, &StatusError{Status: 502, Message: "planning call failed", Cause: err}
	}

	if len(planRes.FunctionCalls) == 0 {
		// The planning text is the final answer; no second call is made.
		return o.finalize(planRes), nil
	}

	calls := ensureCallIDs(planRes.FunctionCalls)
	results := o.dispatch(ctx, calls)

	shaped := make([]map[string]any, len(results))
	for i, res := range results {
		shaped[i] = o.shape(calls[i], res)
	}

	history = append(history, functionCallTurn(calls))
	for i, call := range calls {
		history = append(history, ToolMessage{Parts: []Part{FunctionResponsePart{
			CallID:   call.CallID,
			Name:     call.Name,
			Response: shaped[i],
		}}})
	}

	synth := GenerateRequest{
		SystemInstruction: planningInstruction,
	}
	if req.ResponseSchema != nil {
		// Schema mode disables tool use entirely so the model cannot ask for
		// more tools instead of emitting the JSON object.
		synth.ResponseSchema = req.ResponseSchema
		synth.History = append(history, NewUserText(schemaInstruction))
	} else {
		synth.Tools = plan.Tools
		synth.History = append(history, NewUserText(synthesisInstruction))
	}

	o.log.Debug().Str("model", model).Int("results", len(shaped)).Msg("synthesis call")

	synthRes, err := provider.Generate(ctx, synth)
	if err != nil {
		if errors.Is(err, ErrNoCandidate) {
			return &Response{Text: fallbackText}, nil
		}
		return nil, &StatusError{Status: 502, Message: "synthesis call failed", Cause: err}
	}
	return o.finalize(synthRes), nil
}

// finalize turns a generate result into the caller-facing response, replacing
// abnormal finishes and empty payloads with deterministic explanations.
func (o *Orchestrator) finalize(res *GenerateResult) *Response {
	if !res.FinishReason.Normal() {
		return &Response{Text: abnormalFinishMessage(res.FinishReason)}
	}
	if strings.TrimSpace(res.Text) == "" {
		return &Response{Text: fallbackText}
	}
	return &Response{Text: res.Text}
}

// dispatch executes all requested tool calls concurrently and joins on the
// full set, preserving the original call order. A slow or failing tool
// degrades its own entry only.
func (o *Orchestrator) dispatch(ctx context.Context, calls []FunctionCall) []ToolResult {
	results := make([]ToolResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call FunctionCall) {
			defer wg.Done()
			results[i] = o.executeOne(ctx, call)
		}(i, call)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) executeOne(ctx context.Context, call FunctionCall) ToolResult {
	if ctx.Err() != nil {
		return interruptedResult()
	}
	tool, ok := o.registry.Lookup(call.Name)
	if !ok {
		o.log.Warn().Str("tool", call.Name).Msg("model requested unknown tool")
		return NotFoundResult(call.Name)
	}

	o.log.Debug().Str("tool", call.Name).Msg("executing tool call")
	res, err := tool.Execute(ctx, call.Args)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return interruptedResult()
		}
		o.log.Warn().Err(err).Str("tool", call.Name).Msg("tool executor fault")
		return ErrorResult(err.Error(), 500)
	}
	return res
}

func interruptedResult() ToolResult {
	return ErrorResult("Request was cancelled before the tool call completed.", 499)
}

// ensureCallIDs fills in identifiers for providers that do not assign them.
func ensureCallIDs(calls []FunctionCall) []FunctionCall {
	out := make([]FunctionCall, len(calls))
	copy(out, calls)
	for i := range out {
		if out[i].CallID == "" {
			out[i].CallID = uuid.NewString()
		}
	}
	return out
}

func functionCallTurn(calls []FunctionCall) ModelMessage {
	parts := make([]Part, 0, len(calls))
	for _, call := range calls {
		parts = append(parts, FunctionCallPart{CallID: call.CallID, Name: call.Name, Args: call.Args})
	}
	return ModelMessage{Parts: parts}
}
