package advisor

import (
	"encoding/json"
	"fmt"
)

// PartType describes the kind of content in a part.
type PartType string

const (
	PartText             PartType = "text"
	PartFunctionCall     PartType = "function_call"
	PartFunctionResponse PartType = "function_response"
)

// Part is a structured message fragment.
type Part interface {
	partType() PartType
}

// TextPart represents text content.
type TextPart struct {
	Text string `json:"text"`
}

func (TextPart) partType() PartType { return PartText }

func (p TextPart) MarshalJSON() ([]byte, error) {
	type alias TextPart
	return json.Marshal(struct {
		Type PartType `json:"type"`
		alias
	}{PartText, alias(p)})
}

// FunctionCallPart represents a tool invocation requested by the model.
type FunctionCallPart struct {
	CallID string         `json:"call_id"`
	Name   string         `json:"name"`
	Args   map[string]any `json:"args,omitempty"`
}

func (FunctionCallPart) partType() PartType { return PartFunctionCall }

func (p FunctionCallPart) MarshalJSON() ([]byte, error) {
	type alias FunctionCallPart
	return json.Marshal(struct {
		Type PartType `json:"type"`
		alias
	}{PartFunctionCall, alias(p)})
}

// FunctionResponsePart carries one shaped tool result back to the model.
type FunctionResponsePart struct {
	CallID   string         `json:"call_id"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response,omitempty"`
}

func (FunctionResponsePart) partType() PartType { return PartFunctionResponse }

func (p FunctionResponsePart) MarshalJSON() ([]byte, error) {
	type alias FunctionResponsePart
	return json.Marshal(struct {
		Type PartType `json:"type"`
		alias
	}{PartFunctionResponse, alias(p)})
}

// UnmarshalPart decodes a JSON object into a concrete Part type.
func UnmarshalPart(data []byte) (Part, error) {
	var raw struct {
		Type PartType `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch raw.Type {
	case PartText:
		var p TextPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case PartFunctionCall:
		var p FunctionCallPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case PartFunctionResponse:
		var p FunctionResponsePart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown part type: %s", raw.Type)
	}
}

func unmarshalParts(rawParts []json.RawMessage) ([]Part, error) {
	parts := make([]Part, 0, len(rawParts))
	for _, raw := range rawParts {
		p, err := UnmarshalPart(raw)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}
