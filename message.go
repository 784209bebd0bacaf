package advisor

import (
	"encoding/json"
	"fmt"
)

// Role is the speaker role of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool-result"
)

// Message is one turn of a request-scoped conversation history.
// Histories are append-only during a run and discarded afterwards.
type Message interface {
	role() Role
}

// UserMessage represents caller input.
type UserMessage struct {
	Parts []Part `json:"parts,omitempty"`
}

func (UserMessage) role() Role { return RoleUser }

func (m UserMessage) MarshalJSON() ([]byte, error) {
	type alias UserMessage
	return json.Marshal(struct {
		Role Role `json:"role"`
		alias
	}{RoleUser, alias(m)})
}

// ModelMessage represents a model response turn, either free text or one or
// more function calls.
type ModelMessage struct {
	Parts []Part `json:"parts,omitempty"`
}

func (ModelMessage) role() Role { return RoleModel }

func (m ModelMessage) MarshalJSON() ([]byte, error) {
	type alias ModelMessage
	return json.Marshal(struct {
		Role Role `json:"role"`
		alias
	}{RoleModel, alias(m)})
}

// ToolMessage carries shaped tool results back to the model.
type ToolMessage struct {
	Parts []Part `json:"parts,omitempty"`
}

func (ToolMessage) role() Role { return RoleTool }

func (m ToolMessage) MarshalJSON() ([]byte, error) {
	type alias ToolMessage
	return json.Marshal(struct {
		Role Role `json:"role"`
		alias
	}{RoleTool, alias(m)})
}

// NewUserText builds a user turn holding a single text part.
func NewUserText(text string) UserMessage {
	return UserMessage{Parts: []Part{TextPart{Text: text}}}
}

func (m *UserMessage) UnmarshalJSON(data []byte) error {
	type alias UserMessage
	aux := &struct {
		Parts []json.RawMessage `json:"parts,omitempty"`
		*alias
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	parts, err := unmarshalParts(aux.Parts)
	if err != nil {
		return err
	}
	m.Parts = parts
	return nil
}

func (m *ModelMessage) UnmarshalJSON(data []byte) error {
	type alias ModelMessage
	aux := &struct {
		Parts []json.RawMessage `json:"parts,omitempty"`
		*alias
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	parts, err := unmarshalParts(aux.Parts)
	if err != nil {
		return err
	}
	m.Parts = parts
	return nil
}

func (m *ToolMessage) UnmarshalJSON(data []byte) error {
	type alias ToolMessage
	aux := &struct {
		Parts []json.RawMessage `json:"parts,omitempty"`
		*alias
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	parts, err := unmarshalParts(aux.Parts)
	if err != nil {
		return err
	}
	m.Parts = parts
	return nil
}

// UnmarshalMessage decodes a JSON object into a concrete Message type.
func UnmarshalMessage(data []byte) (Message, error) {
	var raw struct {
		Role Role `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch raw.Role {
	case RoleUser:
		var m UserMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case RoleModel:
		var m ModelMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case RoleTool:
		var m ToolMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown role: %s", raw.Role)
	}
}
