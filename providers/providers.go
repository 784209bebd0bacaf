// Package providers wires model names to concrete backends.
package providers

import (
	"strings"

	"github.com/pkg/errors"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
	"github.com/stgisi414/ai-paper-trader-sub001/providers/anthropic"
	"github.com/stgisi414/ai-paper-trader-sub001/providers/chatcompletion"
	"github.com/stgisi414/ai-paper-trader-sub001/providers/gemini"
)

// ErrUnknownModel is returned when no backend serves the model name.
var ErrUnknownModel = errors.New("providers: unknown model")

// Resolve maps a model name to its backend by prefix. Gemini models carry
// web-search grounding and response schemas natively; the other backends
// degrade those features as documented on their packages.
func Resolve(model string) (advisor.ModelProvider, error) {
	switch {
	case strings.HasPrefix(model, "gemini-"):
		return gemini.New(model), nil
	case strings.HasPrefix(model, "claude-"):
		return anthropic.New(model), nil
	case strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4"):
		return chatcompletion.New(model), nil
	default:
		return nil, errors.Wrap(ErrUnknownModel, model)
	}
}
