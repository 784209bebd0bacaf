// Package testutil provides common testing utilities for provider tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
)

const DefaultTimeout = 60 * time.Second

// SkipIfNoEnv skips the test if the environment variable is not set.
func SkipIfNoEnv(t *testing.T, envVar string) {
	t.Helper()
	if os.Getenv(envVar) == "" {
		t.Skipf("skipping: %s not set", envVar)
	}
}

// TestConfig holds configuration for a live provider test run.
type TestConfig struct {
	Provider advisor.ModelProvider
	Timeout  time.Duration
}

// DefaultConfig returns a TestConfig with default timeout.
func DefaultConfig(provider advisor.ModelProvider) TestConfig {
	return TestConfig{
		Provider: provider,
		Timeout:  DefaultTimeout,
	}
}

// TestBasicTextGeneration tests basic text generation capability.
func TestBasicTextGeneration(t *testing.T, cfg TestConfig) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	res, err := cfg.Provider.Generate(ctx, advisor.GenerateRequest{
		History: []advisor.Message{advisor.NewUserText("Write a haiku")},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Text == "" {
		t.Fatal("expected non-empty text")
	}
	if !res.FinishReason.Normal() {
		t.Fatalf("unexpected finish reason: %s", res.FinishReason)
	}
}

// TestFunctionCalling tests that the provider emits a function call when a
// tool obviously matches the prompt.
func TestFunctionCalling(t *testing.T, cfg TestConfig) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	spec := advisor.ToolSpec{
		Name:        "get_stock_quote",
		Description: "Gets the latest price quote for a stock ticker symbol.",
		Parameters: map[string]any{
			"symbol": map[string]any{
				"type":        "string",
				"description": "The stock ticker symbol, e.g. AAPL.",
			},
		},
		Required: []string{"symbol"},
	}
	res, err := cfg.Provider.Generate(ctx, advisor.GenerateRequest{
		SystemInstruction: "Use the available tools to answer.",
		History:           []advisor.Message{advisor.NewUserText("What is Apple's stock price right now?")},
		Tools:             []advisor.ToolSpec{spec},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(res.FunctionCalls) == 0 {
		t.Fatal("expected at least one function call")
	}
	if res.FunctionCalls[0].Name != "get_stock_quote" {
		t.Fatalf("unexpected function call: %s", res.FunctionCalls[0].Name)
	}
}
