package chatcompletion_test

import (
	"testing"

	"github.com/stgisi414/ai-paper-trader-sub001/internal/testutil"
	cc "github.com/stgisi414/ai-paper-trader-sub001/providers/chatcompletion"
)

const envKey = "OPENAI_API_KEY"

func TestOpenAI_BasicTextGeneration(t *testing.T) {
	testutil.SkipIfNoEnv(t, envKey)

	provider := cc.New("gpt-4o-mini")
	cfg := testutil.DefaultConfig(provider)
	testutil.TestBasicTextGeneration(t, cfg)
}

func TestOpenAI_FunctionCalling(t *testing.T) {
	testutil.SkipIfNoEnv(t, envKey)

	provider := cc.New("gpt-4o-mini")
	cfg := testutil.DefaultConfig(provider)
	testutil.TestFunctionCalling(t, cfg)
}
