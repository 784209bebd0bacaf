package advisor_test

import (
	"encoding/json"
	"testing"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
)

func TestMessageRoundTrip(t *testing.T) {
	turns := []advisor.Message{
		advisor.NewUserText("price of AAPL?"),
		advisor.ModelMessage{Parts: []advisor.Part{
			advisor.FunctionCallPart{CallID: "c1", Name: "get_stock_quote", Args: map[string]any{"symbol": "AAPL"}},
		}},
		advisor.ToolMessage{Parts: []advisor.Part{
			advisor.FunctionResponsePart{CallID: "c1", Name: "get_stock_quote", Response: map[string]any{"price": 123.45}},
		}},
	}

	for _, turn := range turns {
		raw, err := json.Marshal(turn)
		if err != nil {
			t.Fatalf("marshal %T: %v", turn, err)
		}
		back, err := advisor.UnmarshalMessage(raw)
		if err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		again, err := json.Marshal(back)
		if err != nil {
			t.Fatalf("re-marshal %T: %v", back, err)
		}
		if string(raw) != string(again) {
			t.Fatalf("round trip drifted:\n first: %s\nsecond: %s", raw, again)
		}
	}
}

func TestUnmarshalMessageRejectsUnknownRole(t *testing.T) {
	if _, err := advisor.UnmarshalMessage([]byte(`{"role":"system"}`)); err == nil {
		t.Fatal("expected an error for an unknown role")
	}
}
