package advisor_test

import (
	"context"
	"reflect"
	"testing"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
)

type specOnlyTool struct {
	spec advisor.ToolSpec
}

func (t specOnlyTool) Spec() advisor.ToolSpec { return t.spec }

func (specOnlyTool) Execute(context.Context, map[string]any) (advisor.ToolResult, error) {
	return advisor.DataResult(nil), nil
}

func namedTool(name string) specOnlyTool {
	return specOnlyTool{spec: advisor.ToolSpec{Name: name}}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := advisor.NewRegistry(namedTool("c"), namedTool("a"), namedTool("b"))
	var names []string
	for _, spec := range r.Specs() {
		names = append(names, spec.Name)
	}
	if !reflect.DeepEqual(names, []string{"c", "a", "b"}) {
		t.Fatalf("specs out of registration order: %v", names)
	}
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
}

func TestRegistryLookup(t *testing.T) {
	r := advisor.NewRegistry(namedTool("a"))
	if _, ok := r.Lookup("a"); !ok {
		t.Fatal("registered tool not found")
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("lookup of unknown name succeeded")
	}
}

func TestToolSpecSchema(t *testing.T) {
	spec := advisor.ToolSpec{
		Name: "get_stock_quote",
		Parameters: map[string]any{
			"symbol": map[string]any{"type": "string"},
		},
		Required: []string{"symbol"},
	}
	schema := spec.Schema()
	if schema["type"] != "object" {
		t.Fatalf("schema type = %v", schema["type"])
	}
	if !reflect.DeepEqual(schema["required"], []string{"symbol"}) {
		t.Fatalf("schema required = %v", schema["required"])
	}

	// No required key at all when the list is empty.
	if _, ok := (advisor.ToolSpec{Name: "x"}).Schema()["required"]; ok {
		t.Fatal("empty required list must be omitted")
	}
}

func TestToolResultStates(t *testing.T) {
	if advisor.DataResult(map[string]any{"ok": true}).IsError() {
		t.Fatal("data result reported as error")
	}
	res := advisor.ErrorResult("boom", 502)
	if !res.IsError() || res.Status != 502 {
		t.Fatalf("unexpected error result: %+v", res)
	}
	nf := advisor.NotFoundResult("get_time_machine")
	if nf.Err != "Tool get_time_machine not found." {
		t.Fatalf("unexpected not-found message: %q", nf.Err)
	}
	if nf.Status != 0 {
		t.Fatalf("not-found result must carry no status, got %d", nf.Status)
	}
}
