package detail

import (
	"strings"
	"testing"

	"github.com/jackzampolin/slidedeck/internal/prompts"
)

func TestRenderUserPrompt(t *testing.T) {
	r := prompts.NewResolver("", nil)
	RegisterPrompts(r)

	got, err := r.Render(UserPromptKey, Data{
		Plan:        "1. Title slide",
		Manual:      `{"layout_name": "Two Column"}`,
		LayoutNames: []string{"Title Only", "Two Column"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"- Title Only\n", "- Two Column\n", "1. Title slide", `"tables": [{"idx": 11`} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
}

func TestRenderUserPromptWithoutNames(t *testing.T) {
	r := prompts.NewResolver("", nil)
	RegisterPrompts(r)

	got, err := r.Render(UserPromptKey, Data{Plan: "p", Manual: "m"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(got, "Valid layout names") {
		t.Error("expected layout name list to be omitted")
	}
}
