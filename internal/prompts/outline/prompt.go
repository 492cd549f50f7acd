package outline

import (
	_ "embed"

	"github.com/jackzampolin/slidedeck/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPrompt string

const (
	// SystemPromptKey is the hierarchical key for the outline system prompt.
	SystemPromptKey = "generate.outline.system"
	// UserPromptKey is the hierarchical key for the outline request.
	UserPromptKey = "generate.outline.user"
)

// Data is rendered into the outline request.
type Data struct {
	Manual       string
	Text         string
	TargetSlides int
}

// SystemPrompt returns the embedded system prompt.
func SystemPrompt() string {
	return systemPrompt
}

// RegisterPrompts registers the outline prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Outline system prompt - frames the model as a slide planner",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPrompt,
		Description: "Outline request - source text plus slide manual, asks for a per-slide plan naming a layout for each slide",
	})
}
