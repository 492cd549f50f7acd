package detail

import (
	_ "embed"

	"github.com/jackzampolin/slidedeck/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPrompt string

const (
	// SystemPromptKey is the hierarchical key for the detail system prompt.
	SystemPromptKey = "generate.detail.system"
	// UserPromptKey is the hierarchical key for the detail request.
	UserPromptKey = "generate.detail.user"
)

// Data is rendered into the detail request.
type Data struct {
	Plan        string
	Manual      string
	LayoutNames []string
}

// SystemPrompt returns the embedded system prompt.
func SystemPrompt() string {
	return systemPrompt
}

// RegisterPrompts registers the detail prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Detail system prompt - asks for a bare JSON array",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPrompt,
		Description: "Detail request - approved outline plus slide manual, asks for layout/boxes/tables records",
	})
}
