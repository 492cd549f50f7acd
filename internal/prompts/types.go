// Package prompts provides prompt management with embedded defaults and
// file-based overrides.
//
// Embedded .tmpl files in code are the source of truth for defaults. An
// override directory (usually ~/.slidedeck/prompts) may hold a file named
// after a prompt key, e.g. generate.outline.user.tmpl, which replaces the
// embedded text for every render.
//
// Resolution order:
//  1. Override file (if the resolver has an override directory and the file exists)
//  2. Embedded default (from .tmpl files in code)
package prompts

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: generate.outline.user
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}

// ResolvedPrompt is the result of resolving a prompt.
type ResolvedPrompt struct {
	Key        string   `json:"key" yaml:"key"`
	Text       string   `json:"text" yaml:"text"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	IsOverride bool     `json:"is_override" yaml:"is_override"` // true if read from the override directory
	Source     string   `json:"source" yaml:"source"`           // "embedded" or the override file path
	Hash       string   `json:"hash" yaml:"hash"`
}
