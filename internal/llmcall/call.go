// Package llmcall provides LLM call recording and querying for traceability.
// Every model call made while generating a deck is recorded with its prompt
// key, prompt hash, response and metrics.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/slidedeck/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	// Unique identifier
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	RunID   string `json:"run_id,omitempty"`
	Attempt int    `json:"attempt,omitempty"`

	// Prompt traceability
	PromptKey  string `json:"prompt_key"`
	PromptHash string `json:"prompt_hash,omitempty"` // Hash of the exact prompt text used

	// Model info
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`

	// Token usage
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Response
	Response     string `json:"response,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	// Context references (all optional)
	RunID   string
	Attempt int

	// Prompt identification (required for traceability)
	PromptKey  string
	PromptHash string

	// Request parameters (pointer to distinguish "not set" from "set to 0")
	Temperature *float64
	Model       string
	Provider    string
}

// FromChatResult creates a Call from a ChatResult and the error the call
// returned. A nil result with a nil error yields nil.
func FromChatResult(result *providers.ChatResult, callErr error, opts RecordOptions) *Call {
	if result == nil && callErr == nil {
		return nil
	}

	call := &Call{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		RunID:       opts.RunID,
		Attempt:     opts.Attempt,
		PromptKey:   opts.PromptKey,
		PromptHash:  opts.PromptHash,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		Success:     callErr == nil,
	}

	if result != nil {
		call.LatencyMs = int(result.ExecutionTime.Milliseconds())
		call.InputTokens = result.PromptTokens
		call.OutputTokens = result.CompletionTokens
		call.Response = result.Content
		call.FinishReason = result.FinishReason
		if result.Provider != "" {
			call.Provider = result.Provider
		}
		if result.ModelUsed != "" {
			call.Model = result.ModelUsed
		}
	}
	if callErr != nil {
		call.Error = callErr.Error()
	}

	return call
}
