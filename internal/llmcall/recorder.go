package llmcall

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jackzampolin/slidedeck/internal/providers"
)

// Recorder appends LLM calls to a JSONL file.
// A nil Recorder, or one without a path, records nothing.
type Recorder struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewRecorder creates a new LLM call recorder writing to path.
func NewRecorder(path string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{path: path, logger: logger}
}

// Path returns the file calls are appended to.
func (r *Recorder) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Record captures an LLM call. Failures are logged, never returned: losing a
// trace record must not fail deck generation.
func (r *Recorder) Record(result *providers.ChatResult, callErr error, opts RecordOptions) {
	r.RecordCall(FromChatResult(result, callErr, opts))
}

// RecordCall captures an already-constructed Call.
func (r *Recorder) RecordCall(call *Call) {
	if r == nil || r.path == "" || call == nil {
		return
	}
	if err := r.append(call); err != nil {
		r.logger.Warn("failed to record LLM call",
			"error", err,
			"prompt_key", call.PromptKey,
			"path", r.path)
	}
}

func (r *Recorder) append(call *Call) error {
	data, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("failed to encode call: %w", err)
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
