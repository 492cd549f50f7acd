package llmcall

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"
)

// ListOptions provides filtering options for listing calls.
type ListOptions struct {
	RunID     string
	PromptKey string
	Success   *bool
	Since     time.Time
	Limit     int // Newest calls are kept when the list is cut
}

// List reads recorded calls from a JSONL file, oldest first.
// A missing file is an empty list. Lines that do not decode are skipped.
func List(path string, opts ListOptions) ([]Call, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open call log: %w", err)
	}
	defer f.Close()

	var calls []Call
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var c Call
		if err := json.Unmarshal(scanner.Bytes(), &c); err != nil {
			continue
		}
		if !opts.matches(c) {
			continue
		}
		calls = append(calls, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read call log: %w", err)
	}

	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Timestamp.Before(calls[j].Timestamp)
	})
	if opts.Limit > 0 && len(calls) > opts.Limit {
		calls = calls[len(calls)-opts.Limit:]
	}
	return calls, nil
}

func (o ListOptions) matches(c Call) bool {
	if o.RunID != "" && c.RunID != o.RunID {
		return false
	}
	if o.PromptKey != "" && c.PromptKey != o.PromptKey {
		return false
	}
	if o.Success != nil && c.Success != *o.Success {
		return false
	}
	if !o.Since.IsZero() && c.Timestamp.Before(o.Since) {
		return false
	}
	return true
}

// Stats summarizes a set of calls.
type Stats struct {
	Calls        int `json:"calls" yaml:"calls"`
	Failures     int `json:"failures" yaml:"failures"`
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
	LatencyMs    int `json:"latency_ms" yaml:"latency_ms"`
}

// Summarize totals tokens and latency over calls.
func Summarize(calls []Call) Stats {
	var s Stats
	for _, c := range calls {
		s.Calls++
		if !c.Success {
			s.Failures++
		}
		s.InputTokens += c.InputTokens
		s.OutputTokens += c.OutputTokens
		s.LatencyMs += c.LatencyMs
	}
	return s
}
