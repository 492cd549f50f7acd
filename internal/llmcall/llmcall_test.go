package llmcall

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/slidedeck/internal/providers"
)

func TestFromChatResult(t *testing.T) {
	temp := 0.2

	t.Run("success", func(t *testing.T) {
		call := FromChatResult(&providers.ChatResult{
			Content:          "[]",
			PromptTokens:     12,
			CompletionTokens: 3,
			ExecutionTime:    1500 * time.Millisecond,
			Provider:         "openai",
			ModelUsed:        "gpt-4.1",
			FinishReason:     "stop",
		}, nil, RecordOptions{RunID: "run-1", PromptKey: "generate.detail.user", Temperature: &temp, Attempt: 2})

		if !call.Success || call.Error != "" {
			t.Errorf("expected success, got %+v", call)
		}
		if call.LatencyMs != 1500 || call.InputTokens != 12 || call.OutputTokens != 3 {
			t.Errorf("unexpected metrics: %+v", call)
		}
		if call.Provider != "openai" || call.Model != "gpt-4.1" || call.Attempt != 2 {
			t.Errorf("unexpected identity: %+v", call)
		}
		if call.ID == "" {
			t.Error("expected generated id")
		}
	})

	t.Run("failure keeps request identity", func(t *testing.T) {
		call := FromChatResult(nil, errors.New("boom"), RecordOptions{Provider: "mock", Model: "m", PromptKey: "k"})
		if call.Success || call.Error != "boom" {
			t.Errorf("expected failure, got %+v", call)
		}
		if call.Provider != "mock" || call.Model != "m" {
			t.Errorf("expected request identity, got %+v", call)
		}
	})

	t.Run("nothing to record", func(t *testing.T) {
		if FromChatResult(nil, nil, RecordOptions{}) != nil {
			t.Error("expected nil call")
		}
	})
}

func TestRecorderAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "llm_calls.jsonl")
	rec := NewRecorder(path, nil)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec.RecordCall(&Call{ID: "1", Timestamp: base, RunID: "a", PromptKey: "outline", Success: true, InputTokens: 10})
	rec.RecordCall(&Call{ID: "2", Timestamp: base.Add(time.Second), RunID: "a", PromptKey: "detail", Success: false, OutputTokens: 4})
	rec.RecordCall(&Call{ID: "3", Timestamp: base.Add(2 * time.Second), RunID: "b", PromptKey: "detail", Success: true, LatencyMs: 7})

	// A torn line must not hide the rest of the log.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{not json\n")
	f.Close()

	ids := func(calls []Call) []string {
		var out []string
		for _, c := range calls {
			out = append(out, c.ID)
		}
		return out
	}

	failed := false
	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"all", ListOptions{}, []string{"1", "2", "3"}},
		{"by run", ListOptions{RunID: "a"}, []string{"1", "2"}},
		{"by prompt", ListOptions{PromptKey: "detail"}, []string{"2", "3"}},
		{"failures", ListOptions{Success: &failed}, []string{"2"}},
		{"since", ListOptions{Since: base.Add(time.Second)}, []string{"2", "3"}},
		{"limit keeps newest", ListOptions{Limit: 1}, []string{"3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls, err := List(path, tt.opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(calls)); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	all, _ := List(path, ListOptions{})
	want := Stats{Calls: 3, Failures: 1, InputTokens: 10, OutputTokens: 4, LatencyMs: 7}
	if diff := cmp.Diff(want, Summarize(all)); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestList_MissingFile(t *testing.T) {
	calls, err := List(filepath.Join(t.TempDir(), "none.jsonl"), ListOptions{})
	if err != nil || len(calls) != 0 {
		t.Errorf("List() = %v, %v; want empty", calls, err)
	}
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	rec.Record(&providers.ChatResult{}, nil, RecordOptions{})
	if rec.Path() != "" {
		t.Error("expected empty path")
	}
}
