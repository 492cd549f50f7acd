package generate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/slidedeck/internal/config"
	"github.com/jackzampolin/slidedeck/internal/content"
	"github.com/jackzampolin/slidedeck/internal/deck"
	"github.com/jackzampolin/slidedeck/internal/layout"
	"github.com/jackzampolin/slidedeck/internal/llmcall"
	"github.com/jackzampolin/slidedeck/internal/prompts/detail"
	"github.com/jackzampolin/slidedeck/internal/prompts/outline"
	"github.com/jackzampolin/slidedeck/internal/providers"
	"github.com/jackzampolin/slidedeck/internal/testutil"
)

const validDetail = `Here you go:
[
  {"layout": "Title Only", "boxes": {"0": "Results"}},
  {"layout": "Body", "boxes": {"0": "Revenue", "10": "Up 12%"}}
]`

func newPipeline(t *testing.T, client providers.LLMClient, mutate func(*Config)) (*Pipeline, *llmcall.Recorder) {
	t.Helper()
	data := testutil.BuildTemplate(t, testutil.TemplateOptions{})
	ix, err := layout.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("layout.Read() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := llmcall.NewRecorder(filepath.Join(t.TempDir(), "calls.jsonl"), logger)

	cfg := Config{
		Client:         client,
		Assembler:      deck.New(ix, logger),
		Recorder:       rec,
		Logger:         logger,
		Model:          "test-model",
		DetailAttempts: 3,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p, rec
}

func TestNew_RequiresClientAndAssembler(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without client")
	}
	if _, err := New(Config{Client: providers.NewMockClient()}); err == nil {
		t.Error("expected error without assembler")
	}
}

func TestGenerate_FullPipeline(t *testing.T) {
	client := providers.NewMockClient("1. Results\n2. Revenue", validDetail)
	p, rec := newPipeline(t, client, nil)

	res, err := p.Generate(context.Background(), Request{Text: "Revenue grew 12% this quarter."})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if diff := cmp.Diff([]string{"Title Only", "Body"}, res.Layouts); diff != "" {
		t.Errorf("layouts mismatch (-want +got):\n%s", diff)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
	if res.Strategy != content.StrategyBracketSlice {
		t.Errorf("expected bracket_slice strategy, got %s", res.Strategy)
	}
	if res.Plan != "1. Results\n2. Revenue" {
		t.Errorf("unexpected plan %q", res.Plan)
	}
	if res.DetailAttempts != 1 {
		t.Errorf("expected 1 detail attempt, got %d", res.DetailAttempts)
	}
	if len(res.Document) == 0 {
		t.Error("expected document bytes")
	}

	reqs := client.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(reqs))
	}
	if !strings.Contains(reqs[0].Messages[1].Content, "Revenue grew 12% this quarter.") {
		t.Error("outline request should carry the source text")
	}
	if !strings.Contains(reqs[0].Messages[1].Content, `"layout_name":"Two Column"`) {
		t.Error("outline request should carry the drafted manual")
	}
	if !strings.Contains(reqs[1].Messages[1].Content, "1. Results\n2. Revenue") {
		t.Error("detail request should carry the plan")
	}
	if reqs[1].Model != "test-model" {
		t.Errorf("expected configured model, got %q", reqs[1].Model)
	}

	calls, err := llmcall.List(rec.Path(), llmcall.ListOptions{RunID: res.RunID})
	if err != nil {
		t.Fatalf("llmcall.List() error = %v", err)
	}
	var keys []string
	for _, c := range calls {
		keys = append(keys, c.PromptKey)
	}
	if diff := cmp.Diff([]string{outline.UserPromptKey, detail.UserPromptKey}, keys); diff != "" {
		t.Errorf("recorded calls mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_WithPlanSkipsOutline(t *testing.T) {
	client := providers.NewMockClient(validDetail)
	p, _ := newPipeline(t, client, nil)

	res, err := p.Generate(context.Background(), Request{Plan: "approved plan"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if client.RequestCount() != 1 {
		t.Errorf("expected only the detail call, got %d calls", client.RequestCount())
	}
	if res.Plan != "approved plan" {
		t.Errorf("unexpected plan %q", res.Plan)
	}
}

func TestDetail_RetriesUnparsableResponses(t *testing.T) {
	client := providers.NewMockClient("I cannot do that.", "still no json", validDetail)
	p, _ := newPipeline(t, client, nil)

	d, err := p.Detail(context.Background(), "plan")
	if err != nil {
		t.Fatalf("Detail() error = %v", err)
	}
	if d.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", d.Attempts)
	}
	if len(d.Parsed.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(d.Parsed.Records))
	}
}

func TestDetail_GivesUpWithParseError(t *testing.T) {
	client := providers.NewMockClient()
	client.ResponseText = "no json here"
	p, _ := newPipeline(t, client, func(c *Config) { c.DetailAttempts = 2 })

	_, err := p.Detail(context.Background(), "plan")
	var pe *content.ContentParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ContentParseError, got %v", err)
	}
	if pe.Payload != "no json here" {
		t.Errorf("expected last payload, got %q", pe.Payload)
	}
	if client.RequestCount() != 2 {
		t.Errorf("expected 2 calls, got %d", client.RequestCount())
	}
}

func TestDetail_ModelErrorIsNotRetried(t *testing.T) {
	client := providers.NewMockClient()
	client.ShouldFail = true
	p, rec := newPipeline(t, client, nil)

	if _, err := p.Detail(context.Background(), "plan"); err == nil {
		t.Fatal("expected error")
	}
	if client.RequestCount() != 1 {
		t.Errorf("expected 1 call, got %d", client.RequestCount())
	}

	failed := false
	calls, _ := llmcall.List(rec.Path(), llmcall.ListOptions{Success: &failed})
	if len(calls) != 1 {
		t.Errorf("expected the failed call to be recorded, got %d", len(calls))
	}
}

func TestOutline(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		p, _ := newPipeline(t, providers.NewMockClient(), nil)
		if _, err := p.Outline(context.Background(), ""); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("target slide count reaches the prompt", func(t *testing.T) {
		client := providers.NewMockClient("plan")
		p, _ := newPipeline(t, client, func(c *Config) { c.TargetSlides = 4 })

		o, err := p.Outline(context.Background(), "text")
		if err != nil {
			t.Fatalf("Outline() error = %v", err)
		}
		if o.Plan != "plan" || o.RunID == "" {
			t.Errorf("unexpected outline %+v", o)
		}
		if !strings.Contains(client.Requests()[0].Messages[1].Content, "about 4 slides") {
			t.Error("expected target slide count in prompt")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := providers.NewMockClient("plan")
		client.Latency = time.Hour
		p, _ := newPipeline(t, client, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := p.Outline(ctx, "text"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestDetail_ModelErrorIsWrapped(t *testing.T) {
	client := providers.NewMockClient()
	client.ShouldFail = true
	p, _ := newPipeline(t, client, nil)

	_, err := p.Detail(context.Background(), "plan")
	if !errors.Is(err, ErrModel) {
		t.Errorf("expected ErrModel, got %v", err)
	}
}

func TestConfig_ApplySettings(t *testing.T) {
	var cfg Config
	cfg.ApplySettings(config.GenerateCfg{
		Temperature:    0.7,
		DetailAttempts: 4,
		RetryDelayMS:   250,
		TargetSlides:   12,
	})

	if cfg.Temperature == nil || *cfg.Temperature != 0.7 {
		t.Errorf("unexpected temperature %v", cfg.Temperature)
	}
	if cfg.DetailAttempts != 4 || cfg.RetryDelay != 250*time.Millisecond || cfg.TargetSlides != 12 {
		t.Errorf("unexpected settings %+v", cfg)
	}
}

func TestClientFor(t *testing.T) {
	reg := providers.NewRegistry()
	mock := providers.NewMockClient()
	reg.Register("local", mock)
	cfg := config.DefaultConfig()
	cfg.Defaults.LLMProvider = "local"

	got, err := ClientFor(reg, cfg, "")
	if err != nil || got != mock {
		t.Errorf("ClientFor(default) = %v, %v", got, err)
	}
	if _, err := ClientFor(reg, cfg, "missing"); err == nil {
		t.Error("expected error for unknown provider")
	}

	cfg.Defaults.LLMProvider = ""
	if _, err := ClientFor(reg, cfg, ""); err == nil {
		t.Error("expected error without a default provider")
	}
}
