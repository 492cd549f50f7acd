// Package generate runs the text-to-deck pipeline: an outline call, a detail
// call that must produce slide records, and deck assembly.
//
// Only the detail step is retried, and only when the model's answer cannot be
// read as a record array. Transport errors are left to the provider client.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/jackzampolin/slidedeck/internal/config"
	"github.com/jackzampolin/slidedeck/internal/content"
	"github.com/jackzampolin/slidedeck/internal/deck"
	"github.com/jackzampolin/slidedeck/internal/llmcall"
	"github.com/jackzampolin/slidedeck/internal/manual"
	"github.com/jackzampolin/slidedeck/internal/prompts"
	"github.com/jackzampolin/slidedeck/internal/prompts/detail"
	"github.com/jackzampolin/slidedeck/internal/prompts/outline"
	"github.com/jackzampolin/slidedeck/internal/providers"
)

var (
	// ErrEmptyInput is returned when there is no text to plan from.
	ErrEmptyInput = errors.New("input text is empty")
	// ErrModel wraps errors returned by the LLM client.
	ErrModel = errors.New("model call failed")
)

const (
	defaultDetailAttempts = 3
	defaultTargetSlides   = 10
)

// Config configures a Pipeline.
type Config struct {
	Client    providers.LLMClient
	Assembler *deck.Assembler
	// Manual describes the template's layouts to the model. When nil, one is
	// drafted from the assembler's template index.
	Manual   *manual.Manual
	Prompts  *prompts.Resolver
	Recorder *llmcall.Recorder
	Logger   *slog.Logger

	Model          string
	Temperature    *float64
	DetailAttempts int
	RetryDelay     time.Duration
	TargetSlides   int
}

// ApplySettings copies the generate section of the configuration.
func (c *Config) ApplySettings(g config.GenerateCfg) {
	temp := g.Temperature
	c.Temperature = &temp
	c.DetailAttempts = g.DetailAttempts
	c.RetryDelay = g.RetryDelay()
	c.TargetSlides = g.TargetSlides
}

// ClientFor returns the named LLM client, or the configured default when
// name is empty.
func ClientFor(reg *providers.Registry, cfg *config.Config, name string) (providers.LLMClient, error) {
	if name == "" {
		name = cfg.Defaults.LLMProvider
	}
	if name == "" {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	return reg.Get(name)
}

// Pipeline generates decks from free text.
type Pipeline struct {
	client    providers.LLMClient
	assembler *deck.Assembler
	manual    *manual.Manual
	prompts   *prompts.Resolver
	recorder  *llmcall.Recorder
	logger    *slog.Logger

	model          string
	temperature    *float64
	detailAttempts int
	retryDelay     time.Duration
	targetSlides   int
}

// New creates a pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("generate: LLM client is required")
	}
	if cfg.Assembler == nil {
		return nil, fmt.Errorf("generate: assembler is required")
	}

	p := &Pipeline{
		client:         cfg.Client,
		assembler:      cfg.Assembler,
		manual:         cfg.Manual,
		prompts:        cfg.Prompts,
		recorder:       cfg.Recorder,
		logger:         cfg.Logger,
		model:          cfg.Model,
		temperature:    cfg.Temperature,
		detailAttempts: cfg.DetailAttempts,
		retryDelay:     cfg.RetryDelay,
		targetSlides:   cfg.TargetSlides,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.manual == nil {
		p.manual = manual.FromIndex(cfg.Assembler.Index())
	}
	if p.prompts == nil {
		p.prompts = prompts.NewResolver("", p.logger)
	}
	outline.RegisterPrompts(p.prompts)
	detail.RegisterPrompts(p.prompts)
	if p.detailAttempts < 1 {
		p.detailAttempts = defaultDetailAttempts
	}
	if p.targetSlides < 1 {
		p.targetSlides = defaultTargetSlides
	}
	return p, nil
}

// Request is one generation run.
type Request struct {
	// Text is the source text. It is only used when Plan is empty.
	Text string
	// Plan is an approved outline. When set the outline step is skipped.
	Plan string
}

// Outline is the model's slide plan.
type Outline struct {
	RunID string `json:"run_id" yaml:"run_id"`
	Plan  string `json:"plan" yaml:"plan"`
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
}

// Detail is the model's structured content for a plan.
type Detail struct {
	RunID    string
	Raw      string
	Parsed   *content.Parsed
	Attempts int
}

// Result is a generated deck.
type Result struct {
	*deck.Result
	RunID string
	Plan  string
	// Raw is the detail response the deck was assembled from.
	Raw            string
	DetailAttempts int
}

// Outline asks the model for a slide plan.
func (p *Pipeline) Outline(ctx context.Context, text string) (*Outline, error) {
	return p.outline(ctx, uuid.New().String(), text)
}

func (p *Pipeline) outline(ctx context.Context, runID, text string) (*Outline, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	user, err := p.prompts.Render(outline.UserPromptKey, outline.Data{
		Manual:       p.manual.Text(),
		Text:         text,
		TargetSlides: p.targetSlides,
	})
	if err != nil {
		return nil, err
	}
	system, err := p.prompts.Render(outline.SystemPromptKey, nil)
	if err != nil {
		return nil, err
	}

	res, err := p.chat(ctx, runID, 1, outline.UserPromptKey, system, user)
	if err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}
	p.logger.Info("outline generated", "run_id", runID, "chars", len(res.Content))
	return &Outline{RunID: runID, Plan: res.Content, Model: res.ModelUsed}, nil
}

// Detail asks the model to turn a plan into slide records, retrying while
// the answer cannot be parsed.
func (p *Pipeline) Detail(ctx context.Context, plan string) (*Detail, error) {
	return p.detail(ctx, uuid.New().String(), plan)
}

func (p *Pipeline) detail(ctx context.Context, runID, plan string) (*Detail, error) {
	if plan == "" {
		return nil, ErrEmptyInput
	}
	user, err := p.prompts.Render(detail.UserPromptKey, detail.Data{
		Plan:        plan,
		Manual:      p.manual.Text(),
		LayoutNames: p.assembler.Index().Names(),
	})
	if err != nil {
		return nil, err
	}
	system, err := p.prompts.Render(detail.SystemPromptKey, nil)
	if err != nil {
		return nil, err
	}

	out := &Detail{RunID: runID}
	err = retry.Do(
		func() error {
			out.Attempts++
			res, err := p.chat(ctx, runID, out.Attempts, detail.UserPromptKey, system, user)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			out.Raw = res.Content
			parsed, err := content.Parse(res.Content)
			if err != nil {
				p.logger.Warn("detail response not parsable",
					"run_id", runID,
					"attempt", out.Attempts,
					"error", err)
				return err
			}
			out.Parsed = parsed
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.detailAttempts)),
		retry.Delay(p.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isParseError),
	)
	if err != nil {
		return nil, fmt.Errorf("detail: %w", err)
	}
	return out, nil
}

func isParseError(err error) bool {
	var pe *content.ContentParseError
	return errors.As(err, &pe)
}

// Generate runs outline (unless a plan is given), detail and assembly.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.New().String()
	plan := req.Plan
	if plan == "" {
		o, err := p.outline(ctx, runID, req.Text)
		if err != nil {
			return nil, err
		}
		plan = o.Plan
	}

	d, err := p.detail(ctx, runID, plan)
	if err != nil {
		return nil, err
	}

	deckRes, err := p.assembler.Assemble(d.Parsed.Records)
	if err != nil {
		return nil, err
	}
	deckRes.Strategy = d.Parsed.Strategy

	p.logger.Info("deck generated",
		"run_id", runID,
		"slides", len(deckRes.Layouts),
		"warnings", len(deckRes.Warnings),
		"detail_attempts", d.Attempts)

	return &Result{
		Result:         deckRes,
		RunID:          runID,
		Plan:           plan,
		Raw:            d.Raw,
		DetailAttempts: d.Attempts,
	}, nil
}

func (p *Pipeline) chat(ctx context.Context, runID string, attempt int, promptKey, system, user string) (*providers.ChatResult, error) {
	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Model:       p.model,
		Temperature: p.temperature,
		RequestID:   fmt.Sprintf("%s-%s-%d", runID, promptKey, attempt),
	}
	res, err := p.client.Chat(ctx, req)
	p.recorder.Record(res, err, llmcall.RecordOptions{
		RunID:       runID,
		Attempt:     attempt,
		PromptKey:   promptKey,
		PromptHash:  prompts.HashText(user),
		Temperature: p.temperature,
		Model:       p.model,
		Provider:    p.client.Name(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModel, err)
	}
	return res, nil
}
