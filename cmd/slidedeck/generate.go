package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/deck"
	"github.com/jackzampolin/slidedeck/internal/generate"
	"github.com/jackzampolin/slidedeck/internal/home"
	"github.com/jackzampolin/slidedeck/internal/llmcall"
	"github.com/jackzampolin/slidedeck/internal/manual"
	"github.com/jackzampolin/slidedeck/internal/prompts"
	"github.com/jackzampolin/slidedeck/internal/providers"
)

// pipelineFlags are shared by outline and generate.
type pipelineFlags struct {
	template string
	manual   string
	provider string
	model    string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Template .pptx/.potx (default from config)")
	cmd.Flags().StringVar(&f.manual, "manual", "", "Slide manual JSONL (default from config)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider (default from config)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model override")
}

// newPipeline builds a generation pipeline from config and flags.
func newPipeline(f *pipelineFlags, logger *slog.Logger) (*generate.Pipeline, error) {
	h, err := getHome()
	if err != nil {
		return nil, err
	}
	cfgMgr, err := loadConfig(h)
	if err != nil {
		return nil, err
	}
	cfg := cfgMgr.Get()

	a, err := loadAssembler(templatePath(h, cfg, f.template), logger)
	if err != nil {
		return nil, err
	}
	m, err := loadManual(manualPath(h, cfg, f.manual), a, logger)
	if err != nil {
		return nil, err
	}

	registry := providers.NewRegistry()
	registry.SetLogger(logger)
	registry.Reload(cfg.ToProviderRegistryConfig())
	client, err := generate.ClientFor(registry, cfg, f.provider)
	if err != nil {
		return nil, err
	}

	gc := generate.Config{
		Client:    client,
		Assembler: a,
		Manual:    m,
		Prompts:   prompts.NewResolver(h.PromptsDir(), logger),
		Recorder:  callRecorder(h, logger),
		Logger:    logger,
		Model:     f.model,
	}
	gc.ApplySettings(cfg.Generate)
	return generate.New(gc)
}

// loadManual reads the manual, drafting one from the template when the file
// does not exist.
func loadManual(path string, a *deck.Assembler, logger *slog.Logger) (*manual.Manual, error) {
	m, err := manual.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("manual not found, drafting from template", "path", path)
		return manual.FromIndex(a.Index()), nil
	}
	if err != nil {
		return nil, err
	}
	for _, skipped := range m.Skipped {
		logger.Warn("skipped manual line", "line", skipped.Line, "error", skipped.Err)
	}
	return m, nil
}

// callRecorder records LLM calls in the home directory when it exists.
func callRecorder(h *home.Dir, logger *slog.Logger) *llmcall.Recorder {
	if !h.Exists() {
		return nil
	}
	return llmcall.NewRecorder(h.CallLogPath(), logger)
}

var (
	outlineFlags pipelineFlags
	outlineInput string
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Ask the model for a slide plan",
	Long: `Ask the model for a per-slide plan of the input text. The plan names a
layout from the manual for each slide and can be edited before being passed
to generate --plan.

Examples:
  slidedeck outline --input notes.md > plan.yaml
  slidedeck outline --input notes.md -o json | jq -r .plan > plan.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(&outlineFlags, newLogger())
		if err != nil {
			return err
		}
		text, err := readContent(outlineInput, cmd.InOrStdin())
		if err != nil {
			return err
		}
		o, err := p.Outline(cmd.Context(), text)
		if err != nil {
			return err
		}
		return api.Output(o)
	},
}

var (
	generateFlags pipelineFlags
	generateInput string
	generatePlan  string
	generateOut   string
)

// GenerateOutput is what generate prints after writing the deck.
type GenerateOutput struct {
	AssembleOutput `yaml:",inline"`

	RunID          string `json:"run_id" yaml:"run_id"`
	DetailAttempts int    `json:"detail_attempts" yaml:"detail_attempts"`
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a deck from text",
	Long: `Generate a deck from free text: the model drafts an outline, turns it into
slide records and the records are assembled on the template.

With --plan the outline step is skipped and the given plan is detailed as is.
Detail answers that cannot be parsed are retried (generate.detail_attempts).

Examples:
  slidedeck generate --input notes.md --out talk.pptx
  slidedeck generate --plan plan.txt --out talk.pptx --provider local`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(&generateFlags, newLogger())
		if err != nil {
			return err
		}

		var req generate.Request
		if generatePlan != "" {
			if req.Plan, err = readContent(generatePlan, cmd.InOrStdin()); err != nil {
				return err
			}
		} else if req.Text, err = readContent(generateInput, cmd.InOrStdin()); err != nil {
			return err
		}

		res, err := p.Generate(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := os.WriteFile(generateOut, res.Document, 0o644); err != nil {
			return fmt.Errorf("failed to write deck: %w", err)
		}

		warnings := res.Warnings
		if warnings == nil {
			warnings = []deck.Warning{}
		}
		return api.Output(GenerateOutput{
			AssembleOutput: AssembleOutput{
				Out:      generateOut,
				Slides:   len(res.Layouts),
				Layouts:  res.Layouts,
				Strategy: res.Strategy,
				Warnings: warnings,
			},
			RunID:          res.RunID,
			DetailAttempts: res.DetailAttempts,
		})
	},
}

func init() {
	outlineFlags.register(outlineCmd)
	outlineCmd.Flags().StringVarP(&outlineInput, "input", "i", "-", "Source text file (- for stdin)")

	generateFlags.register(generateCmd)
	generateCmd.Flags().StringVarP(&generateInput, "input", "i", "-", "Source text file (- for stdin)")
	generateCmd.Flags().StringVar(&generatePlan, "plan", "", "Approved plan file; skips the outline step")
	generateCmd.Flags().StringVar(&generateOut, "out", "generated_slide.pptx", "Output deck path")

	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(generateCmd)
}
