package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/deck"
	"github.com/jackzampolin/slidedeck/internal/layout"
)

var (
	assembleTemplate string
	assembleContent  string
	assembleOut      string
)

// AssembleOutput is what assemble prints after writing the deck.
type AssembleOutput struct {
	Out      string         `json:"out" yaml:"out"`
	Slides   int            `json:"slides" yaml:"slides"`
	Layouts  []string       `json:"layouts" yaml:"layouts"`
	Strategy string         `json:"strategy" yaml:"strategy"`
	Warnings []deck.Warning `json:"warnings" yaml:"warnings"`
}

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Build a deck from a content description",
	Long: `Build a PPTX deck from a JSON content description.

The content is an array of slide records:

  [{"layout": "Body", "boxes": {"0": "Title", "10": "Body text"},
    "tables": [{"idx": 11, "data": [["a", "b"], ["1", "2"]]}]}]

Text around the array is tolerated. Problems with individual records are
reported as warnings and never stop assembly.

Examples:
  slidedeck assemble --content slides.json --out deck.pptx
  cat slides.json | slidedeck assemble --template corp.potx --out deck.pptx -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		logger := newLogger()

		a, err := loadAssembler(templatePath(h, cfgMgr.Get(), assembleTemplate), logger)
		if err != nil {
			return err
		}
		payload, err := readContent(assembleContent, cmd.InOrStdin())
		if err != nil {
			return err
		}

		res, err := a.AssemblePayload(payload)
		if err != nil {
			return err
		}
		if err := os.WriteFile(assembleOut, res.Document, 0o644); err != nil {
			return fmt.Errorf("failed to write deck: %w", err)
		}

		warnings := res.Warnings
		if warnings == nil {
			warnings = []deck.Warning{}
		}
		return api.Output(AssembleOutput{
			Out:      assembleOut,
			Slides:   len(res.Layouts),
			Layouts:  res.Layouts,
			Strategy: res.Strategy,
			Warnings: warnings,
		})
	},
}

// loadAssembler reads a template and returns an assembler for it.
func loadAssembler(path string, logger *slog.Logger) (*deck.Assembler, error) {
	index, err := layout.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", path, err)
	}
	return deck.New(index, logger), nil
}

// readContent reads a file, or stdin when path is "-".
func readContent(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func init() {
	assembleCmd.Flags().StringVarP(&assembleTemplate, "template", "t", "", "Template .pptx/.potx (default from config)")
	assembleCmd.Flags().StringVarP(&assembleContent, "content", "c", "-", "Content description file (- for stdin)")
	assembleCmd.Flags().StringVar(&assembleOut, "out", "deck.pptx", "Output deck path")

	rootCmd.AddCommand(assembleCmd)
}
