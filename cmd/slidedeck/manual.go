package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/manual"
)

var manualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Create and check the slide manual",
	Long: `The slide manual is a JSONL file with one line per layout describing what
each placeholder is for. It is pasted into the outline and detail prompts so
the model picks layouts and placeholder idx values that exist.

Examples:
  slidedeck manual init --out ~/.slidedeck/masters/slide_manual.jsonl
  slidedeck manual check`,
}

var (
	manualTemplate string
	manualFile     string
	manualOut      string
	manualForce    bool
)

var manualInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Draft a manual from the template's layouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		a, err := loadAssembler(templatePath(h, cfg, manualTemplate), newLogger())
		if err != nil {
			return err
		}
		out := manualPath(h, cfg, manualOut)
		if _, err := os.Stat(out); err == nil && !manualForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", out)
		}

		m := manual.FromIndex(a.Index())
		if err := m.Save(out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d layouts to %s\n", len(m.Entries), out)
		return nil
	},
}

// ManualCheckOutput is the result of manual check.
type ManualCheckOutput struct {
	Manual  string             `json:"manual" yaml:"manual"`
	Entries int                `json:"entries" yaml:"entries"`
	Skipped []manual.LineError `json:"skipped" yaml:"skipped"`
	Issues  []manual.Issue     `json:"issues" yaml:"issues"`
}

var manualCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the manual against the template",
	Long: `Report manual lines that could not be read, layouts the template does not
have, placeholder idx values missing from their layout and layouts the manual
does not document. Exits non-zero when anything is reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		a, err := loadAssembler(templatePath(h, cfg, manualTemplate), newLogger())
		if err != nil {
			return err
		}
		path := manualPath(h, cfg, manualFile)
		m, err := manual.Load(path)
		if err != nil {
			return err
		}

		out := ManualCheckOutput{
			Manual:  path,
			Entries: len(m.Entries),
			Skipped: m.Skipped,
			Issues:  m.Check(a.Index()),
		}
		if out.Skipped == nil {
			out.Skipped = []manual.LineError{}
		}
		if out.Issues == nil {
			out.Issues = []manual.Issue{}
		}
		if err := api.Output(out); err != nil {
			return err
		}
		if n := len(out.Skipped) + len(out.Issues); n > 0 {
			return fmt.Errorf("manual has %d problem(s)", n)
		}
		return nil
	},
}

func init() {
	manualCmd.PersistentFlags().StringVarP(&manualTemplate, "template", "t", "", "Template .pptx/.potx (default from config)")

	manualInitCmd.Flags().StringVar(&manualOut, "out", "", "Manual path to write (default from config)")
	manualInitCmd.Flags().BoolVar(&manualForce, "force", false, "Overwrite an existing manual")
	manualCheckCmd.Flags().StringVar(&manualFile, "manual", "", "Manual to check (default from config)")

	manualCmd.AddCommand(manualInitCmd)
	manualCmd.AddCommand(manualCheckCmd)
	rootCmd.AddCommand(manualCmd)
}
