package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/pptx"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <deck.pptx>",
	Short: "Print the slides of a deck with their placeholder text and tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg, err := pptx.Open(args[0])
		if err != nil {
			return err
		}
		slides, err := pkg.Slides()
		if err != nil {
			return err
		}
		if slides == nil {
			slides = []pptx.SlideSummary{}
		}
		return api.Output(slides)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
