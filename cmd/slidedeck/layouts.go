package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/server/endpoints"
)

var (
	layoutsTemplate string
	layoutsNames    bool
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the layouts of a template and their placeholders",
	Long: `List every layout of a template with the placeholder idx values that
content can fill. Date, footer and slide number placeholders are omitted.

Examples:
  slidedeck layouts
  slidedeck layouts --template corp.potx --names`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		path := templatePath(h, cfgMgr.Get(), layoutsTemplate)
		a, err := loadAssembler(path, newLogger())
		if err != nil {
			return err
		}

		index := a.Index()
		if layoutsNames {
			return api.Output(index.Names())
		}
		return api.Output(endpoints.LayoutsResponse{
			Template: path,
			Default:  index.Default().Name,
			Layouts:  index.Layouts(),
		})
	},
}

func init() {
	layoutsCmd.Flags().StringVarP(&layoutsTemplate, "template", "t", "", "Template .pptx/.potx (default from config)")
	layoutsCmd.Flags().BoolVar(&layoutsNames, "names", false, "Only print layout names")

	rootCmd.AddCommand(layoutsCmd)
}
