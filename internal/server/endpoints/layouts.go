package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/layout"
	"github.com/jackzampolin/slidedeck/internal/svcctx"
)

// LayoutsResponse lists the layouts of the server's template.
type LayoutsResponse struct {
	Template string           `json:"template" yaml:"template"`
	Default  string           `json:"default" yaml:"default"`
	Layouts  []*layout.Layout `json:"layouts" yaml:"layouts"`
}

// ListLayoutsEndpoint handles GET /api/layouts.
type ListLayoutsEndpoint struct{}

var _ api.Endpoint = (*ListLayoutsEndpoint)(nil)

func (e *ListLayoutsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/layouts", e.handler
}

func (e *ListLayoutsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List layouts
//	@Description	Layouts of the loaded template in template order, with placeholder slots
//	@Tags			layouts
//	@Produce		json
//	@Success		200	{object}	LayoutsResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/layouts [get]
func (e *ListLayoutsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ix := svcctx.AssemblerFrom(ctx).Index()

	resp := LayoutsResponse{
		Default: ix.Default().Name,
		Layouts: ix.Layouts(),
	}
	if svc := svcctx.ServicesFrom(ctx); svc != nil {
		resp.Template = svc.TemplatePath
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListLayoutsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List the server template's layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp LayoutsResponse
			if err := client.Get(cmd.Context(), "/api/layouts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
