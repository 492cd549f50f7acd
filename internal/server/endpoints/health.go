package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/svcctx"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server          string   `json:"server" yaml:"server"`
	Template        string   `json:"template" yaml:"template"`
	Layouts         int      `json:"layouts" yaml:"layouts"`
	DefaultLayout   string   `json:"default_layout" yaml:"default_layout"`
	ManualEntries   int      `json:"manual_entries" yaml:"manual_entries"`
	Providers       []string `json:"providers" yaml:"providers"`
	DefaultProvider string   `json:"default_provider" yaml:"default_provider"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Server status
//	@Description	Template, manual and provider status
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Router			/status [get]
func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := StatusResponse{Server: "running", Providers: []string{}}

	if svc := svcctx.ServicesFrom(ctx); svc != nil {
		resp.Template = svc.TemplatePath
	}
	if a := svcctx.AssemblerFrom(ctx); a != nil {
		resp.Layouts = len(a.Index().Layouts())
		resp.DefaultLayout = a.Index().Default().Name
	} else {
		resp.Server = "not_initialized"
	}
	if m := svcctx.ManualFrom(ctx); m != nil {
		resp.ManualEntries = len(m.Entries)
	}
	if reg := svcctx.RegistryFrom(ctx); reg != nil {
		resp.Providers = reg.List()
	}
	resp.DefaultProvider = svcctx.ConfigFrom(ctx).Defaults.LLMProvider

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
