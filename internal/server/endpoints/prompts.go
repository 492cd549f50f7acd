package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/svcctx"
)

// PromptResponse represents a resolved prompt.
type PromptResponse struct {
	Key         string   `json:"key" yaml:"key"`
	Text        string   `json:"text" yaml:"text"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Variables   []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Hash        string   `json:"hash" yaml:"hash"`
	IsOverride  bool     `json:"is_override" yaml:"is_override"`
	Source      string   `json:"source" yaml:"source"`
}

// PromptsListResponse contains all prompts.
type PromptsListResponse struct {
	Prompts []PromptResponse `json:"prompts" yaml:"prompts"`
}

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		List all prompts
//	@Description	Registered prompts as they resolve now, overrides included
//	@Tags			prompts
//	@Produce		json
//	@Success		200	{object}	PromptsListResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver := svcctx.PromptsFrom(r.Context())
	if resolver == nil {
		writeError(w, http.StatusInternalServerError, "prompt resolver not available")
		return
	}

	resp := PromptsListResponse{Prompts: []PromptResponse{}}
	for _, p := range resolver.AllEmbedded() {
		resolved, err := resolver.Resolve(p.Key)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Prompts = append(resp.Prompts, PromptResponse{
			Key:         p.Key,
			Text:        resolved.Text,
			Description: p.Description,
			Variables:   resolved.Variables,
			Hash:        resolved.Hash,
			IsOverride:  resolved.IsOverride,
			Source:      resolved.Source,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var keysOnly bool
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List prompts the server renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptsListResponse
			if err := client.Get(cmd.Context(), "/api/prompts", &resp); err != nil {
				return err
			}
			if keysOnly {
				for i := range resp.Prompts {
					resp.Prompts[i].Text = ""
				}
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&keysOnly, "keys", false, "Omit prompt text")
	return cmd
}
