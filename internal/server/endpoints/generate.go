package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/generate"
	"github.com/jackzampolin/slidedeck/internal/svcctx"
)

// newPipeline builds a generation pipeline from the request's services.
func newPipeline(ctx context.Context, provider string) (*generate.Pipeline, error) {
	svc := svcctx.ServicesFrom(ctx)
	if svc == nil || svc.Registry == nil {
		return nil, fmt.Errorf("provider registry not available")
	}
	cfg := svcctx.ConfigFrom(ctx)
	client, err := generate.ClientFor(svc.Registry, cfg, provider)
	if err != nil {
		return nil, err
	}

	gc := generate.Config{
		Client:    client,
		Assembler: svc.Assembler,
		Manual:    svc.Manual,
		Prompts:   svc.Prompts,
		Recorder:  svc.Recorder,
		Logger:    svcctx.LoggerFrom(ctx),
	}
	gc.ApplySettings(cfg.Generate)
	return generate.New(gc)
}

// OutlineRequest is the body of POST /api/decks/outline.
type OutlineRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
}

// OutlineEndpoint handles POST /api/decks/outline.
type OutlineEndpoint struct{}

var _ api.Endpoint = (*OutlineEndpoint)(nil)

func (e *OutlineEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/decks/outline", e.handler
}

func (e *OutlineEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Draft a slide outline
//	@Description	Ask the model for a per-slide plan naming a layout for each slide
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			request	body		OutlineRequest	true	"Source text"
//	@Success		200		{object}	generate.Outline
//	@Failure		400		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/decks/outline [post]
func (e *OutlineEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req OutlineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := newPipeline(r.Context(), req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	outline, err := p.Outline(r.Context(), req.Text)
	if err != nil {
		writeDeckError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outline)
}

func (e *OutlineEndpoint) Command(getServerURL func() string) *cobra.Command {
	var inputPath, provider string
	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Draft a slide outline on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp generate.Outline
			if err := client.Post(cmd.Context(), "/api/decks/outline", OutlineRequest{Text: text, Provider: provider}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Source text file (- for stdin)")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (default from config)")
	return cmd
}

// GenerateRequest is the body of POST /api/decks/generate.
type GenerateRequest struct {
	Text     string `json:"text,omitempty"`
	Plan     string `json:"plan,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// GenerateResponse describes a generated deck.
type GenerateResponse struct {
	DeckResponse   `yaml:",inline"`
	RunID          string `json:"run_id" yaml:"run_id"`
	Plan           string `json:"plan" yaml:"plan"`
	DetailAttempts int    `json:"detail_attempts" yaml:"detail_attempts"`
	DurationMs     int64  `json:"duration_ms" yaml:"duration_ms"`
}

// GenerateEndpoint handles POST /api/decks/generate.
type GenerateEndpoint struct{}

func (e *GenerateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/decks/generate", e.handler
}

func (e *GenerateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Generate a deck
//	@Description	Outline (unless a plan is given), detail and assemble in one call
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GenerateRequest	true	"Source text or approved plan"
//	@Success		200		{object}	GenerateResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/decks/generate [post]
func (e *GenerateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	p, err := newPipeline(ctx, req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	res, err := p.Generate(ctx, generate.Request{Text: req.Text, Plan: req.Plan})
	if err != nil {
		writeDeckError(w, err)
		return
	}
	saved, err := saveDeck(svcctx.HomeFrom(ctx), res.Result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := saveUploads(svcctx.HomeFrom(ctx), res.RunID, req.Text, res.Plan); err != nil {
		svcctx.LoggerFrom(ctx).Warn("failed to keep generation inputs", "run_id", res.RunID, "error", err)
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		DeckResponse:   *saved,
		RunID:          res.RunID,
		Plan:           res.Plan,
		DetailAttempts: res.DetailAttempts,
		DurationMs:     time.Since(start).Milliseconds(),
	})
}

func (e *GenerateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var inputPath, planPath, provider, outPath string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a deck on the server from text or an approved plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req GenerateRequest
			var err error
			if planPath != "" {
				if req.Plan, err = readInput(planPath, cmd.InOrStdin()); err != nil {
					return err
				}
			} else if req.Text, err = readInput(inputPath, cmd.InOrStdin()); err != nil {
				return err
			}
			req.Provider = provider

			client := api.NewClient(getServerURL())
			var resp GenerateResponse
			if err := client.Post(cmd.Context(), "/api/decks/generate", req, &resp); err != nil {
				return err
			}
			if outPath != "" {
				if err := downloadDeck(cmd, client, resp.DeckID, outPath); err != nil {
					return err
				}
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Source text file (- for stdin)")
	cmd.Flags().StringVar(&planPath, "plan", "", "Approved outline file; skips the outline step")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (default from config)")
	cmd.Flags().StringVarP(&outPath, "file", "f", "", "Also download the deck to this path")
	return cmd
}
