package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/llmcall"
	"github.com/jackzampolin/slidedeck/internal/svcctx"
)

// LLMCallsResponse contains a list of LLM calls.
type LLMCallsResponse struct {
	Calls []llmcall.Call `json:"calls" yaml:"calls"`
	Total int            `json:"total" yaml:"total"`
	Stats llmcall.Stats  `json:"stats" yaml:"stats"`
}

// ListLLMCallsEndpoint handles GET /api/llmcalls.
type ListLLMCallsEndpoint struct{}

func (e *ListLLMCallsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls", e.handler
}

func (e *ListLLMCallsEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		List LLM calls
//	@Description	Get LLM call history with optional filters
//	@Tags			llmcalls
//	@Produce		json
//	@Param			run_id		query		string	false	"Filter by generation run"
//	@Param			prompt_key	query		string	false	"Filter by prompt key"
//	@Param			success		query		bool	false	"Filter by success status (true or false)"
//	@Param			since		query		string	false	"Only calls at or after this RFC3339 timestamp"
//	@Param			limit		query		int		false	"Max results (default 100)"
//	@Success		200			{object}	LLMCallsResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/llmcalls [get]
func (e *ListLLMCallsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := llmcall.ListOptions{
		RunID:     q.Get("run_id"),
		PromptKey: q.Get("prompt_key"),
		Limit:     100,
	}

	if v := q.Get("success"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid success filter: %q must be true or false", v))
			return
		}
		opts.Success = &b
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %q must be an integer", v))
			return
		}
		if limit > 0 {
			opts.Limit = limit
		}
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid since time: %q must be RFC3339 format (e.g., 2024-01-15T00:00:00Z)", v))
			return
		}
		opts.Since = t
	}

	calls, err := llmcall.List(svcctx.RecorderFrom(r.Context()).Path(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if calls == nil {
		calls = []llmcall.Call{}
	}

	writeJSON(w, http.StatusOK, LLMCallsResponse{
		Calls: calls,
		Total: len(calls),
		Stats: llmcall.Summarize(calls),
	})
}

func (e *ListLLMCallsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var runID, promptKey string
	var limit int
	var successOnly, failedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List LLM calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if runID != "" {
				params.Set("run_id", runID)
			}
			if promptKey != "" {
				params.Set("prompt_key", promptKey)
			}
			if limit > 0 {
				params.Set("limit", strconv.Itoa(limit))
			}
			switch {
			case successOnly && failedOnly:
				return fmt.Errorf("--success and --failed are mutually exclusive")
			case successOnly:
				params.Set("success", "true")
			case failedOnly:
				params.Set("success", "false")
			}

			path := "/api/llmcalls"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}
			client := api.NewClient(getServerURL())
			var resp LLMCallsResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "Filter by generation run ID")
	cmd.Flags().StringVar(&promptKey, "prompt", "", "Filter by prompt key")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	cmd.Flags().BoolVar(&successOnly, "success", false, "Only successful calls")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only failed calls")
	return cmd
}
