package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/home"
	"github.com/jackzampolin/slidedeck/internal/svcctx"
)

const contentTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// AssembleRequest is the body of POST /api/decks/assemble.
// Content is either a JSON string holding the content description, or the
// record array itself.
type AssembleRequest struct {
	Content json.RawMessage `json:"content"`
}

// payload returns the content description text.
func (r AssembleRequest) payload() (string, error) {
	raw := bytes.TrimSpace(r.Content)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("content is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid content string: %w", err)
		}
		return s, nil
	}
	return string(raw), nil
}

// AssembleEndpoint handles POST /api/decks/assemble.
type AssembleEndpoint struct{}

var _ api.Endpoint = (*AssembleEndpoint)(nil)

func (e *AssembleEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/decks/assemble", e.handler
}

func (e *AssembleEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Assemble a deck
//	@Description	Render a content description against the server's template
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AssembleRequest	true	"Content description"
//	@Success		200		{object}	DeckResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/decks/assemble [post]
func (e *AssembleEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req AssembleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	payload, err := req.payload()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	res, err := svcctx.AssemblerFrom(ctx).AssemblePayload(payload)
	if err != nil {
		writeDeckError(w, err)
		return
	}

	resp, err := saveDeck(svcctx.HomeFrom(ctx), res)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	svcctx.LoggerFrom(ctx).Info("deck saved", "deck_id", resp.DeckID, "slides", resp.Slides)
	writeJSON(w, http.StatusOK, resp)
}

func (e *AssembleEndpoint) Command(getServerURL func() string) *cobra.Command {
	var contentPath, outPath string

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Assemble a deck on the server from a content description",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			payload, err := readInput(contentPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			content, err := json.Marshal(payload)
			if err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var resp DeckResponse
			if err := client.Post(ctx, "/api/decks/assemble", AssembleRequest{Content: content}, &resp); err != nil {
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
	cmd.Flags().StringVarP(&contentPath, "content", "c", "-", "Content description file (- for stdin)")
	cmd.Flags().StringVarP(&outPath, "file", "f", "", "Also download the deck to this path")
	return cmd
}

// GetDeckEndpoint handles GET /api/decks/{deck_id}.
type GetDeckEndpoint struct{}

func (e *GetDeckEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/decks/{deck_id}", e.handler
}

func (e *GetDeckEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Download a deck
//	@Tags			decks
//	@Produce		application/vnd.openxmlformats-officedocument.presentationml.presentation
//	@Param			deck_id	path		string	true	"Deck ID"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/decks/{deck_id} [get]
func (e *GetDeckEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	path, ok := deckPath(w, r)
	if !ok {
		return
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusNotFound, "deck not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypePPTX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(path)))
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}

func (e *GetDeckEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "download <deck_id>",
		Short: "Download an assembled deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return downloadDeck(cmd, api.NewClient(getServerURL()), args[0], outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "file", "f", "", "Output path (default <deck_id>.pptx)")
	return cmd
}

func downloadDeck(cmd *cobra.Command, client *api.Client, deckID, outPath string) error {
	var buf bytes.Buffer
	name, err := client.Download(cmd.Context(), "/api/decks/"+deckID, &buf)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = name
	}
	if outPath == "" {
		outPath = deckID + home.DeckExt
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", outPath, buf.Len())
	return nil
}

// deckPath validates the deck_id path value and returns its file.
func deckPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("deck_id")
	if !home.ValidDeckID(id) {
		writeError(w, http.StatusBadRequest, "invalid deck id")
		return "", false
	}
	dir := svcctx.HomeFrom(r.Context())
	if dir == nil {
		writeError(w, http.StatusServiceUnavailable, "home directory not configured")
		return "", false
	}
	return dir.DeckPath(id), true
}

// DeckInfo describes a saved deck.
type DeckInfo struct {
	DeckID      string    `json:"deck_id" yaml:"deck_id"`
	Size        int64     `json:"size" yaml:"size"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	DownloadURL string    `json:"download_url" yaml:"download_url"`
}

// DecksResponse lists saved decks, newest first.
type DecksResponse struct {
	Decks []DeckInfo `json:"decks" yaml:"decks"`
}

// ListDecksEndpoint handles GET /api/decks.
type ListDecksEndpoint struct{}

func (e *ListDecksEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/decks", e.handler
}

func (e *ListDecksEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		List decks
//	@Tags			decks
//	@Produce		json
//	@Success		200	{object}	DecksResponse
//	@Router			/api/decks [get]
func (e *ListDecksEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := DecksResponse{Decks: []DeckInfo{}}
	dir := svcctx.HomeFrom(r.Context())
	if dir == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	entries, err := os.ReadDir(dir.OutputsDir())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		id := strings.TrimSuffix(name, home.DeckExt)
		if entry.IsDir() || id == name || !home.ValidDeckID(id) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		resp.Decks = append(resp.Decks, DeckInfo{
			DeckID:      id,
			Size:        info.Size(),
			CreatedAt:   info.ModTime(),
			DownloadURL: "/api/decks/" + id,
		})
	}
	sort.Slice(resp.Decks, func(i, j int) bool {
		return resp.Decks[i].CreatedAt.After(resp.Decks[j].CreatedAt)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListDecksEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List assembled decks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DecksResponse
			if err := client.Get(cmd.Context(), "/api/decks", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteDeckEndpoint handles DELETE /api/decks/{deck_id}.
type DeleteDeckEndpoint struct{}

func (e *DeleteDeckEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/decks/{deck_id}", e.handler
}

func (e *DeleteDeckEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Delete a deck
//	@Tags			decks
//	@Param			deck_id	path	string	true	"Deck ID"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/decks/{deck_id} [delete]
func (e *DeleteDeckEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	path, ok := deckPath(w, r)
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "deck not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteDeckEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <deck_id>",
		Short: "Delete an assembled deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/decks/"+args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
