package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/jackzampolin/slidedeck/internal/content"
	"github.com/jackzampolin/slidedeck/internal/deck"
	"github.com/jackzampolin/slidedeck/internal/generate"
	"github.com/jackzampolin/slidedeck/internal/home"
	"github.com/jackzampolin/slidedeck/internal/providers"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 16 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	// Attempts lists why each parse strategy failed, for 422 responses.
	Attempts []string `json:"attempts,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeBody decodes a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "request body is empty")
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// writeDeckError maps assembly and generation errors to HTTP statuses:
// uninterpretable content is 422, model failures are 502 (429 when rate
// limited) and anything else, including template rendering, is 500.
func writeDeckError(w http.ResponseWriter, err error) {
	var pe *content.ContentParseError
	rle, rateLimited := providers.IsRateLimitError(err)
	switch {
	case errors.As(err, &pe):
		resp := ErrorResponse{Error: err.Error()}
		for _, a := range pe.Attempts {
			resp.Attempts = append(resp.Attempts, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, generate.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case rateLimited:
		if rle.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rle.RetryAfter.Seconds()))))
		}
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, generate.ErrModel):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// DeckResponse describes an assembled deck.
type DeckResponse struct {
	DeckID      string         `json:"deck_id" yaml:"deck_id"`
	DownloadURL string         `json:"download_url" yaml:"download_url"`
	Slides      int            `json:"slides" yaml:"slides"`
	Layouts     []string       `json:"layouts" yaml:"layouts"`
	Strategy    string         `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Warnings    []deck.Warning `json:"warnings" yaml:"warnings"`
}

// saveDeck writes an assembled deck under outputs/ and describes it.
func saveDeck(dir *home.Dir, res *deck.Result) (*DeckResponse, error) {
	if dir == nil {
		return nil, fmt.Errorf("home directory not configured")
	}
	id := uuid.New().String()
	if err := os.MkdirAll(dir.OutputsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create outputs directory: %w", err)
	}
	if err := os.WriteFile(dir.DeckPath(id), res.Document, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save deck: %w", err)
	}
	warnings := res.Warnings
	if warnings == nil {
		warnings = []deck.Warning{}
	}
	return &DeckResponse{
		DeckID:      id,
		DownloadURL: "/api/decks/" + id,
		Slides:      len(res.Layouts),
		Layouts:     res.Layouts,
		Strategy:    res.Strategy,
		Warnings:    warnings,
	}, nil
}

// saveUploads keeps the source text and plan a run was generated from,
// named by run ID.
func saveUploads(dir *home.Dir, runID, text, plan string) error {
	if dir == nil {
		return fmt.Errorf("home directory not configured")
	}
	if err := os.MkdirAll(dir.UploadsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %w", err)
	}
	files := map[string]string{runID + ".txt": text, runID + ".plan.txt": plan}
	for name, body := range files {
		if body == "" {
			continue
		}
		if err := os.WriteFile(dir.UploadPath(name), []byte(body), 0o644); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
	}
	return nil
}

// readInput reads a CLI input argument: a file path, or "-" for stdin.
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" {
		return "", nil
	}
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
