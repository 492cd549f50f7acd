package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/slidedeck/internal/content"
	"github.com/jackzampolin/slidedeck/internal/generate"
	"github.com/jackzampolin/slidedeck/internal/providers"
)

func TestAssembleRequest_Payload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "string", body: `{"content":"[{\"layout\":\"Body\"}]"}`, want: `[{"layout":"Body"}]`},
		{name: "array", body: `{"content":[{"layout":"Body"}]}`, want: `[{"layout":"Body"}]`},
		{name: "prose string", body: `{"content":"Here: []"}`, want: `Here: []`},
		{name: "missing", body: `{}`, wantErr: true},
		{name: "null", body: `{"content":null}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AssembleRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, err := req.payload()
			if (err != nil) != tt.wantErr {
				t.Fatalf("payload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("payload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteDeckError(t *testing.T) {
	_, parseErr := content.Parse("no array here")
	rateLimited := fmt.Errorf("%w: %w", generate.ErrModel, &providers.RateLimitError{
		Message:    "slow down",
		RetryAfter: 1500 * time.Millisecond,
		StatusCode: http.StatusTooManyRequests,
	})

	tests := []struct {
		name       string
		err        error
		status     int
		retryAfter string
	}{
		{name: "parse error", err: fmt.Errorf("detail: %w", parseErr), status: http.StatusUnprocessableEntity},
		{name: "empty input", err: generate.ErrEmptyInput, status: http.StatusBadRequest},
		{name: "rate limited", err: rateLimited, status: http.StatusTooManyRequests, retryAfter: "2"},
		{name: "model error", err: fmt.Errorf("%w: boom", generate.ErrModel), status: http.StatusBadGateway},
		{name: "render error", err: errors.New("failed to render deck"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDeckError(rec, tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("Retry-After"); got != tt.retryAfter {
				t.Errorf("Retry-After = %q, want %q", got, tt.retryAfter)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(resp.Error, tt.err.Error()) {
				t.Errorf("error = %q, want %q", resp.Error, tt.err.Error())
			}
		})
	}
}

func TestDecodeBody_TooLarge(t *testing.T) {
	body := `{"content":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/decks/assemble", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var v AssembleRequest
	if decodeBody(rec, req, &v) {
		t.Fatal("decodeBody() accepted an oversized body")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSetGroups(t *testing.T) {
	set := NewSet()
	grouped := 0
	for _, g := range set.Groups() {
		grouped += len(g.Endpoints)
	}
	if grouped >= len(set.All()) {
		t.Errorf("every endpoint is grouped; health and status should stay top level")
	}

	seen := make(map[string]bool)
	for _, ep := range set.All() {
		method, path, _ := ep.Route()
		key := method + " " + path
		if seen[key] {
			t.Errorf("duplicate route %s", key)
		}
		seen[key] = true
	}
}
