package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirName is the default name for the slidedeck home directory.
	DefaultDirName = ".slidedeck"

	// MastersDirName holds templates and slide manuals.
	MastersDirName = "masters"

	// OutputsDirName holds assembled decks.
	OutputsDirName = "outputs"

	// UploadsDirName holds source texts and plans received by the server.
	UploadsDirName = "uploads"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// DeckExt is the extension of assembled decks.
	DeckExt = ".pptx"

	// CallLogName is the JSONL file LLM calls are recorded to.
	CallLogName = "llm_calls.jsonl"

	// PromptsDirName holds prompt overrides.
	PromptsDirName = "prompts"
)

// Dir represents the slidedeck home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.slidedeck).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// MastersDir returns the directory holding templates and manuals.
func (d *Dir) MastersDir() string {
	return filepath.Join(d.path, MastersDirName)
}

// OutputsDir returns the directory holding assembled decks.
func (d *Dir) OutputsDir() string {
	return filepath.Join(d.path, OutputsDirName)
}

// UploadsDir returns the directory holding uploaded inputs.
func (d *Dir) UploadsDir() string {
	return filepath.Join(d.path, UploadsDirName)
}

// CallLogPath returns the LLM call log.
func (d *Dir) CallLogPath() string {
	return filepath.Join(d.path, CallLogName)
}

// PromptsDir returns the prompt override directory.
func (d *Dir) PromptsDir() string {
	return filepath.Join(d.path, PromptsDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.MastersDir(), d.OutputsDir(), d.UploadsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// MasterPath resolves a template or manual reference. Bare file names are
// looked up under masters/; anything with a directory component is used as is.
func (d *Dir) MasterPath(name string) string {
	if name == "" || filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) || strings.Contains(name, "/") {
		return name
	}
	return filepath.Join(d.MastersDir(), name)
}

// DeckPath returns the output path for a deck id.
func (d *Dir) DeckPath(deckID string) string {
	return filepath.Join(d.OutputsDir(), deckID+DeckExt)
}

// UploadPath returns the path for an uploaded file.
func (d *Dir) UploadPath(name string) string {
	return filepath.Join(d.UploadsDir(), filepath.Base(name))
}

// ValidDeckID reports whether id is safe to use as an output file name.
func ValidDeckID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
