// Package manual reads and writes the slide manual, a JSONL file describing
// each template layout and what its placeholders are for. The manual is fed
// to the model verbatim so it can choose layouts and fill placeholders by idx.
package manual

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed entry.schema.json
var entrySchemaJSON []byte

var (
	entrySchemaOnce sync.Once
	entrySchema     *jsonschema.Schema
	entrySchemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	entrySchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("entry.schema.json", bytes.NewReader(entrySchemaJSON)); err != nil {
			entrySchemaErr = fmt.Errorf("failed to load manual schema: %w", err)
			return
		}
		entrySchema, entrySchemaErr = compiler.Compile("entry.schema.json")
		if entrySchemaErr != nil {
			entrySchemaErr = fmt.Errorf("failed to compile manual schema: %w", entrySchemaErr)
		}
	})
	return entrySchema, entrySchemaErr
}

// Entry documents one layout.
type Entry struct {
	LayoutName   string        `json:"layout_name" yaml:"layout_name"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholders []Placeholder `json:"placeholders" yaml:"placeholders"`
}

// Placeholder documents one placeholder of a layout.
type Placeholder struct {
	Idx      int    `json:"idx" yaml:"idx"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
	MaxChars int    `json:"max_chars,omitempty" yaml:"max_chars,omitempty"`
	Table    bool   `json:"table,omitempty" yaml:"table,omitempty"`
}

// LineError describes a manual line that was skipped.
type LineError struct {
	Line int    `json:"line" yaml:"line"`
	Err  string `json:"error" yaml:"error"`
}

// Manual is a parsed slide manual.
type Manual struct {
	Entries []Entry
	// Skipped lists lines that were not valid entries.
	Skipped []LineError
	raw     string
}

// Load reads a manual file.
func Load(path string) (*Manual, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manual: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads manual lines from r. Blank lines are ignored and lines that
// are not valid entries are recorded in Skipped rather than failing. Skipped
// lines that are still JSON objects stay in Text.
func Parse(r io.Reader) (*Manual, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	m := &Manual{}
	var raw strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var doc any
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			m.Skipped = append(m.Skipped, LineError{Line: lineNo, Err: err.Error()})
			continue
		}
		if _, ok := doc.(map[string]any); ok {
			raw.WriteString(line)
			raw.WriteByte('\n')
		}
		if err := schema.Validate(doc); err != nil {
			m.Skipped = append(m.Skipped, LineError{Line: lineNo, Err: err.Error()})
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			m.Skipped = append(m.Skipped, LineError{Line: lineNo, Err: err.Error()})
			continue
		}
		m.Entries = append(m.Entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manual: %w", err)
	}
	m.raw = raw.String()
	return m, nil
}

// Text returns the manual's JSON object lines as JSONL, ready to paste into
// a prompt.
func (m *Manual) Text() string {
	if m.raw != "" || len(m.Entries) == 0 {
		return m.raw
	}
	var buf bytes.Buffer
	_ = m.Write(&buf)
	return buf.String()
}

// Entry returns the entry for a layout name.
func (m *Manual) Entry(name string) (Entry, bool) {
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].LayoutName == name {
			return m.Entries[i], true
		}
	}
	return Entry{}, false
}

// Write encodes the manual as JSONL.
func (m *Manual) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, e := range m.Entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to write manual entry %q: %w", e.LayoutName, err)
		}
	}
	return nil
}

// Save writes the manual to path.
func (m *Manual) Save(path string) error {
	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write manual: %w", err)
	}
	return nil
}
