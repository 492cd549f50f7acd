package manual

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/slidedeck/internal/layout"
	"github.com/jackzampolin/slidedeck/internal/testutil"
)

const sample = `{"layout_name": "Title Only", "placeholders": [{"idx": 0, "role": "slide title"}]}

{"layout_name": "Body", "description": "heading plus bullets", "placeholders": [{"idx": 0}, {"idx": 10, "role": "bullets"}]}
not json at all
{"layout_name": "Broken", "placeholders": [{"idx": "ten"}]}
{"description": "no layout name", "placeholders": []}
{"layout_name": "Two Column", "placeholders": [{"idx": 0}, {"idx": 1}, {"idx": 2, "table": true}]}
`

func TestParse_SkipsBadLines(t *testing.T) {
	m, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	names := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		names = append(names, e.LayoutName)
	}
	if diff := cmp.Diff([]string{"Title Only", "Body", "Two Column"}, names); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	lines := make([]int, 0, len(m.Skipped))
	for _, s := range m.Skipped {
		lines = append(lines, s.Line)
	}
	if diff := cmp.Diff([]int{4, 5, 6}, lines); diff != "" {
		t.Errorf("skipped lines mismatch (-want +got):\n%s", diff)
	}

	body, ok := m.Entry("Body")
	if !ok || len(body.Placeholders) != 2 || body.Placeholders[1].Role != "bullets" {
		t.Errorf("Entry(Body) = %+v, %v", body, ok)
	}
}

func TestParse_TextKeepsJSONLines(t *testing.T) {
	m, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	text := m.Text()
	for _, want := range []string{"Title Only", "Body", "Broken", "no layout name", "Two Column"} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "not json at all") {
		t.Errorf("Text() kept a non-JSON line:\n%s", text)
	}
	if got := strings.Count(text, "\n"); got != 5 {
		t.Errorf("Text() has %d lines, want 5", got)
	}
}

func TestFromIndexAndCheck(t *testing.T) {
	path := testutil.WriteTemplate(t, testutil.TemplateOptions{})
	ix, err := layout.Load(path)
	if err != nil {
		t.Fatalf("layout.Load() error = %v", err)
	}

	m := FromIndex(ix)
	if len(m.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(m.Entries))
	}
	if issues := m.Check(ix); len(issues) != 0 {
		t.Errorf("generated manual has issues: %+v", issues)
	}

	// Round trip through disk.
	out := filepath.Join(t.TempDir(), "manual.jsonl")
	if err := m.Save(out); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	back, err := Load(out)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(back.Skipped) != 0 {
		t.Errorf("saved manual has invalid lines: %+v", back.Skipped)
	}
	if diff := cmp.Diff(m.Entries, back.Entries); diff != "" {
		t.Errorf("entries changed on round trip (-want +got):\n%s", diff)
	}
}

func TestCheck_ReportsMismatches(t *testing.T) {
	data := testutil.BuildTemplate(t, testutil.TemplateOptions{})
	ix, err := layout.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("layout.Read() error = %v", err)
	}

	m, err := Parse(strings.NewReader(
		`{"layout_name": "Body", "placeholders": [{"idx": 0}, {"idx": 11}]}` + "\n" +
			`{"layout_name": "Agenda", "placeholders": [{"idx": 0}]}` + "\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	issues := m.Check(ix)
	got := make([]string, 0, len(issues))
	for _, is := range issues {
		got = append(got, is.Layout)
	}
	want := []string{"Body", "Agenda", "Title Only", "Two Column"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("issue layouts mismatch (-want +got):\n%s", diff)
	}
	if issues[0].Idx == nil || *issues[0].Idx != 11 {
		t.Errorf("first issue idx = %v, want 11", issues[0].Idx)
	}
}
