package deck

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/slidedeck/internal/content"
	"github.com/jackzampolin/slidedeck/internal/layout"
	"github.com/jackzampolin/slidedeck/internal/pptx"
	"github.com/jackzampolin/slidedeck/internal/testutil"
)

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	data := testutil.BuildTemplate(t, testutil.TemplateOptions{})
	ix, err := layout.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("layout.Read() error = %v", err)
	}
	return New(ix, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func assemble(t *testing.T, a *Assembler, payload string) (*Result, []pptx.SlideSummary) {
	t.Helper()
	res, err := a.AssemblePayload(payload)
	if err != nil {
		t.Fatalf("AssemblePayload() error = %v", err)
	}
	pkg, err := pptx.Read(bytes.NewReader(res.Document), int64(len(res.Document)))
	if err != nil {
		t.Fatalf("rendered deck does not open: %v", err)
	}
	slides, err := pkg.Slides()
	if err != nil {
		t.Fatalf("Slides() error = %v", err)
	}
	return res, slides
}

func codes(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Code
	}
	return out
}

func placeholderText(t *testing.T, s pptx.SlideSummary, idx int) string {
	t.Helper()
	for _, ph := range s.Placeholders {
		if ph.Idx == idx {
			return ph.Text
		}
	}
	t.Fatalf("slide %s has no placeholder %d", s.PartName, idx)
	return ""
}

func TestAssemble_EndToEnd(t *testing.T) {
	a := newAssembler(t)
	res, slides := assemble(t, a, `[{"layout":"Body","boxes":{"0":"Hello","10":"World"}}]`)

	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", Messages(res.Warnings))
	}
	if len(slides) != 1 {
		t.Fatalf("got %d slides, want 1", len(slides))
	}
	body, _ := a.Index().Lookup("Body")
	if slides[0].LayoutPart != body.PartName {
		t.Errorf("slide layout = %q, want %q", slides[0].LayoutPart, body.PartName)
	}
	if got := placeholderText(t, slides[0], 0); got != "Hello" {
		t.Errorf("placeholder 0 = %q, want Hello", got)
	}
	if got := placeholderText(t, slides[0], 10); got != "World" {
		t.Errorf("placeholder 10 = %q, want World", got)
	}
	if diff := cmp.Diff([]string{"Body"}, res.Layouts); diff != "" {
		t.Errorf("layouts mismatch (-want +got):\n%s", diff)
	}
	if res.Strategy != content.StrategyWhole {
		t.Errorf("Strategy = %q", res.Strategy)
	}
}

func TestAssemble_RecordCountPreserved(t *testing.T) {
	a := newAssembler(t)
	payload := `[
		{"layout": "Title Only", "boxes": {"0": "one"}},
		{"layout": "Two Column", "boxes": {"0": "two", "1": "left", "2": "right"}},
		"garbage",
		{},
		{"layout": "Body", "boxes": {"0": "five"}}
	]`
	res, slides := assemble(t, a, payload)

	if len(slides) != 5 {
		t.Fatalf("got %d slides, want 5", len(slides))
	}
	want := []string{"Title Only", "Two Column", "Body", "Body", "Body"}
	if diff := cmp.Diff(want, res.Layouts); diff != "" {
		t.Errorf("layouts mismatch (-want +got):\n%s", diff)
	}
	if got := placeholderText(t, slides[0], 0); got != "one" {
		t.Errorf("slide 1 title = %q", got)
	}
	if got := placeholderText(t, slides[4], 0); got != "five" {
		t.Errorf("slide 5 title = %q", got)
	}
	if diff := cmp.Diff([]string{CodeInvalidRecord, CodeUnknownLayout}, codes(res.Warnings)); diff != "" {
		t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
	}
	if res.Warnings[0].Slide != 3 || res.Warnings[1].Slide != 4 {
		t.Errorf("warning slides = %d, %d", res.Warnings[0].Slide, res.Warnings[1].Slide)
	}
}

func TestAssemble_LayoutFallback(t *testing.T) {
	a := newAssembler(t)
	res, slides := assemble(t, a, `[{"layout": "Three Column", "boxes": {"0": "x"}}]`)

	if len(slides) != 1 {
		t.Fatalf("got %d slides, want 1", len(slides))
	}
	if res.Layouts[0] != "Body" {
		t.Errorf("fallback layout = %q, want Body", res.Layouts[0])
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(res.Warnings), Messages(res.Warnings))
	}
	w := res.Warnings[0]
	if w.Code != CodeUnknownLayout {
		t.Errorf("Code = %q", w.Code)
	}
	for _, want := range []string{`"Three Column"`, `"Title Only"`, `"Body"`, `"Two Column"`} {
		if !strings.Contains(w.Message, want) {
			t.Errorf("warning %q does not mention %s", w.Message, want)
		}
	}
	if !strings.HasPrefix(w.String(), "slide 1: ") {
		t.Errorf("String() = %q", w.String())
	}
}

func TestAssemble_IdxIsolation(t *testing.T) {
	a := newAssembler(t)
	// idx 1 exists on "Two Column" but not on "Body".
	res, slides := assemble(t, a, `[{"layout": "Body", "boxes": {"1": "nowhere", "0": "kept"}}]`)

	if diff := cmp.Diff([]string{CodePlaceholderNotFound}, codes(res.Warnings)); diff != "" {
		t.Fatalf("warning codes mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.Warnings[0].Message, "[0, 10]") {
		t.Errorf("warning should list available idx: %q", res.Warnings[0].Message)
	}
	if got := placeholderText(t, slides[0], 0); got != "kept" {
		t.Errorf("placeholder 0 = %q", got)
	}
	for _, ph := range slides[0].Placeholders {
		if ph.Text == "nowhere" {
			t.Errorf("text leaked into placeholder %d", ph.Idx)
		}
	}
}

func TestAssemble_TextReplace(t *testing.T) {
	a := newAssembler(t)
	res, slides := assemble(t, a, `[{"layout": "Body", "boxes": {"0": "first", "0": "second", "10": 3.50}}]`)

	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", Messages(res.Warnings))
	}
	if got := placeholderText(t, slides[0], 0); got != "second" {
		t.Errorf("placeholder 0 = %q, want second", got)
	}
	if got := placeholderText(t, slides[0], 10); got != "3.50" {
		t.Errorf("placeholder 10 = %q, want 3.50", got)
	}
}

func TestAssemble_BoxKeyNotNumeric(t *testing.T) {
	a := newAssembler(t)
	res, slides := assemble(t, a, `[{"layout": "Body", "boxes": {"BODY-10": "x", "10": "y"}}]`)

	if diff := cmp.Diff([]string{CodeBoxKeyNotNumeric}, codes(res.Warnings)); diff != "" {
		t.Fatalf("warning codes mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.Warnings[0].Message, "key must be a numeric idx") {
		t.Errorf("message = %q", res.Warnings[0].Message)
	}
	if got := placeholderText(t, slides[0], 10); got != "y" {
		t.Errorf("placeholder 10 = %q", got)
	}
}

func TestAssemble_TableGeometry(t *testing.T) {
	a := newAssembler(t)
	payload := `[{"layout": "Two Column", "boxes": {"0": "Compare", "1": "notes"},
		"tables": [{"idx": "2", "data": [["h1", "h2", "h3"], [1, 2.5, true], ["x", null, {"k": "v"}]]}]}]`
	res, slides := assemble(t, a, payload)

	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", Messages(res.Warnings))
	}
	s := slides[0]
	if len(s.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(s.Tables))
	}
	tbl := s.Tables[0]
	if tbl.Rows != 3 || tbl.Cols != 3 {
		t.Errorf("table is %dx%d, want 3x3", tbl.Rows, tbl.Cols)
	}

	l, _ := a.Index().Lookup("Two Column")
	slot, _ := l.Slot(2)
	if tbl.Frame != slot.Frame {
		t.Errorf("table frame = %+v, want %+v", tbl.Frame, slot.Frame)
	}

	want := [][]string{{"h1", "h2", "h3"}, {"1", "2.5", "true"}, {"x", "", `{"k":"v"}`}}
	if diff := cmp.Diff(want, tbl.Cells); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
	// The placeholder under the table is still on the slide.
	if len(s.Placeholders) != 3 {
		t.Errorf("got %d placeholders, want 3", len(s.Placeholders))
	}
	if got := placeholderText(t, s, 1); got != "notes" {
		t.Errorf("placeholder 1 = %q", got)
	}
}

func TestAssemble_ZeroRowTable(t *testing.T) {
	a := newAssembler(t)
	res, slides := assemble(t, a, `[{"layout": "Body", "tables": [{"idx": 10, "data": []}]}]`)

	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", Messages(res.Warnings))
	}
	if len(slides[0].Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(slides[0].Tables))
	}
	if tbl := slides[0].Tables[0]; tbl.Rows != 0 || tbl.Cols != 0 {
		t.Errorf("table is %dx%d, want 0x0", tbl.Rows, tbl.Cols)
	}
}

func TestAssemble_TableWarnings(t *testing.T) {
	tests := []struct {
		name   string
		tables string
		codes  []string
		count  int
	}{
		{"missing idx", `[{"data": [["a"]]}]`, []string{CodeTableMissingField}, 0},
		{"missing data", `[{"idx": 10}]`, []string{CodeTableMissingField}, 0},
		{"null data", `[{"idx": 10, "data": null}]`, []string{CodeTableMissingField}, 0},
		{"not an object", `[5]`, []string{CodeTableMissingField}, 0},
		{"idx not numeric", `[{"idx": "TABLE", "data": [["a"]]}]`, []string{CodeTableIdxNotNumeric}, 0},
		{"placeholder missing", `[{"idx": 99, "data": [["a"]]}]`, []string{CodeTablePlaceholderMissing}, 0},
		{"data not array", `[{"idx": 10, "data": "a,b"}]`, []string{CodeTableDataInvalid}, 0},
		{"ragged rows", `[{"idx": 10, "data": [["a", "b"], ["c"], ["d", "e", "f"]]}]`, []string{CodeTableRowRagged, CodeTableRowRagged}, 1},
		{"scalar row", `[{"idx": 10, "data": [["a"], "b"]}]`, []string{CodeTableDataInvalid}, 1},
		{"tables not array", `{"idx": 10}`, []string{CodeInvalidTables}, 0},
		{"two tables", `[{"idx": 0, "data": [["a"]]}, {"idx": 10, "data": [["b"]]}]`, []string{}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAssembler(t)
			res, slides := assemble(t, a, `[{"layout": "Body", "tables": `+tt.tables+`}]`)
			if diff := cmp.Diff(tt.codes, codes(res.Warnings)); diff != "" {
				t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
			}
			if len(slides) != 1 {
				t.Fatalf("got %d slides, want 1", len(slides))
			}
			if len(slides[0].Tables) != tt.count {
				t.Errorf("got %d tables, want %d", len(slides[0].Tables), tt.count)
			}
		})
	}
}

func TestAssemble_RaggedRowsNormalized(t *testing.T) {
	a := newAssembler(t)
	_, slides := assemble(t, a, `[{"layout": "Body", "tables": [{"idx": 10, "data": [["a", "b"], ["c"], ["d", "e", "f"]]}]}]`)

	want := [][]string{{"a", "b"}, {"c", ""}, {"d", "e"}}
	if diff := cmp.Diff(want, slides[0].Tables[0].Cells); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_PlaceholderOverlap(t *testing.T) {
	a := newAssembler(t)
	res, slides := assemble(t, a, `[{"layout": "Body", "boxes": {"10": "under"}, "tables": [{"idx": 10, "data": [["over"]]}]}]`)

	if diff := cmp.Diff([]string{CodePlaceholderOverlap}, codes(res.Warnings)); diff != "" {
		t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
	}
	if got := placeholderText(t, slides[0], 10); got != "under" {
		t.Errorf("placeholder 10 = %q", got)
	}
	if len(slides[0].Tables) != 1 {
		t.Errorf("got %d tables, want 1", len(slides[0].Tables))
	}
}

func TestAssemble_InvalidBoxes(t *testing.T) {
	a := newAssembler(t)
	res, slides := assemble(t, a, `[{"layout": "Body", "boxes": ["Hello"]}]`)

	if diff := cmp.Diff([]string{CodeInvalidBoxes}, codes(res.Warnings)); diff != "" {
		t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
	}
	if len(slides) != 1 {
		t.Errorf("got %d slides, want 1", len(slides))
	}
}

func TestAssemble_ParserFallback(t *testing.T) {
	a := newAssembler(t)
	records := `[{"layout": "Body", "boxes": {"0": "A"}}, {"layout": "Title Only", "boxes": {"0": "B"}}]`

	direct, directSlides := assemble(t, a, records)
	wrapped, wrappedSlides := assemble(t, a, "Here is the JSON:\n"+records+"\nThanks")

	if wrapped.Strategy != content.StrategyBracketSlice {
		t.Errorf("Strategy = %q", wrapped.Strategy)
	}
	if diff := cmp.Diff(direct.Layouts, wrapped.Layouts); diff != "" {
		t.Errorf("layouts differ (-direct +wrapped):\n%s", diff)
	}
	if diff := cmp.Diff(directSlides, wrappedSlides); diff != "" {
		t.Errorf("slides differ (-direct +wrapped):\n%s", diff)
	}
}

func TestAssemble_FatalPayload(t *testing.T) {
	a := newAssembler(t)
	res, err := a.AssemblePayload("Sorry, I cannot help with that.")
	if res != nil {
		t.Error("expected no document on fatal error")
	}
	var perr *content.ContentParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *content.ContentParseError", err)
	}
}

func TestAssemble_EmptyDeck(t *testing.T) {
	a := newAssembler(t)
	res, slides := assemble(t, a, `[]`)
	if len(slides) != 0 || len(res.Warnings) != 0 {
		t.Errorf("got %d slides and %d warnings, want none", len(slides), len(res.Warnings))
	}
}

func TestAssembler_Reusable(t *testing.T) {
	a := newAssembler(t)
	first, _ := assemble(t, a, `[{"layout": "Body", "boxes": {"0": "one"}}]`)
	_, slides := assemble(t, a, `[{"layout": "Body"}, {"layout": "Body"}]`)
	if len(slides) != 2 {
		t.Errorf("second deck has %d slides, want 2", len(slides))
	}
	if len(first.Document) == 0 {
		t.Error("first document is empty")
	}
}
