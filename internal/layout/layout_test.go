package layout

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/slidedeck/internal/pptx"
	"github.com/jackzampolin/slidedeck/internal/testutil"
)

func readIndex(t *testing.T, opts testutil.TemplateOptions) *Index {
	t.Helper()
	data := testutil.BuildTemplate(t, opts)
	ix, err := Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return ix
}

func TestIndex_Layouts(t *testing.T) {
	ix := readIndex(t, testutil.TemplateOptions{})

	if diff := cmp.Diff([]string{"Title Only", "Body", "Two Column"}, ix.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if ix.Default().Name != "Body" {
		t.Errorf("Default() = %q, want Body", ix.Default().Name)
	}
	for i, l := range ix.Layouts() {
		if l.Position != i {
			t.Errorf("layout %q position = %d, want %d", l.Name, l.Position, i)
		}
	}

	l, ok := ix.Lookup("Two Column")
	if !ok {
		t.Fatal("Lookup(Two Column) not found")
	}
	if diff := cmp.Diff([]int{0, 1, 2}, l.Idxs()); diff != "" {
		t.Errorf("Idxs() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := ix.Lookup("Nope"); ok {
		t.Error("Lookup(Nope) should fail")
	}

	if at, ok := ix.At(2); !ok || at != l {
		t.Errorf("At(2) = %v, %v", at, ok)
	}
	if _, ok := ix.At(3); ok {
		t.Error("At(3) should fail")
	}
	if _, ok := ix.At(-1); ok {
		t.Error("At(-1) should fail")
	}

	w, h := ix.SlideSize()
	if w != 12192000 || h != 6858000 {
		t.Errorf("SlideSize() = %d x %d", w, h)
	}
}

func TestIndex_SlotFrames(t *testing.T) {
	ix := readIndex(t, testutil.TemplateOptions{})

	body, _ := ix.Lookup("Body")
	if diff := cmp.Diff([]int{0, 10}, body.Idxs()); diff != "" {
		t.Errorf("date placeholder should be skipped, Idxs() mismatch (-want +got):\n%s", diff)
	}

	f := testutil.MasterBodyFrame
	slot, ok := body.Slot(10)
	if !ok {
		t.Fatal("Slot(10) not found")
	}
	want := pptx.Frame{X: f[0], Y: f[1], CX: f[2], CY: f[3]}
	if slot.Frame != want {
		t.Errorf("inherited body frame = %+v, want %+v", slot.Frame, want)
	}

	tf := testutil.MasterTitleFrame
	title, _ := body.Slot(0)
	if title.Frame != (pptx.Frame{X: tf[0], Y: tf[1], CX: tf[2], CY: tf[3]}) {
		t.Errorf("inherited title frame = %+v", title.Frame)
	}

	titleOnly, _ := ix.Lookup("Title Only")
	own, _ := titleOnly.Slot(0)
	if own.Frame != (pptx.Frame{X: 838200, Y: 2000000, CX: 10515600, CY: 1500000}) {
		t.Errorf("own frame = %+v", own.Frame)
	}

	if _, ok := body.Slot(12); ok {
		t.Error("date slot should not be indexed")
	}
}

func TestIndex_DuplicateNamesLastWins(t *testing.T) {
	ix := readIndex(t, testutil.TemplateOptions{Layouts: []testutil.TemplateLayout{
		{Name: "Dup", Placeholders: []testutil.TemplatePlaceholder{{Type: "title"}}},
		{Name: "Other"},
		{Name: "Dup", Placeholders: []testutil.TemplatePlaceholder{{Type: "title"}, {Idx: 5}}},
	}})

	l, ok := ix.Lookup("Dup")
	if !ok || l.Position != 2 {
		t.Fatalf("Lookup(Dup) = %+v, want position 2", l)
	}
	if diff := cmp.Diff([]string{"Dup", "Other"}, ix.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestIndex_DefaultFallsBackToFirst(t *testing.T) {
	ix := readIndex(t, testutil.TemplateOptions{Layouts: []testutil.TemplateLayout{
		{Name: "Only", Placeholders: []testutil.TemplatePlaceholder{{Type: "title"}}},
	}})
	if ix.Default().Name != "Only" {
		t.Errorf("Default() = %q, want Only", ix.Default().Name)
	}
}

func TestIndex_NoLayouts(t *testing.T) {
	data := testutil.BuildTemplate(t, testutil.TemplateOptions{Layouts: []testutil.TemplateLayout{}})
	_, err := Read(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrNoLayouts) {
		t.Errorf("Read() error = %v, want ErrNoLayouts", err)
	}
}

func TestLoad(t *testing.T) {
	path := testutil.WriteTemplate(t, testutil.TemplateOptions{})
	ix, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ix.Layouts()) != 3 {
		t.Errorf("got %d layouts, want 3", len(ix.Layouts()))
	}

	if _, err := Load(path + ".missing"); err == nil {
		t.Error("expected error for missing template")
	}
}

func TestLayout_NewSlide(t *testing.T) {
	ix := readIndex(t, testutil.TemplateOptions{})
	l, _ := ix.Lookup("Two Column")

	s := l.NewSlide()
	if s.LayoutPart != l.PartName {
		t.Errorf("LayoutPart = %q, want %q", s.LayoutPart, l.PartName)
	}
	if len(s.Placeholders()) != 3 {
		t.Fatalf("got %d placeholders, want 3", len(s.Placeholders()))
	}
	if _, ok := s.PlaceholderByIdx(2); !ok {
		t.Error("placeholder 2 missing")
	}
}
