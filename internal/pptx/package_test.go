package pptx

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/slidedeck/internal/testutil"
)

func openTemplate(t *testing.T, opts testutil.TemplateOptions) *Package {
	t.Helper()
	data := testutil.BuildTemplate(t, opts)
	pkg, err := Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return pkg
}

func TestRead_NotAPackage(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not a zip")), 9); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open("/nonexistent/template.pptx"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPackage_MainPartAndMasters(t *testing.T) {
	pkg := openTemplate(t, testutil.TemplateOptions{})

	main, err := pkg.MainPart()
	if err != nil {
		t.Fatalf("MainPart() error = %v", err)
	}
	if main != "ppt/presentation.xml" {
		t.Errorf("MainPart() = %q", main)
	}

	masters, err := pkg.Masters()
	if err != nil {
		t.Fatalf("Masters() error = %v", err)
	}
	if len(masters) != 1 {
		t.Fatalf("got %d masters, want 1", len(masters))
	}
	want := []string{
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/slideLayouts/slideLayout2.xml",
		"ppt/slideLayouts/slideLayout3.xml",
	}
	if diff := cmp.Diff(want, masters[0].LayoutParts); diff != "" {
		t.Errorf("layout parts mismatch (-want +got):\n%s", diff)
	}
	if len(masters[0].Placeholders) != 2 {
		t.Errorf("got %d master placeholders, want 2", len(masters[0].Placeholders))
	}

	cx, cy, err := pkg.SlideSize()
	if err != nil {
		t.Fatalf("SlideSize() error = %v", err)
	}
	if cx != 12192000 || cy != 6858000 {
		t.Errorf("SlideSize() = %d x %d", cx, cy)
	}
}

func TestPackage_ReadLayout(t *testing.T) {
	pkg := openTemplate(t, testutil.TemplateOptions{})

	l, err := pkg.ReadLayout("ppt/slideLayouts/slideLayout2.xml")
	if err != nil {
		t.Fatalf("ReadLayout() error = %v", err)
	}
	if l.Name != "Body" {
		t.Errorf("Name = %q, want Body", l.Name)
	}
	if len(l.Placeholders) != 3 {
		t.Fatalf("got %d placeholders, want 3", len(l.Placeholders))
	}
	if l.Placeholders[0].Idx != 0 || l.Placeholders[0].Type != "title" {
		t.Errorf("first placeholder = %+v", l.Placeholders[0])
	}
	if l.Placeholders[1].Idx != 10 || l.Placeholders[1].Frame != nil {
		t.Errorf("body placeholder = %+v, want idx 10 without frame", l.Placeholders[1])
	}

	if _, err := pkg.ReadLayout("ppt/slideLayouts/missing.xml"); !errors.Is(err, ErrPartNotFound) {
		t.Errorf("ReadLayout(missing) error = %v, want ErrPartNotFound", err)
	}
}

func TestRelsPartName(t *testing.T) {
	tests := map[string]string{
		"":                      "_rels/.rels",
		"ppt/presentation.xml":  "ppt/_rels/presentation.xml.rels",
		"ppt/slides/slide3.xml": "ppt/slides/_rels/slide3.xml.rels",
		"docProps/app.xml":      "docProps/_rels/app.xml.rels",
	}
	for in, want := range tests {
		if got := RelsPartName(in); got != want {
			t.Errorf("RelsPartName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveAndRelativeTarget(t *testing.T) {
	tests := []struct {
		source, target, resolved string
	}{
		{"ppt/presentation.xml", "slides/slide1.xml", "ppt/slides/slide1.xml"},
		{"ppt/slides/slide1.xml", "../slideLayouts/slideLayout2.xml", "ppt/slideLayouts/slideLayout2.xml"},
		{"", "ppt/presentation.xml", "ppt/presentation.xml"},
		{"ppt/slides/slide1.xml", "/ppt/media/image1.png", "ppt/media/image1.png"},
	}
	for _, tt := range tests {
		if got := ResolveTarget(tt.source, tt.target); got != tt.resolved {
			t.Errorf("ResolveTarget(%q, %q) = %q, want %q", tt.source, tt.target, got, tt.resolved)
		}
		if strings.HasPrefix(tt.target, "/") {
			continue
		}
		if got := relativeTarget(tt.source, tt.resolved); got != tt.target {
			t.Errorf("relativeTarget(%q, %q) = %q, want %q", tt.source, tt.resolved, got, tt.target)
		}
	}
}

func TestRelationships_Add(t *testing.T) {
	rels := &Relationships{Items: []Relationship{
		{ID: "rId1", Type: RelTypeSlideMaster, Target: "slideMasters/slideMaster1.xml"},
		{ID: "rId7", Type: "x", Target: "y"},
		{ID: "custom", Type: "x", Target: "z"},
	}}
	if id := rels.add(RelTypeSlide, "slides/slide1.xml"); id != "rId8" {
		t.Errorf("add() = %q, want rId8", id)
	}
	data, err := rels.marshal()
	if err != nil {
		t.Fatalf("marshal() error = %v", err)
	}
	back, err := ParseRelationships(data)
	if err != nil {
		t.Fatalf("ParseRelationships() error = %v", err)
	}
	rel, ok := back.ByID("rId8")
	if !ok || rel.Target != "slides/slide1.xml" {
		t.Errorf("ByID(rId8) = %+v, %v", rel, ok)
	}
}

func TestRewriteSlideList(t *testing.T) {
	const ns = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

	t.Run("replaces existing list", func(t *testing.T) {
		in := `<p:presentation ` + ns + `><p:sldMasterIdLst><p:sldMasterId id="1" r:id="rId1"/></p:sldMasterIdLst>` +
			`<p:sldIdLst><p:sldId id="256" r:id="rId9"/></p:sldIdLst><p:sldSz cx="1" cy="1"/></p:presentation>`
		out, err := rewriteSlideList([]byte(in), []string{"rId3", "rId4"})
		if err != nil {
			t.Fatalf("rewriteSlideList() error = %v", err)
		}
		s := string(out)
		if strings.Contains(s, "rId9") {
			t.Errorf("old slide entry kept: %s", s)
		}
		if !strings.Contains(s, `<p:sldIdLst><p:sldId id="256" r:id="rId3"/><p:sldId id="257" r:id="rId4"/></p:sldIdLst><p:sldSz`) {
			t.Errorf("unexpected list: %s", s)
		}
	})

	t.Run("inserts after master list", func(t *testing.T) {
		in := `<p:presentation ` + ns + `><p:sldMasterIdLst><p:sldMasterId id="1" r:id="rId1"/></p:sldMasterIdLst><p:sldSz cx="1" cy="1"/></p:presentation>`
		out, err := rewriteSlideList([]byte(in), []string{"rId2"})
		if err != nil {
			t.Fatalf("rewriteSlideList() error = %v", err)
		}
		if !strings.Contains(string(out), `</p:sldMasterIdLst><p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst>`) {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("removes list when empty", func(t *testing.T) {
		in := `<p:presentation ` + ns + `><p:sldMasterIdLst/><p:sldIdLst><p:sldId id="256" r:id="rId9"/></p:sldIdLst></p:presentation>`
		out, err := rewriteSlideList([]byte(in), nil)
		if err != nil {
			t.Fatalf("rewriteSlideList() error = %v", err)
		}
		if strings.Contains(string(out), "sldIdLst") {
			t.Errorf("list not removed: %s", out)
		}
	})
}

func TestRewriteSlideList_DropsSlideGroups(t *testing.T) {
	const ns = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	in := `<p:presentation ` + ns + `><p:sldMasterIdLst/><p:sldIdLst><p:sldId id="256" r:id="rId9"/></p:sldIdLst><p:sldSz cx="1" cy="1"/>` +
		`<p:custShowLst><p:custShow name="A" id="0"><p:sldLst><p:sld r:id="rId9"/></p:sldLst></p:custShow></p:custShowLst>` +
		`<p:extLst><p:ext uri="{521415D9-36F7-43E2-AB2F-B90AF26B5E84}"><p14:sectionLst xmlns:p14="http://schemas.microsoft.com/office/powerpoint/2010/main">` +
		`<p14:section name="S" id="{1}"><p14:sldIdLst><p14:sldId id="256"/></p14:sldIdLst></p14:section></p14:sectionLst></p:ext>` +
		`<p:ext uri="{other}"><x/></p:ext></p:extLst></p:presentation>`

	out, err := rewriteSlideList([]byte(in), []string{"rId3"})
	if err != nil {
		t.Fatalf("rewriteSlideList() error = %v", err)
	}
	want := `<p:presentation ` + ns + `><p:sldMasterIdLst/><p:sldIdLst><p:sldId id="256" r:id="rId3"/></p:sldIdLst><p:sldSz cx="1" cy="1"/>` +
		`<p:extLst><p:ext uri="{other}"><x/></p:ext></p:extLst></p:presentation>`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("presentation mismatch (-want +got):\n%s", diff)
	}
}
