package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TemplateLayout describes one layout of a generated test template.
type TemplateLayout struct {
	Name         string
	Placeholders []TemplatePlaceholder
}

// TemplatePlaceholder describes a layout placeholder. A nil frame makes the
// placeholder inherit its position from the master.
type TemplatePlaceholder struct {
	Type  string
	Idx   int
	Frame *[4]int64 // x, y, cx, cy
}

// TemplateOptions controls BuildTemplate.
type TemplateOptions struct {
	Layouts []TemplateLayout
	// ExistingSlides adds that many slides (using the first layout) to the template.
	ExistingSlides int
	// AsPotx marks the main part with the template content type.
	AsPotx bool
	// GroupSlides puts the existing slides in a custom show and a section,
	// with a presProps part that plays the custom show.
	GroupSlides bool
}

// Master placeholder frames inherited by layouts without their own xfrm.
var (
	MasterTitleFrame = [4]int64{838200, 365125, 10515600, 1325563}
	MasterBodyFrame  = [4]int64{838200, 1825625, 10515600, 4351338}
)

// DefaultLayouts returns the layouts used by most tests:
// "Title Only" (0), "Body" (0, 10 and an excluded date slot), "Two Column" (0, 1, 2).
func DefaultLayouts() []TemplateLayout {
	return []TemplateLayout{
		{
			Name: "Title Only",
			Placeholders: []TemplatePlaceholder{
				{Type: "title", Idx: 0, Frame: &[4]int64{838200, 2000000, 10515600, 1500000}},
			},
		},
		{
			Name: "Body",
			Placeholders: []TemplatePlaceholder{
				{Type: "title", Idx: 0},
				{Type: "body", Idx: 10},
				{Type: "dt", Idx: 12, Frame: &[4]int64{838200, 6356350, 2743200, 365125}},
			},
		},
		{
			Name: "Two Column",
			Placeholders: []TemplatePlaceholder{
				{Type: "title", Idx: 0},
				{Type: "", Idx: 1, Frame: &[4]int64{838200, 1825625, 5181600, 4351338}},
				{Type: "", Idx: 2, Frame: &[4]int64{6172200, 1825625, 5181600, 4351338}},
			},
		},
	}
}

// BuildTemplate returns the bytes of a minimal but well-formed PPTX template.
func BuildTemplate(t testing.TB, opts TemplateOptions) []byte {
	t.Helper()

	layouts := opts.Layouts
	if layouts == nil {
		layouts = DefaultLayouts()
	}

	parts := []struct{ name, data string }{}
	add := func(name, data string) { parts = append(parts, struct{ name, data string }{name, data}) }

	mainType := "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	if opts.AsPotx {
		mainType = "application/vnd.openxmlformats-officedocument.presentationml.template.main+xml"
	}

	var ct strings.Builder
	ct.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	ct.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	ct.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	ct.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	fmt.Fprintf(&ct, `<Override PartName="/ppt/presentation.xml" ContentType="%s"/>`, mainType)
	ct.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	ct.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := range layouts {
		fmt.Fprintf(&ct, `<Override PartName="/ppt/slideLayouts/slideLayout%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`, i+1)
	}
	for i := 0; i < opts.ExistingSlides; i++ {
		fmt.Fprintf(&ct, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	if opts.GroupSlides {
		ct.WriteString(`<Override PartName="/ppt/presProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"/>`)
	}
	ct.WriteString(`</Types>`)
	add("[Content_Types].xml", ct.String())

	add("_rels/.rels", rels(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>`))

	var pres strings.Builder
	pres.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	pres.WriteString(`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	pres.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	if opts.ExistingSlides > 0 {
		pres.WriteString(`<p:sldIdLst>`)
		for i := 0; i < opts.ExistingSlides; i++ {
			fmt.Fprintf(&pres, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 10+i)
		}
		pres.WriteString(`</p:sldIdLst>`)
	}
	pres.WriteString(`<p:sldSz cx="12192000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/>`)
	if opts.GroupSlides {
		pres.WriteString(`<p:custShowLst><p:custShow name="Highlights" id="0"><p:sldLst>`)
		for i := 0; i < opts.ExistingSlides; i++ {
			fmt.Fprintf(&pres, `<p:sld r:id="rId%d"/>`, 10+i)
		}
		pres.WriteString(`</p:sldLst></p:custShow></p:custShowLst>`)
		pres.WriteString(`<p:extLst><p:ext uri="{521415D9-36F7-43E2-AB2F-B90AF26B5E84}">`)
		pres.WriteString(`<p14:sectionLst xmlns:p14="http://schemas.microsoft.com/office/powerpoint/2010/main"><p14:section name="Samples" id="{8C1A5A8E-0D8B-4B8F-9F59-3A4E0B6A1C01}"><p14:sldIdLst>`)
		for i := 0; i < opts.ExistingSlides; i++ {
			fmt.Fprintf(&pres, `<p14:sldId id="%d"/>`, 256+i)
		}
		pres.WriteString(`</p14:sldIdLst></p14:section></p14:sectionLst></p:ext></p:extLst>`)
	}
	pres.WriteString(`</p:presentation>`)
	add("ppt/presentation.xml", pres.String())

	var presRels strings.Builder
	presRels.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	presRels.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="theme/theme1.xml"/>`)
	for i := 0; i < opts.ExistingSlides; i++ {
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, 10+i, i+1)
	}
	if opts.GroupSlides {
		presRels.WriteString(`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps" Target="presProps.xml"/>`)
		add("ppt/presProps.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<p:presentationPr xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`+
			`<p:showPr showNarration="1"><p:custShow id="0"/></p:showPr></p:presentationPr>`)
	}
	add("ppt/_rels/presentation.xml.rels", rels(presRels.String()))

	var master strings.Builder
	master.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	master.WriteString(`<p:sldMaster xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	master.WriteString(`<p:cSld><p:spTree>` + groupHeader)
	master.WriteString(placeholderXML(2, "Title Placeholder 1", TemplatePlaceholder{Type: "title", Frame: &MasterTitleFrame}))
	master.WriteString(placeholderXML(3, "Text Placeholder 2", TemplatePlaceholder{Type: "body", Idx: 1, Frame: &MasterBodyFrame}))
	master.WriteString(`</p:spTree></p:cSld>`)
	master.WriteString(`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`)
	master.WriteString(`<p:sldLayoutIdLst>`)
	for i := range layouts {
		fmt.Fprintf(&master, `<p:sldLayoutId id="%d" r:id="rId%d"/>`, 2147483649+i, i+1)
	}
	master.WriteString(`</p:sldLayoutIdLst></p:sldMaster>`)
	add("ppt/slideMasters/slideMaster1.xml", master.String())

	var masterRels strings.Builder
	for i := range layouts {
		fmt.Fprintf(&masterRels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout%d.xml"/>`, i+1, i+1)
	}
	fmt.Fprintf(&masterRels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>`, len(layouts)+1)
	add("ppt/slideMasters/_rels/slideMaster1.xml.rels", rels(masterRels.String()))

	for i, l := range layouts {
		var lx strings.Builder
		lx.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
		lx.WriteString(`<p:sldLayout xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" preserve="1">`)
		fmt.Fprintf(&lx, `<p:cSld name="%s"><p:spTree>%s`, l.Name, groupHeader)
		for j, ph := range l.Placeholders {
			lx.WriteString(placeholderXML(j+2, fmt.Sprintf("Placeholder %d", j+1), ph))
		}
		lx.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`)
		add(fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1), lx.String())
		add(fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i+1),
			rels(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>`))
	}

	for i := 0; i < opts.ExistingSlides; i++ {
		add(fmt.Sprintf("ppt/slides/slide%d.xml", i+1),
			`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
				`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`+
				`<p:cSld><p:spTree>`+groupHeader+`</p:spTree></p:cSld></p:sld>`)
		add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1),
			rels(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`))
	}

	add("ppt/theme/theme1.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Test Theme"><a:themeElements/></a:theme>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", p.name, err)
		}
		if _, err := w.Write([]byte(p.data)); err != nil {
			t.Fatalf("failed to write %s: %v", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close template archive: %v", err)
	}
	return buf.Bytes()
}

// WriteTemplate writes a generated template into a temp dir and returns its path.
func WriteTemplate(t testing.TB, opts TemplateOptions) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.pptx")
	if err := os.WriteFile(path, BuildTemplate(t, opts), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	return path
}

const groupHeader = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`

func rels(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + body + `</Relationships>`
}

func placeholderXML(id int, name string, ph TemplatePlaceholder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph`, id, name)
	if ph.Type != "" {
		fmt.Fprintf(&sb, ` type="%s"`, ph.Type)
	}
	if ph.Idx != 0 {
		fmt.Fprintf(&sb, ` idx="%d"`, ph.Idx)
	}
	sb.WriteString(`/></p:nvPr></p:nvSpPr>`)
	if ph.Frame != nil {
		f := ph.Frame
		fmt.Fprintf(&sb, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm></p:spPr>`, f[0], f[1], f[2], f[3])
	} else {
		sb.WriteString(`<p:spPr/>`)
	}
	sb.WriteString(`</p:sp>`)
	return sb.String()
}
