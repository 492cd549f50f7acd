package pptx

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const officeRelsNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// Master is a slide master and the layouts it owns, in sldLayoutIdLst order.
type Master struct {
	PartName     string
	LayoutParts  []string
	Placeholders []PlaceholderShape
}

// LayoutPart is a decoded slide layout.
type LayoutPart struct {
	PartName     string
	Name         string
	Placeholders []PlaceholderShape
}

// PlaceholderShape is a placeholder <p:sp> found on a master or layout.
type PlaceholderShape struct {
	Name   string
	Type   string // ph@type, empty means "obj"
	Orient string
	Size   string
	Idx    int
	// Frame is nil when the shape inherits its position.
	Frame *Frame
}

type xIDRef struct {
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xPresentation struct {
	Masters []xIDRef `xml:"sldMasterIdLst>sldMasterId"`
	SldSz   struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

type xSlideMaster struct {
	CSld    xCSld    `xml:"cSld"`
	Layouts []xIDRef `xml:"sldLayoutIdLst>sldLayoutId"`
}

type xSlideLayout struct {
	CSld xCSld `xml:"cSld"`
}

type xCSld struct {
	Name   string `xml:"name,attr"`
	SpTree struct {
		Shapes []xShape `xml:"sp"`
	} `xml:"spTree"`
}

type xShape struct {
	NvSpPr struct {
		CNvPr struct {
			Name string `xml:"name,attr"`
		} `xml:"cNvPr"`
		NvPr struct {
			Ph *xPlaceholder `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	SpPr struct {
		Xfrm *xXfrm `xml:"xfrm"`
	} `xml:"spPr"`
}

type xPlaceholder struct {
	Type   string `xml:"type,attr"`
	Orient string `xml:"orient,attr"`
	Size   string `xml:"sz,attr"`
	Idx    string `xml:"idx,attr"`
}

type xXfrm struct {
	Off struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"off"`
	Ext struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"ext"`
}

func (s xShape) placeholder() (PlaceholderShape, bool) {
	ph := s.NvSpPr.NvPr.Ph
	if ph == nil {
		return PlaceholderShape{}, false
	}
	out := PlaceholderShape{
		Name:   s.NvSpPr.CNvPr.Name,
		Type:   ph.Type,
		Orient: ph.Orient,
		Size:   ph.Size,
	}
	if idx, err := strconv.Atoi(strings.TrimSpace(ph.Idx)); err == nil {
		out.Idx = idx
	}
	if x := s.SpPr.Xfrm; x != nil {
		out.Frame = &Frame{X: x.Off.X, Y: x.Off.Y, CX: x.Ext.CX, CY: x.Ext.CY}
	}
	return out, true
}

func placeholdersOf(c xCSld) []PlaceholderShape {
	var out []PlaceholderShape
	for _, sp := range c.SpTree.Shapes {
		if ph, ok := sp.placeholder(); ok {
			out = append(out, ph)
		}
	}
	return out
}

// Masters returns the slide masters of the presentation in sldMasterIdLst order.
func (p *Package) Masters() ([]Master, error) {
	main, err := p.MainPart()
	if err != nil {
		return nil, err
	}
	pres, err := p.presentation(main)
	if err != nil {
		return nil, err
	}
	rels, err := p.Rels(main)
	if err != nil {
		return nil, err
	}

	masters := make([]Master, 0, len(pres.Masters))
	for _, ref := range pres.Masters {
		rel, ok := rels.ByID(ref.RID)
		if !ok {
			return nil, fmt.Errorf("slide master %s: relationship: %w", ref.RID, ErrPartNotFound)
		}
		m, err := p.readMaster(ResolveTarget(main, rel.Target))
		if err != nil {
			return nil, err
		}
		masters = append(masters, *m)
	}
	return masters, nil
}

// SlideSize returns the slide width and height in EMU.
func (p *Package) SlideSize() (int64, int64, error) {
	main, err := p.MainPart()
	if err != nil {
		return 0, 0, err
	}
	pres, err := p.presentation(main)
	if err != nil {
		return 0, 0, err
	}
	return pres.SldSz.CX, pres.SldSz.CY, nil
}

func (p *Package) presentation(main string) (*xPresentation, error) {
	data, err := p.Part(main)
	if err != nil {
		return nil, err
	}
	var pres xPresentation
	if err := xml.Unmarshal(data, &pres); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", main, err)
	}
	return &pres, nil
}

func (p *Package) readMaster(partName string) (*Master, error) {
	data, err := p.Part(partName)
	if err != nil {
		return nil, err
	}
	var xm xSlideMaster
	if err := xml.Unmarshal(data, &xm); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", partName, err)
	}
	rels, err := p.Rels(partName)
	if err != nil {
		return nil, err
	}

	m := &Master{PartName: partName, Placeholders: placeholdersOf(xm.CSld)}
	for _, ref := range xm.Layouts {
		rel, ok := rels.ByID(ref.RID)
		if !ok {
			return nil, fmt.Errorf("%s: layout %s: %w", partName, ref.RID, ErrPartNotFound)
		}
		m.LayoutParts = append(m.LayoutParts, ResolveTarget(partName, rel.Target))
	}
	return m, nil
}

// ReadLayout decodes a slide layout part.
func (p *Package) ReadLayout(partName string) (*LayoutPart, error) {
	data, err := p.Part(partName)
	if err != nil {
		return nil, err
	}
	var xl xSlideLayout
	if err := xml.Unmarshal(data, &xl); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", partName, err)
	}
	return &LayoutPart{
		PartName:     partName,
		Name:         xl.CSld.Name,
		Placeholders: placeholdersOf(xl.CSld),
	}, nil
}

var (
	rootPrefixPattern = regexp.MustCompile(`<(?:(\w+):)?presentation\b`)
	relsPrefixPattern = regexp.MustCompile(`xmlns:(\w+)="` + regexp.QuoteMeta(officeRelsNS) + `"`)
	slideListPattern  = regexp.MustCompile(`(?s)<(?:\w+:)?sldIdLst\s*/>|<(?:\w+:)?sldIdLst\b[^>]*>.*?</(?:\w+:)?sldIdLst>`)
	slideListAnchors  = regexp.MustCompile(`</(?:\w+:)?(?:sldMasterIdLst|notesMasterIdLst|handoutMasterIdLst)>|<(?:\w+:)?(?:notesMasterIdLst|handoutMasterIdLst)\s*/>`)

	// Parts of presentation.xml and presProps.xml that name template slides.
	customShowsPattern = regexp.MustCompile(`(?s)<(?:\w+:)?custShowLst\s*/>|<(?:\w+:)?custShowLst\b[^>]*>.*?</(?:\w+:)?custShowLst>`)
	sectionExtPattern  = regexp.MustCompile(`(?s)<(?:\w+:)?ext\b[^>]*>\s*<(?:\w+:)?sectionLst\b.*?</(?:\w+:)?sectionLst>\s*</(?:\w+:)?ext>`)
	sectionListPattern = regexp.MustCompile(`(?s)<(?:\w+:)?sectionLst\s*/>|<(?:\w+:)?sectionLst\b[^>]*>.*?</(?:\w+:)?sectionLst>`)
	customShowRef      = regexp.MustCompile(`<(?:\w+:)?custShow\b[^>]*/>`)
)

// dropSlideReferences removes custom shows and sections. Both list the
// template's slides, which are not carried into a rendered deck.
func dropSlideReferences(doc string) string {
	doc = customShowsPattern.ReplaceAllString(doc, "")
	doc = sectionExtPattern.ReplaceAllString(doc, "")
	return sectionListPattern.ReplaceAllString(doc, "")
}

// dropCustomShowRef removes the slide show setting that plays a custom show.
func dropCustomShowRef(presProps []byte) []byte {
	return customShowRef.ReplaceAll(presProps, nil)
}

// rewriteSlideList replaces the presentation's sldIdLst with one entry per
// relationship id, in order. Custom shows and sections are dropped.
func rewriteSlideList(presXML []byte, relIDs []string) ([]byte, error) {
	doc := dropSlideReferences(string(presXML))

	prefix := ""
	if m := rootPrefixPattern.FindStringSubmatch(doc); m != nil && m[1] != "" {
		prefix = m[1] + ":"
	}
	rm := relsPrefixPattern.FindStringSubmatch(doc)
	if rm == nil && len(relIDs) > 0 {
		return nil, fmt.Errorf("presentation part does not declare the relationships namespace")
	}

	var list strings.Builder
	if len(relIDs) > 0 {
		list.WriteString("<" + prefix + "sldIdLst>")
		for i, id := range relIDs {
			fmt.Fprintf(&list, `<%ssldId id="%d" %s:id="%s"/>`, prefix, 256+i, rm[1], id)
		}
		list.WriteString("</" + prefix + "sldIdLst>")
	}

	if loc := slideListPattern.FindStringIndex(doc); loc != nil {
		return []byte(doc[:loc[0]] + list.String() + doc[loc[1]:]), nil
	}
	if list.Len() == 0 {
		return []byte(doc), nil
	}

	anchors := slideListAnchors.FindAllStringIndex(doc, -1)
	if len(anchors) == 0 {
		return nil, fmt.Errorf("presentation part has no sldMasterIdLst")
	}
	at := anchors[len(anchors)-1][1]
	return []byte(doc[:at] + list.String() + doc[at:]), nil
}
