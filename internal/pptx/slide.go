package pptx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Frame is a shape's position and size in EMU.
type Frame struct {
	X  int64 `json:"left" yaml:"left"`
	Y  int64 `json:"top" yaml:"top"`
	CX int64 `json:"width" yaml:"width"`
	CY int64 `json:"height" yaml:"height"`
}

// defaultTableStyle is "Medium Style 2 - Accent 1", the style PowerPoint
// applies to newly inserted tables.
const defaultTableStyle = "{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"

// Slide is a slide under construction. It is owned by a single render.
type Slide struct {
	LayoutPart string

	placeholders []*Placeholder
	tables       []*Table
	// shapes keeps z-order: placeholders first, tables layered on top.
	shapes []shapeXML
	nextID int
}

type shapeXML interface {
	writeXML(sb *strings.Builder)
}

// NewSlide starts a slide based on the given layout part.
func NewSlide(layoutPart string) *Slide {
	// id 1 belongs to the shape tree itself
	return &Slide{LayoutPart: layoutPart, nextID: 2}
}

// Placeholder is a placeholder shape cloned from a layout onto a slide.
type Placeholder struct {
	ID     int
	Name   string
	Type   string
	Orient string
	Size   string
	Idx    int

	text    string
	hasText bool
}

// SetText replaces the placeholder's text. Newlines start new paragraphs and
// vertical tabs become line breaks.
func (p *Placeholder) SetText(text string) {
	p.text = text
	p.hasText = true
}

// Text returns the placeholder's text and whether any was set.
func (p *Placeholder) Text() (string, bool) {
	return p.text, p.hasText
}

// Table is a graphic-frame table layered on a slide.
type Table struct {
	ID    int
	Name  string
	Frame Frame
	cells [][]string
	cols  int
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return len(t.cells) }

// Cols returns the number of columns.
func (t *Table) Cols() int { return t.cols }

// Cell returns the text of cell (r, c).
func (t *Table) Cell(r, c int) string { return t.cells[r][c] }

// AddPlaceholder clones a layout placeholder onto the slide.
func (s *Slide) AddPlaceholder(src PlaceholderShape) *Placeholder {
	ph := &Placeholder{
		ID:     s.allocID(),
		Name:   src.Name,
		Type:   src.Type,
		Orient: src.Orient,
		Size:   src.Size,
		Idx:    src.Idx,
	}
	if ph.Name == "" {
		ph.Name = fmt.Sprintf("Placeholder %d", ph.ID-1)
	}
	s.placeholders = append(s.placeholders, ph)
	s.shapes = append(s.shapes, ph)
	return ph
}

// AddTable layers a rows x cols table at frame. cells must hold rows slices
// of exactly cols values.
func (s *Slide) AddTable(frame Frame, rows, cols int, cells [][]string) (*Table, error) {
	if len(cells) != rows {
		return nil, fmt.Errorf("table has %d rows of data, want %d", len(cells), rows)
	}
	for r, row := range cells {
		if len(row) != cols {
			return nil, fmt.Errorf("table row %d has %d cells, want %d", r, len(row), cols)
		}
	}
	t := &Table{ID: s.allocID(), Frame: frame, cells: cells, cols: cols}
	t.Name = fmt.Sprintf("Table %d", t.ID-1)
	s.tables = append(s.tables, t)
	s.shapes = append(s.shapes, t)
	return t, nil
}

// Placeholders returns the slide's placeholders in layout order.
func (s *Slide) Placeholders() []*Placeholder { return s.placeholders }

// Tables returns the slide's tables in insertion order.
func (s *Slide) Tables() []*Table { return s.tables }

// PlaceholderByIdx returns the placeholder with the given idx.
func (s *Slide) PlaceholderByIdx(idx int) (*Placeholder, bool) {
	for _, ph := range s.placeholders {
		if ph.Idx == idx {
			return ph, true
		}
	}
	return nil, false
}

func (s *Slide) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

// XML renders the slide part.
func (s *Slide) XML() []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	sb.WriteString(`<p:cSld><p:spTree>`)
	sb.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	sb.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/>` +
		`<a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	for _, sh := range s.shapes {
		sh.writeXML(&sb)
	}
	sb.WriteString(`</p:spTree></p:cSld>`)
	sb.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	sb.WriteString(`</p:sld>`)
	return []byte(sb.String())
}

func (p *Placeholder) writeXML(sb *strings.Builder) {
	fmt.Fprintf(sb, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/>`, p.ID, escapeXML(p.Name))
	sb.WriteString(`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph`)
	if p.Type != "" {
		fmt.Fprintf(sb, ` type="%s"`, escapeXML(p.Type))
	}
	if p.Orient != "" {
		fmt.Fprintf(sb, ` orient="%s"`, escapeXML(p.Orient))
	}
	if p.Size != "" {
		fmt.Fprintf(sb, ` sz="%s"`, escapeXML(p.Size))
	}
	if p.Idx != 0 {
		fmt.Fprintf(sb, ` idx="%d"`, p.Idx)
	}
	sb.WriteString(`/></p:nvPr></p:nvSpPr><p:spPr/>`)
	if p.hasText {
		sb.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
		writeParagraphs(sb, p.text)
		sb.WriteString(`</p:txBody>`)
	}
	sb.WriteString(`</p:sp>`)
}

func (t *Table) writeXML(sb *strings.Builder) {
	fmt.Fprintf(sb, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/>`, t.ID, escapeXML(t.Name))
	sb.WriteString(`<p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr><p:nvPr/></p:nvGraphicFramePr>`)
	fmt.Fprintf(sb, `<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`,
		t.Frame.X, t.Frame.Y, t.Frame.CX, t.Frame.CY)
	sb.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl>`)
	sb.WriteString(`<a:tblPr firstRow="1" bandRow="1"><a:tableStyleId>` + defaultTableStyle + `</a:tableStyleId></a:tblPr>`)

	if t.cols == 0 {
		sb.WriteString(`<a:tblGrid/>`)
	} else {
		sb.WriteString(`<a:tblGrid>`)
		for _, w := range split(t.Frame.CX, t.cols) {
			fmt.Fprintf(sb, `<a:gridCol w="%d"/>`, w)
		}
		sb.WriteString(`</a:tblGrid>`)
	}

	heights := split(t.Frame.CY, len(t.cells))
	for r, row := range t.cells {
		fmt.Fprintf(sb, `<a:tr h="%d">`, heights[r])
		for _, cell := range row {
			sb.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:lstStyle/>`)
			writeParagraphs(sb, cell)
			sb.WriteString(`</a:txBody><a:tcPr/></a:tc>`)
		}
		sb.WriteString(`</a:tr>`)
	}
	sb.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
}

// split divides total into n integral parts; the last absorbs the remainder.
func split(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	parts := make([]int64, n)
	each := total / int64(n)
	for i := range parts {
		parts[i] = each
	}
	parts[n-1] += total - each*int64(n)
	return parts
}

func writeParagraphs(sb *strings.Builder, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			sb.WriteString(`<a:p><a:endParaRPr lang="en-US" dirty="0"/></a:p>`)
			continue
		}
		sb.WriteString(`<a:p>`)
		for i, line := range strings.Split(para, "\v") {
			if i > 0 {
				sb.WriteString(`<a:br><a:rPr lang="en-US" dirty="0"/></a:br>`)
			}
			if line == "" {
				continue
			}
			sb.WriteString(`<a:r><a:rPr lang="en-US" dirty="0"/><a:t>`)
			sb.WriteString(escapeXML(line))
			sb.WriteString(`</a:t></a:r>`)
		}
		sb.WriteString(`</a:p>`)
	}
}

// escapeXML escapes text for element and attribute content. Characters that
// are not allowed in XML are replaced with U+FFFD.
func escapeXML(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
