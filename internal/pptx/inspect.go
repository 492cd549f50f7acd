package pptx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// SlideSummary describes a slide found in a package.
type SlideSummary struct {
	PartName     string               `json:"part_name" yaml:"part_name"`
	LayoutPart   string               `json:"layout_part" yaml:"layout_part"`
	Placeholders []PlaceholderSummary `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
	Tables       []TableSummary       `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// PlaceholderSummary describes a placeholder on a slide.
type PlaceholderSummary struct {
	Idx     int    `json:"idx" yaml:"idx"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Name    string `json:"name" yaml:"name"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
	HasText bool   `json:"has_text" yaml:"has_text"`
}

// TableSummary describes a table on a slide.
type TableSummary struct {
	Name  string     `json:"name" yaml:"name"`
	Frame Frame      `json:"frame" yaml:"frame"`
	Rows  int        `json:"rows" yaml:"rows"`
	Cols  int        `json:"cols" yaml:"cols"`
	Cells [][]string `json:"cells,omitempty" yaml:"cells,omitempty"`
}

type xSlide struct {
	CSld struct {
		SpTree struct {
			Shapes []xSlideShape   `xml:"sp"`
			Frames []xGraphicFrame `xml:"graphicFrame"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type xSlideShape struct {
	xShape
	TxBody *xTxBody `xml:"txBody"`
}

type xTxBody struct {
	Paras []struct {
		Items []struct {
			XMLName xml.Name
			T       string `xml:"t"`
		} `xml:",any"`
	} `xml:"p"`
}

func (b *xTxBody) text() string {
	paras := make([]string, 0, len(b.Paras))
	for _, p := range b.Paras {
		var sb strings.Builder
		for _, item := range p.Items {
			switch item.XMLName.Local {
			case "r", "fld":
				sb.WriteString(item.T)
			case "br":
				sb.WriteString("\v")
			}
		}
		paras = append(paras, sb.String())
	}
	return strings.Join(paras, "\n")
}

type xGraphicFrame struct {
	NvGraphicFramePr struct {
		CNvPr struct {
			Name string `xml:"name,attr"`
		} `xml:"cNvPr"`
	} `xml:"nvGraphicFramePr"`
	Xfrm xXfrm `xml:"xfrm"`
	Tbl  *struct {
		Grid []struct {
			W int64 `xml:"w,attr"`
		} `xml:"tblGrid>gridCol"`
		Rows []struct {
			Cells []struct {
				TxBody xTxBody `xml:"txBody"`
			} `xml:"tc"`
		} `xml:"tr"`
	} `xml:"graphic>graphicData>tbl"`
}

// Slides returns the package's slides in presentation order.
func (p *Package) Slides() ([]SlideSummary, error) {
	main, err := p.MainPart()
	if err != nil {
		return nil, err
	}
	data, err := p.Part(main)
	if err != nil {
		return nil, err
	}
	var pres struct {
		Slides []xIDRef `xml:"sldIdLst>sldId"`
	}
	if err := xml.Unmarshal(data, &pres); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", main, err)
	}
	rels, err := p.Rels(main)
	if err != nil {
		return nil, err
	}

	out := make([]SlideSummary, 0, len(pres.Slides))
	for _, ref := range pres.Slides {
		rel, ok := rels.ByID(ref.RID)
		if !ok {
			return nil, fmt.Errorf("slide %s: relationship: %w", ref.RID, ErrPartNotFound)
		}
		s, err := p.readSlide(ResolveTarget(main, rel.Target))
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func (p *Package) readSlide(partName string) (*SlideSummary, error) {
	data, err := p.Part(partName)
	if err != nil {
		return nil, err
	}
	var xs xSlide
	if err := xml.Unmarshal(data, &xs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", partName, err)
	}

	summary := &SlideSummary{PartName: partName}
	rels, err := p.Rels(partName)
	if err != nil {
		return nil, err
	}
	if rel, ok := rels.FirstOfType(RelTypeSlideLayout); ok {
		summary.LayoutPart = ResolveTarget(partName, rel.Target)
	}

	for _, sp := range xs.CSld.SpTree.Shapes {
		ph, ok := sp.placeholder()
		if !ok {
			continue
		}
		ps := PlaceholderSummary{Idx: ph.Idx, Type: ph.Type, Name: ph.Name}
		if sp.TxBody != nil {
			ps.Text = sp.TxBody.text()
			ps.HasText = true
		}
		summary.Placeholders = append(summary.Placeholders, ps)
	}

	for _, gf := range xs.CSld.SpTree.Frames {
		if gf.Tbl == nil {
			continue
		}
		ts := TableSummary{
			Name:  gf.NvGraphicFramePr.CNvPr.Name,
			Frame: Frame{X: gf.Xfrm.Off.X, Y: gf.Xfrm.Off.Y, CX: gf.Xfrm.Ext.CX, CY: gf.Xfrm.Ext.CY},
			Rows:  len(gf.Tbl.Rows),
			Cols:  len(gf.Tbl.Grid),
		}
		for _, row := range gf.Tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, c := range row.Cells {
				cells = append(cells, c.TxBody.text())
			}
			ts.Cells = append(ts.Cells, cells)
		}
		summary.Tables = append(summary.Tables, ts)
	}
	return summary, nil
}

// String renders a compact one-line description, mostly for logs.
func (s SlideSummary) String() string {
	idxs := make([]string, 0, len(s.Placeholders))
	for _, ph := range s.Placeholders {
		idxs = append(idxs, strconv.Itoa(ph.Idx))
	}
	return fmt.Sprintf("%s layout=%s placeholders=[%s] tables=%d",
		s.PartName, s.LayoutPart, strings.Join(idxs, ","), len(s.Tables))
}
