// Package layout indexes the slide layouts of a presentation template.
//
// An Index is built once per template and is read-only afterwards, so one
// Index can be shared by any number of concurrent assemblies.
package layout

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/jackzampolin/slidedeck/internal/pptx"
)

// ErrNoLayouts is returned when a template has no slide layouts to build on.
var ErrNoLayouts = errors.New("template has no slide layouts")

// DefaultPosition is the layout used when a record names no known layout.
const DefaultPosition = 1

// Placeholder types that are never cloned onto a new slide.
var skippedTypes = map[string]bool{
	"dt":     true,
	"ftr":    true,
	"sldNum": true,
}

// Slot is a placeholder a slide built from a layout will carry.
type Slot struct {
	Idx   int        `json:"idx" yaml:"idx"`
	Type  string     `json:"type,omitempty" yaml:"type,omitempty"`
	Name  string     `json:"name" yaml:"name"`
	Frame pptx.Frame `json:"frame" yaml:"frame"`

	shape pptx.PlaceholderShape
}

// Layout is one slide layout of the template.
type Layout struct {
	Name     string `json:"name" yaml:"name"`
	Position int    `json:"position" yaml:"position"`
	PartName string `json:"part" yaml:"part"`
	Slots    []Slot `json:"slots" yaml:"slots"`
}

// Slot returns the slot with the given idx.
func (l *Layout) Slot(idx int) (Slot, bool) {
	for _, s := range l.Slots {
		if s.Idx == idx {
			return s, true
		}
	}
	return Slot{}, false
}

// Idxs returns the slot idx values in ascending order.
func (l *Layout) Idxs() []int {
	out := make([]int, 0, len(l.Slots))
	for _, s := range l.Slots {
		out = append(out, s.Idx)
	}
	sort.Ints(out)
	return out
}

// NewSlide starts a slide carrying an empty copy of every slot.
func (l *Layout) NewSlide() *pptx.Slide {
	s := pptx.NewSlide(l.PartName)
	for _, slot := range l.Slots {
		s.AddPlaceholder(slot.shape)
	}
	return s
}

// Index is the ordered set of layouts offered by a template.
type Index struct {
	pkg     *pptx.Package
	layouts []*Layout
	byName  map[string]*Layout
	names   []string
	def     *Layout
	width   int64
	height  int64
}

// Load indexes the template at path.
func Load(path string) (*Index, error) {
	pkg, err := pptx.Open(path)
	if err != nil {
		return nil, err
	}
	return New(pkg)
}

// Read indexes a template held in r.
func Read(r io.ReaderAt, size int64) (*Index, error) {
	pkg, err := pptx.Read(r, size)
	if err != nil {
		return nil, err
	}
	return New(pkg)
}

// New indexes an opened package. Layouts come from the first slide master.
func New(pkg *pptx.Package) (*Index, error) {
	masters, err := pkg.Masters()
	if err != nil {
		return nil, fmt.Errorf("failed to read slide masters: %w", err)
	}
	if len(masters) == 0 || len(masters[0].LayoutParts) == 0 {
		return nil, ErrNoLayouts
	}
	master := masters[0]

	ix := &Index{pkg: pkg, byName: make(map[string]*Layout)}
	ix.width, ix.height, err = pkg.SlideSize()
	if err != nil {
		return nil, err
	}

	for pos, part := range master.LayoutParts {
		lp, err := pkg.ReadLayout(part)
		if err != nil {
			return nil, fmt.Errorf("failed to read layout %d: %w", pos, err)
		}
		l := &Layout{Name: lp.Name, Position: pos, PartName: part}
		for _, ph := range lp.Placeholders {
			if skippedTypes[ph.Type] {
				continue
			}
			if _, dup := l.Slot(ph.Idx); dup {
				continue
			}
			l.Slots = append(l.Slots, Slot{
				Idx:   ph.Idx,
				Type:  ph.Type,
				Name:  ph.Name,
				Frame: resolveFrame(ph, master.Placeholders),
				shape: ph,
			})
		}

		ix.layouts = append(ix.layouts, l)
		if _, seen := ix.byName[l.Name]; !seen {
			ix.names = append(ix.names, l.Name)
		}
		ix.byName[l.Name] = l
	}

	if len(ix.layouts) > DefaultPosition {
		ix.def = ix.layouts[DefaultPosition]
	} else {
		ix.def = ix.layouts[0]
	}
	return ix, nil
}

// baseType maps a layout placeholder type to the master placeholder type it
// inherits its position from.
func baseType(t string) string {
	switch t {
	case "title", "ctrTitle":
		return "title"
	case "dt", "ftr", "sldNum":
		return t
	default:
		return "body"
	}
}

func resolveFrame(ph pptx.PlaceholderShape, master []pptx.PlaceholderShape) pptx.Frame {
	if ph.Frame != nil {
		return *ph.Frame
	}
	want := baseType(ph.Type)
	for _, m := range master {
		if baseType(m.Type) == want && m.Frame != nil {
			return *m.Frame
		}
	}
	return pptx.Frame{}
}

// Package returns the template package the index was built from.
func (ix *Index) Package() *pptx.Package { return ix.pkg }

// Layouts returns all layouts in template order.
func (ix *Index) Layouts() []*Layout { return ix.layouts }

// Names returns the distinct layout names in template order.
func (ix *Index) Names() []string {
	out := make([]string, len(ix.names))
	copy(out, ix.names)
	return out
}

// Lookup finds a layout by name. When names repeat, the last one wins.
func (ix *Index) Lookup(name string) (*Layout, bool) {
	l, ok := ix.byName[name]
	return l, ok
}

// At returns the layout at a template position.
func (ix *Index) At(position int) (*Layout, bool) {
	if position < 0 || position >= len(ix.layouts) {
		return nil, false
	}
	return ix.layouts[position], true
}

// Default returns the fallback layout.
func (ix *Index) Default() *Layout { return ix.def }

// SlideSize returns the slide width and height in EMU.
func (ix *Index) SlideSize() (int64, int64) { return ix.width, ix.height }
