package manual

import (
	"fmt"

	"github.com/jackzampolin/slidedeck/internal/layout"
)

// FromIndex drafts a manual describing every layout of a template. Roles are
// guessed from placeholder types and are meant to be edited by hand.
func FromIndex(ix *layout.Index) *Manual {
	m := &Manual{}
	for _, l := range ix.Layouts() {
		e := Entry{LayoutName: l.Name, Placeholders: []Placeholder{}}
		for _, s := range l.Slots {
			e.Placeholders = append(e.Placeholders, Placeholder{
				Idx:  s.Idx,
				Type: s.Type,
				Role: roleFor(s.Type),
			})
		}
		m.Entries = append(m.Entries, e)
	}
	return m
}

func roleFor(phType string) string {
	switch phType {
	case "title", "ctrTitle":
		return "slide title"
	case "subTitle":
		return "subtitle"
	case "tbl":
		return "table"
	case "pic":
		return "picture (not filled)"
	default:
		return "body text"
	}
}

// Issue is a disagreement between a manual and a template.
type Issue struct {
	Layout  string `json:"layout" yaml:"layout"`
	Idx     *int   `json:"idx,omitempty" yaml:"idx,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Check compares the manual against a template index. Any issue means the
// model may be told about layouts or placeholders the assembler cannot fill.
func (m *Manual) Check(ix *layout.Index) []Issue {
	var issues []Issue
	documented := make(map[string]bool)

	for _, e := range m.Entries {
		documented[e.LayoutName] = true
		l, ok := ix.Lookup(e.LayoutName)
		if !ok {
			issues = append(issues, Issue{
				Layout:  e.LayoutName,
				Message: "layout is not in the template",
			})
			continue
		}
		for _, ph := range e.Placeholders {
			if _, ok := l.Slot(ph.Idx); !ok {
				idx := ph.Idx
				issues = append(issues, Issue{
					Layout:  e.LayoutName,
					Idx:     &idx,
					Message: fmt.Sprintf("placeholder idx %d is not on the layout (available: %v)", ph.Idx, l.Idxs()),
				})
			}
		}
	}

	for _, name := range ix.Names() {
		if !documented[name] {
			issues = append(issues, Issue{Layout: name, Message: "layout is not documented in the manual"})
		}
	}
	return issues
}
