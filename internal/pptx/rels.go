package pptx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

const relationshipsNS = "http://schemas.openxmlformats.org/package/2006/relationships"

// Relationships is the content of a .rels part.
type Relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Items   []Relationship `xml:"Relationship"`
}

// Relationship links a source part to a target part or external resource.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// ParseRelationships decodes a .rels part.
func ParseRelationships(data []byte) (*Relationships, error) {
	var rels Relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}
	return &rels, nil
}

// ByID returns the relationship with the given id.
func (r *Relationships) ByID(id string) (Relationship, bool) {
	for _, rel := range r.Items {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// FirstOfType returns the first relationship of the given type.
func (r *Relationships) FirstOfType(relType string) (Relationship, bool) {
	for _, rel := range r.Items {
		if rel.Type == relType {
			return rel, true
		}
	}
	return Relationship{}, false
}

// nextID returns an rId not used by any relationship, counting up from the
// highest numeric suffix present.
func (r *Relationships) nextID() string {
	highest := 0
	for _, rel := range r.Items {
		n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId"))
		if err == nil && n > highest {
			highest = n
		}
	}
	return "rId" + strconv.Itoa(highest+1)
}

// add appends a relationship with a fresh id and returns that id.
func (r *Relationships) add(relType, target string) string {
	id := r.nextID()
	r.Items = append(r.Items, Relationship{ID: id, Type: relType, Target: target})
	return id
}

// marshal encodes the relationships with an XML declaration.
func (r *Relationships) marshal() ([]byte, error) {
	r.XMLName = xml.Name{Space: relationshipsNS, Local: "Relationships"}
	out, err := xml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode relationships: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
