package pptx

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const contentTypesNS = "http://schemas.openxmlformats.org/package/2006/content-types"

// ContentTypes is the [Content_Types].xml manifest.
type ContentTypes struct {
	XMLName   xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ContentDefault  `xml:"Default"`
	Overrides []ContentOverride `xml:"Override"`
}

// ContentDefault maps a file extension to a content type.
type ContentDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentOverride maps a single part to a content type.
type ContentOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func parseContentTypes(data []byte) (*ContentTypes, error) {
	var ct ContentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("failed to parse content types: %w", err)
	}
	return &ct, nil
}

// without drops overrides for the given parts.
func (ct *ContentTypes) without(drop map[string]bool) {
	kept := ct.Overrides[:0]
	for _, o := range ct.Overrides {
		if !drop[strings.TrimPrefix(o.PartName, "/")] {
			kept = append(kept, o)
		}
	}
	ct.Overrides = kept
}

// setOverride sets the content type of one part, adding the override if needed.
func (ct *ContentTypes) setOverride(partName, contentType string) {
	name := "/" + strings.TrimPrefix(partName, "/")
	for i, o := range ct.Overrides {
		if o.PartName == name {
			ct.Overrides[i].ContentType = contentType
			return
		}
	}
	ct.Overrides = append(ct.Overrides, ContentOverride{PartName: name, ContentType: contentType})
}

// override returns the content type registered for a part, if any.
func (ct *ContentTypes) override(partName string) (string, bool) {
	name := "/" + strings.TrimPrefix(partName, "/")
	for _, o := range ct.Overrides {
		if o.PartName == name {
			return o.ContentType, true
		}
	}
	return "", false
}

func (ct *ContentTypes) marshal() ([]byte, error) {
	ct.XMLName = xml.Name{Space: contentTypesNS, Local: "Types"}
	out, err := xml.Marshal(ct)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content types: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
