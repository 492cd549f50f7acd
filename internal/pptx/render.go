package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	contentTypeNotesSlide = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	relTypePresProps      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/presProps"
)

// Render writes a new presentation made of the template's parts and the given
// slides, in order. Slides that shipped with the template are left out. The
// package itself is not modified, so one template can back many renders.
func (p *Package) Render(w io.Writer, slides []*Slide) error {
	main, err := p.MainPart()
	if err != nil {
		return err
	}

	ctData, err := p.Part(contentTypesPart)
	if err != nil {
		return err
	}
	ct, err := parseContentTypes(ctData)
	if err != nil {
		return err
	}
	presRels, err := p.Rels(main)
	if err != nil {
		return err
	}

	// Drop template slides and their notes.
	dropped := make(map[string]bool)
	for _, o := range ct.Overrides {
		if o.ContentType == ContentTypeSlide || o.ContentType == contentTypeNotesSlide {
			name := strings.TrimPrefix(o.PartName, "/")
			dropped[name] = true
			dropped[RelsPartName(name)] = true
		}
	}
	ct.without(dropped)
	keptRels := presRels.Items[:0]
	for _, rel := range presRels.Items {
		if rel.Type != RelTypeSlide {
			keptRels = append(keptRels, rel)
		}
	}
	presRels.Items = keptRels

	if typ, ok := ct.override(main); ok && typ == ContentTypeTemplateMain {
		ct.setOverride(main, ContentTypePresentationMain)
	}

	type generated struct {
		name string
		data []byte
	}
	var extra []generated
	var relIDs []string
	next := 1
	for _, s := range slides {
		var name string
		for {
			name = fmt.Sprintf("ppt/slides/slide%d.xml", next)
			next++
			if _, taken := p.parts[name]; !taken || dropped[name] {
				break
			}
		}

		rels := &Relationships{}
		rels.add(RelTypeSlideLayout, relativeTarget(name, s.LayoutPart))
		relsData, err := rels.marshal()
		if err != nil {
			return err
		}

		extra = append(extra,
			generated{name: name, data: s.XML()},
			generated{name: RelsPartName(name), data: relsData},
		)
		ct.setOverride(name, ContentTypeSlide)
		relIDs = append(relIDs, presRels.add(RelTypeSlide, relativeTarget(main, name)))
	}

	presData, err := p.Part(main)
	if err != nil {
		return err
	}
	presData, err = rewriteSlideList(presData, relIDs)
	if err != nil {
		return err
	}
	presRelsData, err := presRels.marshal()
	if err != nil {
		return err
	}
	ctOut, err := ct.marshal()
	if err != nil {
		return err
	}

	replaced := map[string][]byte{
		main:               presData,
		RelsPartName(main): presRelsData,
	}
	for _, rel := range presRels.Items {
		if rel.Type != relTypePresProps || rel.TargetMode == "External" {
			continue
		}
		name := ResolveTarget(main, rel.Target)
		if props, err := p.Part(name); err == nil {
			replaced[name] = dropCustomShowRef(props)
		}
	}

	zw := zip.NewWriter(w)
	if err := writePart(zw, contentTypesPart, ctOut); err != nil {
		return err
	}
	for _, name := range p.order {
		if name == contentTypesPart || dropped[name] {
			continue
		}
		data := p.parts[name]
		if r, ok := replaced[name]; ok {
			data = r
			delete(replaced, name)
		}
		if err := writePart(zw, name, data); err != nil {
			return err
		}
	}
	// main rels part may not have existed in the template
	for name, data := range replaced {
		if err := writePart(zw, name, data); err != nil {
			return err
		}
	}
	for _, g := range extra {
		if err := writePart(zw, g.name, g.data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish package: %w", err)
	}
	return nil
}

// RenderBytes renders into memory.
func (p *Package) RenderBytes(slides []*Slide) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf, slides); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
