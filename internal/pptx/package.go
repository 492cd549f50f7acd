// Package pptx reads PresentationML packages and writes new decks from them.
//
// A package is a zip archive of XML parts tied together by relationship
// parts (_rels/*.rels) and a content-type manifest ([Content_Types].xml).
// The package read from a template is never mutated: Render copies the
// template's parts into a fresh archive and adds the generated slides.
package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// ErrPartNotFound is returned when a referenced part is missing from the package.
var ErrPartNotFound = errors.New("part not found")

const (
	contentTypesPart = "[Content_Types].xml"
	rootRelsPart     = "_rels/.rels"

	// Relationship types used when walking a presentation.
	RelTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelTypeSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	RelTypeSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RelTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RelTypeNotesSlide     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"

	ContentTypeSlide            = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ContentTypePresentationMain = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ContentTypeTemplateMain     = "application/vnd.openxmlformats-officedocument.presentationml.template.main+xml"

	// MediaType is the MIME type of a rendered deck.
	MediaType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// Package is an opened PresentationML archive held fully in memory.
type Package struct {
	parts map[string][]byte
	order []string
}

// Open reads a package from a file on disk.
func Open(filename string) (*Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read reads a package from r. The whole archive is loaded so that later
// lookups and renders never touch the source again.
func Read(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open package archive: %w", err)
	}

	pkg := &Package{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		name := strings.TrimPrefix(f.Name, "/")
		if _, dup := pkg.parts[name]; !dup {
			pkg.order = append(pkg.order, name)
		}
		pkg.parts[name] = data
	}

	if _, ok := pkg.parts[contentTypesPart]; !ok {
		return nil, fmt.Errorf("not a presentation package: %s: %w", contentTypesPart, ErrPartNotFound)
	}
	return pkg, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Part returns the raw bytes of a part.
func (p *Package) Part(name string) ([]byte, error) {
	data, ok := p.parts[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrPartNotFound)
	}
	return data, nil
}

// PartNames returns part names in archive order.
func (p *Package) PartNames() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// Rels returns the relationships of a part. A part without a rels part has
// no relationships, which is not an error.
func (p *Package) Rels(partName string) (*Relationships, error) {
	data, ok := p.parts[RelsPartName(partName)]
	if !ok {
		return &Relationships{}, nil
	}
	return ParseRelationships(data)
}

// MainPart returns the name of the presentation part (usually ppt/presentation.xml).
func (p *Package) MainPart() (string, error) {
	rels, err := p.Rels("")
	if err != nil {
		return "", fmt.Errorf("failed to read package relationships: %w", err)
	}
	rel, ok := rels.FirstOfType(RelTypeOfficeDocument)
	if !ok {
		return "", fmt.Errorf("package has no officeDocument relationship: %w", ErrPartNotFound)
	}
	return ResolveTarget("", rel.Target), nil
}

// RelsPartName returns the rels part belonging to partName. The empty name
// addresses the package-level relationships.
func RelsPartName(partName string) string {
	if partName == "" {
		return rootRelsPart
	}
	dir, file := path.Split(partName)
	return dir + "_rels/" + file + ".rels"
}

// ResolveTarget resolves a relationship target relative to its source part.
func ResolveTarget(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Clean(path.Join(path.Dir(sourcePart), target)), "/")
}

// relativeTarget returns target expressed relative to the directory of sourcePart.
func relativeTarget(sourcePart, target string) string {
	from := strings.Split(path.Dir(sourcePart), "/")
	to := strings.Split(target, "/")
	if path.Dir(sourcePart) == "." {
		from = nil
	}

	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var sb strings.Builder
	for range from[i:] {
		sb.WriteString("../")
	}
	sb.WriteString(strings.Join(to[i:], "/"))
	return sb.String()
}
