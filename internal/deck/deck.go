// Package deck assembles slide records into a presentation.
//
// Assembly never fails because of what a record contains. Each record yields
// exactly one slide; anything that cannot be applied is skipped and reported
// as a Warning. The only fatal errors come from the content payload itself
// (see content.Parse) and from writing the package.
package deck

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackzampolin/slidedeck/internal/content"
	"github.com/jackzampolin/slidedeck/internal/layout"
	"github.com/jackzampolin/slidedeck/internal/pptx"
)

// Result is an assembled deck.
type Result struct {
	Document []byte
	// Layouts names the layout used for each slide, in order.
	Layouts  []string
	Warnings []Warning
	// Strategy is the parse strategy that accepted the payload, when the
	// deck was assembled from text.
	Strategy string
}

// Assembler builds decks from a shared template index.
type Assembler struct {
	index  *layout.Index
	logger *slog.Logger
}

// New creates an assembler. A nil logger uses slog.Default.
func New(index *layout.Index, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{index: index, logger: logger}
}

// Index returns the template index the assembler renders with.
func (a *Assembler) Index() *layout.Index { return a.index }

// AssemblePayload parses a content description and assembles it.
func (a *Assembler) AssemblePayload(payload string) (*Result, error) {
	parsed, err := content.Parse(payload)
	if err != nil {
		return nil, err
	}
	res, err := a.Assemble(parsed.Records)
	if err != nil {
		return nil, err
	}
	res.Strategy = parsed.Strategy
	return res, nil
}

// Assemble renders one slide per record, in order.
func (a *Assembler) Assemble(records []content.Record) (*Result, error) {
	res := &Result{}
	slides := make([]*pptx.Slide, 0, len(records))

	for i, rec := range records {
		b := &slideBuilder{index: a.index, number: i + 1}
		slides = append(slides, b.build(rec))
		res.Layouts = append(res.Layouts, b.layout.Name)
		res.Warnings = append(res.Warnings, b.warnings...)
	}

	doc, err := a.index.Package().RenderBytes(slides)
	if err != nil {
		return nil, fmt.Errorf("failed to write deck: %w", err)
	}
	res.Document = doc

	for _, w := range res.Warnings {
		a.logger.Debug("assembly warning", "slide", w.Slide, "code", w.Code, "message", w.Message)
	}
	a.logger.Info("deck assembled",
		"slides", len(slides),
		"warnings", len(res.Warnings),
		"bytes", len(doc))
	return res, nil
}

// slideBuilder holds the state of one record's slide.
type slideBuilder struct {
	index    *layout.Index
	number   int
	layout   *layout.Layout
	slide    *pptx.Slide
	filled   map[int]bool // idx with text from boxes
	warnings []Warning
}

func (b *slideBuilder) warn(code, format string, args ...any) {
	b.warnings = append(b.warnings, Warning{
		Slide:   b.number,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (b *slideBuilder) build(rec content.Record) *pptx.Slide {
	b.resolveLayout(rec)
	b.slide = b.layout.NewSlide()
	b.filled = make(map[int]bool)

	if !rec.IsObject() {
		return b.slide
	}
	b.fillBoxes(rec)
	b.fillTables(rec)
	return b.slide
}

func (b *slideBuilder) resolveLayout(rec content.Record) {
	def := b.index.Default()
	if !rec.IsObject() {
		b.layout = def
		b.warn(CodeInvalidRecord, "record is not an object (%s); using default layout %q",
			truncate(content.Text(rec.Value)), def.Name)
		return
	}

	if name, ok := rec.LayoutName(); ok {
		if l, ok := b.index.Lookup(name); ok {
			b.layout = l
			return
		}
	}

	requested := "<missing>"
	if rec.Layout != nil {
		requested = strconv.Quote(content.Text(rec.Layout))
	}
	b.layout = def
	b.warn(CodeUnknownLayout, "layout %s not found in template (available: %s); using default layout %q",
		requested, quoteAll(b.index.Names()), def.Name)
}

func (b *slideBuilder) fillBoxes(rec content.Record) {
	if !rec.BoxesValid() {
		b.warn(CodeInvalidBoxes, "boxes must be an object keyed by placeholder idx, got %s",
			truncate(content.Text(rec.BoxesValue)))
		return
	}

	for _, box := range rec.Boxes {
		idx, err := content.Idx(box.Key)
		if err != nil {
			b.warn(CodeBoxKeyNotNumeric, "box key %q skipped: key must be a numeric idx", box.Key)
			continue
		}
		ph, ok := b.slide.PlaceholderByIdx(idx)
		if !ok {
			b.warn(CodePlaceholderNotFound, "placeholder idx %d not found on layout %q (available idx: %s)",
				idx, b.layout.Name, formatIdxs(b.layout.Idxs()))
			continue
		}
		ph.SetText(content.Text(box.Value))
		b.filled[idx] = true
	}
}

func (b *slideBuilder) fillTables(rec content.Record) {
	if !rec.TablesValid() {
		b.warn(CodeInvalidTables, "tables must be an array, got %s",
			truncate(content.Text(rec.TablesValue)))
		return
	}

	for n, t := range rec.Tables {
		if t.Idx == nil || t.Data == nil {
			b.warn(CodeTableMissingField, "table %d skipped: idx and data are both required (%s)",
				n+1, truncate(content.Text(t.Value)))
			continue
		}
		idx, err := content.Idx(t.Idx)
		if err != nil {
			b.warn(CodeTableIdxNotNumeric, "table %d skipped: idx %s is not numeric",
				n+1, truncate(content.Text(t.Idx)))
			continue
		}
		slot, ok := b.layout.Slot(idx)
		if !ok {
			b.warn(CodeTablePlaceholderMissing, "table %d skipped: placeholder idx %d not found on layout %q (available idx: %s)",
				n+1, idx, b.layout.Name, formatIdxs(b.layout.Idxs()))
			continue
		}
		rows, ok := t.Data.([]any)
		if !ok {
			b.warn(CodeTableDataInvalid, "table %d skipped: data must be an array of rows, got %s",
				n+1, truncate(content.Text(t.Data)))
			continue
		}

		cells := b.tableCells(n+1, rows)
		cols := 0
		if len(cells) > 0 {
			cols = len(cells[0])
		}
		if b.filled[idx] {
			b.warn(CodePlaceholderOverlap, "table %d is placed over placeholder idx %d, which also has text", n+1, idx)
		}
		if _, err := b.slide.AddTable(slot.Frame, len(cells), cols, cells); err != nil {
			// tableCells always returns a rectangular grid
			b.warn(CodeTableDataInvalid, "table %d skipped: %v", n+1, err)
		}
	}
}

// tableCells converts rows to text. The column count comes from the first
// row; other rows are padded or cut to fit.
func (b *slideBuilder) tableCells(table int, rows []any) [][]string {
	if len(rows) == 0 {
		return nil
	}
	cols := 1
	if first, ok := rows[0].([]any); ok {
		cols = len(first)
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		values, ok := row.([]any)
		if !ok {
			b.warn(CodeTableDataInvalid, "table %d row %d is not an array; using it as a single cell", table, r+1)
			values = []any{row}
		}
		if len(values) != cols {
			b.warn(CodeTableRowRagged, "table %d row %d has %d cells, want %d", table, r+1, len(values), cols)
		}
		out := make([]string, cols)
		for c := 0; c < cols && c < len(values); c++ {
			out[c] = content.Text(values[c])
		}
		cells[r] = out
	}
	return cells
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = strconv.Quote(n)
	}
	return "[" + strings.Join(q, ", ") + "]"
}

func formatIdxs(idxs []int) string {
	s := make([]string, len(idxs))
	for i, n := range idxs {
		s[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(s, ", ") + "]"
}

const maxQuoted = 80

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxQuoted {
		return s
	}
	return string(r[:maxQuoted]) + "..."
}
