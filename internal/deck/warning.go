package deck

import "fmt"

// Warning codes.
const (
	CodeUnknownLayout           = "unknown_layout"
	CodeInvalidRecord           = "invalid_record"
	CodeInvalidBoxes            = "invalid_boxes"
	CodeBoxKeyNotNumeric        = "box_key_not_numeric"
	CodePlaceholderNotFound     = "placeholder_not_found"
	CodeInvalidTables           = "invalid_tables"
	CodeTableMissingField       = "table_missing_field"
	CodeTableIdxNotNumeric      = "table_idx_not_numeric"
	CodeTablePlaceholderMissing = "table_placeholder_not_found"
	CodeTableDataInvalid        = "table_data_invalid"
	CodeTableRowRagged          = "table_row_ragged"
	CodePlaceholderOverlap      = "placeholder_overlap"
)

// Warning is a recoverable problem found while assembling one slide.
type Warning struct {
	Slide   int    `json:"slide" yaml:"slide"` // 1-based
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("slide %d: %s", w.Slide, w.Message)
}

// Messages renders warnings in their String form.
func Messages(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}
