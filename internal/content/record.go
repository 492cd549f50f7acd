package content

// Record is one slide's worth of content as the model wrote it.
type Record struct {
	// Value is the decoded record. It is an Object for well-formed records.
	Value any

	// Layout is the raw "layout" value, nil when absent or null.
	Layout any

	// Boxes holds the "boxes" members in source order. BoxesValue keeps the
	// raw value so a non-object can be reported.
	Boxes      []Box
	BoxesValue any

	// Tables holds the "tables" items. TablesValue keeps the raw value so a
	// non-array can be reported.
	Tables      []Table
	TablesValue any
}

// Box is a requested placeholder fill. Key is the placeholder idx as written.
type Box struct {
	Key   string
	Value any
}

// Table is a requested table. Value is the raw item; Idx and Data are nil
// when missing or null.
type Table struct {
	Value any
	Idx   any
	Data  any
}

// IsObject reports whether the record was a JSON object.
func (r Record) IsObject() bool {
	_, ok := r.Value.(Object)
	return ok
}

// LayoutName returns the requested layout name when it is a string.
func (r Record) LayoutName() (string, bool) {
	s, ok := r.Layout.(string)
	return s, ok
}

// HasBoxes reports whether "boxes" was present and not null.
func (r Record) HasBoxes() bool { return r.BoxesValue != nil }

// BoxesValid reports whether "boxes" was absent, null or an object.
func (r Record) BoxesValid() bool {
	if r.BoxesValue == nil {
		return true
	}
	_, ok := r.BoxesValue.(Object)
	return ok
}

// TablesValid reports whether "tables" was absent, null or an array.
func (r Record) TablesValid() bool {
	if r.TablesValue == nil {
		return true
	}
	_, ok := r.TablesValue.([]any)
	return ok
}

func newRecord(v any) Record {
	rec := Record{Value: v}
	obj, ok := v.(Object)
	if !ok {
		return rec
	}

	rec.Layout, _ = obj.Get("layout")

	rec.BoxesValue, _ = obj.Get("boxes")
	if boxes, ok := rec.BoxesValue.(Object); ok {
		for _, m := range boxes {
			rec.Boxes = append(rec.Boxes, Box{Key: m.Key, Value: m.Value})
		}
	}

	rec.TablesValue, _ = obj.Get("tables")
	if tables, ok := rec.TablesValue.([]any); ok {
		for _, item := range tables {
			t := Table{Value: item}
			if to, ok := item.(Object); ok {
				t.Idx, _ = to.Get("idx")
				t.Data, _ = to.Get("data")
			}
			rec.Tables = append(rec.Tables, t)
		}
	}
	return rec
}
