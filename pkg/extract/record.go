package extract

// Value is one extracted field value. Found is false when no rule matched;
// Text is then empty.
type Value struct {
	Text  string
	Found bool
}

// Record is the structured result for one receipt image. Every field the
// registry declares is present, either with a trimmed non-empty value or as
// an explicit absent marker.
type Record struct {
	Image  string
	fields []string
	values map[string]Value
}

func newRecord(image string, fields []string) Record {
	values := make(map[string]Value, len(fields))
	for _, f := range fields {
		values[f] = Value{}
	}
	return Record{Image: image, fields: fields, values: values}
}

func (r Record) set(field, text string) {
	r.values[field] = Value{Text: text, Found: true}
}

// Get returns the value for a declared field. Unknown fields read as absent.
func (r Record) Get(field string) Value {
	return r.values[field]
}

// Fields returns the declared field names in registry order.
func (r Record) Fields() []string {
	return r.fields
}

// Row renders the record as a flat export row: image name first, then one
// cell per field in registry order, absent fields as empty cells.
func (r Record) Row() []string {
	row := make([]string, 0, len(r.fields)+1)
	row = append(row, r.Image)
	for _, f := range r.fields {
		row = append(row, r.values[f].Text)
	}
	return row
}

// Map returns the field values keyed by name, nil for absent fields. Used
// for JSON responses and persistence.
func (r Record) Map() map[string]*string {
	out := make(map[string]*string, len(r.fields))
	for _, f := range r.fields {
		v := r.values[f]
		if v.Found {
			t := v.Text
			out[f] = &t
		} else {
			out[f] = nil
		}
	}
	return out
}
