package pipeline

import "receipt-extract/pkg/extract"

// Table aggregates extraction records in arrival order under a fixed column
// schema. It is the sole owner of its records; rows come out in the same
// order they went in.
type Table struct {
	fields  []string
	records []extract.Record
}

// NewTable creates an empty table over the registry's field set.
func NewTable(fields []string) *Table {
	return &Table{fields: fields}
}

// Append adds one record. Records with a foreign field set are still stored
// as-is; the schema is fixed by the table, not the record.
func (t *Table) Append(rec extract.Record) {
	t.records = append(t.records, rec)
}

// Len reports the number of aggregated records.
func (t *Table) Len() int { return len(t.records) }

// Header is the export column schema: Image followed by the registry fields
// in declaration order.
func (t *Table) Header() []string {
	return append([]string{"Image"}, t.fields...)
}

// Rows renders every record as a flat row matching Header.
func (t *Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.records))
	for _, rec := range t.records {
		row := make([]string, 0, len(t.fields)+1)
		row = append(row, rec.Image)
		for _, f := range t.fields {
			row = append(row, rec.Get(f).Text)
		}
		rows = append(rows, row)
	}
	return rows
}

// Records exposes the aggregated records in arrival order.
func (t *Table) Records() []extract.Record {
	return t.records
}
