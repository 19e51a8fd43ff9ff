package resource

import (
	"fmt"

	"github.com/reoring/tabskema"
)

// Row is one data row read through the schema.
type Row struct {
	// Number is the 1-based ordinal among kept rows, header rows included.
	Number int
	// Position is the physical 1-based position in the source.
	Position int
	Cells    []any
	Values   []any
	Errors   []tabskema.Error
	Blank    bool

	schema *tabskema.Schema
	// typeErrors marks fields whose cell failed to decode.
	typeErrors []bool
}

// Valid reports whether the row has no errors.
func (r *Row) Valid() bool { return len(r.Errors) == 0 }

// Value returns the decoded value of the named field.
func (r *Row) Value(name string) (any, bool) {
	for i, n := range r.schema.FieldNames() {
		if n == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Map returns the decoded values keyed by field name.
func (r *Row) Map() map[string]any {
	out := make(map[string]any, len(r.Values))
	for i, n := range r.schema.FieldNames() {
		out[n] = r.Values[i]
	}
	return out
}

// CellText renders a raw cell for error reports.
func CellText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	}
	return fmt.Sprint(v)
}

func cellTexts(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = CellText(c)
	}
	return out
}

// HasTypeError reports whether the i-th field's cell failed to decode.
func (r *Row) HasTypeError(i int) bool { return i < len(r.typeErrors) && r.typeErrors[i] }

// CellError builds a cell-level error bound to this row.
func (r *Row) CellError(typ, note string, fieldIndex int) tabskema.Error {
	var cell any
	if fieldIndex < len(r.Cells) {
		cell = r.Cells[fieldIndex]
	}
	name := ""
	if f, ok := r.schema.FieldAt(fieldIndex); ok {
		name = f.Name()
	}
	return tabskema.NewCellError(typ, note, r.Number, cellTexts(r.Cells), CellText(cell), name, fieldIndex+1)
}

// RowError builds a row-level error bound to this row.
func (r *Row) RowError(typ, note string) tabskema.Error {
	return tabskema.NewRowError(typ, note, r.Number, cellTexts(r.Cells))
}

// readRow decodes cells and collects cell errors. A row whose fields are all
// empty is blank, and its only error is blank-row.
func readRow(schema *tabskema.Schema, number, position int, cells []any) *Row {
	r := &Row{Number: number, Position: position, Cells: cells, schema: schema}
	fields := schema.Fields()
	r.Values = make([]any, len(fields))
	r.typeErrors = make([]bool, len(fields))
	blank := 0
	for i, f := range fields {
		var source any
		if i < len(cells) {
			source = cells[i]
		}
		v, notes := f.ReadCell(source)
		r.Values[i] = v
		typeNote := false
		for _, n := range notes {
			if n.Name == "type" {
				typeNote = true
				r.typeErrors[i] = true
				r.Errors = append(r.Errors, r.CellError(tabskema.ErrType, n.Text, i))
			}
		}
		for _, n := range notes {
			if n.Name != "type" {
				r.Errors = append(r.Errors, r.CellError(tabskema.ErrConstraint, n.Text, i))
			}
		}
		if v == nil && !typeNote {
			blank++
		}
	}
	for i := len(fields); i < len(cells); i++ {
		r.Errors = append(r.Errors, tabskema.NewCellError(tabskema.ErrExtraCell, "", number, cellTexts(cells), CellText(cells[i]), "", i+1))
	}
	for i := len(cells); i < len(fields); i++ {
		r.Errors = append(r.Errors, tabskema.NewCellError(tabskema.ErrMissingCell, "", number, cellTexts(cells), "", fields[i].Name(), i+1))
	}
	if len(fields) > 0 && blank == len(fields) {
		r.Blank = true
		r.Errors = []tabskema.Error{r.RowError(tabskema.ErrBlankRow, "")}
	}
	return r
}
