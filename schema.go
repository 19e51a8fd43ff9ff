package tabskema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/tabskema/codec"
)

// Schema is an ordered collection of fields with table-level metadata. Fields
// are addressed by position and by name through an index rebuilt on every
// structural change.
//
// A Schema is not safe for concurrent mutation. Validation treats it as
// read-only for the duration of a run.
type Schema struct {
	fields        []*Field
	index         map[string]int
	missingValues []string
	primaryKey    []string
	foreignKeys   []ForeignKey
}

// NewSchema builds and validates a schema. Field problems are reported as
// field-error entries and table-level problems as schema-error entries.
func NewSchema(reg *codec.Registry, d SchemaDescriptor) (*Schema, error) {
	s := &Schema{
		missingValues: cloneStrings(d.MissingValues),
		primaryKey:    cloneStrings(d.PrimaryKey),
	}
	if s.missingValues == nil {
		s.missingValues = cloneStrings(DefaultMissingValues)
	}
	var errs Errors
	for _, fd := range d.Fields {
		f, err := NewField(reg, fd)
		if err != nil {
			errs = append(errs, ToErrors(err, ErrField)...)
			continue
		}
		s.fields = append(s.fields, f.bind(s))
	}
	s.foreignKeys = d.Clone().ForeignKeys
	s.reindex()
	errs = append(errs, s.check()...)
	if len(errs) > 0 {
		return nil, errs
	}
	return s, nil
}

// NewSchemaFromFields builds a schema around already constructed fields.
func NewSchemaFromFields(fields ...*Field) (*Schema, error) {
	s := &Schema{missingValues: cloneStrings(DefaultMissingValues)}
	if err := s.SetFields(fields...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) reindex() {
	s.index = make(map[string]int, len(s.fields))
	for i, f := range s.fields {
		if _, dup := s.index[f.Name()]; !dup {
			s.index[f.Name()] = i
		}
	}
}

// check verifies the cross-field invariants.
func (s *Schema) check() Errors {
	var notes []string
	if dups := duplicates(s.FieldNames()); len(dups) > 0 {
		notes = append(notes, fmt.Sprintf("names of the fields are not unique: %s", strings.Join(dups, ", ")))
	}
	for _, name := range s.primaryKey {
		if _, ok := s.index[name]; !ok {
			notes = append(notes, fmt.Sprintf("primary key %q does not match a field", name))
		}
	}
	for _, fk := range s.foreignKeys {
		for _, name := range fk.Fields {
			if _, ok := s.index[name]; !ok {
				notes = append(notes, fmt.Sprintf("foreign key %q does not match a field", name))
			}
		}
		if len(fk.Fields) != len(fk.Reference.Fields) {
			notes = append(notes, fmt.Sprintf("foreign key fields %q do not match the reference fields %q", fk.Fields, fk.Reference.Fields))
		}
		if len(fk.Fields) == 0 {
			notes = append(notes, "foreign key must name at least one field")
		}
	}
	return metadataErrors(ErrSchema, notes...)
}

func duplicates(names []string) []string {
	seen := map[string]int{}
	var out []string
	for _, n := range names {
		seen[n]++
		if seen[n] == 2 {
			out = append(out, strconv.Quote(n))
		}
	}
	return out
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the fields in column order.
func (s *Schema) Fields() []*Field { return slices.Clone(s.fields) }

// FieldNames returns the field names in column order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name()
	}
	return out
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// FieldAt returns the field at the 0-based position i.
func (s *Schema) FieldAt(i int) (*Field, bool) {
	if i < 0 || i >= len(s.fields) {
		return nil, false
	}
	return s.fields[i], true
}

// HasField reports whether a field named name exists.
func (s *Schema) HasField(name string) bool {
	_, ok := s.index[name]
	return ok
}

// MissingValues returns the schema-level missing-value tokens.
func (s *Schema) MissingValues() []string { return s.missingValues }

// PrimaryKey returns the primary key field names.
func (s *Schema) PrimaryKey() []string { return slices.Clone(s.primaryKey) }

// ForeignKeys returns the foreign keys.
func (s *Schema) ForeignKeys() []ForeignKey { return SchemaDescriptor{ForeignKeys: s.foreignKeys}.Clone().ForeignKeys }

// AddField appends f. The name must not be taken.
func (s *Schema) AddField(f *Field) error {
	if s.HasField(f.Name()) {
		return metadataErrors(ErrSchema, fmt.Sprintf("field %q already exists", f.Name()))
	}
	if s.index == nil {
		s.reindex()
	}
	s.fields = append(s.fields, f.bind(s))
	s.index[f.Name()] = len(s.fields) - 1
	return nil
}

// RemoveField removes the field named name, returning it.
func (s *Schema) RemoveField(name string) (*Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	f := s.fields[i]
	s.fields = slices.Delete(s.fields, i, i+1)
	s.reindex()
	return f, true
}

// SetFields replaces every field. Names must be unique.
func (s *Schema) SetFields(fields ...*Field) error {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	if dups := duplicates(names); len(dups) > 0 {
		return metadataErrors(ErrSchema, fmt.Sprintf("names of the fields are not unique: %s", strings.Join(dups, ", ")))
	}
	s.fields = make([]*Field, len(fields))
	for i, f := range fields {
		s.fields[i] = f.bind(s)
	}
	s.reindex()
	return nil
}

// ReadCells reads one row of raw cells. Cells beyond the row are read as
// missing.
func (s *Schema) ReadCells(cells []any) ([]any, []Notes) {
	values := make([]any, len(s.fields))
	notes := make([]Notes, len(s.fields))
	for i, f := range s.fields {
		var raw any
		if i < len(cells) {
			raw = cells[i]
		}
		values[i], notes[i] = f.ReadCell(raw)
	}
	return values, notes
}

// WriteCells encodes one row of values.
func (s *Schema) WriteCells(values []any, ignoreMissing bool) ([]any, []Notes) {
	cells := make([]any, len(s.fields))
	notes := make([]Notes, len(s.fields))
	for i, f := range s.fields {
		var v any
		if i < len(values) {
			v = values[i]
		}
		cells[i], notes[i] = f.WriteCell(v, ignoreMissing)
	}
	return cells, notes
}

// Descriptor returns the plain-data form of the schema. Fields inheriting
// their missing values are written without them.
func (s *Schema) Descriptor() SchemaDescriptor {
	d := SchemaDescriptor{
		Fields:     make([]FieldDescriptor, len(s.fields)),
		PrimaryKey: cloneStrings(s.primaryKey),
	}
	for i, f := range s.fields {
		d.Fields[i] = f.Descriptor()
	}
	if !slices.Equal(s.missingValues, DefaultMissingValues) {
		d.MissingValues = cloneStrings(s.missingValues)
	}
	d.ForeignKeys = s.ForeignKeys()
	return d
}

// Clone returns an independent copy sharing no mutable state.
func (s *Schema) Clone() *Schema {
	c := &Schema{
		missingValues: cloneStrings(s.missingValues),
		primaryKey:    cloneStrings(s.primaryKey),
		foreignKeys:   s.ForeignKeys(),
	}
	c.fields = make([]*Field, len(s.fields))
	for i, f := range s.fields {
		c.fields[i] = f.bind(c)
	}
	c.reindex()
	return c
}
