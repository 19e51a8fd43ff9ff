package tabskema

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/reoring/tabskema/codec"
)

// DefaultMissingValues is used when neither a field nor its schema declares
// missing-value tokens. With the default, an empty string written by
// WriteCell reads back as missing (nil); declare other tokens to keep ""
// as a value.
var DefaultMissingValues = []string{""}

// Note is a single reason why a cell failed to read or write.
type Note struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// Notes is an ordered set of notes keyed by name ("type", a constraint name,
// or "arrayItem.<name>").
type Notes []Note

// Get returns the note text stored under name.
func (ns Notes) Get(name string) (string, bool) {
	for _, n := range ns {
		if n.Name == name {
			return n.Text, true
		}
	}
	return "", false
}

// Has reports whether a note is stored under name.
func (ns Notes) Has(name string) bool {
	_, ok := ns.Get(name)
	return ok
}

func (ns Notes) add(name, text string) Notes {
	if ns.Has(name) {
		return ns
	}
	return append(ns, Note{Name: name, Text: text})
}

// Field is a named, typed column. It is immutable once built; mutations go
// through a descriptor and NewField.
type Field struct {
	desc   FieldDescriptor
	codec  codec.Codec
	opt    *codec.Options
	item   *Field
	schema *Schema

	minimum any
	maximum any
	enum    []any
	pattern *regexp.Regexp
}

// NewField builds a field from its descriptor. Construction problems are
// returned as Errors of type field-error.
func NewField(reg *codec.Registry, d FieldDescriptor) (*Field, error) {
	return newField(reg, d, false)
}

func newField(reg *codec.Registry, d FieldDescriptor, nested bool) (*Field, error) {
	d = d.Clone()
	if d.Type == "" {
		d.Type = codec.TypeAny
	}
	if d.Name == "" {
		d.Name = d.Type
	}
	if d.Format == "" {
		d.Format = codec.DefaultFormat
	}
	c, ok := reg.Lookup(d.Type)
	if !ok {
		return nil, metadataErrors(ErrField, fmt.Sprintf("field %q: type %q is not supported", d.Name, d.Type))
	}
	f := &Field{desc: d, codec: c}
	f.opt = f.buildOptions()

	var notes []string
	if fc, ok := c.(codec.FormatChecker); ok && !fc.SupportsFormat(d.Format) {
		notes = append(notes, fmt.Sprintf("field %q: format %q is not supported by type %q", d.Name, d.Format, d.Type))
	}
	if d.ArrayItem != nil {
		switch {
		case nested:
			notes = append(notes, fmt.Sprintf("field %q: array item fields cannot be nested", d.Name))
		case d.Type != codec.TypeArray:
			notes = append(notes, fmt.Sprintf("field %q: array item is only allowed for type \"array\"", d.Name))
		case d.ArrayItem.Type == codec.TypeArray || d.ArrayItem.ArrayItem != nil:
			notes = append(notes, fmt.Sprintf("field %q: array item fields cannot be nested", d.Name))
		default:
			item, err := newField(reg, *d.ArrayItem, true)
			if err != nil {
				for _, e := range ToErrors(err, ErrField) {
					notes = append(notes, e.Note)
				}
			} else {
				f.item = item
			}
		}
	}
	notes = append(notes, f.compileConstraints()...)
	if len(notes) > 0 {
		return nil, metadataErrors(ErrField, notes...)
	}
	return f, nil
}

func (f *Field) buildOptions() *codec.Options {
	d := f.desc
	opt := codec.DefaultOptions()
	opt.Format = d.Format
	if d.TrueValues != nil {
		opt.TrueValues = d.TrueValues
	}
	if d.FalseValues != nil {
		opt.FalseValues = d.FalseValues
	}
	if d.BareNumber != nil {
		opt.BareNumber = *d.BareNumber
	}
	opt.FloatNumber = d.FloatNumber
	if d.DecimalChar != "" {
		opt.DecimalChar = d.DecimalChar
	}
	opt.GroupChar = d.GroupChar
	return opt
}

func (f *Field) compileConstraints() []string {
	c := f.desc.Constraints
	if c == nil {
		return nil
	}
	var notes []string
	for _, name := range c.Names() {
		switch {
		case !slices.Contains(constraintKeys, name):
			notes = append(notes, fmt.Sprintf("field %q: constraint %q is not recognised", f.desc.Name, name))
		case !codec.Accepts(f.codec, name):
			notes = append(notes, fmt.Sprintf("field %q: constraint %q is not supported by type %q", f.desc.Name, name, f.desc.Type))
		}
	}
	if len(notes) > 0 {
		return notes
	}
	if c.MinLength != nil && *c.MinLength < 0 {
		notes = append(notes, fmt.Sprintf("field %q: constraint \"minLength\" must not be negative", f.desc.Name))
	}
	if c.MaxLength != nil && *c.MaxLength < 0 {
		notes = append(notes, fmt.Sprintf("field %q: constraint \"maxLength\" must not be negative", f.desc.Name))
	}
	decodeBound := func(name string, raw any) any {
		v, ok := f.codec.Decode(raw, f.opt)
		if !ok {
			notes = append(notes, fmt.Sprintf("field %q: constraint %q value %v is not a valid %s", f.desc.Name, name, raw, f.desc.Type))
			return nil
		}
		return v
	}
	if c.Minimum != nil {
		f.minimum = decodeBound("minimum", c.Minimum)
	}
	if c.Maximum != nil {
		f.maximum = decodeBound("maximum", c.Maximum)
	}
	if (c.Minimum != nil || c.Maximum != nil) && !isComparer(f.codec) {
		notes = append(notes, fmt.Sprintf("field %q: type %q is not ordered", f.desc.Name, f.desc.Type))
	}
	for _, e := range c.Enum {
		v := decodeBound("enum", e)
		if items, ok := v.([]any); ok && f.item != nil {
			// Cells are read through the item field, so enum entries must be too.
			decoded := make([]any, len(items))
			for i, it := range items {
				iv, inotes := f.item.ReadCell(it)
				if inotes.Has("type") {
					notes = append(notes, fmt.Sprintf("field %q: constraint \"enum\" item %v is not a valid %s", f.desc.Name, it, f.item.desc.Type))
				}
				decoded[i] = iv
			}
			v = decoded
		}
		f.enum = append(f.enum, v)
	}
	if c.Pattern != "" {
		re, err := regexp.Compile("^(?:" + c.Pattern + ")$")
		if err != nil {
			notes = append(notes, fmt.Sprintf("field %q: constraint \"pattern\" is not a valid regular expression: %v", f.desc.Name, err))
		}
		f.pattern = re
	}
	return notes
}

func isComparer(c codec.Codec) bool {
	_, ok := c.(codec.Comparer)
	return ok
}

// Name returns the field name.
func (f *Field) Name() string { return f.desc.Name }

// Type returns the codec type name.
func (f *Field) Type() string { return f.desc.Type }

// Format returns the field format.
func (f *Field) Format() string { return f.desc.Format }

// Title returns the optional human title.
func (f *Field) Title() string { return f.desc.Title }

// Codec returns the codec the field is bound to.
func (f *Field) Codec() codec.Codec { return f.codec }

// ArrayItem returns the nested item field of an array field, or nil.
func (f *Field) ArrayItem() *Field { return f.item }

// Required reports whether the required constraint is set.
func (f *Field) Required() bool { return f.desc.Constraints != nil && f.desc.Constraints.Required }

// Unique reports whether the unique constraint is set.
func (f *Field) Unique() bool { return f.desc.Constraints != nil && f.desc.Constraints.Unique }

// Descriptor returns a copy of the field descriptor. The default format is
// left out.
func (f *Field) Descriptor() FieldDescriptor {
	d := f.desc.Clone()
	if d.Format == codec.DefaultFormat {
		d.Format = ""
	}
	if f.item != nil {
		item := f.item.Descriptor()
		d.ArrayItem = &item
	}
	return d
}

// MissingValues returns the field's own tokens, else the owning schema's,
// else DefaultMissingValues.
func (f *Field) MissingValues() []string {
	switch {
	case f.desc.MissingValues != nil:
		return f.desc.MissingValues
	case f.schema != nil:
		return f.schema.MissingValues()
	}
	return DefaultMissingValues
}

// bind returns a copy of f owned by s.
func (f *Field) bind(s *Schema) *Field {
	c := *f
	c.schema = s
	if f.item != nil {
		c.item = f.item.bind(s)
	}
	return &c
}

// IsMissing reports whether raw is nil or one of the missing-value tokens.
func (f *Field) IsMissing(raw any) bool {
	if raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && slices.Contains(f.MissingValues(), s)
}

// ReadCell decodes raw and evaluates every constraint. A missing cell reads
// as nil and only violates "required".
func (f *Field) ReadCell(raw any) (any, Notes) {
	var notes Notes
	if f.IsMissing(raw) {
		if f.Required() {
			notes = notes.add("required", `constraint "required" is "true"`)
		}
		return nil, notes
	}
	v, ok := f.codec.Decode(raw, f.opt)
	if !ok {
		return nil, notes.add("type", fmt.Sprintf("type is %q", f.desc.Type+"/"+f.desc.Format))
	}
	if f.item != nil {
		if items, isList := v.([]any); isList {
			decoded := make([]any, len(items))
			for i, it := range items {
				iv, inotes := f.item.ReadCell(it)
				decoded[i] = iv
				for _, n := range inotes {
					notes = notes.add("arrayItem."+n.Name, "array item "+n.Text)
				}
			}
			v = decoded
		}
	}
	return v, append(notes, f.checkConstraints(v)...)
}

// checkConstraints evaluates constraints in a fixed order without stopping
// at the first violation.
func (f *Field) checkConstraints(v any) Notes {
	c := f.desc.Constraints
	if c == nil {
		return nil
	}
	var notes Notes
	violated := func(name string, value any) {
		notes = notes.add(name, fmt.Sprintf("constraint %q is %q", name, constraintText(value)))
	}
	if c.MinLength != nil {
		if n, ok := length(v); ok && n < *c.MinLength {
			violated("minLength", *c.MinLength)
		}
	}
	if c.MaxLength != nil {
		if n, ok := length(v); ok && n > *c.MaxLength {
			violated("maxLength", *c.MaxLength)
		}
	}
	if cmp, ok := f.codec.(codec.Comparer); ok {
		if f.minimum != nil && cmp.Compare(v, f.minimum) < 0 {
			violated("minimum", c.Minimum)
		}
		if f.maximum != nil && cmp.Compare(v, f.maximum) > 0 {
			violated("maximum", c.Maximum)
		}
	}
	if f.pattern != nil {
		if s, ok := v.(string); ok && !f.pattern.MatchString(s) {
			violated("pattern", c.Pattern)
		}
	}
	if c.Enum != nil && !slices.ContainsFunc(f.enum, func(e any) bool { return codec.Equal(v, e) }) {
		violated("enum", c.Enum)
	}
	return notes
}

func length(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), true
	case []any:
		return len(x), true
	case map[string]any:
		return len(x), true
	}
	return 0, false
}

func constraintText(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, len(list))
		for i, x := range list {
			parts[i] = fmt.Sprint(x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}

// WriteCell encodes v. A nil value becomes the first missing-value token, or
// stays nil when ignoreMissing is set.
func (f *Field) WriteCell(v any, ignoreMissing bool) (any, Notes) {
	if v == nil {
		if ignoreMissing {
			return nil, nil
		}
		if mv := f.MissingValues(); len(mv) > 0 {
			return mv[0], nil
		}
		return "", nil
	}
	s, ok := f.codec.Encode(v, f.opt)
	if !ok {
		return nil, Notes{{Name: "type", Text: fmt.Sprintf("type is %q", f.desc.Type+"/"+f.desc.Format)}}
	}
	return s, nil
}
