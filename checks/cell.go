package checks

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/resource"
)

// ASCIIValue flags string cells with non-ASCII characters.
type ASCIIValue struct {
	base
}

func NewASCIIValue() *ASCIIValue { return &ASCIIValue{} }

func (*ASCIIValue) Type() string    { return TypeASCIIValue }
func (*ASCIIValue) Scope() []string { return []string{tabskema.ErrASCIIValue} }

func (c *ASCIIValue) ValidateRow(r *resource.Row) []tabskema.Error {
	var out []tabskema.Error
	for i, v := range r.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		for j := 0; j < len(s); j++ {
			if s[j] >= utf8.RuneSelf {
				out = append(out, r.CellError(tabskema.ErrASCIIValue, "the cell contains non-ascii characters", i))
				break
			}
		}
	}
	return out
}

// Lengths and integer maxima that usually mean a value was cut by a
// fixed-width column.
var (
	truncatedStringLengths = []int{255}
	truncatedIntegerValues = []int64{
		9223372036854775807, // bigint
		4294967295,          // unsigned int
		2147483647,          // int
		2097152,             // summed int
		65535,               // unsigned smallint
		32767,               // smallint
	}
)

// TruncatedValue flags values that look truncated by a database column.
type TruncatedValue struct {
	base
}

func NewTruncatedValue() *TruncatedValue { return &TruncatedValue{} }

func (*TruncatedValue) Type() string    { return TypeTruncatedValue }
func (*TruncatedValue) Scope() []string { return []string{tabskema.ErrTruncatedValue} }

func (c *TruncatedValue) ValidateRow(r *resource.Row) []tabskema.Error {
	var out []tabskema.Error
	for i, v := range r.Values {
		truncated := false
		switch x := v.(type) {
		case string:
			for _, n := range truncatedStringLengths {
				truncated = truncated || utf8.RuneCountInString(x) == n
			}
		case int64:
			for _, n := range truncatedIntegerValues {
				truncated = truncated || x == n
			}
		}
		if truncated {
			out = append(out, r.CellError(tabskema.ErrTruncatedValue, "value is probably truncated", i))
		}
	}
	return out
}

// ForbiddenValueOptions configures ForbiddenValue.
type ForbiddenValueOptions struct {
	FieldName string `json:"fieldName" yaml:"fieldName" validate:"required"`
	Values    []any  `json:"values" yaml:"values" validate:"required,min=1"`
}

// ForbiddenValue flags cells of one field whose value is in a deny list.
// Forbidden values are read through the field, so "1" forbids the integer 1.
type ForbiddenValue struct {
	base
	opt       ForbiddenValueOptions
	index     int
	forbidden []any
}

func NewForbiddenValue(opt ForbiddenValueOptions) *ForbiddenValue {
	return &ForbiddenValue{opt: opt}
}

func (*ForbiddenValue) Type() string    { return TypeForbiddenValue }
func (*ForbiddenValue) Scope() []string { return []string{tabskema.ErrForbiddenValue} }

func (c *ForbiddenValue) MetadataErrors() []tabskema.Error {
	return optionErrors(TypeForbiddenValue, c.opt)
}

func (c *ForbiddenValue) ValidateStart() []tabskema.Error {
	i, ok := c.fieldIndex(c.opt.FieldName)
	if !ok {
		return []tabskema.Error{tabskema.NewErrorf(tabskema.ErrCheck, "forbidden value check requires field %q", c.opt.FieldName)}
	}
	c.index = i
	field := c.table.Schema().Fields()[i]
	c.forbidden = c.forbidden[:0]
	for _, raw := range c.opt.Values {
		v, notes := field.ReadCell(raw)
		if len(notes) > 0 || v == nil {
			v = raw
		}
		c.forbidden = append(c.forbidden, v)
	}
	return nil
}

func (c *ForbiddenValue) ValidateRow(r *resource.Row) []tabskema.Error {
	v := r.Values[c.index]
	if v == nil {
		return nil
	}
	for _, f := range c.forbidden {
		if codec.Equal(v, f) {
			return []tabskema.Error{r.CellError(tabskema.ErrForbiddenValue, forbiddenNote(c.opt.Values), c.index)}
		}
	}
	return nil
}

func forbiddenNote(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("forbidden values are %q", strings.Join(parts, ", "))
}

// SequentialValueOptions configures SequentialValue.
type SequentialValueOptions struct {
	FieldName string `json:"fieldName" yaml:"fieldName" validate:"required"`
}

// SequentialValue requires an integer field to increase by one on every row.
// After the first break it stops reporting.
type SequentialValue struct {
	base
	opt    SequentialValueOptions
	index  int
	cursor *int64
	exited bool
}

func NewSequentialValue(opt SequentialValueOptions) *SequentialValue {
	return &SequentialValue{opt: opt}
}

func (*SequentialValue) Type() string    { return TypeSequentialValue }
func (*SequentialValue) Scope() []string { return []string{tabskema.ErrSequentialValue} }

func (c *SequentialValue) MetadataErrors() []tabskema.Error {
	return optionErrors(TypeSequentialValue, c.opt)
}

func (c *SequentialValue) ValidateStart() []tabskema.Error {
	i, ok := c.fieldIndex(c.opt.FieldName)
	if !ok {
		return []tabskema.Error{tabskema.NewErrorf(tabskema.ErrCheck, "sequential value check requires field %q", c.opt.FieldName)}
	}
	c.index = i
	return nil
}

func (c *SequentialValue) ValidateRow(r *resource.Row) []tabskema.Error {
	if c.exited {
		return nil
	}
	n, ok := r.Values[c.index].(int64)
	if ok && (c.cursor == nil || *c.cursor == n) {
		next := n + 1
		c.cursor = &next
		return nil
	}
	c.exited = true
	return []tabskema.Error{r.CellError(tabskema.ErrSequentialValue, "the value is not sequential", c.index)}
}
