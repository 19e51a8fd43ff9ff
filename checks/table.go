package checks

import (
	"fmt"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/resource"
)

// TableDimensionsOptions configures TableDimensions. Zero means unchecked.
type TableDimensionsOptions struct {
	NumRows   int `json:"numRows,omitempty" yaml:"numRows,omitempty" validate:"gte=0"`
	MinRows   int `json:"minRows,omitempty" yaml:"minRows,omitempty" validate:"gte=0"`
	MaxRows   int `json:"maxRows,omitempty" yaml:"maxRows,omitempty" validate:"gte=0"`
	NumFields int `json:"numFields,omitempty" yaml:"numFields,omitempty" validate:"gte=0"`
	MinFields int `json:"minFields,omitempty" yaml:"minFields,omitempty" validate:"gte=0"`
	MaxFields int `json:"maxFields,omitempty" yaml:"maxFields,omitempty" validate:"gte=0"`
}

// TableDimensions checks the number of fields at start and the number of
// rows at end.
type TableDimensions struct {
	base
	opt  TableDimensionsOptions
	rows int
}

func NewTableDimensions(opt TableDimensionsOptions) *TableDimensions {
	return &TableDimensions{opt: opt}
}

func (*TableDimensions) Type() string    { return TypeTableDimensions }
func (*TableDimensions) Scope() []string { return []string{tabskema.ErrTableDimensions} }

func (c *TableDimensions) MetadataErrors() []tabskema.Error {
	errs := optionErrors(TypeTableDimensions, c.opt)
	if c.opt == (TableDimensionsOptions{}) {
		errs = append(errs, tabskema.NewErrorf(tabskema.ErrCheck, "%s: at least one dimension is required", TypeTableDimensions))
	}
	return errs
}

func (c *TableDimensions) ValidateStart() []tabskema.Error {
	return dimension("fields", c.table.Schema().Len(), c.opt.NumFields, c.opt.MinFields, c.opt.MaxFields)
}

func (c *TableDimensions) ValidateRow(*resource.Row) []tabskema.Error {
	c.rows++
	return nil
}

func (c *TableDimensions) ValidateEnd() []tabskema.Error {
	return dimension("rows", c.rows, c.opt.NumRows, c.opt.MinRows, c.opt.MaxRows)
}

func dimension(what string, got, exact, lo, hi int) []tabskema.Error {
	var out []tabskema.Error
	fail := func(kind string, want int) {
		out = append(out, tabskema.NewError(tabskema.ErrTableDimensions,
			fmt.Sprintf("number of %s is %d, the %s is %d", what, got, kind, want)))
	}
	if exact > 0 && got != exact {
		fail("required", exact)
	}
	if lo > 0 && got < lo {
		fail("minimum", lo)
	}
	if hi > 0 && got > hi {
		fail("maximum", hi)
	}
	return out
}
