package checks

import (
	"fmt"
	"strings"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/resource"
)

// Baseline reports header, row and cell errors produced while reading, and
// compares the measured statistics with the expected ones.
type Baseline struct {
	base
}

// NewBaseline returns the baseline check.
func NewBaseline() *Baseline { return &Baseline{} }

func (*Baseline) Type() string { return TypeBaseline }

func (*Baseline) Scope() []string {
	return []string{
		tabskema.ErrHashCount, tabskema.ErrByteCount, tabskema.ErrFieldCount, tabskema.ErrRowCount,
		tabskema.ErrBlankHeader, tabskema.ErrExtraLabel, tabskema.ErrMissingLabel,
		tabskema.ErrBlankLabel, tabskema.ErrDuplicateLabel, tabskema.ErrIncorrectLabel,
		tabskema.ErrBlankRow, tabskema.ErrPrimaryKey, tabskema.ErrForeignKey,
		tabskema.ErrExtraCell, tabskema.ErrMissingCell, tabskema.ErrType,
		tabskema.ErrConstraint, tabskema.ErrUnique,
	}
}

func (c *Baseline) ValidateStart() []tabskema.Error {
	return c.table.Header().Errors
}

func (c *Baseline) ValidateRow(r *resource.Row) []tabskema.Error {
	return r.Errors
}

// ValidateEnd compares statistics. Zero expected values are not checked.
func (c *Baseline) ValidateEnd() []tabskema.Error {
	want := c.table.Resource().Stats
	got := c.table.Stats()
	var out []tabskema.Error
	if want.Hash != "" {
		expected := strings.TrimPrefix(want.Hash, "sha256:")
		if got.Hash != expected {
			out = append(out, tabskema.NewError(tabskema.ErrHashCount, mismatch(expected, got.Hash)))
		}
	}
	if want.Bytes != 0 && got.Bytes != want.Bytes {
		out = append(out, tabskema.NewError(tabskema.ErrByteCount, mismatch(want.Bytes, got.Bytes)))
	}
	if want.Fields != 0 && got.Fields != want.Fields {
		out = append(out, tabskema.NewError(tabskema.ErrFieldCount, mismatch(want.Fields, got.Fields)))
	}
	if want.Rows != 0 && got.Rows != want.Rows {
		out = append(out, tabskema.NewError(tabskema.ErrRowCount, mismatch(want.Rows, got.Rows)))
	}
	return out
}

func mismatch(expected, actual any) string {
	return fmt.Sprintf(`expected is "%v" and actual is "%v"`, expected, actual)
}
