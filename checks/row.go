package checks

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/resource"
)

// DuplicateRow flags rows whose values repeat an earlier row. Blank rows are
// left to the baseline check.
type DuplicateRow struct {
	base
	seen map[[sha256.Size]byte]int
}

func NewDuplicateRow() *DuplicateRow {
	return &DuplicateRow{seen: map[[sha256.Size]byte]int{}}
}

func (*DuplicateRow) Type() string    { return TypeDuplicateRow }
func (*DuplicateRow) Scope() []string { return []string{tabskema.ErrDuplicateRow} }

func (c *DuplicateRow) ValidateRow(r *resource.Row) []tabskema.Error {
	if r.Blank {
		return nil
	}
	key := sha256.Sum256([]byte(resource.KeyOf(r.Values)))
	if match, ok := c.seen[key]; ok {
		return []tabskema.Error{r.RowError(tabskema.ErrDuplicateRow, fmt.Sprintf(`the same as row at position "%d"`, match))}
	}
	c.seen[key] = r.Number
	return nil
}

// RowConstraintOptions configures RowConstraint.
type RowConstraintOptions struct {
	// Formula is a Starlark expression over the row's field names.
	Formula string `json:"formula" yaml:"formula" validate:"required"`
}

// RowConstraint evaluates a boolean Starlark expression for every row.
// A row fails when the expression is falsy or cannot be evaluated.
type RowConstraint struct {
	base
	opt    RowConstraintOptions
	fopts  *syntax.FileOptions
	expr   syntax.Expr
	parse  error
	thread *starlark.Thread
}

func NewRowConstraint(opt RowConstraintOptions) *RowConstraint {
	c := &RowConstraint{
		opt:    opt,
		fopts:  &syntax.FileOptions{},
		thread: &starlark.Thread{Name: TypeRowConstraint},
	}
	if opt.Formula != "" {
		c.expr, c.parse = c.fopts.ParseExpr("formula", opt.Formula, 0)
	}
	return c
}

func (*RowConstraint) Type() string    { return TypeRowConstraint }
func (*RowConstraint) Scope() []string { return []string{tabskema.ErrRowConstraint} }

func (c *RowConstraint) MetadataErrors() []tabskema.Error {
	errs := optionErrors(TypeRowConstraint, c.opt)
	if c.parse != nil {
		errs = append(errs, tabskema.NewErrorf(tabskema.ErrCheck, "%s: %v", TypeRowConstraint, c.parse))
	}
	return errs
}

func (c *RowConstraint) ValidateRow(r *resource.Row) []tabskema.Error {
	if c.expr == nil {
		return nil
	}
	env := make(starlark.StringDict, len(r.Values))
	for name, v := range r.Map() {
		env[name] = toStarlark(v)
	}
	result, err := starlark.EvalExprOptions(c.fopts, c.thread, c.expr, env)
	if err == nil && result.Truth() {
		return nil
	}
	return []tabskema.Error{r.RowError(tabskema.ErrRowConstraint, fmt.Sprintf("the row constraint to conform is %q", c.opt.Formula))}
}

// toStarlark converts a decoded cell value. Numbers become ints or floats,
// temporal values their canonical text, containers lists and dicts.
func toStarlark(v any) starlark.Value {
	switch x := v.(type) {
	case nil:
		return starlark.None
	case string:
		return starlark.String(x)
	case bool:
		return starlark.Bool(x)
	case int64:
		return starlark.MakeInt64(x)
	case int:
		return starlark.MakeInt(x)
	case float64:
		return starlark.Float(x)
	case decimal.Decimal:
		if x.IsInteger() && x.BigInt().IsInt64() {
			return starlark.MakeInt64(x.IntPart())
		}
		return starlark.Float(x.InexactFloat64())
	case time.Time:
		return starlark.String(x.Format(time.RFC3339Nano))
	case []any:
		list := make([]starlark.Value, len(x))
		for i, item := range x {
			list[i] = toStarlark(item)
		}
		return starlark.NewList(list)
	case map[string]any:
		dict := starlark.NewDict(len(x))
		for k, item := range x {
			_ = dict.SetKey(starlark.String(k), toStarlark(item))
		}
		return dict
	}
	return starlark.String(fmt.Sprint(v))
}
