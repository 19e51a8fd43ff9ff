package checks

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/resource"
)

const defaultInterval = 3

// deviatedCellThreshold is the smallest cell size ever reported.
const deviatedCellThreshold = 5000

// DeviatedCellOptions configures DeviatedCell.
type DeviatedCellOptions struct {
	Interval     float64  `json:"interval,omitempty" yaml:"interval,omitempty" validate:"gte=0"`
	IgnoreFields []string `json:"ignoreFields,omitempty" yaml:"ignoreFields,omitempty"`
}

// DeviatedCell flags string cells whose size is far above the median size
// of their column.
type DeviatedCell struct {
	base
	opt   DeviatedCellOptions
	sizes map[int][]cellSize
}

type cellSize struct {
	row  int
	size int
}

func NewDeviatedCell(opt DeviatedCellOptions) *DeviatedCell {
	if opt.Interval == 0 {
		opt.Interval = defaultInterval
	}
	return &DeviatedCell{opt: opt, sizes: map[int][]cellSize{}}
}

func (*DeviatedCell) Type() string    { return TypeDeviatedCell }
func (*DeviatedCell) Scope() []string { return []string{tabskema.ErrDeviatedCell} }

func (c *DeviatedCell) MetadataErrors() []tabskema.Error {
	return optionErrors(TypeDeviatedCell, c.opt)
}

func (c *DeviatedCell) ValidateRow(r *resource.Row) []tabskema.Error {
	for i, f := range c.table.Schema().Fields() {
		if f.Type() != codec.TypeString || slices.Contains(c.opt.IgnoreFields, f.Name()) {
			continue
		}
		if s, ok := r.Values[i].(string); ok && s != "" {
			c.sizes[i] = append(c.sizes[i], cellSize{row: r.Number, size: utf8.RuneCountInString(s)})
		}
	}
	return nil
}

func (c *DeviatedCell) ValidateEnd() []tabskema.Error {
	var out []tabskema.Error
	fields := c.table.Schema().Fields()
	for i := range fields {
		cells := c.sizes[i]
		if len(cells) < 2 {
			continue
		}
		values := make([]float64, len(cells))
		for j, cs := range cells {
			values[j] = float64(cs.size)
		}
		threshold := max(float64(deviatedCellThreshold), median(values)+stdev(values)*c.opt.Interval)
		for _, cs := range cells {
			if float64(cs.size) > threshold {
				note := fmt.Sprintf("cell at row %q and field %q has deviated size", fmt.Sprint(cs.row), fields[i].Name())
				out = append(out, tabskema.NewCellError(tabskema.ErrDeviatedCell, note, cs.row, nil, "", fields[i].Name(), i+1))
			}
		}
	}
	return out
}

// DeviatedValueOptions configures DeviatedValue.
type DeviatedValueOptions struct {
	FieldName string  `json:"fieldName" yaml:"fieldName" validate:"required"`
	Interval  float64 `json:"interval,omitempty" yaml:"interval,omitempty" validate:"gte=0"`
	Average   string  `json:"average,omitempty" yaml:"average,omitempty" validate:"omitempty,oneof=mean median mode"`
}

// DeviatedValue flags numeric values outside average ± interval·stdev.
type DeviatedValue struct {
	base
	opt    DeviatedValueOptions
	index  int
	values []float64
	texts  []string
	rows   []int
}

func NewDeviatedValue(opt DeviatedValueOptions) *DeviatedValue {
	if opt.Interval == 0 {
		opt.Interval = defaultInterval
	}
	if opt.Average == "" {
		opt.Average = "mean"
	}
	return &DeviatedValue{opt: opt}
}

func (*DeviatedValue) Type() string    { return TypeDeviatedValue }
func (*DeviatedValue) Scope() []string { return []string{tabskema.ErrDeviatedValue} }

func (c *DeviatedValue) MetadataErrors() []tabskema.Error {
	return optionErrors(TypeDeviatedValue, c.opt)
}

func (c *DeviatedValue) ValidateStart() []tabskema.Error {
	i, ok := c.fieldIndex(c.opt.FieldName)
	if !ok {
		return []tabskema.Error{tabskema.NewErrorf(tabskema.ErrCheck, "deviated value check requires field %q to exist", c.opt.FieldName)}
	}
	if t := c.table.Schema().Fields()[i].Type(); t != codec.TypeInteger && t != codec.TypeNumber {
		return []tabskema.Error{tabskema.NewErrorf(tabskema.ErrCheck, "deviated value check requires field %q to be numeric", c.opt.FieldName)}
	}
	c.index = i
	return nil
}

func (c *DeviatedValue) ValidateRow(r *resource.Row) []tabskema.Error {
	var f float64
	switch v := r.Values[c.index].(type) {
	case int64:
		f = float64(v)
	case decimal.Decimal:
		f = v.InexactFloat64()
	case float64:
		f = v
	default:
		return nil
	}
	c.values = append(c.values, f)
	c.texts = append(c.texts, resource.CellText(r.Values[c.index]))
	c.rows = append(c.rows, r.Number)
	return nil
}

func (c *DeviatedValue) ValidateEnd() []tabskema.Error {
	if len(c.values) < 2 {
		return nil
	}
	var average float64
	switch c.opt.Average {
	case "median":
		average = median(c.values)
	case "mode":
		average = mode(c.values)
	default:
		average = mean(c.values)
	}
	sd := stdev(c.values)
	lo, hi := average-sd*c.opt.Interval, average+sd*c.opt.Interval
	var out []tabskema.Error
	for i, v := range c.values {
		if v < lo || v > hi {
			note := fmt.Sprintf(`value "%s" in row at position "%d" and field "%s" is deviated "[%.2f, %.2f]"`,
				c.texts[i], c.rows[i], c.opt.FieldName, lo, hi)
			out = append(out, tabskema.NewError(tabskema.ErrDeviatedValue, note))
		}
	}
	return out
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdev is the sample standard deviation.
func stdev(xs []float64) float64 {
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func median(xs []float64) float64 {
	s := slices.Clone(xs)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// mode returns the most common value; ties go to the first seen.
func mode(xs []float64) float64 {
	counts := map[float64]int{}
	top := 0
	for _, x := range xs {
		counts[x]++
		top = max(top, counts[x])
	}
	for _, x := range xs {
		if counts[x] == top {
			return x
		}
	}
	return xs[0]
}
