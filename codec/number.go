package codec

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// numberCodec reads exact numbers as decimal.Decimal, or float64 when the
// field asks for floating point numbers.
type numberCodec struct{}

func (numberCodec) Type() string          { return TypeNumber }
func (numberCodec) Constraints() []string { return []string{Minimum, Maximum, Enum} }

func (numberCodec) Decode(raw any, opt *Options) (any, bool) {
	opt = orDefault(opt)
	if _, isBool := raw.(bool); isBool {
		return nil, false
	}
	var d decimal.Decimal
	switch v := raw.(type) {
	case decimal.Decimal:
		d = v
	case float64:
		if opt.FloatNumber {
			return v, true
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		d = decimal.NewFromFloat(v)
	case float32:
		return numberCodec{}.Decode(float64(v), opt)
	default:
		if n, ok := rawInt(raw); ok {
			d = decimal.NewFromInt(n)
			break
		}
		s, ok := rawString(raw)
		if !ok {
			return nil, false
		}
		s = normalizeNumber(s, opt)
		if opt.FloatNumber {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, false
			}
			return f, true
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return nil, false
		}
		d = parsed
	}
	if opt.FloatNumber {
		return d.InexactFloat64(), true
	}
	return d, true
}

func normalizeNumber(s string, opt *Options) string {
	if opt.GroupChar != "" {
		s = strings.ReplaceAll(s, opt.GroupChar, "")
	}
	if opt.DecimalChar != "" && opt.DecimalChar != "." {
		s = strings.ReplaceAll(s, opt.DecimalChar, ".")
	}
	if !opt.BareNumber {
		s = stripDecoration(s)
	}
	return strings.TrimSpace(s)
}

func (numberCodec) Encode(v any, opt *Options) (string, bool) {
	opt = orDefault(opt)
	var s string
	switch n := v.(type) {
	case decimal.Decimal:
		s = n.String()
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", false
		}
		s = strconv.FormatFloat(n, 'f', -1, 64)
	default:
		i, ok := rawInt(v)
		if !ok {
			return "", false
		}
		s = strconv.FormatInt(i, 10)
	}
	return formatNumber(s, opt), true
}

// formatNumber applies group and decimal separators to a plain number.
func formatNumber(s string, opt *Options) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if opt.GroupChar != "" {
		sign := ""
		if strings.HasPrefix(intPart, "-") {
			sign, intPart = "-", intPart[1:]
		}
		var b strings.Builder
		for i, r := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteString(opt.GroupChar)
			}
			b.WriteRune(r)
		}
		intPart = sign + b.String()
	}
	if !hasFrac {
		return intPart
	}
	dc := opt.DecimalChar
	if dc == "" {
		dc = "."
	}
	return intPart + dc + frac
}

func (numberCodec) Compare(a, b any) int {
	x, _ := toDecimal(a)
	y, _ := toDecimal(b)
	return x.Cmp(y)
}

// toDecimal converts the numeric values produced by the number and integer
// codecs to a decimal for comparisons.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	}
	if i, ok := rawInt(v); ok {
		return decimal.NewFromInt(i), true
	}
	return decimal.Decimal{}, false
}

// Equal reports whether two decoded values are equal, with numeric values
// compared by magnitude and times by instant.
func Equal(a, b any) bool {
	if da, ok := toDecimal(a); ok && isNumeric(a) {
		if db, ok := toDecimal(b); ok && isNumeric(b) {
			return da.Equal(db)
		}
		return false
	}
	if ta, ok := asTime(a); ok {
		tb, ok := asTime(b)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

func isNumeric(v any) bool {
	switch v.(type) {
	case decimal.Decimal, float64, float32:
		return true
	case bool:
		return false
	}
	_, ok := rawInt(v)
	return ok
}
