package codec

import (
	"fmt"
	"strconv"
	"strings"
)

type yearCodec struct{}

func (yearCodec) Type() string          { return TypeYear }
func (yearCodec) Constraints() []string { return []string{Minimum, Maximum, Enum} }

func (yearCodec) Decode(raw any, _ *Options) (any, bool) {
	if _, isBool := raw.(bool); isBool {
		return nil, false
	}
	if n, ok := rawInt(raw); ok {
		if n < 0 || n > 9999 {
			return nil, false
		}
		return int(n), true
	}
	s, ok := rawString(raw)
	if !ok || len(s) != 4 || !allDigits(s) {
		return nil, false
	}
	n, _ := strconv.Atoi(s)
	return n, true
}

func (yearCodec) Encode(v any, _ *Options) (string, bool) {
	n, ok := rawInt(v)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

func (yearCodec) Compare(a, b any) int {
	x, _ := rawInt(a)
	y, _ := rawInt(b)
	return compareInts(x, y)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// YearMonth is the decoded value of the yearmonth type.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month) }

type yearmonthCodec struct{}

func (yearmonthCodec) Type() string          { return TypeYearmonth }
func (yearmonthCodec) Constraints() []string { return []string{Minimum, Maximum, Enum} }

func (yearmonthCodec) Decode(raw any, _ *Options) (any, bool) {
	var year, month int64
	switch v := raw.(type) {
	case YearMonth:
		year, month = int64(v.Year), int64(v.Month)
	case []any:
		if len(v) != 2 {
			return nil, false
		}
		y, ok1 := rawInt(v[0])
		m, ok2 := rawInt(v[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		year, month = y, m
	case []int:
		if len(v) != 2 {
			return nil, false
		}
		year, month = int64(v[0]), int64(v[1])
	default:
		s, ok := rawString(raw)
		if !ok {
			return nil, false
		}
		ys, ms, found := strings.Cut(s, "-")
		if !found || len(ys) != 4 || len(ms) != 2 || !allDigits(ys) || !allDigits(ms) {
			return nil, false
		}
		y, _ := strconv.Atoi(ys)
		m, _ := strconv.Atoi(ms)
		year, month = int64(y), int64(m)
	}
	if month < 1 || month > 12 {
		return nil, false
	}
	return YearMonth{Year: int(year), Month: int(month)}, true
}

func (yearmonthCodec) Encode(v any, _ *Options) (string, bool) {
	ym, ok := v.(YearMonth)
	if !ok {
		return "", false
	}
	return ym.String(), true
}

func (yearmonthCodec) Compare(a, b any) int {
	x, _ := a.(YearMonth)
	y, _ := b.(YearMonth)
	if c := compareInts(int64(x.Year), int64(y.Year)); c != 0 {
		return c
	}
	return compareInts(int64(x.Month), int64(y.Month))
}
