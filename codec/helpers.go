package codec

import (
	"math"
	"reflect"
	"regexp"
	"strings"
)

// rawString returns the textual content of raw when it is a string or a
// named string type (json.Number included).
func rawString(raw any) (string, bool) {
	if s, ok := raw.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(raw)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// rawInt returns raw as an int64 when it is a native integer or an integral
// float.
func rawInt(raw any) (int64, bool) {
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// decoration matches everything before the first sign/digit and after the
// last digit, which bare-number mode strips (e.g. "$1,000", "95%").
var decoration = regexp.MustCompile(`((^[^-\d]*)|(\D*$))`)

func stripDecoration(s string) string { return decoration.ReplaceAllString(s, "") }

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// customFormat strips the legacy "fmt:" prefix of strftime patterns.
func customFormat(format string) string { return strings.TrimPrefix(format, "fmt:") }
