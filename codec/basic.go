package codec

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reoring/tabskema/internal/validation"
)

type stringCodec struct{}

func (stringCodec) Type() string { return TypeString }
func (stringCodec) Constraints() []string {
	return []string{MinLength, MaxLength, Pattern, Enum}
}

func (stringCodec) SupportsFormat(format string) bool {
	switch format {
	case DefaultFormat, "email", "uri", "binary", "uuid":
		return true
	}
	return false
}

func (stringCodec) Decode(raw any, opt *Options) (any, bool) {
	s, ok := rawString(raw)
	if !ok {
		return nil, false
	}
	switch opt.format() {
	case "email":
		if validation.Validator().Var(s, "email") != nil {
			return nil, false
		}
	case "uri":
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
			return nil, false
		}
	case "binary":
		if _, err := base64.StdEncoding.DecodeString(s); err != nil {
			return nil, false
		}
	case "uuid":
		if _, err := uuid.Parse(s); err != nil {
			return nil, false
		}
	}
	return s, true
}

func (stringCodec) Encode(v any, _ *Options) (string, bool) {
	return rawString(v)
}

type integerCodec struct{}

func (integerCodec) Type() string          { return TypeInteger }
func (integerCodec) Constraints() []string { return []string{Minimum, Maximum, Enum} }

func (integerCodec) Decode(raw any, opt *Options) (any, bool) {
	opt = orDefault(opt)
	if _, isBool := raw.(bool); isBool {
		return nil, false
	}
	if d, ok := raw.(decimal.Decimal); ok {
		if !d.IsInteger() || !d.BigInt().IsInt64() {
			return nil, false
		}
		return d.IntPart(), true
	}
	if n, ok := rawInt(raw); ok {
		return n, true
	}
	s, ok := rawString(raw)
	if !ok {
		return nil, false
	}
	if opt.GroupChar != "" {
		s = strings.ReplaceAll(s, opt.GroupChar, "")
	}
	if !opt.BareNumber {
		s = stripDecoration(s)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}

func (integerCodec) Encode(v any, _ *Options) (string, bool) {
	if _, isBool := v.(bool); isBool {
		return "", false
	}
	n, ok := rawInt(v)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

func (integerCodec) Compare(a, b any) int {
	x, _ := rawInt(a)
	y, _ := rawInt(b)
	return compareInts(x, y)
}

type booleanCodec struct{}

func (booleanCodec) Type() string          { return TypeBoolean }
func (booleanCodec) Constraints() []string { return []string{Enum} }

func (booleanCodec) Decode(raw any, opt *Options) (any, bool) {
	opt = orDefault(opt)
	if b, ok := raw.(bool); ok {
		return b, true
	}
	s, ok := rawString(raw)
	if !ok {
		return nil, false
	}
	if contains(opt.TrueValues, s) {
		return true, true
	}
	if contains(opt.FalseValues, s) {
		return false, true
	}
	return nil, false
}

func (booleanCodec) Encode(v any, opt *Options) (string, bool) {
	opt = orDefault(opt)
	b, ok := v.(bool)
	if !ok || len(opt.TrueValues) == 0 || len(opt.FalseValues) == 0 {
		return "", false
	}
	if b {
		return opt.TrueValues[0], true
	}
	return opt.FalseValues[0], true
}
