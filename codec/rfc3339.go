package codec

import (
	"time"

	"github.com/ncruces/go-strftime"
)

// Temporal codecs. Formats are "default" (ISO 8601), "any" (a list of
// common layouts) or a strftime pattern such as "%d/%m/%Y".

var anyDateLayouts = []string{
	"2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006", "2 Jan 2006",
	"Jan 2, 2006", "January 2, 2006", "2 January 2006", "20060102",
	time.RFC3339Nano, "2006-01-02 15:04:05", time.RFC1123, time.RFC1123Z,
}

var anyTimeLayouts = []string{
	"15:04:05", "15:04", "3:04PM", "3:04 PM", "3:04:05PM", "3:04:05 PM",
	"15:04:05Z07:00", time.Kitchen,
}

var isoTimeLayouts = []string{"15:04:05", "15:04:05Z07:00", "15:04"}

var isoDatetimeLayouts = []string{
	time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05Z07:00", "2006-01-02 15:04:05",
}

func asTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

func parseLayouts(layouts []string, s string) (time.Time, bool) {
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTemporal(format, s string, defaults []string) (time.Time, bool) {
	switch format {
	case DefaultFormat:
		return parseLayouts(defaults, s)
	case "any":
		if t, ok := parseLayouts(defaults, s); ok {
			return t, true
		}
		return parseLayouts(append(append([]string{}, anyDateLayouts...), anyTimeLayouts...), s)
	default:
		t, err := strftime.Parse(customFormat(format), s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

func compareTimes(a, b any) int {
	x, _ := asTime(a)
	y, _ := asTime(b)
	return x.Compare(y)
}

type dateCodec struct{}

func (dateCodec) Type() string          { return TypeDate }
func (dateCodec) Constraints() []string { return []string{Minimum, Maximum, Enum} }
func (dateCodec) Compare(a, b any) int  { return compareTimes(a, b) }

func (dateCodec) Decode(raw any, opt *Options) (any, bool) {
	if t, ok := asTime(raw); ok {
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
			return nil, false
		}
		return dateOf(t), true
	}
	s, ok := rawString(raw)
	if !ok {
		return nil, false
	}
	t, ok := parseTemporal(opt.format(), s, []string{"2006-01-02"})
	if !ok {
		return nil, false
	}
	return dateOf(t), true
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dateCodec) Encode(v any, opt *Options) (string, bool) {
	t, ok := asTime(v)
	if !ok {
		return "", false
	}
	switch f := opt.format(); f {
	case DefaultFormat, "any":
		return t.Format("2006-01-02"), true
	default:
		return strftime.Format(customFormat(f), t), true
	}
}

type timeCodec struct{}

func (timeCodec) Type() string          { return TypeTime }
func (timeCodec) Constraints() []string { return []string{Minimum, Maximum, Enum} }
func (timeCodec) Compare(a, b any) int  { return compareTimes(a, b) }

func (timeCodec) Decode(raw any, opt *Options) (any, bool) {
	if t, ok := asTime(raw); ok {
		return clockOf(t), true
	}
	s, ok := rawString(raw)
	if !ok {
		return nil, false
	}
	t, ok := parseTemporal(opt.format(), s, isoTimeLayouts)
	if !ok {
		return nil, false
	}
	return clockOf(t), true
}

// clockOf drops the date part so that time values compare by clock only.
func clockOf(t time.Time) time.Time {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func (timeCodec) Encode(v any, opt *Options) (string, bool) {
	t, ok := asTime(v)
	if !ok {
		return "", false
	}
	switch f := opt.format(); f {
	case DefaultFormat, "any":
		layout := "15:04:05"
		if t.Nanosecond() != 0 {
			layout += ".999999999"
		}
		if t.Location() != time.UTC {
			layout += "Z07:00"
		}
		return t.Format(layout), true
	default:
		return strftime.Format(customFormat(f), t), true
	}
}

type datetimeCodec struct{}

func (datetimeCodec) Type() string          { return TypeDatetime }
func (datetimeCodec) Constraints() []string { return []string{Minimum, Maximum, Enum} }
func (datetimeCodec) Compare(a, b any) int  { return compareTimes(a, b) }

func (datetimeCodec) Decode(raw any, opt *Options) (any, bool) {
	if t, ok := asTime(raw); ok {
		return t, true
	}
	s, ok := rawString(raw)
	if !ok {
		return nil, false
	}
	format := opt.format()
	// Shorter ISO forms (dates, minutes only) belong to other types.
	if format == DefaultFormat && (len(s) < 19 || s[16] != ':') {
		return nil, false
	}
	return parseTemporal(format, s, isoDatetimeLayouts)
}

func (datetimeCodec) Encode(v any, opt *Options) (string, bool) {
	t, ok := asTime(v)
	if !ok {
		return "", false
	}
	switch f := opt.format(); f {
	case DefaultFormat, "any":
		return formatRFC3339Canonical(t), true
	default:
		return strftime.Format(customFormat(f), t), true
	}
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
