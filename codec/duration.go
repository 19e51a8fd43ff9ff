package codec

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration is an ISO 8601 duration such as "P1Y2M10DT2H30M". Components are
// kept separately because months and years have no fixed length, so
// durations are not ordered.
type Duration struct {
	Negative bool    `json:"negative,omitempty"`
	Years    float64 `json:"years,omitempty"`
	Months   float64 `json:"months,omitempty"`
	Weeks    float64 `json:"weeks,omitempty"`
	Days     float64 `json:"days,omitempty"`
	Hours    float64 `json:"hours,omitempty"`
	Minutes  float64 `json:"minutes,omitempty"`
	Seconds  float64 `json:"seconds,omitempty"`
}

const isoNum = `(\d+(?:[.,]\d+)?)`

var durationPattern = regexp.MustCompile(`^([-+])?P(?:` + isoNum + `Y)?(?:` + isoNum + `M)?(?:` + isoNum + `W)?(?:` + isoNum + `D)?` +
	`(T(?:` + isoNum + `H)?(?:` + isoNum + `M)?(?:` + isoNum + `S)?)?$`)

// ParseDuration parses an ISO 8601 duration.
func ParseDuration(s string) (Duration, bool) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, false
	}
	var d Duration
	d.Negative = m[1] == "-"
	dst := []*float64{&d.Years, &d.Months, &d.Weeks, &d.Days}
	found := false
	for i, p := range dst {
		if v := m[2+i]; v != "" {
			*p = isoFloat(v)
			found = true
		}
	}
	if m[6] != "" {
		timeAny := false
		for i, p := range []*float64{&d.Hours, &d.Minutes, &d.Seconds} {
			if v := m[7+i]; v != "" {
				*p = isoFloat(v)
				timeAny = true
			}
		}
		if !timeAny {
			return Duration{}, false
		}
		found = true
	}
	return d, found
}

func isoFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	return f
}

func (d Duration) String() string {
	var b strings.Builder
	if d.Negative {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	put := func(v float64, unit byte) {
		if v != 0 {
			b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
			b.WriteByte(unit)
		}
	}
	put(d.Years, 'Y')
	put(d.Months, 'M')
	put(d.Weeks, 'W')
	put(d.Days, 'D')
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
		b.WriteByte('T')
		put(d.Hours, 'H')
		put(d.Minutes, 'M')
		put(d.Seconds, 'S')
	}
	if b.Len() == 1 || (d.Negative && b.Len() == 2) {
		return "PT0S"
	}
	return b.String()
}

func fromStdDuration(td time.Duration) Duration {
	d := Duration{Negative: td < 0}
	if td < 0 {
		td = -td
	}
	h := td / time.Hour
	td -= h * time.Hour
	m := td / time.Minute
	td -= m * time.Minute
	d.Hours, d.Minutes, d.Seconds = float64(h), float64(m), td.Seconds()
	return d
}

type durationCodec struct{}

func (durationCodec) Type() string          { return TypeDuration }
func (durationCodec) Constraints() []string { return []string{Enum} }

func (durationCodec) Decode(raw any, _ *Options) (any, bool) {
	switch v := raw.(type) {
	case Duration:
		return v, true
	case time.Duration:
		return fromStdDuration(v), true
	}
	s, ok := rawString(raw)
	if !ok {
		return nil, false
	}
	d, ok := ParseDuration(s)
	if !ok {
		return nil, false
	}
	return d, true
}

func (durationCodec) Encode(v any, _ *Options) (string, bool) {
	d, ok := v.(Duration)
	if !ok {
		return "", false
	}
	return d.String(), true
}
