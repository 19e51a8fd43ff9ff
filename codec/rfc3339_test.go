package codec

import (
	"testing"
	"time"
)

func TestDatetime_DefaultRoundTrip(t *testing.T) {
	c := datetimeCodec{}
	in := "2025-01-01T00:00:00Z"
	got, ok := c.Decode(in, nil)
	if !ok {
		t.Fatalf("decode failed")
	}
	if !got.(time.Time).Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}
	out, ok := c.Encode(got, nil)
	if !ok || out != in {
		t.Fatalf("roundtrip mismatch: %s != %s", out, in)
	}
}

func TestDatetime_GuardRejectsShortForms(t *testing.T) {
	c := datetimeCodec{}
	for _, in := range []string{"2025-01-01", "2025-01-01T10:00", "10:00:00"} {
		if _, ok := c.Decode(in, nil); ok {
			t.Fatalf("%q must not be a datetime", in)
		}
	}
	if _, ok := c.Decode("2020-01-01 10:00:00", nil); !ok {
		t.Fatalf("space separated datetime should decode")
	}
}

func TestDate_DefaultAndCustom(t *testing.T) {
	c := dateCodec{}
	v, ok := c.Decode("2020-02-29", nil)
	if !ok || !v.(time.Time).Equal(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("default date: %v %v", v, ok)
	}
	if _, ok := c.Decode("2021-02-29", nil); ok {
		t.Fatalf("invalid calendar day accepted")
	}
	opt := &Options{Format: "%d/%m/%Y"}
	v, ok = c.Decode("21/11/2006", opt)
	if !ok || !v.(time.Time).Equal(time.Date(2006, 11, 21, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("custom date: %v %v", v, ok)
	}
	s, ok := c.Encode(v, opt)
	if !ok || s != "21/11/2006" {
		t.Fatalf("custom encode: %q", s)
	}
	if _, ok := c.Decode("21/11/2006", &Options{Format: "fmt:%d/%m/%Y"}); !ok {
		t.Fatalf("legacy fmt: prefix should be accepted")
	}
}

func TestTime_Default(t *testing.T) {
	c := timeCodec{}
	for _, in := range []string{"10:00:00", "10:00", "23:59:59Z"} {
		if _, ok := c.Decode(in, nil); !ok {
			t.Fatalf("%q should be a time", in)
		}
	}
	if _, ok := c.Decode("25:00:00", nil); ok {
		t.Fatalf("hour out of range accepted")
	}
	v, _ := c.Decode("08:30:00", nil)
	s, ok := c.Encode(v, nil)
	if !ok || s != "08:30:00" {
		t.Fatalf("encode time: %q", s)
	}
	a, _ := c.Decode("08:30", nil)
	b, _ := c.Decode("09:00", nil)
	if c.Compare(a, b) >= 0 {
		t.Fatalf("08:30 must sort before 09:00")
	}
}
