package codec

import (
	"errors"
	"io"
	"strings"

	json "github.com/goccy/go-json"
)

// decodeJSON reads exactly one JSON value from s. Numbers stay json.Number so
// that integers are not widened to float64.
func decodeJSON(s string, dst any) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("codec: trailing data after JSON value")
	}
	return nil
}

func encodeJSON(v any) (string, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}

type arrayCodec struct{}

func (arrayCodec) Type() string          { return TypeArray }
func (arrayCodec) Constraints() []string { return []string{MinLength, MaxLength, Enum} }

func (arrayCodec) Decode(raw any, _ *Options) (any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	s, ok := rawString(raw)
	if !ok {
		return nil, false
	}
	var out []any
	if err := decodeJSON(s, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func (arrayCodec) Encode(v any, _ *Options) (string, bool) {
	if _, ok := v.([]any); !ok {
		return "", false
	}
	return encodeJSON(v)
}

type objectCodec struct{}

func (objectCodec) Type() string          { return TypeObject }
func (objectCodec) Constraints() []string { return []string{MinLength, MaxLength, Enum} }

func (objectCodec) Decode(raw any, _ *Options) (any, bool) {
	if m, ok := raw.(map[string]any); ok {
		return m, true
	}
	s, ok := rawString(raw)
	if !ok {
		return nil, false
	}
	var out map[string]any
	if err := decodeJSON(s, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func (objectCodec) Encode(v any, _ *Options) (string, bool) {
	if _, ok := v.(map[string]any); !ok {
		return "", false
	}
	return encodeJSON(v)
}
