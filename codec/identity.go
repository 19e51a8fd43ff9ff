package codec

import "fmt"

// anyCodec is the identity codec: every raw cell is accepted unchanged.
// Fields whose type could not be inferred fall back to it.
type anyCodec struct{}

func (anyCodec) Type() string          { return TypeAny }
func (anyCodec) Constraints() []string { return []string{Enum} }

func (anyCodec) Decode(raw any, _ *Options) (any, bool) { return raw, true }

func (anyCodec) Encode(v any, _ *Options) (string, bool) {
	if s, ok := rawString(v); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}
