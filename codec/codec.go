// Package codec holds the value types a table field can take. Each Codec
// converts raw cells (usually strings coming from a reader) into typed values
// and back, and declares which constraints make sense for its values.
package codec

// Type names of the built-in codecs.
const (
	TypeAny       = "any"
	TypeString    = "string"
	TypeInteger   = "integer"
	TypeNumber    = "number"
	TypeBoolean   = "boolean"
	TypeDate      = "date"
	TypeTime      = "time"
	TypeDatetime  = "datetime"
	TypeYear      = "year"
	TypeYearmonth = "yearmonth"
	TypeDuration  = "duration"
	TypeArray     = "array"
	TypeObject    = "object"
	TypeGeopoint  = "geopoint"
	TypeGeojson   = "geojson"
)

// Constraint names.
const (
	Required  = "required"
	Unique    = "unique"
	MinLength = "minLength"
	MaxLength = "maxLength"
	Minimum   = "minimum"
	Maximum   = "maximum"
	Pattern   = "pattern"
	Enum      = "enum"
)

// DefaultFormat is the format every field starts with.
const DefaultFormat = "default"

var (
	// DefaultTrueValues are the literals read as true by the boolean codec.
	DefaultTrueValues = []string{"true", "True", "TRUE", "1"}
	// DefaultFalseValues are the literals read as false by the boolean codec.
	DefaultFalseValues = []string{"false", "False", "FALSE", "0"}
)

// Options carries the per-field knobs a codec may consult. A nil *Options is
// equivalent to DefaultOptions().
type Options struct {
	Format      string
	TrueValues  []string
	FalseValues []string
	BareNumber  bool
	FloatNumber bool
	DecimalChar string
	GroupChar   string
}

// DefaultOptions returns the options of a freshly described field.
func DefaultOptions() *Options {
	return &Options{
		Format:      DefaultFormat,
		TrueValues:  DefaultTrueValues,
		FalseValues: DefaultFalseValues,
		BareNumber:  true,
		DecimalChar: ".",
	}
}

func (o *Options) format() string {
	if o == nil || o.Format == "" {
		return DefaultFormat
	}
	return o.Format
}

func orDefault(o *Options) *Options {
	if o == nil {
		return DefaultOptions()
	}
	return o
}

// Codec is the decode/encode contract of one value type. Implementations are
// stateless and safe for concurrent use.
type Codec interface {
	// Type returns the registry key, e.g. "integer".
	Type() string
	// Constraints lists the constraint names the type accepts besides
	// required and unique.
	Constraints() []string
	// Decode converts a raw cell into a typed value. ok is false when the
	// cell does not match the type and format.
	Decode(raw any, opt *Options) (v any, ok bool)
	// Encode converts a typed value into its textual form.
	Encode(v any, opt *Options) (s string, ok bool)
}

// Comparer is implemented by ordered types (minimum/maximum constraints).
type Comparer interface {
	Compare(a, b any) int
}

// FormatChecker is implemented by codecs that restrict their formats.
type FormatChecker interface {
	SupportsFormat(format string) bool
}

// Accepts reports whether c accepts the constraint name.
func Accepts(c Codec, name string) bool {
	if name == Required || name == Unique {
		return true
	}
	for _, n := range c.Constraints() {
		if n == name {
			return true
		}
	}
	return false
}
