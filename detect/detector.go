// Package detect infers table layouts, schemas and text encodings from a
// buffered sample of rows.
package detect

import (
	"fmt"
	"slices"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/internal/validation"
)

// Defaults applied to zero-valued options.
const (
	DefaultBufferSize         = 10000
	DefaultSampleSize         = 100
	DefaultEncodingConfidence = 0.5
	DefaultFieldConfidence    = 0.9
)

// Options configures a Detector. Zero values select the defaults above;
// FieldMissingValues defaults to [""].
type Options struct {
	// BufferSize is the number of bytes used for encoding detection.
	BufferSize int `json:"bufferSize,omitempty" validate:"gte=0"`
	// SampleSize is the number of rows buffered for layout and schema
	// detection.
	SampleSize int `json:"sampleSize,omitempty" validate:"gte=0"`
	// EncodingFunction, when set, replaces encoding detection.
	EncodingFunction   func(buf []byte) string `json:"-"`
	EncodingConfidence float64                 `json:"encodingConfidence,omitempty" validate:"gte=0,lte=1"`
	// FieldType skips type inference and assigns this type to every field.
	FieldType string `json:"fieldType,omitempty"`
	// FieldNames replaces header labels as field names.
	FieldNames        []string `json:"fieldNames,omitempty"`
	FieldConfidence   float64  `json:"fieldConfidence,omitempty" validate:"gte=0,lte=1"`
	FieldFloatNumbers bool     `json:"fieldFloatNumbers,omitempty"`
	// FieldMissingValues are the tokens treated as empty cells.
	FieldMissingValues []string `json:"fieldMissingValues,omitempty"`
	FieldTrueValues    []string `json:"fieldTrueValues,omitempty"`
	FieldFalseValues   []string `json:"fieldFalseValues,omitempty"`
	// SchemaSync reorders and filters the schema fields to match the header.
	SchemaSync bool `json:"schemaSync,omitempty"`
	// SchemaPatch is merged into the detected schema descriptor. Its
	// "fields" key maps field names to field patches.
	SchemaPatch map[string]any `json:"schemaPatch,omitempty"`
}

// Detector holds an immutable, validated option set and the codec registry.
// It is safe for concurrent use.
type Detector struct {
	reg        *codec.Registry
	opt        Options
	candidates []*tabskema.Field
}

// New validates opt and returns a Detector. Invalid options are reported as
// detector-error entries.
func New(reg *codec.Registry, opt Options) (*Detector, error) {
	notes := validation.Struct(opt)
	if opt.FieldType != "" {
		if _, ok := reg.Lookup(opt.FieldType); !ok {
			notes = append(notes, fmt.Sprintf("field type %q is not supported", opt.FieldType))
		}
	}
	if len(notes) > 0 {
		errs := make(tabskema.Errors, len(notes))
		for i, n := range notes {
			errs[i] = tabskema.NewError(tabskema.ErrDetector, n)
		}
		return nil, errs
	}
	opt = withDefaults(opt)
	d := &Detector{reg: reg, opt: opt}
	for _, typ := range reg.Candidates() {
		f, err := tabskema.NewField(reg, d.candidate(typ))
		if err != nil {
			return nil, fmt.Errorf("detect: candidate %q: %w", typ, err)
		}
		d.candidates = append(d.candidates, f)
	}
	return d, nil
}

func withDefaults(opt Options) Options {
	if opt.BufferSize == 0 {
		opt.BufferSize = DefaultBufferSize
	}
	if opt.SampleSize == 0 {
		opt.SampleSize = DefaultSampleSize
	}
	if opt.EncodingConfidence == 0 {
		opt.EncodingConfidence = DefaultEncodingConfidence
	}
	if opt.FieldConfidence == 0 {
		opt.FieldConfidence = DefaultFieldConfidence
	}
	if opt.FieldMissingValues == nil {
		opt.FieldMissingValues = slices.Clone(tabskema.DefaultMissingValues)
	}
	opt.FieldNames = slices.Clone(opt.FieldNames)
	return opt
}

// candidate describes the field a type is scored with.
func (d *Detector) candidate(typ string) tabskema.FieldDescriptor {
	fd := tabskema.FieldDescriptor{Name: typ, Type: typ}
	switch typ {
	case codec.TypeNumber:
		fd.FloatNumber = d.opt.FieldFloatNumbers
	case codec.TypeBoolean:
		fd.TrueValues = slices.Clone(d.opt.FieldTrueValues)
		fd.FalseValues = slices.Clone(d.opt.FieldFalseValues)
	}
	return fd
}

// Options returns a copy of the effective options.
func (d *Detector) Options() Options {
	o := d.opt
	o.FieldNames = slices.Clone(d.opt.FieldNames)
	o.FieldMissingValues = slices.Clone(d.opt.FieldMissingValues)
	return o
}

// Registry returns the codec registry the detector was built with.
func (d *Detector) Registry() *codec.Registry { return d.reg }

// SampleSize returns the number of rows to buffer before detection.
func (d *Detector) SampleSize() int { return d.opt.SampleSize }

// BufferSize returns the number of bytes to use for encoding detection.
func (d *Detector) BufferSize() int { return d.opt.BufferSize }
