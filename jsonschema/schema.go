package jsonschema

import (
	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
)

// Draft is the JSON Schema dialect of exported documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Schema      string `json:"$schema,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	// Type is a string, or a list of strings for nullable values.
	Type   any    `json:"type,omitempty"`
	Format string `json:"format,omitempty"`
	Enum   []any  `json:"enum,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Number
	Minimum any `json:"minimum,omitempty"`
	Maximum any `json:"maximum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
}

// FromSchema projects a table schema onto the JSON Schema of one row as an
// object keyed by field name. Required fields are listed and non-nullable.
func FromSchema(s *tabskema.Schema) *Schema {
	out := &Schema{
		Schema:               Draft,
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: false,
	}
	for _, f := range s.Fields() {
		out.Properties[f.Name()] = FromField(f)
		if f.Required() {
			out.Required = append(out.Required, f.Name())
		}
	}
	return out
}

// FromField projects one field. Cells of fields with custom formats are
// described by their JSON shape only.
func FromField(f *tabskema.Field) *Schema {
	d := f.Descriptor()
	js := &Schema{Title: d.Title, Description: d.Description}
	typ := ""
	switch d.Type {
	case codec.TypeString:
		typ = "string"
		switch d.Format {
		case "email":
			js.Format = "email"
		case "uri":
			js.Format = "uri"
		case "uuid":
			js.Format = "uuid"
		}
	case codec.TypeInteger, codec.TypeYear:
		typ = "integer"
	case codec.TypeNumber:
		typ = "number"
	case codec.TypeBoolean:
		typ = "boolean"
	case codec.TypeDate:
		typ, js.Format = "string", defaultFormat(d.Format, "date")
	case codec.TypeTime:
		typ, js.Format = "string", defaultFormat(d.Format, "time")
	case codec.TypeDatetime:
		typ, js.Format = "string", defaultFormat(d.Format, "date-time")
	case codec.TypeDuration:
		typ, js.Format = "string", "duration"
	case codec.TypeYearmonth:
		typ, js.Pattern = "string", `^\d{4}-(0[1-9]|1[0-2])$`
	case codec.TypeArray:
		typ = "array"
		if item := f.ArrayItem(); item != nil {
			js.Items = FromField(item)
		}
	case codec.TypeObject, codec.TypeGeojson:
		typ = "object"
	case codec.TypeGeopoint:
		switch d.Format {
		case "array":
			typ = "array"
			two := 2
			js.Items, js.MinItems, js.MaxItems = &Schema{Type: "number"}, &two, &two
		case "object":
			typ = "object"
			js.Properties = map[string]*Schema{"lon": {Type: "number"}, "lat": {Type: "number"}}
			js.Required = []string{"lon", "lat"}
		default:
			typ = "string"
		}
	}
	if c := d.Constraints; c != nil {
		if typ == "array" {
			js.MinItems, js.MaxItems = c.MinLength, c.MaxLength
		} else {
			js.MinLength, js.MaxLength = c.MinLength, c.MaxLength
		}
		if typ == "integer" || typ == "number" {
			js.Minimum, js.Maximum = c.Minimum, c.Maximum
		}
		if c.Pattern != "" && typ == "string" {
			js.Pattern = "^(?:" + c.Pattern + ")$"
		}
		js.Enum = c.Enum
	}
	switch {
	case typ == "":
		// any: no type restriction
	case f.Required():
		js.Type = typ
	default:
		js.Type = []string{typ, "null"}
	}
	return js
}

func defaultFormat(format, jsFormat string) string {
	if format == "" || format == "default" || format == "any" {
		return jsFormat
	}
	return ""
}
