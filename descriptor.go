package tabskema

import (
	"fmt"
	"maps"
	"slices"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// constraintKeys are the descriptor keys Constraints understands.
var constraintKeys = []string{"required", "unique", "minLength", "maxLength", "minimum", "maximum", "pattern", "enum"}

// Constraints are the per-field value rules. A zero value means "not set".
//
// Decoding keeps keys it does not understand. NewField rejects them.
type Constraints struct {
	Required  bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Unique    bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum   any    `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum   any    `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum      []any  `json:"enum,omitempty" yaml:"enum,omitempty"`

	unknown map[string]any
}

// constraintFields has the fields of Constraints without its methods.
type constraintFields Constraints

func (c *Constraints) keep(key string, v any) {
	if slices.Contains(constraintKeys, key) {
		return
	}
	if c.unknown == nil {
		c.unknown = map[string]any{}
	}
	c.unknown[key] = v
}

// UnmarshalJSON decodes the known keys and remembers the others.
func (c *Constraints) UnmarshalJSON(data []byte) error {
	var out constraintFields
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	var keys map[string]any
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*c = Constraints(out)
	for k, v := range keys {
		c.keep(k, v)
	}
	return nil
}

// UnmarshalYAML decodes the known keys and remembers the others.
func (c *Constraints) UnmarshalYAML(node *yaml.Node) error {
	var out constraintFields
	if err := node.Decode(&out); err != nil {
		return err
	}
	*c = Constraints(out)
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return err
		}
		c.keep(node.Content[i].Value, v)
	}
	return nil
}

// MarshalJSON writes unknown keys back so descriptor patches keep them.
func (c Constraints) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(constraintFields(c))
	if err != nil || len(c.unknown) == 0 {
		return b, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	maps.Copy(m, c.unknown)
	return json.Marshal(m)
}

// Names lists the constraints that are set, in evaluation order, followed by
// any unrecognised keys.
func (c *Constraints) Names() []string {
	if c == nil {
		return nil
	}
	var out []string
	if c.Required {
		out = append(out, "required")
	}
	if c.MinLength != nil {
		out = append(out, "minLength")
	}
	if c.MaxLength != nil {
		out = append(out, "maxLength")
	}
	if c.Minimum != nil {
		out = append(out, "minimum")
	}
	if c.Maximum != nil {
		out = append(out, "maximum")
	}
	if c.Pattern != "" {
		out = append(out, "pattern")
	}
	if c.Enum != nil {
		out = append(out, "enum")
	}
	if c.Unique {
		out = append(out, "unique")
	}
	return append(out, slices.Sorted(maps.Keys(c.unknown))...)
}

// FieldDescriptor is the plain-data form of a Field.
type FieldDescriptor struct {
	Name          string           `json:"name" yaml:"name"`
	Title         string           `json:"title,omitempty" yaml:"title,omitempty"`
	Description   string           `json:"description,omitempty" yaml:"description,omitempty"`
	Type          string           `json:"type" yaml:"type"`
	Format        string           `json:"format,omitempty" yaml:"format,omitempty"`
	MissingValues []string         `json:"missingValues,omitempty" yaml:"missingValues,omitempty"`
	Constraints   *Constraints     `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	RDFType       string           `json:"rdfType,omitempty" yaml:"rdfType,omitempty"`
	ArrayItem     *FieldDescriptor `json:"arrayItem,omitempty" yaml:"arrayItem,omitempty"`
	TrueValues    []string         `json:"trueValues,omitempty" yaml:"trueValues,omitempty"`
	FalseValues   []string         `json:"falseValues,omitempty" yaml:"falseValues,omitempty"`
	BareNumber    *bool            `json:"bareNumber,omitempty" yaml:"bareNumber,omitempty"`
	FloatNumber   bool             `json:"floatNumber,omitempty" yaml:"floatNumber,omitempty"`
	DecimalChar   string           `json:"decimalChar,omitempty" yaml:"decimalChar,omitempty"`
	GroupChar     string           `json:"groupChar,omitempty" yaml:"groupChar,omitempty"`
}

// ForeignKeyReference names the resource and fields a foreign key points
// to. An empty Resource references the table itself.
type ForeignKeyReference struct {
	Resource string   `json:"resource" yaml:"resource"`
	Fields   []string `json:"fields" yaml:"fields"`
}

// ForeignKey relates local fields to fields of a reference table.
type ForeignKey struct {
	Fields    []string            `json:"fields" yaml:"fields"`
	Reference ForeignKeyReference `json:"reference" yaml:"reference"`
}

// SchemaDescriptor is the plain-data form of a Schema.
type SchemaDescriptor struct {
	Fields        []FieldDescriptor `json:"fields" yaml:"fields"`
	MissingValues []string          `json:"missingValues,omitempty" yaml:"missingValues,omitempty"`
	PrimaryKey    []string          `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	ForeignKeys   []ForeignKey      `json:"foreignKeys,omitempty" yaml:"foreignKeys,omitempty"`
}

// toMap and fromMap convert descriptors through their JSON form so that
// patches can be expressed as plain maps.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromMap(m map[string]any, dst any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// PatchField returns a copy of d with the keys of patch merged over its
// descriptor form.
func PatchField(d FieldDescriptor, patch map[string]any) (FieldDescriptor, error) {
	m, err := toMap(d)
	if err != nil {
		return d, err
	}
	for k, v := range patch {
		m[k] = v
	}
	var out FieldDescriptor
	if err := fromMap(m, &out); err != nil {
		return d, fmt.Errorf("tabskema: field %q patch: %w", d.Name, err)
	}
	return out, nil
}

// PatchSchema applies patch to d. Top-level keys other than "fields" replace
// the schema's own keys first; "fields" must map field names to field
// patches, which are then applied to the matching fields.
func PatchSchema(d SchemaDescriptor, patch map[string]any) (SchemaDescriptor, error) {
	if len(patch) == 0 {
		return d, nil
	}
	var fieldPatches map[string]any
	if raw, ok := patch["fields"]; ok {
		fp, ok := raw.(map[string]any)
		if !ok {
			return d, fmt.Errorf("tabskema: schema patch \"fields\" must be an object keyed by field name, got %T", raw)
		}
		fieldPatches = fp
	}
	m, err := toMap(d)
	if err != nil {
		return d, err
	}
	for k, v := range patch {
		if k == "fields" {
			continue
		}
		m[k] = v
	}
	var out SchemaDescriptor
	if err := fromMap(m, &out); err != nil {
		return d, fmt.Errorf("tabskema: schema patch: %w", err)
	}
	for i, f := range out.Fields {
		raw, ok := fieldPatches[f.Name]
		if !ok {
			continue
		}
		fp, ok := raw.(map[string]any)
		if !ok {
			return d, fmt.Errorf("tabskema: schema patch for field %q must be an object, got %T", f.Name, raw)
		}
		if out.Fields[i], err = PatchField(f, fp); err != nil {
			return d, err
		}
	}
	return out, nil
}

// Clone returns a deep copy of the descriptor's slices.
func (d SchemaDescriptor) Clone() SchemaDescriptor {
	out := d
	out.Fields = make([]FieldDescriptor, len(d.Fields))
	for i, f := range d.Fields {
		out.Fields[i] = f.Clone()
	}
	out.MissingValues = cloneStrings(d.MissingValues)
	out.PrimaryKey = cloneStrings(d.PrimaryKey)
	if d.ForeignKeys != nil {
		out.ForeignKeys = make([]ForeignKey, len(d.ForeignKeys))
		for i, fk := range d.ForeignKeys {
			out.ForeignKeys[i] = ForeignKey{
				Fields:    cloneStrings(fk.Fields),
				Reference: ForeignKeyReference{Resource: fk.Reference.Resource, Fields: cloneStrings(fk.Reference.Fields)},
			}
		}
	}
	return out
}

// Clone returns a deep copy of the descriptor.
func (d FieldDescriptor) Clone() FieldDescriptor {
	out := d
	out.MissingValues = cloneStrings(d.MissingValues)
	out.TrueValues = cloneStrings(d.TrueValues)
	out.FalseValues = cloneStrings(d.FalseValues)
	if d.Constraints != nil {
		c := *d.Constraints
		c.Enum = append([]any(nil), d.Constraints.Enum...)
		if d.Constraints.Enum == nil {
			c.Enum = nil
		}
		c.unknown = maps.Clone(d.Constraints.unknown)
		out.Constraints = &c
	}
	if d.ArrayItem != nil {
		item := d.ArrayItem.Clone()
		out.ArrayItem = &item
	}
	if d.BareNumber != nil {
		b := *d.BareNumber
		out.BareNumber = &b
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
