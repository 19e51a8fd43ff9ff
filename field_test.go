package tabskema_test

import (
	"slices"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
)

func intPtr(n int) *int { return &n }

func mustField(t *testing.T, d tabskema.FieldDescriptor) *tabskema.Field {
	t.Helper()
	f, err := tabskema.NewField(codec.NewRegistry(), d)
	if err != nil {
		t.Fatalf("NewField(%+v): %v", d, err)
	}
	return f
}

// TestField_ReadCell_ReportsEveryConstraint checks that constraint notes are
// collected exhaustively and in the fixed order.
func TestField_ReadCell_ReportsEveryConstraint(t *testing.T) {
	f := mustField(t, tabskema.FieldDescriptor{
		Name: "code",
		Type: "string",
		Constraints: &tabskema.Constraints{
			MinLength: intPtr(5),
			Pattern:   "[a-z]+",
			Enum:      []any{"alpha", "bravo"},
		},
	})
	v, notes := f.ReadCell("AB")
	if v != "AB" {
		t.Fatalf("value should still decode, got %v", v)
	}
	want := []string{"minLength", "pattern", "enum"}
	if len(notes) != len(want) {
		t.Fatalf("notes: %+v", notes)
	}
	for i, n := range notes {
		if n.Name != want[i] {
			t.Fatalf("note %d: got %s want %s", i, n.Name, want[i])
		}
	}
	if text, _ := notes.Get("minLength"); text != `constraint "minLength" is "5"` {
		t.Fatalf("note text: %q", text)
	}
}

func TestField_ReadCell_TypeErrorSkipsConstraints(t *testing.T) {
	f := mustField(t, tabskema.FieldDescriptor{
		Name:        "n",
		Type:        "integer",
		Constraints: &tabskema.Constraints{Minimum: 10},
	})
	v, notes := f.ReadCell("abc")
	if v != nil || len(notes) != 1 || notes[0].Name != "type" {
		t.Fatalf("got %v %+v", v, notes)
	}
	if notes[0].Text != `type is "integer/default"` {
		t.Fatalf("type note: %q", notes[0].Text)
	}
	if _, notes := f.ReadCell("5"); !notes.Has("minimum") {
		t.Fatalf("minimum violation expected: %+v", notes)
	}
	if v, notes := f.ReadCell("15"); v != int64(15) || len(notes) != 0 {
		t.Fatalf("15: %v %+v", v, notes)
	}
}

func TestField_MissingValues(t *testing.T) {
	f := mustField(t, tabskema.FieldDescriptor{
		Name:          "x",
		Type:          "integer",
		MissingValues: []string{"", "NA"},
		Constraints:   &tabskema.Constraints{Required: true},
	})
	v, notes := f.ReadCell("NA")
	if v != nil || !notes.Has("required") {
		t.Fatalf("NA: %v %+v", v, notes)
	}
	out, _ := f.WriteCell(nil, false)
	if out != "" {
		t.Fatalf("write nil: %v", out)
	}
	if out, _ := f.WriteCell(nil, true); out != nil {
		t.Fatalf("write nil ignoring missing: %v", out)
	}
	optional := mustField(t, tabskema.FieldDescriptor{Name: "y", Type: "integer"})
	if v, notes := optional.ReadCell(""); v != nil || notes != nil {
		t.Fatalf("missing optional cell: %v %+v", v, notes)
	}
}

func TestField_ArrayItemNotesMerge(t *testing.T) {
	f := mustField(t, tabskema.FieldDescriptor{
		Name: "tags",
		Type: "array",
		ArrayItem: &tabskema.FieldDescriptor{
			Type:        "integer",
			Constraints: &tabskema.Constraints{Maximum: 3},
		},
	})
	v, notes := f.ReadCell(`[1, 5, "x"]`)
	items, ok := v.([]any)
	if !ok || len(items) != 3 || items[0] != int64(1) || items[2] != nil {
		t.Fatalf("items: %#v", v)
	}
	if !notes.Has("arrayItem.maximum") || !notes.Has("arrayItem.type") {
		t.Fatalf("merged notes: %+v", notes)
	}
	if text, _ := notes.Get("arrayItem.type"); text != `array item type is "integer/default"` {
		t.Fatalf("array item note: %q", text)
	}
}

func TestNewField_MetadataErrors(t *testing.T) {
	reg := codec.NewRegistry()
	cases := map[string]tabskema.FieldDescriptor{
		"unknown type":       {Name: "a", Type: "money"},
		"pattern on integer": {Name: "a", Type: "integer", Constraints: &tabskema.Constraints{Pattern: "x"}},
		"bad minimum":        {Name: "a", Type: "integer", Constraints: &tabskema.Constraints{Minimum: "ten"}},
		"bad pattern":        {Name: "a", Type: "string", Constraints: &tabskema.Constraints{Pattern: "("}},
		"double nesting": {Name: "a", Type: "array", ArrayItem: &tabskema.FieldDescriptor{
			Type: "array", ArrayItem: &tabskema.FieldDescriptor{Type: "integer"},
		}},
		"bad format":           {Name: "a", Type: "string", Format: "phone"},
		"minimum on duration":  {Name: "a", Type: "duration", Constraints: &tabskema.Constraints{Minimum: "P1D"}},
		"maximum on duration":  {Name: "a", Type: "duration", Constraints: &tabskema.Constraints{Maximum: "PT1H"}},
		"bad array enum entry": {Name: "a", Type: "array", ArrayItem: &tabskema.FieldDescriptor{Type: "integer"}, Constraints: &tabskema.Constraints{Enum: []any{[]any{1, "x"}}}},
	}
	for name, d := range cases {
		_, err := tabskema.NewField(reg, d)
		es, ok := tabskema.AsErrors(err)
		if !ok || len(es) == 0 {
			t.Fatalf("%s: expected Errors, got %v", name, err)
		}
		if es[0].Type != tabskema.ErrField {
			t.Fatalf("%s: type %s", name, es[0].Type)
		}
	}
}

// TestField_LosslessRoundTrip checks read(write(v)) == v for lossless types.
func TestField_LosslessRoundTrip(t *testing.T) {
	cases := []struct {
		typ string
		v   any
	}{
		{"integer", int64(-42)},
		{"string", "hello"},
		{"boolean", true},
		{"boolean", false},
	}
	for _, c := range cases {
		f := mustField(t, tabskema.FieldDescriptor{Name: "f", Type: c.typ})
		raw, notes := f.WriteCell(c.v, false)
		if len(notes) != 0 {
			t.Fatalf("write %v: %+v", c.v, notes)
		}
		got, notes := f.ReadCell(raw)
		if len(notes) != 0 || got != c.v {
			t.Fatalf("%s round trip: got %v want %v", c.typ, got, c.v)
		}
	}
}

func TestField_EmptyStringRoundTrip(t *testing.T) {
	f := mustField(t, tabskema.FieldDescriptor{Name: "f", Type: "string"})
	raw, _ := f.WriteCell("", false)
	if got, notes := f.ReadCell(raw); got != nil || len(notes) != 0 {
		t.Fatalf("empty string with default missing values: got %#v %+v", got, notes)
	}

	f = mustField(t, tabskema.FieldDescriptor{Name: "f", Type: "string", MissingValues: []string{"NA"}})
	raw, _ = f.WriteCell("", false)
	if got, notes := f.ReadCell(raw); got != "" || len(notes) != 0 {
		t.Fatalf("empty string with NA missing value: got %#v %+v", got, notes)
	}
	if raw, _ = f.WriteCell(nil, false); raw != "NA" {
		t.Fatalf("nil writes the first missing token, got %#v", raw)
	}
}

func TestField_ArrayEnumUsesItemType(t *testing.T) {
	f := mustField(t, tabskema.FieldDescriptor{
		Name:        "pair",
		Type:        "array",
		ArrayItem:   &tabskema.FieldDescriptor{Type: "integer"},
		Constraints: &tabskema.Constraints{Enum: []any{[]any{1, 2}, "[3, 4]"}},
	})
	for _, cell := range []string{"[1, 2]", "[3,4]"} {
		if _, notes := f.ReadCell(cell); len(notes) != 0 {
			t.Fatalf("%s: unexpected notes %+v", cell, notes)
		}
	}
	if _, notes := f.ReadCell("[1, 3]"); !notes.Has("enum") {
		t.Fatalf("expected enum note, got %+v", notes)
	}
}

func TestConstraints_UnknownKeys(t *testing.T) {
	var d tabskema.FieldDescriptor
	data := `{"name": "id", "type": "integer", "constraints": {"maxLenght": 3, "foo": true, "minimum": 1}}`
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := d.Constraints.Names(); !slices.Equal(got, []string{"minimum", "foo", "maxLenght"}) {
		t.Fatalf("names: %v", got)
	}
	_, err := tabskema.NewSchema(codec.NewRegistry(), tabskema.SchemaDescriptor{Fields: []tabskema.FieldDescriptor{d}})
	es, ok := tabskema.AsErrors(err)
	if !ok || len(es) != 2 {
		t.Fatalf("expected two field errors, got %v", err)
	}
	if es[0].Type != tabskema.ErrField || !strings.Contains(es[0].Note, `"foo"`) || !strings.Contains(es[1].Note, `"maxLenght"`) {
		t.Fatalf("errors: %+v", es)
	}

	var y tabskema.FieldDescriptor
	if err := yaml.Unmarshal([]byte("name: id\ntype: string\nconstraints:\n  maxLength: 3\n  pattren: a+\n"), &y); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if y.Constraints.MaxLength == nil || *y.Constraints.MaxLength != 3 {
		t.Fatalf("known key lost: %+v", y.Constraints)
	}
	if _, err := tabskema.NewField(codec.NewRegistry(), y); err == nil {
		t.Fatalf("misspelt yaml constraint accepted")
	}
}

func TestField_DateMinimum(t *testing.T) {
	f := mustField(t, tabskema.FieldDescriptor{
		Name:        "d",
		Type:        "date",
		Constraints: &tabskema.Constraints{Minimum: "2020-01-01"},
	})
	if _, notes := f.ReadCell("2019-12-31"); !notes.Has("minimum") {
		t.Fatalf("expected minimum note, got %+v", notes)
	}
	if _, notes := f.ReadCell("2020-01-01"); len(notes) != 0 {
		t.Fatalf("boundary must pass: %+v", notes)
	}
}
