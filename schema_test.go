package tabskema_test

import (
	"slices"
	"testing"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
)

func TestDeduplicateNames(t *testing.T) {
	got := tabskema.DeduplicateNames([]string{"id", "name", "id", "id"})
	want := []string{"id", "name", "id2", "id3"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	got = tabskema.DeduplicateNames([]string{"", "a", " "})
	if !slices.Equal(got, []string{"field1", "a", "field3"}) {
		t.Fatalf("blanks: %v", got)
	}
}

func TestNewSchema_Invariants(t *testing.T) {
	reg := codec.NewRegistry()
	_, err := tabskema.NewSchema(reg, tabskema.SchemaDescriptor{
		Fields: []tabskema.FieldDescriptor{{Name: "a", Type: "integer"}, {Name: "a", Type: "string"}},
	})
	if es, ok := tabskema.AsErrors(err); !ok || es[0].Type != tabskema.ErrSchema {
		t.Fatalf("duplicate names: %v", err)
	}
	_, err = tabskema.NewSchema(reg, tabskema.SchemaDescriptor{
		Fields:     []tabskema.FieldDescriptor{{Name: "a", Type: "integer"}},
		PrimaryKey: []string{"b"},
	})
	if err == nil {
		t.Fatalf("unknown primary key accepted")
	}
	_, err = tabskema.NewSchema(reg, tabskema.SchemaDescriptor{
		Fields: []tabskema.FieldDescriptor{{Name: "a", Type: "integer"}},
		ForeignKeys: []tabskema.ForeignKey{{
			Fields:    []string{"a"},
			Reference: tabskema.ForeignKeyReference{Resource: "other", Fields: []string{"x", "y"}},
		}},
	})
	if err == nil {
		t.Fatalf("foreign key field count mismatch accepted")
	}
}

func TestSchema_MissingValueInheritance(t *testing.T) {
	s, err := tabskema.NewSchema(codec.NewRegistry(), tabskema.SchemaDescriptor{
		Fields: []tabskema.FieldDescriptor{
			{Name: "a", Type: "integer"},
			{Name: "b", Type: "integer", MissingValues: []string{"-"}},
		},
		MissingValues: []string{"NA"},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	values, notes := s.ReadCells([]any{"NA", "NA"})
	if values[0] != nil || len(notes[0]) != 0 {
		t.Fatalf("a inherits NA: %v %+v", values[0], notes[0])
	}
	if values[1] != nil || !notes[1].Has("type") {
		t.Fatalf("b overrides missing values: %v %+v", values[1], notes[1])
	}
	cells, _ := s.WriteCells([]any{nil, nil}, false)
	if cells[0] != "NA" || cells[1] != "-" {
		t.Fatalf("write missing: %v", cells)
	}
}

func TestSchema_StructuralMutation(t *testing.T) {
	reg := codec.NewRegistry()
	s, err := tabskema.NewSchema(reg, tabskema.SchemaDescriptor{
		Fields: []tabskema.FieldDescriptor{{Name: "a", Type: "integer"}, {Name: "b", Type: "string"}},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	c, _ := tabskema.NewField(reg, tabskema.FieldDescriptor{Name: "c", Type: "boolean"})
	if err := s.AddField(c); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if err := s.AddField(c); err == nil {
		t.Fatalf("duplicate AddField accepted")
	}
	if _, ok := s.RemoveField("a"); !ok {
		t.Fatalf("RemoveField")
	}
	if got := s.FieldNames(); !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("names: %v", got)
	}
	if f, ok := s.Field("c"); !ok || f.Type() != "boolean" {
		t.Fatalf("index not rebuilt")
	}
	clone := s.Clone()
	clone.RemoveField("b")
	if s.Len() != 2 || clone.Len() != 1 {
		t.Fatalf("clone shares state: %d %d", s.Len(), clone.Len())
	}
}

func TestPatchSchema(t *testing.T) {
	d := tabskema.SchemaDescriptor{
		Fields: []tabskema.FieldDescriptor{{Name: "id", Type: "integer"}, {Name: "name", Type: "string"}},
	}
	out, err := tabskema.PatchSchema(d, map[string]any{
		"primaryKey": []any{"id"},
		"fields": map[string]any{
			"name": map[string]any{"type": "any", "title": "Name"},
		},
	})
	if err != nil {
		t.Fatalf("PatchSchema: %v", err)
	}
	if !slices.Equal(out.PrimaryKey, []string{"id"}) {
		t.Fatalf("primary key: %v", out.PrimaryKey)
	}
	if out.Fields[1].Type != "any" || out.Fields[1].Title != "Name" || out.Fields[0].Type != "integer" {
		t.Fatalf("fields: %+v", out.Fields)
	}
	if _, err := tabskema.PatchSchema(d, map[string]any{"fields": []any{}}); err == nil {
		t.Fatalf("malformed patch accepted")
	}
}

func TestPatchSchema_UnknownConstraint(t *testing.T) {
	reg := codec.NewRegistry()
	d := tabskema.SchemaDescriptor{Fields: []tabskema.FieldDescriptor{{Name: "id", Type: "string"}}}
	out, err := tabskema.PatchSchema(d, map[string]any{
		"fields": map[string]any{"id": map[string]any{"constraints": map[string]any{"maxLenght": 3}}},
	})
	if err != nil {
		t.Fatalf("PatchSchema: %v", err)
	}
	if _, err := tabskema.NewSchema(reg, out); err == nil {
		t.Fatalf("misspelt constraint from a patch accepted")
	}

	// Later patches keep the unknown key.
	out, err = tabskema.PatchSchema(out, map[string]any{
		"fields": map[string]any{"id": map[string]any{"title": "ID"}},
	})
	if err != nil {
		t.Fatalf("second PatchSchema: %v", err)
	}
	if out.Fields[0].Title != "ID" || !slices.Contains(out.Fields[0].Constraints.Names(), "maxLenght") {
		t.Fatalf("patched field: %+v", out.Fields[0])
	}
	if _, err := tabskema.NewSchema(reg, out); err == nil {
		t.Fatalf("unknown constraint lost by a later patch")
	}
}

func TestLayout_Labels(t *testing.T) {
	l := &tabskema.Layout{HeaderRows: []int{1, 2}, HeaderJoin: "_"}
	got := l.Labels([][]any{{"a", "b"}, {"x", ""}})
	if !slices.Equal(got, []string{"a_x", "b"}) {
		t.Fatalf("labels: %v", got)
	}
	if !l.HasHeader() || !slices.Equal((*tabskema.Layout)(nil).HeaderRowNumbers(), []int{1}) {
		t.Fatalf("default header rows")
	}
	comments := &tabskema.Layout{CommentChar: "#", SkipBlankRows: true}
	if comments.Keeps(3, []any{"# note"}) || comments.Keeps(4, []any{"", nil}) || !comments.Keeps(5, []any{"x"}) {
		t.Fatalf("row filter")
	}
}
