package resource_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/detect"
	"github.com/reoring/tabskema/resource"
)

func schemaOf(t *testing.T, d tabskema.SchemaDescriptor) *tabskema.Schema {
	t.Helper()
	s, err := tabskema.NewSchema(codec.NewRegistry(), d)
	require.NoError(t, err)
	return s
}

func readAll(t *testing.T, tbl *resource.Table) []*resource.Row {
	t.Helper()
	var out []*resource.Row
	for {
		row, err := tbl.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, row)
	}
}

func errorTypes(r *resource.Row) []string {
	var out []string
	for _, e := range r.Errors {
		out = append(out, e.Type)
	}
	return out
}

func TestOpen_CellErrors(t *testing.T) {
	res := &resource.Resource{
		Name: "people",
		Source: resource.InlineStrings([][]string{
			{"id", "name"},
			{"1", "a"},
			{"x", "b"},
			{"3"},
			{"4", "d", "extra"},
		}),
		Schema: schemaOf(t, tabskema.SchemaDescriptor{Fields: []tabskema.FieldDescriptor{
			{Name: "id", Type: "integer"},
			{Name: "name", Type: "string"},
		}}),
	}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	defer tbl.Close()

	assert.True(t, tbl.Header().Valid())
	assert.Equal(t, []string{"id", "name"}, tbl.Labels())

	rows := readAll(t, tbl)
	require.Len(t, rows, 4)
	assert.Equal(t, []int{2, 3, 4, 5}, []int{rows[0].Number, rows[1].Number, rows[2].Number, rows[3].Number})
	assert.True(t, rows[0].Valid())
	assert.Equal(t, int64(1), rows[0].Values[0])
	assert.Equal(t, []string{tabskema.ErrType}, errorTypes(rows[1]))
	assert.True(t, rows[1].HasTypeError(0))
	assert.Equal(t, []string{tabskema.ErrMissingCell}, errorTypes(rows[2]))
	assert.Equal(t, []string{tabskema.ErrExtraCell}, errorTypes(rows[3]))
	assert.Equal(t, 3, rows[3].Errors[0].FieldNumber)

	stats := tbl.Stats()
	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 2, stats.Fields)
}

func TestOpen_BlankRowHidesOtherErrors(t *testing.T) {
	res := &resource.Resource{
		Source: resource.InlineStrings([][]string{{"id", "name"}, {"", ""}, {"1", "a"}}),
		Schema: schemaOf(t, tabskema.SchemaDescriptor{
			Fields: []tabskema.FieldDescriptor{
				{Name: "id", Type: "integer", Constraints: &tabskema.Constraints{Required: true}},
				{Name: "name"},
			},
			PrimaryKey: []string{"id"},
		}),
	}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	rows := readAll(t, tbl)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Blank)
	assert.Equal(t, []string{tabskema.ErrBlankRow}, errorTypes(rows[0]))
	assert.True(t, rows[1].Valid())
}

func TestOpen_Integrity(t *testing.T) {
	res := &resource.Resource{
		Source: resource.InlineStrings([][]string{
			{"id", "parent", "code"},
			{"1", "", "a"},
			{"2", "1", "a"},
			{"2", "9", "b"},
			{"", "1", "c"},
		}),
		Schema: schemaOf(t, tabskema.SchemaDescriptor{
			Fields: []tabskema.FieldDescriptor{
				{Name: "id", Type: "integer"},
				{Name: "parent", Type: "integer"},
				{Name: "code", Constraints: &tabskema.Constraints{Unique: true}},
			},
			PrimaryKey: []string{"id"},
			ForeignKeys: []tabskema.ForeignKey{{
				Fields:    []string{"parent"},
				Reference: tabskema.ForeignKeyReference{Fields: []string{"id"}},
			}},
		}),
	}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	rows := readAll(t, tbl)
	require.Len(t, rows, 4)

	assert.True(t, rows[0].Valid(), "%v", rows[0].Errors)
	require.Equal(t, []string{tabskema.ErrUnique}, errorTypes(rows[1]))
	assert.Equal(t, "the same as in the row at position 2", rows[1].Errors[0].Note)
	assert.Equal(t, []string{tabskema.ErrPrimaryKey, tabskema.ErrForeignKey}, errorTypes(rows[2]))
	assert.Equal(t, "the same as in the row at position 3", rows[2].Errors[0].Note)
	assert.Equal(t, "not found in the lookup table", rows[2].Errors[1].Note)
	require.Equal(t, []string{tabskema.ErrPrimaryKey}, errorTypes(rows[3]))
	assert.Equal(t, `cells composing the primary keys are all "None"`, rows[3].Errors[0].Note)
}

func TestOpen_ExternalLookup(t *testing.T) {
	lookup := resource.Lookup{}
	lookup.Add("countries", []string{"code"}, []any{"fr"})
	res := &resource.Resource{
		Source: resource.InlineStrings([][]string{{"city", "country"}, {"paris", "fr"}, {"rome", "it"}}),
		Schema: schemaOf(t, tabskema.SchemaDescriptor{
			Fields: []tabskema.FieldDescriptor{{Name: "city"}, {Name: "country"}},
			ForeignKeys: []tabskema.ForeignKey{{
				Fields:    []string{"country"},
				Reference: tabskema.ForeignKeyReference{Resource: "countries", Fields: []string{"code"}},
			}},
		}),
		Lookup: lookup,
	}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	rows := readAll(t, tbl)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Valid())
	assert.Equal(t, []string{tabskema.ErrForeignKey}, errorTypes(rows[1]))
}

func TestOpen_HeaderErrors(t *testing.T) {
	res := &resource.Resource{
		Source: resource.InlineStrings([][]string{{"id", "Name", "id"}, {"1", "a", "2"}}),
		Schema: schemaOf(t, tabskema.SchemaDescriptor{Fields: []tabskema.FieldDescriptor{
			{Name: "id"}, {Name: "name"}, {Name: "other"},
		}}),
	}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	var types []string
	for _, e := range tbl.Header().Errors {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{tabskema.ErrIncorrectLabel, tabskema.ErrDuplicateLabel}, types)
	assert.Equal(t, `at position "1"`, tbl.Header().Errors[1].Note)

	res.Layout = &tabskema.Layout{HeaderIgnoreCase: true}
	tbl, err = res.Open(context.Background())
	require.NoError(t, err)
	require.Len(t, tbl.Header().Errors, 1)
	assert.Equal(t, tabskema.ErrDuplicateLabel, tbl.Header().Errors[0].Type)
}

func TestOpen_BlankHeader(t *testing.T) {
	res := &resource.Resource{
		Source: resource.InlineStrings([][]string{{"", ""}, {"1", "a"}}),
		Schema: schemaOf(t, tabskema.SchemaDescriptor{Fields: []tabskema.FieldDescriptor{
			{Name: "id"}, {Name: "name"},
		}}),
		Layout: &tabskema.Layout{HeaderRows: []int{1}},
	}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	defer tbl.Close()
	require.Len(t, tbl.Header().Errors, 1)
	assert.Equal(t, tabskema.ErrBlankHeader, tbl.Header().Errors[0].Type)
	assert.Equal(t, []int{1}, tbl.Header().Errors[0].RowNumbers)
}

func TestOpen_StreamsPastTheSample(t *testing.T) {
	det, err := detect.New(codec.NewRegistry(), detect.Options{SampleSize: 2})
	require.NoError(t, err)
	res := &resource.Resource{
		Source:   resource.InlineStrings([][]string{{"n"}, {"1"}, {"2"}, {"3"}, {"4"}}),
		Detector: det,
	}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	assert.Len(t, tbl.Sample(), 2)
	assert.Equal(t, "integer", tbl.Schema().Fields()[0].Type())

	rows := readAll(t, tbl)
	require.Len(t, rows, 4)
	assert.Equal(t, int64(4), rows[3].Values[0])
	assert.Equal(t, 5, rows[3].Position)

	_, err = tbl.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, tbl.Close())
	assert.NoError(t, tbl.Close())
}

func TestOpen_CommentRowsAreNotCounted(t *testing.T) {
	res := &resource.Resource{
		Source: resource.InlineStrings([][]string{{"id", "name"}, {"# note", "x"}, {"1", "a"}}),
		Layout: &tabskema.Layout{CommentChar: "#"},
	}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	rows := readAll(t, tbl)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, 3, rows[0].Position)
}

func TestOpen_NoHeader(t *testing.T) {
	res := &resource.Resource{
		Source: resource.InlineStrings([][]string{{"1", "a"}, {"2", "b"}}),
		Layout: &tabskema.Layout{NoHeader: true},
	}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	assert.True(t, tbl.Header().Missing)
	assert.Equal(t, []string{"field1", "field2"}, tbl.Schema().FieldNames())
	assert.Len(t, readAll(t, tbl), 2)
}

func TestOpen_SourceFailure(t *testing.T) {
	res := &resource.Resource{Source: func(context.Context) (resource.RowSource, error) {
		return nil, errors.New("no such file")
	}}
	_, err := res.Open(context.Background())
	es, ok := tabskema.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, tabskema.ErrSource, es[0].Type)
}
