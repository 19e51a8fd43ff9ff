package detect_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/detect"
)

func newDetector(t *testing.T, opt detect.Options) *detect.Detector {
	t.Helper()
	d, err := detect.New(codec.NewRegistry(), opt)
	require.NoError(t, err)
	return d
}

func rows(widths ...int) [][]any {
	out := make([][]any, len(widths))
	for i, w := range widths {
		out[i] = make([]any, w)
		for j := range out[i] {
			out[i][j] = "x"
		}
	}
	return out
}

func types(s *tabskema.Schema) []string {
	var out []string
	for _, f := range s.Fields() {
		out = append(out, f.Type())
	}
	return out
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	_, err := detect.New(codec.NewRegistry(), detect.Options{FieldConfidence: 2})
	es, ok := tabskema.AsErrors(err)
	require.True(t, ok, "expected Errors, got %v", err)
	assert.Equal(t, tabskema.ErrDetector, es[0].Type)

	_, err = detect.New(codec.NewRegistry(), detect.Options{FieldType: "money"})
	require.Error(t, err)
}

func TestHeaderRow_SkipsFilteredRows(t *testing.T) {
	sample := rows(5, 5, 1, 5, 5)
	n, ok := detect.HeaderRow(sample, func(rowNumber int, _ []any) bool { return rowNumber != 3 })
	require.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestDetectLayout(t *testing.T) {
	d := newDetector(t, detect.Options{})

	l := d.DetectLayout(rows(1, 5, 5, 5, 5), nil)
	assert.False(t, l.NoHeader)
	assert.Equal(t, []int{2}, l.HeaderRows)

	l = d.DetectLayout(rows(3, 3, 3), nil)
	assert.Nil(t, l.HeaderRows, "default header row is not recorded")
	assert.True(t, l.HasHeader())

	l = d.DetectLayout(rows(1, 10, 1, 10), nil)
	assert.True(t, l.NoHeader, "no row within the window disables the header")

	explicit := &tabskema.Layout{HeaderRows: []int{3}}
	assert.Equal(t, []int{3}, d.DetectLayout(rows(1, 5, 5), explicit).HeaderRows)
}

func TestDetectSchema_EndToEnd(t *testing.T) {
	d := newDetector(t, detect.Options{})
	s, err := d.DetectSchema(detect.SchemaInput{
		Fragment: [][]any{{"1", "a"}, {"2", "b"}},
		Labels:   []string{"id", "name"},
	})
	require.NoError(t, err)
	desc := s.Descriptor()
	require.Len(t, desc.Fields, 2)
	assert.Equal(t, tabskema.FieldDescriptor{Name: "id", Type: "integer"}, desc.Fields[0])
	assert.Equal(t, tabskema.FieldDescriptor{Name: "name", Type: "string"}, desc.Fields[1])
}

func TestDetectSchema_TypePriorityAndConfidence(t *testing.T) {
	d := newDetector(t, detect.Options{})
	fragment := [][]any{
		{"1", "1.5", "2020-01-01", "true", "2020-01", "P1D", "x"},
		{"2", "2", "2020-01-02", "false", "2020-02", "PT1H", "1"},
	}
	s, err := d.DetectSchema(detect.SchemaInput{Fragment: fragment})
	require.NoError(t, err)
	assert.Equal(t, []string{"integer", "number", "date", "boolean", "yearmonth", "duration", "string"}, types(s))
	assert.Equal(t, []string{"field1", "field2", "field3", "field4", "field5", "field6", "field7"}, s.FieldNames())

	// nine integers out of ten clear the 0.9 confidence.
	var column [][]any
	for _, v := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "x"} {
		column = append(column, []any{v})
	}
	s, err = d.DetectSchema(detect.SchemaInput{Fragment: column})
	require.NoError(t, err)
	assert.Equal(t, []string{"integer"}, types(s))

	mixed := [][]any{{"1"}, {"a"}, {"2.5"}, {"b"}}
	s, err = d.DetectSchema(detect.SchemaInput{Fragment: mixed})
	require.NoError(t, err)
	assert.Equal(t, []string{"string"}, types(s))
}

func TestDetectSchema_MissingCellsReduceTheDenominator(t *testing.T) {
	d := newDetector(t, detect.Options{FieldMissingValues: []string{"", "NA"}})
	s, err := d.DetectSchema(detect.SchemaInput{
		Fragment: [][]any{{"NA"}, {"1"}, {""}, {"2"}},
		Labels:   []string{"n"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"integer"}, types(s))
	assert.Equal(t, []string{"", "NA"}, s.MissingValues())

	s, err = d.DetectSchema(detect.SchemaInput{Fragment: [][]any{{"NA"}, {""}}, Labels: []string{"n"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"any"}, types(s))
}

func TestDetectSchema_NamesAndOverrides(t *testing.T) {
	d := newDetector(t, detect.Options{})
	s, err := d.DetectSchema(detect.SchemaInput{
		Fragment: [][]any{{"1", "2", "3", "4"}},
		Labels:   []string{"id", "name", "id", "id"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "id2", "id3"}, s.FieldNames())

	s, err = d.DetectSchema(detect.SchemaInput{Labels: []string{"multi\nline ", ""}})
	require.NoError(t, err)
	assert.Equal(t, []string{"multi line", "field2"}, s.FieldNames())
	assert.Equal(t, []string{"any", "any"}, types(s), "empty fragment yields any")

	typed := newDetector(t, detect.Options{FieldType: "string", FieldNames: []string{"a", "b"}})
	s, err = typed.DetectSchema(detect.SchemaInput{Fragment: [][]any{{"1", "2"}}, Labels: []string{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.FieldNames())
	assert.Equal(t, []string{"string", "string"}, types(s))
}

func TestDetectSchema_Idempotent(t *testing.T) {
	d := newDetector(t, detect.Options{FieldFloatNumbers: true})
	in := detect.SchemaInput{
		Fragment: [][]any{{"1.5", "x", "2020-01-01T10:00:00Z"}, {"2", "y", "2020-01-01T11:00:00Z"}},
		Labels:   []string{"a", "b", "c"},
	}
	first, err := d.DetectSchema(in)
	require.NoError(t, err)
	second, err := d.DetectSchema(in)
	require.NoError(t, err)
	b1, err := json.Marshal(first.Descriptor())
	require.NoError(t, err)
	b2, err := json.Marshal(second.Descriptor())
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
	f, _ := first.Field("a")
	assert.True(t, f.Descriptor().FloatNumber)
}

func TestDetectSchema_SyncAndPatch(t *testing.T) {
	reg := codec.NewRegistry()
	given, err := tabskema.NewSchema(reg, tabskema.SchemaDescriptor{Fields: []tabskema.FieldDescriptor{
		{Name: "Name", Type: "string"},
		{Name: "id", Type: "integer"},
	}})
	require.NoError(t, err)

	d, err := detect.New(reg, detect.Options{
		SchemaSync:  true,
		SchemaPatch: map[string]any{"fields": map[string]any{"id": map[string]any{"title": "Identifier"}}},
	})
	require.NoError(t, err)
	s, err := d.DetectSchema(detect.SchemaInput{Labels: []string{"id", "extra"}, Schema: given})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "extra"}, s.FieldNames())
	assert.Equal(t, []string{"integer", "any"}, types(s))
	id, _ := s.Field("id")
	assert.Equal(t, "Identifier", id.Title())

	s, err = d.DetectSchema(detect.SchemaInput{Labels: []string{"name", "id"}, Schema: given, IgnoreCase: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "id"}, s.FieldNames())

	_, err = d.DetectSchema(detect.SchemaInput{Labels: []string{"id", "id"}, Schema: given})
	es, ok := tabskema.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, tabskema.ErrSchema, es[0].Type)

	bad, err := detect.New(reg, detect.Options{SchemaPatch: map[string]any{"fields": []any{"id"}}})
	require.NoError(t, err)
	_, err = bad.DetectSchema(detect.SchemaInput{Fragment: [][]any{{"1"}}})
	require.Error(t, err)
}

func TestDetectEncoding(t *testing.T) {
	d := newDetector(t, detect.Options{})
	assert.Equal(t, "utf-8", d.DetectEncoding([]byte("id,name\n1,a\n"), ""))
	assert.Equal(t, "utf-8-sig", d.DetectEncoding(append([]byte{0xEF, 0xBB, 0xBF}, "id\n"...), ""))
	assert.Equal(t, "utf-16", d.DetectEncoding([]byte{0xFF, 0xFE, 'i', 0, 'd', 0}, ""))
	assert.Equal(t, "utf-8", d.DetectEncoding([]byte("name\nJosé\n"), ""))
	assert.Equal(t, "windows-1252", d.DetectEncoding([]byte("name\ncaf\xe9\n"), ""))
	assert.Equal(t, "utf-8", d.DetectEncoding([]byte("ignored"), "UTF8"))

	strict := newDetector(t, detect.Options{EncodingConfidence: 0.9})
	assert.Equal(t, "utf-8", strict.DetectEncoding([]byte("name\ncaf\xe9\n"), ""), "low confidence falls back")

	custom := newDetector(t, detect.Options{EncodingFunction: func([]byte) string { return "latin1" }})
	assert.Equal(t, "latin1", custom.DetectEncoding([]byte("x"), ""))
}
