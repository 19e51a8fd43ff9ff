package jsonrows_test

import (
	"context"
	"errors"
	"io"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/resource"
	"github.com/reoring/tabskema/source/jsonrows"
)

func readAll(t *testing.T, open resource.Opener) ([][]any, error) {
	t.Helper()
	src, err := open(context.Background())
	require.NoError(t, err)
	defer src.Close()
	var rows [][]any
	for {
		row, err := src.ReadRow()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func TestArrayOfArrays(t *testing.T) {
	rows, err := readAll(t, jsonrows.Bytes([]byte(`[["id","tags"],[1,["a","b"]],[2,null]]`)))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"id", "tags"}, rows[0])
	assert.Equal(t, json.Number("1"), rows[1][0])
	assert.Equal(t, []any{"a", "b"}, rows[1][1])
	assert.Nil(t, rows[2][1])
}

func TestKeyedRowsKeepKeyOrder(t *testing.T) {
	data := `{"z": 1, "nested": {"a": [1, {"b": 2}]}, "a": "x"}
{"a": "y", "z": 2, "extra": true}

{"z": 3}
`
	rows, err := readAll(t, jsonrows.Bytes([]byte(data)))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []any{"z", "nested", "a"}, rows[0])
	assert.Equal(t, "x", rows[1][2])
	assert.Equal(t, []any{json.Number("2"), nil, "y"}, rows[2])
	assert.Equal(t, []any{json.Number("3"), nil, nil}, rows[3])
}

func TestInvalidRows(t *testing.T) {
	_, err := readAll(t, jsonrows.Bytes([]byte("{\"a\": 1}\n\"text\"\n")))
	es, ok := tabskema.AsErrors(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, tabskema.ErrSource, es[0].Type)

	_, err = jsonrows.Bytes([]byte(`[[1], [2`))(context.Background())
	assert.Error(t, err)

	rows, err := readAll(t, jsonrows.Bytes(nil))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDuplicateKeys(t *testing.T) {
	for _, data := range []string{
		`{"a": 1, "a": 2}`,
		`{"a": 1}` + "\n" + `{"a": {"b": [1, {"c": 1, "c": 2}]}}`,
	} {
		_, err := readAll(t, jsonrows.Bytes([]byte(data)))
		es, ok := tabskema.AsErrors(err)
		require.True(t, ok, "got %v", err)
		assert.Contains(t, es[0].Note, "duplicate key")
	}

	rows, err := readAll(t, jsonrows.Bytes([]byte(`{"a": {"a": 1}, "b": [{"a": 2}, {"a": 3}]}`)))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, rows[0])
}

func TestResourceOverJSONRows(t *testing.T) {
	res := &resource.Resource{Source: jsonrows.Bytes([]byte(`[{"id": 1, "ok": true}, {"id": 2, "ok": false}]`))}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	defer tbl.Close()
	assert.Equal(t, []string{"id", "ok"}, tbl.Labels())
	assert.Equal(t, []string{"integer", "boolean"}, []string{tbl.Schema().Fields()[0].Type(), tbl.Schema().Fields()[1].Type()})
	row, err := tbl.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, row.Valid(), "%v", row.Errors)
	assert.Equal(t, int64(1), row.Values[0])
}
