package csv_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/resource"
	"github.com/reoring/tabskema/source/csv"
)

func readAll(t *testing.T, src resource.RowSource) [][]any {
	t.Helper()
	var rows [][]any
	for {
		row, err := src.ReadRow()
		if errors.Is(err, io.EOF) {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestReader_CountsBytesAndHash(t *testing.T) {
	data := []byte("id,name\n1,english\n2,中国人\n")
	src, err := csv.Bytes(data, csv.Options{})(context.Background())
	require.NoError(t, err)
	defer src.Close()

	rows := readAll(t, src)
	assert.Equal(t, [][]any{{"id", "name"}, {"1", "english"}, {"2", "中国人"}}, rows)

	sum := sha256.Sum256(data)
	bc := src.(resource.ByteCounter)
	assert.Equal(t, int64(len(data)), bc.Bytes())
	assert.Equal(t, hex.EncodeToString(sum[:]), bc.Hash())
	assert.Equal(t, "utf-8", src.(resource.Encoder).Encoding())
}

func TestReader_DecodesDetectedEncodings(t *testing.T) {
	src, err := csv.Bytes([]byte("\xef\xbb\xbfname\ncaf\xc3\xa9\n"), csv.Options{})(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "utf-8-sig", src.(resource.Encoder).Encoding())
	assert.Equal(t, [][]any{{"name"}, {"café"}}, readAll(t, src))

	src, err = csv.Bytes([]byte("name\ncaf\xe9\n"), csv.Options{Encoding: "latin1"})(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", src.(resource.Encoder).Encoding())
	assert.Equal(t, [][]any{{"name"}, {"café"}}, readAll(t, src))
}

func TestReader_InvalidUTF8IsAnEncodingError(t *testing.T) {
	src, err := csv.Bytes([]byte("name\ncaf\xe9\n"), csv.Options{Encoding: "utf-8"})(context.Background())
	require.NoError(t, err)
	_, err = src.ReadRow()
	require.NoError(t, err)
	_, err = src.ReadRow()
	es, ok := tabskema.AsErrors(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, tabskema.ErrEncoding, es[0].Type)
}

func TestReader_Delimiter(t *testing.T) {
	src, err := csv.Bytes([]byte("a;b\n1;2\n"), csv.Options{Delimiter: ';'})(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a", "b"}, {"1", "2"}}, readAll(t, src))

	_, err = csv.Bytes(nil, csv.Options{Delimiter: '"'})(context.Background())
	assert.Error(t, err)
}

func TestFile_MeasuresStatsThroughResource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	data := []byte("id,name\n1,a\n2,b\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	res := &resource.Resource{Name: "table", Source: csv.File(path, csv.Options{})}
	tbl, err := res.Open(context.Background())
	require.NoError(t, err)
	defer tbl.Close()
	for {
		_, err := tbl.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	stats := tbl.Stats()
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, int64(len(data)), stats.Bytes)
	assert.Equal(t, "utf-8", tbl.Encoding())

	_, err = csv.File(filepath.Join(t.TempDir(), "missing.csv"), csv.Options{})(context.Background())
	assert.Error(t, err)
}
