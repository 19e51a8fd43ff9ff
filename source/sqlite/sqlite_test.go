package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/checks"
	"github.com/reoring/tabskema/resource"
	"github.com/reoring/tabskema/source/sqlite"
	"github.com/reoring/tabskema/validate"
)

func seed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE "my items" (id INTEGER, name TEXT, price REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "my items" VALUES (1, 'a', 1.5), (2, 'b', NULL), (2, 'c', 3.25)`)
	require.NoError(t, err)
	return path
}

func TestTableSource(t *testing.T) {
	path := seed(t)
	src, err := sqlite.Open(path, sqlite.Options{Table: "my items"})(context.Background())
	require.NoError(t, err)
	defer src.Close()

	header, err := src.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, []any{"id", "name", "price"}, header)
	row, err := src.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "a", 1.5}, row)
}

func TestValidateQueryResult(t *testing.T) {
	path := seed(t)
	res := &resource.Resource{Name: "items", Source: sqlite.Open(path, sqlite.Options{Query: `SELECT id, name FROM "my items" ORDER BY name`})}
	rep := validate.Validate(context.Background(), res, validate.Options{
		Checks: []checks.Check{checks.NewSequentialValue(checks.SequentialValueOptions{FieldName: "id"})},
	})
	assert.Equal(t, []string{tabskema.ErrSequentialValue}, rep.ErrorTypes())
	task, _ := rep.Task()
	assert.Equal(t, 3, task.Stats.Rows)
}

func TestMissingTableOrQuery(t *testing.T) {
	_, err := sqlite.Open(seed(t), sqlite.Options{})(context.Background())
	es, ok := tabskema.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, tabskema.ErrSource, es[0].Type)
}
