// Package sqlite reads a table or query result from a SQLite database as a
// row source. The first row holds the column names.
package sqlite

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/resource"
)

// Options select what to read. Query wins over Table.
type Options struct {
	Table string
	Query string
}

// Open returns an Opener over the database file at path, opened read-only.
func Open(path string, opt Options) resource.Opener {
	return func(ctx context.Context) (resource.RowSource, error) {
		db, err := sql.Open("sqlite", path+"?mode=ro")
		if err != nil {
			return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
		}
		src, err := query(ctx, db, opt)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		src.db = db
		return src, nil
	}
}

// FromDB returns an Opener over an existing connection, which the source
// does not close.
func FromDB(db *sql.DB, opt Options) resource.Opener {
	return func(ctx context.Context) (resource.RowSource, error) {
		return query(ctx, db, opt)
	}
}

func query(ctx context.Context, db *sql.DB, opt Options) (*Reader, error) {
	q := opt.Query
	if q == "" {
		if opt.Table == "" {
			return nil, tabskema.NewError(tabskema.ErrSource, "sqlite source needs a table or a query")
		}
		q = "SELECT * FROM " + quoteIdent(opt.Table)
	}
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
	}
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
	}
	return &Reader{rows: rows, columns: cols}, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Reader is a SQLite row source.
type Reader struct {
	db      *sql.DB
	rows    *sql.Rows
	columns []string
	started bool
}

func (r *Reader) ReadRow() ([]any, error) {
	if !r.started {
		r.started = true
		header := make([]any, len(r.columns))
		for i, c := range r.columns {
			header[i] = c
		}
		return header, nil
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
		}
		return nil, io.EOF
	}
	values := make([]any, len(r.columns))
	ptrs := make([]any, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
	}
	for i, v := range values {
		values[i] = cell(v)
	}
	return values, nil
}

// cell maps driver values onto the kinds codecs read.
func cell(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC()
	}
	return v
}

func (r *Reader) Close() error {
	err := r.rows.Close()
	if r.db != nil {
		if cerr := r.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
