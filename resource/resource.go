// Package resource reads a table through a row source: it buffers a sample,
// detects layout and schema, then streams typed rows with their errors.
package resource

import (
	"context"
	"io"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/detect"
)

// RowSource yields raw rows. ReadRow returns io.EOF after the last row.
// Errors other than io.EOF end the read; a tabskema.Error (for example an
// encoding-error) is reported as is, anything else as a source-error.
type RowSource interface {
	ReadRow() ([]any, error)
	Close() error
}

// ByteCounter is implemented by sources that read bytes. Values are final
// once ReadRow has returned io.EOF.
type ByteCounter interface {
	Bytes() int64
	Hash() string
}

// Encoder is implemented by sources that decode text.
type Encoder interface {
	Encoding() string
}

// Opener opens a fresh source positioned at the first row. It may be called
// more than once per validation (self-referencing foreign keys).
type Opener func(ctx context.Context) (RowSource, error)

// Stats are the expected or measured statistics of a table. Zero values are
// "unknown".
type Stats struct {
	Hash   string `json:"hash,omitempty" yaml:"hash,omitempty"`
	Bytes  int64  `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Fields int    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Rows   int    `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// Resource describes one table to read.
type Resource struct {
	Name   string
	Place  string
	Source Opener
	// Schema is used instead of inference when it has fields.
	Schema *tabskema.Schema
	// Layout overrides header detection when it sets HeaderRows or NoHeader.
	// Its comment and blank-row settings always apply.
	Layout *tabskema.Layout
	// Detector defaults to detect.New with zero options.
	Detector *detect.Detector
	// Stats are the expected statistics, checked by the baseline check.
	Stats Stats
	// Lookup provides reference tables for foreign keys to other resources.
	Lookup Lookup
}

// Inline returns an Opener over in-memory rows.
func Inline(rows [][]any) Opener {
	return func(context.Context) (RowSource, error) {
		return &inlineSource{rows: rows}, nil
	}
}

// InlineStrings is Inline for string rows.
func InlineStrings(rows [][]string) Opener {
	converted := make([][]any, len(rows))
	for i, r := range rows {
		converted[i] = make([]any, len(r))
		for j, c := range r {
			converted[i][j] = c
		}
	}
	return Inline(converted)
}

type inlineSource struct {
	rows [][]any
	next int
}

func (s *inlineSource) ReadRow() ([]any, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}

func (s *inlineSource) Close() error { return nil }
