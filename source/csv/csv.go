// Package csv reads delimited text files as row sources. The encoding is
// detected from the first bytes unless given.
package csv

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"io"
	"os"
	"unicode/utf8"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/detect"
	"github.com/reoring/tabskema/resource"
	"github.com/reoring/tabskema/source"
)

// Options configure the reader.
type Options struct {
	// Delimiter defaults to ','.
	Delimiter rune
	// Encoding skips detection when set.
	Encoding string
	// Detector provides the buffer size and encoding detection. Nil means
	// detect.New with zero options.
	Detector *detect.Detector
}

// File returns an Opener for a file path.
func File(path string, opt Options) resource.Opener {
	return func(ctx context.Context) (resource.RowSource, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
		}
		src, err := newReader(f, f, opt)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return src, nil
	}
}

// Bytes returns an Opener over in-memory content.
func Bytes(data []byte, opt Options) resource.Opener {
	return func(ctx context.Context) (resource.RowSource, error) {
		return newReader(bytes.NewReader(data), nil, opt)
	}
}

// NewReader reads CSV from r. The reader is closed with the source when it
// implements io.Closer.
func NewReader(r io.Reader, opt Options) (*Reader, error) {
	closer, _ := r.(io.Closer)
	return newReader(r, closer, opt)
}

// Reader is a CSV row source. It implements resource.ByteCounter and
// resource.Encoder.
type Reader struct {
	counter  *source.Counter
	csv      *stdcsv.Reader
	closer   io.Closer
	encoding string
	strict   bool
}

func newReader(r io.Reader, closer io.Closer, opt Options) (*Reader, error) {
	det := opt.Detector
	if det == nil {
		var err error
		if det, err = detect.New(codec.NewRegistry(), detect.Options{}); err != nil {
			return nil, err
		}
	}
	counter := source.NewCounter(r)
	prefix := make([]byte, det.BufferSize())
	n, err := io.ReadFull(counter, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
	}
	prefix = prefix[:n]

	label := det.DetectEncoding(prefix, opt.Encoding)
	text, err := source.Decode(io.MultiReader(bytes.NewReader(prefix), counter), label)
	if err != nil {
		return nil, err
	}
	cr := stdcsv.NewReader(text)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opt.Delimiter != 0 {
		if !validDelimiter(opt.Delimiter) {
			return nil, tabskema.NewErrorf(tabskema.ErrSource, "invalid delimiter %q", opt.Delimiter)
		}
		cr.Comma = opt.Delimiter
	}
	return &Reader{
		counter:  counter,
		csv:      cr,
		closer:   closer,
		encoding: label,
		strict:   label == "utf-8" || label == "ascii",
	}, nil
}

func validDelimiter(r rune) bool {
	return r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

// ReadRow returns the next record. Cells are strings.
func (r *Reader) ReadRow() ([]any, error) {
	rec, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
	}
	if r.strict {
		if err := source.CheckText(r.encoding, rec); err != nil {
			return nil, err
		}
	}
	row := make([]any, len(rec))
	for i, c := range rec {
		row[i] = c
	}
	return row, nil
}

func (r *Reader) Bytes() int64     { return r.counter.Bytes() }
func (r *Reader) Hash() string     { return r.counter.Hash() }
func (r *Reader) Encoding() string { return r.encoding }

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
