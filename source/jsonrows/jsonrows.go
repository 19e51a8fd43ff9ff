// Package jsonrows reads rows from JSON: either a top-level array of rows or
// one row per line (JSON Lines). A row is an array of cells or an object;
// keyed rows yield a header row built from the first object's keys.
package jsonrows

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/resource"
	"github.com/reoring/tabskema/source"
)

// File returns an Opener for a file path.
func File(path string) resource.Opener {
	return func(context.Context) (resource.RowSource, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
		}
		r, err := newReader(f, f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return r, nil
	}
}

// Bytes returns an Opener over in-memory JSON.
func Bytes(data []byte) resource.Opener {
	return func(context.Context) (resource.RowSource, error) {
		return newReader(bytes.NewReader(data), nil)
	}
}

// Reader is a JSON row source. It implements resource.ByteCounter.
type Reader struct {
	counter *source.Counter
	closer  io.Closer
	next    func() ([]byte, error)
	keys    []string
	pending [][]any
}

func newReader(r io.Reader, closer io.Closer) (*Reader, error) {
	counter := source.NewCounter(r)
	br := bufio.NewReader(counter)
	rd := &Reader{counter: counter, closer: closer}
	first, err := peekNonSpace(br)
	switch {
	case errors.Is(err, io.EOF):
		rd.next = func() ([]byte, error) { return nil, io.EOF }
		return rd, nil
	case err != nil:
		return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
	}
	if first == '[' {
		data, err := io.ReadAll(br)
		if err != nil {
			return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
		}
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, tabskema.NewErrorf(tabskema.ErrSource, "cannot parse JSON rows: %v", err)
		}
		rd.next = func() ([]byte, error) {
			if len(items) == 0 {
				return nil, io.EOF
			}
			item := items[0]
			items = items[1:]
			return item, nil
		}
		return rd, nil
	}
	rd.next = func() ([]byte, error) {
		for {
			line, err := br.ReadBytes('\n')
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				return trimmed, nil
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return rd, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

// ReadRow returns the next row. Numbers are json.Number.
func (r *Reader) ReadRow() ([]any, error) {
	if len(r.pending) > 0 {
		row := r.pending[0]
		r.pending = r.pending[1:]
		return row, nil
	}
	raw, err := r.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, tabskema.NewError(tabskema.ErrSource, err.Error())
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, tabskema.NewErrorf(tabskema.ErrSource, "cannot parse JSON row: %v", err)
	}
	switch x := v.(type) {
	case []any:
		return x, nil
	case map[string]any:
		keys, err := objectKeys(raw)
		if err != nil {
			return nil, tabskema.NewErrorf(tabskema.ErrSource, "cannot parse JSON row: %v", err)
		}
		if r.keys == nil {
			r.keys = keys
			header := make([]any, len(keys))
			for i, k := range keys {
				header[i] = k
			}
			r.pending = append(r.pending, keyed(r.keys, x))
			return header, nil
		}
		return keyed(r.keys, x), nil
	}
	return nil, tabskema.NewErrorf(tabskema.ErrSource, "JSON row must be an array or an object, got %s", kindOf(v))
}

// keyed orders an object's values by the header keys. Unknown keys are
// dropped and absent keys are nil.
func keyed(keys []string, obj map[string]any) []any {
	row := make([]any, len(keys))
	for i, k := range keys {
		row[i] = obj[k]
	}
	return row
}

type frame struct {
	object       bool
	keys         map[string]struct{}
	expectingKey bool
}

// objectKeys returns the top-level keys of a JSON object in document order.
// A key repeated in any object of the row is an error, since decoding into
// a map keeps only the last value.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var (
		keys  []string
		stack []frame
	)
	// valueDone flips the enclosing object back to expecting a key.
	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].expectingKey = true
		}
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, frame{object: true, keys: map[string]struct{}{}, expectingKey: true})
			case '[':
				stack = append(stack, frame{})
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
			continue
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectingKey {
				top := &stack[n-1]
				if _, dup := top.keys[v]; dup {
					return nil, fmt.Errorf("duplicate key %q", v)
				}
				top.keys[v] = struct{}{}
				top.expectingKey = false
				if n == 1 {
					keys = append(keys, v)
				}
				continue
			}
		}
		valueDone()
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func (r *Reader) Bytes() int64 { return r.counter.Bytes() }
func (r *Reader) Hash() string { return r.counter.Hash() }

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
