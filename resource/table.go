package resource

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/detect"
)

// cursor is the state of the row iterator: the buffered sample is replayed
// first, then the source is read live until it is exhausted.
type cursor interface{ isCursor() }

type (
	buffered  struct{ index int }
	live      struct{}
	exhausted struct{}
)

func (buffered) isCursor()  {}
func (live) isCursor()      {}
func (exhausted) isCursor() {}

// Table is an opened resource. It is not safe for concurrent use.
type Table struct {
	res      *Resource
	src      RowSource
	schema   *tabskema.Schema
	layout   *tabskema.Layout
	header   *Header
	labels   []string
	sample   [][]any
	fragment [][]any
	drained  bool
	cur      cursor

	lastHeader int
	position   int
	number     int
	rows       int
	integrity  *integrity
	closed     bool
}

// OpenOptions tunes OpenWith.
type OpenOptions struct {
	// NoIntegrity disables unique, primary key and foreign key checks.
	NoIntegrity bool
}

// Open reads the sample, detects layout and schema, and positions the table
// before its first data row.
func (r *Resource) Open(ctx context.Context) (*Table, error) {
	return r.OpenWith(ctx, OpenOptions{})
}

// OpenWith is Open with options.
func (r *Resource) OpenWith(ctx context.Context, opt OpenOptions) (*Table, error) {
	if r.Source == nil {
		return nil, tabskema.NewErrorf(tabskema.ErrSource, "resource %q has no source", r.Name)
	}
	det := r.Detector
	if det == nil {
		var err error
		if det, err = detect.New(codec.NewRegistry(), detect.Options{}); err != nil {
			return nil, err
		}
	}
	src, err := r.Source(ctx)
	if err != nil {
		return nil, sourceError(err)
	}
	t := &Table{res: r, src: src, cur: buffered{}}
	if err := t.prepare(ctx, det, opt); err != nil {
		_ = src.Close()
		return nil, err
	}
	return t, nil
}

func sourceError(err error) error {
	if _, ok := tabskema.AsErrors(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return tabskema.NewError(tabskema.ErrSource, err.Error())
}

func (t *Table) prepare(ctx context.Context, det *detect.Detector, opt OpenOptions) error {
	for len(t.sample) < det.SampleSize() {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := t.src.ReadRow()
		if errors.Is(err, io.EOF) {
			t.drained = true
			break
		}
		if err != nil {
			return sourceError(err)
		}
		t.sample = append(t.sample, row)
	}

	t.layout = det.DetectLayout(t.sample, t.res.Layout)
	headerRows := t.layout.HeaderRowNumbers()
	if len(headerRows) > 0 {
		t.lastHeader = slices.Max(headerRows)
	}
	var headerCells [][]any
	number := 0
	for i, cells := range t.sample {
		if !t.layout.Keeps(i+1, cells) {
			continue
		}
		number++
		switch {
		case slices.Contains(headerRows, number):
			headerCells = append(headerCells, cells)
		case number > t.lastHeader:
			t.fragment = append(t.fragment, cells)
		}
	}
	if t.layout.HasHeader() {
		t.labels = t.layout.Labels(headerCells)
	}

	schema, err := det.DetectSchema(detect.SchemaInput{
		Fragment:   t.fragment,
		Labels:     t.labels,
		Schema:     t.res.Schema,
		IgnoreCase: t.layout.IgnoreCase(),
	})
	if err != nil {
		return err
	}
	t.schema = schema
	t.header = newHeader(t.labels, schema, headerRows, t.layout.IgnoreCase(), !t.layout.HasHeader())

	if opt.NoIntegrity {
		return nil
	}
	lookup := Lookup{}
	for name, byFields := range t.res.Lookup {
		lookup[name] = map[string]map[string]struct{}{}
		for fields, set := range byFields {
			lookup[name][fields] = set
		}
	}
	if err := t.selfLookup(ctx, det, lookup); err != nil {
		return err
	}
	t.integrity = newIntegrity(schema, lookup)
	return nil
}

// selfLookup reads the table a second time and collects the values that
// self-referencing foreign keys point to.
func (t *Table) selfLookup(ctx context.Context, det *detect.Detector, lookup Lookup) error {
	var refs [][]string
	for _, fk := range t.schema.ForeignKeys() {
		if fk.Reference.Resource == "" {
			refs = append(refs, fk.Reference.Fields)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	again := Resource{
		Name:     t.res.Name,
		Place:    t.res.Place,
		Source:   t.res.Source,
		Schema:   t.schema,
		Layout:   t.layout,
		Detector: det,
	}
	other, err := again.OpenWith(ctx, OpenOptions{NoIntegrity: true})
	if err != nil {
		return err
	}
	defer other.Close()
	for {
		row, err := other.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if row.Blank {
			continue
		}
		for _, fields := range refs {
			values := make([]any, len(fields))
			for i, name := range fields {
				values[i], _ = row.Value(name)
			}
			lookup.Add("", fields, values)
		}
	}
}

// Next returns the next data row, or io.EOF after the last one. Header rows
// and rows the layout filters out are skipped.
func (t *Table) Next(ctx context.Context) (*Row, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var cells []any
		switch c := t.cur.(type) {
		case buffered:
			if c.index >= len(t.sample) {
				if t.drained {
					t.cur = exhausted{}
				} else {
					t.cur = live{}
				}
				continue
			}
			cells = t.sample[c.index]
			t.cur = buffered{index: c.index + 1}
		case live:
			row, err := t.src.ReadRow()
			if errors.Is(err, io.EOF) {
				t.cur = exhausted{}
				return nil, io.EOF
			}
			if err != nil {
				t.cur = exhausted{}
				return nil, sourceError(err)
			}
			cells = row
		case exhausted:
			return nil, io.EOF
		}

		t.position++
		if !t.layout.Keeps(t.position, cells) {
			continue
		}
		t.number++
		if t.number <= t.lastHeader {
			continue
		}
		row := readRow(t.schema, t.number, t.position, cells)
		if t.integrity != nil && !row.Blank {
			t.integrity.check(row)
		}
		t.rows++
		return row, nil
	}
}

// Resource returns the resource the table was opened from.
func (t *Table) Resource() *Resource { return t.res }

// Schema returns the schema in effect.
func (t *Table) Schema() *tabskema.Schema { return t.schema }

// Layout returns the layout in effect.
func (t *Table) Layout() *tabskema.Layout { return t.layout }

// Header returns the header compared to the schema.
func (t *Table) Header() *Header { return t.header }

// Labels returns the header labels, nil without header.
func (t *Table) Labels() []string { return slices.Clone(t.labels) }

// Sample returns the raw rows buffered for detection.
func (t *Table) Sample() [][]any { return t.sample }

// Fragment returns the sampled data rows used for inference.
func (t *Table) Fragment() [][]any { return t.fragment }

// Encoding returns the text encoding of the source, or "" when the source
// does not decode text.
func (t *Table) Encoding() string {
	if e, ok := t.src.(Encoder); ok {
		return e.Encoding()
	}
	return ""
}

// Stats returns what has been measured so far. Bytes and hash are only
// known for byte sources and are final once Next has returned io.EOF.
func (t *Table) Stats() Stats {
	s := Stats{Fields: t.schema.Len(), Rows: t.rows}
	if bc, ok := t.src.(ByteCounter); ok {
		s.Bytes = bc.Bytes()
		s.Hash = bc.Hash()
	}
	return s
}

// Close releases the source. It is safe to call twice.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.src.Close()
}
