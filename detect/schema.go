package detect

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/codec"
)

// SchemaInput is what schema detection looks at.
type SchemaInput struct {
	// Fragment holds the data rows of the sample (header rows excluded).
	Fragment [][]any
	// Labels are the header labels, if any.
	Labels []string
	// Schema is an optional user schema. When it has fields, inference is
	// skipped but sync and patch still apply.
	Schema *tabskema.Schema
	// IgnoreCase makes schema sync match labels case-insensitively.
	IgnoreCase bool
}

// DetectSchema infers a schema. It never fails on ambiguous data; fields
// without a confident type become "any". Errors are reserved for structural
// problems: duplicate labels under sync, a malformed patch, or duplicate
// field names in the result.
func (d *Detector) DetectSchema(in SchemaInput) (*tabskema.Schema, error) {
	var desc tabskema.SchemaDescriptor
	if in.Schema != nil && in.Schema.Len() > 0 {
		desc = in.Schema.Descriptor()
	} else {
		desc = d.infer(in.Fragment, in.Labels)
	}

	if d.opt.SchemaSync && len(in.Labels) > 0 {
		synced, err := syncFields(desc.Fields, in.Labels, in.IgnoreCase)
		if err != nil {
			return nil, err
		}
		desc.Fields = synced
	}

	if len(d.opt.SchemaPatch) > 0 {
		patched, err := tabskema.PatchSchema(desc, d.opt.SchemaPatch)
		if err != nil {
			return nil, tabskema.Errors{tabskema.NewError(tabskema.ErrSchema, err.Error())}
		}
		desc = patched
	}

	names := make([]string, len(desc.Fields))
	for i, f := range desc.Fields {
		names[i] = f.Name
	}
	if hasDuplicates(names) {
		note := "schemas with duplicate field names are not supported"
		if d.opt.SchemaSync {
			note = "duplicate labels in the header are not supported with schema sync"
		}
		return nil, tabskema.Errors{tabskema.NewError(tabskema.ErrSchema, note)}
	}
	return tabskema.NewSchema(d.reg, desc)
}

// FieldNames resolves names: explicit names, then labels, then field{n}
// sized after the first fragment row. Newlines become spaces, blanks become
// field{n} and repeats are numbered.
func (d *Detector) FieldNames(fragment [][]any, labels []string) []string {
	names := slices.Clone(d.opt.FieldNames)
	if len(names) == 0 {
		names = slices.Clone(labels)
	}
	for i, n := range names {
		names[i] = strings.TrimSpace(strings.ReplaceAll(n, "\n", " "))
	}
	if len(names) == 0 && len(fragment) > 0 {
		for i := range fragment[0] {
			names = append(names, "field"+strconv.Itoa(i+1))
		}
	}
	return tabskema.DeduplicateNames(names)
}

func (d *Detector) infer(fragment [][]any, labels []string) tabskema.SchemaDescriptor {
	var desc tabskema.SchemaDescriptor
	if !slices.Equal(d.opt.FieldMissingValues, tabskema.DefaultMissingValues) {
		desc.MissingValues = slices.Clone(d.opt.FieldMissingValues)
	}
	names := d.FieldNames(fragment, labels)
	desc.Fields = make([]tabskema.FieldDescriptor, len(names))

	if d.opt.FieldType != "" || len(fragment) == 0 {
		typ := d.opt.FieldType
		if typ == "" {
			typ = codec.TypeAny
		}
		for i, n := range names {
			desc.Fields[i] = tabskema.FieldDescriptor{Name: n, Type: typ}
		}
		return desc
	}

	// scores[col][cand]; a candidate is dropped once its score falls below
	// threshold and committed once it reaches maxScore*confidence.
	conf := d.opt.FieldConfidence
	threshold := float64(len(fragment)) * (conf - 1)
	scores := make([][]int, len(names))
	maxScore := make([]int, len(names))
	committed := make([]*tabskema.Field, len(names))
	for i := range names {
		scores[i] = make([]int, len(d.candidates))
		maxScore[i] = len(fragment)
	}
	for _, cells := range fragment {
		for col := range names {
			if committed[col] != nil {
				continue
			}
			var source any
			if col < len(cells) {
				source = cells[col]
			}
			if d.isMissing(source) {
				maxScore[col]--
				continue
			}
			for ci, cand := range d.candidates {
				if float64(scores[col][ci]) < threshold {
					continue
				}
				if _, notes := cand.ReadCell(source); len(notes) == 0 {
					scores[col][ci]++
				} else {
					scores[col][ci]--
				}
				if maxScore[col] > 0 && float64(scores[col][ci]) >= float64(maxScore[col])*conf {
					committed[col] = cand
					break
				}
			}
		}
	}
	for i, n := range names {
		if committed[i] == nil {
			desc.Fields[i] = tabskema.FieldDescriptor{Name: n, Type: codec.TypeAny}
			continue
		}
		fd := committed[i].Descriptor()
		fd.Name = n
		desc.Fields[i] = fd
	}
	return desc
}

func (d *Detector) isMissing(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && slices.Contains(d.opt.FieldMissingValues, s)
}

// syncFields rebuilds the field list in label order. Labels without a
// matching field get a bare "any" field; fields without a label are dropped.
func syncFields(fields []tabskema.FieldDescriptor, labels []string, ignoreCase bool) ([]tabskema.FieldDescriptor, error) {
	key := func(s string) string {
		if ignoreCase {
			return strings.ToLower(s)
		}
		return s
	}
	keys := make([]string, len(labels))
	for i, l := range labels {
		keys[i] = key(l)
	}
	if hasDuplicates(keys) {
		return nil, tabskema.Errors{tabskema.NewError(tabskema.ErrSchema, "schema sync requires unique labels in the header")}
	}
	byName := make(map[string]tabskema.FieldDescriptor, len(fields))
	for _, f := range fields {
		byName[key(f.Name)] = f
	}
	out := make([]tabskema.FieldDescriptor, len(keys))
	for i, k := range keys {
		if f, ok := byName[k]; ok {
			out[i] = f
			continue
		}
		out[i] = tabskema.FieldDescriptor{Name: k, Type: codec.TypeAny}
	}
	return out, nil
}

func hasDuplicates(names []string) bool {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}
	return false
}

// String renders the options for logs.
func (o Options) String() string {
	return fmt.Sprintf("sample=%d buffer=%d fieldConfidence=%.2f fieldType=%q sync=%v",
		o.SampleSize, o.BufferSize, o.FieldConfidence, o.FieldType, o.SchemaSync)
}
