package resource

import (
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/tabskema"
)

// Header is the label row(s) of a table compared to the schema fields.
type Header struct {
	Labels     []string
	FieldNames []string
	RowNumbers []int
	Errors     []tabskema.Error
	// Missing is set when the layout has no header.
	Missing bool
}

// Valid reports whether the header has no errors.
func (h *Header) Valid() bool { return len(h.Errors) == 0 }

func newHeader(labels []string, schema *tabskema.Schema, rowNumbers []int, ignoreCase, missing bool) *Header {
	h := &Header{
		Labels:     labels,
		FieldNames: schema.FieldNames(),
		RowNumbers: rowNumbers,
		Missing:    missing,
	}
	if missing {
		return h
	}
	// A header without a single label is one blank-header, not a blank-label
	// per column.
	if !slices.ContainsFunc(labels, func(l string) bool { return l != "" }) {
		h.Errors = []tabskema.Error{tabskema.NewHeaderError(tabskema.ErrBlankHeader, "", labels, rowNumbers, "", "", 0)}
		return h
	}
	fields := h.FieldNames
	add := func(typ, note, label, fieldName string, fieldNumber int) {
		h.Errors = append(h.Errors, tabskema.NewHeaderError(typ, note, labels, rowNumbers, label, fieldName, fieldNumber))
	}
	for i := len(fields); i < len(labels); i++ {
		add(tabskema.ErrExtraLabel, "", labels[i], "", i+1)
	}
	for i := len(labels); i < len(fields); i++ {
		add(tabskema.ErrMissingLabel, "", "", fields[i], i+1)
	}
	for i := 0; i < min(len(fields), len(labels)); i++ {
		label, name := labels[i], fields[i]
		if label == "" {
			add(tabskema.ErrBlankLabel, "", "", name, i+1)
			continue
		}
		var seen []string
		for j := 0; j < i; j++ {
			if labels[j] == label {
				seen = append(seen, strconv.Itoa(j+1))
			}
		}
		if len(seen) > 0 {
			add(tabskema.ErrDuplicateLabel, `at position "`+strings.Join(seen, ", ")+`"`, label, name, i+1)
			continue
		}
		if (ignoreCase && !strings.EqualFold(name, label)) || (!ignoreCase && name != label) {
			add(tabskema.ErrIncorrectLabel, "", label, name, i+1)
		}
	}
	return h
}
