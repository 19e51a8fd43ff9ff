package tabskema

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/tabskema/i18n"
)

// Error types (exported consts for IDE completion and type safety by convention)
const (
	// Task level (tagged #general, always selected)
	ErrGeneral  = "general-error"
	ErrTask     = "task-error"
	ErrCheck    = "check-error"
	ErrSource   = "source-error"
	ErrEncoding = "encoding-error"
	ErrSchema   = "schema-error"
	ErrField    = "field-error"
	ErrDetector = "detector-error"
	// File statistics
	ErrHashCount  = "hash-count"
	ErrByteCount  = "byte-count"
	ErrFieldCount = "field-count"
	ErrRowCount   = "row-count"
	// Table
	ErrTableDimensions = "table-dimensions"
	ErrDeviatedValue   = "deviated-value"
	// Header
	ErrBlankHeader    = "blank-header"
	ErrExtraLabel     = "extra-label"
	ErrMissingLabel   = "missing-label"
	ErrBlankLabel     = "blank-label"
	ErrDuplicateLabel = "duplicate-label"
	ErrIncorrectLabel = "incorrect-label"
	// Row
	ErrBlankRow      = "blank-row"
	ErrPrimaryKey    = "primary-key"
	ErrForeignKey    = "foreign-key"
	ErrDuplicateRow  = "duplicate-row"
	ErrRowConstraint = "row-constraint"
	// Cell
	ErrExtraCell       = "extra-cell"
	ErrMissingCell     = "missing-cell"
	ErrType            = "type-error"
	ErrConstraint      = "constraint-error"
	ErrUnique          = "unique-error"
	ErrTruncatedValue  = "truncated-value"
	ErrForbiddenValue  = "forbidden-value"
	ErrSequentialValue = "sequential-value"
	ErrASCIIValue      = "ascii-value"
	ErrDeviatedCell    = "deviated-cell"
)

// Tags used for error selection.
const (
	TagGeneral = "#general"
	TagFile    = "#file"
	TagTable   = "#table"
	TagHeader  = "#header"
	TagLabel   = "#label"
	TagRow     = "#row"
	TagCell    = "#cell"
)

var (
	generalTags = []string{TagGeneral}
	fileTags    = []string{TagFile, TagTable}
	tableTags   = []string{TagTable}
	headerTags  = []string{TagTable, TagHeader}
	labelTags   = []string{TagTable, TagHeader, TagLabel}
	rowTags     = []string{TagTable, TagRow}
	cellTags    = []string{TagTable, TagRow, TagCell}
)

var errorTags = map[string][]string{
	ErrGeneral: generalTags, ErrTask: generalTags, ErrCheck: generalTags,
	ErrSource: generalTags, ErrEncoding: generalTags, ErrSchema: generalTags,
	ErrField: generalTags, ErrDetector: generalTags,

	ErrHashCount: fileTags, ErrByteCount: fileTags,
	ErrFieldCount: tableTags, ErrRowCount: tableTags,
	ErrTableDimensions: tableTags, ErrDeviatedValue: tableTags,

	ErrBlankHeader: headerTags,
	ErrExtraLabel:  labelTags, ErrMissingLabel: labelTags, ErrBlankLabel: labelTags,
	ErrDuplicateLabel: labelTags, ErrIncorrectLabel: labelTags,

	ErrBlankRow: rowTags, ErrPrimaryKey: rowTags, ErrForeignKey: rowTags,
	ErrDuplicateRow: rowTags, ErrRowConstraint: rowTags,

	ErrExtraCell: cellTags, ErrMissingCell: cellTags, ErrType: cellTags,
	ErrConstraint: cellTags, ErrUnique: cellTags, ErrTruncatedValue: cellTags,
	ErrForbiddenValue: cellTags, ErrSequentialValue: cellTags,
	ErrASCIIValue: cellTags, ErrDeviatedCell: cellTags,
}

// TagsOf returns the selection tags declared for an error type.
func TagsOf(typ string) []string { return slices.Clone(errorTags[typ]) }

// Error represents a single reported problem. Position fields are zero when
// the error is not bound to a row or field.
type Error struct {
	Type        string   `json:"type" yaml:"type"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Message     string   `json:"message" yaml:"message"`
	Note        string   `json:"note" yaml:"note"`
	Tags        []string `json:"tags" yaml:"tags"`
	RowNumber   int      `json:"rowNumber,omitempty" yaml:"rowNumber,omitempty"`
	FieldNumber int      `json:"fieldNumber,omitempty" yaml:"fieldNumber,omitempty"`
	FieldName   string   `json:"fieldName,omitempty" yaml:"fieldName,omitempty"`
	Cell        string   `json:"cell,omitempty" yaml:"cell,omitempty"`
	Cells       []string `json:"cells,omitempty" yaml:"cells,omitempty"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Labels      []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	RowNumbers  []int    `json:"rowNumbers,omitempty" yaml:"rowNumbers,omitempty"`
}

func (e Error) Error() string { return e.Message }

// HasTag reports whether the error carries the tag.
func (e Error) HasTag(tag string) bool { return slices.Contains(e.Tags, tag) }

// General reports whether the error is a task-level error that bypasses
// selection.
func (e Error) General() bool { return e.HasTag(TagGeneral) }

// finish fills catalog-derived properties (tags, title, description, message).
func finish(e Error) Error {
	e.Tags = TagsOf(e.Type)
	e.Title = i18n.Title(e.Type)
	e.Description = i18n.Description(e.Type)
	data := map[string]string{
		"note":      e.Note,
		"cell":      e.Cell,
		"label":     e.Label,
		"fieldName": e.FieldName,
	}
	if e.RowNumber > 0 {
		data["rowNumber"] = strconv.Itoa(e.RowNumber)
	}
	if e.FieldNumber > 0 {
		data["fieldNumber"] = strconv.Itoa(e.FieldNumber)
	}
	e.Message = i18n.T(e.Type, data)
	return e
}

// NewError creates a position-less error of the given type.
func NewError(typ, note string) Error {
	return finish(Error{Type: typ, Note: note})
}

// NewErrorf is NewError with a formatted note.
func NewErrorf(typ, format string, args ...any) Error {
	return NewError(typ, fmt.Sprintf(format, args...))
}

// NewHeaderError creates a header or label error.
func NewHeaderError(typ, note string, labels []string, rowNumbers []int, label, fieldName string, fieldNumber int) Error {
	return finish(Error{
		Type: typ, Note: note, Labels: labels, RowNumbers: rowNumbers,
		Label: label, FieldName: fieldName, FieldNumber: fieldNumber,
	})
}

// NewRowError creates an error bound to a row.
func NewRowError(typ, note string, rowNumber int, cells []string) Error {
	return finish(Error{Type: typ, Note: note, RowNumber: rowNumber, Cells: cells})
}

// NewCellError creates an error bound to a single cell.
func NewCellError(typ, note string, rowNumber int, cells []string, cell, fieldName string, fieldNumber int) Error {
	return finish(Error{
		Type: typ, Note: note, RowNumber: rowNumber, Cells: cells,
		Cell: cell, FieldName: fieldName, FieldNumber: fieldNumber,
	})
}

// Errors is a collection of errors that implements error.
type Errors []Error

// Error summarizes the first few errors.
func (es Errors) Error() string {
	if len(es) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(es), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", es[i].Type, es[i].Note)
	}
	if len(es) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(es))
	}
	return b.String()
}

// AsErrors extracts Errors (or a single Error) from err using errors.As.
func AsErrors(err error) (Errors, bool) {
	if err == nil {
		return nil, false
	}
	var es Errors
	if errors.As(err, &es) {
		return es, true
	}
	var e Error
	if errors.As(err, &e) {
		return Errors{e}, true
	}
	return nil, false
}

// ToErrors converts any error to Errors; foreign errors become a single
// error of type fallback.
func ToErrors(err error, fallback string) Errors {
	if err == nil {
		return nil
	}
	if es, ok := AsErrors(err); ok {
		return es
	}
	return Errors{NewError(fallback, err.Error())}
}

// metadataErrors builds Errors of a single type from notes.
func metadataErrors(typ string, notes ...string) Errors {
	out := make(Errors, 0, len(notes))
	for _, n := range notes {
		out = append(out, NewError(typ, n))
	}
	return out
}
