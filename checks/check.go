// Package checks holds the pluggable checks run by the validation engine.
//
// A check is connected to an opened table, sees the start of the table, every
// row, and the end of the table, and yields errors of the types listed in its
// scope. The baseline check reports the errors every table read produces
// (header, row, cell and statistics errors); the others are opt-in.
package checks

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/internal/validation"
	"github.com/reoring/tabskema/resource"
)

// Check is a table validation step.
type Check interface {
	// Type is the check's descriptor type, for example "duplicate-row".
	Type() string
	// Scope lists the error types the check may yield.
	Scope() []string
	Connect(t *resource.Table)
	ValidateStart() []tabskema.Error
	ValidateRow(r *resource.Row) []tabskema.Error
	ValidateEnd() []tabskema.Error
}

// MetadataChecker is implemented by checks with options. A check reporting
// metadata errors is not run.
type MetadataChecker interface {
	MetadataErrors() []tabskema.Error
}

// base provides no-op hooks.
type base struct {
	table *resource.Table
}

func (b *base) Connect(t *resource.Table)                  { b.table = t }
func (b *base) ValidateStart() []tabskema.Error            { return nil }
func (b *base) ValidateRow(*resource.Row) []tabskema.Error { return nil }
func (b *base) ValidateEnd() []tabskema.Error              { return nil }

// fieldIndex resolves a field name in the connected table's schema.
func (b *base) fieldIndex(name string) (int, bool) {
	i := slices.Index(b.table.Schema().FieldNames(), name)
	return i, i >= 0
}

// optionErrors validates an option struct into check-errors.
func optionErrors(typ string, opt any) []tabskema.Error {
	var out []tabskema.Error
	for _, note := range validation.Struct(opt) {
		out = append(out, tabskema.NewErrorf(tabskema.ErrCheck, "%s: %s", typ, note))
	}
	return out
}

// Factory builds a check from its JSON-encoded options.
type Factory func(options []byte) (Check, error)

// Registry maps check types to factories. It is constructed once per
// session and handed to whatever builds checks from descriptors.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in checks.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register(TypeBaseline, func([]byte) (Check, error) { return NewBaseline(), nil })
	r.Register(TypeASCIIValue, func([]byte) (Check, error) { return NewASCIIValue(), nil })
	r.Register(TypeDuplicateRow, func([]byte) (Check, error) { return NewDuplicateRow(), nil })
	r.Register(TypeTruncatedValue, func([]byte) (Check, error) { return NewTruncatedValue(), nil })
	r.Register(TypeDeviatedCell, factoryOf(TypeDeviatedCell, func(o DeviatedCellOptions) Check { return NewDeviatedCell(o) }))
	r.Register(TypeDeviatedValue, factoryOf(TypeDeviatedValue, func(o DeviatedValueOptions) Check { return NewDeviatedValue(o) }))
	r.Register(TypeForbiddenValue, factoryOf(TypeForbiddenValue, func(o ForbiddenValueOptions) Check { return NewForbiddenValue(o) }))
	r.Register(TypeRowConstraint, factoryOf(TypeRowConstraint, func(o RowConstraintOptions) Check { return NewRowConstraint(o) }))
	r.Register(TypeSequentialValue, factoryOf(TypeSequentialValue, func(o SequentialValueOptions) Check { return NewSequentialValue(o) }))
	r.Register(TypeTableDimensions, factoryOf(TypeTableDimensions, func(o TableDimensionsOptions) Check { return NewTableDimensions(o) }))
	return r
}

// Register makes a check type available to FromDescriptor. Registering a
// type twice replaces the previous factory.
func (r *Registry) Register(typ string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typ] = f
}

// Types lists the registered check types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FromDescriptor builds a check from a descriptor such as
// {"type": "deviated-value", "fieldName": "price"}.
func (r *Registry) FromDescriptor(d map[string]any) (Check, error) {
	typ, _ := d["type"].(string)
	if typ == "" {
		return nil, tabskema.NewError(tabskema.ErrCheck, `check descriptor has no "type"`)
	}
	r.mu.RLock()
	f, ok := r.factories[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, tabskema.NewErrorf(tabskema.ErrCheck, "unknown check type %q", typ)
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, tabskema.NewErrorf(tabskema.ErrCheck, "%s: %v", typ, err)
	}
	return f(raw)
}

// factoryOf adapts a typed constructor into a Factory.
func factoryOf[O any](typ string, build func(O) Check) Factory {
	return func(raw []byte) (Check, error) {
		var opt O
		if err := json.Unmarshal(raw, &opt); err != nil {
			return nil, tabskema.NewError(tabskema.ErrCheck, fmt.Sprintf("%s: %v", typ, err))
		}
		return build(opt), nil
	}
}

// Check types.
const (
	TypeBaseline        = "baseline"
	TypeASCIIValue      = "ascii-value"
	TypeDeviatedCell    = "deviated-cell"
	TypeDeviatedValue   = "deviated-value"
	TypeDuplicateRow    = "duplicate-row"
	TypeForbiddenValue  = "forbidden-value"
	TypeRowConstraint   = "row-constraint"
	TypeSequentialValue = "sequential-value"
	TypeTableDimensions = "table-dimensions"
	TypeTruncatedValue  = "truncated-value"
)
