package resource

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reoring/tabskema"
)

// Lookup holds reference tables for foreign keys:
// resource name -> reference field names -> set of value keys. The empty
// resource name is the table itself.
type Lookup map[string]map[string]map[string]struct{}

// Add records one reference row.
func (l Lookup) Add(resource string, fields []string, values []any) {
	byFields, ok := l[resource]
	if !ok {
		byFields = map[string]map[string]struct{}{}
		l[resource] = byFields
	}
	fk := strings.Join(fields, "\x1f")
	set, ok := byFields[fk]
	if !ok {
		set = map[string]struct{}{}
		byFields[fk] = set
	}
	set[KeyOf(values)] = struct{}{}
}

// Contains reports whether values exist in the reference table.
func (l Lookup) Contains(resource string, fields []string, values []any) bool {
	set := l[resource][strings.Join(fields, "\x1f")]
	_, ok := set[KeyOf(values)]
	return ok
}

// KeyOf renders values into a comparable key. Numbers compare by magnitude,
// so int64(1) and decimal 1.0 share a key.
func KeyOf(values []any) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch x := v.(type) {
		case nil:
			b.WriteString("\x00")
		case decimal.Decimal:
			b.WriteString("n:" + x.String())
		case int64:
			b.WriteString("n:" + decimal.NewFromInt(x).String())
		case int:
			b.WriteString("n:" + decimal.NewFromInt(int64(x)).String())
		case float64:
			b.WriteString("n:" + decimal.NewFromFloat(x).String())
		case time.Time:
			b.WriteString("t:" + x.UTC().Format(time.RFC3339Nano))
		case string:
			b.WriteString("s:" + x)
		default:
			fmt.Fprintf(&b, "%T:%v", v, v)
		}
	}
	return b.String()
}

// integrity remembers unique and primary key values across rows.
type integrity struct {
	uniques map[int]map[string]int
	primary []int
	pkSeen  map[string]int
	foreign []foreignGroup
	lookup  Lookup
}

type foreignGroup struct {
	source    []int
	resource  string
	reference []string
}

func newIntegrity(schema *tabskema.Schema, lookup Lookup) *integrity {
	in := &integrity{uniques: map[int]map[string]int{}, pkSeen: map[string]int{}, lookup: lookup}
	index := map[string]int{}
	for i, f := range schema.Fields() {
		index[f.Name()] = i
		if f.Unique() {
			in.uniques[i] = map[string]int{}
		}
	}
	for _, name := range schema.PrimaryKey() {
		in.primary = append(in.primary, index[name])
	}
	for _, fk := range schema.ForeignKeys() {
		g := foreignGroup{resource: fk.Reference.Resource, reference: fk.Reference.Fields}
		for _, name := range fk.Fields {
			g.source = append(g.source, index[name])
		}
		in.foreign = append(in.foreign, g)
	}
	return in
}

func (in *integrity) check(r *Row) {
	for i := 0; i < len(r.Values); i++ {
		seen, ok := in.uniques[i]
		if !ok || r.Values[i] == nil {
			continue
		}
		key := KeyOf([]any{r.Values[i]})
		if match, dup := seen[key]; dup {
			r.Errors = append(r.Errors, r.CellError(tabskema.ErrUnique, fmt.Sprintf("the same as in the row at position %d", match), i))
		}
		seen[key] = r.Number
	}
	if len(in.primary) > 0 {
		values := pick(r.Values, in.primary)
		switch {
		case allNil(values):
			r.Errors = append(r.Errors, r.RowError(tabskema.ErrPrimaryKey, `cells composing the primary keys are all "None"`))
		default:
			key := KeyOf(values)
			if match, dup := in.pkSeen[key]; dup {
				r.Errors = append(r.Errors, r.RowError(tabskema.ErrPrimaryKey, fmt.Sprintf("the same as in the row at position %d", match)))
			}
			in.pkSeen[key] = r.Number
		}
	}
	for _, g := range in.foreign {
		values := pick(r.Values, g.source)
		if allNil(values) {
			continue
		}
		if !in.lookup.Contains(g.resource, g.reference, values) {
			r.Errors = append(r.Errors, r.RowError(tabskema.ErrForeignKey, "not found in the lookup table"))
		}
	}
}

func pick(values []any, idx []int) []any {
	out := make([]any, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

func allNil(values []any) bool {
	for _, v := range values {
		if v != nil {
			return false
		}
	}
	return true
}
