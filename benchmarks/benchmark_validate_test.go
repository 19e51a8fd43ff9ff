package tabskema_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/checks"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/detect"
	"github.com/reoring/tabskema/resource"
	"github.com/reoring/tabskema/source/csv"
	"github.com/reoring/tabskema/validate"
)

// ---- Helpers ----

// generateCSV returns a table of the form:
// id,name,price,born,active
// 0,n0,0.50,2000-01-01,true
func generateCSV(rows int) []byte {
	var buf bytes.Buffer
	buf.Grow(rows * 40)
	buf.WriteString("id,name,price,born,active\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&buf, "%d,n%d,%d.50,20%02d-%02d-%02d,%t\n", i, i, i%1000, i%100, i%12+1, i%28+1, i%2 == 0)
	}
	return buf.Bytes()
}

func sampleRows(rows int) [][]any {
	out := make([][]any, rows)
	for i := range out {
		out[i] = []any{fmt.Sprint(i), fmt.Sprintf("n%d", i), fmt.Sprintf("%d.50", i), "2001-02-03", "true"}
	}
	return out
}

func newDetector(tb testing.TB) *detect.Detector {
	tb.Helper()
	det, err := detect.New(codec.NewRegistry(), detect.Options{})
	if err != nil {
		tb.Fatalf("detector: %v", err)
	}
	return det
}

// ---- Benchmarks ----

func BenchmarkDetectSchema(b *testing.B) {
	det := newDetector(b)
	in := detect.SchemaInput{Fragment: sampleRows(100), Labels: []string{"id", "name", "price", "born", "active"}}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := det.DetectSchema(in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReadCell(b *testing.B) {
	reg := codec.NewRegistry()
	for _, tc := range []struct {
		typ  string
		cell string
	}{
		{"integer", "12345"},
		{"number", "1234.5"},
		{"date", "2001-02-03"},
		{"datetime", "2001-02-03T04:05:06Z"},
		{"duration", "P1Y2M3DT4H"},
	} {
		f, err := tabskema.NewField(reg, tabskema.FieldDescriptor{Name: "f", Type: tc.typ})
		if err != nil {
			b.Fatal(err)
		}
		b.Run(tc.typ, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, notes := f.ReadCell(tc.cell); len(notes) > 0 {
					b.Fatalf("notes: %v", notes)
				}
			}
		})
	}
}

func BenchmarkValidate_CSV(b *testing.B) {
	for _, n := range []int{1000, 10000} {
		data := generateCSV(n)
		det := newDetector(b)
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				res := &resource.Resource{Name: "bench", Source: csv.Bytes(data, csv.Options{Detector: det}), Detector: det}
				report := validate.Validate(context.Background(), res, validate.Options{})
				if !report.Valid {
					b.Fatalf("unexpected errors: %v", report.ErrorTypes())
				}
			}
		})
	}
}

func BenchmarkValidate_WithChecks(b *testing.B) {
	data := generateCSV(10000)
	det := newDetector(b)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		res := &resource.Resource{Name: "bench", Source: csv.Bytes(data, csv.Options{Detector: det}), Detector: det}
		report := validate.Validate(context.Background(), res, validate.Options{
			Checks: []checks.Check{
				checks.NewDuplicateRow(),
				checks.NewSequentialValue(checks.SequentialValueOptions{FieldName: "id"}),
				checks.NewDeviatedCell(checks.DeviatedCellOptions{}),
			},
		})
		if !report.Valid {
			b.Fatalf("unexpected errors: %v", report.ErrorTypes())
		}
	}
}
