package cli

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/jsonschema"
	"github.com/reoring/tabskema/resource"
)

func renderJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderReport writes a report. Formats other than json and yaml render as
// text.
func renderReport(w io.Writer, format string, r *tabskema.Report) error {
	switch format {
	case "json":
		return renderJSON(w, r)
	case "yaml":
		return renderYAML(w, r)
	}

	if len(r.Errors) > 0 {
		_, _ = fmt.Fprintln(w, "# report")
		renderErrors(w, r.Errors)
	}
	for _, task := range r.Tasks {
		status := "valid"
		if !task.Valid {
			status = "invalid"
		}
		place := task.Place
		if place == "" {
			place = task.Resource
		}
		_, _ = fmt.Fprintf(w, "# %s: %s\n", status, place)
		for _, warn := range task.Warnings {
			_, _ = fmt.Fprintf(w, "warning: %s\n", warn)
		}
		if len(task.Errors) > 0 {
			renderErrors(w, task.Errors)
		}
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Tasks", "Rows", "Errors", "Warnings", "Time"})
	rows := 0
	for _, task := range r.Tasks {
		rows += task.Stats.Rows
	}
	t.AppendRow(table.Row{r.Stats.Tasks, rows, r.Stats.Errors, r.Stats.Warnings, fmt.Sprintf("%.3fs", r.Time)})
	t.Render()
	return nil
}

func renderErrors(w io.Writer, errs []tabskema.Error) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Row", "Field", "Type", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 4, WidthMax: 80},
	})
	for _, e := range errs {
		t.AppendRow(table.Row{blankIfZero(e.RowNumber), blankIfZero(e.FieldNumber), e.Type, e.Message})
	}
	t.Render()
}

func blankIfZero(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprint(n)
}

// renderDescription writes the inferred schema of an opened table.
func renderDescription(w io.Writer, format string, tbl *resource.Table) error {
	switch format {
	case "json":
		return renderJSON(w, tbl.Schema().Descriptor())
	case "yaml":
		return renderYAML(w, tbl.Schema().Descriptor())
	case "jsonschema":
		return renderJSON(w, jsonschema.FromSchema(tbl.Schema()))
	}

	labels := tbl.Labels()
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Name", "Type", "Format", "Required", "Label"})
	for i, f := range tbl.Schema().Fields() {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		required := ""
		if f.Required() {
			required = "yes"
		}
		d := f.Descriptor()
		t.AppendRow(table.Row{i + 1, d.Name, d.Type, d.Format, required, label})
	}
	t.Render()

	var info []string
	if enc := tbl.Encoding(); enc != "" {
		info = append(info, "encoding: "+enc)
	}
	if rows := tbl.Layout().HeaderRowNumbers(); len(rows) > 0 {
		info = append(info, fmt.Sprintf("header rows: %v", rows))
	} else {
		info = append(info, "no header")
	}
	if pk := tbl.Schema().PrimaryKey(); len(pk) > 0 {
		info = append(info, "primary key: "+strings.Join(pk, ", "))
	}
	_, _ = fmt.Fprintln(w, strings.Join(info, "; "))
	return nil
}
