package tabskema

import (
	"fmt"
	"slices"
)

// Version is reported in every Report.
const Version = "0.3.0"

// ReportStats summarizes a Report.
type ReportStats struct {
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Tasks    int `json:"tasks" yaml:"tasks"`
}

// TaskStats summarizes a ReportTask.
type TaskStats struct {
	Errors   int    `json:"errors" yaml:"errors"`
	Warnings int    `json:"warnings" yaml:"warnings"`
	Rows     int    `json:"rows,omitempty" yaml:"rows,omitempty"`
	Fields   int    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Bytes    int64  `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Hash     string `json:"hash,omitempty" yaml:"hash,omitempty"`
}

// ReportTask is the outcome of validating one resource. It is not modified
// after it is returned.
type ReportTask struct {
	Resource string    `json:"resource" yaml:"resource"`
	Place    string    `json:"place,omitempty" yaml:"place,omitempty"`
	Time     float64   `json:"time" yaml:"time"`
	Valid    bool      `json:"valid" yaml:"valid"`
	Scope    []string  `json:"scope" yaml:"scope"`
	Partial  bool      `json:"partial" yaml:"partial"`
	Labels   []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Stats    TaskStats `json:"stats" yaml:"stats"`
	Errors   []Error   `json:"errors" yaml:"errors"`
	Warnings []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewReportTask assembles a task and derives its validity and counters.
func NewReportTask(resource, place string, seconds float64, scope []string, partial bool, errs []Error, warnings []string, stats TaskStats) *ReportTask {
	if errs == nil {
		errs = []Error{}
	}
	if scope == nil {
		scope = []string{}
	}
	stats.Errors = len(errs)
	stats.Warnings = len(warnings)
	return &ReportTask{
		Resource: resource,
		Place:    place,
		Time:     seconds,
		Valid:    len(errs) == 0,
		Scope:    scope,
		Partial:  partial,
		Stats:    stats,
		Errors:   errs,
		Warnings: warnings,
	}
}

// Report aggregates one task per validated resource.
type Report struct {
	Version  string        `json:"version" yaml:"version"`
	Time     float64       `json:"time" yaml:"time"`
	Valid    bool          `json:"valid" yaml:"valid"`
	Stats    ReportStats   `json:"stats" yaml:"stats"`
	Errors   []Error       `json:"errors" yaml:"errors"`
	Warnings []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Tasks    []*ReportTask `json:"tasks" yaml:"tasks"`
}

// NewReport assembles a report. It is valid when it carries no errors of its
// own and every task is valid.
func NewReport(seconds float64, errs []Error, warnings []string, tasks ...*ReportTask) *Report {
	if errs == nil {
		errs = []Error{}
	}
	r := &Report{
		Version:  Version,
		Time:     seconds,
		Errors:   errs,
		Warnings: warnings,
		Tasks:    append([]*ReportTask{}, tasks...),
	}
	r.Valid = len(errs) == 0
	r.Stats = ReportStats{Errors: len(errs), Warnings: len(warnings), Tasks: len(tasks)}
	for _, t := range tasks {
		r.Valid = r.Valid && t.Valid
		r.Stats.Errors += t.Stats.Errors
		r.Stats.Warnings += t.Stats.Warnings
	}
	return r
}

// ReportFromErrors converts metadata errors, for example from NewSchema,
// into a report with a single failed task.
func ReportFromErrors(resource string, seconds float64, err error) *Report {
	errs := ToErrors(err, ErrGeneral)
	task := NewReportTask(resource, "", seconds, uniqueTypes(errs), false, errs, nil, TaskStats{})
	return NewReport(seconds, nil, nil, task)
}

func uniqueTypes(errs []Error) []string {
	var out []string
	for _, e := range errs {
		if !slices.Contains(out, e.Type) {
			out = append(out, e.Type)
		}
	}
	return out
}

// Task returns the only task of a single-resource report.
func (r *Report) Task() (*ReportTask, error) {
	if len(r.Tasks) != 1 {
		return nil, fmt.Errorf("tabskema: report has %d tasks, expected one", len(r.Tasks))
	}
	return r.Tasks[0], nil
}

// Flatten returns the selected properties of every task error, one row per
// error. Known properties are type, title, message, note, rowNumber,
// fieldNumber, fieldName, cell, label, resource and tags.
func (r *Report) Flatten(props ...string) [][]any {
	var rows [][]any
	for _, e := range r.Errors {
		rows = append(rows, flattenError("", e, props))
	}
	for _, t := range r.Tasks {
		for _, e := range t.Errors {
			rows = append(rows, flattenError(t.Resource, e, props))
		}
	}
	return rows
}

// ErrorTypes lists the types of every error in report order.
func (r *Report) ErrorTypes() []string {
	var out []string
	for _, row := range r.Flatten("type") {
		out = append(out, row[0].(string))
	}
	return out
}

func flattenError(resource string, e Error, props []string) []any {
	row := make([]any, len(props))
	for i, p := range props {
		switch p {
		case "type":
			row[i] = e.Type
		case "title":
			row[i] = e.Title
		case "message":
			row[i] = e.Message
		case "note":
			row[i] = e.Note
		case "rowNumber":
			row[i] = nilIfZero(e.RowNumber)
		case "fieldNumber":
			row[i] = nilIfZero(e.FieldNumber)
		case "fieldName":
			row[i] = e.FieldName
		case "cell":
			row[i] = e.Cell
		case "label":
			row[i] = e.Label
		case "resource":
			row[i] = resource
		case "tags":
			row[i] = slices.Clone(e.Tags)
		}
	}
	return row
}

func nilIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
