// Package validate runs checks over resources and assembles reports.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/checks"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/internal/validation"
	"github.com/reoring/tabskema/resource"
)

const (
	// DefaultLimitErrors caps the errors of one task.
	DefaultLimitErrors = 1000
	// memoryCheckInterval is the number of rows between heap size checks.
	memoryCheckInterval = 100000
)

// Options configure a validation run. Checks are stateful: build a fresh
// set for every resource.
type Options struct {
	// Checks run after the baseline check.
	Checks []checks.Check `json:"-" validate:"-"`
	// PickErrors keeps only errors whose type or tag ("#row") is listed.
	PickErrors []string `json:"pickErrors,omitempty"`
	// SkipErrors drops errors whose type or tag is listed.
	SkipErrors []string `json:"skipErrors,omitempty"`
	// LimitErrors stops the task after that many errors. Zero means
	// DefaultLimitErrors.
	LimitErrors int `json:"limitErrors,omitempty" validate:"gte=0"`
	// LimitRows stops the task after that many data rows. Zero means no limit.
	LimitRows int `json:"limitRows,omitempty" validate:"gte=0"`
	// LimitMemory stops the task when the heap exceeds that many megabytes.
	// Zero disables the check.
	LimitMemory int `json:"limitMemory,omitempty" validate:"gte=0"`
	// Logger defaults to a discarding logger.
	Logger *slog.Logger `json:"-" validate:"-"`
}

func (o Options) withDefaults() Options {
	if o.LimitErrors == 0 {
		o.LimitErrors = DefaultLimitErrors
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// selected reports whether an error survives the pick and skip lists.
// Task-level errors always do.
func (o Options) selected(e tabskema.Error) bool {
	if e.General() {
		return true
	}
	matches := func(list []string) bool {
		for _, s := range list {
			if s == e.Type || (strings.HasPrefix(s, "#") && e.HasTag(s)) {
				return true
			}
		}
		return false
	}
	if len(o.PickErrors) > 0 && !matches(o.PickErrors) {
		return false
	}
	return !matches(o.SkipErrors)
}

// run is the state of one task.
type run struct {
	opt      Options
	errs     []tabskema.Error
	warnings []string
	partial  bool
	full     bool
}

// add records an error unless it is filtered out. It reports false once the
// error limit is reached.
func (r *run) add(e tabskema.Error) bool {
	if r.full {
		return false
	}
	if !r.opt.selected(e) {
		return true
	}
	r.errs = append(r.errs, e)
	if len(r.errs) >= r.opt.LimitErrors {
		r.full = true
		r.partial = true
		return false
	}
	return true
}

func (r *run) addAll(es []tabskema.Error) bool {
	for _, e := range es {
		if !r.add(e) {
			return false
		}
	}
	return true
}

// Validate reads the resource through the baseline check and opt.Checks and
// returns a single-task report. It does not return an error: failures to
// open or read the resource become task errors.
func Validate(ctx context.Context, res *resource.Resource, opt Options) *tabskema.Report {
	start := time.Now()
	task := validateTask(ctx, res, opt)
	return tabskema.NewReport(seconds(start), nil, nil, task)
}

func validateTask(ctx context.Context, res *resource.Resource, opt Options) *tabskema.ReportTask {
	start := time.Now()
	opt = opt.withDefaults()
	log := opt.Logger.With("resource", res.Name)
	st := &run{opt: opt}

	if notes := validation.Struct(opt); len(notes) > 0 {
		for _, n := range notes {
			st.errs = append(st.errs, tabskema.NewError(tabskema.ErrTask, n))
		}
		return tabskema.NewReportTask(res.Name, res.Place, seconds(start), nil, false, st.errs, nil, tabskema.TaskStats{})
	}

	all := append([]checks.Check{checks.NewBaseline()}, opt.Checks...)
	var active []checks.Check
	for _, c := range all {
		if mc, ok := c.(checks.MetadataChecker); ok {
			if errs := mc.MetadataErrors(); len(errs) > 0 {
				log.Debug("check dropped", "check", c.Type(), "errors", len(errs))
				st.addAll(errs)
				continue
			}
		}
		active = append(active, c)
	}

	tbl, err := res.Open(ctx)
	if err != nil {
		log.Debug("open failed", "error", err)
		st.addAll(tabskema.ToErrors(err, tabskema.ErrTask))
		return tabskema.NewReportTask(res.Name, res.Place, seconds(start), scopeOf(active), false, st.errs, nil, tabskema.TaskStats{})
	}
	defer tbl.Close()
	log.Debug("validation started", "fields", tbl.Schema().Len(), "checks", len(active))

	for _, c := range active {
		c.Connect(tbl)
	}
	kept := active[:0:0]
	for _, c := range active {
		errs := c.ValidateStart()
		st.addAll(errs)
		if slices.ContainsFunc(errs, func(e tabskema.Error) bool { return e.Type == tabskema.ErrCheck }) {
			log.Debug("check removed at start", "check", c.Type())
			continue
		}
		kept = append(kept, c)
	}
	active = kept

	rows := 0
	for !st.full {
		row, err := tbl.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			st.partial = true
			if ctx.Err() != nil {
				st.errs = append(st.errs, tabskema.NewErrorf(tabskema.ErrTask, "validation canceled: %v", ctx.Err()))
			} else {
				st.addAll(tabskema.ToErrors(err, tabskema.ErrSource))
			}
			break
		}
		rows++
		for _, c := range active {
			if !st.addAll(c.ValidateRow(row)) {
				break
			}
		}
		if opt.LimitRows > 0 && rows >= opt.LimitRows {
			st.warnings = append(st.warnings, fmt.Sprintf("reached row limit: %d", opt.LimitRows))
			st.partial = true
			break
		}
		if opt.LimitMemory > 0 && rows%memoryCheckInterval == 0 {
			if used := heapMegabytes(); used > uint64(opt.LimitMemory) {
				st.errs = append(st.errs, tabskema.NewErrorf(tabskema.ErrTask, "exceeded memory limit %q MB", fmt.Sprint(opt.LimitMemory)))
				st.partial = true
				break
			}
		}
	}

	if !st.partial {
		for _, c := range active {
			if !st.addAll(c.ValidateEnd()) {
				break
			}
		}
	}

	stats := tbl.Stats()
	task := tabskema.NewReportTask(res.Name, res.Place, seconds(start), scopeOf(active), st.partial, st.errs, st.warnings, tabskema.TaskStats{
		Rows:   stats.Rows,
		Fields: stats.Fields,
		Bytes:  stats.Bytes,
		Hash:   stats.Hash,
	})
	task.Labels = tbl.Labels()
	log.Debug("validation finished", "rows", stats.Rows, "errors", len(st.errs), "partial", st.partial)
	return task
}

func scopeOf(cs []checks.Check) []string {
	var out []string
	for _, c := range cs {
		for _, t := range c.Scope() {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

func heapMegabytes() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc / (1 << 20)
}

func seconds(since time.Time) float64 {
	return math.Round(time.Since(since).Seconds()*1000) / 1000
}

// ValidateAll validates resources concurrently, at most workers at a time
// (workers <= 0 means one per resource). newOptions is called once per
// resource so every task gets its own checks. Tasks keep the input order.
func ValidateAll(ctx context.Context, resources []*resource.Resource, newOptions func(*resource.Resource) Options, workers int) *tabskema.Report {
	start := time.Now()
	tasks := make([]*tabskema.ReportTask, len(resources))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, res := range resources {
		g.Go(func() error {
			var opt Options
			if newOptions != nil {
				opt = newOptions(res)
			}
			tasks[i] = validateTask(gctx, res, opt)
			return nil
		})
	}
	_ = g.Wait()
	return tabskema.NewReport(seconds(start), nil, nil, tasks...)
}

// ValidateSchema checks a schema descriptor without reading data.
func ValidateSchema(reg *codec.Registry, d tabskema.SchemaDescriptor) *tabskema.Report {
	start := time.Now()
	_, err := tabskema.NewSchema(reg, d)
	return tabskema.ReportFromErrors("schema", seconds(start), err)
}

// ValidateField checks a field descriptor without reading data.
func ValidateField(reg *codec.Registry, d tabskema.FieldDescriptor) *tabskema.Report {
	start := time.Now()
	_, err := tabskema.NewField(reg, d)
	return tabskema.ReportFromErrors(d.Name, seconds(start), err)
}
