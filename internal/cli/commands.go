package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/detect"
	"github.com/reoring/tabskema/resource"
	"github.com/reoring/tabskema/validate"
)

func newDescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <path>",
		Short: "Infer the schema of a table",
		Long: `Read a sample of the table, detect its layout and encoding and print the
inferred schema. Use -o jsonschema to export the JSON Schema of one row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := sessionFrom(ctx)
			start := time.Now()
			res, report := prepare(s, args[0])
			if report != nil {
				return reportInvalid(cmd, s, report)
			}
			tbl, err := res.OpenWith(ctx, resource.OpenOptions{NoIntegrity: true})
			if err != nil {
				return reportInvalid(cmd, s, tabskema.ReportFromErrors(res.Name, time.Since(start).Seconds(), err))
			}
			defer tbl.Close()
			s.log.Debug("described table", "resource", res.Name, "fields", tbl.Schema().Len(), "seconds", time.Since(start).Seconds())
			return renderDescription(cmd.OutOrStdout(), s.cfg.Output, tbl)
		},
	}
	addTableFlags(cmd.Flags())
	return cmd
}

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate tables against their schema and a checklist",
		Long: `Validate every row of each table. The schema is inferred unless --schema is
given. Checks come from the "checks" config key and --checks-file. The exit
code is 1 when the report is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := sessionFrom(ctx)
			descs, err := checklist(s.cfg)
			if err != nil {
				return err
			}
			if _, err := buildChecks(s.checks, descs); err != nil {
				return reportInvalid(cmd, s, tabskema.ReportFromErrors("", 0, err))
			}

			resources := make([]*resource.Resource, 0, len(args))
			for _, path := range args {
				res, report := prepare(s, path)
				if report != nil {
					return reportInvalid(cmd, s, report)
				}
				resources = append(resources, res)
			}

			report := validate.ValidateAll(ctx, resources, func(*resource.Resource) validate.Options {
				cs, _ := buildChecks(s.checks, descs)
				return validate.Options{
					Checks:      cs,
					PickErrors:  s.cfg.PickErrors,
					SkipErrors:  s.cfg.SkipErrors,
					LimitErrors: s.cfg.LimitErrors,
					LimitRows:   s.cfg.LimitRows,
					LimitMemory: s.cfg.LimitMemory,
					Logger:      s.log,
				}
			}, s.cfg.Workers)
			if err := renderReport(cmd.OutOrStdout(), s.cfg.Output, report); err != nil {
				return err
			}
			if !report.Valid {
				return ErrInvalid
			}
			return nil
		},
	}
	fs := cmd.Flags()
	addTableFlags(fs)
	fs.String("checks-file", "", "Checklist file (YAML or JSON)")
	fs.StringSlice("pick-errors", nil, "Keep only these error types or #tags")
	fs.StringSlice("skip-errors", nil, "Drop these error types or #tags")
	fs.Int("limit-errors", 0, "Stop a table after this many errors")
	fs.Int("limit-rows", 0, "Stop a table after this many rows")
	fs.Int("limit-memory", 0, "Stop a table when the heap exceeds this many MB")
	fs.Int("workers", 0, "Tables validated in parallel (0: no limit)")
	return cmd
}

func newCheckSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-schema <file>",
		Short: "Check a schema descriptor without reading data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd.Context())
			d, err := loadSchemaDescriptor(args[0])
			if err != nil {
				return err
			}
			report := validate.ValidateSchema(s.reg, d)
			if err := renderReport(cmd.OutOrStdout(), s.cfg.Output, report); err != nil {
				return err
			}
			if !report.Valid {
				return ErrInvalid
			}
			return nil
		},
	}
}

// prepare builds the detector, schema and resource for path. Metadata
// problems come back as a report.
func prepare(s *session, path string) (*resource.Resource, *tabskema.Report) {
	name := resourceName(path)
	det, err := detect.New(s.reg, s.cfg.DetectorOptions())
	if err != nil {
		return nil, tabskema.ReportFromErrors(name, 0, err)
	}
	schema, err := loadSchema(s.reg, s.cfg.Schema)
	if err != nil {
		return nil, tabskema.ReportFromErrors(name, 0, err)
	}
	res, err := newResource(path, s.cfg, det, schema)
	if err != nil {
		return nil, tabskema.ReportFromErrors(name, 0, err)
	}
	return res, nil
}

func reportInvalid(cmd *cobra.Command, s *session, r *tabskema.Report) error {
	if err := renderReport(cmd.OutOrStdout(), s.cfg.Output, r); err != nil {
		return err
	}
	return ErrInvalid
}
