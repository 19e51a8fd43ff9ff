package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/checks"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/detect"
	"github.com/reoring/tabskema/internal/config"
	"github.com/reoring/tabskema/resource"
	"github.com/reoring/tabskema/source/csv"
	"github.com/reoring/tabskema/source/jsonrows"
	"github.com/reoring/tabskema/source/sqlite"
)

// addTableFlags registers the flags that control how a table is read.
func addTableFlags(fs *pflag.FlagSet) {
	fs.String("delimiter", "", `CSV delimiter (default "," or tab for .tsv)`)
	fs.String("encoding", "", "Text encoding (detected when empty)")
	fs.String("table", "", "SQLite table to read")
	fs.String("query", "", "SQLite query to read")
	fs.String("schema", "", "Schema descriptor file (YAML or JSON)")

	fs.Bool("no-header", false, "The table has no header row")
	fs.IntSlice("header-rows", nil, "Row numbers that form the header")
	fs.String("header-join", "", "Separator for multi-row headers")
	fs.Bool("header-ignore-case", false, "Compare labels to field names case-insensitively")
	fs.String("comment-char", "", "Rows starting with this prefix are skipped")
	fs.Bool("skip-blank-rows", false, "Skip blank rows")

	fs.Int("buffer-size", 0, "Bytes used to detect the encoding")
	fs.Int("sample-size", 0, "Rows used to infer the schema")
	fs.String("field-type", "", "Assign this type to every field")
	fs.StringSlice("field-names", nil, "Field names replacing the header labels")
	fs.Float64("field-confidence", 0, "Share of sample cells a type must read")
	fs.Bool("float-numbers", false, "Read numbers as floats")
	fs.StringArray("missing-values", nil, "Tokens read as missing (repeatable)")
	fs.StringArray("true-values", nil, "Tokens read as true (repeatable)")
	fs.StringArray("false-values", nil, "Tokens read as false (repeatable)")
	fs.Bool("schema-sync", false, "Reorder and filter schema fields to match the header")
}

func resourceName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// newResource picks the row source from the file extension.
func newResource(path string, cfg *config.Config, det *detect.Detector, schema *tabskema.Schema) (*resource.Resource, error) {
	res := &resource.Resource{
		Name:     resourceName(path),
		Place:    path,
		Schema:   schema,
		Layout:   cfg.Layout(),
		Detector: det,
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".jsonl", ".ndjson":
		res.Source = jsonrows.File(path)
	case ".db", ".sqlite", ".sqlite3":
		if cfg.Table == "" && cfg.Query == "" {
			return nil, fmt.Errorf("%s: a SQLite source needs --table or --query", path)
		}
		res.Source = sqlite.Open(path, sqlite.Options{Table: cfg.Table, Query: cfg.Query})
	default:
		delim := cfg.DelimiterRune()
		if delim == 0 && ext == ".tsv" {
			delim = '\t'
		}
		res.Source = csv.File(path, csv.Options{Delimiter: delim, Encoding: cfg.Encoding, Detector: det})
	}
	return res, nil
}

// readDescriptor decodes a JSON or YAML file into v.
func readDescriptor(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, v)
	} else {
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func loadSchemaDescriptor(path string) (tabskema.SchemaDescriptor, error) {
	var d tabskema.SchemaDescriptor
	err := readDescriptor(path, &d)
	return d, err
}

// loadSchema returns nil when no schema file is configured.
func loadSchema(reg *codec.Registry, path string) (*tabskema.Schema, error) {
	if path == "" {
		return nil, nil
	}
	d, err := loadSchemaDescriptor(path)
	if err != nil {
		return nil, err
	}
	return tabskema.NewSchema(reg, d)
}

// checklist collects check descriptors from the config and the checks file.
// The file holds either a list of descriptors or {checks: [...]}.
func checklist(cfg *config.Config) ([]map[string]any, error) {
	descs := append([]map[string]any{}, cfg.Checks...)
	if cfg.ChecksFile == "" {
		return descs, nil
	}
	var doc struct {
		Checks []map[string]any `json:"checks" yaml:"checks"`
	}
	if err := readDescriptor(cfg.ChecksFile, &doc); err != nil {
		var list []map[string]any
		if lerr := readDescriptor(cfg.ChecksFile, &list); lerr != nil {
			return nil, err
		}
		doc.Checks = list
	}
	return append(descs, doc.Checks...), nil
}

// buildChecks returns a fresh set of checks. Checks keep state, so every
// resource needs its own set.
func buildChecks(reg *checks.Registry, descs []map[string]any) ([]checks.Check, error) {
	out := make([]checks.Check, 0, len(descs))
	for _, d := range descs {
		c, err := reg.FromDescriptor(d)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
