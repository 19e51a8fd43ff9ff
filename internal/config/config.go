// Package config loads command settings from defaults, a YAML file,
// TABSKEMA_* environment variables and command-line flags, in that order of
// precedence (later wins).
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/detect"
	"github.com/reoring/tabskema/internal/validation"
)

const (
	// DefaultFile is read from the working directory when no file is given.
	DefaultFile = "tabskema.yaml"
	envPrefix   = "TABSKEMA_"
)

// listKeys are split on commas when they come from the environment.
var listKeys = []string{"missing_values", "true_values", "false_values", "field_names", "header_rows", "pick_errors", "skip_errors"}

// Config holds every setting the commands read. Keys are snake_case in files
// and the environment; flags use the kebab-case spelling.
type Config struct {
	Output   string `koanf:"output" json:"output" validate:"oneof=text json yaml jsonschema"`
	Verbose  bool   `koanf:"verbose" json:"verbose"`
	Language string `koanf:"language" json:"language" validate:"oneof=en ja"`
	Workers  int    `koanf:"workers" json:"workers" validate:"gte=0"`

	// Source
	Delimiter string `koanf:"delimiter" json:"delimiter"`
	Encoding  string `koanf:"encoding" json:"encoding"`
	Table     string `koanf:"table" json:"table"`
	Query     string `koanf:"query" json:"query"`
	Schema    string `koanf:"schema" json:"schema"`

	// Layout
	NoHeader         bool   `koanf:"no_header" json:"no_header"`
	HeaderRows       []int  `koanf:"header_rows" json:"header_rows" validate:"dive,gt=0"`
	HeaderJoin       string `koanf:"header_join" json:"header_join"`
	HeaderIgnoreCase bool   `koanf:"header_ignore_case" json:"header_ignore_case"`
	CommentChar      string `koanf:"comment_char" json:"comment_char"`
	SkipBlankRows    bool   `koanf:"skip_blank_rows" json:"skip_blank_rows"`

	// Detector
	BufferSize      int      `koanf:"buffer_size" json:"buffer_size" validate:"gte=0"`
	SampleSize      int      `koanf:"sample_size" json:"sample_size" validate:"gte=0"`
	FieldType       string   `koanf:"field_type" json:"field_type"`
	FieldNames      []string `koanf:"field_names" json:"field_names"`
	FieldConfidence float64  `koanf:"field_confidence" json:"field_confidence" validate:"gte=0,lte=1"`
	FloatNumbers    bool     `koanf:"float_numbers" json:"float_numbers"`
	MissingValues   []string `koanf:"missing_values" json:"missing_values"`
	TrueValues      []string `koanf:"true_values" json:"true_values"`
	FalseValues     []string `koanf:"false_values" json:"false_values"`
	SchemaSync      bool     `koanf:"schema_sync" json:"schema_sync"`

	// Validation
	Checks      []map[string]any `koanf:"checks" json:"checks"`
	ChecksFile  string           `koanf:"checks_file" json:"checks_file"`
	PickErrors  []string         `koanf:"pick_errors" json:"pick_errors"`
	SkipErrors  []string         `koanf:"skip_errors" json:"skip_errors"`
	LimitErrors int              `koanf:"limit_errors" json:"limit_errors" validate:"gte=0"`
	LimitRows   int              `koanf:"limit_rows" json:"limit_rows" validate:"gte=0"`
	LimitMemory int              `koanf:"limit_memory" json:"limit_memory" validate:"gte=0"`
}

func defaults() map[string]any {
	return map[string]any{
		"output":       "text",
		"language":     "en",
		"limit_errors": 1000,
	}
}

// Load builds a Config. An explicit cfgFile must exist; the default file is
// read only when present. flags may be nil; only flags set on the command
// line override the other layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := cfgFile
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if notes := validation.Struct(cfg); len(notes) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(notes, "; "))
	}
	return &cfg, nil
}

func envValue(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if slices.Contains(listKeys, key) {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}
	return key, value
}

// DetectorOptions maps the detector settings.
func (c *Config) DetectorOptions() detect.Options {
	return detect.Options{
		BufferSize:         c.BufferSize,
		SampleSize:         c.SampleSize,
		FieldType:          c.FieldType,
		FieldNames:         slices.Clone(c.FieldNames),
		FieldConfidence:    c.FieldConfidence,
		FieldFloatNumbers:  c.FloatNumbers,
		FieldMissingValues: slices.Clone(c.MissingValues),
		FieldTrueValues:    slices.Clone(c.TrueValues),
		FieldFalseValues:   slices.Clone(c.FalseValues),
		SchemaSync:         c.SchemaSync,
	}
}

// Layout maps the layout settings. It returns nil when none is set so that
// header rows are detected.
func (c *Config) Layout() *tabskema.Layout {
	l := &tabskema.Layout{
		NoHeader:         c.NoHeader,
		HeaderRows:       slices.Clone(c.HeaderRows),
		HeaderJoin:       c.HeaderJoin,
		HeaderIgnoreCase: c.HeaderIgnoreCase,
		CommentChar:      c.CommentChar,
		SkipBlankRows:    c.SkipBlankRows,
	}
	if !l.NoHeader && l.HeaderRows == nil && l.HeaderJoin == "" && !l.HeaderIgnoreCase && l.CommentChar == "" && !l.SkipBlankRows {
		return nil
	}
	return l
}

// DelimiterRune returns the configured delimiter, or zero for the default.
// The spellings `\t` and "tab" select a tab.
func (c *Config) DelimiterRune() rune {
	if c.Delimiter == `\t` || c.Delimiter == "tab" {
		return '\t'
	}
	for _, r := range c.Delimiter {
		return r
	}
	return 0
}
