// Package cli provides the tabskema command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/reoring/tabskema"
	"github.com/reoring/tabskema/checks"
	"github.com/reoring/tabskema/codec"
	"github.com/reoring/tabskema/i18n"
	"github.com/reoring/tabskema/internal/config"
)

// ErrInvalid is returned when a command produced an invalid report. The
// report has already been written, so Execute does not print it.
var ErrInvalid = errors.New("invalid")

// Exit codes.
const (
	ExitOK      = 0
	ExitInvalid = 1
	ExitError   = 2
)

// session is what subcommands read from the command context.
type session struct {
	cfg    *config.Config
	log    *slog.Logger
	reg    *codec.Registry
	checks *checks.Registry
}

type sessionKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	rootCmd := &cobra.Command{
		Use:   "tabskema",
		Short: "Infer and validate the schema of tabular data",
		Long: `tabskema detects the layout, encoding and schema of CSV, JSON and SQLite
tables and validates every row against the schema and a list of checks.`,
		Version: tabskema.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			i18n.SetLanguage(cfg.Language)
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			ctx := context.WithValue(cmd.Context(), sessionKey{}, &session{cfg: cfg, log: log, reg: codec.NewRegistry(), checks: checks.NewRegistry()})
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	pf.StringP("output", "o", "", "Output format (text|json|yaml|jsonschema)")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.String("language", "", "Message language (en|ja)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml", "jsonschema"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newDescribeCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newCheckSchemaCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return exitCode(err)
	}
	return ExitOK
}

func exitCode(err error) int {
	if errors.Is(err, ErrInvalid) {
		return ExitInvalid
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitError
}

func sessionFrom(ctx context.Context) *session {
	if s, ok := ctx.Value(sessionKey{}).(*session); ok {
		return s
	}
	cfg, _ := config.Load("", nil)
	return &session{cfg: cfg, log: slog.New(slog.DiscardHandler), reg: codec.NewRegistry(), checks: checks.NewRegistry()}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tabskema v%s\n", tabskema.Version)
		},
	}
}
