package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/donorql/internal/config"
)

// RootOptions holds global flags and the resolved configuration.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is resolved in the root command's PersistentPreRunE.
	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootOptions returns options holding the configuration defaults.
func NewRootOptions() *RootOptions {
	return &RootOptions{Format: "text", Config: config.Default()}
}

// NewRootCommand creates the root command for the donorql CLI.
func NewRootCommand() *cobra.Command {
	opts := NewRootOptions()

	cmd := &cobra.Command{
		Use:   "donorql",
		Short: "donorql - safe donor report queries",
		Long: `Compile restricted SELECT statements into validated query plans and run
them as tenant-scoped donor reports.

Only SELECT statements over the donors and donations tables are accepted;
every column is checked against an allow-list and the statement is never
passed to the database as text.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a CUE config file (default ./"+config.DefaultFile+" if present)")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewReportsCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve loads the config file, applies flag overrides and installs the
// logger. Flags win over the file, the file over schema defaults.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if cmd.Flags().Changed("format") {
		if err := cfg.Override("format", o.Format); err != nil {
			return WrapExitError(ExitCommandError, "invalid flags", err)
		}
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	if !isValidFormat(cfg.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", cfg.Format, ValidFormats))
	}

	o.Config = cfg
	o.Format = cfg.Format

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Level(),
	})
	o.Logger = slog.New(handler)
	slog.SetDefault(o.Logger)

	if cfg.Source != "" {
		o.Logger.Debug("config loaded", "file", cfg.Source)
	}
	return nil
}

// logger returns the configured logger, or slog.Default() when the root
// command has not run (commands built directly in tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// database returns the --db flag value, falling back to the config.
func (o *RootOptions) database(flag string) string {
	if flag != "" {
		return flag
	}
	if o.Config.Database != "" {
		return o.Config.Database
	}
	return config.Default().Database
}

// organization returns the --org flag value, falling back to the config.
func (o *RootOptions) organization(flag string) (string, error) {
	cfg := o.Config
	if err := cfg.Override("organization", flag); err != nil {
		return "", err
	}
	return cfg.RequireOrganization()
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
