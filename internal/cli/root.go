package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/CQCL/tket-iqm/internal/backend"
	"github.com/CQCL/tket-iqm/internal/config"
	"github.com/CQCL/tket-iqm/internal/iqm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	URL     string // server base URL
	Device  string // target device identifier
	Token   string // explicit credential; empty uses the resolution chain
	Ledger  string // job-handle ledger path

	// Client overrides the HTTP client, letting tests drive commands
	// against a scripted service.
	Client iqm.Client
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tket-iqm CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command over pre-seeded
// options. Tests use this to inject a fake client.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tket-iqm",
		Short: "tket-iqm - compile and run circuits on IQM quantum computers",
		Long:  "Compile quantum circuits to the IQM native gate set, submit them to an IQM server, and retrieve measurement outcomes.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.URL, "url", defaultString(os.Getenv("TKET_IQM_URL"), ""), "IQM server base URL")
	cmd.PersistentFlags().StringVar(&opts.Device, "device", os.Getenv("TKET_IQM_DEVICE"), "target device identifier")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "API token (overrides config and tokens file)")
	cmd.PersistentFlags().StringVar(&opts.Ledger, "ledger", defaultLedgerPath(), "job-handle ledger database path")

	// Add subcommands
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewResultCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func defaultString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func defaultLedgerPath() string {
	if p := os.Getenv("TKET_IQM_LEDGER"); p != "" {
		return p
	}
	return "tket-iqm.db"
}

// formatterFor builds the command's output formatter. Verbose logs go to
// stderr to avoid corrupting JSON output.
func formatterFor(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// connect builds the device adapter: through the injected client when one
// is set, otherwise by dialing the configured server.
func connect(ctx context.Context, opts *RootOptions) (*backend.IQMBackend, error) {
	if opts.Client != nil {
		return backend.New(ctx, opts.Client, opts.Device)
	}
	if opts.URL == "" {
		return nil, NewExitError(ExitCommandError, "no server URL: set --url or TKET_IQM_URL")
	}
	if opts.Device == "" {
		return nil, NewExitError(ExitCommandError, "no device: set --device or TKET_IQM_DEVICE")
	}
	return backend.Dial(ctx, backend.DialOptions{
		BaseURL: opts.URL,
		Device:  opts.Device,
		Token:   opts.Token,
		Logger:  slog.Default(),
	})
}

// client returns the raw service client for status/result polling of
// ledger-restored jobs.
func client(opts *RootOptions) (iqm.Client, error) {
	if opts.Client != nil {
		return opts.Client, nil
	}
	if opts.URL == "" {
		return nil, NewExitError(ExitCommandError, "no server URL: set --url or TKET_IQM_URL")
	}
	token, err := resolveToken(opts)
	if err != nil {
		return nil, err
	}
	return iqm.NewHTTPClient(opts.URL, token, iqm.WithLogger(slog.Default())), nil
}

// resolveToken runs the credential resolution chain and maps a miss to a
// command error.
func resolveToken(opts *RootOptions) (string, error) {
	token, err := config.ResolveToken(opts.Token)
	if errors.Is(err, config.ErrNoCredentials) {
		return "", WrapExitError(ExitCommandError, "no IQM access credentials provided or found in config file", err)
	}
	return token, err
}
