package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deviceSummary is the JSON shape of the info command output.
type deviceSummary struct {
	Device string      `json:"device"`
	Qubits []string    `json:"qubits"`
	Edges  [][2]string `json:"edges"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the target device's qubits and connectivity",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, cmd)
		},
	}
}

func runInfo(opts *RootOptions, cmd *cobra.Command) error {
	formatter := formatterFor(opts, cmd)

	b, err := connect(cmd.Context(), opts)
	if err != nil {
		formatter.Fail(ErrCodeRemote, err)
		return WrapExitError(GetExitCode(err), "connect", err)
	}

	info := b.Device()
	summary := deviceSummary{Device: info.Device}
	for _, q := range info.Qubits {
		summary.Qubits = append(summary.Qubits, q.Name())
	}
	for _, e := range info.Edges {
		summary.Edges = append(summary.Edges, [2]string{e[0].Name(), e[1].Name()})
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "device: %s\n", summary.Device)
	fmt.Fprintf(formatter.Writer, "qubits: %v\n", summary.Qubits)
	fmt.Fprintln(formatter.Writer, "edges:")
	for _, e := range summary.Edges {
		fmt.Fprintf(formatter.Writer, "  %s -- %s\n", e[0], e[1])
	}
	return nil
}
