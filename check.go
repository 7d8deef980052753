package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kastheco/layerstack/internal/scenario"
	"github.com/spf13/cobra"
)

// errUnhealthy is returned when any scenario fails to validate, to signal
// exit code 1 without printing a message.
var errUnhealthy = errors.New("unhealthy")

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>...",
		Short: "Validate scenario files without running them",
		Long: `Parses every scenario and reports, per file:

  1. Layer declarations (type, focus_trap, veto on modals only)
  2. Steps (exactly one action, known layer references)

Exit code 0 if every file is valid, exit code 1 otherwise.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
		// Suppress usage on error — validation failures are not usage errors.
		SilenceUsage: true,
		// Suppress cobra's "Error: ..." line for the unhealthy sentinel.
		SilenceErrors: true,
	}
	cmd.Flags().BoolP("verbose", "v", false, "list every layer and step of valid files")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	out := cmd.OutOrStdout()

	ok := 0
	for _, path := range args {
		sc, err := scenario.Load(path)
		if err != nil {
			fmt.Fprintf(out, "✗ %s\n", path)
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
			continue
		}
		ok++
		fmt.Fprintf(out, "✓ %s  %d layers  %d steps\n", path, len(sc.Layers), len(sc.Steps))
		if verbose {
			for _, l := range sc.Layers {
				fmt.Fprintf(out, "    %-8s %-16s %5d\n", l.Type, l.Name, l.Priority)
			}
			for i, s := range sc.Steps {
				fmt.Fprintf(out, "    %2d. %s\n", i+1, s.Action())
			}
		}
	}

	fmt.Fprintf(out, "\nValid: %d/%d\n", ok, len(args))
	if ok < len(args) {
		return errUnhealthy
	}
	return nil
}
