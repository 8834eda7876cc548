package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

func newRootCmd() *cobra.Command {
	var driver string

	cmd := &cobra.Command{
		Use:   "timeclockctl",
		Short: "Operator tools for the staff time clock",
		Long:  "Inspects and maintains the time clock workbook: live status, stale shifts, the open-row index and the roster.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if driver != "" {
				return os.Setenv("STORE_DRIVER", driver)
			}
			return nil
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&driver, "driver", "", "row store driver (sheets, postgres, memory); defaults to STORE_DRIVER")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newStaleCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newRosterCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "timeclockctl %s (commit: %s)\n", Version, Commit)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
