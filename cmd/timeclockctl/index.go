package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Open-row index commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the open-row index from the logs",
		Long:  "Reads the dashboard and break log in full, the same work the server does on start and on its rebuild schedule. Useful to time a rebuild against a large workbook.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexRebuild(cmd)
		},
	})
	return cmd
}

func runIndexRebuild(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	start := time.Now()
	if err := s.services.Shift.RebuildIndex(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Index rebuilt in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
