package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/spreadsheet"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [name]",
		Short: "Show who is working, on a break or clocked out",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args)
		},
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var views []shift.StatusView
	if len(args) == 1 {
		view, err := s.services.Shift.StatusFor(ctx, args[0])
		if err != nil {
			return err
		}
		views = append(views, view)
	} else {
		views, err = s.services.Shift.ResolveCurrentStatus(ctx)
		if err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDEPARTMENT\tSTATUS\tSIGNED IN")
	for _, v := range views {
		signIn := v.SignInTime
		if signIn == "" {
			signIn = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Name, v.Department, v.Status, signIn)
	}
	return w.Flush()
}

func newStaleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stale",
		Short: "List open shifts from earlier days or past the maximum length",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStale(cmd)
		},
	}
}

func runStale(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	stale, err := s.services.Shift.StaleShifts(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(stale) == 0 {
		fmt.Fprintln(out, "No stale shifts.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tDATE\tNAME\tSIGNED IN\tSTATUS\tREASON")
	for _, sh := range stale {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", sh.Row, sh.Date, sh.StaffName, sh.SignIn, sh.Status, sh.Reason)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d stale shift(s) on %q need a manager to close them.\n", len(stale), s.store.Layout.Dashboard)
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the store is reachable and the workbook is laid out",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd)
		},
	}
}

func runCheck(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Driver:   %s\n", s.store.Driver)
	fmt.Fprintf(out, "Document: %s\n", s.store.DocumentID)
	if s.store.Account != "" {
		fmt.Fprintf(out, "Account:  %s\n", s.store.Account)
	}

	probe, err := spreadsheet.Probe(ctx, s.store, s.store.Layout, 5)
	if err != nil {
		return fmt.Errorf("read %s: %w", probe.Range, err)
	}
	fmt.Fprintf(out, "Read %d row(s) from %s\n", len(probe.Values), probe.Range)

	members, err := s.services.Staff.List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Roster has %d staff member(s). OK\n", len(members))
	return nil
}
