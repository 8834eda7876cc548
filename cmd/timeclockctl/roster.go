package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/staff"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// rosterFile is the seed format accepted by roster import.
type rosterFile struct {
	Staff []staff.AddStaffRequest `yaml:"staff"`
}

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Roster commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Add every staff member listed in a YAML file",
		Long:  "Adds each entry through the same path as POST /api/staff/add. Names already on the roster are skipped, so the import can be re-run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRosterImport(cmd, args[0])
		},
	})
	return cmd
}

func loadRosterFile(path string) (rosterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rosterFile{}, fmt.Errorf("read roster file: %w", err)
	}
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return rosterFile{}, fmt.Errorf("parse roster file %s: %w", path, err)
	}
	return rf, nil
}

func runRosterImport(cmd *cobra.Command, path string) error {
	rf, err := loadRosterFile(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	var added, skipped, failed int
	for i, req := range rf.Staff {
		_, err := s.services.Staff.Add(ctx, req)
		switch {
		case errors.Is(err, staff.ErrStaffExists):
			skipped++
			fmt.Fprintf(out, "skip  %s (already on the roster)\n", req.Name)
		case err != nil:
			failed++
			fmt.Fprintf(out, "fail  entry %d %q: %v\n", i+1, req.Name, err)
		default:
			added++
			fmt.Fprintf(out, "added %s\n", req.Name)
		}
	}

	fmt.Fprintf(out, "\n%d added, %d skipped, %d failed\n", added, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d roster entries could not be imported", failed)
	}
	return nil
}
