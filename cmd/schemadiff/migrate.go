package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemadiff"
)

type migrateFlags struct {
	dialect string
	output  string
}

func newMigrateCmd(a *app) *cobra.Command {
	var f migrateFlags

	cmd := &cobra.Command{
		Use:   "migrate FROM TO",
		Short: "Generate a migration script between two snapshots",
		Long: `Migrate compares two snapshot files and writes the DDL that turns the FROM
schema into the TO schema. Review the script before running it: renames show
up as a drop plus a create.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMigrate(cmd, args[0], args[1], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.dialect, "dialect", "postgresql", "SQL dialect: mysql, postgresql or kingbase")
	flags.StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
	bindConfig(flags, "dialect", "migrate.dialect")

	return cmd
}

func (a *app) runMigrate(cmd *cobra.Command, fromPath, toPath string, f migrateFlags) error {
	from, err := schemadiff.LoadSnapshot(fromPath)
	if err != nil {
		return err
	}
	to, err := schemadiff.LoadSnapshot(toPath)
	if err != nil {
		return err
	}

	result, err := schemadiff.Compare(from, to, schemadiff.WithWorkers(a.cfg.Compare.Workers))
	if err != nil {
		return err
	}

	script, err := schemadiff.GenerateMigration(result, from, to, a.cfg.Migrate.Dialect)
	if err != nil {
		return err
	}
	slog.Info("generated migration", "dialect", a.cfg.Migrate.Dialect, "from", fromPath, "to", toPath)

	out, err := createOutput(f.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Warn("failed to close output file", "error", err)
		}
	}()

	if _, err := io.WriteString(out, script); err != nil {
		return fmt.Errorf("failed to write migration: %w", err)
	}
	return nil
}
