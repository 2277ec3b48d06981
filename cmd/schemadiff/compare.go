package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemadiff"
	"github.com/tordrt/schemadiff/internal/diff"
	"github.com/tordrt/schemadiff/internal/formatter"
)

type compareFlags struct {
	format     string
	output     string
	outputDir  string
	workers    int
	watch      bool
	failOnDiff bool
}

func newCompareCmd(a *app) *cobra.Command {
	var f compareFlags

	cmd := &cobra.Command{
		Use:   "compare FROM TO",
		Short: "Compare two snapshot files",
		Long: `Compare reads two snapshot documents (JSON, or YAML for .yaml/.yml files) and
reports what changed from FROM to TO.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd, args[0], args[1], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", formatter.FormatJSON, "Output format: json, text or markdown")
	flags.StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
	flags.StringVarP(&f.outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	flags.IntVarP(&f.workers, "workers", "w", 1, "Number of goroutines diffing tables")
	flags.BoolVar(&f.watch, "watch", false, "Compare again whenever either file changes")
	flags.BoolVar(&f.failOnDiff, "fail-on-diff", false, "Exit with status 2 when differences are found")
	bindConfig(flags, "format", "compare.format")
	bindConfig(flags, "workers", "compare.workers")

	return cmd
}

func (a *app) runCompare(cmd *cobra.Command, fromPath, toPath string, f compareFlags) error {
	if f.output != "" && f.outputDir != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	format := a.cfg.Compare.Format

	compare := func() (bool, error) {
		return a.compareOnce(cmd, fromPath, toPath, format, f)
	}

	if f.watch {
		return watchFiles(cmd.Context(), []string{fromPath, toPath}, func() {
			if _, err := compare(); err != nil {
				slog.Error("comparison failed", "error", err)
			}
		})
	}

	empty, err := compare()
	if err != nil {
		return err
	}
	if f.failOnDiff && !empty {
		return &exitError{code: 2}
	}
	return nil
}

// compareOnce loads both files, compares them and writes the result. It
// reports whether the result was empty.
func (a *app) compareOnce(cmd *cobra.Command, fromPath, toPath, format string, f compareFlags) (bool, error) {
	result, err := schemadiff.CompareFiles(fromPath, toPath, schemadiff.WithWorkers(a.cfg.Compare.Workers))
	if err != nil {
		if format == formatter.FormatJSON && f.outputDir == "" {
			if werr := writeResult(cmd, diff.ErrorResult("", "", err), format, f); werr != nil {
				slog.Warn("failed to write error document", "error", werr)
			}
		}
		return false, err
	}

	slog.Info("compared snapshots",
		"from", fromPath,
		"to", toPath,
		"addedSchemas", len(result.AddedSchemas),
		"removedSchemas", len(result.RemovedSchemas),
		"modifiedSchemas", len(result.ModifiedSchemas),
	)

	if err := writeResult(cmd, result, format, f); err != nil {
		return false, err
	}
	return result.IsEmpty(), nil
}

func writeResult(cmd *cobra.Command, result *diff.CompareResult, format string, f compareFlags) error {
	if f.outputDir != "" {
		return schemadiff.FormatResult(result, &schemadiff.OutputOptions{OutputDir: f.outputDir, Format: format})
	}

	out, err := createOutput(f.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Warn("failed to close output file", "error", err)
		}
	}()

	if err := schemadiff.FormatResult(result, &schemadiff.OutputOptions{Writer: out, Format: format}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

