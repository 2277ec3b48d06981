package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tordrt/schemadiff/internal/config"
	"github.com/tordrt/schemadiff/internal/logging"
)

// configKey annotates a flag with the config key it overrides
const configKey = "schemadiff_config_key"

// app holds state shared by all subcommands of one invocation
type app struct {
	configFile string
	logLevel   string
	logFile    string

	cfg       *config.Config
	logCloser io.Closer
}

// exitError ends the process with a specific status without printing anything
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemadiff",
		Short: "Compare database schema snapshots",
		Long: `schemadiff captures schema snapshots from PostgreSQL, Kingbase, MySQL or SQLite,
compares two snapshots and reports added, removed and modified schemas, tables,
columns and indexes. It can also turn a comparison into a migration script.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: ./.schemadiff.yaml, then ~/.config/schemadiff/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.StringVar(&a.logFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	bindConfig(flags, "log-level", "log.level")
	bindConfig(flags, "log-file", "log.file")

	cmd.AddCommand(newCompareCmd(a), newSnapshotCmd(a), newMigrateCmd(a))
	return cmd
}

// bindConfig marks a flag as the command-line layer of a config key
func bindConfig(flags *pflag.FlagSet, name, key string) {
	if err := flags.SetAnnotation(name, configKey, []string{key}); err != nil {
		panic(err)
	}
}

// setup resolves configuration for the command being run and installs the logger
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	loader := config.NewLoader()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKey]
		if len(keys) == 0 || bindErr != nil {
			return
		}
		bindErr = loader.BindFlag(keys[0], f)
	})
	if bindErr != nil {
		return bindErr
	}

	cfg, err := loader.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	a.logCloser = closer

	if cfg.File != "" {
		slog.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// parseTableList splits a comma-separated flag value
func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}

// createOutput opens path for writing, or wraps stdout when path is empty
func createOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// execute runs one invocation and returns the process exit status
func execute(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	defer a.close()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	_, _ = fmt.Fprintln(stderr, "Error:", err)
	return 1
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
