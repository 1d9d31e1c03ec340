// Command rosterctl previews client roster imports from the command line.
//
// It runs the same parse, match, validate and duplicate stages as the server
// against an in-memory store, so a file can be checked before it is uploaded.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/rosterimport/internal/logging"
	"github.com/JonMunkholm/rosterimport/internal/schema"
)

const (
	exitOK = iota
	exitFailure
	exitUsage
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func main() {
	_ = godotenv.Load()

	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitFailure)
	}
	os.Exit(exitOK)
}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Inspect client roster files before importing them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level: debug, info, warn, error")

	cmd.AddCommand(newFieldsCmd(), newPreviewCmd())
	return cmd
}

// loadCatalog returns the built-in catalogue or the override at path.
func loadCatalog(path string) (schema.Catalog, error) {
	if path == "" {
		return schema.DefaultCatalog(), nil
	}
	catalog, err := schema.LoadCatalogFile(path)
	if err != nil {
		return schema.Catalog{}, withCode(exitUsage, err)
	}
	return catalog, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
