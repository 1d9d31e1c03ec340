package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/rosterimport/internal/core"
	"github.com/JonMunkholm/rosterimport/internal/dedupe"
	"github.com/JonMunkholm/rosterimport/internal/match"
	"github.com/JonMunkholm/rosterimport/internal/store"
)

type previewOptions struct {
	existingPath string
	catalogPath  string
	threshold    float64
	algorithm    string
	asJSON       bool
}

func newPreviewCmd() *cobra.Command {
	opts := previewOptions{
		threshold: match.DefaultThreshold,
		algorithm: "dice",
	}

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Parse, map, validate and check a roster file for duplicates",
		Long: `Preview runs a roster file through the import pipeline without
writing anything. Pass --existing with a CSV of current clients (id, name and
email columns) to check for duplicates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.existingPath, "existing", "", "CSV or TSV of existing clients to check duplicates against")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", envOr("IMPORT_CATALOG_PATH", ""), "YAML file overriding the built-in catalogue")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", opts.threshold, "Fuzzy score a header must exceed to be mapped")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", opts.algorithm, "Header similarity: dice or levenshtein")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full report as JSON")
	return cmd
}

func runPreview(cmd *cobra.Command, path string, opts previewOptions) error {
	if opts.threshold < 0 || opts.threshold >= 1 {
		return withCode(exitUsage, fmt.Errorf("--threshold must be in [0, 1), got %g", opts.threshold))
	}
	similarity, err := match.Algorithm(opts.algorithm)
	if err != nil {
		return withCode(exitUsage, err)
	}

	catalog, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return withCode(exitUsage, err)
	}

	var existing []dedupe.ExistingRecordRef
	if opts.existingPath != "" {
		refsData, err := os.ReadFile(opts.existingPath)
		if err != nil {
			return withCode(exitUsage, err)
		}
		existing, err = store.LoadRefs(refsData, filepath.Base(opts.existingPath))
		if err != nil {
			return err
		}
	}

	matcher := match.NewMatcher(catalog, match.WithThreshold(opts.threshold), match.WithSimilarity(similarity))
	svc := core.NewService(store.NewMemory(existing...), matcher, core.ServiceConfig{MaxConcurrent: 1}, nil)

	report, err := svc.StartImport(cmd.Context(), filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(out, report)
}

// printReport renders a report for a terminal.
func printReport(out io.Writer, r *core.Report) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "File:\t%s (%d rows)\n", r.FileName, r.TotalRows)
	fmt.Fprintf(tw, "Status:\t%s\n", r.Status)
	fmt.Fprintf(tw, "Valid rows:\t%d\n", r.ValidRows)
	fmt.Fprintf(tw, "Invalid rows:\t%d\n", r.InvalidRows)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "COLUMN\tFIELD\tCONFIDENCE")
	for _, m := range r.Mappings {
		target, confidence := "(not imported)", "-"
		if m.Mapped() {
			target, confidence = m.TargetField, strconv.FormatFloat(m.Confidence, 'f', 2, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.SourceColumn, target, confidence)
	}

	if len(r.UnmappedRequired) > 0 {
		labels := make([]string, len(r.UnmappedRequired))
		for i, f := range r.UnmappedRequired {
			labels[i] = f.Label
		}
		fmt.Fprintf(tw, "\nBlocked: map a column to %s\n", strings.Join(labels, ", "))
	}

	for _, m := range r.MalformedRows {
		fmt.Fprintf(tw, "\nRow %d has %d cells, expected %d; extra cells were dropped\n", m.Row, m.Cells, m.Expected)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(tw, "\nROW\tFIELD\tPROBLEM\tVALUE")
		for _, e := range r.Errors {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Row, e.Field, e.Message, e.Value)
		}
	}

	if len(r.Duplicates) > 0 {
		fmt.Fprintln(tw, "\nROW\tEMAIL\tEXISTING CLIENT\tRESOLUTION")
		for _, d := range r.Duplicates {
			fmt.Fprintf(tw, "%d\t%s\t%s (%s)\t%s\n",
				d.RowIndex, d.ImportedRow.Email, d.ExistingClient.Name, d.ExistingClient.ID, d.Resolution)
		}
	}

	if len(r.InFileDuplicates) > 0 {
		fmt.Fprintln(tw, "\nEMAIL\tREPEATED IN ROWS")
		for _, d := range r.InFileDuplicates {
			rows := make([]string, len(d.RowIndexes))
			for i, idx := range d.RowIndexes {
				rows[i] = strconv.Itoa(idx)
			}
			fmt.Fprintf(tw, "%s\t%s\n", d.Email, strings.Join(rows, ", "))
		}
	}

	return tw.Flush()
}
