package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFieldsCmd() *cobra.Command {
	var (
		catalogPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the canonical client fields columns can map to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}

			fmt.Fprintf(out, "Catalogue %s\n\n", catalog.Version)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLABEL\tTYPE\tREQUIRED\tALIASES")
			for _, f := range catalog.Fields {
				required := ""
				if f.Required {
					required = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Key, f.Label, f.Type, required, strings.Join(f.Aliases, ", "))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", envOr("IMPORT_CATALOG_PATH", ""), "YAML file overriding the built-in catalogue")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalogue as JSON")
	return cmd
}
