package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

func newFormatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "Manage trained header formats",
	}
	cmd.AddCommand(newFormatsListCmd())
	cmd.AddCommand(newFormatsSaveCmd())
	cmd.AddCommand(newFormatsDeleteCmd())
	cmd.AddCommand(newFormatsExportCmd())
	cmd.AddCommand(newFormatsImportCmd())
	return cmd
}

func newFormatsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trained formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comp, err := loadComponents(cmd)
			if err != nil {
				return err
			}
			defer comp.Close()

			defs := comp.Store.ListFormats()
			out := cmd.OutOrStdout()
			if len(defs) == 0 {
				fmt.Fprintln(out, "No trained formats.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tSECTIONS\tCREATED")
			for _, def := range defs {
				keys := make([]string, 0, len(def.Sections))
				for k := range def.Sections {
					keys = append(keys, string(k))
				}
				sort.Strings(keys)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Label, strings.Join(keys, ","), def.Created.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
}

func newFormatsSaveCmd() *cobra.Command {
	var aliases []string

	cmd := &cobra.Command{
		Use:   "save LABEL",
		Short: "Train or replace a format from section=alias pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hints, err := parseAliases(aliases)
			if err != nil {
				return err
			}

			comp, err := loadComponents(cmd)
			if err != nil {
				return err
			}
			defer comp.Close()

			def, err := comp.Store.SaveFormat(cmd.Context(), args[0], hints)
			if err != nil {
				return fmt.Errorf("save format: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved format %s with %d sections\n", def.Label, len(def.Sections))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&aliases, "alias", "a", nil, `Header alias as section=text, e.g. "assessment=Impr >>" (repeatable)`)
	_ = cmd.MarkFlagRequired("alias")
	return cmd
}

// parseAliases turns section=alias pairs into hints. The store drops
// section names it does not recognise.
func parseAliases(pairs []string) (models.SectionHints, error) {
	hints := make(models.SectionHints)
	for _, pair := range pairs {
		key, alias, ok := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" || strings.TrimSpace(alias) == "" {
			return nil, fmt.Errorf("invalid alias %q: want section=text", pair)
		}
		sk := models.SectionKey(key)
		hints[sk] = append(hints[sk], alias)
	}
	return hints, nil
}

func newFormatsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete LABEL",
		Short: "Delete a trained format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := loadComponents(cmd)
			if err != nil {
				return err
			}
			defer comp.Close()

			if err := comp.Store.DeleteFormat(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete format %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted format %s\n", args[0])
			return nil
		},
	}
}

func newFormatsExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every trained format as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comp, err := loadComponents(cmd)
			if err != nil {
				return err
			}
			defer comp.Close()

			data, err := comp.Store.ExportJSON()
			if err != nil {
				return fmt.Errorf("export formats: %w", err)
			}
			if output == "" || output == "-" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(filepath.Clean(output), data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d formats to %s\n", len(comp.Store.Labels()), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newFormatsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge formats from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			comp, err := loadComponents(cmd)
			if err != nil {
				return err
			}
			defer comp.Close()

			n, err := comp.Store.Import(cmd.Context(), []byte(data))
			if err != nil {
				return fmt.Errorf("import formats: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d formats\n", n)
			return nil
		},
	}
}
