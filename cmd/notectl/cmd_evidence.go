package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newEvidenceCmd() *cobra.Command {
	var (
		format  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "evidence [file]",
		Short: "Print the guideline plan for a note",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			text, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}

			comp, err := loadComponents(cmd)
			if err != nil {
				return err
			}
			defer comp.Close()

			rec, err := comp.Parser.ParseBest(cmd.Context(), text, format)
			if err != nil {
				return err
			}
			plan := comp.Evidence.Evaluate(rec)

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			if plan == nil {
				fmt.Fprintln(out, "No guideline protocol matches the diagnoses in this note.")
				return nil
			}
			fmt.Fprint(out, plan.Text())
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Trained format label to parse with")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the plan as JSON")
	return cmd
}
