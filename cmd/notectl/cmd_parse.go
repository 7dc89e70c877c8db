package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

type parseFlags struct {
	format      string
	enrich      bool
	evidence    bool
	jsonOut     bool
	concurrency int
}

type parseResult struct {
	File   string              `json:"file"`
	Record models.ParsedRecord `json:"record"`
	Plan   string              `json:"plan,omitempty"`
}

func newParseCmd() *cobra.Command {
	var flags parseFlags

	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parse notes into structured records",
		Long:  "Parse each file (or stdin when none or \"-\" is given) and print the record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.format, "format", "", "Trained format label to parse with")
	f.BoolVar(&flags.enrich, "enrich", false, "Call the enrichment service (ENRICHMENT_URL)")
	f.BoolVar(&flags.evidence, "evidence", false, "Append the guideline plan")
	f.BoolVar(&flags.jsonOut, "json", false, "Print JSON instead of a summary")
	f.IntVarP(&flags.concurrency, "concurrency", "c", 4, "Files parsed in parallel")
	return cmd
}

func runParse(cmd *cobra.Command, args []string, flags parseFlags) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	stdin := 0
	for _, a := range args {
		if a == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return fmt.Errorf("stdin (\"-\") can be read only once, got it %d times", stdin)
	}

	comp, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer comp.Close()

	if flags.format != "" {
		if _, ok := comp.Store.GetFormat(flags.format); !ok {
			return fmt.Errorf("format %q is not trained", flags.format)
		}
	}

	results := make([]parseResult, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(flags.concurrency, 1))
	for i, path := range args {
		g.Go(func() error {
			text, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			rec, err := comp.Parser.ParseBest(ctx, text, flags.format)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			if flags.enrich {
				rec = comp.Parser.Enrich(ctx, rec, text).Record
			}
			res := parseResult{File: path, Record: rec}
			if flags.evidence {
				res.Plan = comp.Evidence.Evaluate(rec).Text()
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printSummary(out, res)
	}
	return nil
}

func printSummary(out io.Writer, res parseResult) {
	rec := res.Record
	strategy := rec.Raw.Strategy
	if rec.Raw.Format != "" {
		strategy += " (" + rec.Raw.Format + ")"
	}
	fmt.Fprintf(out, "== %s\n", res.File)
	fmt.Fprintf(out, "Confidence: %.2f  Strategy: %s\n", rec.Confidence, strategy)

	d := rec.Data
	if p := d.Patient; p.Age > 0 || p.Gender != "" {
		fmt.Fprintf(out, "Patient: %d %s\n", p.Age, p.Gender)
	}
	if d.Vitals != nil {
		fmt.Fprintf(out, "Vitals: BP %s HR %d\n", d.Vitals.BP, d.Vitals.HR)
	}
	if len(d.Diagnoses) > 0 {
		fmt.Fprintf(out, "Diagnoses: %s\n", strings.Join(d.Diagnoses, "; "))
	}
	if len(d.Meds) > 0 {
		names := make([]string, 0, len(d.Meds))
		for _, m := range d.Meds {
			names = append(names, m.Name)
		}
		fmt.Fprintf(out, "Medications: %s\n", strings.Join(names, ", "))
	}
	if d.Plan != "" {
		fmt.Fprintf(out, "Plan: %s\n", d.Plan)
	}
	if len(rec.Warnings) > 0 {
		fmt.Fprintln(out, "Warnings:")
		for _, w := range rec.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	if res.Plan != "" {
		fmt.Fprintf(out, "\n%s", res.Plan)
	}
}
