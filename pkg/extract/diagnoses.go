package extract

import (
	"regexp"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/terminology"
)

const maxDiagnosisLength = 160

var (
	diagnosisHeaderRegex = regexp.MustCompile(`(?i)^\s*(?:assessment(?:\s*(?:and|&)\s*plan)?|impression|clinical impression|diagnos[ie]s|working diagnosis|dx|a/p|a&p)\s*(?::\s*(.*))?$`)
	inlineNumberRegex    = regexp.MustCompile(`\s+\d{1,2}[.)]\s+`)
)

// diagnosisExtractor reads items under Assessment/Impression/Diagnosis
// headers. When no header yields anything it falls back to catalog terms
// found anywhere in the text.
func diagnosisExtractor(cat terminology.Catalog) func(string) []string {
	return func(text string) []string {
		var out []string
		seen := make(map[string]bool)
		add := func(d string) {
			d = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(d), ".;,"))
			if d == "" || len(d) > maxDiagnosisLength {
				return
			}
			key := strings.ToLower(d)
			if seen[key] {
				return
			}
			seen[key] = true
			out = append(out, d)
		}

		for _, block := range headedBlocks(text, diagnosisHeaderRegex) {
			for _, line := range strings.Split(block, "\n") {
				line = inlineNumberRegex.ReplaceAllString(line, ";")
				for _, item := range strings.Split(line, ";") {
					add(listPrefixRegex.ReplaceAllString(item, ""))
				}
			}
		}
		if len(out) > 0 {
			return out
		}

		for _, m := range cat.Match(text) {
			add(m.Concept.Display)
		}
		return out
	}
}

// diagnosisCoder links each diagnosis to the first catalog concept it
// mentions.
func diagnosisCoder(cat terminology.Catalog) func([]string) []models.CodedDiagnosis {
	return func(diagnoses []string) []models.CodedDiagnosis {
		var out []models.CodedDiagnosis
		for _, d := range diagnoses {
			matches := cat.Match(d)
			if len(matches) == 0 {
				continue
			}
			c := matches[0].Concept
			out = append(out, models.CodedDiagnosis{
				Text:    d,
				Display: c.Display,
				SNOMED:  c.SNOMED,
				ICD10:   c.ICD10,
			})
		}
		return out
	}
}
