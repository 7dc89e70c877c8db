package extract

import (
	"regexp"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

type labDef struct {
	name string
	unit string
	re   *regexp.Regexp
}

// labPattern builds a matcher for a lab. Long names are case-insensitive
// and may be followed by a short connector ("of", "is", "I"); abbreviations
// must match case exactly and sit directly before the value.
func labPattern(names, abbrevs string) *regexp.Regexp {
	alts := `(?i:(?:` + names + `)\b[^0-9A-Za-z\n]{0,6}(?:(?:of|is|was|level|i|t)\b[^0-9A-Za-z\n]{0,4})?)`
	if abbrevs != "" {
		alts += `|(?:` + abbrevs + `)(?:\+?[ \t:=]{1,3}|\+)`
	}
	return regexp.MustCompile(`\b(?:` + alts + `)(\d+(?:\.\d+)?)`)
}

var labDefs = []labDef{
	{name: "potassium", unit: "mmol/L", re: labPattern(`potassium`, `K`)},
	{name: "sodium", unit: "mmol/L", re: labPattern(`sodium`, `Na`)},
	{name: "creatinine", unit: "mg/dL", re: labPattern(`creatinine`, `Cr|Creat`)},
	{name: "bun", unit: "mg/dL", re: labPattern(`blood urea nitrogen|bun`, ``)},
	{name: "hemoglobin", unit: "g/dL", re: labPattern(`hemoglobin|haemoglobin`, `Hgb|Hb`)},
	{name: "platelets", unit: "K/uL", re: labPattern(`platelets?|platelet count`, `Plt|PLT`)},
	{name: "wbc", unit: "K/uL", re: labPattern(`wbc|white blood cells?|white count`, ``)},
	{name: "troponin", unit: "ng/mL", re: labPattern(`troponin|hs-?tn[it]|trop`, ``)},
	{name: "bnp", unit: "pg/mL", re: labPattern(`nt-?probnp|bnp`, ``)},
	{name: "glucose", unit: "mg/dL", re: labPattern(`glucose`, `BG`)},
	{name: "inr", unit: "", re: labPattern(`inr`, ``)},
	{name: "ldl", unit: "mg/dL", re: labPattern(`ldl`, ``)},
	{name: "a1c", unit: "%", re: labPattern(`hba1c|a1c|hemoglobin a1c`, ``)},
	{name: "magnesium", unit: "mg/dL", re: labPattern(`magnesium`, `Mg`)},
}

// ExtractLabs returns the first value found for each known lab, in the
// fixed lab order.
func ExtractLabs(text string) []models.LabResult {
	var out []models.LabResult
	for _, def := range labDefs {
		loc := def.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		out = append(out, models.LabResult{
			Name:  def.name,
			Value: atof(text[loc[2]:loc[3]]),
			Unit:  def.unit,
			Raw:   text[loc[0]:loc[1]],
		})
	}
	return out
}
