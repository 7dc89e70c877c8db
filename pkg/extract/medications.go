package extract

import (
	"regexp"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

var (
	listPrefixRegex = regexp.MustCompile(`^\s*(?:[-*+•]|\d{1,2}[.)])\s*`)
	medDoseRegex    = regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z\-/ ]*?)\s*(\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|units?|meq|iu|%))\b(.*)$`)
	medRouteRegex   = regexp.MustCompile(`(?i)\b(po|iv|im|sq|sc|subq|sl|pr|inh|topical|transdermal|oral|by mouth)\b`)
	medFreqRegex    = regexp.MustCompile(`(?i)\b(daily|once daily|twice daily|qd|bid|tid|qid|qhs|qam|qpm|q\d{1,2}h|prn|weekly|nightly|at bedtime)\b`)
	medNameRegex    = regexp.MustCompile(`^[A-Za-z][A-Za-z\-/]*(?:\s+[A-Za-z][A-Za-z\-/]*){0,3}$`)
	noMedsRegex     = regexp.MustCompile(`(?i)^(?:none|no medications|no meds|nkda|n/a)\.?$`)
)

// ExtractMedications reads one medication per line (semicolons also
// separate entries). Lines without a dose are kept only when they look
// like a bare drug name.
func ExtractMedications(text string) []models.Medication {
	var meds []models.Medication
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		for _, item := range strings.Split(line, ";") {
			med, ok := parseMedication(item)
			if !ok {
				continue
			}
			key := strings.ToLower(med.Name + "|" + med.Dose)
			if seen[key] {
				continue
			}
			seen[key] = true
			meds = append(meds, med)
		}
	}
	return meds
}

func parseMedication(item string) (models.Medication, bool) {
	item = strings.TrimSpace(listPrefixRegex.ReplaceAllString(item, ""))
	item = strings.TrimRight(item, ".,")
	if item == "" || noMedsRegex.MatchString(item) {
		return models.Medication{}, false
	}

	if m := medDoseRegex.FindStringSubmatch(item); m != nil {
		name := strings.TrimSpace(m[1])
		if name == "" {
			return models.Medication{}, false
		}
		med := models.Medication{
			Name: name,
			Dose: strings.ReplaceAll(strings.TrimSpace(m[2]), " ", ""),
			Raw:  item,
		}
		rest := m[3]
		if r := medRouteRegex.FindString(rest); r != "" {
			med.Route = strings.ToUpper(r)
		}
		if f := medFreqRegex.FindString(rest); f != "" {
			med.Frequency = strings.ToLower(f)
		}
		return med, true
	}

	if medNameRegex.MatchString(item) {
		return models.Medication{Name: item, Raw: item}, true
	}
	return models.Medication{}, false
}
