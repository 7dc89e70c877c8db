package sections

import (
	"regexp"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

var (
	bulletRegex     = regexp.MustCompile(`^\s*(?:[-*+•]|\d{1,2}[.)])\s+`)
	dosageRegex     = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|units?|meq|iu)\b`)
	vitalSignRegex  = regexp.MustCompile(`(?i)\b(?:bp|blood pressure)\s*:?\s*\d{2,3}\s*/\s*\d{2,3}\b|\b(?:hr|heart rate|pulse)\s*:?\s*\d{2,3}\b`)
	diagnosticRegex = regexp.MustCompile(`(?i)\b(?:impression|diagnosis|diagnosed|assessment|consistent with|likely|suspected|rule out|r/o)\b`)
)

// ClassifyLayout routes a paragraph by structural cues alone. It returns
// an empty key when nothing recognisable is present.
func ClassifyLayout(paragraph string) models.SectionKey {
	lines := nonEmptyLines(paragraph)
	if len(lines) == 0 {
		return ""
	}

	bullets := 0
	for _, line := range lines {
		if bulletRegex.MatchString(line) {
			bullets++
		}
	}
	if float64(bullets)/float64(len(lines)) > 0.5 {
		if dosageRegex.MatchString(paragraph) {
			return models.SectionMedications
		}
		return models.SectionPlan
	}

	switch {
	case vitalSignRegex.MatchString(paragraph):
		return models.SectionObjective
	case diagnosticRegex.MatchString(paragraph):
		return models.SectionAssessment
	}
	return ""
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
