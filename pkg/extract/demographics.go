package extract

import (
	"regexp"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/normalizer"
)

var (
	ageRegex        = regexp.MustCompile(`(?i)\b(\d{1,3})\s*-?\s*(?:y/?o|yr?s?\s*old|years?[\s-]old|year-old)\b`)
	ageLabelRegex   = regexp.MustCompile(`(?i)\bage\s*:?\s*(\d{1,3})\b`)
	ageSexRegex     = regexp.MustCompile(`\b(\d{1,3})(?:\s*y/?o\s*)?([MF])\b`)
	genderLabel     = regexp.MustCompile(`(?i)\b(?:sex|gender)\s*:\s*(male|female|m|f)\b`)
	genderWordRegex = regexp.MustCompile(`(?i)\b(male|female|man|woman|gentleman|lady)\b`)
	nameRegex       = regexp.MustCompile(`(?m)^\s*(?i:patient(?:\s+name)?|name)\s*:\s*([A-Z][A-Za-z'\-]+(?:,?\s+[A-Z][A-Za-z'\-]+){0,3})\s*$`)
	mrnRegex        = regexp.MustCompile(`(?i)\bMRN\s*[:#]?\s*([A-Z0-9][A-Z0-9\-]{3,})`)
	dobRegex        = regexp.MustCompile(`(?i)\b(?:DOB|date of birth)\s*:?\s*([^\n]{0,24})`)
	providerRegex   = regexp.MustCompile(`(?m)^\s*(?i:provider|attending|attending physician|physician|author|signed by|electronically signed by|dictated by|seen by)\s*:?\s*((?:Dr\.?\s+)?[A-Z][A-Za-z.'\-]+(?:\s+[A-Z][A-Za-z.'\-]+){0,3}(?:,\s*(?:MD|DO|NP|PA-C|PA|FACC|RN))*)`)
)

// ExtractDemographics finds age, gender, name, MRN and date of birth.
func ExtractDemographics(text string) models.Demographics {
	var d models.Demographics

	switch {
	case ageRegex.MatchString(text):
		d.Age = plausibleAge(ageRegex.FindStringSubmatch(text)[1])
	case ageLabelRegex.MatchString(text):
		d.Age = plausibleAge(ageLabelRegex.FindStringSubmatch(text)[1])
	}

	if m := ageSexRegex.FindStringSubmatch(text); m != nil {
		if d.Age == 0 {
			d.Age = plausibleAge(m[1])
		}
		d.Gender = genderFromToken(m[2])
	}
	if d.Gender == "" {
		if m := genderLabel.FindStringSubmatch(text); m != nil {
			d.Gender = genderFromToken(m[1])
		} else if m := genderWordRegex.FindStringSubmatch(text); m != nil {
			d.Gender = genderFromToken(m[1])
		}
	}

	if m := nameRegex.FindStringSubmatch(text); m != nil {
		d.Name = strings.TrimSpace(m[1])
	}
	if m := mrnRegex.FindStringSubmatch(text); m != nil {
		d.MRN = m[1]
	}
	if m := dobRegex.FindStringSubmatch(text); m != nil {
		if dates := normalizer.ExtractDates(m[1]); len(dates) > 0 {
			d.DOB = dates[0]
		}
	}
	return d
}

// ExtractProvider returns the clinician named on a signature or attending
// line.
func ExtractProvider(text string) string {
	if m := providerRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func plausibleAge(s string) int {
	age := atoi(s)
	if age <= 0 || age > 120 {
		return 0
	}
	return age
}

func genderFromToken(tok string) string {
	switch strings.ToLower(tok) {
	case "m", "male", "man", "gentleman":
		return "male"
	case "f", "female", "woman", "lady":
		return "female"
	}
	return ""
}
