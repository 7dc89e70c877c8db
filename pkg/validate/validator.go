package validate

import (
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

const (
	WarnMissingAssessmentPlan = "CRITICAL: Missing both assessment and plan"
	WarnSubjectiveShort       = "Subjective section missing or too short"
	WarnNoVitals              = "No vitals extracted"
	WarnIncompleteVitals      = "Incomplete vitals (fewer than 3 found)"
	WarnNoMedications         = "No medications found"
	WarnNoDiagnoses           = "No diagnoses found"
	WarnNoAge                 = "Patient age not found"
	WarnNoGender              = "Patient gender not found"
	WarnEmptyInput            = "Empty or invalid input"

	criticalPrefix       = "CRITICAL"
	minSubjectiveLength  = 10
	completeVitalsFields = 3
)

// Validate appends a warning for every expected field that is missing. It
// never changes data.
func Validate(data models.NoteData) []string {
	var warnings []string

	if strings.TrimSpace(data.Assessment) == "" && strings.TrimSpace(data.Plan) == "" {
		warnings = append(warnings, WarnMissingAssessmentPlan)
	}
	if len(strings.TrimSpace(data.Subjective)) < minSubjectiveLength {
		warnings = append(warnings, WarnSubjectiveShort)
	}

	vitals := 0
	if data.Vitals != nil {
		vitals = data.Vitals.Count()
	}
	switch {
	case vitals == 0:
		warnings = append(warnings, WarnNoVitals)
	case vitals < completeVitalsFields:
		warnings = append(warnings, WarnIncompleteVitals)
	}

	if len(data.Meds) == 0 {
		warnings = append(warnings, WarnNoMedications)
	}
	if len(data.Diagnoses) == 0 {
		warnings = append(warnings, WarnNoDiagnoses)
	}
	if data.Patient.Age == 0 {
		warnings = append(warnings, WarnNoAge)
	}
	if data.Patient.Gender == "" {
		warnings = append(warnings, WarnNoGender)
	}
	return warnings
}

// IsCritical reports whether a warning carries the CRITICAL marker.
func IsCritical(warning string) bool {
	return strings.HasPrefix(warning, criticalPrefix)
}
