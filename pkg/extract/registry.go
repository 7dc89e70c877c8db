package extract

import (
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/normalizer"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/terminology"
)

// Extractors is the set of named entity extractors used by the
// orchestrator. Each takes raw text and returns a typed partial result,
// or the zero value when nothing is found.
type Extractors struct {
	Vitals       func(text string) models.Vitals
	Medications  func(text string) []models.Medication
	Allergies    func(text string) []models.Allergy
	Diagnoses    func(text string) []string
	Labs         func(text string) []models.LabResult
	Demographics func(text string) models.Demographics
	Provider     func(text string) string
	Dates        func(text string) []string
	Codes        func(diagnoses []string) []models.CodedDiagnosis
}

// DefaultExtractors returns the built-in extractors backed by the default
// terminology catalog.
func DefaultExtractors() Extractors {
	return NewExtractors(terminology.DefaultCatalog())
}

// NewExtractors returns the built-in extractors using cat as the diagnosis
// vocabulary and coder.
func NewExtractors(cat terminology.Catalog) Extractors {
	return Extractors{
		Vitals:       ExtractVitals,
		Medications:  ExtractMedications,
		Allergies:    ExtractAllergies,
		Diagnoses:    diagnosisExtractor(cat),
		Labs:         ExtractLabs,
		Demographics: ExtractDemographics,
		Provider:     ExtractProvider,
		Dates:        normalizer.ExtractDates,
		Codes:        diagnosisCoder(cat),
	}
}

// With returns a copy of e where every non-nil field of overrides wins.
func (e Extractors) With(overrides Extractors) Extractors {
	if overrides.Vitals != nil {
		e.Vitals = overrides.Vitals
	}
	if overrides.Medications != nil {
		e.Medications = overrides.Medications
	}
	if overrides.Allergies != nil {
		e.Allergies = overrides.Allergies
	}
	if overrides.Diagnoses != nil {
		e.Diagnoses = overrides.Diagnoses
	}
	if overrides.Labs != nil {
		e.Labs = overrides.Labs
	}
	if overrides.Demographics != nil {
		e.Demographics = overrides.Demographics
	}
	if overrides.Provider != nil {
		e.Provider = overrides.Provider
	}
	if overrides.Dates != nil {
		e.Dates = overrides.Dates
	}
	if overrides.Codes != nil {
		e.Codes = overrides.Codes
	}
	return e
}
