package extract

import (
	"fmt"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

// Extraction is the entity record plus any warnings raised while running
// the extractors.
type Extraction struct {
	Data     models.NoteData
	Warnings []string
}

// Orchestrator dispatches text to extractors and resolves which source
// wins when several could supply the same entity.
type Orchestrator struct {
	ex Extractors
}

// NewOrchestrator returns an orchestrator over ex; missing extractors are
// filled from DefaultExtractors.
func NewOrchestrator(ex Extractors) *Orchestrator {
	return &Orchestrator{ex: DefaultExtractors().With(ex)}
}

var vitalsFallbackOrder = []models.SectionKey{
	models.SectionObjective,
	models.SectionVitals,
	models.SectionSubjective,
}

// Extract builds the entity record from detected sections and the full
// normalized text.
func (o *Orchestrator) Extract(sections models.SectionMap, fullText string) Extraction {
	var out Extraction
	d := &out.Data

	fail := func(name string) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s extractor failed", name))
	}

	if v := o.selectVitals(sections, fullText, fail); !v.IsEmpty() {
		d.Vitals = &v
	}

	if meds := sections[models.SectionMedications]; meds != "" {
		d.Meds = guard("medications", o.ex.Medications, meds, fail)
	}

	d.Allergies = guard("allergies", o.ex.Allergies, fullText, fail)
	if len(d.Allergies) == 0 && sections[models.SectionAllergies] != "" {
		d.Allergies = guard("allergies", o.ex.Allergies, headed("Allergies", sections[models.SectionAllergies]), fail)
	}

	d.Diagnoses = guard("diagnoses", o.ex.Diagnoses, fullText, fail)
	if len(d.Diagnoses) == 0 && sections[models.SectionAssessment] != "" {
		d.Diagnoses = guard("diagnoses", o.ex.Diagnoses, headed("Assessment", sections[models.SectionAssessment]), fail)
	}
	if len(d.Diagnoses) > 0 {
		d.Codes = guardSlice("codes", o.ex.Codes, d.Diagnoses, fail)
	}

	d.Labs = guard("labs", o.ex.Labs, fullText, fail)
	d.Provider = guard("provider", o.ex.Provider, fullText, fail)
	d.Dates = guard("dates", o.ex.Dates, fullText, fail)
	d.Patient = guard("demographics", o.ex.Demographics, fullText, fail)

	d.Subjective = sections[models.SectionSubjective]
	d.Objective = sections[models.SectionObjective]
	d.Assessment = sections[models.SectionAssessment]
	d.Plan = sections[models.SectionPlan]
	d.PMH = sections[models.SectionPMH]
	d.PSH = sections[models.SectionPSH]
	d.Imaging = sections[models.SectionImaging]
	d.ROS = sections[models.SectionROS]
	d.FamilyHistory = sections[models.SectionFamilyHistory]
	d.SocialHistory = sections[models.SectionSocialHistory]
	return out
}

// selectVitals prefers a structured full-text result. Otherwise sections
// are consulted in order: a structured section result replaces the current
// choice and ends the search, and the first non-empty result is kept while
// nothing better turns up. A structured full-text result is never replaced.
func (o *Orchestrator) selectVitals(sections models.SectionMap, fullText string, fail func(string)) models.Vitals {
	best := guard("vitals", o.ex.Vitals, fullText, fail)
	if best.Structured() {
		return best
	}
	for _, key := range vitalsFallbackOrder {
		text := sections[key]
		if text == "" {
			continue
		}
		v := guard("vitals", o.ex.Vitals, text, fail)
		if v.Structured() {
			return v
		}
		if best.IsEmpty() && !v.IsEmpty() {
			best = v
		}
	}
	return best
}

// headed puts a section body back under a label line so header-driven
// extractors read it the same way they read the full note.
func headed(label, body string) string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return label + ":\n" + strings.Join(lines, "\n")
}

// guard runs fn and turns a panic into a zero result plus a warning.
func guard[T any](name string, fn func(string) T, text string, fail func(string)) (out T) {
	if fn == nil {
		return out
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			fail(name)
		}
	}()
	return fn(text)
}

func guardSlice[T any](name string, fn func([]string) T, in []string, fail func(string)) (out T) {
	if fn == nil {
		return out
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			fail(name)
		}
	}()
	return fn(in)
}
