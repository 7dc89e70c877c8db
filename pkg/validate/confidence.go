package validate

import (
	"math"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

const (
	baseConfidence = 0.5

	sectionsBonus       = 0.15
	fullVitalsBonus     = 0.10
	someVitalsBonus     = 0.05
	medicationBonus     = 0.10
	longPlanBonus       = 0.15
	shortPlanBonus      = 0.05
	assessmentBonus     = 0.10
	demographicsBonus   = 0.05
	criticalPenalty     = 0.20
	warningPenalty      = 0.05
	minSectionsForBonus = 3
	longPlanLength      = 30
	assessmentLength    = 20
)

// Confidence scores a record from 0 to 1: additive bonuses on a 0.5 base,
// then a penalty per warning, then clamping.
func Confidence(sections models.SectionMap, data models.NoteData, warnings []string) float64 {
	score := baseConfidence

	if len(sections.Keys()) >= minSectionsForBonus {
		score += sectionsBonus
	}

	vitals := 0
	if data.Vitals != nil {
		vitals = data.Vitals.Count()
	}
	switch {
	case vitals >= completeVitalsFields:
		score += fullVitalsBonus
	case vitals >= 1:
		score += someVitalsBonus
	}

	if len(data.Meds) >= 1 {
		score += medicationBonus
	}

	switch {
	case len(data.Plan) > longPlanLength:
		score += longPlanBonus
	case len(data.Plan) > 0:
		score += shortPlanBonus
	}

	if len(data.Assessment) > assessmentLength {
		score += assessmentBonus
	}
	if !data.Patient.IsEmpty() {
		score += demographicsBonus
	}

	for _, w := range warnings {
		if IsCritical(w) {
			score -= criticalPenalty
		} else {
			score -= warningPenalty
		}
	}

	return round(math.Max(0, math.Min(1, score)))
}

// round trims float noise left by the additive arithmetic.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
