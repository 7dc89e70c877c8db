package sections

import (
	"regexp"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

// Synonyms maps each canonical section to the header spellings accepted
// for it. Order matters: fuzzy matching keeps the first best candidate.
var Synonyms = map[models.SectionKey][]string{
	models.SectionSubjective: {
		"subjective", "hpi", "history of present illness", "history of presenting illness",
		"chief complaint", "cc", "reason for visit", "reason for consult", "interval history",
		"presenting complaint", "history",
	},
	models.SectionObjective: {
		"objective", "physical exam", "physical examination", "exam", "pe", "examination",
	},
	models.SectionAssessment: {
		"assessment", "impression", "clinical impression", "diagnosis", "diagnoses",
		"working diagnosis", "differential diagnosis", "assessment and plan", "a/p", "a&p",
	},
	models.SectionPlan: {
		"plan", "recommendations", "treatment plan", "disposition", "plan of care", "next steps",
	},
	models.SectionPMH: {
		"past medical history", "pmh", "medical history", "pmhx", "past history", "problem list",
	},
	models.SectionPSH: {
		"past surgical history", "psh", "surgical history", "pshx", "prior procedures",
	},
	models.SectionMedications: {
		"medications", "meds", "current medications", "home medications", "outpatient medications",
		"medication list", "active medications", "current meds", "home meds",
	},
	models.SectionAllergies: {
		"allergies", "allergy", "drug allergies", "allergies and reactions", "adverse reactions",
	},
	models.SectionVitals: {
		"vitals", "vital signs", "vs",
	},
	models.SectionLabs: {
		"labs", "laboratory", "lab results", "laboratory data", "laboratory results", "pertinent labs",
	},
	models.SectionImaging: {
		"imaging", "radiology", "diagnostic imaging", "studies", "ecg", "ekg", "echo",
		"echocardiogram", "chest x ray", "cxr",
	},
	models.SectionROS: {
		"review of systems", "ros", "systems review",
	},
	models.SectionFamilyHistory: {
		"family history", "fh", "fhx", "family hx",
	},
	models.SectionSocialHistory: {
		"social history", "sh", "shx", "social hx", "social",
	},
}

// SignalPhrases are content keywords indicative of a section even when no
// header introduces it.
var SignalPhrases = map[models.SectionKey][]string{
	models.SectionSubjective: {
		"complains of", "c/o", "presents with", "reports", "denies", "states", "onset",
		"chest pain", "shortness of breath", "palpitations",
	},
	models.SectionObjective: {
		"exam", "auscultation", "lungs clear", "regular rate", "rhythm", "murmur", "edema",
		"jvd", "tender", "alert and oriented", "no acute distress",
	},
	models.SectionAssessment: {
		"impression", "likely", "consistent with", "differential", "diagnosis", "r/o",
		"rule out", "suspect", "concerning for", "secondary to",
	},
	models.SectionPlan: {
		"will", "continue", "start", "follow up", "follow-up", "recommend", "order",
		"monitor", "discharge", "consult", "titrate", "schedule",
	},
	models.SectionMedications: {
		"mg", "mcg", "daily", "bid", "tid", "qid", "po", "prn", "tablet", "qhs",
	},
	models.SectionAllergies: {
		"allergy", "allergies", "allergic", "nkda", "anaphylaxis", "hives", "rash",
	},
	models.SectionLabs: {
		"troponin", "creatinine", "potassium", "sodium", "hemoglobin", "wbc", "bnp",
		"platelets", "glucose", "inr",
	},
	models.SectionImaging: {
		"ct", "mri", "x-ray", "ultrasound", "echocardiogram", "ejection fraction", "cxr",
		"angiography",
	},
	models.SectionSocialHistory: {
		"tobacco", "smoker", "smoking", "alcohol", "etoh", "drug use", "lives with",
		"occupation", "pack-year",
	},
	models.SectionFamilyHistory: {
		"mother", "father", "sibling", "brother", "sister", "family history of",
	},
}

type signalMatcher struct {
	key      models.SectionKey
	patterns []*regexp.Regexp
}

var (
	headerStripper = strings.NewReplacer(":", " ", "-", " ", "_", " ")
	spaceRegex     = regexp.MustCompile(`\s+`)
)

// normalizeHeader lowercases, replaces ':' '-' '_' with spaces and
// collapses whitespace.
func normalizeHeader(s string) string {
	s = strings.ToLower(headerStripper.Replace(s))
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

func compileSignals(table map[models.SectionKey][]string) []signalMatcher {
	var out []signalMatcher
	for _, key := range models.CanonicalSections {
		phrases, ok := table[key]
		if !ok {
			continue
		}
		m := signalMatcher{key: key}
		for _, phrase := range phrases {
			m.patterns = append(m.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(phrase)+`\b`))
		}
		out = append(out, m)
	}
	return out
}
