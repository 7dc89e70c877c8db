package models

import (
	"strings"
	"time"
)

// SectionKey is a canonical clinical note section name.
type SectionKey string

const (
	SectionSubjective    SectionKey = "subjective"
	SectionObjective     SectionKey = "objective"
	SectionAssessment    SectionKey = "assessment"
	SectionPlan          SectionKey = "plan"
	SectionPMH           SectionKey = "pmh"
	SectionPSH           SectionKey = "psh"
	SectionMedications   SectionKey = "medications"
	SectionAllergies     SectionKey = "allergies"
	SectionVitals        SectionKey = "vitals"
	SectionLabs          SectionKey = "labs"
	SectionImaging       SectionKey = "imaging"
	SectionROS           SectionKey = "ros"
	SectionFamilyHistory SectionKey = "family_history"
	SectionSocialHistory SectionKey = "social_history"
)

// CanonicalSections lists every section key in the order used for
// deterministic iteration.
var CanonicalSections = []SectionKey{
	SectionSubjective,
	SectionObjective,
	SectionAssessment,
	SectionPlan,
	SectionPMH,
	SectionPSH,
	SectionMedications,
	SectionAllergies,
	SectionVitals,
	SectionLabs,
	SectionImaging,
	SectionROS,
	SectionFamilyHistory,
	SectionSocialHistory,
}

// ParseSectionKey resolves a free-form name to a canonical key.
func ParseSectionKey(name string) (SectionKey, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "hpi" {
		return SectionSubjective, true
	}
	for _, key := range CanonicalSections {
		if string(key) == name {
			return key, true
		}
	}
	return "", false
}

// SectionMap holds accumulated section text keyed by canonical name only.
type SectionMap map[SectionKey]string

// Keys returns the populated keys in canonical order.
func (m SectionMap) Keys() []SectionKey {
	keys := make([]SectionKey, 0, len(m))
	for _, key := range CanonicalSections {
		if strings.TrimSpace(m[key]) != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// MatchResult is the outcome of one scoring attempt. An empty Canonical
// means no section matched.
type MatchResult struct {
	Canonical      SectionKey `json:"canonical,omitempty"`
	Score          float64    `json:"score"`
	MatchedSynonym string     `json:"matchedSynonym,omitempty"`
}

func (m MatchResult) Matched() bool {
	return m.Canonical != ""
}

const (
	VitalsFormatTable  = "table"
	VitalsFormatMinMax = "minmax"
)

type Vitals struct {
	BP        string  `json:"bp,omitempty"`
	Systolic  int     `json:"systolic,omitempty"`
	Diastolic int     `json:"diastolic,omitempty"`
	HR        int     `json:"hr,omitempty"`
	RR        int     `json:"rr,omitempty"`
	Temp      float64 `json:"temp,omitempty"`
	SpO2      int     `json:"spo2,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
	// Format tags structured layouts; empty for inline mentions.
	Format string `json:"format,omitempty"`
}

// Count returns the number of populated vital fields.
func (v Vitals) Count() int {
	n := 0
	if v.BP != "" {
		n++
	}
	if v.HR > 0 {
		n++
	}
	if v.RR > 0 {
		n++
	}
	if v.Temp > 0 {
		n++
	}
	if v.SpO2 > 0 {
		n++
	}
	if v.Weight > 0 {
		n++
	}
	return n
}

func (v Vitals) IsEmpty() bool {
	return v.Count() == 0
}

// Structured reports whether the vitals came from a recognised tabular
// or min/max layout.
func (v Vitals) Structured() bool {
	return v.Format == VitalsFormatTable || v.Format == VitalsFormatMinMax
}

type Medication struct {
	Name      string `json:"name"`
	Dose      string `json:"dose,omitempty"`
	Route     string `json:"route,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Raw       string `json:"raw,omitempty"`
}

type Allergy struct {
	Substance string `json:"substance"`
	Reaction  string `json:"reaction,omitempty"`
}

type LabResult struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Raw   string  `json:"raw,omitempty"`
}

type Demographics struct {
	Name   string `json:"name,omitempty"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
	MRN    string `json:"mrn,omitempty"`
	DOB    string `json:"dob,omitempty"`
}

func (d Demographics) IsEmpty() bool {
	return d == Demographics{}
}

// CodedDiagnosis links an extracted diagnosis to terminology codes.
type CodedDiagnosis struct {
	Text    string `json:"text"`
	Display string `json:"display"`
	SNOMED  string `json:"snomed,omitempty"`
	ICD10   string `json:"icd10,omitempty"`
}

type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

type NoteData struct {
	Patient       Demographics     `json:"patient"`
	Vitals        *Vitals          `json:"vitals,omitempty"`
	Meds          []Medication     `json:"meds,omitempty"`
	Allergies     []Allergy        `json:"allergies,omitempty"`
	Diagnoses     []string         `json:"diagnoses,omitempty"`
	Codes         []CodedDiagnosis `json:"codes,omitempty"`
	Subjective    string           `json:"subjective,omitempty"`
	Objective     string           `json:"objective,omitempty"`
	Assessment    string           `json:"assessment,omitempty"`
	Plan          string           `json:"plan,omitempty"`
	Labs          []LabResult      `json:"labs,omitempty"`
	Dates         []string         `json:"dates,omitempty"`
	Provider      string           `json:"provider,omitempty"`
	PMH           string           `json:"pmh,omitempty"`
	PSH           string           `json:"psh,omitempty"`
	Imaging       string           `json:"imaging,omitempty"`
	ROS           string           `json:"ros,omitempty"`
	FamilyHistory string           `json:"family_history,omitempty"`
	SocialHistory string           `json:"social_history,omitempty"`
	Citations     []Citation       `json:"citations,omitempty"`
}

// Lab returns the first lab result whose name matches.
func (d NoteData) Lab(name string) (LabResult, bool) {
	for _, lab := range d.Labs {
		if strings.EqualFold(lab.Name, name) {
			return lab, true
		}
	}
	return LabResult{}, false
}

type RawSections struct {
	Sections       SectionMap            `json:"sections"`
	Strategy       string                `json:"strategy,omitempty"`
	Format         string                `json:"format,omitempty"`
	MatchedAliases map[SectionKey]string `json:"matchedAliases,omitempty"`
	Enrichment     string                `json:"enrichment,omitempty"`

	// Detection diagnostics from the generic detector.
	HeaderCount int                     `json:"headerCount,omitempty"`
	Sources     map[SectionKey][]string `json:"sources,omitempty"`
}

// ParsedRecord is the output of one parse call.
type ParsedRecord struct {
	Data       NoteData    `json:"data"`
	Warnings   []string    `json:"warnings"`
	Confidence float64     `json:"confidence"`
	Raw        RawSections `json:"raw"`
}

// Clone returns a deep copy so later stages never alias earlier output.
func (r ParsedRecord) Clone() ParsedRecord {
	out := r
	out.Warnings = append([]string(nil), r.Warnings...)
	if r.Data.Vitals != nil {
		v := *r.Data.Vitals
		out.Data.Vitals = &v
	}
	out.Data.Meds = append([]Medication(nil), r.Data.Meds...)
	out.Data.Allergies = append([]Allergy(nil), r.Data.Allergies...)
	out.Data.Diagnoses = append([]string(nil), r.Data.Diagnoses...)
	out.Data.Codes = append([]CodedDiagnosis(nil), r.Data.Codes...)
	out.Data.Labs = append([]LabResult(nil), r.Data.Labs...)
	out.Data.Dates = append([]string(nil), r.Data.Dates...)
	out.Data.Citations = append([]Citation(nil), r.Data.Citations...)
	if r.Raw.Sections != nil {
		out.Raw.Sections = make(SectionMap, len(r.Raw.Sections))
		for k, v := range r.Raw.Sections {
			out.Raw.Sections[k] = v
		}
	}
	if r.Raw.MatchedAliases != nil {
		out.Raw.MatchedAliases = make(map[SectionKey]string, len(r.Raw.MatchedAliases))
		for k, v := range r.Raw.MatchedAliases {
			out.Raw.MatchedAliases[k] = v
		}
	}
	if r.Raw.Sources != nil {
		out.Raw.Sources = make(map[SectionKey][]string, len(r.Raw.Sources))
		for k, v := range r.Raw.Sources {
			out.Raw.Sources[k] = append([]string(nil), v...)
		}
	}
	return out
}

// SectionHints is the raw alias input for training a format.
type SectionHints map[SectionKey][]string

// FormatSection is the persisted shape of one trained section.
type FormatSection struct {
	Aliases []string `json:"aliases"`
	Pattern string   `json:"pattern"`
	Custom  bool     `json:"custom"`
}

// FormatDefinition is the persisted shape of a trained format.
type FormatDefinition struct {
	Label    string                       `json:"label"`
	Created  time.Time                    `json:"created"`
	Sections map[SectionKey]FormatSection `json:"sections"`
}
