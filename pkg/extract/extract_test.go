package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

func TestExtractVitalsInline(t *testing.T) {
	v := ExtractVitals("BP: 120/80 HR: 72\nAssessment: STEMI")
	assert.Equal(t, "120/80", v.BP)
	assert.Equal(t, 120, v.Systolic)
	assert.Equal(t, 80, v.Diastolic)
	assert.Equal(t, 72, v.HR)
	assert.Equal(t, 2, v.Count())
	assert.False(t, v.Structured())
}

func TestExtractVitalsTable(t *testing.T) {
	text := "Vitals:\nBP | HR | RR | Temp | SpO2\n132/84 | 88 | 18 | 98.6 | 96%\n"

	want := models.Vitals{
		BP: "132/84", Systolic: 132, Diastolic: 84,
		HR: 88, RR: 18, Temp: 98.6, SpO2: 96,
		Format: models.VitalsFormatTable,
	}
	if diff := cmp.Diff(want, ExtractVitals(text)); diff != "" {
		t.Errorf("table vitals mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractVitalsTableAfterNormalize(t *testing.T) {
	// tab and column padding collapse to single spaces during normalization
	text := "Vitals:\nBP HR RR SpO2\n118/76 64 16 98\n"

	want := models.Vitals{
		BP: "118/76", Systolic: 118, Diastolic: 76,
		HR: 64, RR: 16, SpO2: 98,
		Format: models.VitalsFormatTable,
	}
	if diff := cmp.Diff(want, ExtractVitals(text)); diff != "" {
		t.Errorf("table vitals mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, ExtractVitals("BP HR\nstable overnight").Format)
}

func TestExtractVitalsMinMaxKeepsMax(t *testing.T) {
	v := ExtractVitals("Last 24h: HR 58-92, BP 102/60-148/90, SpO2 94-99")
	assert.Equal(t, models.VitalsFormatMinMax, v.Format)
	assert.Equal(t, 92, v.HR)
	assert.Equal(t, "148/90", v.BP)
	assert.Equal(t, 99, v.SpO2)
}

func TestExtractVitalsRejectsImplausible(t *testing.T) {
	v := ExtractVitals("HR 900, BP 80/120")
	assert.True(t, v.IsEmpty())
	assert.True(t, ExtractVitals("").IsEmpty())
}

func TestExtractMedications(t *testing.T) {
	meds := ExtractMedications("- Aspirin 81 mg PO daily\n- Metoprolol succinate 25 mg bid\nAtorvastatin\n- None")
	require.Len(t, meds, 3)

	assert.Equal(t, "Aspirin", meds[0].Name)
	assert.Equal(t, "81mg", meds[0].Dose)
	assert.Equal(t, "PO", meds[0].Route)
	assert.Equal(t, "daily", meds[0].Frequency)

	assert.Equal(t, "Metoprolol succinate", meds[1].Name)
	assert.Equal(t, "25mg", meds[1].Dose)
	assert.Empty(t, meds[1].Route)
	assert.Equal(t, "bid", meds[1].Frequency)

	assert.Equal(t, "Atorvastatin", meds[2].Name)
	assert.Empty(t, meds[2].Dose)
}

func TestExtractMedicationsSkipsProse(t *testing.T) {
	assert.Empty(t, ExtractMedications("Patient has been taking everything as prescribed without issue."))
}

func TestExtractAllergies(t *testing.T) {
	got := ExtractAllergies("Allergies: Penicillin (rash), sulfa - hives\nPlan: continue")
	assert.Equal(t, []models.Allergy{
		{Substance: "Penicillin", Reaction: "rash"},
		{Substance: "sulfa", Reaction: "hives"},
	}, got)
}

func TestExtractAllergiesNKDA(t *testing.T) {
	assert.Equal(t, []models.Allergy{{Substance: NoKnownAllergies}}, ExtractAllergies("ALLERGIES: NKDA"))
	assert.Equal(t, []models.Allergy{{Substance: NoKnownAllergies}}, ExtractAllergies("No known drug allergies."))
}

func TestExtractAllergiesPhrase(t *testing.T) {
	got := ExtractAllergies("Patient is allergic to codeine (nausea).")
	assert.Equal(t, []models.Allergy{{Substance: "codeine", Reaction: "nausea"}}, got)
}

func TestExtractDiagnosesFromHeaders(t *testing.T) {
	diagnose := DefaultExtractors().Diagnoses

	assert.Equal(t, []string{"NSTEMI", "HTN, uncontrolled"},
		diagnose("Assessment:\n1. NSTEMI\n2. HTN, uncontrolled\n\nPlan: heparin"))
	assert.Equal(t, []string{"CHF exacerbation", "AKI"},
		diagnose("Impression: 1. CHF exacerbation 2. AKI"))
	assert.Equal(t, []string{"STEMI"}, diagnose("BP: 120/80 HR: 72\nAssessment: STEMI\nPlan: Aspirin 325mg, cath lab"))
}

func TestExtractDiagnosesCatalogFallback(t *testing.T) {
	got := DefaultExtractors().Diagnoses("Long history of atrial fibrillation and HTN.")
	assert.Equal(t, []string{"Atrial fibrillation", "Hypertension"}, got)
	assert.Empty(t, DefaultExtractors().Diagnoses("Feeling well today."))
}

func TestDiagnosisCodes(t *testing.T) {
	codes := DefaultExtractors().Codes([]string{"HTN, uncontrolled", "Stable angina"})
	require.Len(t, codes, 1)
	assert.Equal(t, "HTN, uncontrolled", codes[0].Text)
	assert.Equal(t, "Hypertension", codes[0].Display)
	assert.Equal(t, "I10", codes[0].ICD10)
}

func TestExtractLabs(t *testing.T) {
	labs := ExtractLabs("K 5.8, Cr 3.4, Plt 45 K/uL, Hgb 6.5, Troponin I 0.45")

	var names []string
	for _, l := range labs {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"potassium", "creatinine", "hemoglobin", "platelets", "troponin"}, names)

	values := map[string]float64{}
	for _, l := range labs {
		values[l.Name] = l.Value
	}
	assert.Equal(t, 5.8, values["potassium"])
	assert.Equal(t, 3.4, values["creatinine"])
	assert.Equal(t, 6.5, values["hemoglobin"])
	assert.Equal(t, 45.0, values["platelets"])
	assert.Equal(t, 0.45, values["troponin"])
}

func TestExtractLabsIgnoresUnits(t *testing.T) {
	labs := ExtractLabs("Plt 150 K/uL")
	require.Len(t, labs, 1)
	assert.Equal(t, "platelets", labs[0].Name)
}

func TestExtractDemographics(t *testing.T) {
	d := ExtractDemographics("Patient: John Doe\n65 yo M with MRN: 12345678, DOB: 03/14/1959")
	assert.Equal(t, models.Demographics{
		Name:   "John Doe",
		Age:    65,
		Gender: "male",
		MRN:    "12345678",
		DOB:    "1959-03-14",
	}, d)

	d = ExtractDemographics("72-year-old woman with dyspnea")
	assert.Equal(t, 72, d.Age)
	assert.Equal(t, "female", d.Gender)

	assert.True(t, ExtractDemographics("no identifying details").IsEmpty())
}

func TestExtractProvider(t *testing.T) {
	assert.Equal(t, "Dr. Jane Smith, MD", ExtractProvider("Plan: cath\nElectronically signed by: Dr. Jane Smith, MD"))
	assert.Empty(t, ExtractProvider("Physician follow up in 2 weeks"))
}

func stubVitals(table map[string]models.Vitals) Extractors {
	return Extractors{Vitals: func(text string) models.Vitals { return table[text] }}
}

func TestSelectVitalsPriority(t *testing.T) {
	tableA := models.Vitals{BP: "120/80", HR: 70, Format: models.VitalsFormatTable}
	tableB := models.Vitals{BP: "140/90", HR: 90, Format: models.VitalsFormatTable}
	minmax := models.Vitals{HR: 110, RR: 20, Format: models.VitalsFormatMinMax}
	inlineX := models.Vitals{HR: 60}
	inlineY := models.Vitals{HR: 65}

	cases := []struct {
		name     string
		table    map[string]models.Vitals
		sections models.SectionMap
		want     models.Vitals
	}{
		{
			name:     "structured full text wins over structured section",
			table:    map[string]models.Vitals{"full": tableA, "obj": tableB},
			sections: models.SectionMap{models.SectionObjective: "obj"},
			want:     tableA,
		},
		{
			name:     "structured section replaces inline full text",
			table:    map[string]models.Vitals{"full": inlineX, "vs": tableB},
			sections: models.SectionMap{models.SectionVitals: "vs"},
			want:     tableB,
		},
		{
			name:     "first non-empty section kept",
			table:    map[string]models.Vitals{"obj": inlineY, "vs": inlineX},
			sections: models.SectionMap{models.SectionObjective: "obj", models.SectionVitals: "vs"},
			want:     inlineY,
		},
		{
			name:     "later structured section beats earlier inline",
			table:    map[string]models.Vitals{"obj": inlineY, "subj": minmax},
			sections: models.SectionMap{models.SectionObjective: "obj", models.SectionSubjective: "subj"},
			want:     minmax,
		},
		{
			name:     "inline full text kept over inline sections",
			table:    map[string]models.Vitals{"full": inlineX, "obj": inlineY},
			sections: models.SectionMap{models.SectionObjective: "obj"},
			want:     inlineX,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewOrchestrator(stubVitals(tc.table)).Extract(tc.sections, "full")
			require.NotNil(t, got.Data.Vitals)
			assert.Equal(t, tc.want, *got.Data.Vitals)
		})
	}
}

func TestOrchestratorDispatch(t *testing.T) {
	sections := models.SectionMap{
		models.SectionSubjective:  "Follow up visit.",
		models.SectionMedications: "Aspirin 81 mg daily",
		models.SectionAllergies:   "Penicillin",
		models.SectionAssessment:  "1. Stable angina\n2. HTN",
		models.SectionPMH:         "Appendectomy remote",
		models.SectionLabs:        "K 4.0",
		models.SectionPlan:        "Continue current therapy",
	}
	full := "Follow up visit. K 4.0 on 2024-02-01."

	got := NewOrchestrator(Extractors{}).Extract(sections, full)
	d := got.Data

	assert.Empty(t, got.Warnings)
	require.Len(t, d.Meds, 1)
	assert.Equal(t, "Aspirin", d.Meds[0].Name)
	assert.Equal(t, []models.Allergy{{Substance: "Penicillin"}}, d.Allergies)
	assert.Equal(t, []string{"Stable angina", "HTN"}, d.Diagnoses)
	require.Len(t, d.Codes, 1)
	assert.Equal(t, "Hypertension", d.Codes[0].Display)
	require.Len(t, d.Labs, 1)
	assert.Equal(t, "potassium", d.Labs[0].Name)
	assert.Equal(t, []string{"2024-02-01"}, d.Dates)
	assert.Equal(t, "Appendectomy remote", d.PMH)
	assert.Equal(t, "Continue current therapy", d.Plan)
	assert.Nil(t, d.Vitals)
}

func TestMedicationsOnlyFromSection(t *testing.T) {
	got := NewOrchestrator(Extractors{}).Extract(models.SectionMap{}, "Lisinopril 10 mg daily")
	assert.Empty(t, got.Data.Meds)
}

func TestOrchestratorSurvivesPanickingExtractor(t *testing.T) {
	o := NewOrchestrator(Extractors{
		Labs: func(string) []models.LabResult { panic("boom") },
	})
	got := o.Extract(models.SectionMap{}, "K 4.0")
	assert.Nil(t, got.Data.Labs)
	assert.Equal(t, []string{"labs extractor failed"}, got.Warnings)
}

func TestWithOverridesOnlyNonNil(t *testing.T) {
	custom := func(string) string { return "Dr. Override" }
	ex := DefaultExtractors().With(Extractors{Provider: custom})
	assert.Equal(t, "Dr. Override", ex.Provider("anything"))
	assert.NotNil(t, ex.Vitals)
	assert.NotNil(t, ex.Diagnoses)
}
