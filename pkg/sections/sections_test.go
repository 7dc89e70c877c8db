package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

func TestScoreMatchExact(t *testing.T) {
	s := DefaultScorer()

	m := s.ScoreMatch("HISTORY OF PRESENT ILLNESS:", "")
	assert.Equal(t, models.SectionSubjective, m.Canonical)
	assert.Equal(t, 1.0, m.Score)
	assert.Equal(t, "history of present illness", m.MatchedSynonym)

	m = s.ScoreMatch("past_medical-history", "")
	assert.Equal(t, models.SectionPMH, m.Canonical)
	assert.Equal(t, 1.0, m.Score)
}

func TestScoreMatchFuzzy(t *testing.T) {
	s := DefaultScorer()

	m := s.ScoreMatch("Assessments", "")
	require.True(t, m.Matched())
	assert.Equal(t, models.SectionAssessment, m.Canonical)
	assert.InDelta(t, 10.0/11.0, m.Score, 1e-9)
	assert.Equal(t, "assessment", m.MatchedSynonym)
}

func TestScoreMatchFuzzyTieKeepsFirst(t *testing.T) {
	s := NewScorer(map[models.SectionKey][]string{
		models.SectionSubjective: {"abcd"},
		models.SectionPlan:       {"bcde"},
	}, map[models.SectionKey][]string{})

	m := s.ScoreMatch("abcde", "")
	assert.Equal(t, models.SectionSubjective, m.Canonical)
	assert.InDelta(t, 0.8, m.Score, 1e-9)
}

func TestScoreMatchSignalTier(t *testing.T) {
	s := DefaultScorer()

	m := s.ScoreMatch("zzz", "Troponin elevated, creatinine 1.2, potassium 4.1")
	assert.Equal(t, models.SectionLabs, m.Canonical)
	assert.InDelta(t, 0.75, m.Score, 1e-9)
	assert.Empty(t, m.MatchedSynonym)

	// one hit is not enough
	m = s.ScoreMatch("zzz", "troponin pending")
	assert.False(t, m.Matched())
	assert.Zero(t, m.Score)
}

func TestSignalScoreCapped(t *testing.T) {
	assert.InDelta(t, 0.7, signalScore(2), 1e-9)
	assert.InDelta(t, 0.8, signalScore(4), 1e-9)
	assert.InDelta(t, 0.8, signalScore(9), 1e-9)
}

func TestScoreMatchNoMatch(t *testing.T) {
	m := DefaultScorer().ScoreMatch("", "")
	assert.Equal(t, models.MatchResult{}, m)
}

func TestDetectHeaders(t *testing.T) {
	text := "65 yo M here today\n" +
		"HPI:\nChest pain for two days.\n\n" +
		"PHYSICAL EXAM\nLungs clear.\n" +
		"Assessment: NSTEMI\n" +
		"Plan: Heparin drip\nCardiology consult"

	det := DetectSections(text)
	assert.Equal(t, DetectionHeaders, det.Strategy)
	assert.Empty(t, det.Warnings)
	assert.Equal(t, 4, det.HeaderCount)
	assert.Equal(t, "65 yo M here today\n\nChest pain for two days.", det.Sections[models.SectionSubjective])
	assert.Equal(t, "Lungs clear.", det.Sections[models.SectionObjective])
	assert.Equal(t, "NSTEMI", det.Sections[models.SectionAssessment])
	assert.Equal(t, "Heparin drip\nCardiology consult", det.Sections[models.SectionPlan])
}

func TestDetectAppendsRepeatedHeader(t *testing.T) {
	text := "Plan:\nStart aspirin\nAssessment:\nCAD\nPlan:\nRepeat echo"

	det := DetectSections(text)
	assert.Equal(t, "Start aspirin\n\nRepeat echo", det.Sections[models.SectionPlan])
}

func TestDetectRejectsLowScoreCandidates(t *testing.T) {
	text := "Assessment: CHF\nBP: 120/80 HR: 72\nPlan: diurese"

	det := DetectSections(text)
	assert.Equal(t, "CHF\nBP: 120/80 HR: 72", det.Sections[models.SectionAssessment])
	for key := range det.Sections {
		assert.Contains(t, models.CanonicalSections, key)
	}
}

func TestDetectFallbackWarning(t *testing.T) {
	det := DetectSections("Plan:\nfollow up in clinic")
	assert.Equal(t, DetectionFallback, det.Strategy)
	assert.Contains(t, det.Warnings, FallbackWarning)
}

func TestDetectSignalAndLayoutFallback(t *testing.T) {
	text := "Patient presents with chest pain and denies fever.\n\n" +
		"- metoprolol 25 mg\n- lisinopril 10 mg\n\n" +
		"BP 150/90, HR 88\n\n" +
		"Findings consistent with unstable angina, likely demand ischemia."

	det := DetectSections(text)
	assert.Equal(t, DetectionFallback, det.Strategy)
	assert.Equal(t, []string{FallbackWarning}, det.Warnings)

	assert.Contains(t, det.Sections[models.SectionMedications], "metoprolol 25 mg")
	assert.Equal(t, "BP 150/90, HR 88", det.Sections[models.SectionObjective])
	assert.Contains(t, det.Sections[models.SectionAssessment], "unstable angina")
	// the header pass already holds the whole text under subjective
	assert.Contains(t, det.Sections[models.SectionSubjective], "presents with chest pain")
}

func TestLayoutNeverOverwritesSignalPass(t *testing.T) {
	ev := &Evidence{}
	ev.Add(models.SectionPlan, "will follow up and continue meds", StrategySignals)
	layoutPass([]string{"- walk daily\n- low salt diet"}, ev)

	assert.Equal(t, "will follow up and continue meds", ev.Merge()[models.SectionPlan])
}

func TestClassifyLayout(t *testing.T) {
	assert.Equal(t, models.SectionMedications, ClassifyLayout("- aspirin 81 mg\n- atorvastatin 40 mg\nother"))
	assert.Equal(t, models.SectionPlan, ClassifyLayout("1. cath lab\n2. echo"))
	assert.Equal(t, models.SectionObjective, ClassifyLayout("blood pressure 130/70"))
	assert.Equal(t, models.SectionAssessment, ClassifyLayout("Impression is reassuring"))
	assert.Equal(t, models.SectionKey(""), ClassifyLayout("nothing here"))
	assert.Equal(t, models.SectionKey(""), ClassifyLayout("  \n "))
}

func TestHeaderCandidate(t *testing.T) {
	cases := []struct {
		line   string
		label  string
		inline string
		ok     bool
	}{
		{"Medications:", "Medications", "", true},
		{"ALLERGIES", "ALLERGIES", "", true},
		{"Chief Complaint: chest pain", "Chief Complaint", "chest pain", true},
		{"the patient said: fine", "", "", false},
		{"", "", "", false},
		{"This line is far too long to be considered a header at all:", "", "", false},
	}
	for _, tc := range cases {
		label, inline, ok := headerCandidate(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.label, label, tc.line)
		assert.Equal(t, tc.inline, inline, tc.line)
	}
}

func TestEvidenceMergeSkipsDuplicates(t *testing.T) {
	ev := &Evidence{}
	ev.Add(models.SectionSubjective, "a\n\nb", StrategyHeaders)
	ev.Add(models.SectionSubjective, "b", StrategySignals)
	ev.Add(models.SectionSubjective, "c", StrategySignals)
	ev.Add(models.SectionPlan, "  ", StrategyLayout)

	merged := ev.Merge()
	assert.Equal(t, "a\n\nb\n\nc", merged[models.SectionSubjective])
	_, ok := merged[models.SectionPlan]
	assert.False(t, ok)
	assert.True(t, ev.Has(models.SectionSubjective, StrategySignals))
	assert.False(t, ev.Has(models.SectionPlan, StrategyLayout))
}
