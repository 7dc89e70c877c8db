package evidence

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Protocol is the management guidance for one condition.
type Protocol struct {
	Name              string   `yaml:"name" json:"name"`
	Keywords          []string `yaml:"keywords" json:"keywords"`
	Actions           []string `yaml:"actions" json:"actions"`
	Contraindications []string `yaml:"contraindications" json:"contraindications"`
	Monitoring        []string `yaml:"monitoring" json:"monitoring"`
}

// ProtocolTable is keyed by condition id.
type ProtocolTable struct {
	Protocols map[string]Protocol `yaml:"protocols" json:"protocols"`
}

func LoadProtocols(path string) (ProtocolTable, error) {
	if path == "" {
		return DefaultProtocols(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultProtocols(), err
	}

	var table ProtocolTable
	if err := yaml.Unmarshal(content, &table); err != nil {
		return ProtocolTable{}, err
	}

	if len(table.Protocols) == 0 {
		return ProtocolTable{}, errors.New("no guideline protocols configured")
	}

	return table, nil
}

func DefaultProtocols() ProtocolTable {
	return ProtocolTable{Protocols: map[string]Protocol{
		"stemi": {
			Name:     "STEMI / Acute Coronary Syndrome",
			Keywords: []string{"stemi", "myocardial infarction", "acute coronary syndrome", "acs", "unstable angina"},
			Actions: []string{
				"Aspirin 325 mg chewed, then 81 mg daily",
				"P2Y12 inhibitor loading dose (ticagrelor 180 mg or clopidogrel 600 mg)",
				"Anticoagulation with unfractionated heparin",
				"High-intensity statin (atorvastatin 80 mg)",
				"Urgent cardiology consult for coronary angiography",
			},
			Contraindications: []string{
				"active bleeding", "recent surgery", "hemorrhagic stroke", "severe hypertension",
				"thrombocytopenia", "bleeding risk",
			},
			Monitoring: []string{"Continuous telemetry", "Serial troponin and ECG", "CBC and BMP daily"},
		},
		"atrial_fibrillation": {
			Name:     "Atrial fibrillation",
			Keywords: []string{"atrial fibrillation", "afib", "a-fib", "atrial flutter"},
			Actions: []string{
				"Rate control with beta blocker (metoprolol)",
				"Assess stroke risk with CHA2DS2-VASc",
				"Anticoagulation with DOAC when CHA2DS2-VASc indicates",
			},
			Contraindications: []string{"active bleeding", "bradycardia", "hypotension", "severe renal dysfunction"},
			Monitoring:        []string{"Heart rate and rhythm", "Renal function for DOAC dosing"},
		},
		"heart_failure": {
			Name:     "Heart failure",
			Keywords: []string{"heart failure", "chf", "hfref", "hfpef", "cardiomyopathy"},
			Actions: []string{
				"Loop diuretic for volume overload",
				"ACE inhibitor, ARB or ARNI",
				"Evidence-based beta blocker",
				"Mineralocorticoid receptor antagonist",
				"SGLT2 inhibitor",
			},
			Contraindications: []string{"hyperkalemia", "severe renal dysfunction", "hypotension", "bradycardia"},
			Monitoring:        []string{"Daily weights and strict I/O", "Potassium and creatinine"},
		},
		"hypertension": {
			Name:     "Hypertension",
			Keywords: []string{"hypertension", "htn", "hypertensive"},
			Actions: []string{
				"Lifestyle modification and sodium restriction",
				"First-line agent: thiazide, ACE inhibitor, ARB or calcium channel blocker",
			},
			Contraindications: []string{"hyperkalemia", "severe renal dysfunction", "pregnancy"},
			Monitoring:        []string{"Home blood pressure log", "BMP after ACE inhibitor or ARB start"},
		},
		"bradycardia": {
			Name:              "Symptomatic bradycardia",
			Keywords:          []string{"bradycardia", "heart block", "sick sinus"},
			Actions:           []string{"Atropine 1 mg IV", "Transcutaneous pacing if unstable", "Hold AV nodal blocking agents"},
			Contraindications: []string{"tachycardia"},
			Monitoring:        []string{"Continuous telemetry"},
		},
	}}
}
