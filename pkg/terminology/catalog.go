package terminology

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Concept struct {
	Display string   `yaml:"display" json:"display"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
	SNOMED  string   `yaml:"snomed" json:"snomed,omitempty"`
	ICD10   string   `yaml:"icd10" json:"icd10,omitempty"`
}

// Terms returns the display name followed by every alias.
func (c Concept) Terms() []string {
	return append([]string{c.Display}, c.Aliases...)
}

type Catalog struct {
	Concepts map[string]Concept `yaml:"concepts" json:"concepts"`

	matchers []conceptMatcher
}

type conceptMatcher struct {
	key string
	re  *regexp.Regexp
}

// Match is one catalog concept found in free text.
type Match struct {
	Key     string
	Concept Concept
	Term    string
	Start   int
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Concepts) == 0 {
		return Catalog{}, fmt.Errorf("terminology catalog empty")
	}
	return cat.compile(), nil
}

func (c Catalog) Lookup(key string) (Concept, bool) {
	if c.Concepts == nil {
		return Concept{}, false
	}
	concept, ok := c.Concepts[strings.ToLower(key)]
	if ok {
		return concept, true
	}
	for _, k := range c.keys() {
		v := c.Concepts[k]
		if strings.EqualFold(k, key) || strings.EqualFold(v.Display, key) {
			return v, true
		}
		for _, alias := range v.Aliases {
			if strings.EqualFold(alias, key) {
				return v, true
			}
		}
	}
	return Concept{}, false
}

// Match finds every concept whose display name or alias occurs in text as a
// whole word, ordered by position. Each concept is reported once.
func (c Catalog) Match(text string) []Match {
	if text == "" {
		return nil
	}
	matchers := c.matchers
	if matchers == nil {
		matchers = c.compile().matchers
	}

	var out []Match
	for _, m := range matchers {
		loc := m.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		out = append(out, Match{
			Key:     m.key,
			Concept: c.Concepts[m.key],
			Term:    text[loc[0]:loc[1]],
			Start:   loc[0],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

func (c Catalog) compile() Catalog {
	c.matchers = nil
	for _, key := range c.keys() {
		var alts []string
		for _, term := range c.Concepts[key].Terms() {
			if term = strings.TrimSpace(term); term != "" {
				alts = append(alts, regexp.QuoteMeta(term))
			}
		}
		if len(alts) == 0 {
			continue
		}
		// longest alternatives first so the most specific term is reported
		sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
		re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
		c.matchers = append(c.matchers, conceptMatcher{key: key, re: re})
	}
	return c
}

func (c Catalog) keys() []string {
	keys := make([]string, 0, len(c.Concepts))
	for k := range c.Concepts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var defaultCatalog = Catalog{Concepts: map[string]Concept{
	"stemi": {
		Display: "STEMI",
		Aliases: []string{"ST elevation myocardial infarction", "ST-elevation myocardial infarction", "ST elevation MI"},
		SNOMED:  "401303003",
		ICD10:   "I21.3",
	},
	"nstemi": {
		Display: "NSTEMI",
		Aliases: []string{"non-ST elevation myocardial infarction", "non ST elevation MI"},
		SNOMED:  "401314000",
		ICD10:   "I21.4",
	},
	"acs": {
		Display: "Acute coronary syndrome",
		Aliases: []string{"ACS", "unstable angina"},
		SNOMED:  "394659003",
		ICD10:   "I24.9",
	},
	"atrial-fibrillation": {
		Display: "Atrial fibrillation",
		Aliases: []string{"afib", "a-fib", "AF", "a fib"},
		SNOMED:  "49436004",
		ICD10:   "I48.91",
	},
	"heart-failure": {
		Display: "Heart failure",
		Aliases: []string{"CHF", "congestive heart failure", "HFrEF", "HFpEF", "systolic heart failure", "diastolic heart failure"},
		SNOMED:  "84114007",
		ICD10:   "I50.9",
	},
	"hypertension": {
		Display: "Hypertension",
		Aliases: []string{"HTN", "high blood pressure", "essential hypertension"},
		SNOMED:  "38341003",
		ICD10:   "I10",
	},
	"hypertrophic-cardiomyopathy": {
		Display: "Hypertrophic cardiomyopathy",
		Aliases: []string{"HCM", "HOCM"},
		SNOMED:  "233873004",
		ICD10:   "I42.2",
	},
	"pericarditis": {
		Display: "Pericarditis",
		Aliases: []string{"acute pericarditis"},
		SNOMED:  "3238004",
		ICD10:   "I30.9",
	},
	"syncope": {
		Display: "Syncope",
		Aliases: []string{"syncopal episode", "fainting"},
		SNOMED:  "271594007",
		ICD10:   "R55",
	},
	"peripheral-arterial-disease": {
		Display: "Peripheral arterial disease",
		Aliases: []string{"PAD", "peripheral artery disease", "peripheral vascular disease", "PVD"},
		SNOMED:  "399957001",
		ICD10:   "I73.9",
	},
	"coronary-artery-disease": {
		Display: "Coronary artery disease",
		Aliases: []string{"CAD", "ischemic heart disease"},
		SNOMED:  "53741008",
		ICD10:   "I25.10",
	},
	"hyperlipidemia": {
		Display: "Hyperlipidemia",
		Aliases: []string{"HLD", "dyslipidemia", "hypercholesterolemia"},
		SNOMED:  "55822004",
		ICD10:   "E78.5",
	},
	"type-2-diabetes": {
		Display: "Type 2 diabetes mellitus",
		Aliases: []string{"T2DM", "DM2", "diabetes mellitus", "diabetes"},
		SNOMED:  "44054006",
		ICD10:   "E11.9",
	},
	"pulmonary-embolism": {
		Display: "Pulmonary embolism",
		Aliases: []string{"pulmonary embolus"},
		SNOMED:  "59282003",
		ICD10:   "I26.99",
	},
	"aortic-stenosis": {
		Display: "Aortic stenosis",
		Aliases: []string{"aortic valve stenosis"},
		SNOMED:  "60573004",
		ICD10:   "I35.0",
	},
	"chronic-kidney-disease": {
		Display: "Chronic kidney disease",
		Aliases: []string{"CKD"},
		SNOMED:  "709044004",
		ICD10:   "N18.9",
	},
	"bradycardia": {
		Display: "Bradycardia",
		Aliases: []string{"sinus bradycardia"},
		SNOMED:  "48867003",
		ICD10:   "R00.1",
	},
}}.compile()

// DefaultCatalog returns the compiled-in cardiology vocabulary.
func DefaultCatalog() Catalog {
	return defaultCatalog
}
