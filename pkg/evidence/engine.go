// Package evidence turns parsed diagnoses into guideline management blocks
// and flags actions whose contraindications show up in the record.
package evidence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

// CheckMarker prefixes every action of a protocol with a detected
// contraindication.
const CheckMarker = "[CHECK CONTRAINDICATIONS]"

// Action is one recommended step.
type Action struct {
	Text    string `json:"text"`
	Flagged bool   `json:"flagged"`
}

// Block is the guidance emitted for one protocol.
type Block struct {
	Condition         string   `json:"condition"`
	Name              string   `json:"name"`
	Diagnosis         string   `json:"diagnosis"`
	Actions           []Action `json:"actions"`
	Monitoring        []string `json:"monitoring,omitempty"`
	Contraindications []string `json:"contraindications,omitempty"`
}

type Plan struct {
	Blocks []Block `json:"blocks"`
}

type structuredCheck struct {
	terms  []string
	severe bool
	detect func(d models.NoteData) (string, bool)
}

var structuredChecks = []structuredCheck{
	{terms: []string{"hyperkalemia"}, detect: labAbove("potassium", 5.5)},
	{terms: []string{"thrombocytopenia"}, detect: labBelow("platelets", 50)},
	{terms: []string{"renal"}, detect: labAbove("creatinine", 3.0)},
	{terms: []string{"bleeding"}, detect: labBelow("hemoglobin", 7)},
	{terms: []string{"hypotension"}, detect: func(d models.NoteData) (string, bool) {
		if d.Vitals != nil && d.Vitals.Systolic > 0 && d.Vitals.Systolic < 90 {
			return fmt.Sprintf("SBP %d", d.Vitals.Systolic), true
		}
		return "", false
	}},
	{terms: []string{"hypertension"}, severe: true, detect: func(d models.NoteData) (string, bool) {
		if d.Vitals != nil && (d.Vitals.Systolic > 180 || d.Vitals.Diastolic > 110) {
			return "BP " + d.Vitals.BP, true
		}
		return "", false
	}},
	{terms: []string{"bradycardia"}, detect: func(d models.NoteData) (string, bool) {
		if d.Vitals != nil && d.Vitals.HR > 0 && d.Vitals.HR < 50 {
			return fmt.Sprintf("HR %d", d.Vitals.HR), true
		}
		return "", false
	}},
	{terms: []string{"tachycardia"}, detect: func(d models.NoteData) (string, bool) {
		if d.Vitals != nil && d.Vitals.HR > 120 {
			return fmt.Sprintf("HR %d", d.Vitals.HR), true
		}
		return "", false
	}},
}

func labAbove(name string, limit float64) func(models.NoteData) (string, bool) {
	return func(d models.NoteData) (string, bool) {
		if lab, ok := d.Lab(name); ok && lab.Value > limit {
			return fmt.Sprintf("%s %g", name, lab.Value), true
		}
		return "", false
	}
}

func labBelow(name string, limit float64) func(models.NoteData) (string, bool) {
	return func(d models.NoteData) (string, bool) {
		if lab, ok := d.Lab(name); ok && lab.Value < limit {
			return fmt.Sprintf("%s %g", name, lab.Value), true
		}
		return "", false
	}
}

// Engine evaluates records against a read-only protocol table.
type Engine struct {
	ids       []string
	protocols map[string]Protocol
}

func NewEngine(table ProtocolTable) *Engine {
	e := &Engine{protocols: make(map[string]Protocol, len(table.Protocols))}
	for id, p := range table.Protocols {
		e.protocols[id] = p
		e.ids = append(e.ids, id)
	}
	sort.Strings(e.ids)
	return e
}

func DefaultEngine() *Engine {
	return NewEngine(DefaultProtocols())
}

// Evaluate returns nil when the record has no diagnoses or none match a
// protocol. A diagnosis matching several protocols yields several blocks.
func (e *Engine) Evaluate(record models.ParsedRecord) *Plan {
	data := record.Data
	if len(data.Diagnoses) == 0 {
		return nil
	}

	var plan Plan
	for _, id := range e.ids {
		p := e.protocols[id]
		dx, ok := matchDiagnosis(p, data.Diagnoses)
		if !ok {
			continue
		}

		found := detectContraindications(p, data)
		block := Block{
			Condition:         id,
			Name:              p.Name,
			Diagnosis:         dx,
			Monitoring:        append([]string(nil), p.Monitoring...),
			Contraindications: found,
		}
		for _, a := range p.Actions {
			block.Actions = append(block.Actions, Action{Text: a, Flagged: len(found) > 0})
		}
		plan.Blocks = append(plan.Blocks, block)
	}

	if len(plan.Blocks) == 0 {
		return nil
	}
	return &plan
}

func matchDiagnosis(p Protocol, diagnoses []string) (string, bool) {
	for _, dx := range diagnoses {
		lower := strings.ToLower(dx)
		for _, kw := range p.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(lower, kw) {
				return dx, true
			}
		}
	}
	return "", false
}

func detectContraindications(p Protocol, data models.NoteData) []string {
	pmh := strings.ToLower(data.PMH)
	social := strings.ToLower(data.SocialHistory)

	var found []string
	for _, c := range p.Contraindications {
		term := strings.ToLower(strings.TrimSpace(c))
		if term == "" {
			continue
		}
		switch {
		case pmh != "" && strings.Contains(pmh, term):
			found = append(found, c+" (in PMH)")
			continue
		case social != "" && strings.Contains(social, term):
			found = append(found, c+" (in social history)")
			continue
		}
		for _, check := range structuredChecks {
			if !check.applies(term) {
				continue
			}
			if detail, hit := check.detect(data); hit {
				found = append(found, fmt.Sprintf("%s (%s)", c, detail))
				break
			}
		}
	}
	return found
}

func (c structuredCheck) applies(term string) bool {
	if c.severe && !strings.Contains(term, "severe") {
		return false
	}
	for _, t := range c.terms {
		if strings.Contains(term, t) {
			return true
		}
	}
	return false
}

// Text renders the plan as the plain-text block shown to clinicians.
func (p *Plan) Text() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for i, block := range p.Blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (matched: %s)\n", block.Name, block.Diagnosis)
		for _, a := range block.Actions {
			if a.Flagged {
				fmt.Fprintf(&b, "- %s %s\n", CheckMarker, a.Text)
			} else {
				fmt.Fprintf(&b, "- %s\n", a.Text)
			}
		}
		if len(block.Contraindications) > 0 {
			b.WriteString("Contraindications detected:\n")
			for _, c := range block.Contraindications {
				fmt.Fprintf(&b, "  * %s\n", c)
			}
		}
		if len(block.Monitoring) > 0 {
			fmt.Fprintf(&b, "Monitoring: %s\n", strings.Join(block.Monitoring, "; "))
		}
	}
	return b.String()
}
