// Package dlp redacts patient identifiers from note text before it is
// stored or published.
package dlp

import (
	"regexp"
	"sort"
)

// Finding locates one identifier in the original text.
type Finding struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
}

// Result summarises a scan.
type Result struct {
	Detected   bool      `json:"detected"`
	Confidence float64   `json:"confidence"`
	Types      []string  `json:"types,omitempty"`
	Findings   []Finding `json:"findings,omitempty"`
}

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

type Detector struct {
	rules []compiledRule
}

func NewDetector(cfg RulesConfig) (*Detector, error) {
	var compiled []compiledRule
	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{rule: rule, re: re})
	}
	return &Detector{rules: compiled}, nil
}

// Detect reports every rule match in text, ordered by position.
func (d *Detector) Detect(text string) Result {
	if d == nil || text == "" {
		return Result{}
	}

	var findings []Finding
	types := make(map[string]struct{})
	for _, cr := range d.rules {
		for _, m := range cr.re.FindAllStringIndex(text, -1) {
			findings = append(findings, Finding{Start: m[0], End: m[1], Type: cr.rule.Type})
			types[cr.rule.Type] = struct{}{}
		}
	}
	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Start < findings[j].Start })

	typeList := make([]string, 0, len(types))
	for t := range types {
		typeList = append(typeList, t)
	}
	sort.Strings(typeList)

	return Result{
		Detected:   len(findings) > 0,
		Confidence: confidenceScore(len(findings)),
		Types:      typeList,
		Findings:   findings,
	}
}

// Redact applies every rule's mask in rule order. A nil detector returns
// text unchanged.
func (d *Detector) Redact(text string) string {
	if d == nil {
		return text
	}
	for _, cr := range d.rules {
		text = cr.re.ReplaceAllString(text, cr.rule.Mask)
	}
	return text
}

func confidenceScore(count int) float64 {
	switch {
	case count == 0:
		return 0
	case count == 1:
		return 0.7
	case count == 2:
		return 0.85
	default:
		return 0.95
	}
}
