package sections

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

const (
	FallbackWarning = "Few explicit headers found; using fallback strategies"

	maxHeaderLength    = 50
	minHeaderScore     = 0.6
	minDistinctHeaders = 2
	capsRatio          = 0.8
)

const (
	DetectionHeaders  = "headers"
	DetectionFallback = "fallback"
)

var (
	titleColonRegex = regexp.MustCompile(`^([A-Z][A-Za-z/&]*(?:[ \t]+[A-Za-z/&()]+){0,4})[ \t]*:[ \t]*(.*)$`)
	paragraphRegex  = regexp.MustCompile(`\n\s*\n`)
)

// Detection is the result of segmenting one note.
type Detection struct {
	Sections    models.SectionMap
	Warnings    []string
	Strategy    string
	HeaderCount int
	Fragments   []Fragment
}

// Sources lists, per section, the strategies that contributed text in the
// order they did.
func (d Detection) Sources() map[models.SectionKey][]string {
	out := make(map[models.SectionKey][]string)
	for _, f := range d.Fragments {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		seen := false
		for _, s := range out[f.Key] {
			if s == f.Strategy {
				seen = true
				break
			}
		}
		if !seen {
			out[f.Key] = append(out[f.Key], f.Strategy)
		}
	}
	return out
}

// Detector segments normalized note text into canonical sections.
type Detector struct {
	scorer *Scorer
}

func NewDetector(scorer *Scorer) *Detector {
	if scorer == nil {
		scorer = DefaultScorer()
	}
	return &Detector{scorer: scorer}
}

var defaultDetector = NewDetector(nil)

// DetectSections segments text with the default synonym and signal tables.
func DetectSections(text string) Detection {
	return defaultDetector.Detect(text)
}

// Detect runs the header strategy and, when it finds fewer than two
// distinct sections, supplements it with the signal-word and layout passes.
func (d *Detector) Detect(text string) Detection {
	if strings.TrimSpace(text) == "" {
		return Detection{Sections: models.SectionMap{}, Strategy: DetectionHeaders}
	}

	ev := &Evidence{}
	found := d.headerPass(text, ev)

	det := Detection{Strategy: DetectionHeaders, HeaderCount: len(found)}
	if len(found) < minDistinctHeaders {
		det.Strategy = DetectionFallback
		det.Warnings = append(det.Warnings, FallbackWarning)

		paragraphs := splitParagraphs(text)
		d.signalPass(paragraphs, ev)
		layoutPass(paragraphs, ev)
	}

	det.Sections = ev.Merge()
	det.Fragments = ev.Fragments()
	return det
}

// headerPass walks lines, opening a section at every accepted header.
// Content before the first header lands in subjective.
func (d *Detector) headerPass(text string, ev *Evidence) map[models.SectionKey]bool {
	found := make(map[models.SectionKey]bool)
	current := models.SectionSubjective
	var buf []string

	commit := func() {
		ev.Add(current, strings.Join(buf, "\n"), StrategyHeaders)
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if label, inline, ok := headerCandidate(line); ok {
			if m := d.scorer.ScoreMatch(label, ""); m.Matched() && m.Score >= minHeaderScore {
				commit()
				current = m.Canonical
				found[current] = true
				if inline != "" {
					buf = append(buf, inline)
				}
				continue
			}
		}
		buf = append(buf, line)
	}
	commit()
	return found
}

func (d *Detector) signalPass(paragraphs []string, ev *Evidence) {
	for _, p := range paragraphs {
		if key, _ := d.scorer.BestSignal(p); key != "" {
			ev.Add(key, p, StrategySignals)
		}
	}
}

// layoutPass fills only keys still empty after the header and signal passes.
func layoutPass(paragraphs []string, ev *Evidence) {
	populated := ev.Populated()
	for _, p := range paragraphs {
		key := ClassifyLayout(p)
		if key == "" || populated[key] {
			continue
		}
		ev.Add(key, p, StrategyLayout)
	}
}

// headerCandidate reports whether line looks like a header and splits it
// into the label and any inline content following the colon.
func headerCandidate(line string) (label, inline string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	if len(line) < maxHeaderLength && strings.HasSuffix(line, ":") {
		return strings.TrimSuffix(line, ":"), "", true
	}
	if m := titleColonRegex.FindStringSubmatch(line); m != nil && len(m[1]) < maxHeaderLength {
		return m[1], strings.TrimSpace(m[2]), true
	}
	if len(line) < maxHeaderLength && isAllCaps(line) {
		return line, "", true
	}
	return "", "", false
}

func isAllCaps(s string) bool {
	letters, upper := 0, 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return letters >= 2 && float64(upper)/float64(letters) >= capsRatio
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphRegex.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
