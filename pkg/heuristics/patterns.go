package heuristics

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/sections"
)

// SectionPattern is the header matcher for one canonical section.
type SectionPattern struct {
	Key     models.SectionKey
	Matcher *regexp.Regexp
	Custom  bool
}

// Patterns is an ordered matcher set; the first matching entry wins.
type Patterns []SectionPattern

// Match returns the section whose matcher accepts line and the end offset
// of the matched header text.
func (p Patterns) Match(line string) (models.SectionKey, int, bool) {
	for _, sp := range p {
		if loc := sp.Matcher.FindStringIndex(line); loc != nil {
			return sp.Key, loc[1], true
		}
	}
	return "", 0, false
}

// compileAliases escapes every alias and joins them into one
// case-insensitive starts-with matcher. Blank aliases are dropped; ok is
// false when none remain.
func compileAliases(aliases []string) (pattern string, kept []string, ok bool) {
	var quoted []string
	for _, a := range aliases {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		kept = append(kept, a)
		quoted = append(quoted, regexp.QuoteMeta(a))
	}
	if len(kept) == 0 {
		return "", nil, false
	}
	return `(?i)^(?:` + strings.Join(quoted, "|") + `)`, kept, true
}

var defaultPatterns = buildDefaultPatterns()

// DefaultPatterns are the built-in header matchers, one per canonical
// section, derived from the synonym table. A synonym must be followed by a
// colon or the end of the line.
func DefaultPatterns() Patterns {
	return append(Patterns(nil), defaultPatterns...)
}

func buildDefaultPatterns() Patterns {
	var out Patterns
	for _, key := range models.CanonicalSections {
		syns := append([]string(nil), sections.Synonyms[key]...)
		if len(syns) == 0 {
			continue
		}
		sort.SliceStable(syns, func(i, j int) bool { return len(syns[i]) > len(syns[j]) })
		quoted := make([]string, len(syns))
		for i, s := range syns {
			quoted[i] = regexp.QuoteMeta(s)
		}
		re := regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(quoted, "|") + `)\s*(?::|$)`)
		out = append(out, SectionPattern{Key: key, Matcher: re})
	}
	return out
}
