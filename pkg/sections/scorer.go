package sections

import (
	"math"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

const (
	exactScore      = 1.0
	signalBaseScore = 0.6
	signalStep      = 0.05
	signalMaxScore  = 0.8
	minSignalHits   = 2
)

type synonymEntry struct {
	key     models.SectionKey
	synonym string
}

// Scorer maps header text (and optionally body text) onto a canonical
// section. It is immutable after construction and safe for concurrent use.
type Scorer struct {
	reverse map[string]models.SectionKey
	ordered []synonymEntry
	signals []signalMatcher
}

// NewScorer builds a scorer over the given tables; nil tables fall back to
// the package defaults.
func NewScorer(synonyms, signals map[models.SectionKey][]string) *Scorer {
	if synonyms == nil {
		synonyms = Synonyms
	}
	if signals == nil {
		signals = SignalPhrases
	}

	s := &Scorer{reverse: make(map[string]models.SectionKey)}
	for _, key := range models.CanonicalSections {
		for _, syn := range synonyms[key] {
			norm := normalizeHeader(syn)
			if norm == "" {
				continue
			}
			if _, exists := s.reverse[norm]; !exists {
				s.reverse[norm] = key
			}
			s.ordered = append(s.ordered, synonymEntry{key: key, synonym: norm})
		}
	}
	s.signals = compileSignals(signals)
	return s
}

var defaultScorer = NewScorer(nil, nil)

// DefaultScorer returns the scorer built from the package tables.
func DefaultScorer() *Scorer {
	return defaultScorer
}

// ScoreMatch runs the exact, fuzzy-substring and content-signal tiers in
// order and returns the first that produces a candidate.
func (s *Scorer) ScoreMatch(header string, body string) models.MatchResult {
	norm := normalizeHeader(header)

	if norm != "" {
		if key, ok := s.reverse[norm]; ok {
			return models.MatchResult{Canonical: key, Score: exactScore, MatchedSynonym: norm}
		}
		if best, ok := s.fuzzy(norm); ok {
			return best
		}
	}

	if body != "" {
		if key, hits := s.BestSignal(body); key != "" {
			return models.MatchResult{Canonical: key, Score: signalScore(hits)}
		}
	}

	return models.MatchResult{}
}

// fuzzy returns the synonym with the highest length ratio among those
// where one string contains the other. Ties keep the earlier synonym.
func (s *Scorer) fuzzy(norm string) (models.MatchResult, bool) {
	var best models.MatchResult
	found := false
	for _, entry := range s.ordered {
		if !containsEither(norm, entry.synonym) {
			continue
		}
		ratio := lengthRatio(norm, entry.synonym)
		if ratio > best.Score {
			best = models.MatchResult{Canonical: entry.key, Score: ratio, MatchedSynonym: entry.synonym}
			found = true
		}
	}
	return best, found
}

// SignalHits counts distinct signal phrases per section present in text.
func (s *Scorer) SignalHits(text string) map[models.SectionKey]int {
	hits := make(map[models.SectionKey]int)
	for _, m := range s.signals {
		n := 0
		for _, re := range m.patterns {
			if re.MatchString(text) {
				n++
			}
		}
		if n > 0 {
			hits[m.key] = n
		}
	}
	return hits
}

// BestSignal returns the section with the highest signal score, requiring
// at least minSignalHits. Ties keep the earlier canonical key.
func (s *Scorer) BestSignal(text string) (models.SectionKey, int) {
	hits := s.SignalHits(text)
	var bestKey models.SectionKey
	bestHits := 0
	bestScore := 0.0
	for _, m := range s.signals {
		n := hits[m.key]
		if n < minSignalHits {
			continue
		}
		if score := signalScore(n); score > bestScore {
			bestKey, bestHits, bestScore = m.key, n, score
		}
	}
	return bestKey, bestHits
}

func signalScore(hits int) float64 {
	return math.Min(signalBaseScore+signalStep*float64(hits), signalMaxScore)
}

func containsEither(a, b string) bool {
	return len(a) > 0 && len(b) > 0 && (strings.Contains(a, b) || strings.Contains(b, a))
}

func lengthRatio(a, b string) float64 {
	la, lb := float64(len(a)), float64(len(b))
	return math.Min(la, lb) / math.Max(la, lb)
}
