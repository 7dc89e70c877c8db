package sections

import (
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

const (
	StrategyHeaders = "headers"
	StrategySignals = "signals"
	StrategyLayout  = "layout"
	StrategyTrained = "trained"
)

// Fragment is one piece of text attributed to a section by one strategy.
type Fragment struct {
	Key      models.SectionKey `json:"key"`
	Text     string            `json:"text"`
	Strategy string            `json:"strategy"`
}

// Evidence is the ordered list of fragments collected across strategies.
// Fragments are only ever added; Merge produces the section map.
type Evidence struct {
	fragments []Fragment
}

func (e *Evidence) Add(key models.SectionKey, text, strategy string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	e.fragments = append(e.fragments, Fragment{Key: key, Text: text, Strategy: strategy})
}

// Populated reports which keys hold at least one fragment.
func (e *Evidence) Populated() map[models.SectionKey]bool {
	out := make(map[models.SectionKey]bool)
	for _, f := range e.fragments {
		out[f.Key] = true
	}
	return out
}

// Has reports whether any fragment for key came from one of strategies.
func (e *Evidence) Has(key models.SectionKey, strategies ...string) bool {
	for _, f := range e.fragments {
		if f.Key != key {
			continue
		}
		for _, s := range strategies {
			if f.Strategy == s {
				return true
			}
		}
	}
	return false
}

func (e *Evidence) Fragments() []Fragment {
	return append([]Fragment(nil), e.fragments...)
}

// Merge appends fragments per key in insertion order, skipping a fragment
// whose text the key already contains.
func (e *Evidence) Merge() models.SectionMap {
	out := make(models.SectionMap)
	for _, f := range e.fragments {
		existing := out[f.Key]
		switch {
		case existing == "":
			out[f.Key] = f.Text
		case strings.Contains(existing, f.Text):
		default:
			out[f.Key] = existing + "\n\n" + f.Text
		}
	}
	return out
}
