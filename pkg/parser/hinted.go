package parser

import (
	"context"
	"strings"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/heuristics"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/normalizer"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/sections"
)

const headerTrailer = ":- \t"

// coreSections decide whether a trained segmentation found anything useful.
var coreSections = []models.SectionKey{
	models.SectionSubjective,
	models.SectionAssessment,
	models.SectionPlan,
}

type segmentation struct {
	sections models.SectionMap
	aliases  map[models.SectionKey]string
	opened   map[models.SectionKey]bool
}

// segment walks lines against patterns. A header line commits the open
// section; text after the header becomes the first line of the new one.
// Lines before any header go to subjective but do not count as opened.
func segment(text string, patterns heuristics.Patterns) segmentation {
	ev := &sections.Evidence{}
	seg := segmentation{
		aliases: make(map[models.SectionKey]string),
		opened:  make(map[models.SectionKey]bool),
	}

	current := models.SectionSubjective
	headed := false
	var buf []string

	commit := func() {
		body := strings.TrimSpace(strings.Join(buf, "\n"))
		if body != "" {
			ev.Add(current, body, sections.StrategyTrained)
			if headed {
				seg.opened[current] = true
			}
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		key, end, ok := patterns.Match(line)
		if !ok {
			buf = append(buf, line)
			continue
		}
		commit()
		current, headed = key, true
		if _, seen := seg.aliases[key]; !seen {
			seg.aliases[key] = line
		}
		if rest := strings.TrimSpace(strings.TrimLeft(line[end:], headerTrailer)); rest != "" {
			buf = append(buf, rest)
		}
	}
	commit()

	seg.sections = ev.Merge()
	return seg
}

func (p *Parser) hinted(ctx context.Context, text string, patterns heuristics.Patterns, label string) (models.ParsedRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.ParsedRecord{}, err
	}
	norm := normalizer.Normalize(text)
	if norm == "" {
		return EmptyRecord(), nil
	}

	seg := segment(norm, patterns)
	useful := false
	for _, key := range coreSections {
		if seg.opened[key] {
			useful = true
			break
		}
	}
	if !useful {
		return p.ParseContext(ctx, text)
	}

	if err := ctx.Err(); err != nil {
		return models.ParsedRecord{}, err
	}
	ext := p.orchestrator.Extract(seg.sections, norm)

	if err := ctx.Err(); err != nil {
		return models.ParsedRecord{}, err
	}
	raw := models.RawSections{
		Strategy:       sections.StrategyTrained,
		Format:         label,
		MatchedAliases: seg.aliases,
	}
	return finish(seg.sections, nil, ext, raw), nil
}
