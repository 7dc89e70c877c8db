package parser

import (
	"context"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/enrichment"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/extract"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/heuristics"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/normalizer"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/sections"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/validate"
)

// DefaultFallbackConfidence is the score below which ParseBest retries
// with every trained format.
const DefaultFallbackConfidence = 0.5

// Enricher is the optional post-processing collaborator.
type Enricher interface {
	Enrich(ctx context.Context, record models.ParsedRecord, text string) enrichment.Outcome
}

// Parser runs the note pipeline. It holds no per-call state and is safe
// for concurrent use.
type Parser struct {
	detector           *sections.Detector
	orchestrator       *extract.Orchestrator
	store              *heuristics.Store
	enricher           Enricher
	fallbackConfidence float64
}

type Option func(*Parser)

func WithExtractors(ex extract.Extractors) Option {
	return func(p *Parser) { p.orchestrator = extract.NewOrchestrator(ex) }
}

func WithDetector(d *sections.Detector) Option {
	return func(p *Parser) {
		if d != nil {
			p.detector = d
		}
	}
}

// WithStore enables trained-format parsing and the low-confidence retry.
func WithStore(s *heuristics.Store) Option {
	return func(p *Parser) { p.store = s }
}

func WithEnricher(e Enricher) Option {
	return func(p *Parser) { p.enricher = e }
}

func WithFallbackConfidence(v float64) Option {
	return func(p *Parser) {
		if v > 0 && v <= 1 {
			p.fallbackConfidence = v
		}
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{
		detector:           sections.NewDetector(nil),
		orchestrator:       extract.NewOrchestrator(extract.Extractors{}),
		fallbackConfidence: DefaultFallbackConfidence,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// ParseNote runs the generic pipeline with the built-in tables.
func ParseNote(text string) models.ParsedRecord {
	return defaultParser.Parse(text)
}

func ParseNoteContext(ctx context.Context, text string) (models.ParsedRecord, error) {
	return defaultParser.ParseContext(ctx, text)
}

// HintedParse segments text with the given header patterns instead of the
// generic detector.
func HintedParse(text string, patterns heuristics.Patterns, label string) models.ParsedRecord {
	rec, _ := defaultParser.hinted(context.Background(), text, patterns, label)
	return rec
}

func (p *Parser) Parse(text string) models.ParsedRecord {
	rec, _ := p.ParseContext(context.Background(), text)
	return rec
}

// ParseContext is Parse with ctx checked between stages. An abandoned
// context yields ctx.Err() and no record.
func (p *Parser) ParseContext(ctx context.Context, text string) (models.ParsedRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.ParsedRecord{}, err
	}
	norm := normalizer.Normalize(text)
	if norm == "" {
		return EmptyRecord(), nil
	}

	if err := ctx.Err(); err != nil {
		return models.ParsedRecord{}, err
	}
	det := p.detector.Detect(norm)

	if err := ctx.Err(); err != nil {
		return models.ParsedRecord{}, err
	}
	ext := p.orchestrator.Extract(det.Sections, norm)

	if err := ctx.Err(); err != nil {
		return models.ParsedRecord{}, err
	}
	raw := models.RawSections{Strategy: det.Strategy, HeaderCount: det.HeaderCount, Sources: det.Sources()}
	return finish(det.Sections, det.Warnings, ext, raw), nil
}

// HintedParse segments text with the patterns of the trained format label
// merged over the defaults.
func (p *Parser) HintedParse(ctx context.Context, text, label string) (models.ParsedRecord, error) {
	patterns := heuristics.DefaultPatterns()
	if p.store != nil {
		patterns, _ = p.store.CombinedPatterns(label)
	}
	return p.hinted(ctx, text, patterns, label)
}

// ParseBest parses with label when given, otherwise generically. When the
// score falls below the fallback threshold every trained format is tried in
// label order and the highest score wins; ties keep the earlier result.
func (p *Parser) ParseBest(ctx context.Context, text, label string) (models.ParsedRecord, error) {
	var (
		best models.ParsedRecord
		err  error
	)
	if label != "" {
		best, err = p.HintedParse(ctx, text, label)
	} else {
		best, err = p.ParseContext(ctx, text)
	}
	if err != nil || p.store == nil || best.Confidence >= p.fallbackConfidence || isEmptyInput(best) {
		return best, err
	}

	for _, candidate := range p.store.Labels() {
		if candidate == label {
			continue
		}
		rec, err := p.HintedParse(ctx, text, candidate)
		if err != nil {
			return best, err
		}
		if rec.Confidence > best.Confidence {
			best = rec
		}
	}
	return best, nil
}

// Enrich hands record to the enrichment collaborator, if any. Without one
// the record comes back unchanged with Applied false.
func (p *Parser) Enrich(ctx context.Context, record models.ParsedRecord, text string) enrichment.Outcome {
	if p.enricher == nil {
		return enrichment.Outcome{Record: record, Err: enrichment.ErrDisabled}
	}
	return p.enricher.Enrich(ctx, record, text)
}

// EmptyRecord is the result for empty or whitespace-only input.
func EmptyRecord() models.ParsedRecord {
	return models.ParsedRecord{
		Warnings:   []string{validate.WarnEmptyInput},
		Confidence: 0,
		Raw:        models.RawSections{Sections: models.SectionMap{}},
	}
}

func isEmptyInput(rec models.ParsedRecord) bool {
	return len(rec.Warnings) == 1 && rec.Warnings[0] == validate.WarnEmptyInput
}

func finish(secs models.SectionMap, detectWarnings []string, ext extract.Extraction, raw models.RawSections) models.ParsedRecord {
	warnings := make([]string, 0, len(detectWarnings)+len(ext.Warnings)+8)
	warnings = append(warnings, detectWarnings...)
	warnings = append(warnings, ext.Warnings...)
	warnings = append(warnings, validate.Validate(ext.Data)...)

	raw.Sections = secs
	return models.ParsedRecord{
		Data:       ext.Data,
		Warnings:   warnings,
		Confidence: validate.Confidence(secs, ext.Data, warnings),
		Raw:        raw,
	}
}
