package notes

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/config"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/logger"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/dlp"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/enrichment"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/evidence"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/extract"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/heuristics"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/parser"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/terminology"
)

// Components is the read-only reference data and the trained-format store
// every entry point builds from configuration.
type Components struct {
	Store    *heuristics.Store
	Parser   *parser.Parser
	Evidence *evidence.Engine
	Redactor *dlp.Detector
	Enricher *enrichment.Client

	closeKV func() error
}

// LoadComponents opens the heuristics backend, loads trained formats and
// reads the terminology, guideline and redaction tables. Bad reference
// files are fatal; an unreadable format store only starts empty.
func LoadComponents(ctx context.Context, cfg *config.Config) (*Components, error) {
	catalog, err := terminology.Load(cfg.TerminologyPath)
	if err != nil {
		return nil, fmt.Errorf("loading terminology: %w", err)
	}

	protocols, err := evidence.LoadProtocols(cfg.GuidelinesPath)
	if err != nil {
		return nil, fmt.Errorf("loading guidelines: %w", err)
	}

	var redactor *dlp.Detector
	if cfg.RedactPHI {
		rules, err := dlp.LoadRules(cfg.DLPRulesPath)
		if err != nil {
			return nil, fmt.Errorf("loading redaction rules: %w", err)
		}
		if redactor, err = dlp.NewDetector(rules); err != nil {
			return nil, fmt.Errorf("compiling redaction rules: %w", err)
		}
	}

	kv, closeKV, err := heuristics.OpenKV(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening heuristics backend: %w", err)
	}
	store := heuristics.NewStore(kv)
	outcome := store.Load(ctx)
	logger.WithFields(logrus.Fields{
		"backend": cfg.HeuristicsBackend,
		"formats": outcome.Formats,
		"corrupt": outcome.Corrupt,
	}).Info("Trained formats loaded")

	opts := []parser.Option{
		parser.WithExtractors(extract.NewExtractors(catalog)),
		parser.WithStore(store),
		parser.WithFallbackConfidence(cfg.FallbackConfidence),
	}
	enricher := enrichment.NewFromConfig(ctx, cfg)
	if enricher != nil {
		opts = append(opts, parser.WithEnricher(enricher))
	}

	return &Components{
		Store:    store,
		Parser:   parser.New(opts...),
		Evidence: evidence.NewEngine(protocols),
		Redactor: redactor,
		Enricher: enricher,
		closeKV:  closeKV,
	}, nil
}

func (c *Components) Close() error {
	if c == nil || c.closeKV == nil {
		return nil
	}
	return c.closeKV()
}
