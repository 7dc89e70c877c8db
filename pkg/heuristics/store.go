package heuristics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/logger"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

// StorageKey is the single key holding every trained format.
const StorageKey = "cardiology.heuristics.formats"

var (
	ErrFormatNotFound = errors.New("format not found")
	ErrInvalidLabel   = errors.New("format label is required")
	ErrNoSections     = errors.New("format has no usable aliases")
	ErrMalformed      = errors.New("malformed formats payload")
)

// LoadOutcome reports what Load found. Corrupt or unreadable storage
// leaves the store empty but usable.
type LoadOutcome struct {
	Formats int
	Corrupt bool
	Err     error
}

type compiledFormat struct {
	def      models.FormatDefinition
	matchers map[models.SectionKey]*regexp.Regexp
}

// Store holds trained header formats. Writers are serialised internally;
// every mutation is persisted before it becomes visible.
type Store struct {
	kv      KV
	mu      sync.RWMutex
	formats map[string]compiledFormat
	now     func() time.Time
}

func NewStore(kv KV) *Store {
	return &Store{
		kv:      kv,
		formats: make(map[string]compiledFormat),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Load replaces in-memory state with what storage holds.
func (s *Store) Load(ctx context.Context) LoadOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.formats = make(map[string]compiledFormat)

	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		logger.L().WithError(err).Warn("Failed to read trained formats; starting empty")
		return LoadOutcome{Err: err}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return LoadOutcome{}
	}

	defs, err := decodeFormats([]byte(raw))
	if err != nil {
		logger.L().WithError(err).Warn("Stored formats are corrupt; treating as empty")
		return LoadOutcome{Corrupt: true}
	}
	formats, _ := compileAll(defs, s.now)
	s.formats = formats
	return LoadOutcome{Formats: len(formats)}
}

// SaveFormat creates or replaces the format called label. An existing
// format keeps its original creation time.
func (s *Store) SaveFormat(ctx context.Context, label string, hints models.SectionHints) (models.FormatDefinition, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.FormatDefinition{}, ErrInvalidLabel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.now()
	if existing, ok := s.formats[label]; ok {
		created = existing.def.Created
	}

	def := models.FormatDefinition{Label: label, Created: created, Sections: make(map[models.SectionKey]models.FormatSection)}
	for key, aliases := range hints {
		def.Sections[key] = models.FormatSection{Aliases: aliases}
	}
	cf, ok := compileFormat(def)
	if !ok {
		return models.FormatDefinition{}, ErrNoSections
	}

	next := s.copyFormats()
	next[label] = cf
	if err := s.persist(ctx, next); err != nil {
		return models.FormatDefinition{}, err
	}
	s.formats = next
	logger.WithFields(map[string]interface{}{"label": label, "sections": len(cf.def.Sections)}).Info("Saved trained format")
	return cf.def, nil
}

func (s *Store) GetFormat(label string) (models.FormatDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cf, ok := s.formats[label]
	return cf.def, ok
}

// ListFormats returns every format ordered by label.
func (s *Store) ListFormats() []models.FormatDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.FormatDefinition, 0, len(s.formats))
	for _, label := range s.labels() {
		out = append(out, s.formats[label].def)
	}
	return out
}

func (s *Store) Labels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels()
}

func (s *Store) DeleteFormat(ctx context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.formats[label]; !ok {
		return ErrFormatNotFound
	}
	next := s.copyFormats()
	delete(next, label)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.formats = next
	return nil
}

// ExportJSON returns every format as a flat object keyed by label.
func (s *Store) ExportJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return encodeFormats(s.formats)
}

// Import merges a flat label-keyed object into the store. Imported labels
// overwrite existing ones; malformed input leaves the store unchanged.
func (s *Store) Import(ctx context.Context, data []byte) (int, error) {
	defs, err := decodeFormats(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imported, skipped := compileAll(defs, s.now)
	next := s.copyFormats()
	for label, cf := range imported {
		next[label] = cf
	}
	if err := s.persist(ctx, next); err != nil {
		return 0, err
	}
	s.formats = next
	if skipped > 0 {
		logger.WithField("skipped", skipped).Warn("Skipped imported formats without usable aliases")
	}
	return len(imported), nil
}

// CombinedPatterns returns the default header patterns with every section
// trained in label replacing the default for that section. The bool is
// false when label is unknown, in which case only defaults are returned.
func (s *Store) CombinedPatterns(label string) (Patterns, bool) {
	s.mu.RLock()
	cf, ok := s.formats[label]
	s.mu.RUnlock()

	out := DefaultPatterns()
	if !ok {
		return out, false
	}

	present := make(map[models.SectionKey]bool)
	for i, sp := range out {
		if re, custom := cf.matchers[sp.Key]; custom {
			out[i] = SectionPattern{Key: sp.Key, Matcher: re, Custom: true}
		}
		present[sp.Key] = true
	}
	for _, key := range models.CanonicalSections {
		if re, custom := cf.matchers[key]; custom && !present[key] {
			out = append(out, SectionPattern{Key: key, Matcher: re, Custom: true})
		}
	}
	return out, true
}

func (s *Store) labels() []string {
	labels := make([]string, 0, len(s.formats))
	for label := range s.formats {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func (s *Store) copyFormats() map[string]compiledFormat {
	next := make(map[string]compiledFormat, len(s.formats)+1)
	for k, v := range s.formats {
		next[k] = v
	}
	return next
}

func (s *Store) persist(ctx context.Context, formats map[string]compiledFormat) error {
	payload, err := encodeFormats(formats)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, StorageKey, string(payload)); err != nil {
		logger.L().WithError(err).Error("Failed to persist trained formats")
		return fmt.Errorf("persisting formats: %w", err)
	}
	return nil
}

// compileFormat rebuilds every section matcher from its aliases, so a
// stored pattern string is never trusted.
func compileFormat(def models.FormatDefinition) (compiledFormat, bool) {
	cf := compiledFormat{
		def:      models.FormatDefinition{Label: def.Label, Created: def.Created, Sections: make(map[models.SectionKey]models.FormatSection)},
		matchers: make(map[models.SectionKey]*regexp.Regexp),
	}
	keys := make([]string, 0, len(def.Sections))
	for key := range def.Sections {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	// hpi and subjective share a canonical key; their aliases are merged.
	merged := make(map[models.SectionKey][]string)
	var order []models.SectionKey
	for _, key := range keys {
		canonical, ok := models.ParseSectionKey(key)
		if !ok {
			continue
		}
		if _, seen := merged[canonical]; !seen {
			order = append(order, canonical)
		}
		merged[canonical] = append(merged[canonical], def.Sections[models.SectionKey(key)].Aliases...)
	}

	for _, canonical := range order {
		pattern, kept, ok := compileAliases(merged[canonical])
		if !ok {
			continue
		}
		cf.def.Sections[canonical] = models.FormatSection{Aliases: kept, Pattern: pattern, Custom: true}
		cf.matchers[canonical] = regexp.MustCompile(pattern)
	}
	return cf, len(cf.matchers) > 0
}

func compileAll(defs map[string]models.FormatDefinition, now func() time.Time) (map[string]compiledFormat, int) {
	out := make(map[string]compiledFormat, len(defs))
	skipped := 0
	for label, def := range defs {
		label = strings.TrimSpace(label)
		if label == "" {
			skipped++
			continue
		}
		def.Label = label
		if def.Created.IsZero() {
			def.Created = now()
		}
		cf, ok := compileFormat(def)
		if !ok {
			skipped++
			continue
		}
		out[label] = cf
	}
	return out, skipped
}

func decodeFormats(data []byte) (map[string]models.FormatDefinition, error) {
	var defs map[string]models.FormatDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	if defs == nil {
		return nil, errors.New("formats payload is not an object")
	}
	return defs, nil
}

func encodeFormats(formats map[string]compiledFormat) ([]byte, error) {
	out := make(map[string]models.FormatDefinition, len(formats))
	for label, cf := range formats {
		out[label] = cf.def
	}
	return json.Marshal(out)
}
