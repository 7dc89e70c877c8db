package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/logger"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/dlp"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/enrichment"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/evidence"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/observability/metrics"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/parser"
)

const (
	EventNoteRaw    = "note.raw"
	EventNoteParsed = "note.parsed"
	EventNoteFailed = "note.failed"
)

const defaultBatchConcurrency = 4

var ErrEvidenceDisabled = errors.New("evidence engine not configured")

// Publisher is satisfied by kafka.Producer.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error
}

// Options wires the service. Nil collaborators disable their stage.
type Options struct {
	Parser           *parser.Parser
	Validator        *Validator
	Evidence         *evidence.Engine
	Redactor         *dlp.Detector
	Repo             RecordStore
	Producer         Publisher
	DLQ              Publisher
	BatchConcurrency int
}

type Service struct {
	parser    *parser.Parser
	validator *Validator
	evidence  *evidence.Engine
	redactor  *dlp.Detector
	repo      RecordStore
	producer  Publisher
	dlq       Publisher
	batchSize int
	now       func() time.Time
}

func NewService(opts Options) *Service {
	if opts.Parser == nil {
		opts.Parser = parser.New()
	}
	if opts.Validator == nil {
		opts.Validator = NewValidator(nil, 0, nil)
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = defaultBatchConcurrency
	}
	return &Service{
		parser:    opts.Parser,
		validator: opts.Validator,
		evidence:  opts.Evidence,
		redactor:  opts.Redactor,
		repo:      opts.Repo,
		producer:  opts.Producer,
		dlq:       opts.DLQ,
		batchSize: opts.BatchConcurrency,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Process parses one note, persists the redacted result and publishes a
// note.parsed event. A failed publish is logged and dead-lettered but the
// parse result is still returned.
func (s *Service) Process(ctx context.Context, req models.ParseRequest) (*models.ParseResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	req = Normalize(req)

	rec, err := s.parser.ParseBest(ctx, req.Text, req.Format)
	if err != nil {
		return nil, fmt.Errorf("parsing note: %w", err)
	}
	if req.Enrich {
		rec = s.enrich(ctx, rec, req.Text)
	}
	metrics.ObserveParse(rec.Raw.Strategy, len(rec.Warnings), rec.Confidence)

	var plan string
	if req.Evidence && s.evidence != nil {
		plan = s.evidence.Evaluate(rec).Text()
	}

	id := uuid.New().String()
	record := &Record{
		ID:         id,
		Source:     req.Source,
		Format:     req.Format,
		Text:       s.redactor.Redact(req.Text),
		Result:     datatypes.NewJSONType(rec),
		Confidence: rec.Confidence,
		Strategy:   rec.Raw.Strategy,
		Enrichment: rec.Raw.Enrichment,
		Plan:       plan,
		Metadata:   metadataMap(req.Metadata),
		Status:     StatusParsed,
	}
	if s.repo != nil {
		if err := s.repo.Create(ctx, record); err != nil {
			return nil, fmt.Errorf("persisting parsed note: %w", err)
		}
	}

	s.publish(ctx, record, rec)

	return &models.ParseResponse{
		ID:        id,
		Record:    rec,
		Plan:      plan,
		Timestamp: s.now(),
	}, nil
}

// Batch processes notes concurrently and returns results in input order.
// The first failing note cancels the rest.
func (s *Service) Batch(ctx context.Context, reqs []models.ParseRequest) ([]models.ParseResponse, error) {
	results := make([]models.ParseResponse, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchSize)
	for i := range reqs {
		g.Go(func() error {
			resp, err := s.Process(gctx, reqs[i])
			if err != nil {
				return fmt.Errorf("note %d: %w", i, err)
			}
			results[i] = *resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	if s.repo == nil {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Evidence builds a management plan for record. A nil plan means no
// diagnosis matched a protocol.
func (s *Service) Evidence(record models.ParsedRecord) (*evidence.Plan, error) {
	if s.evidence == nil {
		return nil, ErrEvidenceDisabled
	}
	return s.evidence.Evaluate(record), nil
}

// Parse runs the parser without persisting or publishing anything.
func (s *Service) Parse(ctx context.Context, text, format string) (models.ParsedRecord, error) {
	return s.parser.ParseBest(ctx, text, format)
}

func (s *Service) enrich(ctx context.Context, rec models.ParsedRecord, text string) models.ParsedRecord {
	out := s.parser.Enrich(ctx, rec, text)
	switch {
	case errors.Is(out.Err, enrichment.ErrDisabled):
		metrics.ObserveEnrichment(metrics.EnrichmentDisabled)
	case out.Err != nil:
		metrics.ObserveEnrichment(metrics.EnrichmentFailed)
		logger.L().WithError(out.Err).Warn("Enrichment failed; keeping parsed record")
	case out.Applied:
		metrics.ObserveEnrichment(metrics.EnrichmentApplied)
	default:
		metrics.ObserveEnrichment(metrics.EnrichmentUnchanged)
	}
	return out.Record
}

func (s *Service) publish(ctx context.Context, record *Record, rec models.ParsedRecord) {
	if s.producer == nil {
		return
	}

	payload := map[string]interface{}{
		"note_id":    record.ID,
		"source":     record.Source,
		"format":     record.Format,
		"confidence": rec.Confidence,
		"strategy":   rec.Raw.Strategy,
		"warnings":   rec.Warnings,
		"data":       rec.Data,
		"plan":       record.Plan,
		"parsed_at":  s.now(),
	}

	sendErr := s.producer.PublishEvent(ctx, EventNoteParsed, record.Source, payload)
	if sendErr != nil {
		metrics.ObservePublishFailure()
		logger.L().WithError(sendErr).WithField("note_id", record.ID).Error("Failed to publish parsed note")
		s.updateStatus(ctx, record, StatusFailed, sendErr.Error())
		s.deadLetter(ctx, record.Source, payload, sendErr)
		return
	}

	s.updateStatus(ctx, record, StatusPublished, "")
}

func (s *Service) updateStatus(ctx context.Context, record *Record, status, errMsg string) {
	record.Status = status
	record.Error = errMsg
	if s.repo == nil {
		return
	}
	if err := s.repo.UpdateStatus(ctx, record.ID, status, errMsg); err != nil {
		logger.L().WithError(err).WithField("note_id", record.ID).Warn("Failed to update note status")
	}
}

func (s *Service) deadLetter(ctx context.Context, source string, payload map[string]interface{}, cause error) {
	if s.dlq == nil {
		return
	}
	payload["error"] = cause.Error()
	if err := s.dlq.PublishEvent(ctx, EventNoteFailed, source, payload); err != nil {
		logger.L().WithError(err).Error("Failed to push event to DLQ")
	}
}

// HandleEvent consumes note.raw events. Notes that can never succeed are
// dead-lettered and acknowledged; other failures are returned so the
// message is redelivered.
func (s *Service) HandleEvent(ctx context.Context, event models.Event) error {
	if event.Type != EventNoteRaw {
		logger.L().WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Debug("Ignoring event")
		return nil
	}

	req := requestFromEvent(event)
	resp, err := s.Process(ctx, req)
	if err != nil {
		if IsValidationError(err) {
			s.deadLetter(ctx, req.Source, map[string]interface{}{
				"event_id": event.ID,
				"source":   req.Source,
				"format":   req.Format,
			}, err)
			return nil
		}
		return err
	}

	logger.L().WithFields(logrus.Fields{
		"event_id":   event.ID,
		"note_id":    resp.ID,
		"confidence": resp.Record.Confidence,
	}).Info("Parsed note from stream")
	return nil
}

func requestFromEvent(event models.Event) models.ParseRequest {
	req := models.ParseRequest{
		Source:   event.Source,
		Metadata: event.Metadata,
	}
	if v, ok := event.Data["text"].(string); ok {
		req.Text = v
	}
	if v, ok := event.Data["format"].(string); ok {
		req.Format = v
	}
	if v, ok := event.Data["source"].(string); ok && v != "" {
		req.Source = v
	}
	if v, ok := event.Data["enrich"].(bool); ok {
		req.Enrich = v
	}
	if v, ok := event.Data["evidence"].(bool); ok {
		req.Evidence = v
	}
	return req
}
