package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/config"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/httpclient"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/logger"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

// MinContentLength is the length below which existing assessment or plan
// text may be replaced by enrichment output.
const MinContentLength = 50

const maxResponseBytes = 1 << 20

var (
	ErrDisabled      = errors.New("enrichment is not configured")
	ErrServiceFailed = errors.New("enrichment service reported failure")
)

// Outcome carries the record to use after an enrichment attempt. On any
// failure Record is the caller's original record and Err says why.
type Outcome struct {
	Record  models.ParsedRecord
	Applied bool
	Err     error
}

type request struct {
	Text   string              `json:"text"`
	Record models.ParsedRecord `json:"record"`
}

type response struct {
	Success    bool              `json:"success"`
	Assessment string            `json:"assessment,omitempty"`
	Plan       string            `json:"plan,omitempty"`
	Citations  []models.Citation `json:"citations,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Client calls the remote analysis service.
type Client struct {
	url        string
	httpClient *http.Client
	retries    int
	baseDelay  time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithRetries(attempts int, baseDelay time.Duration) Option {
	return func(cl *Client) {
		cl.retries = attempts
		cl.baseDelay = baseDelay
	}
}

func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:        strings.TrimSpace(url),
		httpClient: httpclient.New(20 * time.Second),
		retries:    1,
		baseDelay:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig returns nil when no enrichment URL is configured.
func NewFromConfig(ctx context.Context, cfg *config.Config) *Client {
	if cfg.EnrichmentURL == "" {
		return nil
	}
	hc := httpclient.NewWithCredentials(ctx, cfg.EnrichmentTimeout, httpclient.Credentials{
		ClientID:     cfg.EnrichmentClientID,
		ClientSecret: cfg.EnrichmentClientSecret,
		TokenURL:     cfg.EnrichmentTokenURL,
	})
	return NewClient(cfg.EnrichmentURL, WithHTTPClient(hc), WithRetries(cfg.EnrichmentRetries+1, 250*time.Millisecond))
}

// Enrich asks the service for assessment, plan and citations and merges
// them into a copy of record. It never returns a modified record on failure.
func (c *Client) Enrich(ctx context.Context, record models.ParsedRecord, text string) Outcome {
	if c == nil || c.url == "" {
		return Outcome{Record: record, Err: ErrDisabled}
	}

	var resp response
	err := httpclient.Retry(ctx, c.retries, c.baseDelay, func() error {
		r, err := c.call(ctx, request{Text: text, Record: record})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		logger.L().WithError(err).Warn("Enrichment failed; keeping parsed record")
		return Outcome{Record: record, Err: err}
	}
	if !resp.Success {
		err := ErrServiceFailed
		if resp.Error != "" {
			err = fmt.Errorf("%w: %s", ErrServiceFailed, resp.Error)
		}
		logger.L().WithError(err).Warn("Enrichment service declined")
		return Outcome{Record: record, Err: err}
	}

	merged, applied := Merge(record, resp.Assessment, resp.Plan, resp.Citations)
	return Outcome{Record: merged, Applied: applied}
}

func (c *Client) call(ctx context.Context, payload request) (response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return response{}, httpclient.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return response{}, httpclient.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if !httpclient.IsRetriable(err) {
			return response{}, httpclient.Permanent(err)
		}
		return response{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return response{}, err
	}

	if res.StatusCode >= 500 {
		return response{}, fmt.Errorf("enrichment service returned %d", res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return response{}, httpclient.Permanent(fmt.Errorf("enrichment service returned %d", res.StatusCode))
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return response{}, httpclient.Permanent(fmt.Errorf("decoding enrichment response: %w", err))
	}
	return out, nil
}

// Merge fills assessment and plan only where the existing text is shorter
// than MinContentLength, and appends citations not already present.
func Merge(record models.ParsedRecord, assessment, plan string, citations []models.Citation) (models.ParsedRecord, bool) {
	out := record.Clone()
	var filled []string

	if a := strings.TrimSpace(assessment); a != "" && len(strings.TrimSpace(out.Data.Assessment)) < MinContentLength {
		out.Data.Assessment = a
		filled = append(filled, "assessment")
	}
	if p := strings.TrimSpace(plan); p != "" && len(strings.TrimSpace(out.Data.Plan)) < MinContentLength {
		out.Data.Plan = p
		filled = append(filled, "plan")
	}

	seen := make(map[string]bool, len(out.Data.Citations))
	for _, c := range out.Data.Citations {
		seen[citationKey(c)] = true
	}
	added := 0
	for _, c := range citations {
		c.Title = strings.TrimSpace(c.Title)
		c.URL = strings.TrimSpace(c.URL)
		if c.Title == "" && c.URL == "" {
			continue
		}
		if k := citationKey(c); !seen[k] {
			seen[k] = true
			out.Data.Citations = append(out.Data.Citations, c)
			added++
		}
	}
	if added > 0 {
		filled = append(filled, "citations")
	}

	if len(filled) == 0 {
		return record, false
	}
	out.Raw.Enrichment = strings.Join(filled, ",")
	return out, true
}

func citationKey(c models.Citation) string {
	if c.URL != "" {
		return strings.ToLower(c.URL)
	}
	return strings.ToLower(c.Title)
}
