package notes

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

const defaultSource = "manual"

var (
	errInvalidSource = errors.New("invalid source")
	errUnknownFormat = errors.New("unknown format")
	errTooLarge      = errors.New("note too large")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// FormatLookup reports whether a trained format label exists.
type FormatLookup interface {
	GetFormat(label string) (models.FormatDefinition, bool)
}

// Validator checks submissions before parsing. Empty text is accepted; the
// parser answers it with the empty-input record.
type Validator struct {
	allowedSources map[string]struct{}
	maxChars       int
	formats        FormatLookup
}

func NewValidator(sources []string, maxChars int, formats FormatLookup) *Validator {
	vs := make(map[string]struct{})
	for _, src := range sources {
		if trimmed := strings.TrimSpace(strings.ToLower(src)); trimmed != "" {
			vs[trimmed] = struct{}{}
		}
	}
	return &Validator{allowedSources: vs, maxChars: maxChars, formats: formats}
}

// Normalize lowercases the source, filling in the default, and trims the
// format label. Labels are case-sensitive.
func Normalize(req models.ParseRequest) models.ParseRequest {
	req.Source = strings.TrimSpace(strings.ToLower(req.Source))
	if req.Source == "" {
		req.Source = defaultSource
	}
	req.Format = strings.TrimSpace(req.Format)
	return req
}

func (v *Validator) Validate(req models.ParseRequest) error {
	if v == nil {
		return ValidationError{reason: errors.New("validator not initialised")}
	}

	req = Normalize(req)
	if len(v.allowedSources) > 0 {
		if _, ok := v.allowedSources[req.Source]; !ok {
			return ValidationError{reason: fmt.Errorf("source '%s' not allowed: %w", req.Source, errInvalidSource)}
		}
	}

	if req.Format != "" && v.formats != nil {
		if _, ok := v.formats.GetFormat(req.Format); !ok {
			return ValidationError{reason: fmt.Errorf("format '%s' is not trained: %w", req.Format, errUnknownFormat)}
		}
	}

	if v.maxChars > 0 && utf8.RuneCountInString(req.Text) > v.maxChars {
		return ValidationError{reason: fmt.Errorf("note exceeds %d characters: %w", v.maxChars, errTooLarge)}
	}

	return nil
}
