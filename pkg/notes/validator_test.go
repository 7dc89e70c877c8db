package notes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

type formatSet map[string]bool

func (f formatSet) GetFormat(label string) (models.FormatDefinition, bool) {
	return models.FormatDefinition{Label: label}, f[label]
}

func TestValidator(t *testing.T) {
	v := NewValidator([]string{" EHR ", "dictation", ""}, 20, formatSet{"clinic-a": true})

	cases := []struct {
		name    string
		req     models.ParseRequest
		wantErr error
	}{
		{name: "allowed source", req: models.ParseRequest{Text: "Plan: aspirin", Source: "ehr"}},
		{name: "case-insensitive source", req: models.ParseRequest{Source: "Dictation"}},
		{name: "empty text", req: models.ParseRequest{Source: "ehr"}},
		{name: "trained format", req: models.ParseRequest{Source: "ehr", Format: "clinic-a"}},
		{name: "default source rejected", req: models.ParseRequest{Text: "x"}, wantErr: errInvalidSource},
		{name: "unknown source", req: models.ParseRequest{Source: "fax"}, wantErr: errInvalidSource},
		{name: "unknown format", req: models.ParseRequest{Source: "ehr", Format: "clinic-b"}, wantErr: errUnknownFormat},
		{name: "labels are case-sensitive", req: models.ParseRequest{Source: "ehr", Format: "Clinic-A"}, wantErr: errUnknownFormat},
		{name: "too long", req: models.ParseRequest{Source: "ehr", Text: "Assessment: NSTEMI, rule out PE"}, wantErr: errTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.req)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsValidationError(err))
			assert.True(t, errors.Is(err, tc.wantErr))
		})
	}
}

func TestValidatorOpenByDefault(t *testing.T) {
	v := NewValidator(nil, 0, nil)
	assert.NoError(t, v.Validate(models.ParseRequest{Source: "anything", Format: "whatever"}))

	var nilValidator *Validator
	assert.True(t, IsValidationError(nilValidator.Validate(models.ParseRequest{})))
}

func TestNormalize(t *testing.T) {
	got := Normalize(models.ParseRequest{Source: "  ", Format: " clinic-a "})
	assert.Equal(t, "manual", got.Source)
	assert.Equal(t, "clinic-a", got.Format)
}
