package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

func sampleRecord() models.ParsedRecord {
	return models.ParsedRecord{
		Data: models.NoteData{
			Assessment: "STEMI",
			Plan:       strings.Repeat("Continue aspirin and heparin drip. ", 3),
		},
		Warnings:   []string{"No age found"},
		Confidence: 0.55,
		Raw:        models.RawSections{Sections: models.SectionMap{models.SectionAssessment: "STEMI"}},
	}
}

func TestEnrichFillsShortFieldsOnly(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(response{
			Success:    true,
			Assessment: "Acute inferior STEMI with ongoing chest pain",
			Plan:       "Should not replace the existing plan",
			Citations:  []models.Citation{{Title: "2013 ACCF/AHA STEMI guideline", URL: "https://example.org/stemi"}},
		})
	}))
	defer srv.Close()

	rec := sampleRecord()
	out := NewClient(srv.URL).Enrich(context.Background(), rec, "Assessment: STEMI")

	require.NoError(t, out.Err)
	assert.True(t, out.Applied)
	assert.Equal(t, "Assessment: STEMI", got.Text)
	assert.Equal(t, "Acute inferior STEMI with ongoing chest pain", out.Record.Data.Assessment)
	assert.Equal(t, rec.Data.Plan, out.Record.Data.Plan)
	assert.Len(t, out.Record.Data.Citations, 1)
	assert.Equal(t, "assessment,citations", out.Record.Raw.Enrichment)

	// the input record is untouched
	assert.Equal(t, "STEMI", rec.Data.Assessment)
	assert.Empty(t, rec.Data.Citations)
}

func TestEnrichFailuresReturnOriginal(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server declined": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error":"model unavailable"}`))
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":`))
		},
		"bad request": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			rec := sampleRecord()
			out := NewClient(srv.URL).Enrich(context.Background(), rec, "text")
			assert.Error(t, out.Err)
			assert.False(t, out.Applied)
			if diff := cmp.Diff(rec, out.Record); diff != "" {
				t.Errorf("record changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnrichRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"plan":"Cath lab activation"}`))
	}))
	defer srv.Close()

	rec := sampleRecord()
	rec.Data.Plan = ""
	out := NewClient(srv.URL, WithRetries(3, time.Millisecond)).Enrich(context.Background(), rec, "text")
	require.NoError(t, out.Err)
	assert.Equal(t, "Cath lab activation", out.Record.Data.Plan)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestEnrichTransportErrorClassification(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		calls int32
	}{
		{name: "network failure retried", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, calls: 3},
		{name: "non-network failure not retried", err: errors.New("unsupported proxy scheme"), calls: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
				atomic.AddInt32(&calls, 1)
				return nil, tc.err
			})}

			rec := sampleRecord()
			out := NewClient("http://enrichment.invalid", WithHTTPClient(hc), WithRetries(3, time.Millisecond)).
				Enrich(context.Background(), rec, "text")
			assert.Error(t, out.Err)
			assert.Equal(t, rec.Data, out.Record.Data)
			assert.Equal(t, tc.calls, atomic.LoadInt32(&calls))
		})
	}
}

func TestEnrichUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := sampleRecord()
	out := NewClient(url).Enrich(context.Background(), rec, "text")
	assert.Error(t, out.Err)
	assert.Equal(t, rec.Data, out.Record.Data)
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client
	rec := sampleRecord()
	out := c.Enrich(context.Background(), rec, "text")
	assert.ErrorIs(t, out.Err, ErrDisabled)
	assert.Equal(t, rec.Data, out.Record.Data)
}

func TestMergeDedupesCitations(t *testing.T) {
	rec := sampleRecord()
	rec.Data.Citations = []models.Citation{{Title: "Guideline", URL: "https://example.org/a"}}

	out, applied := Merge(rec, "", "", []models.Citation{
		{Title: "Same link", URL: "HTTPS://example.org/a"},
		{Title: "  "},
		{Title: "New"},
	})
	assert.True(t, applied)
	assert.Equal(t, []models.Citation{
		{Title: "Guideline", URL: "https://example.org/a"},
		{Title: "New"},
	}, out.Data.Citations)

	_, applied = Merge(rec, "", "", nil)
	assert.False(t, applied)
}
