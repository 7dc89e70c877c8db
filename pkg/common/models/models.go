package models

import (
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // note.raw, note.parsed, note.failed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Upstream note submission
type ParseRequest struct {
	Text     string            `json:"text"`
	Format   string            `json:"format,omitempty"` // trained format label
	Source   string            `json:"source,omitempty"` // ehr, dictation, manual
	Enrich   bool              `json:"enrich,omitempty"`
	Evidence bool              `json:"evidence,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ParseResponse struct {
	ID        string       `json:"id"`
	Record    ParsedRecord `json:"record"`
	Plan      string       `json:"plan,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

type BatchParseRequest struct {
	Notes []ParseRequest `json:"notes"`
}

type BatchParseResponse struct {
	Results []ParseResponse `json:"results"`
}
