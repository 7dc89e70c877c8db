package notes

import (
	"time"

	"gorm.io/datatypes"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
)

const (
	StatusParsed    = "parsed"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// Record is the persisted outcome of one parse. Text holds the note after
// PHI redaction, never the submitted original.
type Record struct {
	ID         string                                 `json:"id" gorm:"primaryKey;column:id"`
	Source     string                                 `json:"source" gorm:"column:source"`
	Format     string                                 `json:"format,omitempty" gorm:"column:format"`
	Text       string                                 `json:"text" gorm:"column:text;type:text"`
	Result     datatypes.JSONType[models.ParsedRecord] `json:"result" gorm:"column:result"`
	Confidence float64                                `json:"confidence" gorm:"column:confidence"`
	Strategy   string                                 `json:"strategy" gorm:"column:strategy"`
	Enrichment string                                 `json:"enrichment,omitempty" gorm:"column:enrichment"`
	Plan       string                                 `json:"plan,omitempty" gorm:"column:plan;type:text"`
	Metadata   datatypes.JSONMap                      `json:"metadata,omitempty" gorm:"column:metadata"`
	Status     string                                 `json:"status" gorm:"column:status"`
	Error      string                                 `json:"error,omitempty" gorm:"column:error"`
	CreatedAt  time.Time                              `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time                              `json:"updated_at" gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "parsed_notes"
}

func metadataMap(in map[string]string) datatypes.JSONMap {
	if len(in) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
