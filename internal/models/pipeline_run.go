package models

import (
	"encoding/json"
	"time"
)

const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// PipelineRun records the outcome and diagnostic trail of one roster refresh.
type PipelineRun struct {
	ID              uint `gorm:"primaryKey"`
	SourceURL       string
	TargetTable     string
	Status          string `gorm:"index"`
	Stage           string
	Error           string
	MappedColumns   int
	ExpectedColumns int
	RecordCount     int
	WarningCount    int
	Warnings        json.RawMessage `gorm:"type:text"`
	StartedAt       time.Time
	FinishedAt      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
