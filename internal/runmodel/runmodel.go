// Package runmodel defines the gorm-mapped rows persisted by
// internal/runstore: one RunRecord per pipeline invocation and one
// StageRecord per stage executed within that run.
package runmodel

import (
	"time"

	"gorm.io/datatypes"
)

// RunRecord is one `mdp run` invocation.
type RunRecord struct {
	ID         string `gorm:"primaryKey;type:varchar(32)"`
	Document   string `gorm:"type:varchar(512);index"`

	StartedAt  time.Time `gorm:"autoCreateTime"`
	DurationMs int64

	ExitCode     int
	OriginalSHA1 string `gorm:"type:varchar(40)"`
	ResultSHA1   string `gorm:"type:varchar(40)"`
	OriginalLen  int
	ResultLen    int

	PostCheckOK     bool
	PostCheckErrors datatypes.JSON `gorm:"type:jsonb"`

	Rejections datatypes.JSON `gorm:"type:jsonb"`

	Stages []StageRecord `gorm:"foreignKey:RunID"`
}

// StageRecord is one stage's execution within a RunRecord.
type StageRecord struct {
	ID    string `gorm:"primaryKey;type:varchar(32)"`
	RunID string `gorm:"type:varchar(32);index"`

	Name        string `gorm:"type:varchar(40)"`
	Skipped     bool
	DurationMs  int64
	InputChars  int
	OutputChars int
	Counts      datatypes.JSON `gorm:"type:jsonb"`
}

// TableName customizations for stable, readable table names.
func (RunRecord) TableName() string   { return "runs" }
func (StageRecord) TableName() string { return "stages" }
