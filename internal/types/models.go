package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StoryboardRun is one persisted pipeline run: the assembled sequence plus
// its quality and continuity reports as opaque metadata.
type StoryboardRun struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string         `gorm:"not null" json:"title"`
	Organization     string         `json:"organization"`
	Status           string         `gorm:"not null" json:"status"`
	SceneCount       int            `json:"scene_count"`
	QualityReport    datatypes.JSON `json:"quality_report"`
	ContinuityReport datatypes.JSON `json:"continuity_report"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// SceneRow is one persisted scene of a run, ordered by Index.
type SceneRow struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunID           uuid.UUID      `gorm:"type:uuid;index;not null" json:"run_id"`
	Index           int            `gorm:"column:scene_index;not null" json:"index"`
	Title           string         `json:"title"`
	Purpose         string         `json:"purpose"`
	DurationSeconds int            `json:"duration_seconds"`
	Placeholder     bool           `json:"placeholder"`
	Payload         datatypes.JSON `json:"payload"`
	ResidualIssues  datatypes.JSON `json:"residual_issues"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
