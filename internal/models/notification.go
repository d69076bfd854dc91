package models

import "time"

// Stage is one of the three fixed lifecycle notification points.
type Stage string

const (
	StageConfirmation    Stage = "confirmation"
	StageAcknowledgement Stage = "acknowledgement"
	StageResolution      Stage = "resolution"
)

// StageOrder lists the stages in the only order they may be emitted.
var StageOrder = []Stage{StageConfirmation, StageAcknowledgement, StageResolution}

// Index returns the stage's position in the fixed emission order,
// or -1 for an unknown stage.
func (s Stage) Index() int {
	for i, st := range StageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Notification is a lifecycle message queued for delivery to the reporter.
// For a given complaint at most one row exists per stage, created in the
// fixed order confirmation, acknowledgement, resolution.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ComplaintID   uint      `gorm:"not null;index:idx_complaint_stage,unique" json:"complaint_id"`
	ComplaintCode string    `gorm:"type:text;not null" json:"complaint_code"`
	ReporterID    string    `gorm:"type:text;index" json:"reporter_id"`
	Stage         Stage     `gorm:"type:text;not null;index:idx_complaint_stage,unique" json:"stage"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}
