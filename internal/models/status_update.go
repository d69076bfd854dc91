package models

import "time"

// StatusUpdate is one append-only audit entry in a complaint's status trail.
// Rows are never mutated or deleted; ordering is by CreatedAt.
type StatusUpdate struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"not null;index" json:"complaint_id"`
	Status      Status    `gorm:"type:text;not null" json:"status"`
	AssignedTo  string    `gorm:"type:text" json:"assigned_to,omitempty"`
	Note        string    `gorm:"type:text" json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}
