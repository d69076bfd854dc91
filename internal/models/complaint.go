package models

import "gorm.io/gorm"

// Status is the lifecycle state of a complaint. It only ever moves forward.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusAssigned   Status = "Assigned"
	StatusInProgress Status = "InProgress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// statusRank orders the lifecycle states. Higher rank means later in the lifecycle.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusAssigned:   1,
	StatusInProgress: 2,
	StatusResolved:   3,
	StatusClosed:     4,
}

// CanAdvance reports whether moving from s to next is a forward transition.
// Transitions to the same or an earlier state are rejected.
func (s Status) CanAdvance(next Status) bool {
	from, ok1 := statusRank[s]
	to, ok2 := statusRank[next]
	return ok1 && ok2 && to > from
}

// Complaint represents one citizen-submitted civic issue report.
type Complaint struct {
	gorm.Model // ID (primary key, uint), CreatedAt, UpdatedAt, DeletedAt

	// Code is the short human-facing identifier (e.g. "NGR123456").
	// Generated exactly once at creation and never reused.
	Code string `gorm:"type:text;not null;uniqueIndex" json:"code"`
	// ReporterID is the anonymous ID of the citizen who filed the report.
	ReporterID string `gorm:"type:text;index" json:"reporter_id"`

	State        string `gorm:"type:text;not null" json:"state"`
	City         string `gorm:"type:text;not null" json:"city"`
	District     string `gorm:"type:text" json:"district,omitempty"`
	AddressLine1 string `gorm:"type:text" json:"address_line1,omitempty"`
	AddressLine2 string `gorm:"type:text" json:"address_line2,omitempty"`

	// IssueType is one of the fixed issue vocabulary (see issue_type.go).
	IssueType   string `gorm:"type:text;not null;index" json:"issue_type"`
	Description string `gorm:"type:text;not null" json:"description"`

	MediaURL     string `gorm:"type:text" json:"media_url,omitempty"`
	VoiceNoteURL string `gorm:"type:text" json:"voice_note_url,omitempty"`

	Status Status `gorm:"type:text;not null" json:"status"`
	// AssignedTo is the responsible authority, empty while unrouted.
	AssignedTo string `gorm:"type:text" json:"assigned_to,omitempty"`

	// ReporterChatID is an optional Telegram chat for push delivery.
	ReporterChatID int64 `gorm:"default:0" json:"-"`
}
