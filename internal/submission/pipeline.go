// Package submission orchestrates complaint intake: validation, media
// upload, durable persistence, automatic routing, and the arming of the
// lifecycle notification schedule.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log"

	"nagarseva/backend/internal/media"
	"nagarseva/backend/internal/models"
	"nagarseva/backend/internal/routing"
	"nagarseva/backend/internal/storage"
)

// Sentinel submission errors. Validation, upload, and persistence failures
// abort the submission with no partial state; routing and notification
// failures never do.
var (
	ErrValidation  = errors.New("validation failed")
	ErrMediaUpload = errors.New("media upload failed")
	ErrPersistence = errors.New("failed to persist complaint")
)

// Scheduler arms the staged notification timeline for a new complaint.
type Scheduler interface {
	Arm(complaintID uint, code, reporterID, issueType string, chatID int64) error
}

// Upload is one attachment carried by a submission form.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Form is the finalized complaint form handed to Submit.
type Form struct {
	ReporterID   string
	State        string
	City         string
	District     string
	AddressLine1 string
	AddressLine2 string
	IssueType    string
	Description  string

	Photo     *Upload
	VoiceNote *Upload

	// ReporterChatID optionally registers a Telegram chat for push delivery.
	ReporterChatID int64
}

// Receipt is returned for every accepted submission. Routed reports whether
// the complaint was auto-assigned; RoutingDegraded marks a complaint that
// was persisted but could not be routed (a partial success, not a failure).
type Receipt struct {
	ComplaintID     uint          `json:"complaint_id"`
	Code            string        `json:"code"`
	Status          models.Status `json:"status"`
	AssignedTo      string        `json:"assigned_to,omitempty"`
	Routed          bool          `json:"routed"`
	RoutingDegraded bool          `json:"routing_degraded,omitempty"`
}

// Service is the submission pipeline.
type Service struct {
	Storage   storage.Storage
	Media     media.Store
	Scheduler Scheduler

	// AutoRoute toggles automatic assignment at submission time. On by
	// default; the intake flow still works with routing disabled, leaving
	// every complaint Pending for manual triage.
	AutoRoute bool
}

// NewService creates a submission pipeline with automatic routing enabled.
func NewService(s storage.Storage, m media.Store, sched Scheduler) *Service {
	return &Service{
		Storage:   s,
		Media:     m,
		Scheduler: sched,
		AutoRoute: true,
	}
}

// Submit runs the intake pipeline for one finalized form. Steps, in order:
// upload attachments, insert the complaint (the store assigns the code),
// best-effort routing, best-effort arming of the notification schedule.
func (s *Service) Submit(ctx context.Context, form Form) (*Receipt, error) {
	if err := validate(form); err != nil {
		return nil, err
	}

	// Attachments are stored before the complaint row exists, so a complaint
	// can never point at a missing file.
	mediaURL, err := s.upload(ctx, form.Photo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	voiceURL, err := s.upload(ctx, form.VoiceNote)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}

	complaint := models.Complaint{
		ReporterID:     form.ReporterID,
		State:          form.State,
		City:           form.City,
		District:       form.District,
		AddressLine1:   form.AddressLine1,
		AddressLine2:   form.AddressLine2,
		IssueType:      form.IssueType,
		Description:    form.Description,
		MediaURL:       mediaURL,
		VoiceNoteURL:   voiceURL,
		Status:         models.StatusPending,
		ReporterChatID: form.ReporterChatID,
	}

	if err := s.Storage.CreateComplaint(&complaint); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	receipt := &Receipt{
		ComplaintID: complaint.ID,
		Code:        complaint.Code,
		Status:      complaint.Status,
	}

	if s.AutoRoute {
		s.route(&complaint, receipt)
	}

	// Arming is fire-and-forget: the complaint exists and the receipt stands
	// whatever happens here.
	if err := s.Scheduler.Arm(complaint.ID, complaint.Code, complaint.ReporterID, complaint.IssueType, complaint.ReporterChatID); err != nil {
		log.Printf("ERROR: Failed to arm notifications for complaint %s: %v", complaint.Code, err)
	}

	return receipt, nil
}

// route performs the Pending -> Assigned transition for issue types with a
// responsible authority. A routing failure leaves the complaint Pending and
// marks the receipt degraded; the submission itself has already succeeded.
func (s *Service) route(complaint *models.Complaint, receipt *Receipt) {
	authority, ok := routing.Resolve(complaint.IssueType)
	if !ok {
		return
	}

	note := fmt.Sprintf("Auto-assigned to %s based on issue type %q", authority, complaint.IssueType)
	if err := s.Storage.AppendStatus(complaint.ID, models.StatusAssigned, authority, note); err != nil {
		log.Printf("ERROR: Failed to route complaint %s to %s: %v", complaint.Code, authority, err)
		receipt.RoutingDegraded = true
		return
	}

	receipt.Status = models.StatusAssigned
	receipt.AssignedTo = authority
	receipt.Routed = true
	log.Printf("INFO: Complaint %s routed to %s", complaint.Code, authority)
}

func (s *Service) upload(ctx context.Context, u *Upload) (string, error) {
	if u == nil {
		return "", nil
	}
	return s.Media.Put(ctx, media.ObjectName(u.FileName), u.Data, u.ContentType)
}

func validate(form Form) error {
	required := map[string]string{
		"state":       form.State,
		"city":        form.City,
		"issue_type":  form.IssueType,
		"description": form.Description,
	}
	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, field)
		}
	}
	if !models.IsValidIssueType(form.IssueType) {
		return fmt.Errorf("%w: unknown issue type %q", ErrValidation, form.IssueType)
	}
	return nil
}
