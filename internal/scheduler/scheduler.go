// Package scheduler emits the staged lifecycle notifications for each
// complaint: confirmation at arming time, acknowledgement shortly after,
// resolution later. Jobs are persisted in the storage delay queue and claimed
// by a single timer-driven worker loop, which keeps each complaint's stages
// strictly in order even across restarts and retries.
package scheduler

import (
	"fmt"
	"log"
	"sort"
	"time"

	"nagarseva/backend/internal/config"
	"nagarseva/backend/internal/models"
	"nagarseva/backend/internal/storage"
)

// Pusher delivers a persisted notification over a best-effort side channel
// (e.g. Telegram). Failures are the implementation's to log; they never
// reach the worker loop.
type Pusher interface {
	Push(n models.Notification, chatID int64)
}

// Service schedules and emits lifecycle notifications.
type Service struct {
	Storage storage.Storage
	// Push is optional; nil disables the side channel.
	Push Pusher

	stopCh chan struct{}
}

// NewService creates a notification scheduler over the given storage.
func NewService(s storage.Storage, push Pusher) *Service {
	return &Service{
		Storage: s,
		Push:    push,
		stopCh:  make(chan struct{}),
	}
}

// Arm enqueues the three stage jobs for a freshly created complaint.
// Fire-and-forget from the caller's point of view: once the jobs are queued
// there is no way to cancel them.
func (s *Service) Arm(complaintID uint, code, reporterID, issueType string, chatID int64) error {
	now := time.Now()
	delays := map[models.Stage]time.Duration{
		models.StageConfirmation:    config.ConfirmationDelay,
		models.StageAcknowledgement: config.AcknowledgementDelay,
		models.StageResolution:      config.ResolutionDelay,
	}

	jobs := make([]storage.StageJob, 0, len(models.StageOrder))
	fireAt := make([]time.Time, 0, len(models.StageOrder))
	for _, stage := range models.StageOrder {
		jobs = append(jobs, storage.StageJob{
			ComplaintID: complaintID,
			Code:        code,
			ReporterID:  reporterID,
			IssueType:   issueType,
			ChatID:      chatID,
			Stage:       stage,
		})
		fireAt = append(fireAt, now.Add(delays[stage]))
	}

	if err := s.Storage.EnqueueStageJobs(jobs, fireAt); err != nil {
		log.Printf("ERROR: Failed to arm notifications for complaint %s: %v", code, err)
		return err
	}
	log.Printf("INFO: Armed %d notification stages for complaint %s", len(jobs), code)
	return nil
}

// Run starts the worker loop. It polls the delay queue and processes every
// due job until Stop is called.
func (s *Service) Run() {
	log.Println("Notification scheduler started.")
	ticker := time.NewTicker(config.SchedulerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			log.Println("Notification scheduler stopped.")
			return
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

// Stop terminates the worker loop.
func (s *Service) Stop() {
	close(s.stopCh)
}

// Tick claims every due job and emits its notification. Jobs are grouped per
// complaint and processed in stage order; when a stage fails, later stages of
// the same complaint are left queued for the next tick so they can never be
// persisted ahead of it.
func (s *Service) Tick(now time.Time) {
	due, err := s.Storage.DueStageJobs(now)
	if err != nil {
		log.Printf("ERROR: Failed to fetch due stage jobs: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	byComplaint := make(map[uint][]storage.StageJob)
	for _, job := range due {
		byComplaint[job.ComplaintID] = append(byComplaint[job.ComplaintID], job)
	}

	for _, jobs := range byComplaint {
		sort.Slice(jobs, func(i, j int) bool {
			return jobs[i].Stage.Index() < jobs[j].Stage.Index()
		})
		for _, job := range jobs {
			if !s.emit(job, now) {
				break
			}
		}
	}
}

// emit persists one stage's notification. Returns false when later stages of
// the same complaint must wait for the next tick.
func (s *Service) emit(job storage.StageJob, now time.Time) bool {
	// An earlier stage requeued into the future still blocks this one.
	blocked, err := s.Storage.HasEarlierStageJob(job.ComplaintID, job.Stage)
	if err != nil {
		log.Printf("ERROR: Stage-order check failed for complaint %s: %v", job.Code, err)
		return false
	}
	if blocked {
		return false
	}

	notification := models.Notification{
		ComplaintID:   job.ComplaintID,
		ComplaintCode: job.Code,
		ReporterID:    job.ReporterID,
		Stage:         job.Stage,
		Message:       stageMessage(job.Stage, job.Code, job.IssueType),
	}

	if err := s.Storage.SaveNotification(&notification); err != nil {
		if job.Attempts+1 >= config.StageMaxAttempts {
			log.Printf("ERROR: Dropping %s notification for complaint %s after %d attempts: %v",
				job.Stage, job.Code, job.Attempts+1, err)
			if remErr := s.Storage.RemoveStageJob(job); remErr != nil {
				log.Printf("ERROR: Failed to drop stage job for complaint %s: %v", job.Code, remErr)
			}
			// Exhausted stages stop blocking the rest of the timeline.
			return true
		}
		if reqErr := s.Storage.RequeueStageJob(job, now.Add(config.StageRetryBackoff)); reqErr != nil {
			log.Printf("ERROR: Failed to requeue %s stage for complaint %s: %v", job.Stage, job.Code, reqErr)
		}
		return false
	}

	if err := s.Storage.RemoveStageJob(job); err != nil {
		log.Printf("ERROR: Failed to remove emitted stage job for complaint %s: %v", job.Code, err)
	}

	// Delivery beyond persistence is best-effort.
	if err := s.Storage.PublishNotification(notification); err != nil {
		log.Printf("ERROR: Failed to publish %s notification for complaint %s: %v", job.Stage, job.Code, err)
	}
	if s.Push != nil && job.ChatID != 0 {
		s.Push.Push(notification, job.ChatID)
	}

	log.Printf("INFO: Emitted %s notification for complaint %s", job.Stage, job.Code)
	return true
}

func stageMessage(stage models.Stage, code, issueType string) string {
	switch stage {
	case models.StageConfirmation:
		return fmt.Sprintf("Your complaint %s has been registered. We will keep you posted.", code)
	case models.StageAcknowledgement:
		return fmt.Sprintf("Your complaint %s (%s) has been acknowledged and is under review.", code, issueType)
	case models.StageResolution:
		return fmt.Sprintf("Update on complaint %s: the reported %s issue has been marked for resolution.", code, issueType)
	default:
		return fmt.Sprintf("Update on complaint %s.", code)
	}
}
