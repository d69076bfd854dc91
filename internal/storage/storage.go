package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"nagarseva/backend/internal/config"
	"nagarseva/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrStatusConflict is returned when a status write would move a complaint
// backwards, or when the row changed underneath a guarded update.
var ErrStatusConflict = errors.New("status transition conflict")

// ErrCodeExhausted is returned when a unique complaint code could not be
// claimed within the retry budget.
var ErrCodeExhausted = errors.New("could not generate a unique complaint code")

// StageJob is one scheduled notification emission, persisted in the Redis
// delay queue until its fire time.
type StageJob struct {
	ComplaintID uint         `json:"complaint_id"`
	Code        string       `json:"code"`
	ReporterID  string       `json:"reporter_id"`
	IssueType   string       `json:"issue_type"`
	ChatID      int64        `json:"chat_id,omitempty"`
	Stage       models.Stage `json:"stage"`
	Attempts    int          `json:"attempts"`
}

type Storage interface {
	CreateComplaint(complaint *models.Complaint) error
	GetComplaintByID(id uint) (*models.Complaint, error)
	GetComplaintByCode(code string) (*models.Complaint, error)
	AppendStatus(complaintID uint, status models.Status, assignedTo, note string) error
	UpdateStatus(complaintID uint, status models.Status, assignedTo string) error
	StatusTrail(complaintID uint) ([]models.StatusUpdate, error)

	SaveNotification(n *models.Notification) error
	NotificationsByComplaint(complaintID uint) ([]models.Notification, error)
	NotificationsByReporter(reporterID string) ([]models.Notification, error)
	MarkNotificationRead(id uint) error

	EnqueueStageJobs(jobs []StageJob, fireAt []time.Time) error
	DueStageJobs(now time.Time) ([]StageJob, error)
	RequeueStageJob(job StageJob, fireAt time.Time) error
	RemoveStageJob(job StageJob) error
	HasEarlierStageJob(complaintID uint, stage models.Stage) (bool, error)

	PublishNotification(n models.Notification) error
}

const stageQueueKey = "stage_jobs"

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// CreateComplaint inserts a new complaint row and assigns its unique code.
// The store owns code generation: a candidate NGR code is claimed in Redis
// first (SETNX), then backed by the unique index on the code column. On
// success complaint.ID and complaint.Code are filled in.
func (s *Service) CreateComplaint(complaint *models.Complaint) error {
	if complaint.Status == "" {
		complaint.Status = models.StatusPending
	}

	for attempt := 0; attempt < config.CodeMaxRetries; attempt++ {
		code := generateCode()

		claimed, err := s.Redis.SetNX(s.Ctx, "complaint_code:"+code, "1", config.CodeClaimTTL).Result()
		if err != nil {
			return err
		}
		if !claimed {
			continue
		}

		complaint.Code = code
		if err := s.DB.Create(complaint).Error; err != nil {
			// The unique index is the backstop when Redis and the table
			// disagree about a code being free.
			log.Printf("ERROR: Failed to insert complaint with code %s: %v", code, err)
			if isUniqueViolation(err) {
				continue
			}
			return err
		}
		return nil
	}

	return ErrCodeExhausted
}

func generateCode() string {
	return fmt.Sprintf("%s%0*d", config.CodePrefix, config.CodeDigits, rand.IntN(1000000))
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (s *Service) GetComplaintByID(id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.First(&complaint, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (s *Service) GetComplaintByCode(code string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.Where("code = ?", code).First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// AppendStatus advances the complaint's status and appends one StatusUpdate
// row, atomically. The complaint row update is guarded on the current status
// so a concurrent writer can never overwrite a later state with an earlier
// one; a lost guard surfaces as ErrStatusConflict.
func (s *Service) AppendStatus(complaintID uint, status models.Status, assignedTo, note string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint
		if err := tx.First(&complaint, complaintID).Error; err != nil {
			return err
		}
		if !complaint.Status.CanAdvance(status) {
			return ErrStatusConflict
		}

		result := tx.Model(&models.Complaint{}).
			Where("id = ? AND status = ?", complaintID, complaint.Status).
			Updates(map[string]interface{}{
				"status":      status,
				"assigned_to": assignedTo,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStatusConflict
		}

		update := models.StatusUpdate{
			ComplaintID: complaintID,
			Status:      status,
			AssignedTo:  assignedTo,
			Note:        note,
		}
		return tx.Create(&update).Error
	})
}

// UpdateStatus advances the complaint's status without writing an audit row.
// Same forward-only guard as AppendStatus.
func (s *Service) UpdateStatus(complaintID uint, status models.Status, assignedTo string) error {
	var complaint models.Complaint
	if err := s.DB.First(&complaint, complaintID).Error; err != nil {
		return err
	}
	if !complaint.Status.CanAdvance(status) {
		return ErrStatusConflict
	}

	result := s.DB.Model(&models.Complaint{}).
		Where("id = ? AND status = ?", complaintID, complaint.Status).
		Updates(map[string]interface{}{
			"status":      status,
			"assigned_to": assignedTo,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// StatusTrail returns the complaint's audit entries, oldest first.
func (s *Service) StatusTrail(complaintID uint) ([]models.StatusUpdate, error) {
	var trail []models.StatusUpdate
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at asc, id asc").
		Find(&trail).Error
	if err != nil {
		log.Printf("ERROR: Failed to load status trail for complaint %d: %v", complaintID, err)
		return nil, err
	}
	return trail, nil
}

// SaveNotification persists one lifecycle notification. The (complaint, stage)
// pair is unique; a repeat insert for the same stage finds the existing row
// instead of failing, which keeps at-least-once emission idempotent.
func (s *Service) SaveNotification(n *models.Notification) error {
	result := s.DB.Where("complaint_id = ? AND stage = ?", n.ComplaintID, n.Stage).
		FirstOrCreate(n, models.Notification{
			ComplaintID:   n.ComplaintID,
			ComplaintCode: n.ComplaintCode,
			ReporterID:    n.ReporterID,
			Stage:         n.Stage,
			Message:       n.Message,
		})
	if result.Error != nil {
		log.Printf("ERROR: Failed to save %s notification for complaint %d: %v", n.Stage, n.ComplaintID, result.Error)
		return result.Error
	}
	return nil
}

func (s *Service) NotificationsByComplaint(complaintID uint) ([]models.Notification, error) {
	// Stage rows are written in stage order, so the id tie-break keeps the
	// trail deterministic even when two stages land in the same millisecond.
	var notifications []models.Notification
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at asc, id asc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *Service) NotificationsByReporter(reporterID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.Where("reporter_id = ?", reporterID).
		Order("created_at desc, id desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *Service) MarkNotificationRead(id uint) error {
	return s.DB.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// EnqueueStageJobs adds scheduled stage jobs to the Redis delay queue,
// scored by their fire time.
func (s *Service) EnqueueStageJobs(jobs []StageJob, fireAt []time.Time) error {
	members := make([]redis.Z, 0, len(jobs))
	for i, job := range jobs {
		payload, err := json.Marshal(job)
		if err != nil {
			return err
		}
		members = append(members, redis.Z{
			Score:  float64(fireAt[i].UnixMilli()),
			Member: string(payload),
		})
	}
	return s.Redis.ZAdd(s.Ctx, stageQueueKey, members...).Err()
}

// DueStageJobs returns every job whose fire time has passed. Jobs stay in the
// queue until explicitly removed or requeued by the worker.
func (s *Service) DueStageJobs(now time.Time) ([]StageJob, error) {
	raw, err := s.Redis.ZRangeByScore(s.Ctx, stageQueueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]StageJob, 0, len(raw))
	for _, member := range raw {
		var job StageJob
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			log.Printf("ERROR: Dropping undecodable stage job %q: %v", member, err)
			s.Redis.ZRem(s.Ctx, stageQueueKey, member)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// RequeueStageJob replaces a job with a later fire time and a bumped attempt
// counter.
func (s *Service) RequeueStageJob(job StageJob, fireAt time.Time) error {
	old, err := json.Marshal(job)
	if err != nil {
		return err
	}
	job.Attempts++
	next, err := json.Marshal(job)
	if err != nil {
		return err
	}

	pipe := s.Redis.TxPipeline()
	pipe.ZRem(s.Ctx, stageQueueKey, string(old))
	pipe.ZAdd(s.Ctx, stageQueueKey, redis.Z{
		Score:  float64(fireAt.UnixMilli()),
		Member: string(next),
	})
	_, err = pipe.Exec(s.Ctx)
	return err
}

func (s *Service) RemoveStageJob(job StageJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.Redis.ZRem(s.Ctx, stageQueueKey, string(payload)).Err()
}

// HasEarlierStageJob reports whether any not-yet-emitted job for the same
// complaint precedes the given stage. The scheduler uses this to keep a
// later stage from being persisted ahead of an earlier one under retry.
func (s *Service) HasEarlierStageJob(complaintID uint, stage models.Stage) (bool, error) {
	raw, err := s.Redis.ZRange(s.Ctx, stageQueueKey, 0, -1).Result()
	if err != nil {
		return false, err
	}
	for _, member := range raw {
		var job StageJob
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			continue
		}
		if job.ComplaintID == complaintID && job.Stage.Index() < stage.Index() {
			return true, nil
		}
	}
	return false, nil
}

// PublishNotification fans a persisted notification out over Redis Pub/Sub
// for the websocket push hub. Best-effort.
func (s *Service) PublishNotification(n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, "notifications:"+n.ReporterID, string(payload)).Err()
}

// SubscribeNotifications subscribes to every reporter's notification channel.
func (s *Service) SubscribeNotifications() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, "notifications:*")
}
