package storage_test

import (
	"fmt"
	"testing"
	"time"

	"nagarseva/backend/internal/models"
	"nagarseva/backend/internal/storage"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *storage.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Complaint{}, &models.StatusUpdate{}, &models.Notification{}))

	return storage.NewStorageService(db, nil)
}

func seedComplaint(t *testing.T, store *storage.Service, code string) *models.Complaint {
	t.Helper()
	complaint := &models.Complaint{
		Code:        code,
		ReporterID:  "reporter-1",
		State:       "Maharashtra",
		City:        "Pune",
		IssueType:   "pothole",
		Description: "deep pothole near the bus stop",
		Status:      models.StatusPending,
	}
	require.NoError(t, store.DB.Create(complaint).Error)
	return complaint
}

// TestNotificationsByComplaintStageOrder: rows written in stage order within
// the same millisecond still come back confirmation, acknowledgement,
// resolution.
func TestNotificationsByComplaintStageOrder(t *testing.T) {
	store := newTestStore(t)
	complaint := seedComplaint(t, store, "NGR100001")

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for _, stage := range models.StageOrder {
		n := &models.Notification{
			ComplaintID:   complaint.ID,
			ComplaintCode: complaint.Code,
			ReporterID:    complaint.ReporterID,
			Stage:         stage,
			Message:       string(stage),
			CreatedAt:     ts,
		}
		require.NoError(t, store.SaveNotification(n))
	}

	got, err := store.NotificationsByComplaint(complaint.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, stage := range models.StageOrder {
		assert.Equal(t, stage, got[i].Stage)
	}
}

// TestSaveNotificationIdempotentPerStage: a repeat save for the same
// (complaint, stage) finds the existing row instead of inserting a second one.
func TestSaveNotificationIdempotentPerStage(t *testing.T) {
	store := newTestStore(t)
	complaint := seedComplaint(t, store, "NGR100002")

	first := &models.Notification{
		ComplaintID:   complaint.ID,
		ComplaintCode: complaint.Code,
		ReporterID:    complaint.ReporterID,
		Stage:         models.StageConfirmation,
		Message:       "registered",
	}
	require.NoError(t, store.SaveNotification(first))

	repeat := &models.Notification{
		ComplaintID:   complaint.ID,
		ComplaintCode: complaint.Code,
		ReporterID:    complaint.ReporterID,
		Stage:         models.StageConfirmation,
		Message:       "registered again",
	}
	require.NoError(t, store.SaveNotification(repeat))
	assert.Equal(t, first.ID, repeat.ID)

	got, err := store.NotificationsByComplaint(complaint.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "registered", got[0].Message)
}

// TestAppendStatusForwardOnly: advancing writes the audit row; moving
// backwards or sideways is rejected without touching the trail.
func TestAppendStatusForwardOnly(t *testing.T) {
	store := newTestStore(t)
	complaint := seedComplaint(t, store, "NGR100003")

	require.NoError(t, store.AppendStatus(complaint.ID, models.StatusAssigned, "Public Works Department", "auto-routed"))
	require.NoError(t, store.AppendStatus(complaint.ID, models.StatusResolved, "Public Works Department", "filled"))

	err := store.AppendStatus(complaint.ID, models.StatusAssigned, "", "rollback attempt")
	assert.ErrorIs(t, err, storage.ErrStatusConflict)
	err = store.AppendStatus(complaint.ID, models.StatusResolved, "", "repeat")
	assert.ErrorIs(t, err, storage.ErrStatusConflict)

	current, err := store.GetComplaintByID(complaint.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, models.StatusResolved, current.Status)

	trail, err := store.StatusTrail(complaint.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, models.StatusAssigned, trail[0].Status)
	assert.Equal(t, models.StatusResolved, trail[1].Status)
}
