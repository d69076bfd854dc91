package submission_test

import (
	"time"

	"nagarseva/backend/internal/models"
	"nagarseva/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateComplaint(complaint *models.Complaint) error {
	args := m.Called(complaint)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(id uint) (*models.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) GetComplaintByCode(code string) (*models.Complaint, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) AppendStatus(complaintID uint, status models.Status, assignedTo, note string) error {
	args := m.Called(complaintID, status, assignedTo, note)
	return args.Error(0)
}

func (m *MockStorage) UpdateStatus(complaintID uint, status models.Status, assignedTo string) error {
	args := m.Called(complaintID, status, assignedTo)
	return args.Error(0)
}

func (m *MockStorage) StatusTrail(complaintID uint) ([]models.StatusUpdate, error) {
	args := m.Called(complaintID)
	return args.Get(0).([]models.StatusUpdate), args.Error(1)
}

func (m *MockStorage) SaveNotification(n *models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockStorage) NotificationsByComplaint(complaintID uint) ([]models.Notification, error) {
	args := m.Called(complaintID)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockStorage) NotificationsByReporter(reporterID string) ([]models.Notification, error) {
	args := m.Called(reporterID)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockStorage) MarkNotificationRead(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) EnqueueStageJobs(jobs []storage.StageJob, fireAt []time.Time) error {
	args := m.Called(jobs, fireAt)
	return args.Error(0)
}

func (m *MockStorage) DueStageJobs(now time.Time) ([]storage.StageJob, error) {
	args := m.Called(now)
	return args.Get(0).([]storage.StageJob), args.Error(1)
}

func (m *MockStorage) RequeueStageJob(job storage.StageJob, fireAt time.Time) error {
	args := m.Called(job, fireAt)
	return args.Error(0)
}

func (m *MockStorage) RemoveStageJob(job storage.StageJob) error {
	args := m.Called(job)
	return args.Error(0)
}

func (m *MockStorage) HasEarlierStageJob(complaintID uint, stage models.Stage) (bool, error) {
	args := m.Called(complaintID, stage)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) PublishNotification(n models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}
