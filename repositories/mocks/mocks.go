// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"
	"iter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/blogem/tasktime/models"
)

// MockTimeLogRepository is a mock implementation of repositories.TimeLogRepository
type MockTimeLogRepository struct {
	mock.Mock
}

// NewMockTimeLogRepository creates a mock and registers its expectations check on cleanup
func NewMockTimeLogRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTimeLogRepository {
	m := &MockTimeLogRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTimeLogRepository) Create(ctx context.Context, entry *models.TimeLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimeLogRepository) GetByID(ctx context.Context, id int64) (*models.TimeLogEntry, error) {
	args := m.Called(ctx, id)
	entry, _ := args.Get(0).(*models.TimeLogEntry)
	return entry, args.Error(1)
}

func (m *MockTimeLogRepository) GetByRef(ctx context.Context, ref string) (*models.TimeLogEntry, error) {
	args := m.Called(ctx, ref)
	entry, _ := args.Get(0).(*models.TimeLogEntry)
	return entry, args.Error(1)
}

func (m *MockTimeLogRepository) GetRunning(ctx context.Context, userID int64) (*models.TimeLogEntry, error) {
	args := m.Called(ctx, userID)
	entry, _ := args.Get(0).(*models.TimeLogEntry)
	return entry, args.Error(1)
}

func (m *MockTimeLogRepository) Update(ctx context.Context, entry *models.TimeLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimeLogRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTimeLogRepository) SumDuration(ctx context.Context, filter models.TimeLogFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockTimeLogRepository) ListForTask(ctx context.Context, taskID int64) iter.Seq2[models.TimeLogEntry, error] {
	args := m.Called(ctx, taskID)
	entries, _ := args.Get(0).([]models.TimeLogEntry)
	err := args.Error(1)
	return func(yield func(models.TimeLogEntry, error) bool) {
		for _, entry := range entries {
			if !yield(entry, nil) {
				return
			}
		}
		if err != nil {
			yield(models.TimeLogEntry{}, err)
		}
	}
}

func (m *MockTimeLogRepository) ListForUser(ctx context.Context, userID int64, dateRange models.DateRange) ([]models.TimeLogEntry, error) {
	args := m.Called(ctx, userID, dateRange)
	entries, _ := args.Get(0).([]models.TimeLogEntry)
	return entries, args.Error(1)
}

func (m *MockTimeLogRepository) FindOverlapping(ctx context.Context, userID int64, start, end time.Time, excludeID int64) ([]models.TimeLogEntry, error) {
	args := m.Called(ctx, userID, start, end, excludeID)
	entries, _ := args.Get(0).([]models.TimeLogEntry)
	return entries, args.Error(1)
}

// MockTaskRepository is a mock implementation of repositories.TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

// NewMockTaskRepository creates a mock and registers its expectations check on cleanup
func NewMockTaskRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTaskRepository {
	m := &MockTaskRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTaskRepository) GetAll(ctx context.Context) ([]models.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock and registers its expectations check on cleanup
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateHourlyRate(ctx context.Context, id int64, rate decimal.NullDecimal) error {
	args := m.Called(ctx, id, rate)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of repositories.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, limit, offset int) ([]models.AuditLogEntry, error) {
	args := m.Called(ctx, limit, offset)
	entries, _ := args.Get(0).([]models.AuditLogEntry)
	return entries, args.Error(1)
}
