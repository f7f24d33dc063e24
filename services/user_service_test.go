package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/repositories/mocks"
)

func TestUserService_CreateUser(t *testing.T) {
	repo := mocks.NewMockUserRepository(t)
	service := NewUserService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "jane@example.com" && u.Name == "Jane" && u.Active
	})).Return(nil).Once()

	user, err := service.CreateUser(context.Background(), &models.UserForm{
		Email: "  Jane@Example.com ",
		Name:  " Jane ",
		Role:  models.UserRoleMember,
	})

	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.True(t, user.Active)
}

func TestUserService_CreateUser_Invalid(t *testing.T) {
	repo := mocks.NewMockUserRepository(t)
	service := NewUserService(repo)

	_, err := service.CreateUser(context.Background(), &models.UserForm{Email: "not-an-email"})

	assert.True(t, models.IsValidationError(err))
}

func TestUserService_GetUserByEmail_Normalizes(t *testing.T) {
	repo := mocks.NewMockUserRepository(t)
	service := NewUserService(repo)

	expected := &models.User{ID: 1, Email: "jane@example.com"}
	repo.On("GetByEmail", mock.Anything, "jane@example.com").Return(expected, nil).Once()

	user, err := service.GetUserByEmail(context.Background(), " JANE@example.com")

	require.NoError(t, err)
	assert.Same(t, expected, user)
}

func TestUserService_GetUser_InvalidID(t *testing.T) {
	service := NewUserService(mocks.NewMockUserRepository(t))

	_, err := service.GetUser(context.Background(), 0)

	assert.True(t, models.IsValidationError(err))
}

func TestUserService_SetHourlyRate(t *testing.T) {
	repo := mocks.NewMockUserRepository(t)
	service := NewUserService(repo)

	rate := decimal.NewNullDecimal(decimal.NewFromInt(75))
	repo.On("UpdateHourlyRate", mock.Anything, int64(3), rate).Return(nil).Once()

	require.NoError(t, service.SetHourlyRate(context.Background(), 3, rate))

	negative := decimal.NewNullDecimal(decimal.NewFromInt(-1))
	err := service.SetHourlyRate(context.Background(), 3, negative)
	assert.True(t, models.IsValidationError(err))
}

func TestTaskService_CreateTask(t *testing.T) {
	repo := mocks.NewMockTaskRepository(t)
	service := NewTaskService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Task")).Return(nil).Once()

	task, err := service.CreateTask(context.Background(), &models.TaskForm{Name: "  Plan sprint  "})

	require.NoError(t, err)
	assert.Equal(t, "Plan sprint", task.Name)

	_, err = service.CreateTask(context.Background(), &models.TaskForm{Name: "   "})
	assert.True(t, models.IsValidationError(err))
}

func TestTaskService_UpdateStatus(t *testing.T) {
	repo := mocks.NewMockTaskRepository(t)
	service := NewTaskService(repo)

	repo.On("UpdateStatus", mock.Anything, int64(1), models.TaskStatusDone).Return(nil).Once()

	require.NoError(t, service.UpdateStatus(context.Background(), 1, models.TaskStatusDone))

	err := service.UpdateStatus(context.Background(), 1, models.TaskStatus("archived"))
	assert.True(t, models.IsValidationError(err))
}
