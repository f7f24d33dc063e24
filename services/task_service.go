package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/repositories"
)

// TaskService interface defines task business logic
type TaskService interface {
	TaskLookup
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, form *models.TaskForm) (*models.Task, error)
	UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error
}

// taskService implements TaskService interface
type taskService struct {
	taskRepo repositories.TaskRepository
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo repositories.TaskRepository) TaskService {
	return &taskService{taskRepo: taskRepo}
}

// GetTask retrieves a task by ID
func (s *taskService) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	if id <= 0 {
		return nil, models.NewValidationError("task_id", fmt.Sprintf("invalid task ID: %d", id))
	}
	return s.taskRepo.GetByID(ctx, id)
}

// ListTasks retrieves all tasks
func (s *taskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.taskRepo.GetAll(ctx)
}

// CreateTask validates the form and creates a task
func (s *taskService) CreateTask(ctx context.Context, form *models.TaskForm) (*models.Task, error) {
	form.Name = strings.TrimSpace(form.Name)

	if errors := form.Validate(); len(errors) > 0 {
		return nil, models.NewValidationError("", "validation failed: "+strings.Join(errors, ", "))
	}

	task := &models.Task{
		Name:     form.Name,
		Status:   form.Status,
		Priority: form.Priority,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateStatus moves a task to a new status
func (s *taskService) UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	if _, ok := models.TaskStatusNames[status]; !ok {
		return models.NewValidationError("status", fmt.Sprintf("invalid status: %q", status))
	}
	return s.taskRepo.UpdateStatus(ctx, id, status)
}
