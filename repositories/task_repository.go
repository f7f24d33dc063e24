package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blogem/tasktime/models"
)

// TaskRepository interface defines task database operations
type TaskRepository interface {
	GetAll(ctx context.Context) ([]models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error
}

// taskRepository implements TaskRepository interface
type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

// GetAll retrieves all tasks
func (r *taskRepository) GetAll(ctx context.Context) ([]models.Task, error) {
	query := `
		SELECT id, name, status, priority, created_at
		FROM tasks
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, models.NewStorageError("query tasks", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Name, &task.Status, &task.Priority, &task.CreatedAt); err != nil {
			return nil, models.NewStorageError("scan task", err)
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, models.NewStorageError("iterate tasks", err)
	}

	return tasks, nil
}

// GetByID retrieves a task by ID
func (r *taskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT id, name, status, priority, created_at FROM tasks WHERE id = ?`

	var task models.Task
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.Name,
		&task.Status,
		&task.Priority,
		&task.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, models.NewStorageError("get task", err)
	}

	return &task, nil
}

// Create creates a new task
func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (name, status, priority, created_at) VALUES (?, ?, ?, ?)`

	// Set default values
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, query, task.Name, task.Status, task.Priority, task.CreatedAt)
	if err != nil {
		return models.NewStorageError("insert task", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.NewStorageError("get task id", err)
	}

	task.ID = id
	return nil
}

// UpdateStatus moves a task to a new status
func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return models.NewStorageError("update task status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.NewStorageError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}

	return nil
}
