package services

import (
	"context"

	"github.com/blogem/tasktime/models"
)

// TaskLookup resolves the task a time log refers to
type TaskLookup interface {
	GetTask(ctx context.Context, id int64) (*models.Task, error)
}

// UserLookup resolves the user a time log belongs to, including the current hourly rate
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}
