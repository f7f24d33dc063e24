package models

import (
	"time"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority ranks tasks for display
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// TaskStatusNames maps task statuses to readable names
var TaskStatusNames = map[TaskStatus]string{
	TaskStatusTodo:       "To Do",
	TaskStatusInProgress: "In Progress",
	TaskStatusDone:       "Done",
	TaskStatusCancelled:  "Cancelled",
}

// TaskPriorityNames maps task priorities to readable names
var TaskPriorityNames = map[TaskPriority]string{
	TaskPriorityLow:      "Low",
	TaskPriorityMedium:   "Medium",
	TaskPriorityHigh:     "High",
	TaskPriorityCritical: "Critical",
}

// Task is the unit of work time is logged against
type Task struct {
	ID        int64        `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Status    TaskStatus   `json:"status" db:"status"`
	Priority  TaskPriority `json:"priority" db:"priority"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// StatusName returns the readable name for the task status
func (t *Task) StatusName() string {
	if name, ok := TaskStatusNames[t.Status]; ok {
		return name
	}
	return "Unknown"
}

// PriorityName returns the readable name for the task priority
func (t *Task) PriorityName() string {
	if name, ok := TaskPriorityNames[t.Priority]; ok {
		return name
	}
	return "Unknown"
}

// IsOpen reports whether time can still be logged against the task
func (t *Task) IsOpen() bool {
	return t.Status != TaskStatusCancelled
}

// TaskForm represents request data for creating a task
type TaskForm struct {
	Name     string       `json:"name"`
	Status   TaskStatus   `json:"status"`
	Priority TaskPriority `json:"priority"`
}

// Validate validates the task form data
func (f *TaskForm) Validate() []string {
	var errors []string

	if f.Name == "" {
		errors = append(errors, "Name is required")
	}

	if len(f.Name) > 200 {
		errors = append(errors, "Name must be less than 200 characters")
	}

	if f.Status != "" {
		if _, ok := TaskStatusNames[f.Status]; !ok {
			errors = append(errors, "Status is invalid")
		}
	}

	if f.Priority != "" {
		if _, ok := TaskPriorityNames[f.Priority]; !ok {
			errors = append(errors, "Priority is invalid")
		}
	}

	return errors
}
