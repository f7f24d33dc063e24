package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/repositories"
)

// TimeLogService interface defines time tracking business logic
type TimeLogService interface {
	Record(ctx context.Context, entry *models.TimeLogEntry) (*models.TimeLogEntry, error)
	Get(ctx context.Context, id int64) (*models.TimeLogEntry, error)
	TotalDuration(ctx context.Context, filter models.TimeLogFilter) (int, error)
	ListForTask(ctx context.Context, taskID int64) iter.Seq2[models.TimeLogEntry, error]
	Start(ctx context.Context, user *models.User, taskID int64, description string) (*models.TimeLogEntry, error)
	Stop(ctx context.Context, user *models.User, id int64) (*models.TimeLogEntry, error)
	Update(ctx context.Context, user *models.User, id int64, form *models.TimeLogForm) (*models.TimeLogEntry, error)
	Delete(ctx context.Context, user *models.User, id int64) error
}

// timeLogService implements TimeLogService interface
type timeLogService struct {
	timeLogRepo repositories.TimeLogRepository
	tasks       TaskLookup
	users       UserLookup
	now         func() time.Time
}

// NewTimeLogService creates a new time log service
func NewTimeLogService(timeLogRepo repositories.TimeLogRepository, tasks TaskLookup, users UserLookup) TimeLogService {
	return &timeLogService{
		timeLogRepo: timeLogRepo,
		tasks:       tasks,
		users:       users,
		now:         time.Now,
	}
}

// Record validates and stores a new entry. An entry whose caller-supplied
// ref was already recorded is returned unchanged instead of being stored twice.
func (s *timeLogService) Record(ctx context.Context, entry *models.TimeLogEntry) (*models.TimeLogEntry, error) {
	entry.Ref = strings.TrimSpace(entry.Ref)
	if entry.Ref != "" {
		existing, err := s.recorded(ctx, entry)
		if existing != nil || err != nil {
			return existing, err
		}
	}

	entry.ComputeDuration()
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkTask(ctx, entry.TaskID); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, entry.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewValidationError("user_id", fmt.Sprintf("User %d does not exist", entry.UserID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.Active {
		return nil, models.NewValidationError("user_id", fmt.Sprintf("User %d is not active", entry.UserID))
	}

	// Snapshot the rate in effect now; it is never recomputed
	if !entry.HourlyRate.Valid {
		entry.HourlyRate = user.HourlyRate
	}

	if entry.Ref == "" {
		entry.Ref = ulid.Make().String()
	}

	overlaps, err := s.overlaps(ctx, entry)
	if err != nil {
		return nil, err
	}

	err = s.timeLogRepo.Create(ctx, entry)
	if errors.Is(err, models.ErrDuplicate) {
		// A concurrent call stored the same ref first
		existing, lookupErr := s.recorded(ctx, entry)
		if existing != nil || lookupErr != nil {
			return existing, lookupErr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record time log: %w", err)
	}
	entry.Overlaps = overlaps

	slog.InfoContext(ctx, "time log recorded",
		"id", entry.ID,
		"task_id", entry.TaskID,
		"user_id", entry.UserID,
		"minutes", entry.DurationMinutes,
	)

	return entry, nil
}

// recorded returns the stored entry carrying the same ref, or nil when the
// ref is unused. Refs of deleted entries stay reserved.
func (s *timeLogService) recorded(ctx context.Context, entry *models.TimeLogEntry) (*models.TimeLogEntry, error) {
	existing, err := s.timeLogRepo.GetByRef(ctx, entry.Ref)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case existing.UserID != entry.UserID:
		return nil, models.NewValidationError("ref", "Reference is already used by another user")
	case existing.IsDeleted:
		return nil, models.NewValidationError("ref", fmt.Sprintf("Time log %d with this reference was deleted", existing.ID))
	}
	return existing, nil
}

// checkTask verifies the task exists and still accepts time
func (s *timeLogService) checkTask(ctx context.Context, taskID int64) error {
	task, err := s.tasks.GetTask(ctx, taskID)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewValidationError("task_id", fmt.Sprintf("Task %d does not exist", taskID))
	}
	if err != nil {
		return fmt.Errorf("failed to look up task: %w", err)
	}
	if !task.IsOpen() {
		return models.NewValidationError("task_id", fmt.Sprintf("Task %d is %s", taskID, task.StatusName()))
	}
	return nil
}

// overlaps reports whether the entry intersects another entry of the same user.
// Overlapping entries are flagged, not rejected.
func (s *timeLogService) overlaps(ctx context.Context, entry *models.TimeLogEntry) (bool, error) {
	if entry.StartTime == nil || entry.EndTime == nil || !entry.EndTime.After(*entry.StartTime) {
		return false, nil
	}

	others, err := s.timeLogRepo.FindOverlapping(ctx, entry.UserID, *entry.StartTime, *entry.EndTime, entry.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping time logs: %w", err)
	}

	if len(others) > 0 {
		slog.WarnContext(ctx, "time log overlaps existing entries",
			"user_id", entry.UserID,
			"overlapping_id", others[0].ID,
			"count", len(others),
		)
		return true, nil
	}

	return false, nil
}

// Get retrieves a non-deleted entry
func (s *timeLogService) Get(ctx context.Context, id int64) (*models.TimeLogEntry, error) {
	return s.timeLogRepo.GetByID(ctx, id)
}

// TotalDuration returns the summed minutes of the matching entries; 0 when nothing matches
func (s *timeLogService) TotalDuration(ctx context.Context, filter models.TimeLogFilter) (int, error) {
	if filter.Range != nil && filter.Range.End.Before(filter.Range.Start) {
		return 0, models.NewValidationError("range", "Range end must not be before range start")
	}
	return s.timeLogRepo.SumDuration(ctx, filter)
}

// ListForTask yields the task's entries ordered by start time
func (s *timeLogService) ListForTask(ctx context.Context, taskID int64) iter.Seq2[models.TimeLogEntry, error] {
	return s.timeLogRepo.ListForTask(ctx, taskID)
}

// Start opens a running entry for the user
func (s *timeLogService) Start(ctx context.Context, user *models.User, taskID int64, description string) (*models.TimeLogEntry, error) {
	running, err := s.timeLogRepo.GetRunning(ctx, user.ID)
	if err == nil {
		return nil, models.NewValidationError("task_id",
			fmt.Sprintf("A timer is already running for task %d", running.TaskID))
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	entry := models.NewTimeLogEntry(taskID, user.ID)
	entry.StartTime = &now
	entry.Description = strings.TrimSpace(description)

	return s.Record(ctx, entry)
}

// Stop closes a running entry and computes its duration
func (s *timeLogService) Stop(ctx context.Context, user *models.User, id int64) (*models.TimeLogEntry, error) {
	entry, err := s.editable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if !entry.IsRunning() {
		return nil, models.NewValidationError("end_time", fmt.Sprintf("Time log %d is not running", id))
	}

	now := s.now().UTC()
	if now.Before(*entry.StartTime) {
		now = *entry.StartTime
	}
	entry.EndTime = &now
	entry.DurationMinutes = models.MinutesBetween(*entry.StartTime, now)

	overlaps, err := s.overlaps(ctx, entry)
	if err != nil {
		return nil, err
	}

	if err := s.timeLogRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to stop time log: %w", err)
	}
	entry.Overlaps = overlaps

	return entry, nil
}

// Update changes the clock times, duration, task, description or billable
// flag of an entry. The rate snapshot and reference are kept.
func (s *timeLogService) Update(ctx context.Context, user *models.User, id int64, form *models.TimeLogForm) (*models.TimeLogEntry, error) {
	entry, err := s.editable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if form.TaskID > 0 && form.TaskID != entry.TaskID {
		if err := s.checkTask(ctx, form.TaskID); err != nil {
			return nil, err
		}
		entry.TaskID = form.TaskID
	}

	timesChanged := false
	if form.StartTime != nil {
		entry.StartTime = form.StartTime
		timesChanged = true
	}
	if form.EndTime != nil {
		entry.EndTime = form.EndTime
		timesChanged = true
	}

	if form.DurationMinutes != nil {
		entry.DurationMinutes = *form.DurationMinutes
	} else if timesChanged {
		entry.DurationMinutes = 0
		entry.ComputeDuration()
	}

	if form.Description != nil {
		entry.Description = strings.TrimSpace(*form.Description)
	}
	if form.IsBillable != nil {
		entry.IsBillable = *form.IsBillable
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	overlaps, err := s.overlaps(ctx, entry)
	if err != nil {
		return nil, err
	}

	if err := s.timeLogRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update time log: %w", err)
	}
	entry.Overlaps = overlaps

	return entry, nil
}

// Delete soft deletes an entry
func (s *timeLogService) Delete(ctx context.Context, user *models.User, id int64) error {
	if _, err := s.editable(ctx, user, id); err != nil {
		return err
	}

	if err := s.timeLogRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete time log: %w", err)
	}

	slog.InfoContext(ctx, "time log deleted", "id", id, "by_user_id", user.ID)
	return nil
}

// editable loads an entry the user is allowed to modify
func (s *timeLogService) editable(ctx context.Context, user *models.User, id int64) (*models.TimeLogEntry, error) {
	entry, err := s.timeLogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user == nil || !user.CanModify(entry) {
		return nil, fmt.Errorf("time log %d: %w", id, models.ErrForbidden)
	}

	return entry, nil
}
