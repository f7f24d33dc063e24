package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/userctx"
)

// TimeLogRepository interface defines time log database operations
type TimeLogRepository interface {
	Create(ctx context.Context, entry *models.TimeLogEntry) error
	GetByID(ctx context.Context, id int64) (*models.TimeLogEntry, error)
	GetByRef(ctx context.Context, ref string) (*models.TimeLogEntry, error)
	GetRunning(ctx context.Context, userID int64) (*models.TimeLogEntry, error)
	Update(ctx context.Context, entry *models.TimeLogEntry) error
	SoftDelete(ctx context.Context, id int64) error
	SumDuration(ctx context.Context, filter models.TimeLogFilter) (int, error)
	ListForTask(ctx context.Context, taskID int64) iter.Seq2[models.TimeLogEntry, error]
	ListForUser(ctx context.Context, userID int64, dateRange models.DateRange) ([]models.TimeLogEntry, error)
	FindOverlapping(ctx context.Context, userID int64, start, end time.Time, excludeID int64) ([]models.TimeLogEntry, error)
}

// timeLogRepository implements TimeLogRepository interface
type timeLogRepository struct {
	db *sql.DB
}

// NewTimeLogRepository creates a new time log repository
func NewTimeLogRepository(db *sql.DB) TimeLogRepository {
	return &timeLogRepository{db: db}
}

const timeLogColumns = `
	id, ref, task_id, user_id, start_time, end_time, duration_minutes,
	description, is_billable, hourly_rate, created_at, updated_at,
	is_deleted, created_by, modified_by`

// entryTime is the instant used for date-range filtering and ordering
const entryTime = `COALESCE(start_time, created_at)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimeLog(row rowScanner) (*models.TimeLogEntry, error) {
	var entry models.TimeLogEntry
	var startTime, endTime sql.NullTime
	var modifiedBy sql.NullString

	err := row.Scan(
		&entry.ID,
		&entry.Ref,
		&entry.TaskID,
		&entry.UserID,
		&startTime,
		&endTime,
		&entry.DurationMinutes,
		&entry.Description,
		&entry.IsBillable,
		&entry.HourlyRate,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.IsDeleted,
		&entry.CreatedBy,
		&modifiedBy,
	)
	if err != nil {
		return nil, err
	}

	// Convert NULL values to nil
	if startTime.Valid {
		t := startTime.Time.UTC()
		entry.StartTime = &t
	}
	if endTime.Valid {
		t := endTime.Time.UTC()
		entry.EndTime = &t
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	entry.UpdatedAt = entry.UpdatedAt.UTC()
	if modifiedBy.Valid {
		entry.ModifiedBy = modifiedBy.String
		modifiedAt := entry.UpdatedAt
		entry.ModifiedAt = &modifiedAt
	}

	return &entry, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Create inserts a new time log entry and assigns its ID and timestamps
func (r *timeLogRepository) Create(ctx context.Context, entry *models.TimeLogEntry) error {
	query := `
		INSERT INTO task_time_logs (
			ref, task_id, user_id, start_time, end_time, duration_minutes,
			description, is_billable, hourly_rate, created_at, updated_at,
			is_deleted, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
	`

	now := time.Now().UTC()
	entry.StartTime = utcPtr(entry.StartTime)
	entry.EndTime = utcPtr(entry.EndTime)
	entry.CreatedAt = now
	entry.UpdatedAt = now
	entry.CreatedBy = userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, query,
		entry.Ref,
		entry.TaskID,
		entry.UserID,
		nullTime(entry.StartTime),
		nullTime(entry.EndTime),
		entry.DurationMinutes,
		entry.Description,
		entry.IsBillable,
		entry.HourlyRate,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.CreatedBy,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("time log ref %q: %w", entry.Ref, models.ErrDuplicate)
	}
	if err != nil {
		return models.NewStorageError("insert time log", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.NewStorageError("get time log id", err)
	}

	entry.ID = id
	return nil
}

// GetByID retrieves a non-deleted time log entry
func (r *timeLogRepository) GetByID(ctx context.Context, id int64) (*models.TimeLogEntry, error) {
	query := `SELECT ` + timeLogColumns + ` FROM task_time_logs WHERE id = ? AND is_deleted = 0`

	entry, err := scanTimeLog(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time log %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, models.NewStorageError("get time log", err)
	}

	return entry, nil
}

// GetByRef retrieves a time log entry by its external reference, deleted or not
func (r *timeLogRepository) GetByRef(ctx context.Context, ref string) (*models.TimeLogEntry, error) {
	query := `SELECT ` + timeLogColumns + ` FROM task_time_logs WHERE ref = ?`

	entry, err := scanTimeLog(r.db.QueryRowContext(ctx, query, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time log %q: %w", ref, models.ErrNotFound)
	}
	if err != nil {
		return nil, models.NewStorageError("get time log by ref", err)
	}

	return entry, nil
}

// GetRunning retrieves the user's started but not stopped entry
func (r *timeLogRepository) GetRunning(ctx context.Context, userID int64) (*models.TimeLogEntry, error) {
	query := `
		SELECT ` + timeLogColumns + `
		FROM task_time_logs
		WHERE user_id = ? AND start_time IS NOT NULL AND end_time IS NULL AND is_deleted = 0
		ORDER BY start_time DESC
		LIMIT 1
	`

	entry, err := scanTimeLog(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("running time log for user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, models.NewStorageError("get running time log", err)
	}

	return entry, nil
}

// Update updates the mutable fields of a time log entry.
// The reference, owner and rate snapshot are never rewritten.
func (r *timeLogRepository) Update(ctx context.Context, entry *models.TimeLogEntry) error {
	query := `
		UPDATE task_time_logs
		SET task_id = ?, start_time = ?, end_time = ?, duration_minutes = ?,
		    description = ?, is_billable = ?, updated_at = ?, modified_by = ?
		WHERE id = ? AND is_deleted = 0
	`

	now := time.Now().UTC()
	entry.StartTime = utcPtr(entry.StartTime)
	entry.EndTime = utcPtr(entry.EndTime)
	modifiedBy := userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, query,
		entry.TaskID,
		nullTime(entry.StartTime),
		nullTime(entry.EndTime),
		entry.DurationMinutes,
		entry.Description,
		entry.IsBillable,
		now,
		modifiedBy,
		entry.ID,
	)
	if err != nil {
		return models.NewStorageError("update time log", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.NewStorageError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("time log %d: %w", entry.ID, models.ErrNotFound)
	}

	entry.UpdatedAt = now
	entry.ModifiedBy = modifiedBy
	entry.ModifiedAt = &now
	return nil
}

// SoftDelete flags an entry as deleted so billing history is preserved
func (r *timeLogRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE task_time_logs
		SET is_deleted = 1, updated_at = ?, modified_by = ?
		WHERE id = ? AND is_deleted = 0
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userctx.GetUserEmail(ctx), id)
	if err != nil {
		return models.NewStorageError("delete time log", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.NewStorageError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("time log %d: %w", id, models.ErrNotFound)
	}

	return nil
}

// filterClause builds the WHERE clause shared by aggregate queries
func filterClause(filter models.TimeLogFilter) (string, []any) {
	conditions := []string{"is_deleted = 0"}
	var args []any

	if filter.TaskID != nil {
		conditions = append(conditions, "task_id = ?")
		args = append(args, *filter.TaskID)
	}
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.BillableOnly {
		conditions = append(conditions, "is_billable = 1")
	}
	if filter.Range != nil {
		conditions = append(conditions, entryTime+" >= ?", entryTime+" < ?")
		args = append(args, filter.Range.Start.UTC(), filter.Range.End.UTC())
	}

	return strings.Join(conditions, " AND "), args
}

// SumDuration returns the total minutes of the entries matching filter, 0 when none match
func (r *timeLogRepository) SumDuration(ctx context.Context, filter models.TimeLogFilter) (int, error) {
	where, args := filterClause(filter)
	query := `SELECT COALESCE(SUM(duration_minutes), 0) FROM task_time_logs WHERE ` + where

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, models.NewStorageError("sum time log durations", err)
	}

	return total, nil
}

// ListForTask yields the task's entries ordered by start time. Each range
// over the returned sequence runs a fresh query.
func (r *timeLogRepository) ListForTask(ctx context.Context, taskID int64) iter.Seq2[models.TimeLogEntry, error] {
	query := `
		SELECT ` + timeLogColumns + `
		FROM task_time_logs
		WHERE task_id = ? AND is_deleted = 0
		ORDER BY start_time IS NULL, start_time ASC, id ASC
	`

	return func(yield func(models.TimeLogEntry, error) bool) {
		rows, err := r.db.QueryContext(ctx, query, taskID)
		if err != nil {
			yield(models.TimeLogEntry{}, models.NewStorageError("query time logs", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			entry, err := scanTimeLog(rows)
			if err != nil {
				yield(models.TimeLogEntry{}, models.NewStorageError("scan time log", err))
				return
			}
			if !yield(*entry, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(models.TimeLogEntry{}, models.NewStorageError("iterate time logs", err))
		}
	}
}

// ListForUser retrieves the user's entries inside the date range
func (r *timeLogRepository) ListForUser(ctx context.Context, userID int64, dateRange models.DateRange) ([]models.TimeLogEntry, error) {
	where, args := filterClause(models.TimeLogFilter{UserID: &userID, Range: &dateRange})
	query := `SELECT ` + timeLogColumns + ` FROM task_time_logs WHERE ` + where +
		` ORDER BY ` + entryTime + ` ASC, id ASC`

	return r.queryEntries(ctx, "query user time logs", query, args...)
}

// FindOverlapping retrieves the user's clocked entries whose span intersects [start, end).
// A running entry has no end and overlaps everything after its start.
func (r *timeLogRepository) FindOverlapping(ctx context.Context, userID int64, start, end time.Time, excludeID int64) ([]models.TimeLogEntry, error) {
	query := `
		SELECT ` + timeLogColumns + `
		FROM task_time_logs
		WHERE user_id = ? AND id != ? AND is_deleted = 0
		  AND start_time IS NOT NULL
		  AND start_time < ? AND (end_time IS NULL OR end_time > ?)
		ORDER BY start_time ASC
	`

	return r.queryEntries(ctx, "query overlapping time logs", query, userID, excludeID, end.UTC(), start.UTC())
}

func (r *timeLogRepository) queryEntries(ctx context.Context, op, query string, args ...any) ([]models.TimeLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.NewStorageError(op, err)
	}
	defer rows.Close()

	var entries []models.TimeLogEntry
	for rows.Next() {
		entry, err := scanTimeLog(rows)
		if err != nil {
			return nil, models.NewStorageError(op, err)
		}
		entries = append(entries, *entry)
	}

	if err = rows.Err(); err != nil {
		return nil, models.NewStorageError(op, err)
	}

	return entries, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
