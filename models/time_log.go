package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLogEntry is one record of work performed against a task
type TimeLogEntry struct {
	ID              int64               `json:"id" db:"id"`
	Ref             string              `json:"ref" db:"ref"`
	TaskID          int64               `json:"task_id" db:"task_id"`
	UserID          int64               `json:"user_id" db:"user_id"`
	StartTime       *time.Time          `json:"start_time,omitempty" db:"start_time"`
	EndTime         *time.Time          `json:"end_time,omitempty" db:"end_time"`
	DurationMinutes int                 `json:"duration_minutes" db:"duration_minutes"`
	Description     string              `json:"description" db:"description"`
	IsBillable      bool                `json:"is_billable" db:"is_billable"`
	HourlyRate      decimal.NullDecimal `json:"hourly_rate" db:"hourly_rate"` // rate snapshot, written once
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
	IsDeleted       bool                `json:"-" db:"is_deleted"`

	// Overlaps is set on the result of Record when the entry overlaps
	// another entry of the same user. It is not persisted.
	Overlaps bool `json:"overlaps,omitempty" db:"-"`

	AuditFields // Embedded audit fields
}

// NewTimeLogEntry returns an entry with the default billable flag set
func NewTimeLogEntry(taskID, userID int64) *TimeLogEntry {
	return &TimeLogEntry{
		TaskID:     taskID,
		UserID:     userID,
		IsBillable: true,
	}
}

// IsRunning reports whether the entry was started but not yet stopped
func (e *TimeLogEntry) IsRunning() bool {
	return e.StartTime != nil && e.EndTime == nil
}

// Validate checks the time range and duration of the entry
func (e *TimeLogEntry) Validate() error {
	if e.TaskID <= 0 {
		return NewValidationError("task_id", "Task must be selected")
	}
	if e.UserID <= 0 {
		return NewValidationError("user_id", "User must be selected")
	}
	if e.StartTime != nil && e.EndTime != nil && e.EndTime.Before(*e.StartTime) {
		return NewValidationError("end_time", "End time must not be before start time")
	}
	if e.EndTime != nil && e.StartTime == nil {
		return NewValidationError("start_time", "Start time is required when end time is set")
	}
	if e.DurationMinutes < 0 {
		return NewValidationError("duration_minutes", "Duration must not be negative")
	}
	if e.HourlyRate.Valid && e.HourlyRate.Decimal.IsNegative() {
		return NewValidationError("hourly_rate", "Hourly rate must not be negative")
	}
	return nil
}

// ComputeDuration fills DurationMinutes from the clock times when no
// duration was entered manually
func (e *TimeLogEntry) ComputeDuration() {
	if e.DurationMinutes == 0 && e.StartTime != nil && e.EndTime != nil {
		e.DurationMinutes = MinutesBetween(*e.StartTime, *e.EndTime)
	}
}

// Overlap reports whether both entries have clock times and their spans intersect
func (e *TimeLogEntry) Overlap(other *TimeLogEntry) bool {
	if e.StartTime == nil || e.EndTime == nil || other.StartTime == nil || other.EndTime == nil {
		return false
	}
	return e.StartTime.Before(*other.EndTime) && other.StartTime.Before(*e.EndTime)
}

// BillableAmount returns minutes/60 × rate for billable entries with a rate snapshot
func (e *TimeLogEntry) BillableAmount() decimal.Decimal {
	if !e.IsBillable || !e.HourlyRate.Valid {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(e.DurationMinutes)).
		Mul(e.HourlyRate.Decimal).
		Div(decimal.NewFromInt(60)).
		Round(2)
}

// MinutesBetween returns the whole minutes elapsed between start and end
func MinutesBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

// TimeLogFilter selects entries for aggregation. Nil fields match everything.
type TimeLogFilter struct {
	TaskID       *int64
	UserID       *int64
	BillableOnly bool
	Range        *DateRange
}

// TimeLogForm represents request data for recording or updating a time log
type TimeLogForm struct {
	Ref             string              `json:"ref,omitempty"`
	TaskID          int64               `json:"task_id"`
	UserID          int64               `json:"user_id,omitempty"`
	StartTime       *time.Time          `json:"start_time,omitempty"`
	EndTime         *time.Time          `json:"end_time,omitempty"`
	DurationMinutes *int                `json:"duration_minutes,omitempty"`
	Description     *string             `json:"description,omitempty"`
	IsBillable      *bool               `json:"is_billable,omitempty"`
	HourlyRate      decimal.NullDecimal `json:"hourly_rate"`
}

// ToEntry converts the form into an entry owned by userID
func (f *TimeLogForm) ToEntry(userID int64) *TimeLogEntry {
	entry := NewTimeLogEntry(f.TaskID, userID)
	entry.Ref = f.Ref
	entry.StartTime = f.StartTime
	entry.EndTime = f.EndTime
	if f.Description != nil {
		entry.Description = strings.TrimSpace(*f.Description)
	}
	entry.HourlyRate = f.HourlyRate
	if f.DurationMinutes != nil {
		entry.DurationMinutes = *f.DurationMinutes
	}
	if f.IsBillable != nil {
		entry.IsBillable = *f.IsBillable
	}
	return entry
}

// Validate validates the form data
func (f *TimeLogForm) Validate() []string {
	var errors []string

	if f.TaskID <= 0 {
		errors = append(errors, "Task must be selected")
	}

	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		errors = append(errors, "End time must not be before start time")
	}

	if f.DurationMinutes != nil && *f.DurationMinutes < 0 {
		errors = append(errors, "Duration must not be negative")
	}

	if f.StartTime == nil && f.EndTime == nil && f.DurationMinutes == nil {
		errors = append(errors, "Either clock times or a duration is required")
	}

	return errors
}
