package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a record does not exist or has been soft deleted
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller may not modify a record
var ErrForbidden = errors.New("forbidden")

// ErrDuplicate is returned when a record with the same unique key already exists
var ErrDuplicate = errors.New("already exists")

// AuditFields contains common audit tracking fields
type AuditFields struct {
	CreatedBy  string     `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	ModifiedBy string     `json:"modified_by,omitempty" yaml:"modified_by,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty" yaml:"modified_at,omitempty"`
}

// DateRange represents a half-open range of time [Start, End)
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// GetWeekStartingFrom returns the Monday-based week containing the given date
func GetWeekStartingFrom(date time.Time) DateRange {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start := day.AddDate(0, 0, -GetWeekdayNumber(day))
	return DateRange{Start: start, End: start.AddDate(0, 0, 7)}
}

// GetCurrentWeek returns the range for the current week (Monday to Sunday)
func GetCurrentWeek() DateRange {
	return GetWeekStartingFrom(time.Now())
}

// FormatDate formats a time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD string into a time.Time
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// GetWeekdayNumber returns the weekday as a number (0=Monday, 6=Sunday)
func GetWeekdayNumber(t time.Time) int {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		return 6
	}
	return weekday - 1
}

// ValidationError represents a validation error on a single field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError creates a validation error for the given field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// HasErrors returns true if there are validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// GetMessages returns all error messages as a slice of strings
func (ve ValidationErrors) GetMessages() []string {
	messages := make([]string, len(ve))
	for i, err := range ve {
		messages[i] = err.Message
	}
	return messages
}

func (ve ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(ve.GetMessages(), ", ")
}

// StorageError wraps a failure of the underlying database
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err with the operation that failed. A nil err stays nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsValidationError reports whether err is a single or aggregated validation error
func IsValidationError(err error) bool {
	var single *ValidationError
	var many ValidationErrors
	return errors.As(err, &single) || errors.As(err, &many)
}

// IsStorageError reports whether err wraps a storage failure
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
