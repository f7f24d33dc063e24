package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func ptrTime(t time.Time) *time.Time { return &t }

// Test TimeLogEntry validation
func TestTimeLogEntryValidation(t *testing.T) {
	start := time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC)

	valid := NewTimeLogEntry(1, 5)
	valid.StartTime = ptrTime(start)
	valid.EndTime = ptrTime(start.Add(90 * time.Minute))
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error for valid entry, got: %v", err)
	}

	// Same start and end is allowed
	zero := NewTimeLogEntry(1, 5)
	zero.StartTime = ptrTime(start)
	zero.EndTime = ptrTime(start)
	if err := zero.Validate(); err != nil {
		t.Errorf("Expected no error for zero-length entry, got: %v", err)
	}

	cases := []struct {
		name  string
		entry *TimeLogEntry
		field string
	}{
		{
			name: "end before start",
			entry: &TimeLogEntry{TaskID: 1, UserID: 5,
				StartTime: ptrTime(start), EndTime: ptrTime(start.Add(-time.Minute))},
			field: "end_time",
		},
		{
			name:  "negative duration",
			entry: &TimeLogEntry{TaskID: 1, UserID: 5, DurationMinutes: -1},
			field: "duration_minutes",
		},
		{
			name:  "missing task",
			entry: &TimeLogEntry{UserID: 5},
			field: "task_id",
		},
		{
			name:  "end without start",
			entry: &TimeLogEntry{TaskID: 1, UserID: 5, EndTime: ptrTime(start)},
			field: "start_time",
		},
		{
			name: "negative rate",
			entry: &TimeLogEntry{TaskID: 1, UserID: 5,
				HourlyRate: decimal.NewNullDecimal(decimal.NewFromInt(-10))},
			field: "hourly_rate",
		},
	}

	for _, tc := range cases {
		err := tc.entry.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
			continue
		}
		if ve.Field != tc.field {
			t.Errorf("%s: expected field %s, got %s", tc.name, tc.field, ve.Field)
		}
	}
}

func TestNewTimeLogEntryDefaultsBillable(t *testing.T) {
	entry := NewTimeLogEntry(1, 2)
	if !entry.IsBillable {
		t.Error("Expected new entries to be billable by default")
	}

	form := TimeLogForm{TaskID: 1}
	if !form.ToEntry(2).IsBillable {
		t.Error("Expected form without is_billable to produce a billable entry")
	}

	notBillable := false
	form.IsBillable = &notBillable
	if form.ToEntry(2).IsBillable {
		t.Error("Expected explicit is_billable=false to be kept")
	}
}

func TestComputeDuration(t *testing.T) {
	start := time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC)

	entry := NewTimeLogEntry(1, 1)
	entry.StartTime = ptrTime(start)
	entry.EndTime = ptrTime(start.Add(90*time.Minute + 59*time.Second))
	entry.ComputeDuration()
	if entry.DurationMinutes != 90 {
		t.Errorf("Expected 90 minutes, got %d", entry.DurationMinutes)
	}

	// Manually entered duration wins
	manual := NewTimeLogEntry(1, 1)
	manual.StartTime = ptrTime(start)
	manual.EndTime = ptrTime(start.Add(time.Hour))
	manual.DurationMinutes = 45
	manual.ComputeDuration()
	if manual.DurationMinutes != 45 {
		t.Errorf("Expected manual duration 45 to be kept, got %d", manual.DurationMinutes)
	}
}

func TestOverlap(t *testing.T) {
	start := time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC)
	a := &TimeLogEntry{StartTime: ptrTime(start), EndTime: ptrTime(start.Add(time.Hour))}
	b := &TimeLogEntry{StartTime: ptrTime(start.Add(30 * time.Minute)), EndTime: ptrTime(start.Add(2 * time.Hour))}
	c := &TimeLogEntry{StartTime: ptrTime(start.Add(time.Hour)), EndTime: ptrTime(start.Add(2 * time.Hour))}
	d := &TimeLogEntry{DurationMinutes: 30}

	if !a.Overlap(b) || !b.Overlap(a) {
		t.Error("Expected a and b to overlap")
	}
	if a.Overlap(c) {
		t.Error("Expected adjacent entries not to overlap")
	}
	if a.Overlap(d) {
		t.Error("Expected entries without clock times never to overlap")
	}
}

func TestBillableAmount(t *testing.T) {
	entry := &TimeLogEntry{
		DurationMinutes: 90,
		IsBillable:      true,
		HourlyRate:      decimal.NewNullDecimal(decimal.RequireFromString("80.00")),
	}
	if got := entry.BillableAmount(); !got.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected 120, got %s", got)
	}

	entry.IsBillable = false
	if got := entry.BillableAmount(); !got.IsZero() {
		t.Errorf("Expected 0 for non-billable entry, got %s", got)
	}
}

func TestTimeLogFormValidation(t *testing.T) {
	minutes := 30
	valid := TimeLogForm{TaskID: 1, DurationMinutes: &minutes}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errs)
	}

	empty := TimeLogForm{}
	if errs := empty.Validate(); len(errs) != 2 {
		t.Errorf("Expected 2 errors for empty form, got: %v", errs)
	}
}

func TestUserFormValidation(t *testing.T) {
	valid := UserForm{Name: "Jane Doe", Email: "jane@example.com", Role: UserRoleAdmin}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Errorf("Expected no errors for valid form, got: %v", errs)
	}

	invalid := UserForm{Name: "", Email: "invalid-email", Role: "owner"}
	if errs := invalid.Validate(); len(errs) != 3 {
		t.Errorf("Expected 3 errors for invalid form, got: %v", errs)
	}
}

func TestDisplayNames(t *testing.T) {
	task := Task{Status: TaskStatusInProgress, Priority: TaskPriorityCritical}
	if task.StatusName() != "In Progress" {
		t.Errorf("Expected 'In Progress', got %s", task.StatusName())
	}
	if task.PriorityName() != "Critical" {
		t.Errorf("Expected 'Critical', got %s", task.PriorityName())
	}

	unknown := Task{Status: "archived"}
	if unknown.StatusName() != "Unknown" {
		t.Errorf("Expected 'Unknown', got %s", unknown.StatusName())
	}

	user := User{Role: UserRoleAdmin}
	if user.RoleName() != "Administrator" {
		t.Errorf("Expected 'Administrator', got %s", user.RoleName())
	}
}

func TestErrorTypes(t *testing.T) {
	wrapped := fmt.Errorf("record: %w", NewValidationError("end_time", "bad"))
	if !IsValidationError(wrapped) {
		t.Error("Expected wrapped ValidationError to be detected")
	}

	cause := errors.New("disk I/O error")
	storageErr := NewStorageError("insert time log", cause)
	if !IsStorageError(storageErr) {
		t.Error("Expected StorageError to be detected")
	}
	if !errors.Is(storageErr, cause) {
		t.Error("Expected StorageError to unwrap to its cause")
	}
	if NewStorageError("noop", nil) != nil {
		t.Error("Expected nil error to stay nil")
	}
}

// Test date utilities
func TestDateUtilities(t *testing.T) {
	wednesday := time.Date(2025, 10, 8, 15, 30, 0, 0, time.UTC)
	week := GetWeekStartingFrom(wednesday)

	monday := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	if !week.Start.Equal(monday) {
		t.Errorf("Expected week to start on %s, got %s", monday, week.Start)
	}
	if !week.End.Equal(monday.AddDate(0, 0, 7)) {
		t.Errorf("Expected week to end on %s, got %s", monday.AddDate(0, 0, 7), week.End)
	}
	if !week.Contains(wednesday) || week.Contains(week.End) {
		t.Error("Expected range to be half-open")
	}

	sunday := time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)
	if GetWeekdayNumber(sunday) != 6 {
		t.Errorf("Expected Sunday to be weekday 6, got %d", GetWeekdayNumber(sunday))
	}

	if FormatMinutes(95) != "1:35" {
		t.Errorf("Expected 1:35, got %s", FormatMinutes(95))
	}
}
