package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DayTotal is the logged time of one day in a timesheet
type DayTotal struct {
	Date            time.Time `json:"date"`
	Minutes         int       `json:"minutes"`
	BillableMinutes int       `json:"billable_minutes"`
}

// IsWeekend checks if the day is a Saturday or Sunday
func (d DayTotal) IsWeekend() bool {
	weekday := d.Date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// WeekTimesheet aggregates a user's entries over a Monday-based week
type WeekTimesheet struct {
	UserID          int64           `json:"user_id"`
	Week            DateRange       `json:"week"`
	Days            []DayTotal      `json:"days"`
	TotalMinutes    int             `json:"total_minutes"`
	BillableMinutes int             `json:"billable_minutes"`
	BillableAmount  decimal.Decimal `json:"billable_amount"`
}

// TaskSummary is the aggregated time of a single task
type TaskSummary struct {
	TaskID          int64 `json:"task_id"`
	TotalMinutes    int   `json:"total_minutes"`
	BillableMinutes int   `json:"billable_minutes"`
}

// FormatMinutes renders minutes as H:MM
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
