package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/repositories"
)

// TimesheetService interface defines aggregation over recorded time
type TimesheetService interface {
	Week(ctx context.Context, userID int64, date time.Time) (*models.WeekTimesheet, error)
	TaskSummaries(ctx context.Context, taskIDs []int64, filter models.TimeLogFilter) ([]models.TaskSummary, error)
}

// timesheetService implements TimesheetService interface
type timesheetService struct {
	timeLogRepo    repositories.TimeLogRepository
	maxConcurrency int
}

// NewTimesheetService creates a new timesheet service. maxConcurrency bounds
// the number of aggregate queries TaskSummaries runs at once.
func NewTimesheetService(timeLogRepo repositories.TimeLogRepository, maxConcurrency int) TimesheetService {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &timesheetService{
		timeLogRepo:    timeLogRepo,
		maxConcurrency: maxConcurrency,
	}
}

// Week returns per-day totals for the Monday-based week containing date.
// Days are computed in date's location.
func (s *timesheetService) Week(ctx context.Context, userID int64, date time.Time) (*models.WeekTimesheet, error) {
	week := models.GetWeekStartingFrom(date)

	entries, err := s.timeLogRepo.ListForUser(ctx, userID, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load time logs for week: %w", err)
	}

	sheet := &models.WeekTimesheet{
		UserID:         userID,
		Week:           week,
		Days:           make([]models.DayTotal, 7),
		BillableAmount: decimal.Zero,
	}
	for i := range sheet.Days {
		sheet.Days[i].Date = week.Start.AddDate(0, 0, i)
	}

	loc := week.Start.Location()
	for _, entry := range entries {
		at := entry.CreatedAt
		if entry.StartTime != nil {
			at = *entry.StartTime
		}
		at = at.In(loc)
		if !week.Contains(at) {
			continue
		}

		day := &sheet.Days[models.GetWeekdayNumber(at)]
		day.Minutes += entry.DurationMinutes
		sheet.TotalMinutes += entry.DurationMinutes

		if entry.IsBillable {
			day.BillableMinutes += entry.DurationMinutes
			sheet.BillableMinutes += entry.DurationMinutes
			sheet.BillableAmount = sheet.BillableAmount.Add(entry.BillableAmount())
		}
	}

	return sheet, nil
}

// TaskSummaries computes total and billable minutes for each task concurrently.
// The first failure cancels the remaining queries.
func (s *timesheetService) TaskSummaries(ctx context.Context, taskIDs []int64, filter models.TimeLogFilter) ([]models.TaskSummary, error) {
	ids := slices.Clone(taskIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	p := pool.NewWithResults[models.TaskSummary]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(s.maxConcurrency)

	for _, id := range ids {
		p.Go(func(ctx context.Context) (models.TaskSummary, error) {
			taskFilter := filter
			taskFilter.TaskID = &id
			taskFilter.BillableOnly = false

			total, err := s.timeLogRepo.SumDuration(ctx, taskFilter)
			if err != nil {
				return models.TaskSummary{}, fmt.Errorf("task %d: %w", id, err)
			}

			taskFilter.BillableOnly = true
			billable, err := s.timeLogRepo.SumDuration(ctx, taskFilter)
			if err != nil {
				return models.TaskSummary{}, fmt.Errorf("task %d: %w", id, err)
			}

			return models.TaskSummary{
				TaskID:          id,
				TotalMinutes:    total,
				BillableMinutes: billable,
			}, nil
		})
	}

	summaries, err := p.Wait()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(summaries, func(a, b models.TaskSummary) int {
		return cmp.Compare(a.TaskID, b.TaskID)
	})

	return summaries, nil
}
