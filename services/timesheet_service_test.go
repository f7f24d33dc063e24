package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/repositories/mocks"
)

func taskFilter(taskID int64, billable bool) interface{} {
	return mock.MatchedBy(func(f models.TimeLogFilter) bool {
		return f.TaskID != nil && *f.TaskID == taskID && f.BillableOnly == billable
	})
}

func TestTaskSummaries(t *testing.T) {
	repo := mocks.NewMockTimeLogRepository(t)
	service := NewTimesheetService(repo, 2)

	repo.On("SumDuration", mock.Anything, taskFilter(1, false)).Return(90, nil).Once()
	repo.On("SumDuration", mock.Anything, taskFilter(1, true)).Return(60, nil).Once()
	repo.On("SumDuration", mock.Anything, taskFilter(2, false)).Return(0, nil).Once()
	repo.On("SumDuration", mock.Anything, taskFilter(2, true)).Return(0, nil).Once()
	repo.On("SumDuration", mock.Anything, taskFilter(3, false)).Return(45, nil).Once()
	repo.On("SumDuration", mock.Anything, taskFilter(3, true)).Return(15, nil).Once()

	summaries, err := service.TaskSummaries(context.Background(), []int64{3, 1, 2, 1}, models.TimeLogFilter{})

	require.NoError(t, err)
	assert.Equal(t, []models.TaskSummary{
		{TaskID: 1, TotalMinutes: 90, BillableMinutes: 60},
		{TaskID: 2, TotalMinutes: 0, BillableMinutes: 0},
		{TaskID: 3, TotalMinutes: 45, BillableMinutes: 15},
	}, summaries)
}

func TestTaskSummaries_KeepsRangeFilter(t *testing.T) {
	repo := mocks.NewMockTimeLogRepository(t)
	service := NewTimesheetService(repo, 4)

	week := models.GetWeekStartingFrom(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))
	inWeek := func(billable bool) interface{} {
		return mock.MatchedBy(func(f models.TimeLogFilter) bool {
			return f.Range != nil && f.Range.Start.Equal(week.Start) && f.BillableOnly == billable
		})
	}
	repo.On("SumDuration", mock.Anything, inWeek(false)).Return(30, nil).Once()
	repo.On("SumDuration", mock.Anything, inWeek(true)).Return(30, nil).Once()

	summaries, err := service.TaskSummaries(context.Background(), []int64{1}, models.TimeLogFilter{Range: &week, BillableOnly: true})

	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 30, summaries[0].TotalMinutes)
}

func TestTaskSummaries_Error(t *testing.T) {
	repo := &mocks.MockTimeLogRepository{}
	service := NewTimesheetService(repo, 1)

	failure := models.NewStorageError("sum time log durations", errors.New("database is locked"))
	repo.On("SumDuration", mock.Anything, mock.Anything).Return(0, failure)

	_, err := service.TaskSummaries(context.Background(), []int64{1, 2}, models.TimeLogFilter{})

	assert.True(t, models.IsStorageError(err))
}

func TestTaskSummaries_Empty(t *testing.T) {
	repo := mocks.NewMockTimeLogRepository(t)
	service := NewTimesheetService(repo, 0)

	summaries, err := service.TaskSummaries(context.Background(), nil, models.TimeLogFilter{})

	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestWeek(t *testing.T) {
	repo := mocks.NewMockTimeLogRepository(t)
	service := NewTimesheetService(repo, 1)

	wednesday := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	rate := decimal.NewNullDecimal(decimal.NewFromInt(60))

	entries := []models.TimeLogEntry{
		{ID: 1, StartTime: &monday, DurationMinutes: 90, IsBillable: true, HourlyRate: rate},
		{ID: 2, StartTime: &monday, DurationMinutes: 30, IsBillable: false, HourlyRate: rate},
		{ID: 3, StartTime: &saturday, DurationMinutes: 15, IsBillable: true, HourlyRate: rate},
		{ID: 4, CreatedAt: wednesday, DurationMinutes: 20, IsBillable: true},
	}
	repo.On("ListForUser", mock.Anything, int64(7), models.GetWeekStartingFrom(wednesday)).Return(entries, nil).Once()

	sheet, err := service.Week(context.Background(), 7, wednesday)

	require.NoError(t, err)
	require.Len(t, sheet.Days, 7)
	assert.Equal(t, 120, sheet.Days[0].Minutes)
	assert.Equal(t, 90, sheet.Days[0].BillableMinutes)
	assert.Equal(t, 20, sheet.Days[2].Minutes, "entries without clock times count on their creation day")
	assert.Equal(t, 15, sheet.Days[5].Minutes)
	assert.True(t, sheet.Days[5].IsWeekend())
	assert.Equal(t, 155, sheet.TotalMinutes)
	assert.Equal(t, 125, sheet.BillableMinutes)
	// 90 min and 15 min at 60/h; the entry without a rate snapshot adds nothing
	assert.True(t, decimal.NewFromInt(105).Equal(sheet.BillableAmount), sheet.BillableAmount.String())
}

func TestWeek_RepositoryError(t *testing.T) {
	repo := mocks.NewMockTimeLogRepository(t)
	service := NewTimesheetService(repo, 1)

	repo.On("ListForUser", mock.Anything, int64(7), mock.Anything).Return(nil, models.NewStorageError("query user time logs", errors.New("boom"))).Once()

	_, err := service.Week(context.Background(), 7, time.Now())

	assert.True(t, models.IsStorageError(err))
}
