package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/blogem/tasktime/models"
)

func sampleWeek() *models.WeekTimesheet {
	week := models.GetWeekStartingFrom(time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC))
	sheet := &models.WeekTimesheet{
		UserID:          5,
		Week:            week,
		Days:            make([]models.DayTotal, 7),
		TotalMinutes:    120,
		BillableMinutes: 90,
		BillableAmount:  decimal.RequireFromString("120"),
	}
	for i := range sheet.Days {
		sheet.Days[i].Date = week.Start.AddDate(0, 0, i)
	}
	sheet.Days[0].Minutes = 120
	sheet.Days[0].BillableMinutes = 90
	return sheet
}

func TestWriteWeekYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWeekYAML(&buf, sampleWeek()))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2025-10-06", doc["week_start"])
	assert.Equal(t, "2025-10-12", doc["week_end"])
	assert.Equal(t, 120, doc["total_minutes"])
	assert.Equal(t, "120.00", doc["billable_amount"])
	assert.Len(t, doc["days"], 7)
}

func TestWriteSummariesYAML(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummariesYAML(&buf, []models.TaskSummary{{TaskID: 1, TotalMinutes: 95, BillableMinutes: 60}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "total: \"1:35\"")
	assert.Contains(t, buf.String(), "billable_minutes: 60")
}

func TestWriteWeekText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWeekText(&buf, sampleWeek(), false))

	out := buf.String()
	assert.Contains(t, out, "Week 2025-10-06 - 2025-10-12 (user 5)")
	assert.Contains(t, out, "Monday     2025-10-06    2:00    1:30")
	assert.Contains(t, out, "120.00")
	assert.NotContains(t, out, "\x1b[", "colour must be disabled")
}
