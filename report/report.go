// Package report renders timesheets for terminals and files.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/blogem/tasktime/models"
)

type yamlDay struct {
	Date     string `yaml:"date"`
	Weekday  string `yaml:"weekday"`
	Minutes  int    `yaml:"minutes"`
	Billable int    `yaml:"billable_minutes"`
}

type yamlWeek struct {
	UserID          int64     `yaml:"user_id"`
	WeekStart       string    `yaml:"week_start"`
	WeekEnd         string    `yaml:"week_end"`
	Days            []yamlDay `yaml:"days"`
	TotalMinutes    int       `yaml:"total_minutes"`
	BillableMinutes int       `yaml:"billable_minutes"`
	BillableAmount  string    `yaml:"billable_amount"`
}

type yamlSummary struct {
	TaskID          int64  `yaml:"task_id"`
	Total           string `yaml:"total"`
	TotalMinutes    int    `yaml:"total_minutes"`
	BillableMinutes int    `yaml:"billable_minutes"`
}

// WriteWeekYAML writes the timesheet as a YAML document
func WriteWeekYAML(w io.Writer, sheet *models.WeekTimesheet) error {
	doc := yamlWeek{
		UserID:          sheet.UserID,
		WeekStart:       models.FormatDate(sheet.Week.Start),
		WeekEnd:         models.FormatDate(sheet.Week.End.AddDate(0, 0, -1)),
		TotalMinutes:    sheet.TotalMinutes,
		BillableMinutes: sheet.BillableMinutes,
		BillableAmount:  sheet.BillableAmount.StringFixed(2),
	}
	for _, day := range sheet.Days {
		doc.Days = append(doc.Days, yamlDay{
			Date:     models.FormatDate(day.Date),
			Weekday:  day.Date.Weekday().String(),
			Minutes:  day.Minutes,
			Billable: day.BillableMinutes,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode timesheet: %w", err)
	}
	return enc.Close()
}

// WriteSummariesYAML writes task summaries as a YAML list
func WriteSummariesYAML(w io.Writer, summaries []models.TaskSummary) error {
	docs := make([]yamlSummary, 0, len(summaries))
	for _, s := range summaries {
		docs = append(docs, yamlSummary{
			TaskID:          s.TaskID,
			Total:           models.FormatMinutes(s.TotalMinutes),
			TotalMinutes:    s.TotalMinutes,
			BillableMinutes: s.BillableMinutes,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("failed to encode summaries: %w", err)
	}
	return enc.Close()
}

// WriteWeekText writes a table of the timesheet. Weekends are dimmed and
// totals highlighted when colour is enabled.
func WriteWeekText(w io.Writer, sheet *models.WeekTimesheet, useColor bool) error {
	header := color.New(color.Bold)
	weekend := color.New(color.Faint)
	total := color.New(color.FgGreen, color.Bold)
	for _, c := range []*color.Color{header, weekend, total} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if _, err := header.Fprintf(w, "Week %s - %s (user %d)\n",
		models.FormatDate(sheet.Week.Start),
		models.FormatDate(sheet.Week.End.AddDate(0, 0, -1)),
		sheet.UserID,
	); err != nil {
		return err
	}

	for _, day := range sheet.Days {
		line := fmt.Sprintf("%-10s %s  %6s  %6s\n",
			day.Date.Weekday(),
			models.FormatDate(day.Date),
			models.FormatMinutes(day.Minutes),
			models.FormatMinutes(day.BillableMinutes),
		)
		var err error
		if day.IsWeekend() {
			_, err = weekend.Fprint(w, line)
		} else {
			_, err = fmt.Fprint(w, line)
		}
		if err != nil {
			return err
		}
	}

	_, err := total.Fprintf(w, "%-21s  %6s  %6s  %s\n",
		"Total",
		models.FormatMinutes(sheet.TotalMinutes),
		models.FormatMinutes(sheet.BillableMinutes),
		sheet.BillableAmount.StringFixed(2),
	)
	return err
}
