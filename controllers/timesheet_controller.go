package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/report"
	"github.com/blogem/tasktime/services"
	"github.com/blogem/tasktime/userctx"
)

// TimesheetController handles aggregated time requests
type TimesheetController struct {
	services *services.Services
}

// NewTimesheetController creates a new timesheet controller
func NewTimesheetController(services *services.Services) *TimesheetController {
	return &TimesheetController{
		services: services,
	}
}

// Week handles GET /api/timesheet?week=YYYY-MM-DD&user_id=N&format=yaml
func (c *TimesheetController) Week(w http.ResponseWriter, r *http.Request) {
	user := userctx.GetUser(r.Context())

	date := time.Now()
	if v := r.URL.Query().Get("week"); v != "" {
		parsed, err := models.ParseDate(v)
		if err != nil {
			renderError(w, r, models.NewValidationError("week", "week must be in YYYY-MM-DD format"))
			return
		}
		date = parsed
	}

	userID := user.ID
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			renderError(w, r, models.NewValidationError("user_id", "invalid user_id"))
			return
		}
		if id != user.ID && !user.IsAdmin() {
			renderError(w, r, models.ErrForbidden)
			return
		}
		userID = id
	}

	sheet, err := c.services.Timesheet.Week(r.Context(), userID, date)
	if err != nil {
		renderError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		w.Header().Set("Content-Type", "application/yaml")
		if err := report.WriteWeekYAML(w, sheet); err != nil {
			renderError(w, r, err)
		}
		return
	}

	renderJSON(w, http.StatusOK, sheet)
}

// Summaries handles GET /api/tasks/summary?ids=1,2,3
func (c *TimesheetController) Summaries(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	if len(ids) == 0 {
		renderError(w, r, models.NewValidationError("ids", "at least one task ID is required"))
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	summaries, err := c.services.Timesheet.TaskSummaries(r.Context(), ids, filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		w.Header().Set("Content-Type", "application/yaml")
		if err := report.WriteSummariesYAML(w, summaries); err != nil {
			renderError(w, r, err)
		}
		return
	}

	renderJSON(w, http.StatusOK, summaries)
}
