package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/services"
	"github.com/blogem/tasktime/userctx"
)

// TimeLogController handles time tracking requests
type TimeLogController struct {
	services *services.Services
}

// NewTimeLogController creates a new time log controller
func NewTimeLogController(services *services.Services) *TimeLogController {
	return &TimeLogController{
		services: services,
	}
}

// Create handles POST /api/time-logs
func (c *TimeLogController) Create(w http.ResponseWriter, r *http.Request) {
	user := userctx.GetUser(r.Context())

	var form models.TimeLogForm
	if err := decodeJSON(w, r, &form); err != nil {
		renderError(w, r, err)
		return
	}

	if errors := form.Validate(); len(errors) > 0 {
		renderJSON(w, http.StatusBadRequest, struct {
			Errors []string `json:"errors"`
		}{Errors: errors})
		return
	}

	// Only administrators may log time on behalf of someone else
	ownerID := user.ID
	if form.UserID != 0 && form.UserID != user.ID {
		if !user.IsAdmin() {
			renderError(w, r, models.ErrForbidden)
			return
		}
		ownerID = form.UserID
	}

	entry, err := c.services.TimeLog.Record(r.Context(), form.ToEntry(ownerID))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, entry)
}

// Get handles GET /api/time-logs/{id}
func (c *TimeLogController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	entry, err := c.services.TimeLog.Get(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, entry)
}

// Update handles PUT /api/time-logs/{id}
func (c *TimeLogController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var form models.TimeLogForm
	if err := decodeJSON(w, r, &form); err != nil {
		renderError(w, r, err)
		return
	}

	entry, err := c.services.TimeLog.Update(r.Context(), userctx.GetUser(r.Context()), id, &form)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/time-logs/{id}
func (c *TimeLogController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := c.services.TimeLog.Delete(r.Context(), userctx.GetUser(r.Context()), id); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Start handles POST /api/time-logs/start
func (c *TimeLogController) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID      int64  `json:"task_id"`
		Description string `json:"description"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	entry, err := c.services.TimeLog.Start(r.Context(), userctx.GetUser(r.Context()), req.TaskID, req.Description)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, entry)
}

// Stop handles POST /api/time-logs/{id}/stop
func (c *TimeLogController) Stop(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	entry, err := c.services.TimeLog.Stop(r.Context(), userctx.GetUser(r.Context()), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, entry)
}

// ListForTask handles GET /api/tasks/{id}/time-logs.
// Entries are streamed as a JSON array while the query is read.
func (c *TimeLogController) ListForTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if _, err := c.services.Task.GetTask(r.Context(), taskID); err != nil {
		renderError(w, r, err)
		return
	}

	enc := json.NewEncoder(w)
	started := false
	for entry, err := range c.services.TimeLog.ListForTask(r.Context(), taskID) {
		if err != nil {
			if !started {
				renderError(w, r, err)
				return
			}
			// The status line is already sent; abort so the client sees a truncated body
			slog.ErrorContext(r.Context(), "time log stream failed", "task_id", taskID, "error", err)
			panic(http.ErrAbortHandler)
		}

		if !started {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("["))
			started = true
		} else {
			_, _ = w.Write([]byte(","))
		}
		if err := enc.Encode(entry); err != nil {
			slog.ErrorContext(r.Context(), "failed to encode time log", "id", entry.ID, "error", err)
			return
		}
	}

	if !started {
		renderJSON(w, http.StatusOK, []models.TimeLogEntry{})
		return
	}
	_, _ = w.Write([]byte("]"))
}

// Total handles GET /api/tasks/{id}/total
func (c *TimeLogController) Total(w http.ResponseWriter, r *http.Request) {
	taskID, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		renderError(w, r, err)
		return
	}
	filter.TaskID = &taskID

	minutes, err := c.services.TimeLog.TotalDuration(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, struct {
		TaskID       int64  `json:"task_id"`
		TotalMinutes int    `json:"total_minutes"`
		Formatted    string `json:"formatted"`
	}{
		TaskID:       taskID,
		TotalMinutes: minutes,
		Formatted:    models.FormatMinutes(minutes),
	})
}
