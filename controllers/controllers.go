package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/repositories"
	"github.com/blogem/tasktime/services"
)

// maxBodySize limits JSON request bodies
const maxBodySize = 1 << 20

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// renderJSON writes data as JSON with the given status code
func renderJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// renderError maps service errors onto HTTP status codes
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *models.ValidationError
	switch {
	case errors.As(err, &validation):
		renderJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Message, Field: validation.Field})
	case models.IsValidationError(err):
		renderJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		renderJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrForbidden):
		renderJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrDuplicate):
		renderJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"storage", models.IsStorageError(err),
			"error", err,
		)
		renderJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return models.NewValidationError("", "invalid request body: "+err.Error())
	}
	return nil
}

// idParam parses a positive integer URL parameter
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, fmt.Sprintf("invalid %s: %q", name, chi.URLParam(r, name)))
	}
	return id, nil
}

// parseIDList parses a comma separated list of IDs
func parseIDList(value string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, models.NewValidationError("ids", fmt.Sprintf("invalid task ID: %q", part))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseFilter reads user_id, billable, from and to query parameters.
// from and to are dates (YYYY-MM-DD); to is inclusive.
func parseFilter(r *http.Request) (models.TimeLogFilter, error) {
	var filter models.TimeLogFilter
	q := r.URL.Query()

	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, models.NewValidationError("user_id", fmt.Sprintf("invalid user_id: %q", v))
		}
		filter.UserID = &id
	}

	if v := q.Get("billable"); v != "" {
		billable, err := strconv.ParseBool(v)
		if err != nil {
			return filter, models.NewValidationError("billable", fmt.Sprintf("invalid billable: %q", v))
		}
		filter.BillableOnly = billable
	}

	from, to := q.Get("from"), q.Get("to")
	if from != "" || to != "" {
		if from == "" || to == "" {
			return filter, models.NewValidationError("from", "from and to must be given together")
		}
		start, err := models.ParseDate(from)
		if err != nil {
			return filter, models.NewValidationError("from", "from must be in YYYY-MM-DD format")
		}
		end, err := models.ParseDate(to)
		if err != nil {
			return filter, models.NewValidationError("to", "to must be in YYYY-MM-DD format")
		}
		filter.Range = &models.DateRange{Start: start, End: end.AddDate(0, 0, 1)}
	}

	return filter, nil
}

// Controllers holds all controller instances
type Controllers struct {
	Auth      *AuthController
	TimeLog   *TimeLogController
	Timesheet *TimesheetController
	Task      *TaskController
	User      *UserController
	Audit     *AuditController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, auditRepo repositories.AuditRepository) *Controllers {
	return &Controllers{
		Auth:      NewAuthController(services),
		TimeLog:   NewTimeLogController(services),
		Timesheet: NewTimesheetController(services),
		Task:      NewTaskController(services),
		User:      NewUserController(services),
		Audit:     NewAuditController(auditRepo),
	}
}
