package controllers

import (
	"net/http"
	"strconv"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/repositories"
)

// AuditController exposes the audit log to administrators
type AuditController struct {
	auditRepo repositories.AuditRepository
}

// NewAuditController creates a new audit controller
func NewAuditController(auditRepo repositories.AuditRepository) *AuditController {
	return &AuditController{auditRepo: auditRepo}
}

// Index handles GET /api/audit?limit=N&offset=N
func (c *AuditController) Index(w http.ResponseWriter, r *http.Request) {
	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			renderError(w, r, models.NewValidationError("limit", "limit must be between 1 and 500"))
			return
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			renderError(w, r, models.NewValidationError("offset", "offset must not be negative"))
			return
		}
		offset = n
	}

	entries, err := c.auditRepo.List(r.Context(), limit, offset)
	if err != nil {
		renderError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.AuditLogEntry{}
	}

	renderJSON(w, http.StatusOK, entries)
}
