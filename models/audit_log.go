package models

import "time"

// AuditLogEntry records one mutating API request. UserID is 0 when the
// request was not tied to a registered user.
type AuditLogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id,omitempty"`
	UserEmail string    `json:"user_email"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	FormData  string    `json:"form_data,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
}
