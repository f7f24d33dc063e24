package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/userctx"
)

// maxAuditBody caps how much of a request body is copied into the audit log
const maxAuditBody = 4 << 10

// AuditWriter persists audit log entries
type AuditWriter interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
}

// AuditLogger middleware logs all POST/PUT/PATCH/DELETE requests.
// The entry is written asynchronously; done, if non-nil, is called after each write.
func AuditLogger(auditRepo AuditWriter, done func(error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			entry := &models.AuditLogEntry{
				UserEmail: userctx.GetUserEmail(r.Context()),
				Method:    r.Method,
				Path:      r.URL.Path,
				UserAgent: r.UserAgent(),
				IPAddress: getIPAddress(r),
				FormData:  captureBody(r),
			}
			if user := userctx.GetUser(r.Context()); user != nil {
				entry.UserID = user.ID
			}

			// Log asynchronously to avoid blocking request
			ctx := context.WithoutCancel(r.Context())
			go func() {
				err := auditRepo.Create(ctx, entry)
				if err != nil {
					slog.ErrorContext(ctx, "failed to create audit log", "path", entry.Path, "error", err)
				}
				if done != nil {
					done(err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// getIPAddress extracts IP address from request, checking X-Forwarded-For first
func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header (proxy/load balancer)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr without the port
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// captureBody copies the start of a JSON body, or the parsed form, and
// leaves the request body readable for the handler
func captureBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		formMap := make(map[string]interface{})
		for key, values := range r.PostForm {
			if len(values) == 1 {
				formMap[key] = values[0]
			} else {
				formMap[key] = values
			}
		}
		jsonData, err := json.Marshal(formMap)
		if err != nil {
			return ""
		}
		return string(jsonData)
	}

	// Only the logged prefix is read here; the rest is streamed to the handler
	head, err := io.ReadAll(io.LimitReader(r.Body, maxAuditBody))
	r.Body = prefixedBody{
		Reader: io.MultiReader(bytes.NewReader(head), r.Body),
		Closer: r.Body,
	}
	if err != nil {
		return ""
	}

	return string(head)
}

// prefixedBody replays an already read prefix before the unread request body
type prefixedBody struct {
	io.Reader
	io.Closer
}
