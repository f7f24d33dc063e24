package userctx

import (
	"context"

	"github.com/blogem/tasktime/models"
)

// Context key type
type contextKey string

const userEmailKey contextKey = "user_email"
const userKey contextKey = "user"

// SetUserEmail adds user email to request context
func SetUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserEmail retrieves user email from request context
func GetUserEmail(ctx context.Context) string {
	email, ok := ctx.Value(userEmailKey).(string)
	if !ok {
		return "anonymous"
	}
	return email
}

// SetUser adds the authenticated user, and its email, to the context
func SetUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return SetUserEmail(ctx, user.Email)
}

// GetUser retrieves the authenticated user from the context, or nil
func GetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
