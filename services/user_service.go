package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/repositories"
)

// UserService interface defines user business logic
type UserService interface {
	UserLookup
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, form *models.UserForm) (*models.User, error)
	SetHourlyRate(ctx context.Context, id int64, rate decimal.NullDecimal) error
}

// userService implements UserService interface
type userService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, models.NewValidationError("user_id", fmt.Sprintf("invalid user ID: %d", id))
	}
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByEmail retrieves a user by email address
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// ListUsers retrieves all users
func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

// CreateUser validates the form and creates an active user
func (s *userService) CreateUser(ctx context.Context, form *models.UserForm) (*models.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))

	if errors := form.Validate(); len(errors) > 0 {
		return nil, models.NewValidationError("", "validation failed: "+strings.Join(errors, ", "))
	}

	user := &models.User{
		Email:      form.Email,
		Name:       form.Name,
		Role:       form.Role,
		HourlyRate: form.HourlyRate,
		Active:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// SetHourlyRate changes the user's current rate; entries already logged keep their snapshot
func (s *userService) SetHourlyRate(ctx context.Context, id int64, rate decimal.NullDecimal) error {
	if rate.Valid && rate.Decimal.IsNegative() {
		return models.NewValidationError("hourly_rate", "Hourly rate must not be negative")
	}

	if err := s.userRepo.UpdateHourlyRate(ctx, id, rate); err != nil {
		return fmt.Errorf("failed to update hourly rate: %w", err)
	}

	slog.InfoContext(ctx, "hourly rate changed", "user_id", id, "rate", rate.Decimal.String(), "set", rate.Valid)
	return nil
}
