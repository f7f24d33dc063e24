package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/services"
	"github.com/blogem/tasktime/userctx"
)

// UserController handles user management requests
type UserController struct {
	services *services.Services
}

// NewUserController creates a new user controller
func NewUserController(services *services.Services) *UserController {
	return &UserController{
		services: services,
	}
}

// Me handles GET /api/me
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	user := userctx.GetUser(r.Context())
	renderJSON(w, http.StatusOK, struct {
		*models.User
		RoleName string `json:"role_name"`
	}{User: user, RoleName: user.RoleName()})
}

// Index handles GET /api/users
func (c *UserController) Index(w http.ResponseWriter, r *http.Request) {
	users, err := c.services.User.ListUsers(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	renderJSON(w, http.StatusOK, users)
}

// Create handles POST /api/users
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.UserForm
	if err := decodeJSON(w, r, &form); err != nil {
		renderError(w, r, err)
		return
	}

	user, err := c.services.User.CreateUser(r.Context(), &form)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, user)
}

// SetRate handles PUT /api/users/{id}/rate
func (c *UserController) SetRate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req struct {
		HourlyRate decimal.NullDecimal `json:"hourly_rate"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	if err := c.services.User.SetHourlyRate(r.Context(), id, req.HourlyRate); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
