package controllers

import (
	"net/http"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/services"
)

// TaskController handles task requests
type TaskController struct {
	services *services.Services
}

// NewTaskController creates a new task controller
func NewTaskController(services *services.Services) *TaskController {
	return &TaskController{
		services: services,
	}
}

type taskResponse struct {
	models.Task
	StatusName   string `json:"status_name"`
	PriorityName string `json:"priority_name"`
}

func newTaskResponse(task models.Task) taskResponse {
	return taskResponse{
		Task:         task,
		StatusName:   task.StatusName(),
		PriorityName: task.PriorityName(),
	}
}

// Index handles GET /api/tasks
func (c *TaskController) Index(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.services.Task.ListTasks(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	response := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, newTaskResponse(task))
	}

	renderJSON(w, http.StatusOK, response)
}

// Get handles GET /api/tasks/{id}
func (c *TaskController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	task, err := c.services.Task.GetTask(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, newTaskResponse(*task))
}

// Create handles POST /api/tasks
func (c *TaskController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.TaskForm
	if err := decodeJSON(w, r, &form); err != nil {
		renderError(w, r, err)
		return
	}

	task, err := c.services.Task.CreateTask(r.Context(), &form)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, newTaskResponse(*task))
}

// UpdateStatus handles PUT /api/tasks/{id}/status
func (c *TaskController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req struct {
		Status models.TaskStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	if err := c.services.Task.UpdateStatus(r.Context(), id, req.Status); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
