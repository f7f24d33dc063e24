package services

import (
	"github.com/blogem/tasktime/repositories"
)

// Services holds all service instances
type Services struct {
	Task      TaskService
	User      UserService
	TimeLog   TimeLogService
	Timesheet TimesheetService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, summaryConcurrency int) *Services {
	tasks := NewTaskService(repos.Task)
	users := NewUserService(repos.User)

	return &Services{
		Task:      tasks,
		User:      users,
		TimeLog:   NewTimeLogService(repos.TimeLog, tasks, users),
		Timesheet: NewTimesheetService(repos.TimeLog, summaryConcurrency),
	}
}
