package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	TimeLog TimeLogRepository
	Task    TaskRepository
	User    UserRepository
	Audit   AuditRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		TimeLog: NewTimeLogRepository(db),
		Task:    NewTaskRepository(db),
		User:    NewUserRepository(db),
		Audit:   NewAuditRepository(db),
	}
}
