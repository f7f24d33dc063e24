package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// dsn enables WAL so aggregation reads can run alongside writes
func dsn(dataSourceName string) string {
	params := "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"
	if strings.Contains(dataSourceName, "?") {
		return dataSourceName + "&" + params
	}
	return dataSourceName + "?" + params
}

// OpenDB initializes the SQLite database connection
func OpenDB(dataSourceName string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dsn(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// Open opens the database at dataSourceName and runs migrations
func Open(dataSourceName string) (*sql.DB, error) {
	conn, err := OpenDB(dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return conn, nil
}

// InitializeDatabase opens the shared database connection and runs migrations
func InitializeDatabase(dataSourceName string) error {
	conn, err := Open(dataSourceName)
	if err != nil {
		return err
	}
	db = conn

	slog.Info("database initialized", "path", dataSourceName)
	return nil
}

// GetDB returns the database connection
func GetDB() *sql.DB {
	return db
}

// CloseDB closes the database connection
func CloseDB() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
