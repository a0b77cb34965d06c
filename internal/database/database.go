package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "github.com/mattn/go-sqlite3"
)

// Sentinel errors surfaced by the credential store. The dispatcher collapses
// all of them to the protocol's generic "Failed" reply; they exist so logs
// and tests can tell the cases apart.
var (
	ErrInvalidInput  = errors.New("username and password are required")
	ErrUsernameTaken = errors.New("username is already taken")
	ErrPasswordTaken = errors.New("password is already taken")
	ErrUnknownUser   = errors.New("no such username")
	ErrWrongPassword = errors.New("password does not match")
	ErrAdminAccount  = errors.New("the admin account cannot be deleted")
)

// DB is the SQLite-backed credential store.
type DB struct {
	db        *sql.DB
	adminUser string
	logger    *zerolog.Logger
}

// NewDB opens (creating if needed) the users database at path. adminUser is
// the reserved identity that DeleteUser refuses to remove.
func NewDB(path, adminUser string, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("users database initialized")
	return &DB{db: db, adminUser: adminUser, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT UNIQUE NOT NULL,
            password TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
