package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Login reports whether the username/password pair matches a stored account.
func (d *DB) Login(ctx context.Context, username, password string) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? AND password = ?`,
		username, password,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check credentials: %w", err)
	}
	return count > 0, nil
}

// AddUser registers a new account. Both the username and the password must be
// unique across all accounts; the password uniqueness rule is part of the
// inherited account contract, odd as it is.
func (d *DB) AddUser(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidInput
	}

	var count int
	if err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}

	if err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE password = ?`, password,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to check password: %w", err)
	}
	if count > 0 {
		return ErrPasswordTaken
	}

	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO users (username, password) VALUES (?, ?)`, username, password,
	); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	d.logger.Info().Str("username", username).Msg("account created")
	return nil
}

// DeleteUser removes an account after verifying its password. The reserved
// admin identity is never deletable.
func (d *DB) DeleteUser(ctx context.Context, username, password string) error {
	if username == d.adminUser {
		return ErrAdminAccount
	}

	var stored string
	err := d.db.QueryRowContext(ctx,
		`SELECT password FROM users WHERE username = ?`, username,
	).Scan(&stored)
	if err == sql.ErrNoRows {
		return ErrUnknownUser
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if stored != password {
		return ErrWrongPassword
	}

	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM users WHERE username = ?`, username,
	); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	d.logger.Info().Str("username", username).Msg("account deleted")
	return nil
}

// GetAllUsers returns every registered username.
func (d *DB) GetAllUsers(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT username FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		usernames = append(usernames, name)
	}
	return usernames, rows.Err()
}
