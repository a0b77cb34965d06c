package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", "Admin", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAddUserAndLogin(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AddUser(ctx, "steve", "hunter2"))

	ok, err := db.Login(ctx, "steve", "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.Login(ctx, "steve", "HUNTER2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.Login(ctx, "nobody", "hunter2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddUserValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	assert.ErrorIs(t, db.AddUser(ctx, "", "pw"), ErrInvalidInput)
	assert.ErrorIs(t, db.AddUser(ctx, "user", ""), ErrInvalidInput)

	require.NoError(t, db.AddUser(ctx, "steve", "hunter2"))
	assert.ErrorIs(t, db.AddUser(ctx, "steve", "other"), ErrUsernameTaken)
	assert.ErrorIs(t, db.AddUser(ctx, "other", "hunter2"), ErrPasswordTaken)
}

func TestDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AddUser(ctx, "steve", "hunter2"))

	assert.ErrorIs(t, db.DeleteUser(ctx, "nobody", "pw"), ErrUnknownUser)
	assert.ErrorIs(t, db.DeleteUser(ctx, "steve", "wrong"), ErrWrongPassword)

	require.NoError(t, db.DeleteUser(ctx, "steve", "hunter2"))

	ok, err := db.Login(ctx, "steve", "hunter2")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again reports the account as unknown.
	assert.ErrorIs(t, db.DeleteUser(ctx, "steve", "hunter2"), ErrUnknownUser)
}

func TestDeleteUserProtectsAdmin(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.AddUser(ctx, "Admin", "adminpw"))
	assert.ErrorIs(t, db.DeleteUser(ctx, "Admin", "adminpw"), ErrAdminAccount)

	ok, err := db.Login(ctx, "Admin", "adminpw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetAllUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	all, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, db.AddUser(ctx, "alice", "pw1"))
	require.NoError(t, db.AddUser(ctx, "bob", "pw2"))

	all, err = db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, all)
}

func TestNewDBCreatesDirectory(t *testing.T) {
	logger := zerolog.Nop()
	path := filepath.Join(t.TempDir(), "nested", "users.db")
	db, err := NewDB(path, "Admin", &logger)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
