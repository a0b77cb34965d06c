package domain

import (
	"context"

	"maitred/internal/models"
)

// CredentialStore is the account collaborator behind the wire protocol's
// login and account commands.
type CredentialStore interface {
	Login(ctx context.Context, username, password string) (bool, error)
	AddUser(ctx context.Context, username, password string) error
	DeleteUser(ctx context.Context, username, password string) error
	GetAllUsers(ctx context.Context) ([]string, error)
}

// AvailabilityCache caches ListAvailable results per day and slot. All calls
// happen while the caller holds the day's ledger lock, so implementations
// need no coherence logic of their own beyond Invalidate on writes.
type AvailabilityCache interface {
	Get(ctx context.Context, day string, slot int) ([]models.TableRecord, bool, error)
	Set(ctx context.Context, day string, slot int, records []models.TableRecord) error
	Invalidate(ctx context.Context, day string) error
}

// EventPublisher delivers domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
