package service

import (
	"context"

	"maitred/internal/domain"
	"maitred/internal/events"
	"maitred/internal/models"

	"github.com/rs/zerolog"
)

// UserService wraps the credential store and owns the account deletion
// cascade across the seven day ledgers.
type UserService struct {
	store        domain.CredentialStore
	reservations *ReservationService
	eventBus     domain.EventPublisher
	logger       *zerolog.Logger
}

func NewUserService(store domain.CredentialStore, reservations *ReservationService, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{
		store:        store,
		reservations: reservations,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Login checks credentials against the store.
func (s *UserService) Login(ctx context.Context, username, password string) (bool, error) {
	return s.store.Login(ctx, username, password)
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, username, password string) error {
	return s.store.AddUser(ctx, username, password)
}

// GetAllUsers returns every registered username.
func (s *UserService) GetAllUsers(ctx context.Context) ([]string, error) {
	return s.store.GetAllUsers(ctx)
}

// DeleteAccount removes the account and cancels the user's reservations on
// every weekday. The seven cancellations are independent locked operations
// with no atomicity across days: a failure partway through leaves earlier
// days cancelled and later ones untouched, and is not rolled back or
// retried. Days where the user holds nothing report a failed cancellation,
// which is expected and ignored.
func (s *UserService) DeleteAccount(ctx context.Context, username, password string) error {
	if err := s.store.DeleteUser(ctx, username, password); err != nil {
		return err
	}

	for _, day := range models.Weekdays() {
		outcome := s.reservations.CancelReservation(ctx, username, day)
		if outcome != models.OutcomeCancellationMade && outcome != models.OutcomeCancellationFailed {
			s.logger.Warn().
				Str("username", username).
				Str("day", day).
				Str("outcome", outcome).
				Msg("cascade cancellation reported unexpected outcome")
		}
	}

	if s.eventBus != nil {
		payload := events.ReservationEventPayload{User: username}
		if err := s.eventBus.PublishJSON(events.EventAccountDeleted, payload); err != nil {
			s.logger.Error().Err(err).Msg("publish event error")
		}
	}
	return nil
}
