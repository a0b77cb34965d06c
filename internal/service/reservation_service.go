package service

import (
	"context"
	"errors"

	"maitred/internal/domain"
	"maitred/internal/events"
	"maitred/internal/ledger"
	"maitred/internal/models"

	"github.com/rs/zerolog"
)

// ErrInvalidDay distinguishes an unknown day name from a valid day with no
// free tables in ListAvailable results.
var ErrInvalidDay = errors.New("invalid day")

// ReservationService runs the booking, cancellation, listing and schedule
// change operations on the per-day ledgers. Every operation acquires the
// target day's lock for the whole load-validate-mutate-save sequence, so a
// slow disk write on one day blocks that day only.
type ReservationService struct {
	locks    *ledger.LockRegistry
	store    *ledger.Store
	cache    domain.AvailabilityCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewReservationService(locks *ledger.LockRegistry, store *ledger.Store, cache domain.AvailabilityCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{
		locks:    locks,
		store:    store,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

// MakeReservation books a table and returns the literal outcome string. A
// request whose wantsSpecial flag disagrees with the target table's special
// flag silently fails to match and yields the generic failure outcome; that
// asymmetry is part of the client-visible contract.
func (s *ReservationService) MakeReservation(ctx context.Context, owner, day string, tableNumber, partySize, timeSlot int, wantsSpecial bool, card string) string {
	mu, ok := s.locks.LockFor(day)
	if !ok {
		return models.OutcomeInvalidDay
	}
	if !models.ValidTime(timeSlot) {
		return models.OutcomeInvalidTime
	}

	mu.Lock()
	defer mu.Unlock()

	records, err := s.store.Load(day)
	if err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("load ledger failed")
		return models.OutcomeReservationFailed
	}

	// One reservation per user per day, regardless of which table was asked
	// for.
	for _, rec := range records {
		if rec.Owner == owner {
			return models.OutcomeUserAlreadyHasBooking
		}
	}

	booked := false
	for i := range records {
		rec := &records[i]
		if rec.TableNumber != tableNumber || rec.TimeSlot != timeSlot {
			continue
		}
		if rec.Booked {
			return models.OutcomeTableAlreadyBooked
		}
		if partySize > rec.Capacity {
			return models.OutcomePartyTooBig
		}
		if wantsSpecial {
			if partySize > 8 || partySize <= 4 {
				return models.OutcomePartyCantBookSpecial
			}
			if !rec.Special {
				continue
			}
			if len(card) != models.CardDigits {
				return models.OutcomeInvalidCreditCard
			}
			rec.Book(owner, partySize)
			rec.CardNumber = card
			rec.Surcharge = models.SpecialSurcharge
			booked = true
		} else {
			if rec.Special {
				continue
			}
			rec.Book(owner, partySize)
			booked = true
		}
	}

	if !booked {
		return models.OutcomeReservationFailed
	}

	if err := s.store.Save(day, records); err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("save ledger failed")
		return models.OutcomeReservationFailed
	}
	s.invalidateCache(ctx, day)
	s.publishReservation(events.EventReservationMade, owner, day, tableNumber, timeSlot, partySize, wantsSpecial)

	return models.OutcomeReservationMade
}

// CancelReservation releases every record held by owner on the given day.
func (s *ReservationService) CancelReservation(ctx context.Context, owner, day string) string {
	mu, ok := s.locks.LockFor(day)
	if !ok {
		return models.OutcomeInvalidDay
	}

	mu.Lock()
	defer mu.Unlock()

	records, err := s.store.Load(day)
	if err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("load ledger failed")
		return models.OutcomeCancellationFailed
	}

	cancelled := false
	for i := range records {
		if records[i].Owner == owner {
			records[i].Release()
			cancelled = true
		}
	}

	if !cancelled {
		return models.OutcomeCancellationFailed
	}

	if err := s.store.Save(day, records); err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("save ledger failed")
		return models.OutcomeCancellationFailed
	}
	s.invalidateCache(ctx, day)
	s.publishReservation(events.EventReservationCancelled, owner, day, 0, 0, 0, false)

	return models.OutcomeCancellationMade
}

// ListAvailable returns every unbooked record for the day and slot in ledger
// order. ErrInvalidDay is distinct from an empty (but valid) result.
func (s *ReservationService) ListAvailable(ctx context.Context, day string, timeSlot int) ([]models.TableRecord, error) {
	mu, ok := s.locks.LockFor(day)
	if !ok {
		return nil, ErrInvalidDay
	}

	mu.Lock()
	defer mu.Unlock()

	if s.cache != nil {
		if cached, hit, err := s.cache.Get(ctx, day, timeSlot); err == nil && hit {
			return cached, nil
		}
	}

	records, err := s.store.Load(day)
	if err != nil {
		return nil, err
	}

	available := make([]models.TableRecord, 0, 8)
	for _, rec := range records {
		if rec.TimeSlot == timeSlot && !rec.Booked {
			available = append(available, rec)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, day, timeSlot, available); err != nil {
			s.logger.Warn().Err(err).Str("day", day).Msg("availability cache set failed")
		}
	}
	return available, nil
}

// AdminChange extends or shortens the day's closing hours. Closing later
// appends the slot-21 row set and force-resets every record whose table
// number is 8; closing earlier removes all slot-21 rows and force-resets
// every record whose capacity is 8. The two reset tests differ on purpose:
// they are inherited behavior, and the closing-later reset clears special
// table bookings on every slot of the day, not just slot 21.
func (s *ReservationService) AdminChange(ctx context.Context, day string, closingLater bool) string {
	mu, ok := s.locks.LockFor(day)
	if !ok {
		return models.OutcomeInvalidDay
	}

	mu.Lock()
	defer mu.Unlock()

	records, err := s.store.Load(day)
	if err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("load ledger failed")
		return models.OutcomeChangeFailed
	}

	if closingLater {
		records = append(records, ledger.SlotRowSet(models.LateSlot)...)
		for i := range records {
			if records[i].TableNumber == models.SpecialTableNumber {
				records[i].Release()
			}
		}
	} else {
		kept := records[:0]
		for _, rec := range records {
			if rec.TimeSlot != models.LateSlot {
				kept = append(kept, rec)
			}
		}
		records = kept
		for i := range records {
			if records[i].Capacity == 8 {
				records[i].Release()
			}
		}
	}

	if err := s.store.Save(day, records); err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("save ledger failed")
		return models.OutcomeChangeFailed
	}
	s.invalidateCache(ctx, day)
	s.publishSchedule(day, closingLater)

	return models.OutcomeChangeSuccessful
}

// Occupancy reports booked and total table counts per slot for one day,
// used by the monitoring API and the export worker.
func (s *ReservationService) Occupancy(ctx context.Context, day string) (map[int][2]int, error) {
	mu, ok := s.locks.LockFor(day)
	if !ok {
		return nil, ErrInvalidDay
	}

	mu.Lock()
	defer mu.Unlock()

	records, err := s.store.Load(day)
	if err != nil {
		return nil, err
	}

	counts := make(map[int][2]int)
	for _, rec := range records {
		c := counts[rec.TimeSlot]
		if rec.Booked {
			c[0]++
		}
		c[1]++
		counts[rec.TimeSlot] = c
	}
	return counts, nil
}

func (s *ReservationService) invalidateCache(ctx context.Context, day string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, day); err != nil {
		s.logger.Warn().Err(err).Str("day", day).Msg("availability cache invalidate failed")
	}
}

func (s *ReservationService) publishReservation(eventType, owner, day string, table, slot, partySize int, special bool) {
	if s.eventBus == nil {
		return
	}
	payload := events.ReservationEventPayload{
		User:      owner,
		Day:       day,
		Table:     table,
		TimeSlot:  slot,
		PartySize: partySize,
		Special:   special,
	}
	if special {
		payload.Surcharge = models.SpecialSurcharge
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

func (s *ReservationService) publishSchedule(day string, closingLater bool) {
	if s.eventBus == nil {
		return
	}
	payload := events.ScheduleEventPayload{Day: day, ClosingLater: closingLater}
	if err := s.eventBus.PublishJSON(events.EventScheduleChanged, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", events.EventScheduleChanged).Msg("publish event error")
	}
}
