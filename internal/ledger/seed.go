package ledger

import (
	"fmt"
	"os"

	"maitred/internal/models"
)

// DefaultGrid returns the freshly seeded record set for one day: for every
// default slot, tables 1-3 seat two, tables 4-7 seat four and table 8 is the
// eight-seat special table. The late slot 21 is not seeded; only an admin
// schedule change adds it.
func DefaultGrid() []models.TableRecord {
	var records []models.TableRecord
	for _, slot := range models.DefaultSlots() {
		records = append(records, SlotRowSet(slot)...)
	}
	return records
}

// SlotRowSet returns the eight open tables for a single time slot.
func SlotRowSet(slot int) []models.TableRecord {
	rows := make([]models.TableRecord, 0, 8)
	for table := 1; table <= 3; table++ {
		rows = append(rows, models.NewOpenTable(table, 2, slot))
	}
	for table := 4; table <= 7; table++ {
		rows = append(rows, models.NewOpenTable(table, 4, slot))
	}
	rows = append(rows, models.NewOpenTable(models.SpecialTableNumber, 8, slot))
	return rows
}

// EnsureFiles seeds the default grid for every weekday whose ledger file does
// not exist yet. Existing files are left alone so a restart never clobbers
// live reservations.
func (s *Store) EnsureFiles() error {
	for _, day := range models.Weekdays() {
		if _, err := os.Stat(s.Path(day)); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat ledger for %s: %w", day, err)
		}
		if err := s.Save(day, DefaultGrid()); err != nil {
			return fmt.Errorf("seed ledger for %s: %w", day, err)
		}
	}
	return nil
}

// Reset rewrites every weekday ledger back to the default grid, discarding
// all reservations. Used by tooling and tests, never by the server itself.
func (s *Store) Reset() error {
	for _, day := range models.Weekdays() {
		if err := s.Save(day, DefaultGrid()); err != nil {
			return err
		}
	}
	return nil
}
