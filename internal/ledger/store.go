package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"maitred/internal/models"
)

// Store reads and rewrites whole day ledgers under a data directory. Callers
// must hold the day's lock for the full load-mutate-save sequence; the store
// itself does no locking.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the ledger file for a day.
func (s *Store) Path(day string) string {
	return filepath.Join(s.dir, day+".txt")
}

// Load parses every line of the day's ledger in file order. A single
// malformed line aborts the whole load.
func (s *Store) Load(day string) ([]models.TableRecord, error) {
	f, err := os.Open(s.Path(day))
	if err != nil {
		return nil, fmt.Errorf("open ledger for %s: %w", day, err)
	}
	defer f.Close()

	var records []models.TableRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		rec, err := DecodeRecord(line)
		if err != nil {
			return nil, fmt.Errorf("ledger for %s: %w", day, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ledger for %s: %w", day, err)
	}
	return records, nil
}

// Save overwrites the day's ledger with the given records in order. The
// rewrite is not crash-atomic: a crash mid-write can leave a truncated file.
// That matches the persistence contract; callers treat a failed save as a
// failed operation and do not retry.
func (s *Store) Save(day string, records []models.TableRecord) error {
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(EncodeRecord(rec))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(s.Path(day), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write ledger for %s: %w", day, err)
	}
	return nil
}
