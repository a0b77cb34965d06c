package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maitred/internal/models"
)

// MemoryAvailabilityCache is the in-process cache used standalone or as the
// failover fallback when redis is unreachable.
type MemoryAvailabilityCache struct {
	entries sync.Map
	ttl     time.Duration
}

type memoryEntry struct {
	records   []models.TableRecord
	expiresAt time.Time
}

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{ttl: ttl}
}

func cacheKey(day string, slot int) string {
	return fmt.Sprintf("avail:%s:%d", day, slot)
}

func (c *MemoryAvailabilityCache) Get(ctx context.Context, day string, slot int) ([]models.TableRecord, bool, error) {
	val, ok := c.entries.Load(cacheKey(day, slot))
	if !ok {
		return nil, false, nil
	}
	entry := val.(memoryEntry)
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.entries.Delete(cacheKey(day, slot))
		return nil, false, nil
	}
	records := make([]models.TableRecord, len(entry.records))
	copy(records, entry.records)
	return records, true, nil
}

func (c *MemoryAvailabilityCache) Set(ctx context.Context, day string, slot int, records []models.TableRecord) error {
	snapshot := make([]models.TableRecord, len(records))
	copy(snapshot, records)
	c.entries.Store(cacheKey(day, slot), memoryEntry{
		records:   snapshot,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

func (c *MemoryAvailabilityCache) Invalidate(ctx context.Context, day string) error {
	for _, slot := range slotKeys() {
		c.entries.Delete(cacheKey(day, slot))
	}
	return nil
}

// slotKeys lists every hour a cache entry can exist for, the late slot
// included.
func slotKeys() []int {
	return append(models.DefaultSlots(), models.LateSlot)
}
