package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"maitred/internal/domain"
	"maitred/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the failover waits before probing the primary
// again after marking it down.
const recoveryInterval = time.Minute

// FailoverAvailabilityCache serves from the primary (redis) until it fails,
// then switches to the fallback (memory) and periodically probes the primary
// for recovery.
type FailoverAvailabilityCache struct {
	primary  domain.AvailabilityCache
	fallback domain.AvailabilityCache
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverAvailabilityCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("primary availability cache failed, falling back to memory")
	c.isDown.Store(true)
	c.mu.Lock()
	c.lastCheck = time.Now()
	c.mu.Unlock()
}

// shouldProbe reports whether enough time has passed to retry the primary.
func (c *FailoverAvailabilityCache) shouldProbe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastCheck) < recoveryInterval {
		return false
	}
	c.lastCheck = time.Now()
	return true
}

func (c *FailoverAvailabilityCache) Get(ctx context.Context, day string, slot int) ([]models.TableRecord, bool, error) {
	if !c.isDown.Load() {
		records, ok, err := c.primary.Get(ctx, day, slot)
		if err == nil {
			return records, ok, nil
		}
		c.markDown(err)
	} else if c.shouldProbe() {
		records, ok, err := c.primary.Get(ctx, day, slot)
		if err == nil {
			c.isDown.Store(false)
			c.logger.Info().Msg("primary availability cache recovered")
			return records, ok, nil
		}
	}

	return c.fallback.Get(ctx, day, slot)
}

func (c *FailoverAvailabilityCache) Set(ctx context.Context, day string, slot int, records []models.TableRecord) error {
	if !c.isDown.Load() {
		if err := c.primary.Set(ctx, day, slot, records); err != nil {
			c.markDown(err)
		} else {
			return nil
		}
	}
	return c.fallback.Set(ctx, day, slot, records)
}

func (c *FailoverAvailabilityCache) Invalidate(ctx context.Context, day string) error {
	// Invalidation must reach both sides: stale fallback entries would
	// otherwise survive a primary outage window.
	var firstErr error
	if !c.isDown.Load() {
		if err := c.primary.Invalidate(ctx, day); err != nil {
			c.markDown(err)
			firstErr = err
		}
	}
	if err := c.fallback.Invalidate(ctx, day); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
