// Package runtime hosts the daemon's background maintenance loop.
package runtime

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/psharda/insight/analysis"
	"github.com/psharda/insight/memories"
)

// Maintenance periodically sweeps expired question-cache entries and prunes
// old memories. It runs until its context is cancelled.
type Maintenance struct {
	processor *analysis.Processor
	store     *memories.Store
	schedule  ScheduleParser
	retention time.Duration // 0: keep memories forever
	logger    zerolog.Logger
}

// NewMaintenance creates the maintenance loop. store may be nil when the
// daemon runs without persistence; retention of 0 disables pruning.
func NewMaintenance(processor *analysis.Processor, store *memories.Store, schedule ScheduleParser, retention time.Duration, logger zerolog.Logger) *Maintenance {
	return &Maintenance{
		processor: processor,
		store:     store,
		schedule:  schedule,
		retention: retention,
		logger:    logger.With().Str("component", "maintenance").Logger(),
	}
}

// Start runs the maintenance loop. It blocks until ctx is cancelled.
func (m *Maintenance) Start(ctx context.Context) {
	m.logger.Info().Msg("Starting maintenance loop")

	for {
		next := m.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			m.logger.Info().Msg("Maintenance stopped: context cancelled")
			return
		case <-timer.C:
			m.runOnce(ctx)
		}
	}
}

// runOnce performs a single maintenance pass.
func (m *Maintenance) runOnce(ctx context.Context) {
	swept := m.processor.Cache().Sweep()
	if swept > 0 {
		m.logger.Info().Int("swept", swept).Msg("Expired question analyses removed")
	}

	if m.store != nil && m.retention > 0 {
		cutoff := time.Now().UTC().Add(-m.retention)
		pruned, err := m.store.PruneOlderThan(ctx, cutoff)
		if err != nil {
			m.logger.Error().Err(err).Msg("Failed to prune old memories")
		} else if pruned > 0 {
			m.logger.Info().Int64("pruned", pruned).Msg("Old memories pruned")
		}
	}

	stats := m.processor.History().Stats()
	m.logger.Debug().
		Int("operations", stats.Total).
		Int("degraded", stats.Degraded).
		Int("cache_hits", stats.CacheHits).
		Msg("Maintenance pass complete")
}
