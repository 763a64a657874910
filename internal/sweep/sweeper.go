// Package sweep wires up the cron job that periodically re-runs the match
// engine for every complete engineer, picking up roles added since their
// last run.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/matchforge/matchforge/internal/match"
	"github.com/matchforge/matchforge/internal/status"
	"github.com/matchforge/matchforge/internal/store"
)

// Store lists the engineers eligible for sweeping.
type Store interface {
	ListEngineersByStatus(ctx context.Context, st status.Engineer) ([]*store.Engineer, error)
}

// Matcher is the engine entry point the sweep drives.
type Matcher interface {
	ForEngineer(ctx context.Context, engineerID uuid.UUID) (*match.Result, error)
}

// Sweeper runs the incremental matching cycle on a cron interval. Cycles
// are safely re-entrant: an overlapping run can only waste duplicate
// scoring calls, pair uniqueness in the store keeps the data clean.
type Sweeper struct {
	cron     *cron.Cron
	store    Store
	matcher  Matcher
	interval time.Duration
	logger   *zap.Logger
}

func New(st Store, matcher Matcher, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		cron:     cron.New(),
		store:    st,
		matcher:  matcher,
		interval: interval,
		logger:   log,
	}
}

// Start registers the cycle and starts the scheduler. One cycle also runs
// immediately so fresh deployments do not wait a full interval.
func (s *Sweeper) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() {
		s.RunCycle(ctx)
	}); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("sweep started", zap.Duration("interval", s.interval))

	go s.RunCycle(ctx)
	return nil
}

// Stop shuts the scheduler down. A running cycle finishes on its own.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	s.logger.Info("sweep stopped")
}

// RunCycle matches every complete engineer, isolating per-engineer
// failures.
func (s *Sweeper) RunCycle(ctx context.Context) {
	engineers, err := s.store.ListEngineersByStatus(ctx, status.EngineerComplete)
	if err != nil {
		s.logger.Error("sweep listing failed", zap.Error(err))
		return
	}
	if len(engineers) == 0 {
		return
	}

	inserted := 0
	for _, eng := range engineers {
		res, err := s.matcher.ForEngineer(ctx, eng.ID)
		if err != nil {
			s.logger.Error("sweep engineer failed",
				zap.String("engineer_id", eng.ID.String()), zap.Error(err))
			continue
		}
		inserted += res.Inserted
	}
	s.logger.Info("sweep cycle complete",
		zap.Int("engineers", len(engineers)),
		zap.Int("new_matches", inserted))
}
