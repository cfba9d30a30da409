// Package jobs runs scheduled maintenance on reservations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/service"
)

// Sweeping is what the sweeper schedules; *service.ReservationService
// implements it.
type Sweeping interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// Parser accepts standard five-field specs, an optional leading seconds
// field and descriptors such as "@every 1m".
var Parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Sweeper advances reservations on a cron schedule. Overlapping runs are
// skipped rather than queued.
type Sweeper struct {
	cron    *cron.Cron
	target  Sweeping
	log     *zap.Logger
	timeout time.Duration
	changed func(ctx context.Context, res service.SweepResult)
}

// NewSweeper validates spec and prepares the schedule; Start begins it.
func NewSweeper(spec string, target Sweeping, log *zap.Logger) (*Sweeper, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sweeper{
		target:  target,
		log:     log,
		timeout: time.Minute,
	}
	s.cron = cron.New(
		cron.WithParser(Parser),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger)),
	)
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// OnChange registers fn to run after a sweep that moved at least one
// reservation. Call it before Start.
func (s *Sweeper) OnChange(fn func(ctx context.Context, res service.SweepResult)) {
	s.changed = fn
}

func (s *Sweeper) Start() {
	s.log.Info("reservation sweeper started")
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish or ctx
// to expire.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	res, err := s.target.Sweep(ctx)
	if err != nil {
		s.log.Error("reservation sweep failed", zap.Error(err))
		return
	}
	if res.Activated == 0 && res.Completed == 0 {
		return
	}
	s.log.Info("reservation sweep",
		zap.Int("activated", res.Activated),
		zap.Int("completed", res.Completed),
		zap.Duration("took", time.Since(start)))
	if s.changed != nil {
		s.changed(ctx, res)
	}
}
