package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// LeaderboardReconciler periodically re-ranks every leaderboard scope so ranks
// converge even if an incremental update was interrupted.
type LeaderboardReconciler struct {
	scheduler   gocron.Scheduler
	leaderboard LeaderboardService
	interval    time.Duration
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewLeaderboardReconciler creates a reconciler; call Start to schedule it.
func NewLeaderboardReconciler(leaderboard LeaderboardService, interval time.Duration, logger zerolog.Logger) (*LeaderboardReconciler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &LeaderboardReconciler{
		scheduler:   scheduler,
		leaderboard: leaderboard,
		interval:    interval,
		timeout:     time.Minute,
		logger:      logger.With().Str("component", "leaderboard_reconciler").Logger(),
	}, nil
}

// Start registers the reconcile job and starts the scheduler.
func (r *LeaderboardReconciler) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.Run),
		gocron.WithName("leaderboard-reconcile"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	r.scheduler.Start()
	r.logger.Info().Dur("interval", r.interval).Msg("leaderboard reconciler started")
	return nil
}

// Run performs a single reconciliation pass.
func (r *LeaderboardReconciler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.leaderboard.RerankAll(ctx); err != nil {
		r.logger.Error().Err(err).Msg("leaderboard reconciliation failed")
	}
}

// Shutdown stops the scheduler and waits for a running job to finish.
func (r *LeaderboardReconciler) Shutdown() error {
	return r.scheduler.Shutdown()
}
