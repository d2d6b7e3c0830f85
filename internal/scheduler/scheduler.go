// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// VoucherReconciler credits confirmed voucher redemptions that were never applied
type VoucherReconciler interface {
	ReconcileVouchers(ctx context.Context) (int, error)
}

// Scheduler wraps a cron runner
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// New creates a scheduler whose jobs get at most timeout per run
func New(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
	}
}

// AddVoucherReconcile registers reconciliation at spec. An empty spec disables it.
func (s *Scheduler) AddVoucherReconcile(spec string, r VoucherReconciler) error {
	if spec == "" {
		log.Info().Msg("voucher reconciliation schedule disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.reconcile(r) }); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	log.Info().Str("schedule", spec).Msg("voucher reconciliation scheduled")
	return nil
}

func (s *Scheduler) reconcile(r VoucherReconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := r.ReconcileVouchers(ctx)
	if err != nil {
		log.Error().Err(err).Int("credited", n).Msg("voucher reconciliation failed")
		return
	}
	if n > 0 {
		log.Info().Int("credited", n).Msg("voucher reconciliation credited redemptions")
	}
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("scheduler stopped before running jobs finished")
	}
}
