// Package jobs runs the periodic maintenance tasks: a ledger integrity audit
// over every account, a refund sweep for instant bets left pending and the
// opt-in sweep that expires stale deposits.
package jobs

import (
	"context"
	"expvar"
	"fmt"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/ledger"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var (
	metricAuditRunsTotal      = expvar.NewInt("jobs_integrity_audit_runs_total")
	metricAuditBrokenTotal    = expvar.NewInt("jobs_integrity_broken_total")
	metricDepositExpiredTotal = expvar.NewInt("jobs_deposits_expired_total")
	metricStaleRefundedTotal  = expvar.NewInt("jobs_stale_bets_refunded_total")
)

type Verifier interface {
	VerifyIntegrity(ctx context.Context, userID string) (ledger.IntegrityReport, error)
}

type AccountLister interface {
	ListAccountUserIDs(ctx context.Context, limit, offset int) ([]string, error)
}

type DepositExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) ([]store.Deposit, error)
}

type StaleBetRefunder interface {
	RefundStaleBets(ctx context.Context, olderThan time.Time) (int, error)
}

// AuditResult summarises one integrity pass.
type AuditResult struct {
	Checked int
	Broken  []ledger.IntegrityReport
	Errors  int
}

type Scheduler struct {
	cfg      config.JobsConfig
	verifier Verifier
	accounts AccountLister
	deposits DepositExpirer
	bets     StaleBetRefunder
	cron     *cron.Cron
	now      func() time.Time
}

func NewScheduler(cfg config.JobsConfig, v Verifier, accounts AccountLister, deposits DepositExpirer, bets StaleBetRefunder) *Scheduler {
	if cfg.IntegrityAuditBatch <= 0 {
		cfg.IntegrityAuditBatch = 500
	}
	if cfg.StaleBetAge <= 0 {
		cfg.StaleBetAge = 10 * time.Minute
	}
	logger := cronLogger{}
	return &Scheduler{
		cfg:      cfg,
		verifier: v,
		accounts: accounts,
		deposits: deposits,
		bets:     bets,
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		), cron.WithLogger(logger)),
		now: time.Now,
	}
}

// Start registers the configured jobs and starts the cron loop. Jobs run
// with ctx; cancel it and call Stop to shut down.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.IntegrityAuditSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.IntegrityAuditSchedule, func() {
			_, _ = s.RunIntegrityAudit(ctx)
		}); err != nil {
			return fmt.Errorf("schedule integrity audit: %w", err)
		}
	}
	if s.cfg.DepositExpiryEnabled && s.deposits != nil {
		if _, err := s.cron.AddFunc(s.cfg.DepositExpirySchedule, func() {
			_, _ = s.RunDepositExpiry(ctx)
		}); err != nil {
			return fmt.Errorf("schedule deposit expiry: %w", err)
		}
	}
	if s.cfg.StaleBetSweepSchedule != "" && s.bets != nil {
		if _, err := s.cron.AddFunc(s.cfg.StaleBetSweepSchedule, func() {
			_, _ = s.RunStaleBetSweep(ctx)
		}); err != nil {
			return fmt.Errorf("schedule stale bet sweep: %w", err)
		}
	}
	s.cron.Start()
	log.Info().
		Str("integrity_audit", s.cfg.IntegrityAuditSchedule).
		Str("stale_bet_sweep", s.cfg.StaleBetSweepSchedule).
		Bool("deposit_expiry", s.cfg.DepositExpiryEnabled).
		Int("entries", len(s.cron.Entries())).
		Msg("jobs_started")
	return nil
}

// Stop stops scheduling and waits for running jobs or ctx, whichever is
// first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunIntegrityAudit verifies every account's transaction chain, one page of
// accounts at a time.
func (s *Scheduler) RunIntegrityAudit(ctx context.Context) (AuditResult, error) {
	metricAuditRunsTotal.Add(1)
	start := s.now()
	var res AuditResult
	for offset := 0; ; offset += s.cfg.IntegrityAuditBatch {
		ids, err := s.accounts.ListAccountUserIDs(ctx, s.cfg.IntegrityAuditBatch, offset)
		if err != nil {
			log.Error().Err(err).Int("offset", offset).Msg("integrity_audit_list_failed")
			return res, err
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			rep, err := s.verifier.VerifyIntegrity(ctx, id)
			if err != nil {
				res.Errors++
				log.Error().Err(err).Str("user_id", id).Msg("integrity_audit_check_failed")
				continue
			}
			res.Checked++
			if !rep.OK {
				res.Broken = append(res.Broken, rep)
				metricAuditBrokenTotal.Add(1)
				log.Error().
					Str("user_id", id).
					Str("reason", rep.Reason).
					Str("broken_at", rep.BrokenAt).
					Str("balance", rep.Balance.StringFixed(2)).
					Msg("ledger_integrity_broken")
			}
		}
		if len(ids) < s.cfg.IntegrityAuditBatch {
			break
		}
	}
	log.Info().
		Int("checked", res.Checked).
		Int("broken", len(res.Broken)).
		Int("errors", res.Errors).
		Dur("took", s.now().Sub(start)).
		Msg("integrity_audit_done")
	return res, nil
}

func (s *Scheduler) RunDepositExpiry(ctx context.Context) (int, error) {
	expired, err := s.deposits.ExpireStale(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Msg("deposit_expiry_failed")
		return 0, err
	}
	metricDepositExpiredTotal.Add(int64(len(expired)))
	if len(expired) > 0 {
		log.Info().Int("expired", len(expired)).Msg("deposit_expiry_done")
	}
	return len(expired), nil
}

// RunStaleBetSweep refunds instant bets pending for longer than the
// configured age.
func (s *Scheduler) RunStaleBetSweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.StaleBetAge)
	n, err := s.bets.RefundStaleBets(ctx, cutoff)
	metricStaleRefundedTotal.Add(int64(n))
	if err != nil {
		log.Error().Err(err).Int("refunded", n).Msg("stale_bet_sweep_failed")
		return n, err
	}
	if n > 0 {
		log.Warn().Int("refunded", n).Time("cutoff", cutoff).Msg("stale_bet_sweep_done")
	}
	return n, nil
}

// cronLogger routes cron's own logs to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron_" + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron_" + msg)
}
