// Package maintenance runs background retention jobs. Invitation expiry is
// NOT handled here; that transition happens lazily on read. The cleaner only
// deletes terminal records that have aged out of their retention window.
package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/GabeValerio/famodular/internal/services"
	"github.com/GabeValerio/famodular/pkg/logger"
)

const (
	defaultSchedule            = "@daily"
	defaultAuditRetention      = 90 * 24 * time.Hour
	defaultInvitationRetention = 30 * 24 * time.Hour
)

// Cleaner coordinates background retention tasks: pruning stale audit logs
// and deleting long-terminal invitations.
type Cleaner struct {
	audit       *services.AuditService
	invitations *services.InvitationService
	cron        *cron.Cron
	now         func() time.Time
	log         *zap.Logger

	schedule            string
	auditRetention      time.Duration
	invitationRetention time.Duration
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the retention run.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithAuditRetention adjusts how long audit logs are kept.
func WithAuditRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.auditRetention = d
		}
	}
}

// WithInvitationRetention adjusts how long accepted/expired invitations are kept.
func WithInvitationRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.invitationRetention = d
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil dependency
// results in the corresponding job being skipped.
func NewCleaner(audit *services.AuditService, invitations *services.InvitationService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		audit:               audit,
		invitations:         invitations,
		now:                 time.Now,
		schedule:            defaultSchedule,
		auditRetention:      defaultAuditRetention,
		invitationRetention: defaultInvitationRetention,
		log:                 logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the retention job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.audit == nil && c.invitations == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("retention run failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured retention routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	now := c.now()
	var errs error

	if c.audit != nil {
		if purged, err := c.audit.PurgeOlderThan(ctx, now.Add(-c.auditRetention)); err != nil {
			errs = multierr.Append(errs, err)
		} else if purged > 0 {
			c.log.Info("purged audit logs", zap.Int64("count", purged))
		}
	}

	if c.invitations != nil {
		if purged, err := c.invitations.PurgeTerminalOlderThan(ctx, now.Add(-c.invitationRetention)); err != nil {
			errs = multierr.Append(errs, err)
		} else if purged > 0 {
			c.log.Info("purged terminal invitations", zap.Int64("count", purged))
		}
	}

	return errs
}
