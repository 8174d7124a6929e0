package lifecycle

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper is the daily batch job that reconciles lapsed subscription periods
// with tenant access. It selects tenants that are still marked active while
// their ACTIVE subscription period has ended and drives each one through
// AutoExpire. Tenants already demoted no longer match the selection, so
// re-running a sweep converges instead of double-applying effects.
type Sweeper struct {
	store    Store
	svc      *Service
	interval time.Duration
	log      *logrus.Entry
}

// SweepResult summarizes a single sweep run.
type SweepResult struct {
	Matched int `json:"matched"`
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}

// NewSweeper creates a sweeper. interval controls the Run loop cadence;
// RunSweep can also be invoked directly by an external timer.
func NewSweeper(store Store, svc *Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{
		store:    store,
		svc:      svc,
		interval: interval,
		log:      logrus.WithField("component", "expiration-sweeper"),
	}
}

// RunSweep executes one sweep pass against the given "now". Each tenant is
// processed independently: a per-tenant failure is logged and counted but
// never aborts the batch.
func (sw *Sweeper) RunSweep(ctx context.Context, now time.Time) (SweepResult, error) {
	ids, err := sw.store.FindLapsedActiveTenants(ctx, now)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Matched: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	sw.log.Infof("Found %d expired tenants. Deactivating...", len(ids))

	for _, tenantID := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := sw.svc.AutoExpire(ctx, tenantID); err != nil {
			result.Failed++
			sw.log.WithField("tenant_id", tenantID).WithError(err).
				Error("Failed to expire subscription")
			continue
		}
		result.Expired++
		sw.log.WithField("tenant_id", tenantID).Info("Tenant deactivated due to expiration")
	}

	sw.log.Infof("Sweep complete: %d matched, %d expired, %d failed",
		result.Matched, result.Expired, result.Failed)
	return result, nil
}

// Run executes a sweep immediately and then on every tick until the context
// is canceled.
func (sw *Sweeper) Run(ctx context.Context) {
	if _, err := sw.RunSweep(ctx, time.Now()); err != nil {
		sw.log.WithError(err).Error("Initial sweep failed")
	}

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := sw.RunSweep(ctx, time.Now()); err != nil {
				sw.log.WithError(err).Error("Sweep failed")
			}
		case <-ctx.Done():
			sw.log.Info("Sweeper shutting down")
			return
		}
	}
}
