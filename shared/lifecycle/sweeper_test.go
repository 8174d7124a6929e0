package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentiva/go-rental-saas/shared/models"
)

func addActiveTenant(store *fakeStore, planID uuid.UUID, periodEnd time.Time) uuid.UUID {
	tenantID := uuid.New()
	store.tenants[tenantID] = &models.Tenant{ID: tenantID, IsActive: true}
	store.subs[tenantID] = &models.Subscription{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		PlanID:             planID,
		Status:             models.SubscriptionActive,
		CurrentPeriodStart: periodEnd.AddDate(0, -1, 0),
		CurrentPeriodEnd:   periodEnd,
	}
	return tenantID
}

func TestSweepExpiresLapsedTenants(t *testing.T) {
	fx := newFixture(t, 20, nil)
	now := testNow

	lapsedA := addActiveTenant(fx.store, fx.planID, now.AddDate(0, 0, -3))
	lapsedB := addActiveTenant(fx.store, fx.planID, now.AddDate(0, 0, -1))
	current := addActiveTenant(fx.store, fx.planID, now.AddDate(0, 0, 5))

	sweeper := NewSweeper(fx.store, fx.svc, 0)
	result, err := sweeper.RunSweep(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Matched)
	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, 0, result.Failed)

	for _, tenantID := range []uuid.UUID{lapsedA, lapsedB} {
		assert.Equal(t, models.SubscriptionPastDue, fx.store.subs[tenantID].Status)
		assert.False(t, fx.store.tenants[tenantID].IsActive)
	}
	assert.Equal(t, models.SubscriptionActive, fx.store.subs[current].Status)
	assert.True(t, fx.store.tenants[current].IsActive)
}

func TestSweepIsIdempotent(t *testing.T) {
	fx := newFixture(t, 20, nil)
	now := testNow

	addActiveTenant(fx.store, fx.planID, now.AddDate(0, 0, -3))

	sweeper := NewSweeper(fx.store, fx.svc, 0)

	first, err := sweeper.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Expired)

	// Expired tenants no longer match the selection, so a second pass is
	// a no-op rather than a double demotion.
	second, err := sweeper.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Matched)
	assert.Equal(t, 0, second.Expired)
}

func TestSweepContinuesAfterTenantFailure(t *testing.T) {
	fx := newFixture(t, 20, nil)
	now := testNow

	broken := addActiveTenant(fx.store, fx.planID, now.AddDate(0, 0, -2))
	healthy := addActiveTenant(fx.store, fx.planID, now.AddDate(0, 0, -2))

	fx.store.updateErr[broken] = errors.New("connection reset")

	sweeper := NewSweeper(fx.store, fx.svc, 0)
	result, err := sweeper.RunSweep(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Matched)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Failed)

	assert.Equal(t, models.SubscriptionPastDue, fx.store.subs[healthy].Status)
	assert.Equal(t, models.SubscriptionActive, fx.store.subs[broken].Status)
}

func TestSweepStopsOnCanceledContext(t *testing.T) {
	fx := newFixture(t, 20, nil)
	now := testNow

	addActiveTenant(fx.store, fx.planID, now.AddDate(0, 0, -2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweeper := NewSweeper(fx.store, fx.svc, 0)
	_, err := sweeper.RunSweep(ctx, now)
	assert.ErrorIs(t, err, context.Canceled)
}
