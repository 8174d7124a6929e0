package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentiva/go-rental-saas/shared/models"
)

// fakeStore is an in-memory Store used by the lifecycle tests. Subscriptions
// are keyed by tenant ID since the relation is one-to-one.
type fakeStore struct {
	tenants  map[uuid.UUID]*models.Tenant
	plans    map[uuid.UUID]*models.Plan
	subs     map[uuid.UUID]*models.Subscription
	payments map[uuid.UUID]*models.Payment

	// updateErr, when set for a tenant, is returned from UpdateSubscription
	// to simulate per-tenant write failures.
	updateErr map[uuid.UUID]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenants:   make(map[uuid.UUID]*models.Tenant),
		plans:     make(map[uuid.UUID]*models.Plan),
		subs:      make(map[uuid.UUID]*models.Subscription),
		payments:  make(map[uuid.UUID]*models.Payment),
		updateErr: make(map[uuid.UUID]error),
	}
}

func (f *fakeStore) FindTenant(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

func (f *fakeStore) SetTenantActive(_ context.Context, id uuid.UUID, active bool) error {
	tenant, ok := f.tenants[id]
	if !ok {
		return ErrTenantNotFound
	}
	tenant.IsActive = active
	return nil
}

func (f *fakeStore) FindPlan(_ context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (f *fakeStore) FindDefaultPlan(_ context.Context) (*models.Plan, error) {
	var cheapest *models.Plan
	for _, plan := range f.plans {
		if !plan.IsActive {
			continue
		}
		if cheapest == nil || plan.Price < cheapest.Price {
			cheapest = plan
		}
	}
	if cheapest == nil {
		return nil, ErrPlanNotFound
	}
	return cheapest, nil
}

func (f *fakeStore) FindSubscriptionByTenant(_ context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	sub, ok := f.subs[tenantID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeStore) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	copied := *sub
	f.subs[sub.TenantID] = &copied
	return nil
}

func (f *fakeStore) UpdateSubscription(_ context.Context, sub *models.Subscription) error {
	if err := f.updateErr[sub.TenantID]; err != nil {
		return err
	}
	stored, ok := f.subs[sub.TenantID]
	if !ok {
		return ErrSubscriptionNotFound
	}
	if stored.Version != sub.Version {
		return ErrConflict
	}
	sub.Version++
	copied := *sub
	f.subs[sub.TenantID] = &copied
	return nil
}

func (f *fakeStore) CreatePayment(_ context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakeStore) FindPayment(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakeStore) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status models.PaymentStatus) error {
	payment, ok := f.payments[id]
	if !ok {
		return ErrPaymentNotFound
	}
	payment.Status = status
	return nil
}

func (f *fakeStore) FindLapsedActiveTenants(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for tenantID, sub := range f.subs {
		tenant, ok := f.tenants[tenantID]
		if !ok || !tenant.IsActive {
			continue
		}
		if sub.Status == models.SubscriptionActive && sub.HasLapsed(now) {
			ids = append(ids, tenantID)
		}
	}
	return ids, nil
}

func (f *fakeStore) paymentsForTenant(tenantID uuid.UUID) []*models.Payment {
	var out []*models.Payment
	for _, payment := range f.payments {
		if payment.TenantID == tenantID {
			out = append(out, payment)
		}
	}
	return out
}

// fixedClock returns a constant time; tests advance it by reassigning now.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// recordingSink collects audit events for assertions.
type recordingSink struct {
	events []Event
}

func (r *recordingSink) Record(_ context.Context, event Event) {
	r.events = append(r.events, event)
}

func (r *recordingSink) last() Event {
	return r.events[len(r.events)-1]
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *fakeStore
	sink     *recordingSink
	clock    *fixedClock
	svc      *Service
	tenantID uuid.UUID
	planID   uuid.UUID
}

func newFixture(t *testing.T, monthlyPrice float64, yearlyPrice *float64) *fixture {
	t.Helper()

	store := newFakeStore()
	sink := &recordingSink{}
	clock := &fixedClock{now: testNow}

	tenantID := uuid.New()
	store.tenants[tenantID] = &models.Tenant{ID: tenantID, Name: "Drive Tirana", IsActive: true}

	planID := uuid.New()
	store.plans[planID] = &models.Plan{
		ID:          planID,
		Name:        "standard",
		DisplayName: "Standard",
		Price:       monthlyPrice,
		YearlyPrice: yearlyPrice,
		Currency:    "EUR",
		IsActive:    true,
	}

	return &fixture{
		store:    store,
		sink:     sink,
		clock:    clock,
		svc:      NewService(store, sink, clock),
		tenantID: tenantID,
		planID:   planID,
	}
}

func (fx *fixture) tenant() *models.Tenant {
	return fx.store.tenants[fx.tenantID]
}

func (fx *fixture) sub() *models.Subscription {
	return fx.store.subs[fx.tenantID]
}

func TestStartTrial(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	sub, err := fx.svc.StartTrial(ctx, fx.tenantID, 14)
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionTrial, sub.Status)
	assert.Equal(t, fx.planID, sub.PlanID)
	assert.Equal(t, testNow, sub.CurrentPeriodStart)
	assert.Equal(t, testNow.AddDate(0, 0, 14), sub.CurrentPeriodEnd)
	require.NotNil(t, sub.TrialEndsAt)
	assert.Equal(t, sub.CurrentPeriodEnd, *sub.TrialEndsAt)
	assert.True(t, fx.tenant().IsActive)
	assert.Equal(t, "TRIAL_STARTED", fx.sink.last().Action)
}

func TestStartTrialRejectsNonPositiveDays(t *testing.T) {
	fx := newFixture(t, 20, nil)

	_, err := fx.svc.StartTrial(context.Background(), fx.tenantID, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestStartTrialUnknownTenant(t *testing.T) {
	fx := newFixture(t, 20, nil)

	_, err := fx.svc.StartTrial(context.Background(), uuid.New(), 14)
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestStartTrialResetsCanceledSubscription(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.StartTrial(ctx, fx.tenantID, 14)
	require.NoError(t, err)
	_, err = fx.svc.Cancel(ctx, fx.tenantID, "")
	require.NoError(t, err)
	require.NotNil(t, fx.sub().CanceledAt)

	sub, err := fx.svc.StartTrial(ctx, fx.tenantID, 7)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionTrial, sub.Status)
	assert.Nil(t, sub.CanceledAt)
	assert.True(t, fx.tenant().IsActive)
}

func TestActivateMonthly(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	sub, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 3, "CASH")
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.Equal(t, models.IntervalMonthly, sub.Interval)
	assert.Equal(t, testNow.AddDate(0, 3, 0), sub.CurrentPeriodEnd)
	assert.True(t, fx.tenant().IsActive)

	payments := fx.store.paymentsForTenant(fx.tenantID)
	require.Len(t, payments, 1)
	assert.Equal(t, 60.0, payments[0].Amount)
	assert.Equal(t, models.PaymentPending, payments[0].Status)
	assert.Equal(t, "Subscription activation - Standard (3 months)", payments[0].Description)
}

func TestActivateYearlyFallbackChargesTenMonths(t *testing.T) {
	// No yearly price set: 12 months charge monthly x 10, once.
	fx := newFixture(t, 10, nil)
	ctx := context.Background()

	sub, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 12, "")
	require.NoError(t, err)

	assert.Equal(t, models.IntervalYearly, sub.Interval)
	assert.Equal(t, "MANUAL", sub.PaymentMethod)

	payments := fx.store.paymentsForTenant(fx.tenantID)
	require.Len(t, payments, 1)
	assert.Equal(t, 100.0, payments[0].Amount)
}

func TestActivateUsesYearlyPriceWhenSet(t *testing.T) {
	yearly := 99.0
	fx := newFixture(t, 10, &yearly)

	_, err := fx.svc.Activate(context.Background(), fx.tenantID, fx.planID, 12, "")
	require.NoError(t, err)

	payments := fx.store.paymentsForTenant(fx.tenantID)
	require.Len(t, payments, 1)
	assert.Equal(t, 99.0, payments[0].Amount)
}

func TestActivateExtendsFromFuturePeriodEnd(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.StartTrial(ctx, fx.tenantID, 10)
	require.NoError(t, err)
	futureEnd := testNow.AddDate(0, 0, 10)

	sub, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)

	// Remaining time is kept: the month is added on top of the future end.
	assert.Equal(t, futureEnd.AddDate(0, 1, 0), sub.CurrentPeriodEnd)
	// Period start is left where the trial set it.
	assert.Equal(t, testNow, sub.CurrentPeriodStart)
}

func TestActivateRestartsClockWhenLapsed(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.StartTrial(ctx, fx.tenantID, 10)
	require.NoError(t, err)

	fx.clock.now = testNow.AddDate(0, 2, 0)

	sub, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)
	assert.Equal(t, fx.clock.now.AddDate(0, 1, 0), sub.CurrentPeriodEnd)
}

func TestChangePlanKeepsPeriodAndStatus(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)
	before := fx.sub()

	otherPlan := uuid.New()
	fx.store.plans[otherPlan] = &models.Plan{ID: otherPlan, Name: "premium", DisplayName: "Premium", Price: 50, IsActive: true}

	sub, err := fx.svc.ChangePlan(ctx, fx.tenantID, otherPlan)
	require.NoError(t, err)

	assert.Equal(t, otherPlan, sub.PlanID)
	assert.Equal(t, before.Status, sub.Status)
	assert.Equal(t, before.CurrentPeriodEnd, sub.CurrentPeriodEnd)
}

func TestSuspendBlocksAccess(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)

	sub, err := fx.svc.Suspend(ctx, fx.tenantID, "")
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionSuspended, sub.Status)
	assert.Nil(t, sub.CanceledAt)
	assert.False(t, fx.tenant().IsActive)
	assert.Equal(t, "Suspended by superadmin", fx.sink.last().Details["reason"])
}

func TestSuspendReactivateRoundTrip(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)
	periodEnd := fx.sub().CurrentPeriodEnd

	_, err = fx.svc.Suspend(ctx, fx.tenantID, "payment dispute")
	require.NoError(t, err)
	require.False(t, fx.tenant().IsActive)

	sub, err := fx.svc.Reactivate(ctx, fx.tenantID, 0)
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.Equal(t, periodEnd, sub.CurrentPeriodEnd)
	assert.True(t, fx.tenant().IsActive)
	assert.Empty(t, fx.store.paymentsForTenant(fx.tenantID), "zero-day reactivation must not charge")
}

func TestReactivateWithExtensionChargesDailyRate(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)
	activationPayments := len(fx.store.paymentsForTenant(fx.tenantID))

	_, err = fx.svc.Suspend(ctx, fx.tenantID, "")
	require.NoError(t, err)

	sub, err := fx.svc.Reactivate(ctx, fx.tenantID, 15)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)

	payments := fx.store.paymentsForTenant(fx.tenantID)
	require.Len(t, payments, activationPayments+1)
	var fee *models.Payment
	for _, payment := range payments {
		if payment.Description == "Subscription extension - 15 days" {
			fee = payment
		}
	}
	require.NotNil(t, fee)
	// 20 / 30 per day x 15 days, rounded to cents.
	assert.Equal(t, 10.0, fee.Amount)
	assert.Equal(t, models.PaymentPending, fee.Status)
}

func TestReactivateShorteningIntoThePastDegradesToPastDue(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	// Period still has five days left; shortening by 40 days pushes the
	// prospective end well into the past.
	_, err := fx.svc.StartTrial(ctx, fx.tenantID, 5)
	require.NoError(t, err)
	_, err = fx.svc.Suspend(ctx, fx.tenantID, "")
	require.NoError(t, err)

	sub, err := fx.svc.Reactivate(ctx, fx.tenantID, -40)
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionPastDue, sub.Status)
	assert.Equal(t, testNow.AddDate(0, 0, -35), sub.CurrentPeriodEnd)
	assert.False(t, fx.tenant().IsActive)
	assert.Empty(t, fx.store.paymentsForTenant(fx.tenantID))
}

func TestActivateThenReactivateScenario(t *testing.T) {
	// Monthly price 20: one month costs 20, a 30-day extension costs the
	// same month at the daily rate.
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	sub, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 1, 0), sub.CurrentPeriodEnd)

	payments := fx.store.paymentsForTenant(fx.tenantID)
	require.Len(t, payments, 1)
	assert.Equal(t, 20.0, payments[0].Amount)

	_, err = fx.svc.Suspend(ctx, fx.tenantID, "")
	require.NoError(t, err)

	sub, err = fx.svc.Reactivate(ctx, fx.tenantID, 30)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)

	var fee *models.Payment
	for _, payment := range fx.store.paymentsForTenant(fx.tenantID) {
		if payment.Description == "Subscription extension - 30 days" {
			fee = payment
		}
	}
	require.NotNil(t, fee)
	assert.Equal(t, 20.0, fee.Amount)
}

func TestReactivateLapsedDegradesToPastDue(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)
	_, err = fx.svc.Cancel(ctx, fx.tenantID, "")
	require.NoError(t, err)

	// Two months later the period has long lapsed; shortening it by 40
	// days keeps the prospective end in the past.
	fx.clock.now = testNow.AddDate(0, 2, 0)

	sub, err := fx.svc.Reactivate(ctx, fx.tenantID, -40)
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionPastDue, sub.Status)
	assert.False(t, fx.tenant().IsActive)

	// Negative adjustments never charge.
	for _, payment := range fx.store.paymentsForTenant(fx.tenantID) {
		assert.NotContains(t, payment.Description, "extension")
	}
}

func TestReactivateSurvivesMissingPlan(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)
	_, err = fx.svc.Suspend(ctx, fx.tenantID, "")
	require.NoError(t, err)

	delete(fx.store.plans, fx.planID)

	sub, err := fx.svc.Reactivate(ctx, fx.tenantID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)

	var fee *models.Payment
	for _, payment := range fx.store.paymentsForTenant(fx.tenantID) {
		if payment.Description == "Subscription extension - 5 days" {
			fee = payment
		}
	}
	require.NotNil(t, fee)
	assert.Equal(t, 0.0, fee.Amount, "fee falls back to zero without a plan price")
}

func TestCancelRestampsCanceledAt(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)

	first, err := fx.svc.Cancel(ctx, fx.tenantID, "")
	require.NoError(t, err)
	require.NotNil(t, first.CanceledAt)

	fx.clock.now = testNow.AddDate(0, 0, 3)

	second, err := fx.svc.Cancel(ctx, fx.tenantID, "")
	require.NoError(t, err)
	require.NotNil(t, second.CanceledAt)

	// Repeat cancels overwrite the timestamp; the original is not kept.
	assert.Equal(t, fx.clock.now, *second.CanceledAt)
	assert.NotEqual(t, *first.CanceledAt, *second.CanceledAt)
}

func TestAutoExpireKeepsPeriodDates(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)
	periodEnd := fx.sub().CurrentPeriodEnd

	sub, err := fx.svc.AutoExpire(ctx, fx.tenantID)
	require.NoError(t, err)

	assert.Equal(t, models.SubscriptionPastDue, sub.Status)
	assert.Equal(t, periodEnd, sub.CurrentPeriodEnd)
	assert.False(t, fx.tenant().IsActive)
}

func TestSetStatusValidation(t *testing.T) {
	fx := newFixture(t, 20, nil)

	_, err := fx.svc.SetStatus(context.Background(), fx.tenantID, "PAUSED", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatusStampsCanceledAtOnlyForCanceled(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)

	sub, err := fx.svc.SetStatus(ctx, fx.tenantID, models.SubscriptionCanceled, nil)
	require.NoError(t, err)
	require.NotNil(t, sub.CanceledAt)
	assert.False(t, fx.tenant().IsActive)

	newEnd := testNow.AddDate(0, 6, 0)
	sub, err = fx.svc.SetStatus(ctx, fx.tenantID, models.SubscriptionActive, &newEnd)
	require.NoError(t, err)
	assert.Nil(t, sub.CanceledAt)
	assert.Equal(t, newEnd, sub.CurrentPeriodEnd)
	assert.True(t, fx.tenant().IsActive)
}

func TestTenantAccessFollowsEveryTransition(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	steps := []func() (*models.Subscription, error){
		func() (*models.Subscription, error) { return fx.svc.StartTrial(ctx, fx.tenantID, 14) },
		func() (*models.Subscription, error) { return fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "") },
		func() (*models.Subscription, error) { return fx.svc.Suspend(ctx, fx.tenantID, "") },
		func() (*models.Subscription, error) { return fx.svc.Reactivate(ctx, fx.tenantID, 0) },
		func() (*models.Subscription, error) { return fx.svc.Cancel(ctx, fx.tenantID, "") },
		func() (*models.Subscription, error) { return fx.svc.AutoExpire(ctx, fx.tenantID) },
		func() (*models.Subscription, error) {
			return fx.svc.SetStatus(ctx, fx.tenantID, models.SubscriptionTrial, nil)
		},
	}

	for i, step := range steps {
		sub, err := step()
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, UsableStatus(sub.Status), fx.tenant().IsActive,
			"step %d: tenant access must mirror status %s", i, sub.Status)
	}
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	fx := newFixture(t, 20, nil)

	_, err := fx.svc.RecordPayment(context.Background(), fx.tenantID, 0, "CASH", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordPaymentAppendsSucceededEntry(t *testing.T) {
	fx := newFixture(t, 20, nil)

	payment, err := fx.svc.RecordPayment(context.Background(), fx.tenantID, 35.5, "CASH", "front desk")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentSucceeded, payment.Status)
	assert.Equal(t, 35.5, payment.Amount)
	assert.Equal(t, "CASH", payment.Provider)
	assert.Equal(t, "PAYMENT_ADDED", fx.sink.last().Action)
}

func TestUpdatePaymentStatusPropagatesToSubscription(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)
	payments := fx.store.paymentsForTenant(fx.tenantID)
	require.Len(t, payments, 1)

	fx.clock.now = testNow.AddDate(0, 0, 1)

	payment, err := fx.svc.UpdatePaymentStatus(ctx, payments[0].ID, models.PaymentSucceeded)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSucceeded, payment.Status)

	sub := fx.sub()
	assert.Equal(t, models.PaymentSucceeded, sub.LastPaymentStatus)
	require.NotNil(t, sub.LastPaymentDate)
	assert.Equal(t, fx.clock.now, *sub.LastPaymentDate)
}

func TestUpdatePaymentStatusValidation(t *testing.T) {
	fx := newFixture(t, 20, nil)

	_, err := fx.svc.UpdatePaymentStatus(context.Background(), uuid.New(), "REFUNDED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestConflictSurfacesToCaller(t *testing.T) {
	fx := newFixture(t, 20, nil)
	ctx := context.Background()

	_, err := fx.svc.Activate(ctx, fx.tenantID, fx.planID, 1, "")
	require.NoError(t, err)

	fx.store.updateErr[fx.tenantID] = ErrConflict

	_, err = fx.svc.Suspend(ctx, fx.tenantID, "")
	assert.ErrorIs(t, err, ErrConflict)
}
