package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentiva/go-rental-saas/shared/models"
)

// Service applies subscription lifecycle transitions. It is the only writer
// of subscription rows; every status change runs the tenant access sync and
// emits an audit event. Statuses form a tag set rather than a one-way
// automaton: CANCELED and PAST_DUE are both recoverable via Reactivate.
type Service struct {
	store Store
	audit Sink
	clock Clock
}

// NewService creates a lifecycle service. A nil sink discards audit events
// and a nil clock falls back to the system clock.
func NewService(store Store, audit Sink, clock Clock) *Service {
	if audit == nil {
		audit = NopSink{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{store: store, audit: audit, clock: clock}
}

type actorKey struct{}

// WithActor attaches the acting operator to the context so transitions can
// attribute their audit events.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok {
		return actor
	}
	return "system"
}

// GetSubscription returns the tenant's subscription row.
func (s *Service) GetSubscription(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	return s.findSubscription(ctx, tenantID)
}

// StartTrial creates (or reuses) the tenant's subscription and puts it in
// TRIAL with a period of trialDays from now. A missing subscription row is
// created against the default plan.
func (s *Service) StartTrial(ctx context.Context, tenantID uuid.UUID, trialDays int) (*models.Subscription, error) {
	if trialDays <= 0 {
		return nil, ErrInvalidDuration
	}
	if _, err := s.store.FindTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	trialEnd := now.AddDate(0, 0, trialDays)

	sub, err := s.store.FindSubscriptionByTenant(ctx, tenantID)
	switch {
	case errors.Is(err, ErrSubscriptionNotFound):
		plan, err := s.store.FindDefaultPlan(ctx)
		if err != nil {
			return nil, err
		}
		sub = &models.Subscription{
			TenantID:           tenantID,
			PlanID:             plan.ID,
			Status:             models.SubscriptionTrial,
			Interval:           models.IntervalMonthly,
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   trialEnd,
			TrialEndsAt:        &trialEnd,
		}
		if err := s.store.CreateSubscription(ctx, sub); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		sub.Status = models.SubscriptionTrial
		sub.CurrentPeriodStart = now
		sub.CurrentPeriodEnd = trialEnd
		sub.TrialEndsAt = &trialEnd
		sub.CanceledAt = nil
		if err := s.store.UpdateSubscription(ctx, sub); err != nil {
			return nil, err
		}
	}

	if err := s.syncTenantAccess(ctx, tenantID, sub.Status); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, Event{
		TenantID:   tenantID,
		Action:     "TRIAL_STARTED",
		Resource:   "SUBSCRIPTION",
		ResourceID: sub.ID.String(),
		NewStatus:  string(sub.Status),
		Actor:      actorFrom(ctx),
		Details:    map[string]interface{}{"trial_days": trialDays},
		Timestamp:  now,
	})
	return sub, nil
}

// Activate puts the tenant's subscription in ACTIVE for durationMonths on
// the given plan, creating the subscription row if absent. The new period is
// anchored at the existing period end when that end is still in the future,
// so activating a still-valid subscription extends it rather than restarting
// the clock. A PENDING payment ledger entry records the amount due.
func (s *Service) Activate(ctx context.Context, tenantID, planID uuid.UUID, durationMonths int, paymentMethod string) (*models.Subscription, error) {
	if durationMonths <= 0 {
		return nil, ErrInvalidDuration
	}
	if _, err := s.store.FindTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	plan, err := s.store.FindPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if paymentMethod == "" {
		paymentMethod = "MANUAL"
	}

	now := s.clock.Now()

	sub, err := s.store.FindSubscriptionByTenant(ctx, tenantID)
	if err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	var currentEnd *time.Time
	if sub != nil {
		currentEnd = &sub.CurrentPeriodEnd
	}
	anchor := RenewalAnchor(now, currentEnd)
	newEnd, amount := ComputeRenewal(plan, durationMonths, anchor)

	interval := models.IntervalMonthly
	if durationMonths >= 12 {
		interval = models.IntervalYearly
	}

	var oldStatus models.SubscriptionStatus
	if sub == nil {
		sub = &models.Subscription{
			TenantID:           tenantID,
			PlanID:             planID,
			Status:             models.SubscriptionActive,
			Interval:           interval,
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   newEnd,
			PaymentMethod:      paymentMethod,
			LastPaymentStatus:  models.PaymentPending,
			LastPaymentDate:    &now,
		}
		if err := s.store.CreateSubscription(ctx, sub); err != nil {
			return nil, err
		}
	} else {
		oldStatus = sub.Status
		sub.PlanID = planID
		sub.Status = models.SubscriptionActive
		sub.Interval = interval
		sub.CurrentPeriodEnd = newEnd
		sub.PaymentMethod = paymentMethod
		sub.LastPaymentStatus = models.PaymentPending
		sub.LastPaymentDate = &now
		sub.CanceledAt = nil
		if err := s.store.UpdateSubscription(ctx, sub); err != nil {
			return nil, err
		}
	}

	if err := s.syncTenantAccess(ctx, tenantID, sub.Status); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TenantID:    tenantID,
		Amount:      amount,
		Currency:    plan.Currency,
		Provider:    paymentMethod,
		Status:      models.PaymentPending,
		Description: fmt.Sprintf("Subscription activation - %s (%d months)", plan.DisplayName, durationMonths),
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, Event{
		TenantID:   tenantID,
		Action:     "SUBSCRIPTION_ACTIVATED",
		Resource:   "SUBSCRIPTION",
		ResourceID: sub.ID.String(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(sub.Status),
		Actor:      actorFrom(ctx),
		Details: map[string]interface{}{
			"plan_id":         planID.String(),
			"duration_months": durationMonths,
			"amount":          amount,
			"payment_method":  paymentMethod,
		},
		Timestamp: now,
	})
	return sub, nil
}

// ChangePlan switches the subscription's plan without touching the period
// dates or the status.
func (s *Service) ChangePlan(ctx context.Context, tenantID, planID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.findSubscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindPlan(ctx, planID); err != nil {
		return nil, err
	}

	oldPlan := sub.PlanID
	sub.PlanID = planID
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	// Status is unchanged, so the access sync is skipped here.
	s.audit.Record(ctx, Event{
		TenantID:   tenantID,
		Action:     "PLAN_CHANGED",
		Resource:   "SUBSCRIPTION",
		ResourceID: sub.ID.String(),
		Actor:      actorFrom(ctx),
		Details: map[string]interface{}{
			"old_plan_id": oldPlan.String(),
			"new_plan_id": planID.String(),
		},
		Timestamp: s.clock.Now(),
	})
	return sub, nil
}

// Suspend blocks tenant access while keeping all data.
func (s *Service) Suspend(ctx context.Context, tenantID uuid.UUID, reason string) (*models.Subscription, error) {
	sub, err := s.findSubscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "Suspended by superadmin"
	}

	oldStatus := sub.Status
	sub.Status = models.SubscriptionSuspended
	sub.CanceledAt = nil
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.syncTenantAccess(ctx, tenantID, sub.Status); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, Event{
		TenantID:   tenantID,
		Action:     "SUBSCRIPTION_SUSPENDED",
		Resource:   "SUBSCRIPTION",
		ResourceID: sub.ID.String(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(sub.Status),
		Actor:      actorFrom(ctx),
		Details:    map[string]interface{}{"reason": reason},
		Timestamp:  s.clock.Now(),
	})
	return sub, nil
}

// Cancel marks the subscription CANCELED and stamps canceledAt with the
// current time. Canceling an already-canceled subscription is accepted and
// re-stamps canceledAt, losing the original timestamp; that matches the
// long-standing behavior of the admin tooling and is asserted in tests.
func (s *Service) Cancel(ctx context.Context, tenantID uuid.UUID, reason string) (*models.Subscription, error) {
	sub, err := s.findSubscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "Canceled by superadmin"
	}

	now := s.clock.Now()
	oldStatus := sub.Status
	sub.Status = models.SubscriptionCanceled
	sub.CanceledAt = &now
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.syncTenantAccess(ctx, tenantID, sub.Status); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, Event{
		TenantID:   tenantID,
		Action:     "SUBSCRIPTION_CANCELED",
		Resource:   "SUBSCRIPTION",
		ResourceID: sub.ID.String(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(sub.Status),
		Actor:      actorFrom(ctx),
		Details:    map[string]interface{}{"reason": reason},
		Timestamp:  now,
	})
	return sub, nil
}

// Reactivate restores a suspended/canceled/past-due subscription, optionally
// extending (or shortening, with negative days) the period. The prospective
// period end is computed first and only then decides the resulting status:
// when the adjusted end is still in the past the transition degrades to
// PAST_DUE instead of ACTIVE, so an operator cannot reactivate into a
// future-active state with a lapsed period. A fee is charged only for
// positive extensions.
func (s *Service) Reactivate(ctx context.Context, tenantID uuid.UUID, extensionDays int) (*models.Subscription, error) {
	sub, err := s.findSubscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var monthlyPrice float64
	if extensionDays > 0 {
		// Daily rate falls back to zero when the plan is gone; the
		// extension itself still applies.
		if plan, err := s.store.FindPlan(ctx, sub.PlanID); err == nil {
			monthlyPrice = plan.Price
		} else if !errors.Is(err, ErrPlanNotFound) {
			return nil, err
		}
	}

	newEnd, fee := ComputeExtension(now, sub.CurrentPeriodEnd, extensionDays, monthlyPrice)

	oldStatus := sub.Status
	if newEnd.Before(now) {
		sub.Status = models.SubscriptionPastDue
		sub.CurrentPeriodEnd = newEnd
	} else {
		sub.Status = models.SubscriptionActive
		sub.CurrentPeriodEnd = newEnd
		sub.CanceledAt = nil
	}
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.syncTenantAccess(ctx, tenantID, sub.Status); err != nil {
		return nil, err
	}

	if extensionDays > 0 {
		payment := &models.Payment{
			TenantID:    tenantID,
			Amount:      fee,
			Currency:    "EUR",
			Provider:    "MANUAL",
			Status:      models.PaymentPending,
			Description: fmt.Sprintf("Subscription extension - %d days", extensionDays),
		}
		if err := s.store.CreatePayment(ctx, payment); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, Event{
		TenantID:   tenantID,
		Action:     "SUBSCRIPTION_REACTIVATED",
		Resource:   "SUBSCRIPTION",
		ResourceID: sub.ID.String(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(sub.Status),
		Actor:      actorFrom(ctx),
		Details: map[string]interface{}{
			"extension_days": extensionDays,
			"new_period_end": newEnd,
		},
		Timestamp: now,
	})
	return sub, nil
}

// AutoExpire demotes a lapsed subscription to PAST_DUE without touching the
// period dates. Invoked by the expiration sweeper; the selection predicate
// (ACTIVE and lapsed) lives in the sweep query, the transition itself is
// total.
func (s *Service) AutoExpire(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.findSubscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	oldStatus := sub.Status
	sub.Status = models.SubscriptionPastDue
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.syncTenantAccess(ctx, tenantID, sub.Status); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, Event{
		TenantID:   tenantID,
		Action:     "SUBSCRIPTION_EXPIRED",
		Resource:   "SUBSCRIPTION",
		ResourceID: sub.ID.String(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(sub.Status),
		Actor:      actorFrom(ctx),
		Details:    map[string]interface{}{"period_end": sub.CurrentPeriodEnd},
		Timestamp:  s.clock.Now(),
	})
	return sub, nil
}

// SetStatus overrides the subscription status directly, for manual
// correction by a superadmin. canceledAt is stamped when the new status is
// CANCELED and cleared otherwise, keeping its set-iff-canceled invariant.
func (s *Service) SetStatus(ctx context.Context, tenantID uuid.UUID, status models.SubscriptionStatus, endDate *time.Time) (*models.Subscription, error) {
	switch status {
	case models.SubscriptionTrial, models.SubscriptionActive, models.SubscriptionPastDue,
		models.SubscriptionSuspended, models.SubscriptionCanceled:
	default:
		return nil, ErrInvalidStatus
	}

	sub, err := s.findSubscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	oldStatus := sub.Status
	sub.Status = status
	if endDate != nil {
		sub.CurrentPeriodEnd = *endDate
	}
	if status == models.SubscriptionCanceled {
		sub.CanceledAt = &now
	} else {
		sub.CanceledAt = nil
	}
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.syncTenantAccess(ctx, tenantID, sub.Status); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, Event{
		TenantID:   tenantID,
		Action:     "SUBSCRIPTION_STATUS_OVERRIDDEN",
		Resource:   "SUBSCRIPTION",
		ResourceID: sub.ID.String(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(sub.Status),
		Actor:      actorFrom(ctx),
		Timestamp:  now,
	})
	return sub, nil
}

// RecordPayment appends a SUCCEEDED ledger entry for an out-of-band payment
// (cash, bank transfer).
func (s *Service) RecordPayment(ctx context.Context, tenantID uuid.UUID, amount float64, paymentMethod, notes string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.store.FindTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TenantID:    tenantID,
		Amount:      amount,
		Currency:    "EUR",
		Provider:    paymentMethod,
		Status:      models.PaymentSucceeded,
		Description: notes,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, Event{
		TenantID:   tenantID,
		Action:     "PAYMENT_ADDED",
		Resource:   "SUBSCRIPTION_PAYMENT",
		ResourceID: payment.ID.String(),
		Actor:      actorFrom(ctx),
		Details: map[string]interface{}{
			"amount":         amount,
			"payment_method": paymentMethod,
			"notes":          notes,
		},
		Timestamp: s.clock.Now(),
	})
	return payment, nil
}

// UpdatePaymentStatus moves a ledger entry to a new status. When the entry
// reaches SUCCEEDED the linked subscription's last-payment fields are
// refreshed so the billing view reflects the settled payment.
func (s *Service) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status models.PaymentStatus) (*models.Payment, error) {
	switch status {
	case models.PaymentPending, models.PaymentSucceeded, models.PaymentFailed:
	default:
		return nil, ErrInvalidStatus
	}

	payment, err := s.store.FindPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	oldStatus := payment.Status
	if err := s.store.UpdatePaymentStatus(ctx, paymentID, status); err != nil {
		return nil, err
	}
	payment.Status = status

	if status == models.PaymentSucceeded {
		now := s.clock.Now()
		sub, err := s.store.FindSubscriptionByTenant(ctx, payment.TenantID)
		switch {
		case errors.Is(err, ErrSubscriptionNotFound):
			// Orphan ledger entry; nothing to propagate.
		case err != nil:
			return nil, err
		default:
			sub.LastPaymentStatus = models.PaymentSucceeded
			sub.LastPaymentDate = &now
			if err := s.store.UpdateSubscription(ctx, sub); err != nil {
				return nil, err
			}
		}
	}

	s.audit.Record(ctx, Event{
		TenantID:   payment.TenantID,
		Action:     "PAYMENT_STATUS_UPDATED",
		Resource:   "SUBSCRIPTION_PAYMENT",
		ResourceID: paymentID.String(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(status),
		Actor:      actorFrom(ctx),
		Timestamp:  s.clock.Now(),
	})
	return payment, nil
}

func (s *Service) findSubscription(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.store.FindSubscriptionByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
