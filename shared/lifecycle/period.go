package lifecycle

import (
	"math"
	"time"

	"github.com/rentiva/go-rental-saas/shared/models"
)

// Period arithmetic for renewals and extensions. All functions are pure:
// the caller supplies "now" and every result is deterministic.

// RenewalAnchor returns the date a renewal extends from: the existing period
// end when it is still in the future, otherwise now. Renewing a still-valid
// subscription extends it; renewing a lapsed one restarts the clock.
func RenewalAnchor(now time.Time, currentPeriodEnd *time.Time) time.Time {
	if currentPeriodEnd != nil && currentPeriodEnd.After(now) {
		return *currentPeriodEnd
	}
	return now
}

// ComputeRenewal returns the new period end and the amount due for renewing
// the given plan for durationMonths starting at anchor.
//
// Twelve months or more charge the plan's yearly price, falling back to
// monthly x 10 when no yearly price is set (the x10 multiplier bakes in the
// annual discount). Shorter durations charge monthly x months.
func ComputeRenewal(plan *models.Plan, durationMonths int, anchor time.Time) (time.Time, float64) {
	newEnd := anchor.AddDate(0, durationMonths, 0)

	var amount float64
	if durationMonths >= 12 {
		if plan.YearlyPrice != nil {
			amount = *plan.YearlyPrice
		} else {
			amount = plan.Price * 10
		}
	} else {
		amount = plan.Price * float64(durationMonths)
	}

	return newEnd, amount
}

// ComputeExtension returns the new period end after applying extensionDays
// (negative values shorten the period) and the fee due. The extension is
// applied to the existing end when it is still in the future, otherwise to
// now. A fee is charged only for positive extensions, at a flat 30-day-month
// daily rate rounded to two decimals.
func ComputeExtension(now, currentPeriodEnd time.Time, extensionDays int, monthlyPrice float64) (time.Time, float64) {
	newEnd := currentPeriodEnd
	if newEnd.Before(now) {
		newEnd = now
	}
	if extensionDays != 0 {
		newEnd = newEnd.AddDate(0, 0, extensionDays)
	}

	var fee float64
	if extensionDays > 0 {
		dailyRate := monthlyPrice / 30
		fee = math.Round(dailyRate*float64(extensionDays)*100) / 100
	}

	return newEnd, fee
}
