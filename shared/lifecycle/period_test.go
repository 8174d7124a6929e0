package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rentiva/go-rental-saas/shared/models"
)

func TestRenewalAnchor(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	assert.Equal(t, now, RenewalAnchor(now, nil), "no existing period anchors at now")
	assert.Equal(t, now, RenewalAnchor(now, &past), "lapsed period restarts the clock")
	assert.Equal(t, future, RenewalAnchor(now, &future), "remaining time is preserved")
}

func TestComputeRenewalMonthly(t *testing.T) {
	anchor := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	plan := &models.Plan{Price: 20}

	newEnd, amount := ComputeRenewal(plan, 3, anchor)
	assert.Equal(t, anchor.AddDate(0, 3, 0), newEnd)
	assert.Equal(t, 60.0, amount)
}

func TestComputeRenewalYearlyFallback(t *testing.T) {
	// Without a yearly price, a year costs ten monthly payments, charged
	// once for the whole duration.
	anchor := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	plan := &models.Plan{Price: 10}

	newEnd, amount := ComputeRenewal(plan, 12, anchor)
	assert.Equal(t, anchor.AddDate(1, 0, 0), newEnd)
	assert.Equal(t, 100.0, amount)

	// The discount also applies to anything at or past twelve months.
	_, amount = ComputeRenewal(plan, 18, anchor)
	assert.Equal(t, 100.0, amount)
}

func TestComputeRenewalYearlyPrice(t *testing.T) {
	anchor := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	yearly := 199.0
	plan := &models.Plan{Price: 20, YearlyPrice: &yearly}

	_, amount := ComputeRenewal(plan, 12, anchor)
	assert.Equal(t, 199.0, amount)

	// Below twelve months the monthly price applies even with a yearly set.
	_, amount = ComputeRenewal(plan, 11, anchor)
	assert.Equal(t, 220.0, amount)
}

func TestComputeExtensionFromFutureEnd(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 10)

	newEnd, fee := ComputeExtension(now, end, 15, 20)
	assert.Equal(t, end.AddDate(0, 0, 15), newEnd)
	assert.Equal(t, 10.0, fee)
}

func TestComputeExtensionFromLapsedEnd(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, -1, 0)

	newEnd, fee := ComputeExtension(now, end, 7, 30)
	assert.Equal(t, now.AddDate(0, 0, 7), newEnd, "lapsed periods extend from now")
	assert.Equal(t, 7.0, fee)
}

func TestComputeExtensionFeeRounding(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// 25 / 30 = 0.8333... per day; 7 days = 5.8333... rounds to 5.83.
	_, fee := ComputeExtension(now, now.AddDate(0, 1, 0), 7, 25)
	assert.Equal(t, 5.83, fee)
}

func TestComputeExtensionNegativeDays(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 1, 0)

	newEnd, fee := ComputeExtension(now, end, -10, 20)
	assert.Equal(t, end.AddDate(0, 0, -10), newEnd)
	assert.Equal(t, 0.0, fee, "shortening never charges")
}

func TestComputeExtensionZeroDays(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 5)

	newEnd, fee := ComputeExtension(now, end, 0, 20)
	assert.Equal(t, end, newEnd)
	assert.Equal(t, 0.0, fee)
}
