package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentiva/go-rental-saas/shared/models"
)

// UsableStatus reports whether a subscription status grants tenant access.
// This is the single definition of the "usable" set; every transition goes
// through syncTenantAccess so the invariant cannot drift per call site.
func UsableStatus(status models.SubscriptionStatus) bool {
	return status == models.SubscriptionActive || status == models.SubscriptionTrial
}

// syncTenantAccess enforces tenant.IsActive == UsableStatus(status) as the
// post-condition of every status-mutating transition.
func (s *Service) syncTenantAccess(ctx context.Context, tenantID uuid.UUID, status models.SubscriptionStatus) error {
	if err := s.store.SetTenantActive(ctx, tenantID, UsableStatus(status)); err != nil {
		return fmt.Errorf("failed to sync tenant access: %w", err)
	}
	return nil
}
