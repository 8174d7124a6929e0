package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentiva/go-rental-saas/shared/lifecycle"
	"github.com/rentiva/go-rental-saas/shared/models"
	"github.com/rentiva/go-rental-saas/shared/utils"
)

const planCacheTTL = 10 * time.Minute

// StartTrialRequest represents the start-trial request
type StartTrialRequest struct {
	TrialDays int `json:"trial_days"`
}

// ActivateRequest represents the manual activation request
// (cash/bank transfer payments recorded by a platform admin)
type ActivateRequest struct {
	PlanID         string `json:"plan_id" binding:"required"`
	DurationMonths int    `json:"duration_months"`
	PaymentMethod  string `json:"payment_method"`
}

// ChangePlanRequest represents the plan switch request
type ChangePlanRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// ReasonRequest carries an optional reason for suspend/cancel
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ReactivateRequest represents the reactivation request
type ReactivateRequest struct {
	ExtensionDays int `json:"extension_days"`
}

// SetStatusRequest represents the manual status override request
type SetStatusRequest struct {
	Status  string     `json:"status" binding:"required"`
	EndDate *time.Time `json:"end_date"`
}

// RecordPaymentRequest represents a manual payment entry
type RecordPaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	Notes         string  `json:"notes"`
}

// UpdatePaymentStatusRequest represents the payment status update request
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// actorContext attributes the operation to the authenticated admin in the
// audit trail.
func actorContext(c *gin.Context) context.Context {
	actor := c.GetString("email")
	if actor == "" {
		actor = c.GetString("user_id")
	}
	return lifecycle.WithActor(c.Request.Context(), actor)
}

func tenantIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid tenant ID")
		return uuid.Nil, false
	}
	return id, true
}

// handleGetPlans returns the active plan catalog, cached in Redis since the
// catalog changes rarely but is read on every pricing page load.
func handleGetPlans(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := utils.CacheGetOrCompute("billing:plans", planCacheTTL, func() (interface{}, error) {
			var plans []models.Plan
			err := db.Where("is_active = ?", true).Order("sort_order asc").Find(&plans).Error
			return plans, err
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch plans")
			return
		}

		utils.OKResponse(c, "Plans retrieved successfully", data)
	}
}

// handleGetSubscription returns a tenant's subscription
func handleGetSubscription(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		sub, err := svc.GetSubscription(c.Request.Context(), tenantID)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.OKResponse(c, "Subscription retrieved successfully", sub)
	}
}

// handleStartTrial starts (or restarts) a trial for the tenant
func handleStartTrial(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		var req StartTrialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if req.TrialDays == 0 {
			req.TrialDays = 14
		}

		sub, err := svc.StartTrial(actorContext(c), tenantID, req.TrialDays)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.OKResponse(c, "Trial started successfully", sub)
	}
}

// handleActivate manually activates a subscription
func handleActivate(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		var req ActivateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		planID, err := uuid.Parse(req.PlanID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid plan ID")
			return
		}
		if req.DurationMonths == 0 {
			req.DurationMonths = 12
		}
		if req.PaymentMethod == "" {
			req.PaymentMethod = "MANUAL"
		}

		sub, err := svc.Activate(actorContext(c), tenantID, planID, req.DurationMonths, req.PaymentMethod)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.OKResponse(c, "Subscription activated successfully", sub)
	}
}

// handleChangePlan switches the plan without touching the period dates
func handleChangePlan(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		var req ChangePlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		planID, err := uuid.Parse(req.PlanID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid plan ID")
			return
		}

		sub, err := svc.ChangePlan(actorContext(c), tenantID, planID)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.OKResponse(c, "Plan changed successfully", sub)
	}
}

// handleSuspend suspends a subscription (blocks access but keeps data)
func handleSuspend(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		var req ReasonRequest
		_ = c.ShouldBindJSON(&req)

		sub, err := svc.Suspend(actorContext(c), tenantID, req.Reason)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.OKResponse(c, "Subscription suspended", sub)
	}
}

// handleCancel cancels a subscription
func handleCancel(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		var req ReasonRequest
		_ = c.ShouldBindJSON(&req)

		sub, err := svc.Cancel(actorContext(c), tenantID, req.Reason)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.OKResponse(c, "Subscription canceled", sub)
	}
}

// handleReactivate reactivates a suspended/canceled subscription
func handleReactivate(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		var req ReactivateRequest
		_ = c.ShouldBindJSON(&req)

		sub, err := svc.Reactivate(actorContext(c), tenantID, req.ExtensionDays)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.OKResponse(c, "Subscription reactivated", sub)
	}
}

// handleSetStatus overrides the subscription status directly
func handleSetStatus(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		var req SetStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		sub, err := svc.SetStatus(actorContext(c), tenantID, models.SubscriptionStatus(req.Status), req.EndDate)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.OKResponse(c, "Subscription status updated", sub)
	}
}

// handleGetPayments lists a tenant's payment ledger
func handleGetPayments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		var payments []models.Payment
		if err := db.Where("tenant_id = ?", tenantID).Order("created_at desc").Find(&payments).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch payments")
			return
		}

		utils.OKResponse(c, "Payments retrieved successfully", payments)
	}
}

// handleRecordPayment appends a manual payment (e.g., cash)
func handleRecordPayment(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantIDParam(c)
		if !ok {
			return
		}

		var req RecordPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		payment, err := svc.RecordPayment(actorContext(c), tenantID, req.Amount, req.PaymentMethod, req.Notes)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.CreatedResponse(c, "Payment recorded successfully", payment)
	}
}

// handleUpdatePaymentStatus moves a ledger entry to a new status
func handleUpdatePaymentStatus(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		paymentID, err := uuid.Parse(c.Param("payment_id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid payment ID")
			return
		}

		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		payment, err := svc.UpdatePaymentStatus(actorContext(c), paymentID, models.PaymentStatus(req.Status))
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}

		utils.OKResponse(c, "Payment status updated", payment)
	}
}
