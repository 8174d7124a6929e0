package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentiva/go-rental-saas/shared/lifecycle"
	"github.com/rentiva/go-rental-saas/shared/models"
	"github.com/rentiva/go-rental-saas/shared/utils"
)

const defaultTrialDays = 14

// CreateTenantRequest represents the create tenant request
type CreateTenantRequest struct {
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	Subdomain   string `json:"subdomain" binding:"required"`
	Country     string `json:"country"`
	TrialDays   int    `json:"trial_days"`
}

// UpdateTenantRequest represents the update tenant request.
// IsActive is deliberately absent: access flags are derived from the
// subscription status and must not be edited directly.
type UpdateTenantRequest struct {
	Name        *string `json:"name"`
	CompanyName *string `json:"company_name"`
	Subdomain   *string `json:"subdomain"`
	Country     *string `json:"country"`
}

// handleCreateTenant provisions a new rental company together with its
// trial subscription (admin only)
func handleCreateTenant(db *gorm.DB, svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		// Check if subdomain already exists
		var existingTenant models.Tenant
		if err := db.Where("subdomain = ?", req.Subdomain).First(&existingTenant).Error; err == nil {
			utils.BadRequestResponse(c, "Subdomain already exists")
			return
		}

		country := req.Country
		if country == "" {
			country = "AL"
		}

		tenant := models.Tenant{
			ID:          uuid.New(),
			Name:        req.Name,
			CompanyName: req.CompanyName,
			Subdomain:   req.Subdomain,
			Country:     country,
			IsActive:    true,
		}

		if err := db.Create(&tenant).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create tenant")
			return
		}

		trialDays := req.TrialDays
		if trialDays == 0 {
			trialDays = defaultTrialDays
		}

		ctx := lifecycle.WithActor(c.Request.Context(), c.GetString("email"))
		sub, err := svc.StartTrial(ctx, tenant.ID, trialDays)
		if err != nil {
			utils.LifecycleErrorResponse(c, err)
			return
		}
		tenant.Subscription = sub

		utils.CreatedResponse(c, "Tenant created successfully", tenant)
	}
}

// handleGetTenants handles getting all tenants (admin only)
func handleGetTenants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tenants []models.Tenant
		if err := db.Preload("Subscription").Preload("Subscription.Plan").Find(&tenants).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch tenants")
			return
		}

		utils.OKResponse(c, "Tenants retrieved successfully", tenants)
	}
}

// handleGetTenant handles getting a specific tenant
func handleGetTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.Param("id")

		var tenant models.Tenant
		if err := db.Preload("Subscription").Preload("Subscription.Plan").Where("id = ?", tenantID).First(&tenant).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Tenant not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			}
			return
		}

		utils.OKResponse(c, "Tenant retrieved successfully", tenant)
	}
}

// handleUpdateTenant handles updating a tenant's company details
func handleUpdateTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.Param("id")

		var tenant models.Tenant
		if err := db.Where("id = ?", tenantID).First(&tenant).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Tenant not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			}
			return
		}

		var req UpdateTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.Name != nil {
			tenant.Name = *req.Name
		}
		if req.CompanyName != nil {
			tenant.CompanyName = *req.CompanyName
		}
		if req.Subdomain != nil {
			// Check if new subdomain already exists
			var existingTenant models.Tenant
			if err := db.Where("subdomain = ? AND id != ?", *req.Subdomain, tenantID).First(&existingTenant).Error; err == nil {
				utils.BadRequestResponse(c, "Subdomain already exists")
				return
			}
			tenant.Subdomain = *req.Subdomain
		}
		if req.Country != nil {
			tenant.Country = *req.Country
		}

		if err := db.Save(&tenant).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update tenant")
			return
		}

		utils.OKResponse(c, "Tenant updated successfully", tenant)
	}
}

// handleDeleteTenant soft deletes a tenant (admin only)
func handleDeleteTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.Param("id")

		var tenant models.Tenant
		if err := db.Where("id = ?", tenantID).First(&tenant).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Tenant not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			}
			return
		}

		// Check if tenant has users
		var userCount int64
		if err := db.Model(&models.User{}).Where("tenant_id = ?", tenantID).Count(&userCount).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to check tenant users")
			return
		}

		if userCount > 0 {
			utils.BadRequestResponse(c, "Cannot delete tenant with existing users")
			return
		}

		if err := db.Delete(&tenant).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete tenant")
			return
		}

		utils.OKResponse(c, "Tenant deleted successfully", nil)
	}
}

// handleGetTenantUsers handles getting users for a specific tenant
func handleGetTenantUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.Param("id")

		var users []models.User
		if err := db.Where("tenant_id = ?", tenantID).Find(&users).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch tenant users")
			return
		}

		utils.OKResponse(c, "Tenant users retrieved successfully", users)
	}
}
