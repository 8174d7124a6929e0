package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentiva/go-rental-saas/shared/models"
	"github.com/rentiva/go-rental-saas/shared/utils"
)

const maxAuditPageSize = 200

// handleGetAuditLogs returns the most recent audit entries across all tenants
func handleGetAuditLogs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit <= 0 || limit > maxAuditPageSize {
			limit = 50
		}

		query := db.Order("created_at desc").Limit(limit)
		if action := c.Query("action"); action != "" {
			query = query.Where("action = ?", action)
		}

		var entries []models.AuditLog
		if err := query.Find(&entries).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch audit logs")
			return
		}

		utils.OKResponse(c, "Audit logs retrieved successfully", entries)
	}
}

// handleGetTenantAuditLogs returns the audit trail for one tenant
func handleGetTenantAuditLogs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid tenant ID")
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit <= 0 || limit > maxAuditPageSize {
			limit = 50
		}

		var entries []models.AuditLog
		if err := db.Where("tenant_id = ?", tenantID).Order("created_at desc").Limit(limit).Find(&entries).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch audit logs")
			return
		}

		utils.OKResponse(c, "Audit logs retrieved successfully", entries)
	}
}
