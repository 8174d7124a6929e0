package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rentiva/go-rental-saas/shared/audit"
	"github.com/rentiva/go-rental-saas/shared/config"
	"github.com/rentiva/go-rental-saas/shared/lifecycle"
	"github.com/rentiva/go-rental-saas/shared/middleware"
	"github.com/rentiva/go-rental-saas/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Initialize Redis for session management
	if err := utils.InitRedis(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer utils.CloseRedis()

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Kafka audit producer
	auditProducer, err := audit.NewProducer(os.Getenv("KAFKA_BROKER"))
	if err != nil {
		log.Fatal("Failed to initialize audit producer:", err)
	}
	defer auditProducer.Close()

	// Lifecycle core for trial provisioning on tenant creation
	svc := lifecycle.NewService(lifecycle.NewGormStore(db), auditProducer, lifecycle.SystemClock{})

	// Initialize authentication middleware
	authMiddleware, err := middleware.NewAuthMiddleware(
		os.Getenv("AWS_REGION"),
		os.Getenv("COGNITO_USER_POOL_ID"),
	)
	if err != nil {
		log.Fatal("Failed to initialize auth middleware:", err)
	}

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Tenant service is healthy", nil)
	})

	// Tenant management routes
	tenants := router.Group("/tenants")
	tenants.Use(authMiddleware.RequireAuth())
	{
		// Admin-only routes (platform management)
		tenants.POST("/", authMiddleware.RequireRole("admin"), handleCreateTenant(db, svc))
		tenants.GET("/", authMiddleware.RequireRole("admin"), handleGetTenants(db))

		// Tenant-specific routes
		tenants.GET("/:id", authMiddleware.RequireTenantAccess(), handleGetTenant(db))
		tenants.PUT("/:id", authMiddleware.RequireTenantOwnerOrAdmin(), handleUpdateTenant(db))
		tenants.DELETE("/:id", authMiddleware.RequireRole("admin"), handleDeleteTenant(db))

		// Tenant user management (tenant owner can manage their users)
		tenants.GET("/:id/users", authMiddleware.RequireTenantOwnerOrAdmin(), handleGetTenantUsers(db))
	}

	// Start server
	port := os.Getenv("TENANT_SERVICE_PORT")
	if port == "" {
		port = "8002"
	}

	logrus.Infof("Tenant service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start tenant service:", err)
	}
}
