package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rentiva/go-rental-saas/shared/middleware"
	"github.com/rentiva/go-rental-saas/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Initialize Redis for caching
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Failed to connect to Redis, caching disabled: %v", err)
	}

	awsRegion := os.Getenv("AWS_REGION")
	cognitoUserPoolID := os.Getenv("COGNITO_USER_POOL_ID")
	if awsRegion == "" || cognitoUserPoolID == "" {
		log.Fatal("AWS_REGION and COGNITO_USER_POOL_ID must be set")
	}

	// Initialize authentication middleware
	authMiddleware, err := middleware.NewAuthMiddleware(awsRegion, cognitoUserPoolID)
	if err != nil {
		log.Fatal("Failed to initialize auth middleware:", err)
	}

	// Initialize service clients
	serviceClients := &ServiceClients{
		AuthService:    NewServiceClient(os.Getenv("AUTH_SERVICE_URL")),
		TenantService:  NewServiceClient(os.Getenv("TENANT_SERVICE_URL")),
		BillingService: NewServiceClient(os.Getenv("BILLING_SERVICE_URL")),
		AuditService:   NewServiceClient(os.Getenv("AUDIT_SERVICE_URL")),
	}

	// Initialize Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "API Gateway is healthy", nil)
	})

	// Downstream service status (admin only)
	router.GET("/status", authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"), func(c *gin.Context) {
		utils.OKResponse(c, "Service status", serviceClients.GetServiceStatus())
	})

	// Authentication routes
	auth := router.Group("/auth")
	{
		auth.POST("/login", serviceClients.AuthService.ProxyRequest)
		auth.POST("/signup", serviceClients.AuthService.ProxyRequest)
		auth.POST("/register", serviceClients.AuthService.ProxyRequest)
		auth.POST("/refresh", serviceClients.AuthService.ProxyRequest)
		auth.POST("/logout", authMiddleware.RequireAuth(), serviceClients.AuthService.ProxyRequest)
	}

	// User management routes (admin only)
	users := router.Group("/users")
	users.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
	{
		users.GET("/", serviceClients.AuthService.ProxyRequest)
		users.GET("/:id", serviceClients.AuthService.ProxyRequest)
		users.PUT("/:id", serviceClients.AuthService.ProxyRequest)
		users.DELETE("/:id", serviceClients.AuthService.ProxyRequest)
		users.POST("/confirm-email", serviceClients.AuthService.ProxyRequest)
	}

	// Tenant management routes
	tenants := router.Group("/tenants")
	tenants.Use(authMiddleware.RequireAuth())
	{
		// Admin-only routes (platform management)
		tenants.POST("/", authMiddleware.RequireRole("admin"), serviceClients.TenantService.ProxyRequest)
		tenants.GET("/", authMiddleware.RequireRole("admin"), serviceClients.TenantService.ProxyRequest)
		tenants.DELETE("/:id", authMiddleware.RequireRole("admin"), serviceClients.TenantService.ProxyRequest)

		// Tenant-specific routes (tenant owner can manage their own tenant)
		tenants.GET("/:id", authMiddleware.RequireTenantAccess(), serviceClients.TenantService.ProxyRequest)
		tenants.PUT("/:id", authMiddleware.RequireTenantOwnerOrAdmin(), authMiddleware.RequireActiveTenant(), serviceClients.TenantService.ProxyRequest)
		tenants.GET("/:id/users", authMiddleware.RequireTenantOwnerOrAdmin(), serviceClients.TenantService.ProxyRequest)
	}

	// Plan catalog (public pricing page)
	router.GET("/plans", serviceClients.BillingService.ProxyRequest)

	// Subscription lifecycle routes (platform admin only)
	subscriptions := router.Group("/subscriptions")
	subscriptions.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
	{
		subscriptions.GET("/:id", serviceClients.BillingService.ProxyRequest)
		subscriptions.POST("/:id/trial", serviceClients.BillingService.ProxyRequest)
		subscriptions.POST("/:id/activate", serviceClients.BillingService.ProxyRequest)
		subscriptions.PUT("/:id/plan", serviceClients.BillingService.ProxyRequest)
		subscriptions.POST("/:id/suspend", serviceClients.BillingService.ProxyRequest)
		subscriptions.POST("/:id/cancel", serviceClients.BillingService.ProxyRequest)
		subscriptions.POST("/:id/reactivate", serviceClients.BillingService.ProxyRequest)
		subscriptions.PUT("/:id/status", serviceClients.BillingService.ProxyRequest)
		subscriptions.GET("/:id/payments", serviceClients.BillingService.ProxyRequest)
		subscriptions.POST("/:id/payments", serviceClients.BillingService.ProxyRequest)
	}

	// Payment ledger updates (platform admin only)
	payments := router.Group("/payments")
	payments.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
	{
		payments.PUT("/:payment_id/status", serviceClients.BillingService.ProxyRequest)
	}

	// Audit trail routes (platform admin only)
	auditLogs := router.Group("/audit-logs")
	auditLogs.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
	{
		auditLogs.GET("/", serviceClients.AuditService.ProxyRequest)
		auditLogs.GET("/tenants/:id", serviceClients.AuditService.ProxyRequest)
	}

	// Start server
	port := os.Getenv("API_GATEWAY_PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("API Gateway starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start API Gateway:", err)
	}
}
