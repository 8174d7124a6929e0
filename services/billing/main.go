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

	// Initialize Redis for the plan-catalog cache
	if err := utils.InitRedis(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer utils.CloseRedis()

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.MigrateDatabase(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Kafka audit producer
	auditProducer, err := audit.NewProducer(os.Getenv("KAFKA_BROKER"))
	if err != nil {
		log.Fatal("Failed to initialize audit producer:", err)
	}
	defer auditProducer.Close()

	// Lifecycle core wiring
	store := lifecycle.NewGormStore(db)
	svc := lifecycle.NewService(store, auditProducer, lifecycle.SystemClock{})

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
		utils.OKResponse(c, "Billing service is healthy", nil)
	})

	// Public plan catalog (cached)
	router.GET("/plans", handleGetPlans(db))

	// Subscription lifecycle routes (platform admin only)
	subscriptions := router.Group("/subscriptions")
	subscriptions.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
	{
		subscriptions.GET("/:id", handleGetSubscription(svc))
		subscriptions.POST("/:id/trial", handleStartTrial(svc))
		subscriptions.POST("/:id/activate", handleActivate(svc))
		subscriptions.PUT("/:id/plan", handleChangePlan(svc))
		subscriptions.POST("/:id/suspend", handleSuspend(svc))
		subscriptions.POST("/:id/cancel", handleCancel(svc))
		subscriptions.POST("/:id/reactivate", handleReactivate(svc))
		subscriptions.PUT("/:id/status", handleSetStatus(svc))

		subscriptions.GET("/:id/payments", handleGetPayments(db))
		subscriptions.POST("/:id/payments", handleRecordPayment(svc))
	}

	payments := router.Group("/payments")
	payments.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
	{
		payments.PUT("/:payment_id/status", handleUpdatePaymentStatus(svc))
	}

	// Start server
	port := os.Getenv("BILLING_SERVICE_PORT")
	if port == "" {
		port = "8003"
	}

	logrus.Infof("Billing service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start billing service:", err)
	}
}
