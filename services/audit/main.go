package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rentiva/go-rental-saas/shared/config"
	"github.com/rentiva/go-rental-saas/shared/middleware"
	"github.com/rentiva/go-rental-saas/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Initialize database connection
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Initialize Kafka consumer with database connection
	kafkaConsumer, err := NewKafkaConsumer(os.Getenv("KAFKA_BROKER"), db)
	if err != nil {
		log.Fatal("Failed to initialize Kafka consumer:", err)
	}
	defer kafkaConsumer.Close()

	// Start consuming audit events
	go kafkaConsumer.ConsumeAuditEvents()

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
		utils.OKResponse(c, "Audit service is healthy", nil)
	})

	// Audit trail queries (admin only)
	logs := router.Group("/audit-logs")
	logs.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
	{
		logs.GET("/", handleGetAuditLogs(db))
		logs.GET("/tenants/:id", handleGetTenantAuditLogs(db))
	}

	// Start server
	port := os.Getenv("AUDIT_SERVICE_PORT")
	if port == "" {
		port = "8005"
	}

	logrus.Infof("Audit service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start audit service:", err)
	}
}
