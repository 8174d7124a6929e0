package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rentiva/go-rental-saas/shared/audit"
	"github.com/rentiva/go-rental-saas/shared/config"
	"github.com/rentiva/go-rental-saas/shared/lifecycle"
	"github.com/rentiva/go-rental-saas/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Kafka audit producer so expirations show up in the
	// audit trail like any admin-driven transition
	auditProducer, err := audit.NewProducer(os.Getenv("KAFKA_BROKER"))
	if err != nil {
		log.Fatal("Failed to initialize audit producer:", err)
	}
	defer auditProducer.Close()

	store := lifecycle.NewGormStore(db)
	svc := lifecycle.NewService(store, auditProducer, lifecycle.SystemClock{})

	interval := 24 * time.Hour
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal("Invalid SWEEP_INTERVAL:", err)
		}
		interval = parsed
	}
	sweeper := lifecycle.NewSweeper(store, svc, interval)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Sweeper service is healthy", nil)
	})

	// Manual trigger for ops (the loop below also runs on its own)
	router.POST("/sweep", func(c *gin.Context) {
		ctx := lifecycle.WithActor(c.Request.Context(), "sweeper")
		result, err := sweeper.RunSweep(ctx, time.Now())
		if err != nil {
			utils.InternalServerErrorResponse(c, "Sweep failed")
			return
		}
		utils.OKResponse(c, "Sweep completed", result)
	})

	// Start sweep loop in background
	go sweeper.Run(lifecycle.WithActor(context.Background(), "sweeper"))

	// Start HTTP server
	port := os.Getenv("SWEEPER_SERVICE_PORT")
	if port == "" {
		port = "8004"
	}

	logrus.Infof("Sweeper service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start sweeper service:", err)
	}
}
