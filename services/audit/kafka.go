package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rentiva/go-rental-saas/shared/audit"
	"github.com/rentiva/go-rental-saas/shared/lifecycle"
	"github.com/rentiva/go-rental-saas/shared/models"
)

// KafkaConsumer reads audit events from Kafka and persists them
type KafkaConsumer struct {
	auditReader *kafka.Reader
	db          *gorm.DB
}

// NewKafkaConsumer creates a new Kafka consumer for the audit topic
func NewKafkaConsumer(broker string, db *gorm.DB) (*KafkaConsumer, error) {
	auditReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          audit.Topic,
		GroupID:        "audit-service",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &KafkaConsumer{
		auditReader: auditReader,
		db:          db,
	}, nil
}

// ConsumeAuditEvents consumes audit events from Kafka and writes them to the
// audit_logs table
func (kc *KafkaConsumer) ConsumeAuditEvents() {
	log.Println("Starting audit events consumer...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		msg, err := kc.auditReader.ReadMessage(ctx)
		cancel()

		if err != nil {
			// Ignore timeout errors - this is expected when no messages available
			if err == context.DeadlineExceeded || err.Error() == "context deadline exceeded" {
				continue
			}
			log.Printf("Error reading audit message: %v", err)
			time.Sleep(1 * time.Second)
			continue
		}

		var event lifecycle.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("Error unmarshaling audit event: %v", err)
			continue
		}

		if err := kc.storeAuditEvent(event); err != nil {
			log.Printf("Error persisting audit event for tenant %s: %v", event.TenantID, err)
		}
	}
}

// storeAuditEvent writes a single audit event as an audit_logs row
func (kc *KafkaConsumer) storeAuditEvent(event lifecycle.Event) error {
	details := map[string]interface{}{}
	for k, v := range event.Details {
		details[k] = v
	}
	if event.OldStatus != "" {
		details["old_status"] = event.OldStatus
	}
	if event.NewStatus != "" {
		details["new_status"] = event.NewStatus
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := models.AuditLog{
		Action:     event.Action,
		Resource:   event.Resource,
		ResourceID: event.ResourceID,
		Actor:      event.Actor,
		Details:    datatypes.JSON(detailsJSON),
		CreatedAt:  event.Timestamp,
	}
	if event.TenantID != uuid.Nil {
		tenantID := event.TenantID
		entry.TenantID = &tenantID
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	return kc.db.Create(&entry).Error
}

// Close closes the Kafka consumer
func (kc *KafkaConsumer) Close() error {
	return kc.auditReader.Close()
}
