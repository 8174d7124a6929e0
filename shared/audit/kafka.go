package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/rentiva/go-rental-saas/shared/lifecycle"
)

// Topic is the Kafka topic carrying audit events.
const Topic = "audit-events"

// Producer publishes audit events to Kafka through a worker pool. Enqueueing
// never blocks the caller: when the buffer is full the event is dropped and
// counted, keeping audit delivery fire-and-forget.
type Producer struct {
	writer       *kafka.Writer
	eventChan    chan lifecycle.Event
	workerCount  int
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	log          *logrus.Entry

	mu      sync.Mutex
	dropped int64
}

// NewProducer creates an audit producer and starts its worker pool.
func NewProducer(broker string) (*Producer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	p := &Producer{
		writer:       writer,
		eventChan:    make(chan lifecycle.Event, 1000),
		workerCount:  4,
		shutdownChan: make(chan struct{}),
		log:          logrus.WithField("component", "audit-producer"),
	}
	p.startWorkers()
	return p, nil
}

func (p *Producer) startWorkers() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.eventWorker(i)
	}
	p.log.Infof("Started %d audit workers", p.workerCount)
}

func (p *Producer) eventWorker(id int) {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.eventChan:
			if err := p.publish(event); err != nil {
				p.log.WithError(err).Errorf("Worker %d failed to publish audit event", id)
			}
		case <-p.shutdownChan:
			return
		}
	}
}

// Record implements lifecycle.Sink. The event is queued asynchronously; a
// full queue drops the event rather than blocking a lifecycle transition.
func (p *Producer) Record(_ context.Context, event lifecycle.Event) {
	select {
	case p.eventChan <- event:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		p.log.WithField("action", event.Action).Warn("Audit event queue full, event dropped")
	}
}

// Dropped returns the number of events dropped due to a full queue.
func (p *Producer) Dropped() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

func (p *Producer) publish(event lifecycle.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.TenantID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "resource", Value: []byte(event.Resource)},
			{Key: "tenant_id", Value: []byte(event.TenantID.String())},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// Close drains the workers and closes the Kafka writer.
func (p *Producer) Close() error {
	close(p.shutdownChan)
	p.wg.Wait()
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close audit writer: %w", err)
	}
	return nil
}
