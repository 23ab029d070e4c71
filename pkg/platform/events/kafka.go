package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"brique/internal/platform/kafka/producer"
)

// KafkaPublisher delivers ledger events to a Kafka topic. Emission is
// buffered and asynchronous: ledger operations never wait on the broker, and
// a full buffer drops the event with a log line rather than failing the
// committed state change.
type KafkaPublisher struct {
	prod   *producer.Producer
	topic  string
	logger *slog.Logger

	events chan Event
	wg     sync.WaitGroup
	once   sync.Once
}

// NewKafkaPublisher starts the background delivery loop.
func NewKafkaPublisher(prod *producer.Producer, topic string, logger *slog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		prod:   prod,
		topic:  topic,
		logger: logger,
		events: make(chan Event, 256),
	}
	p.wg.Add(1)
	go p.deliver()
	return p
}

func (p *KafkaPublisher) deliver() {
	defer p.wg.Done()
	for event := range p.events {
		value, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("failed to marshal ledger event", "error", err, "action", event.Action)
			continue
		}
		msg := &producer.Message{
			Topic: p.topic,
			Key:   []byte(event.Wallet),
			Value: value,
			Headers: map[string]string{
				"event_type": string(event.Action),
				"request_id": event.RequestID,
			},
		}
		if err := p.prod.Produce(context.Background(), msg); err != nil {
			p.logger.Error("failed to deliver ledger event",
				"error", err,
				"action", event.Action,
				"wallet", event.Wallet,
			)
		}
	}
}

// Emit queues the event for delivery. Non-blocking: a full buffer drops the
// event and reports the loss.
func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	select {
	case p.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.Warn("event buffer full, event dropped",
			"action", event.Action,
			"wallet", event.Wallet,
		)
		return fmt.Errorf("event buffer full")
	}
}

// Close drains pending events and stops the delivery loop.
func (p *KafkaPublisher) Close() {
	p.once.Do(func() {
		close(p.events)
		p.wg.Wait()
	})
}

// LogPublisher writes events to the structured log only. Used when Kafka is
// not configured so services still emit a consistent trail.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	p.Logger.InfoContext(ctx, string(event.Action),
		"log_type", "ledger_event",
		"wallet", event.Wallet,
		"asset_id", event.AssetID,
		"sale_id", event.SaleID,
		"request_id", event.RequestID,
	)
	return nil
}
