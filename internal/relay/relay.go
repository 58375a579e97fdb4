// Package relay moves order events from the outbox table to Kafka.
// Delivery is at least once: an event is marked sent only after the broker
// acknowledged it, in the same transaction that locked it.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore/internal/domain"
	"bookstore/internal/metrics"
	"bookstore/internal/uow"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Writer is the part of *kafka.Writer the relay needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter returns a writer publishing to topic, partitioned by key.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

type Relay struct {
	runner    uow.Runner
	writer    Writer
	batchSize int
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func New(runner uow.Runner, writer Writer, batchSize int, logger *zap.Logger, m *metrics.Metrics) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Relay{runner: runner, writer: writer, batchSize: batchSize, logger: logger, metrics: m}
}

// Flush publishes one batch of pending events and reports how many were sent.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	return uow.Do(ctx, r.runner, func(ctx context.Context, tx uow.Tx) (int, error) {
		events, err := tx.Outbox().FetchPending(ctx, r.batchSize)
		if err != nil {
			return 0, fmt.Errorf("fetch pending: %w", err)
		}
		sent := 0
		for _, ev := range events {
			if err := r.writer.WriteMessages(ctx, message(ev)); err != nil {
				r.count(ev.Topic, "failed")
				r.logger.Warn("relay: publish", zap.String("event_id", ev.EventID), zap.Error(err))
				// Sent events of this batch are still marked.
				return sent, nil
			}
			if err := tx.Outbox().MarkSent(ctx, ev.ID); err != nil {
				return sent, fmt.Errorf("mark sent %s: %w", ev.EventID, err)
			}
			r.count(ev.Topic, "sent")
			sent++
		}
		return sent, nil
	})
}

// Run flushes every interval until ctx is done.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := r.Flush(ctx)
		switch {
		case err != nil && errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			r.logger.Error("relay: flush", zap.Error(err))
		case n > 0:
			r.logger.Info("relay: published", zap.Int("count", n))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Relay) count(topic, result string) {
	if r.metrics != nil {
		r.metrics.RelayEvents.WithLabelValues(topic, result).Inc()
	}
}

func message(ev domain.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(ev.Key),
		Value: ev.Payload,
		Time:  ev.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.EventID)},
			{Key: "event_type", Value: []byte(ev.Topic)},
		},
	}
}
