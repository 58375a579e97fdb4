package relay

import (
	"context"
	"errors"
	"testing"

	"bookstore/internal/domain"
	"bookstore/internal/metrics"
	"bookstore/internal/repository/memory"
	"bookstore/internal/uow"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

type stubWriter struct {
	msgs   []kafka.Message
	failAt int
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.failAt > 0 && len(w.msgs)+1 == w.failAt {
		return errors.New("broker unavailable")
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func seedEvents(t *testing.T, runner uow.Runner, keys ...string) {
	t.Helper()
	err := runner.Run(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		for _, key := range keys {
			err := tx.Outbox().Append(ctx, domain.OutboxEvent{
				EventID: "ev-" + key,
				Topic:   domain.TopicOrderCreated,
				Key:     key,
				Payload: []byte(`{"orderId":"` + key + `"}`),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed events: %v", err)
	}
}

func pending(t *testing.T, runner uow.Runner) int {
	t.Helper()
	events, err := uow.Do(context.Background(), runner, func(ctx context.Context, tx uow.Tx) ([]domain.OutboxEvent, error) {
		return tx.Outbox().FetchPending(ctx, 100)
	})
	if err != nil {
		t.Fatalf("fetch pending: %v", err)
	}
	return len(events)
}

func TestFlush_PublishesAndMarksSent(t *testing.T) {
	runner := uow.NewMemory(memory.NewStore(), uow.Hooks{})
	seedEvents(t, runner, "o1", "o2")
	writer := &stubWriter{}
	m := metrics.New()

	n, err := New(runner, writer, 10, nil, m).Flush(context.Background())
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if n != 2 || len(writer.msgs) != 2 {
		t.Fatalf("expected 2 published, got %d (%d msgs)", n, len(writer.msgs))
	}
	if string(writer.msgs[0].Key) != "o1" || string(writer.msgs[0].Value) != `{"orderId":"o1"}` {
		t.Fatalf("unexpected message %+v", writer.msgs[0])
	}
	if pending(t, runner) != 0 {
		t.Fatalf("expected nothing pending")
	}
	if got := testutil.ToFloat64(m.RelayEvents.WithLabelValues(domain.TopicOrderCreated, "sent")); got != 2 {
		t.Fatalf("expected 2 sent in metrics, got %v", got)
	}

	n, err = New(runner, writer, 10, nil, m).Flush(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected idle flush, got %d, %v", n, err)
	}
}

func TestFlush_StopsAtBrokerFailure(t *testing.T) {
	runner := uow.NewMemory(memory.NewStore(), uow.Hooks{})
	seedEvents(t, runner, "o1", "o2", "o3")
	writer := &stubWriter{failAt: 2}

	n, err := New(runner, writer, 10, nil, nil).Flush(context.Background())
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 published before failure, got %d", n)
	}
	if got := pending(t, runner); got != 2 {
		t.Fatalf("expected 2 pending, got %d", got)
	}
}

func TestFlush_RespectsBatchSize(t *testing.T) {
	runner := uow.NewMemory(memory.NewStore(), uow.Hooks{})
	seedEvents(t, runner, "o1", "o2", "o3")

	n, err := New(runner, &stubWriter{}, 2, nil, nil).Flush(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("expected a batch of 2, got %d, %v", n, err)
	}
	if got := pending(t, runner); got != 1 {
		t.Fatalf("expected 1 pending, got %d", got)
	}
}
