package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookstore/internal/repository/memory"
	"bookstore/internal/uow"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTxHooks_CountOutcomes(t *testing.T) {
	m := New()
	runner := uow.NewMemory(memory.NewStore(), m.TxHooks())

	_ = runner.Run(context.Background(), func(context.Context, uow.Tx) error { return nil })
	_ = runner.Run(context.Background(), func(context.Context, uow.Tx) error { return errors.New("abort") })
	_ = runner.Run(context.Background(), func(context.Context, uow.Tx) error { return errors.New("abort") })

	if got := testutil.ToFloat64(m.TxOutcomes.WithLabelValues(string(uow.OutcomeCommitted))); got != 1 {
		t.Fatalf("expected 1 commit, got %v", got)
	}
	if got := testutil.ToFloat64(m.TxOutcomes.WithLabelValues(string(uow.OutcomeRolledBack))); got != 2 {
		t.Fatalf("expected 2 rollbacks, got %v", got)
	}
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.Requests.WithLabelValues("/healthz", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bookstore_http_requests_total") {
		t.Fatalf("missing request counter in output")
	}
}
