package services

import (
	"context"
	"testing"

	"github.com/Aman0246jploft/kudsun-backend/internal/events"
	"github.com/Aman0246jploft/kudsun-backend/internal/metrics"
	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/Aman0246jploft/kudsun-backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

// stubTx satisfies pgx.Tx for the repo bind; only QueryRow is reachable
// when the transition's apply hook is supplied by the test.
type stubTx struct {
	pgx.Tx
	row stubRow
}

func (t *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.row
}

type stubRow struct {
	err error
}

func (r stubRow) Scan(dest ...any) error { return r.err }

func TestTransitionDoesNotCountUncommittedMoves(t *testing.T) {
	m := metrics.New()
	s := &OrderService{log: zap.NewNop(), metrics: m}
	counter := func() float64 {
		return testutil.ToFloat64(m.OrderTransitionsTotal.WithLabelValues(
			models.OrderStatusPending, models.OrderStatusConfirmed, models.ActorSeller))
	}
	sellerID := uuid.New()
	noop := func() error { return nil }

	// History insert fails: the move must not be counted.
	repo := repositories.NewOrderRepo(nil).WithTx(&stubTx{row: stubRow{err: pgx.ErrTxClosed}})
	ob := events.NewOutbox(nil, zap.NewNop())
	o := &models.Order{ID: uuid.New(), Status: models.OrderStatusPending}
	err := s.transition(context.Background(), repo, ob, o, models.OrderStatusConfirmed, models.ActorSeller, &sellerID, nil, noop)
	if err == nil {
		t.Fatal("transition with failing history insert should error")
	}
	if got := counter(); got != 0 {
		t.Errorf("failed transition counted: counter = %v, want 0", got)
	}

	// Transition succeeds inside the tx: the event is queued but the
	// counter still belongs to the caller, after commit.
	repo = repositories.NewOrderRepo(nil).WithTx(&stubTx{})
	ob = events.NewOutbox(nil, zap.NewNop())
	o = &models.Order{ID: uuid.New(), Status: models.OrderStatusPending}
	err = s.transition(context.Background(), repo, ob, o, models.OrderStatusConfirmed, models.ActorSeller, &sellerID, nil, noop)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if o.Status != models.OrderStatusConfirmed {
		t.Errorf("order status = %q, want confirmed", o.Status)
	}
	if ob.Len() != 1 {
		t.Errorf("outbox events = %d, want 1", ob.Len())
	}
	if got := counter(); got != 0 {
		t.Errorf("in-tx transition counted: counter = %v, want 0", got)
	}

	m.RecordTransition(models.OrderStatusPending, models.OrderStatusConfirmed, models.ActorSeller)
	if got := counter(); got != 1 {
		t.Errorf("counter after RecordTransition = %v, want 1", got)
	}
}
