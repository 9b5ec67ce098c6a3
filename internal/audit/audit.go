// Package audit implements the audit emitter (C7): a bounded, non-blocking
// async queue feeding a pluggable Sink, adapted from the teacher's
// infrastructure/async WorkerPool. A record is never dropped silently — the
// oldest queued record is discarded and a counter incremented instead of
// blocking the calling request.
package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/locatepricer/internal/fallback"
	"github.com/sawpanic/locatepricer/internal/money"
	"github.com/sawpanic/locatepricer/internal/pricing/fees"
)

// Record is the append-only audit entry emitted for every calculate
// invocation, per §4.7.
type Record struct {
	ID              string              `json:"id"`
	Timestamp       time.Time           `json:"timestamp"`
	RequestID       string              `json:"request_id"`
	ClientID        string              `json:"client_id"`
	Ticker          string              `json:"ticker"`
	PositionValue   string              `json:"position_value"`
	LoanDays        int                 `json:"loan_days"`
	BorrowRateUsed  money.Rate          `json:"borrow_rate_used"`
	Provenance      fallback.Provenance `json:"provenance"`
	Breakdown       fees.Breakdown      `json:"breakdown"`
	FormulaVariant  string              `json:"formula_variant"`
}

// Sink is the external collaborator that persists audit records. A failing
// sink must never fail the calling request (§4.7).
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// NoopSink discards every record; useful for tests and when auditing is
// disabled.
type NoopSink struct{}

func (NoopSink) Write(context.Context, Record) error { return nil }

// LoggingSink writes each record as a structured log line, mirroring the
// teacher's zerolog usage elsewhere in the codebase.
type LoggingSink struct{}

func (LoggingSink) Write(_ context.Context, rec Record) error {
	log.Info().
		Str("audit_id", rec.ID).
		Str("request_id", rec.RequestID).
		Str("client_id", rec.ClientID).
		Str("ticker", rec.Ticker).
		Str("total_fee", rec.Breakdown.TotalFee.String()).
		Msg("audit record")
	return nil
}

// Emitter is a bounded async queue draining into a Sink via a small worker
// pool, adapted from infrastructure/async.WorkerPool.
type Emitter struct {
	sink    Sink
	queue   chan Record
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	dropped   atomic.Int64
	submitted atomic.Int64
}

// NewEmitter builds an Emitter with the given queue capacity and worker
// count, and starts its background workers immediately.
func NewEmitter(sink Sink, queueSize, workers int) *Emitter {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Emitter{
		sink:    sink,
		queue:   make(chan Record, queueSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	return e
}

func (e *Emitter) worker() {
	defer e.wg.Done()
	for {
		select {
		case rec, ok := <-e.queue:
			if !ok {
				return
			}
			if err := e.sink.Write(e.ctx, rec); err != nil {
				log.Warn().Err(err).Str("audit_id", rec.ID).Msg("audit sink write failed")
			}
		case <-e.ctx.Done():
			return
		}
	}
}

// Emit builds and enqueues a record without blocking the caller. If the
// queue is full, the oldest queued record is dropped to make room — the
// calculation response is never delayed or failed by a backpressured sink.
func (e *Emitter) Emit(rec Record) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	e.submitted.Add(1)

	select {
	case e.queue <- rec:
		return
	default:
	}

	// Queue full: drop the oldest entry, then retry once.
	select {
	case <-e.queue:
		e.dropped.Add(1)
	default:
	}

	select {
	case e.queue <- rec:
	default:
		e.dropped.Add(1)
	}
}

// Stats reports the submitted/dropped counters and the current queue length.
type Stats struct {
	Submitted int64
	Dropped   int64
	QueueLen  int
}

func (e *Emitter) Stats() Stats {
	return Stats{
		Submitted: e.submitted.Load(),
		Dropped:   e.dropped.Load(),
		QueueLen:  len(e.queue),
	}
}

// Stop drains in-flight workers and closes the queue. Callers should invoke
// this during graceful shutdown only; it is not safe to call Emit after
// Stop.
func (e *Emitter) Stop() {
	close(e.queue)
	e.wg.Wait()
	e.cancel()
}
