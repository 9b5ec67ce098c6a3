package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingSink struct {
	mu   sync.Mutex
	recs []Record
}

func (s *collectingSink) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *collectingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

func TestEmitterDeliversToSink(t *testing.T) {
	sink := &collectingSink{}
	e := NewEmitter(sink, 16, 2)
	defer e.Stop()

	e.Emit(Record{ClientID: "acme", Ticker: "AAPL"})

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	stats := e.Stats()
	assert.Equal(t, int64(1), stats.Submitted)
	assert.Equal(t, int64(0), stats.Dropped)
}

func TestEmitterNeverBlocksWhenQueueFull(t *testing.T) {
	blocker := make(chan struct{})
	sink := blockingSink{block: blocker}
	e := NewEmitter(sink, 1, 1)
	defer func() {
		close(blocker)
		e.Stop()
	}()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			e.Emit(Record{ClientID: "acme"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked instead of dropping")
	}

	stats := e.Stats()
	assert.Equal(t, int64(10), stats.Submitted)
}

type blockingSink struct{ block chan struct{} }

func (b blockingSink) Write(_ context.Context, _ Record) error {
	<-b.block
	return nil
}
