package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

type countingRecomputer struct {
	mu    sync.Mutex
	calls []id.ID
	err   error
	block chan struct{}
}

func (c *countingRecomputer) RecomputeIngredient(ctx context.Context, tenantID, ingredientID id.ID) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, ingredientID)
	return c.err
}

func (c *countingRecomputer) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func TestDispatcher_ProcessesQueuedTasks(t *testing.T) {
	rec := &countingRecomputer{}
	disp := NewChannelDispatcher(rec, 16)

	tenantID := id.New()
	a := id.New()
	b := id.New()
	disp.Enqueue(tenantID, a)
	disp.Enqueue(tenantID, b)
	disp.Close()

	require.Equal(t, 2, rec.callCount())
	assert.Equal(t, []id.ID{a, b}, rec.calls)
}

func TestDispatcher_ErrorsAreSwallowed(t *testing.T) {
	rec := &countingRecomputer{err: errors.New("recompute failed")}
	disp := NewChannelDispatcher(rec, 16)

	disp.Enqueue(id.New(), id.New())
	disp.Close()

	assert.Equal(t, 1, rec.callCount())
}

func TestDispatcher_EnqueueNeverBlocksWhenFull(t *testing.T) {
	rec := &countingRecomputer{block: make(chan struct{})}
	disp := NewChannelDispatcher(rec, 1)

	tenantID := id.New()
	done := make(chan struct{})
	go func() {
		defer close(done)
		// first task blocks the worker, second fills the queue, the rest
		// must be dropped without blocking
		for i := 0; i < 10; i++ {
			disp.Enqueue(tenantID, id.New())
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(rec.block)
	disp.Close()
	assert.LessOrEqual(t, rec.callCount(), 2)
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	rec := &countingRecomputer{}
	disp := NewChannelDispatcher(rec, 64)

	tenantID := id.New()
	for i := 0; i < 20; i++ {
		disp.Enqueue(tenantID, id.New())
	}
	disp.Close()

	assert.Equal(t, 20, rec.callCount())
}

func TestDispatcher_EnqueueAfterCloseIsDropped(t *testing.T) {
	rec := &countingRecomputer{}
	disp := NewChannelDispatcher(rec, 4)
	disp.Close()

	assert.NotPanics(t, func() { disp.Enqueue(id.New(), id.New()) })
	assert.Zero(t, rec.callCount())
}

func TestDispatcher_CloseSafeWithConcurrentEnqueue(t *testing.T) {
	rec := &countingRecomputer{}
	disp := NewChannelDispatcher(rec, 4)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				disp.Enqueue(id.New(), id.New())
			}
		}()
	}

	close(start)
	disp.Close()
	wg.Wait()
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	disp := NewChannelDispatcher(&countingRecomputer{}, 4)
	disp.Close()
	assert.NotPanics(t, func() { disp.Close() })
}

func TestDispatcher_DefaultQueueSize(t *testing.T) {
	disp := NewChannelDispatcher(&countingRecomputer{}, 0)
	assert.Equal(t, 256, cap(disp.tasks))
	disp.Close()
}
