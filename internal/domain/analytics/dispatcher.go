package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/pkg/logger"
)

// Recomputer is what the dispatcher worker calls for each queued task.
type Recomputer interface {
	RecomputeIngredient(ctx context.Context, tenantID, ingredientID id.ID) error
}

type task struct {
	tenantID     id.ID
	ingredientID id.ID
}

// ChannelDispatcher runs analytics recomputation on a single background
// goroutine fed by a bounded queue. Enqueue never blocks the write path:
// when the queue is full the task is dropped and logged, and the stale-row
// refresher picks it up later. Worker errors are logged and swallowed so a
// failed recompute can never fail a ledger write.
type ChannelDispatcher struct {
	recomputer Recomputer
	tasks      chan task
	timeout    time.Duration

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewChannelDispatcher creates and starts a dispatcher with the given
// queue capacity.
func NewChannelDispatcher(recomputer Recomputer, queueSize int) *ChannelDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &ChannelDispatcher{
		recomputer: recomputer,
		tasks:      make(chan task, queueSize),
		timeout:    30 * time.Second,
		done:       make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue queues a recompute for (tenant, ingredient). Never blocks and
// is safe against a concurrent Close: after shutdown the task is dropped
// instead of panicking on the closed channel.
func (d *ChannelDispatcher) Enqueue(tenantID, ingredientID id.ID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		logger.Warn(context.Background(), "analytics dispatcher closed, dropping recompute task",
			"tenant_id", tenantID, "ingredient_id", ingredientID)
		return
	}
	select {
	case d.tasks <- task{tenantID: tenantID, ingredientID: ingredientID}:
	default:
		logger.Warn(context.Background(), "analytics queue full, dropping recompute task",
			"tenant_id", tenantID, "ingredient_id", ingredientID)
	}
}

func (d *ChannelDispatcher) run() {
	defer close(d.done)
	for t := range d.tasks {
		d.process(t)
	}
}

func (d *ChannelDispatcher) process(t task) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.recomputer.RecomputeIngredient(ctx, t.tenantID, t.ingredientID); err != nil {
		logger.Error(ctx, "analytics recompute failed",
			"tenant_id", t.tenantID, "ingredient_id", t.ingredientID, "error", err)
	}
}

// Close stops accepting tasks and waits for the queue to drain. The
// channel is closed under the same lock Enqueue sends under, so the two
// can race safely.
func (d *ChannelDispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.tasks)
	}
	d.mu.Unlock()
	<-d.done
}
