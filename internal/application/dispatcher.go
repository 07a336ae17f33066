package application

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

var (
	// ErrQueueFull is returned by Submit when the event's queue has no room.
	ErrQueueFull = errors.New("event queue is full")

	// ErrDispatcherStopped is returned by Submit after Shutdown was called.
	ErrDispatcherStopped = errors.New("dispatcher stopped")
)

// EventRunner processes one event to completion.
type EventRunner interface {
	Run(ctx context.Context, ev model.InboundEvent) (Outcome, error)
}

type job struct {
	id string
	ev model.InboundEvent
}

// Dispatcher runs events on a fixed pool of workers. Each worker owns a queue
// and events are routed by their serial key, so deliveries for the same pull
// request are processed one at a time in arrival order.
type Dispatcher struct {
	runner     EventRunner
	queues     []chan job
	jobTimeout time.Duration
	quit       chan struct{}
	stopped    atomic.Bool
	wg         sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with the given number of workers. The
// queueSize is split evenly across workers, with at least one slot each.
func NewDispatcher(runner EventRunner, workers, queueSize int, jobTimeout time.Duration) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	perWorker := max(queueSize/workers, 1)

	queues := make([]chan job, workers)
	for i := range queues {
		queues[i] = make(chan job, perWorker)
	}

	return &Dispatcher{
		runner:     runner,
		queues:     queues,
		jobTimeout: jobTimeout,
		quit:       make(chan struct{}),
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	for i, q := range d.queues {
		d.wg.Add(1)
		go d.work(i, q)
	}
	slog.Info("dispatcher started", "workers", len(d.queues))
}

// Submit enqueues ev without blocking and returns its job id.
func (d *Dispatcher) Submit(ev model.InboundEvent) (string, error) {
	if d.stopped.Load() {
		return "", ErrDispatcherStopped
	}

	j := job{id: uuid.NewString(), ev: ev}
	select {
	case d.queues[d.shard(ev.SerialKey())] <- j:
		slog.Debug("event queued", "job", j.id, "repo", ev.Base.FullName, "pr", ev.Number)
		return j.id, nil
	default:
		return "", ErrQueueFull
	}
}

// Shutdown stops accepting events and waits for running jobs to finish.
// Queued jobs that have not started are dropped.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if d.stopped.CompareAndSwap(false, true) {
		close(d.quit)
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		dropped := 0
		for _, q := range d.queues {
			dropped += len(q)
		}
		slog.Info("dispatcher stopped", "dropped", dropped)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for workers: %w", ctx.Err())
	}
}

func (d *Dispatcher) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) work(idx int, q <-chan job) {
	defer d.wg.Done()
	for {
		select {
		case <-d.quit:
			return
		default:
		}

		select {
		case <-d.quit:
			return
		case j := <-q:
			d.process(idx, j)
		}
	}
}

func (d *Dispatcher) process(worker int, j job) {
	log := slog.With("job", j.id, "worker", worker, "repo", j.ev.Base.FullName, "pr", j.ev.Number)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic processing event", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	ctx := context.Background()
	if d.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	outcome, err := d.runner.Run(ctx, j.ev)
	if err != nil {
		log.Error("event processing failed", "outcome", string(outcome), "duration", time.Since(start), "error", err)
		return
	}
	log.Info("event processed", "outcome", string(outcome), "duration", time.Since(start))
}
