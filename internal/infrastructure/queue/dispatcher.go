package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/peerrent/auth-service/internal/api/metrics"
	"github.com/peerrent/auth-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	defaultTimeout = 10 * time.Second
	channelBuffer  = 256
)

// ErrQueueFull is returned by Send when the worker owning the address has no
// room left, or when the dispatcher is closed. The code stays stored; the user
// can request another one.
var ErrQueueFull = errors.New("notification queue full")

type delivery struct {
	address string
	code    string
}

// Dispatcher delivers login codes in the background. Addresses are sharded
// onto a fixed set of workers by consistent hashing, so codes for the same
// address go out in the order they were requested.
//
// Workers run until Close; every code accepted before Close is delivered, or
// its failure logged, before Wait returns.
type Dispatcher struct {
	workers []chan delivery
	next    ports.Notifier
	timeout time.Duration
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, next ports.Notifier, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	d := &Dispatcher{
		workers: make([]chan delivery, numWorkers),
		next:    next,
		timeout: timeout,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Close stops accepting codes. Workers finish what is already queued and then
// return. Close is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
}

// Wait blocks until every worker has drained its queue and returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Send implements ports.Notifier by queueing the code. It never blocks.
func (d *Dispatcher) Send(_ context.Context, address, code string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}

	idx := d.shardIndex(address)
	select {
	case d.workers[idx] <- delivery{address: address, code: code}:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return nil
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// shardIndex maps an address deterministically to a worker index.
func (d *Dispatcher) shardIndex(address string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(address))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan delivery) {
	defer d.wg.Done()
	depth := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))

	for job := range ch {
		depth.Dec()
		d.deliver(id, job)
	}
}

func (d *Dispatcher) deliver(id int, job delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.next.Send(ctx, job.address, job.code); err != nil {
		d.log.Error().Err(err).
			Int("worker_id", id).
			Msg("login code delivery failed")
	}
}
