package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Stats counts what happened to dispatched messages.
type Stats struct {
	Dispatched int64 `json:"dispatched"`
	Delivered  int64 `json:"delivered"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
	// DrainTimeout bounds how long Run keeps delivering queued messages
	// after its context is cancelled.
	DrainTimeout time.Duration
}

// Dispatcher is a bounded in-process queue in front of a Sender. Dispatch
// never blocks: when the queue is full or the dispatcher has stopped, the
// message is dropped and counted. Delivery failures are logged and counted,
// never returned to the caller.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
	cfg    DispatcherConfig
	queue  chan Message

	// mu orders enqueueing against shutdown: once closed is set under the
	// write lock, nothing else reaches the queue and drain sees every message.
	mu     sync.RWMutex
	closed bool

	dispatched atomic.Int64
	delivered  atomic.Int64
	failed     atomic.Int64
	dropped    atomic.Int64
}

func NewDispatcher(sender Sender, logger *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 10 * time.Second
	}

	return &Dispatcher{
		sender: sender,
		logger: logger,
		cfg:    cfg,
		queue:  make(chan Message, cfg.QueueSize),
	}
}

// Dispatch enqueues msg and reports whether it was accepted.
func (d *Dispatcher) Dispatch(msg Message) bool {
	d.dispatched.Add(1)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(msg, "dispatcher stopped")
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.drop(msg, "queue full")
		return false
	}
}

func (d *Dispatcher) drop(msg Message, reason string) {
	d.dropped.Add(1)
	d.logger.Error("notification dropped: "+reason,
		slog.String("kind", string(msg.Kind)),
		slog.String("booking_id", msg.Booking.BookingID),
	)
}

// Run delivers queued messages until ctx is cancelled, then drains what is
// left within the drain timeout. Messages dispatched after Run returns are
// dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-d.queue:
					d.deliver(context.Background(), msg)
				}
			}
		}()
	}

	wg.Wait()

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.drain()

	return nil
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.DrainTimeout)
	defer cancel()

	for {
		select {
		case msg := <-d.queue:
			if ctx.Err() != nil {
				d.drop(msg, "drain timeout")
				continue
			}
			d.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.failed.Add(1)
		d.logger.Error("notification failed",
			slog.String("kind", string(msg.Kind)),
			slog.String("booking_id", msg.Booking.BookingID),
			slog.Any("error", err),
		)
		return
	}

	d.delivered.Add(1)
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Dispatched: d.dispatched.Load(),
		Delivered:  d.delivered.Load(),
		Failed:     d.failed.Load(),
		Dropped:    d.dropped.Load(),
	}
}
