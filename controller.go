package framesink

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Submit and Close after the Controller has been
// closed.
var ErrClosed = errors.New("framesink: controller closed")

// Controller is the producer-facing façade of the pipeline. It owns the open
// block, the block queue and the worker goroutine. Submit and Close must be
// called from a single producer goroutine; Stats may be called from
// anywhere.
type Controller struct {
	cfg    Config
	sink   Sink
	queue  *blockQueue
	notify chan signal
	done   chan struct{}
	logger *slog.Logger

	// producer side only
	block  [][]byte
	closed bool

	state     atomic.Int32
	delivered atomic.Uint64
	writeErrs atomic.Uint64
	errMu     sync.Mutex
	lastErr   error
}

// Stats is a point-in-time snapshot of pipeline counters.
type Stats struct {
	QueuedBlocks    int
	DeliveredFrames uint64
	DroppedFrames   uint64
	WriteErrors     uint64
	LastWriteError  error
}

// New starts the worker goroutine and returns a Controller writing to sink.
// The Controller takes ownership of sink: it is closed by Close after the
// worker has terminated.
func New(sink Sink, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{
		cfg:    cfg,
		sink:   sink,
		queue:  newBlockQueue(cfg.MaxQueuedBlocks, cfg.Overflow),
		notify: make(chan signal, 1),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "framesink"),
		block:  make([][]byte, 0, cfg.BlockSize),
	}
	c.state.Store(int32(stateRunning))
	go c.run()
	return c
}

// Submit appends one frame to the open block. Ownership of frame transfers
// to the pipeline; the caller must not retain or mutate it. When the open
// block reaches capacity it is sealed, enqueued and the worker is woken.
// Submit never waits for the sink unless a bounded queue with OverflowWait
// is configured.
func (c *Controller) Submit(frame []byte) error {
	if c.closed {
		return ErrClosed
	}
	c.block = append(c.block, frame)
	if len(c.block) == c.cfg.BlockSize {
		c.seal()
	}
	return nil
}

// seal hands the open block to the queue and replaces it with a fresh one.
func (c *Controller) seal() {
	if len(c.block) == 0 {
		return
	}
	c.queue.push(c.block)
	c.block = make([][]byte, 0, c.cfg.BlockSize)
	c.wake()
}

// wake sends one coalesced wake signal. If a wake is already pending the
// send is skipped; the worker re-checks the queue on every wake, so one
// pending signal covers any number of enqueued blocks.
func (c *Controller) wake() {
	select {
	case c.notify <- signalWake:
	default:
	}
}

// Close seals and enqueues the trailing partial block, signals the worker to
// terminate, waits for it to drain all queued work and exit, then finalizes
// the sink. The Controller is unusable afterwards.
func (c *Controller) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.seal()
	// The send is ordered after the final block on the notify channel, and
	// the worker drains the queue once more after receiving it.
	c.notify <- signalEnd
	<-c.done
	c.logger.Info("pipeline closed",
		"delivered", c.delivered.Load(),
		"dropped", c.queue.droppedFrames(),
		"write-errors", c.writeErrs.Load(),
	)
	return c.sink.Close()
}

// Stats reports pipeline counters. Safe for concurrent use.
func (c *Controller) Stats() Stats {
	c.errMu.Lock()
	lastErr := c.lastErr
	c.errMu.Unlock()
	return Stats{
		QueuedBlocks:    c.queue.len(),
		DeliveredFrames: c.delivered.Load(),
		DroppedFrames:   c.queue.droppedFrames(),
		WriteErrors:     c.writeErrs.Load(),
		LastWriteError:  lastErr,
	}
}

func (c *Controller) recordWriteError(err error) {
	c.writeErrs.Add(1)
	c.errMu.Lock()
	c.lastErr = err
	c.errMu.Unlock()
	c.logger.Error("sink write failed", "error", err)
}

func (c *Controller) workerState() workerState {
	return workerState(c.state.Load())
}
