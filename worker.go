package framesink

// workerState mirrors the lifecycle of the background worker. The worker is
// running while it drains the queue, sleeping while it blocks on the notify
// channel and terminated once it has observed signalEnd.
type workerState int32

const (
	stateRunning workerState = iota
	stateSleeping
	stateTerminated
)

// signal values travel on the notify channel, which is separate from the
// block queue itself. Wake signals are coalesced: the channel holds at most
// one pending wake and the worker re-checks the queue after every receive,
// so a wake that arrives after the worker already resumed is harmless.
type signal uint8

const (
	signalWake signal = iota
	signalEnd
)

// run is the worker loop. It drains the block queue, forwarding every frame
// of a block to the sink in order, and sleeps on the notify channel when a
// drain attempt finds the queue empty. signalEnd triggers a final drain and
// terminates the loop; the trailing partial block has already been sealed
// and enqueued by Close at that point, so nothing is lost.
func (c *Controller) run() {
	defer close(c.done)
	defer c.state.Store(int32(stateTerminated))
	for {
		block, ok := c.queue.pop()
		if ok {
			c.writeBlock(block)
			continue
		}
		c.state.Store(int32(stateSleeping))
		c.logger.Debug("worker sleeping")
		s := <-c.notify
		c.state.Store(int32(stateRunning))
		if s == signalEnd {
			for {
				block, ok := c.queue.pop()
				if !ok {
					return
				}
				c.writeBlock(block)
			}
		}
	}
}

// writeBlock forwards one sealed block to the sink. A write failure is not
// escalated to the producer: the worker records it and keeps draining,
// because halting a real-time pipeline on one bad frame is worse than
// dropping it. Failures stay observable through Stats.
func (c *Controller) writeBlock(block [][]byte) {
	for _, frame := range block {
		if err := c.sink.WriteFrame(frame); err != nil {
			c.recordWriteError(err)
			continue
		}
		c.delivered.Add(1)
	}
	c.logger.Debug("block written", "frames", len(block), "queued", c.queue.len())
}
