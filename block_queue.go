package framesink

import (
	"sync"
)

// blockQueue is a FIFO of sealed blocks shared between the producer side of
// the Controller (push) and the worker (pop). All access goes through the
// mutex; the open block never enters the queue and needs no locking.
type blockQueue struct {
	mu      sync.Mutex
	notFull *sync.Cond

	blocks  [][][]byte
	max     int // 0 = unbounded
	policy  OverflowPolicy
	dropped uint64 // frames discarded by an overflow policy
}

func newBlockQueue(max int, policy OverflowPolicy) *blockQueue {
	q := &blockQueue{
		blocks: make([][][]byte, 0),
		max:    max,
		policy: policy,
	}
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// push appends a sealed block. With a bounded queue the configured overflow
// policy applies; OverflowWait suspends the caller until the worker frees a
// slot. Returns false if the block was discarded.
func (q *blockQueue) push(block [][]byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.max > 0 && len(q.blocks) >= q.max {
		switch q.policy {
		case OverflowWait:
			for len(q.blocks) >= q.max {
				q.notFull.Wait()
			}
		case OverflowDropOldest:
			q.dropped += uint64(len(q.blocks[0]))
			q.blocks = q.blocks[1:]
		case OverflowDropNewest:
			q.dropped += uint64(len(block))
			return false
		}
	}
	q.blocks = append(q.blocks, block)
	return true
}

// pop removes and returns the oldest block, or ok=false if the queue is
// empty.
func (q *blockQueue) pop() ([][]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.blocks) == 0 {
		return nil, false
	}
	block := q.blocks[0]
	q.blocks = q.blocks[1:]
	q.notFull.Signal()
	return block, true
}

func (q *blockQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.blocks)
}

func (q *blockQueue) droppedFrames() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
