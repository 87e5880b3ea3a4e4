package framesink

import (
	"fmt"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSink struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (s *recordSink) WriteFrame(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
	return nil
}

func (s *recordSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

type failSink struct {
	recordSink
	failOn int // 1-based index of the write that fails
	writes int
}

func (s *failSink) WriteFrame(frame []byte) error {
	s.writes++
	if s.writes == s.failOn {
		return fmt.Errorf("write %d rejected", s.writes)
	}
	return s.recordSink.WriteFrame(frame)
}

func frames(n int) [][]byte {
	ff := make([][]byte, n)
	for i := range ff {
		ff[i] = []byte(fmt.Sprintf("frame-%d", i))
	}
	return ff
}

func TestOrderPreservedAcrossBlocks(t *testing.T) {
	sink := &recordSink{}
	c := New(sink, Config{BlockSize: 8})

	in := frames(50)
	for _, f := range in {
		require.NoError(t, c.Submit(f))
	}
	require.NoError(t, c.Close())

	require.Equal(t, in, sink.frames)
	assert.True(t, sink.closed)
}

func TestNoLossOnClose(t *testing.T) {
	// 300 is not a multiple of the default block size, so the trailing
	// partial block must be flushed by Close.
	sink := &recordSink{}
	c := New(sink, Config{})

	in := frames(300)
	for _, f := range in {
		require.NoError(t, c.Submit(f))
	}
	require.NoError(t, c.Close())

	require.Equal(t, in, sink.frames)
	assert.Equal(t, uint64(300), c.Stats().DeliveredFrames)
	assert.Equal(t, uint64(0), c.Stats().DroppedFrames)
}

func TestNoDoubleDelivery(t *testing.T) {
	sink := &recordSink{}
	c := New(sink, Config{BlockSize: 16})

	for _, f := range frames(100) {
		require.NoError(t, c.Submit(f))
	}
	require.NoError(t, c.Close())

	seen := map[string]int{}
	for _, f := range sink.frames {
		seen[string(f)]++
	}
	require.Len(t, seen, 100)
	for f, n := range seen {
		assert.Equal(t, 1, n, "frame %s delivered %d times", f, n)
	}
}

func TestCloseWithoutFrames(t *testing.T) {
	sink := &recordSink{}
	c := New(sink, Config{})
	require.NoError(t, c.Close())
	assert.Zero(t, sink.count())
	assert.True(t, sink.closed)
}

func TestSubmitAfterClose(t *testing.T) {
	c := New(&recordSink{}, Config{})
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Submit([]byte("late")), ErrClosed)
	assert.ErrorIs(t, c.Close(), ErrClosed)
}

func TestSleepWakeCorrectness(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sink := &recordSink{}
		c := New(sink, Config{BlockSize: 4})

		// Let the worker find an empty queue and go to sleep.
		synctest.Wait()
		require.Equal(t, stateSleeping, c.workerState())

		// Sealing a block must wake it, and it must drain the block
		// without a second trigger.
		for _, f := range frames(4) {
			require.NoError(t, c.Submit(f))
		}
		synctest.Wait()
		assert.Equal(t, 4, sink.count())
		assert.Equal(t, stateSleeping, c.workerState())

		// And again after it went back to sleep.
		for _, f := range frames(4) {
			require.NoError(t, c.Submit(f))
		}
		synctest.Wait()
		assert.Equal(t, 8, sink.count())

		require.NoError(t, c.Close())
		require.Equal(t, stateTerminated, c.workerState())
	})
}

func TestOpenBlockSealedAtCapacity(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sink := &recordSink{}
		c := New(sink, Config{BlockSize: 4})

		for _, f := range frames(3) {
			require.NoError(t, c.Submit(f))
		}
		assert.Len(t, c.block, 3)
		synctest.Wait()
		assert.Zero(t, sink.count(), "partial block must not be handed off")

		require.NoError(t, c.Submit([]byte("frame-3")))
		assert.Empty(t, c.block, "sealing must leave a fresh open block")
		synctest.Wait()
		assert.Equal(t, 4, sink.count())

		require.NoError(t, c.Close())
	})
}

func TestWriteFailureDoesNotHaltWorker(t *testing.T) {
	sink := &failSink{failOn: 3}
	c := New(sink, Config{BlockSize: 5})

	for _, f := range frames(10) {
		require.NoError(t, c.Submit(f))
	}
	require.NoError(t, c.Close())

	assert.Equal(t, 9, sink.count())
	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.WriteErrors)
	assert.Equal(t, uint64(9), stats.DeliveredFrames)
	require.Error(t, stats.LastWriteError)
	assert.Contains(t, stats.LastWriteError.Error(), "rejected")
}
