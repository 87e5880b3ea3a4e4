// Package framesink decouples real-time frame production from slow video
// sinks. A Controller collects submitted frames into fixed-size blocks and
// hands sealed blocks to a background worker that forwards them to a Sink.
// The producer never waits for the sink unless a bounded queue with the
// blocking overflow policy is configured.
package framesink

import (
	"fmt"
)

// Sink consumes an ordered sequence of opaque frame buffers. WriteFrame is
// called by the pipeline worker only; Close is called exactly once after the
// worker has terminated, never concurrently with WriteFrame.
type Sink interface {
	WriteFrame(frame []byte) error
	Close() error
}

// DefaultBlockSize is the number of frames per sealed block.
const DefaultBlockSize = 240

type PixelFormat int

const (
	PixelBGRA PixelFormat = iota
	PixelRGBA
	PixelI420
)

func (f PixelFormat) String() string {
	switch f {
	case PixelBGRA:
		return "bgra"
	case PixelRGBA:
		return "rgba"
	case PixelI420:
		return "i420"
	}
	return "unknown"
}

func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "bgra":
		return PixelBGRA, nil
	case "rgba":
		return PixelRGBA, nil
	case "i420":
		return PixelI420, nil
	}
	return PixelBGRA, fmt.Errorf("unknown pixel format: %s", s)
}

// OverflowPolicy selects what happens when a bounded block queue is full.
type OverflowPolicy int

const (
	// OverflowWait blocks the producer until the worker frees a slot.
	OverflowWait OverflowPolicy = iota
	// OverflowDropOldest evicts the oldest queued block.
	OverflowDropOldest
	// OverflowDropNewest discards the block being enqueued.
	OverflowDropNewest
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowWait:
		return "wait"
	case OverflowDropOldest:
		return "drop-oldest"
	case OverflowDropNewest:
		return "drop-newest"
	}
	return "unknown"
}

func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "wait":
		return OverflowWait, nil
	case "drop-oldest":
		return OverflowDropOldest, nil
	case "drop-newest":
		return OverflowDropNewest, nil
	}
	return OverflowWait, fmt.Errorf("unknown overflow policy: %s", s)
}

// Config parameterizes a Controller. Frame geometry and format are opaque to
// the pipeline itself and are passed through to sinks.
type Config struct {
	FrameRate   uint
	Width       uint
	Height      uint
	PixelFormat PixelFormat

	// BlockSize is the number of frames per sealed block. Zero means
	// DefaultBlockSize.
	BlockSize int

	// MaxQueuedBlocks bounds the block queue. Zero means unbounded: the
	// producer never waits for a slow sink, at the cost of unbounded
	// memory growth.
	MaxQueuedBlocks int

	// Overflow selects the policy applied when the bounded queue is full.
	// Ignored when MaxQueuedBlocks is zero.
	Overflow OverflowPolicy
}

// FrameSize returns the expected size in bytes of one frame.
func (c Config) FrameSize() int {
	switch c.PixelFormat {
	case PixelI420:
		return int(c.Width*c.Height) * 3 / 2
	default:
		return int(c.Width*c.Height) * 4
	}
}

func (c Config) withDefaults() Config {
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	return c
}
