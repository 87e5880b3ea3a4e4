// Package codec wraps libvpx for in-process software encoding of raw video
// frames.
package codec

// Config parameterizes an Encoder.
type Config struct {
	Codec      string // "vp8" or "vp9"
	Width      uint
	Height     uint
	FrameRate  uint
	TargetRate uint // bits per second
}

// Frame is one encoded frame.
type Frame struct {
	IsKeyFrame bool
	Payload    []byte
}
