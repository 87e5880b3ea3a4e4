// Package ivf implements an in-process software encoder sink: raw frames
// are VP8-encoded with libvpx, packetized as RTP and written to an IVF file.
package ivf

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4/pkg/media/ivfwriter"

	"github.com/jgathje/framesink"
	"github.com/jgathje/framesink/codec"
)

const (
	mtu         = 1200
	payloadType = 96
	clockRate   = 90_000
)

type Option func(*Sink) error

// TargetRate sets the encoder target bitrate in bits per second.
func TargetRate(bps uint) Option {
	return func(s *Sink) error {
		s.targetRate = bps
		return nil
	}
}

// Sink encodes raw frames and writes them to an IVF container. Frames must
// match the pixel format and geometry of the framesink.Config it was built
// with.
type Sink struct {
	enc        *codec.Encoder
	packetizer rtp.Packetizer
	writer     *ivfwriter.IVFWriter

	format        framesink.PixelFormat
	img           *image.YCbCr
	frameDuration time.Duration
	samples       uint32
	targetRate    uint
	logger        *slog.Logger
}

// NewSink writes an IVF stream to wc. wc is closed together with the Sink;
// if it is an io.Seeker the IVF header is fixed up with the final frame
// count on Close.
func NewSink(wc io.WriteCloser, cfg framesink.Config, opts ...Option) (*Sink, error) {
	if cfg.FrameRate == 0 {
		return nil, fmt.Errorf("ivf: frame rate must be set")
	}
	img, err := codec.NewI420Image(int(cfg.Width), int(cfg.Height))
	if err != nil {
		return nil, fmt.Errorf("ivf: %w", err)
	}
	frameDuration := time.Duration(float64(time.Second) / float64(cfg.FrameRate))

	s := &Sink{
		format:        cfg.PixelFormat,
		img:           img,
		frameDuration: frameDuration,
		samples:       uint32(frameDuration.Seconds() * clockRate),
		targetRate:    1_000_000,
		logger:        slog.Default().With("component", "ivf-sink"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.enc, err = codec.NewEncoder(codec.Config{
		Codec:      "vp8",
		Width:      cfg.Width,
		Height:     cfg.Height,
		FrameRate:  cfg.FrameRate,
		TargetRate: s.targetRate,
	})
	if err != nil {
		return nil, err
	}
	s.packetizer = rtp.NewPacketizer(
		mtu,
		payloadType,
		rand.Uint32(),
		&codecs.VP8Payloader{},
		rtp.NewRandomSequencer(),
		clockRate,
	)
	s.writer, err = ivfwriter.NewWith(wc)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) WriteFrame(frame []byte) error {
	var err error
	switch s.format {
	case framesink.PixelI420:
		err = codec.I420FromPlanar(s.img, frame)
	case framesink.PixelRGBA:
		err = codec.I420FromPacked(s.img, frame, false)
	case framesink.PixelBGRA:
		err = codec.I420FromPacked(s.img, frame, true)
	default:
		err = fmt.Errorf("unsupported pixel format: %v", s.format)
	}
	if err != nil {
		return err
	}

	encoded, err := s.enc.Encode(s.img, s.frameDuration)
	if err != nil {
		return err
	}
	s.logger.Debug("encoded frame",
		"raw-size", len(frame),
		"encoded-size", len(encoded.Payload),
		"keyframe", encoded.IsKeyFrame,
	)

	for _, pkt := range s.packetizer.Packetize(encoded.Payload, s.samples) {
		if err := s.writer.WriteRTP(pkt); err != nil {
			return err
		}
	}
	return nil
}

// Close finalizes the IVF header and releases the encoder.
func (s *Sink) Close() error {
	err := s.writer.Close()
	if cerr := s.enc.Close(); err == nil {
		err = cerr
	}
	return err
}
