// Package y4m implements a sink writing frames as an uncompressed YUV4MPEG2
// stream. Input frames must be planar I420.
package y4m

import (
	"fmt"
	"io"

	"github.com/jgathje/framesink"
)

type Sink struct {
	wc            io.WriteCloser
	headerWritten bool
	cfg           framesink.Config
}

func NewSink(wc io.WriteCloser, cfg framesink.Config) (*Sink, error) {
	if cfg.PixelFormat != framesink.PixelI420 {
		return nil, fmt.Errorf("y4m: requires i420 frames, got %v", cfg.PixelFormat)
	}
	if cfg.FrameRate == 0 {
		return nil, fmt.Errorf("y4m: frame rate must be set")
	}
	return &Sink{wc: wc, cfg: cfg}, nil
}

func (s *Sink) WriteFrame(frame []byte) error {
	if want := s.cfg.FrameSize(); len(frame) != want {
		return fmt.Errorf("y4m: frame size %d, want %d", len(frame), want)
	}
	if !s.headerWritten {
		// YUV4MPEG2 W<width> H<height> F<fps_num>:<fps_den> Ip A<aspect> C<colorspace>
		header := fmt.Sprintf("YUV4MPEG2 W%d H%d F%d:1 Ip A0:0 C420jpeg\n",
			s.cfg.Width, s.cfg.Height, s.cfg.FrameRate)
		if _, err := io.WriteString(s.wc, header); err != nil {
			return err
		}
		s.headerWritten = true
	}
	if _, err := io.WriteString(s.wc, "FRAME\n"); err != nil {
		return err
	}
	_, err := s.wc.Write(frame)
	return err
}

func (s *Sink) Close() error {
	return s.wc.Close()
}
