// Package source provides frame producers for feeding the pipeline: a Y4M
// file reader and a synthetic test pattern generator.
package source

import (
	"fmt"
	"io"

	"github.com/mengelbart/y4m"

	"github.com/jgathje/framesink"
)

// Y4M reads I420 frames from a YUV4MPEG2 stream.
type Y4M struct {
	reader *y4m.Reader
	header *y4m.StreamHeader
}

func NewY4M(r io.Reader) (*Y4M, error) {
	reader, header, err := y4m.NewReader(r)
	if err != nil {
		return nil, err
	}
	switch header.ChromaSubsampling {
	case y4m.CST420, y4m.CST420jpeg, y4m.CST420mpeg2, y4m.CST420paldv:
	default:
		return nil, fmt.Errorf("unsupported chroma subsampling: %v", header.ChromaSubsampling)
	}
	return &Y4M{reader: reader, header: header}, nil
}

// Config derives pipeline parameters from the stream header. Fractional
// frame rates are truncated.
func (s *Y4M) Config() framesink.Config {
	return framesink.Config{
		FrameRate:   uint(s.header.FrameRate.Numerator / s.header.FrameRate.Denominator),
		Width:       uint(s.header.Width),
		Height:      uint(s.header.Height),
		PixelFormat: framesink.PixelI420,
	}
}

// ReadFrame returns the next frame, or io.EOF at end of stream.
func (s *Y4M) ReadFrame() ([]byte, error) {
	frame, _, err := s.reader.ReadNextFrame()
	if err != nil {
		return nil, err
	}
	return frame, nil
}
