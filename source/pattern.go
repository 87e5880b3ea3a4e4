package source

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/jgathje/framesink"
)

// Pattern generates moving-gradient frames at the configured frame rate. It
// stands in for a real-time renderer: ReadFrame paces itself so frames are
// produced no faster than the target rate.
type Pattern struct {
	cfg     framesink.Config
	limiter *rate.Limiter
	n       int
}

func NewPattern(cfg framesink.Config) (*Pattern, error) {
	if cfg.PixelFormat == framesink.PixelI420 {
		return nil, fmt.Errorf("pattern source generates packed frames, got %v", cfg.PixelFormat)
	}
	if cfg.FrameRate == 0 {
		return nil, fmt.Errorf("pattern source requires a frame rate")
	}
	return &Pattern{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.FrameRate), 1),
	}, nil
}

// ReadFrame waits for the next frame slot and returns a freshly allocated
// frame. The returned buffer is owned by the caller.
func (p *Pattern) ReadFrame(ctx context.Context) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	w := int(p.cfg.Width)
	h := int(p.cfg.Height)
	frame := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			frame[o] = byte(x + p.n)
			frame[o+1] = byte(y + p.n)
			frame[o+2] = byte(p.n)
			frame[o+3] = 0xff
		}
	}
	p.n++
	return frame, nil
}

// Config returns the geometry the source generates.
func (p *Pattern) Config() framesink.Config {
	return p.cfg
}
