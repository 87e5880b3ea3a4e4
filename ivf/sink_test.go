package ivf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgathje/framesink"
)

type bufCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufCloser) Close() error {
	b.closed = true
	return nil
}

func TestSinkWritesIVFStream(t *testing.T) {
	buf := &bufCloser{}
	cfg := framesink.Config{
		FrameRate:   30,
		Width:       64,
		Height:      48,
		PixelFormat: framesink.PixelBGRA,
	}
	sink, err := NewSink(buf, cfg, TargetRate(500_000))
	require.NoError(t, err)

	frame := make([]byte, cfg.FrameSize())
	for range 3 {
		require.NoError(t, sink.WriteFrame(frame))
	}
	require.NoError(t, sink.Close())

	assert.True(t, buf.closed)
	out := buf.Bytes()
	require.Greater(t, len(out), 32, "expected IVF header plus frames")
	assert.Equal(t, "DKIF", string(out[:4]))
	assert.Equal(t, "VP80", string(out[8:12]))
}

func TestSinkRejectsWrongFrameSize(t *testing.T) {
	sink, err := NewSink(&bufCloser{}, framesink.Config{
		FrameRate:   30,
		Width:       64,
		Height:      48,
		PixelFormat: framesink.PixelRGBA,
	})
	require.NoError(t, err)
	assert.Error(t, sink.WriteFrame(make([]byte, 5)))
}

func TestSinkRequiresFrameRate(t *testing.T) {
	_, err := NewSink(&bufCloser{}, framesink.Config{Width: 64, Height: 48})
	assert.Error(t, err)
}
