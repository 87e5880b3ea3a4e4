package source

import (
	"bytes"
	"context"
	"io"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgathje/framesink"
)

func y4mStream() []byte {
	var buf bytes.Buffer
	buf.WriteString("YUV4MPEG2 W4 H2 F25:1 Ip A0:0 C420jpeg\n")
	for range 3 {
		buf.WriteString("FRAME\n")
		buf.Write(make([]byte, 4*2*3/2))
	}
	return buf.Bytes()
}

func TestY4MSource(t *testing.T) {
	src, err := NewY4M(bytes.NewReader(y4mStream()))
	require.NoError(t, err)

	cfg := src.Config()
	assert.Equal(t, uint(4), cfg.Width)
	assert.Equal(t, uint(2), cfg.Height)
	assert.Equal(t, uint(25), cfg.FrameRate)
	assert.Equal(t, framesink.PixelI420, cfg.PixelFormat)

	for range 3 {
		frame, err := src.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, cfg.FrameSize(), len(frame))
	}
	_, err = src.ReadFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestPatternFrameSizeAndMotion(t *testing.T) {
	src, err := NewPattern(framesink.Config{
		FrameRate:   1000,
		Width:       8,
		Height:      4,
		PixelFormat: framesink.PixelRGBA,
	})
	require.NoError(t, err)

	a, err := src.ReadFrame(context.Background())
	require.NoError(t, err)
	b, err := src.ReadFrame(context.Background())
	require.NoError(t, err)

	assert.Len(t, a, 8*4*4)
	assert.NotEqual(t, a, b, "consecutive frames must differ")
}

func TestPatternPacing(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src, err := NewPattern(framesink.Config{
			FrameRate:   10,
			Width:       2,
			Height:      2,
			PixelFormat: framesink.PixelBGRA,
		})
		require.NoError(t, err)

		start := time.Now()
		for range 3 {
			_, err := src.ReadFrame(context.Background())
			require.NoError(t, err)
		}
		// first frame is immediate, the following two each wait 100ms
		assert.Equal(t, 200*time.Millisecond, time.Since(start))
	})
}

func TestPatternRejectsPlanar(t *testing.T) {
	_, err := NewPattern(framesink.Config{
		FrameRate:   30,
		Width:       2,
		Height:      2,
		PixelFormat: framesink.PixelI420,
	})
	assert.Error(t, err)
}
