package codec

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packedFrame(w, h int, r, g, b byte) []byte {
	f := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		f[i*4] = r
		f[i*4+1] = g
		f[i*4+2] = b
		f[i*4+3] = 0xff
	}
	return f
}

func TestI420FromPackedRGBA(t *testing.T) {
	img, err := NewI420Image(4, 2)
	require.NoError(t, err)

	require.NoError(t, I420FromPacked(img, packedFrame(4, 2, 255, 255, 255), false))
	yy, cb, cr := color.RGBToYCbCr(255, 255, 255)
	assert.Equal(t, yy, img.Y[0])
	assert.Equal(t, cb, img.Cb[0])
	assert.Equal(t, cr, img.Cr[0])
}

func TestI420FromPackedBGRA(t *testing.T) {
	img, err := NewI420Image(2, 2)
	require.NoError(t, err)

	// pure red stored in BGRA order
	require.NoError(t, I420FromPacked(img, packedFrame(2, 2, 0, 0, 255), true))
	yy, cb, cr := color.RGBToYCbCr(255, 0, 0)
	assert.Equal(t, yy, img.Y[0])
	assert.Equal(t, cb, img.Cb[0])
	assert.Equal(t, cr, img.Cr[0])
}

func TestI420SizeMismatch(t *testing.T) {
	img, err := NewI420Image(4, 4)
	require.NoError(t, err)
	assert.Error(t, I420FromPacked(img, make([]byte, 3), false))
	assert.Error(t, I420FromPlanar(img, make([]byte, 3)))
}

func TestI420FromPlanar(t *testing.T) {
	img, err := NewI420Image(2, 2)
	require.NoError(t, err)

	frame := []byte{1, 2, 3, 4, 5, 6}
	require.NoError(t, I420FromPlanar(img, frame))
	assert.Equal(t, []byte{1, 2, 3, 4}, img.Y)
	assert.Equal(t, []byte{5}, img.Cb)
	assert.Equal(t, []byte{6}, img.Cr)
}

func TestNewI420ImageOddDimensions(t *testing.T) {
	_, err := NewI420Image(3, 2)
	assert.Error(t, err)
}
