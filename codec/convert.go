package codec

import (
	"fmt"
	"image"
	"image/color"
)

// I420FromPacked converts a packed 8-bit RGBA or BGRA frame into dst. The
// frame must hold width*height*4 bytes and the geometry must match dst.
// Chroma is subsampled by taking the top-left sample of each 2x2 block,
// which is accurate enough for the synthetic and screen content this
// pipeline carries. swapRB selects BGRA channel order.
func I420FromPacked(dst *image.YCbCr, frame []byte, swapRB bool) error {
	w := dst.Rect.Dx()
	h := dst.Rect.Dy()
	if len(frame) != w*h*4 {
		return fmt.Errorf("frame size %d does not match %dx%d rgba", len(frame), w, h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			r, g, b := frame[o], frame[o+1], frame[o+2]
			if swapRB {
				r, b = b, r
			}
			yy, cb, cr := color.RGBToYCbCr(r, g, b)
			dst.Y[y*dst.YStride+x] = yy
			if x%2 == 0 && y%2 == 0 {
				ci := (y/2)*dst.CStride + x/2
				dst.Cb[ci] = cb
				dst.Cr[ci] = cr
			}
		}
	}
	return nil
}

// I420FromPlanar wraps an already planar I420 frame into dst without
// copying plane contents beyond slicing.
func I420FromPlanar(dst *image.YCbCr, frame []byte) error {
	w := dst.Rect.Dx()
	h := dst.Rect.Dy()
	ySize := w * h
	cSize := ySize / 4
	if len(frame) != ySize+2*cSize {
		return fmt.Errorf("frame size %d does not match %dx%d i420", len(frame), w, h)
	}
	dst.Y = frame[:ySize]
	dst.Cb = frame[ySize : ySize+cSize]
	dst.Cr = frame[ySize+cSize:]
	return nil
}

// NewI420Image allocates an image suitable for the conversion helpers.
// Width and height must be even.
func NewI420Image(width, height int) (*image.YCbCr, error) {
	if width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("i420 requires even dimensions, got %dx%d", width, height)
	}
	return image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420), nil
}
