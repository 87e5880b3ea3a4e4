package codec

/*
#cgo pkg-config: vpx
#include <stdlib.h>
#include "vpx/vpx_encoder.h"
#include "vpx/vp8cx.h"
#include "vpx/vpx_image.h"

vpx_codec_err_t vpx_codec_enc_init_macro(
	vpx_codec_ctx_t *ctx,
	vpx_codec_iface_t *iface,
	const vpx_codec_enc_cfg_t *cfg,
	vpx_codec_flags_t flags
) {
	return vpx_codec_enc_init(ctx, iface, cfg, flags);
}

void *pktBuf(vpx_codec_cx_pkt_t *pkt) {
  return pkt->data.frame.buf;
}

int pktSz(vpx_codec_cx_pkt_t *pkt) {
  return pkt->data.frame.sz;
}

vpx_codec_frame_flags_t pktFrameFlags(vpx_codec_cx_pkt_t *pkt) {
  return pkt->data.frame.flags;
}
*/
import "C"
import (
	"fmt"
	"image"
	"time"
	"unsafe"
)

func encoderInterfaceByName(codec string) (*C.vpx_codec_iface_t, error) {
	switch codec {
	case "vp8":
		return C.vpx_codec_vp8_cx(), nil
	case "vp9":
		return C.vpx_codec_vp9_cx(), nil
	}
	return nil, fmt.Errorf("unknown codec: %v", codec)
}

// Encoder encodes I420 images into VP8/VP9 frames. Not safe for concurrent
// use.
type Encoder struct {
	iface *C.vpx_codec_iface_t
	ctx   *C.vpx_codec_ctx_t
	cfg   *C.vpx_codec_enc_cfg_t

	pts   int64
	frame []byte
}

func NewEncoder(c Config) (*Encoder, error) {
	iface, err := encoderInterfaceByName(c.Codec)
	if err != nil {
		return nil, err
	}
	var cfg C.vpx_codec_enc_cfg_t
	if res := C.vpx_codec_enc_config_default(iface, &cfg, 0); res != 0 {
		return nil, fmt.Errorf("failed to get encoder default config: %v", res)
	}

	cfg.g_w = C.uint(c.Width)
	cfg.g_h = C.uint(c.Height)
	// millisecond timebase, pts counted in ms
	cfg.g_timebase.num = 1
	cfg.g_timebase.den = 1000
	cfg.rc_end_usage = C.VPX_CBR
	cfg.rc_target_bitrate = C.uint(c.TargetRate / 1000)
	cfg.g_error_resilient = C.vpx_codec_er_flags_t(0)
	cfg.g_pass = C.VPX_RC_ONE_PASS
	cfg.rc_resize_allowed = 0

	ctx := (*C.vpx_codec_ctx_t)(C.malloc(C.size_t(unsafe.Sizeof(C.vpx_codec_ctx_t{}))))
	if ctx == nil {
		return nil, fmt.Errorf("failed to allocate codec context")
	}
	if res := C.vpx_codec_enc_init_macro(ctx, iface, &cfg, 0); res != 0 {
		return nil, fmt.Errorf("failed to init encoder: %v", res)
	}
	return &Encoder{
		iface: iface,
		ctx:   ctx,
		cfg:   &cfg,
		frame: make([]byte, 0),
	}, nil
}

// Encode submits one image and returns the encoded frame. duration is the
// display duration of the frame; presentation timestamps are derived from
// the accumulated durations of previous frames.
func (e *Encoder) Encode(img *image.YCbCr, duration time.Duration) (*Frame, error) {
	raw := C.vpx_img_alloc(
		nil,
		C.VPX_IMG_FMT_I420,
		C.uint(img.Bounds().Dx()),
		C.uint(img.Bounds().Dy()),
		1,
	)
	defer C.vpx_img_free(raw)

	raw.planes[0] = (*C.uchar)(unsafe.Pointer(&img.Y[0]))
	raw.planes[1] = (*C.uchar)(unsafe.Pointer(&img.Cb[0]))
	raw.planes[2] = (*C.uchar)(unsafe.Pointer(&img.Cr[0]))

	res := C.vpx_codec_encode(
		e.ctx,
		raw,
		C.vpx_codec_pts_t(e.pts),
		C.ulong(duration.Milliseconds()),
		C.vpx_enc_frame_flags_t(0),
		C.VPX_DL_REALTIME,
	)
	if res != C.VPX_CODEC_OK {
		return nil, fmt.Errorf("failed to encode frame: %v", res)
	}
	e.pts += duration.Milliseconds()

	var iter C.vpx_codec_iter_t
	frame := &Frame{}
	e.frame = e.frame[:0]
	for {
		pkt := C.vpx_codec_get_cx_data(e.ctx, &iter)
		if pkt == nil {
			break
		}
		if pkt.kind == C.VPX_CODEC_CX_FRAME_PKT {
			frame.IsKeyFrame = C.pktFrameFlags(pkt)&C.VPX_FRAME_IS_KEY == C.VPX_FRAME_IS_KEY
			encoded := C.GoBytes(unsafe.Pointer(C.pktBuf(pkt)), C.pktSz(pkt))
			e.frame = append(e.frame, encoded...)
		}
	}
	frame.Payload = make([]byte, len(e.frame))
	copy(frame.Payload, e.frame)
	return frame, nil
}

// Close releases the codec context.
func (e *Encoder) Close() error {
	if e.ctx == nil {
		return nil
	}
	C.vpx_codec_destroy(e.ctx)
	C.free(unsafe.Pointer(e.ctx))
	e.ctx = nil
	return nil
}
