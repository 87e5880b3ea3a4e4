// Package gstreamer implements a sink feeding raw frames into a GStreamer
// encode pipeline through an appsrc element.
package gstreamer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gst/go-glib/glib"
	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"

	"github.com/jgathje/framesink"
)

type Option func(*Sink) error

// SinkEncoder sets the encoder element, e.g. "x264enc" or "vp8enc".
func SinkEncoder(name string) Option {
	return func(s *Sink) error {
		s.encoderName = name
		return nil
	}
}

// SinkMuxer sets the muxer element, e.g. "mp4mux" or "webmmux".
func SinkMuxer(name string) Option {
	return func(s *Sink) error {
		s.muxerName = name
		return nil
	}
}

// Sink pushes frames into
// appsrc ! videoconvert ! <encoder> ! <muxer> ! filesink.
type Sink struct {
	encoderName string
	muxerName   string

	pipeline *gst.Pipeline
	src      *app.Source
	mainloop *glib.MainLoop

	mu      sync.Mutex
	busErr  error
	stopped chan struct{}
}

func NewSink(location string, cfg framesink.Config, opts ...Option) (*Sink, error) {
	gst.Init(nil)

	s := &Sink{
		encoderName: "x264enc",
		muxerName:   "mp4mux",
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	pipeline, err := gst.NewPipeline("framesink")
	if err != nil {
		return nil, err
	}
	s.pipeline = pipeline

	appsrc, err := gst.NewElement("appsrc")
	if err != nil {
		return nil, err
	}
	caps := gst.NewCapsFromString(fmt.Sprintf(
		"video/x-raw,format=%s,width=%d,height=%d,framerate=%d/1",
		gstFormat(cfg.PixelFormat), cfg.Width, cfg.Height, cfg.FrameRate,
	))
	if err := SetProperties(appsrc, map[string]any{
		"caps":         caps,
		"is-live":      true,
		"do-timestamp": true,
		"format":       int(gst.FormatTime),
		"block":        true,
	}); err != nil {
		return nil, err
	}

	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, err
	}
	encoder, err := gst.NewElement(s.encoderName)
	if err != nil {
		return nil, err
	}
	muxer, err := gst.NewElement(s.muxerName)
	if err != nil {
		return nil, err
	}
	filesink, err := gst.NewElement("filesink")
	if err != nil {
		return nil, err
	}
	if err := filesink.SetProperty("location", location); err != nil {
		return nil, err
	}

	elements := []*gst.Element{appsrc, convert, encoder, muxer, filesink}
	if err := pipeline.AddMany(elements...); err != nil {
		return nil, err
	}
	if err := gst.ElementLinkMany(elements...); err != nil {
		return nil, err
	}

	s.src = app.SrcFromElement(appsrc)

	s.mainloop = glib.NewMainLoop(glib.MainContextDefault(), false)
	pipeline.GetPipelineBus().AddWatch(func(msg *gst.Message) bool {
		switch msg.Type() {
		case gst.MessageEOS:
			s.mainloop.Quit()
		case gst.MessageError:
			gerr := msg.ParseError()
			s.mu.Lock()
			s.busErr = errors.New(gerr.Error())
			s.mu.Unlock()
			s.mainloop.Quit()
		}
		return true
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, err
	}
	go func() {
		defer close(s.stopped)
		s.mainloop.Run()
	}()

	return s, nil
}

func (s *Sink) WriteFrame(frame []byte) error {
	s.mu.Lock()
	busErr := s.busErr
	s.mu.Unlock()
	if busErr != nil {
		return busErr
	}
	if ret := s.src.PushBuffer(gst.NewBufferFromBytes(frame)); ret != gst.FlowOK {
		return fmt.Errorf("appsrc push returned %v", ret)
	}
	return nil
}

// Close sends EOS, waits for the muxer to finalize the container and tears
// the pipeline down.
func (s *Sink) Close() error {
	s.src.EndStream()
	<-s.stopped
	s.pipeline.BlockSetState(gst.StateNull)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busErr
}

// SetProperties applies all given element properties.
func SetProperties(e *gst.Element, pp map[string]any) error {
	for k, v := range pp {
		if err := e.SetProperty(k, v); err != nil {
			return err
		}
	}
	return nil
}

func gstFormat(f framesink.PixelFormat) string {
	switch f {
	case framesink.PixelRGBA:
		return "RGBA"
	case framesink.PixelI420:
		return "I420"
	default:
		return "BGRA"
	}
}
