// Package ffmpegpipe implements a sink that streams raw frames to the stdin
// of an ffmpeg child process.
package ffmpegpipe

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/jgathje/framesink"
)

// Encoder selects the ffmpeg video codec.
type Encoder int

const (
	Libx264 Encoder = iota
	Libx265
	HevcNvenc
	HevcVaapi
)

func (e Encoder) String() string {
	switch e {
	case Libx264:
		return "libx264"
	case Libx265:
		return "libx265"
	case HevcNvenc:
		return "hevc_nvenc"
	case HevcVaapi:
		return "hevc_vaapi"
	}
	return "unknown"
}

func ParseEncoder(s string) (Encoder, error) {
	switch s {
	case "libx264":
		return Libx264, nil
	case "libx265":
		return Libx265, nil
	case "hevc_nvenc":
		return HevcNvenc, nil
	case "hevc_vaapi":
		return HevcVaapi, nil
	}
	return Libx264, fmt.Errorf("unknown encoder: %s", s)
}

type Option func(*Sink) error

func SinkEncoder(e Encoder) Option {
	return func(s *Sink) error {
		s.encoder = e
		return nil
	}
}

// HighQuality trades encoding speed for quality: slow presets and, for the
// software encoders, yuv444p output.
func HighQuality(enabled bool) Option {
	return func(s *Sink) error {
		s.highQuality = enabled
		return nil
	}
}

func VAAPIDevice(path string) Option {
	return func(s *Sink) error {
		s.vaapiDevice = path
		return nil
	}
}

// Sink pipes raw frames into ffmpeg. The child process owns encoding and
// muxing; this sink only feeds it bytes in submission order.
type Sink struct {
	encoder     Encoder
	highQuality bool
	vaapiDevice string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	logger *slog.Logger
}

func NewSink(path string, cfg framesink.Config, opts ...Option) (*Sink, error) {
	s := &Sink{
		encoder:     Libx264,
		vaapiDevice: "/dev/dri/renderD128",
		logger:      slog.Default().With("component", "ffmpeg-pipe"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	args := buildArgs(path, cfg, s.encoder, s.highQuality, s.vaapiDevice)
	s.logger.Info("spawning ffmpeg", "args", args)

	s.cmd = exec.Command("ffmpeg", args...)
	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	s.stdin = stdin
	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	return s, nil
}

func (s *Sink) WriteFrame(frame []byte) error {
	_, err := s.stdin.Write(frame)
	return err
}

// Close closes ffmpeg's stdin and waits for the process to finish writing
// the container trailer.
func (s *Sink) Close() error {
	if err := s.stdin.Close(); err != nil {
		return err
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg exited with error: %w", err)
	}
	return nil
}

// buildArgs assembles the full ffmpeg invocation: raw video on stdin with
// the pipeline's geometry and pixel format, encoder-specific quality and
// hardware options, output path last.
func buildArgs(path string, cfg framesink.Config, enc Encoder, highQuality bool, vaapiDevice string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", inputPixFmt(cfg.PixelFormat),
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", fmt.Sprintf("%d", cfg.FrameRate),
		"-i", "-",
		"-an",
		"-vcodec", enc.String(),
	}

	if enc == HevcVaapi {
		args = append(args,
			"-vaapi_device", vaapiDevice,
			"-vf", "format=nv12,hwupload",
		)
	}

	args = append(args, qualityArgs(enc, highQuality)...)
	return append(args, path)
}

func inputPixFmt(f framesink.PixelFormat) string {
	switch f {
	case framesink.PixelI420:
		return "yuv420p"
	default:
		return f.String()
	}
}

func qualityArgs(enc Encoder, highQuality bool) []string {
	var args []string
	switch enc {
	case HevcVaapi:
		if highQuality {
			args = []string{"-compression_level", "11"}
		} else {
			args = []string{"-compression_level", "0"}
		}
	case HevcNvenc:
		if highQuality {
			args = []string{"-preset", "p7"}
		} else {
			args = []string{"-preset", "p1"}
		}
	default:
		if highQuality {
			args = []string{"-preset", "veryslow"}
		} else {
			args = []string{"-preset", "ultrafast"}
		}
	}
	// vaapi only supports the "vaapi" pix_fmt, set via the hwupload filter
	if enc != HevcVaapi {
		if highQuality {
			args = append(args, "-pix_fmt", "yuv444p")
		} else {
			args = append(args, "-pix_fmt", "yuv420p")
		}
	}
	return args
}
