package subcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jgathje/framesink"
	"github.com/jgathje/framesink/cmdmain"
	"github.com/jgathje/framesink/source"
)

func init() {
	cmdmain.RegisterSubCmd("synth", func() cmdmain.SubCmd { return new(Synth) })
}

type synthFlags struct {
	frames int
	fps    uint
	width  uint
	height uint
	format string
}

// Synth renders a synthetic test pattern at the target framerate and feeds
// it through the pipeline, simulating a real-time producer.
type Synth struct{}

func (s *Synth) Exec(cmd string, args []string) error {
	var yf synthFlags
	var sf sinkFlags
	var pf pipelineFlags

	fs := flag.NewFlagSet("synth", flag.ExitOnError)
	fs.IntVar(&yf.frames, "frames", 300, "Number of frames to generate")
	fs.UintVar(&yf.fps, "fps", 60, "Target framerate")
	fs.UintVar(&yf.width, "width", 1280, "Frame width")
	fs.UintVar(&yf.height, "height", 720, "Frame height")
	fs.StringVar(&yf.format, "format", "bgra", "Pixel format: bgra or rgba")
	sf.register(fs)
	pf.register(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Generate a test pattern through the frame pipeline

Usage:
	%s synth [flags]

Flags:
`, cmd)
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}
	fs.Parse(args)

	format, err := framesink.ParsePixelFormat(yf.format)
	if err != nil {
		return err
	}
	cfg, err := pf.apply(framesink.Config{
		FrameRate:   yf.fps,
		Width:       yf.width,
		Height:      yf.height,
		PixelFormat: format,
	})
	if err != nil {
		return err
	}

	src, err := source.NewPattern(cfg)
	if err != nil {
		return err
	}
	sink, err := sf.open(cfg)
	if err != nil {
		return err
	}
	ctrl := framesink.New(sink, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for i := 0; i < yf.frames; i++ {
			frame, err := src.ReadFrame(ctx)
			if err != nil {
				return err
			}
			if err := ctrl.Submit(frame); err != nil {
				return err
			}
		}
		return nil
	})

	produceErr := g.Wait()
	if err := ctrl.Close(); err != nil {
		return err
	}
	if produceErr != nil && !errors.Is(produceErr, context.Canceled) {
		return produceErr
	}

	stats := ctrl.Stats()
	slog.Info("synthesis finished",
		"delivered", stats.DeliveredFrames,
		"dropped", stats.DroppedFrames,
		"write-errors", stats.WriteErrors,
	)
	return nil
}

func (s *Synth) Help() string {
	return "Render a synthetic test pattern to a video sink"
}
