package subcmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jgathje/framesink"
	"github.com/jgathje/framesink/cmdmain"
	"github.com/jgathje/framesink/source"
)

func init() {
	cmdmain.RegisterSubCmd("convert", func() cmdmain.SubCmd { return new(Convert) })
}

type Convert struct{}

func (c *Convert) Exec(cmd string, args []string) error {
	var sf sinkFlags
	var pf pipelineFlags

	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	path := fs.String("file", "", "Input Y4M file")
	sf.register(fs)
	pf.register(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Convert a Y4M file through the frame pipeline

Usage:
	%s convert [flags]

Flags:
`, cmd)
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}
	fs.Parse(args)

	file, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer file.Close()

	src, err := source.NewY4M(file)
	if err != nil {
		return err
	}
	cfg, err := pf.apply(src.Config())
	if err != nil {
		return err
	}

	sink, err := sf.open(cfg)
	if err != nil {
		return err
	}

	ctrl := framesink.New(sink, cfg)
	for {
		frame, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ctrl.Close()
			return err
		}
		if err := ctrl.Submit(frame); err != nil {
			return err
		}
	}
	if err := ctrl.Close(); err != nil {
		return err
	}

	stats := ctrl.Stats()
	slog.Info("conversion finished",
		"delivered", stats.DeliveredFrames,
		"dropped", stats.DroppedFrames,
		"write-errors", stats.WriteErrors,
	)
	if stats.WriteErrors > 0 {
		return fmt.Errorf("%d frames failed to write, last error: %w", stats.WriteErrors, stats.LastWriteError)
	}
	return nil
}

func (c *Convert) Help() string {
	return "Convert a Y4M file to a video sink"
}
