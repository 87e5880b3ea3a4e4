// Package subcmd implements the framesink subcommands.
package subcmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/jgathje/framesink"
	"github.com/jgathje/framesink/cmdmain"
	"github.com/jgathje/framesink/ffmpegpipe"
	"github.com/jgathje/framesink/gstreamer"
	"github.com/jgathje/framesink/ivf"
	"github.com/jgathje/framesink/rawfile"
	"github.com/jgathje/framesink/y4m"
)

func init() {
	cmdmain.RegisterSubCmd("help", func() cmdmain.SubCmd { return new(help) })
}

type help struct{}

func (h *help) Exec(cmd string, args []string) error {
	flag.Usage()
	return nil
}

func (h *help) Help() string {
	return "Print help"
}

// sinkFlags are shared by every subcommand that writes video output.
type sinkFlags struct {
	sinkType    string
	location    string
	encoder     string
	highQuality bool
}

func (sf *sinkFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&sf.sinkType, "sink-type", "ffmpeg", "Output sink: ffmpeg, raw, ivf, gstreamer or y4m")
	fs.StringVar(&sf.location, "sink-location", "out.mp4", "Output file path")
	fs.StringVar(&sf.encoder, "encoder", "libx264", "ffmpeg encoder: libx264, libx265, hevc_nvenc or hevc_vaapi")
	fs.BoolVar(&sf.highQuality, "high-quality", false, "Trade encoding speed for quality")
}

func (sf *sinkFlags) open(cfg framesink.Config) (framesink.Sink, error) {
	switch sf.sinkType {
	case "ffmpeg":
		enc, err := ffmpegpipe.ParseEncoder(sf.encoder)
		if err != nil {
			return nil, err
		}
		return ffmpegpipe.NewSink(sf.location, cfg,
			ffmpegpipe.SinkEncoder(enc),
			ffmpegpipe.HighQuality(sf.highQuality),
		)
	case "raw":
		return rawfile.NewSink(sf.location)
	case "ivf":
		file, err := os.Create(sf.location)
		if err != nil {
			return nil, err
		}
		return ivf.NewSink(file, cfg)
	case "gstreamer":
		return gstreamer.NewSink(sf.location, cfg)
	case "y4m":
		file, err := os.Create(sf.location)
		if err != nil {
			return nil, err
		}
		return y4m.NewSink(file, cfg)
	}
	return nil, fmt.Errorf("unknown sink type: %s", sf.sinkType)
}

// pipelineFlags expose the block batching and backpressure knobs.
type pipelineFlags struct {
	blockSize int
	maxBlocks int
	overflow  string
}

func (pf *pipelineFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&pf.blockSize, "block-size", framesink.DefaultBlockSize, "Frames per sealed block")
	fs.IntVar(&pf.maxBlocks, "max-queued-blocks", 0, "Bound on queued blocks, 0 means unbounded")
	fs.StringVar(&pf.overflow, "overflow", "wait", "Bounded queue overflow policy: wait, drop-oldest or drop-newest")
}

func (pf *pipelineFlags) apply(cfg framesink.Config) (framesink.Config, error) {
	policy, err := framesink.ParseOverflowPolicy(pf.overflow)
	if err != nil {
		return cfg, err
	}
	cfg.BlockSize = pf.blockSize
	cfg.MaxQueuedBlocks = pf.maxBlocks
	cfg.Overflow = policy
	return cfg, nil
}
