package cmd

import (
	"github.com/achilleasa/turntable/capture"
	"github.com/achilleasa/turntable/config"
	"github.com/achilleasa/turntable/pipeline"
	"github.com/urfave/cli"
)

// Flags shared by every command that builds a pipeline.
var PipelineFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "load run configuration from a yaml or toml file",
	},
	cli.StringFlag{
		Name:  "mode, m",
		Usage: "pipeline mode (hdr, ldr, ref, nodenoise, blend)",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "frame width",
	},
	cli.IntFlag{
		Name:  "height",
		Usage: "frame height",
	},
	cli.StringFlag{
		Name:  "denoiser",
		Usage: "denoiser used by the hdr and ldr modes (oidn, optix)",
	},
	cli.BoolFlag{
		Name:  "temporal",
		Usage: "feed motion vectors into the denoiser",
	},
	cli.Float64Flag{
		Name:  "blend",
		Usage: "denoiser blend factor for the blend mode",
	},
}

// Flags used by the capture command.
var CaptureFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "frames, n",
		Usage: "number of frames to render when not orbiting",
	},
	cli.StringFlag{
		Name:  "out, o",
		Usage: "root folder for captured frames",
	},
	cli.StringFlag{
		Name:  "capture",
		Usage: "what to capture (timing, frames, both)",
	},
	cli.IntFlag{
		Name:  "start-frame",
		Usage: "skip writing frames with a lower index",
	},
	cli.BoolFlag{
		Name:  "orbit",
		Usage: "orbit the camera around the configured center",
	},
	cli.IntFlag{
		Name:  "sub-frames",
		Usage: "frames accumulated per reference image",
	},
	cli.IntFlag{
		Name:  "workers",
		Usage: "number of row block workers (0 = one per CPU)",
	},
}

// Load the run configuration and apply any command line overrides.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet("mode") {
		mode, err := pipeline.ParseMode(ctx.String("mode"))
		if err != nil {
			return cfg, err
		}
		cfg.Mode = mode
	}
	if ctx.IsSet("capture") {
		mode, err := capture.ParseMode(ctx.String("capture"))
		if err != nil {
			return cfg, err
		}
		cfg.Capture.Mode = mode
	}
	if ctx.IsSet("denoiser") {
		cfg.Denoiser.Kind = pipeline.DenoiserKind(ctx.String("denoiser"))
	}
	if ctx.IsSet("temporal") {
		cfg.Denoiser.Temporal = ctx.Bool("temporal")
	}
	if ctx.IsSet("blend") {
		cfg.Denoiser.Blend = float32(ctx.Float64("blend"))
	}
	if ctx.IsSet("width") {
		cfg.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Height = ctx.Int("height")
	}
	if ctx.IsSet("frames") {
		cfg.Frames = ctx.Int("frames")
	}
	if ctx.IsSet("out") {
		cfg.Capture.OutputRoot = ctx.String("out")
	}
	if ctx.IsSet("start-frame") {
		cfg.Capture.StartFrame = ctx.Int("start-frame")
	}
	if ctx.IsSet("orbit") {
		cfg.Orbit.Enabled = ctx.Bool("orbit")
	}
	if ctx.IsSet("sub-frames") {
		cfg.Accumulation.SubFrames = ctx.Int("sub-frames")
	}
	if ctx.IsSet("workers") {
		cfg.Workers = ctx.Int("workers")
	}

	return cfg, cfg.Validate()
}
