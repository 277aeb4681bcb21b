package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/turntable/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "turntable"
	app.Usage = "benchmark and capture rendering pipelines"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "capture",
			Usage: "render a frame sequence and capture images and frame timings",
			Description: `
Build the pipeline graph for the selected mode and render a sequence of frames.

The reference mode accumulates a fixed number of sub-frames for every captured
image. When orbiting, every captured frame is rendered from the next camera
pose along a circular path around the configured center.

Frames are written as PNG files and per-frame render times to frame_times.csv
under a mode specific folder of the output root.`,
			Flags:  append(append([]cli.Flag{}, cmd.PipelineFlags...), cmd.CaptureFlags...),
			Action: cmd.Capture,
		},
		{
			Name:  "debug",
			Usage: "dump pipeline graphs and render a single test frame",
			Flags: append(append([]cli.Flag{}, cmd.PipelineFlags...),
				cli.BoolFlag{
					Name:  "all",
					Usage: "dump the graph of every pipeline mode",
				},
			),
			Action: cmd.Debug,
		},
		{
			Name:   "list-stages",
			Usage:  "list available stage libraries and stage types",
			Action: cmd.ListStages,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
