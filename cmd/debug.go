package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/achilleasa/turntable/pipeline"
	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Build the pipeline graph for each requested mode, execute a single frame
// and dump the graph topology together with the output buffer statistics.
func Debug(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, &cfg)
	if err != nil {
		return err
	}

	modes := []pipeline.Mode{cfg.Mode}
	if ctx.Bool("all") {
		modes = pipeline.Modes()
	}

	for _, mode := range modes {
		cfg.Mode = mode
		camera := scene.NewCamera(cfg.CameraPose(), cfg.Camera.FOV)
		rt, err := tracer.NewRuntime(camera, tracer.Options{
			Width:   cfg.Width,
			Height:  cfg.Height,
			Workers: cfg.Workers,
		})
		if err != nil {
			return err
		}

		err = debugMode(rt, mode, cfg.PipelineOptions())
		if closeErr := rt.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			logger.Errorf("mode %s: %v", mode, err)
			return err
		}
	}

	return nil
}

func debugMode(rt *tracer.Runtime, mode pipeline.Mode, opts pipeline.Options) error {
	g, err := pipeline.BuildGraph(mode, rt, opts)
	if err != nil {
		return err
	}
	if err = rt.AddGraph(g); err != nil {
		_ = g.Close()
		return err
	}

	if err = rt.AdvanceFrame(); err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Stage", "Type", "Inputs"})
	for idx, name := range g.Order() {
		h, _ := g.Stage(name)
		var inputs []string
		for _, edge := range g.Inbound(name) {
			inputs = append(inputs, edge.String())
		}
		table.Append([]string{
			fmt.Sprintf("%d", idx),
			name,
			string(h.Type()),
			strings.Join(inputs, "\n"),
		})
	}

	out := rt.Output()
	var maxV float32
	for _, v := range out.Pix {
		if v > maxV {
			maxV = v
		}
	}
	table.SetFooter([]string{"", "OUTPUT", g.Output().String(), fmt.Sprintf("%dx%d max %.3f in %s", out.W, out.H, maxV, rt.LastFrameTime())})

	table.Render()
	logger.Noticef("graph %q\n%s", g.Name(), buf.String())
	return nil
}
