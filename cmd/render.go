package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/achilleasa/turntable/capture"
	"github.com/achilleasa/turntable/config"
	"github.com/achilleasa/turntable/pipeline"
	"github.com/achilleasa/turntable/renderer"
	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render and capture a sequence of frames.
func Capture(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, &cfg)
	if err != nil {
		return err
	}

	rc, err := setupRun(cfg)
	if err != nil {
		return err
	}
	defer rc.Close()

	var orbit *scene.Orbit
	if orbitOpts := cfg.OrbitOptions(); orbitOpts != nil {
		if orbit, err = scene.NewOrbit(rc.Camera.Pose(), *orbitOpts); err != nil {
			return err
		}
	}

	r, err := renderer.New(rc, cfg.RendererOptions(orbit))
	if err != nil {
		return err
	}
	defer r.Close()

	runCtx, stop := interruptContext(context.Background())
	defer stop()

	logger.Noticef("run %s: rendering %s pipeline at %dx%d", rc.ID, cfg.Mode, cfg.Width, cfg.Height)
	err = r.Render(runCtx)

	// Display stats
	displayFrameStats(r.Stats())

	return err
}

var notifyContext = signal.NotifyContext

// Get a context cancelled by the first SIGINT or SIGTERM. The signal handler is
// released as soon as the context is done so a second signal terminates the
// process even while a logical frame is still rendering.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := notifyContext(parent, os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

// Wire the camera, stage runtime, pipeline graph and capture sequencer of a
// run. The returned context owns every resource it wires.
func setupRun(cfg config.Config) (*renderer.RunContext, error) {
	camera := scene.NewCamera(cfg.CameraPose(), cfg.Camera.FOV)

	rt, err := tracer.NewRuntime(camera, tracer.Options{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Workers: cfg.Workers,
	})
	if err != nil {
		return nil, err
	}

	g, err := pipeline.BuildGraph(cfg.Mode, rt, cfg.PipelineOptions())
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	if err = rt.AddGraph(g); err != nil {
		_ = g.Close()
		_ = rt.Close()
		return nil, err
	}
	logger.Infof("pipeline:\n%s", g)

	captureCfg := cfg.CaptureConfig(time.Now())
	writer := capture.NewFileWriter(rt)
	seq, err := capture.NewSequencer(captureCfg, writer)
	if err != nil {
		_ = writer.Close()
		_ = rt.Close()
		return nil, err
	}
	rt.OnFrame(writer.RecordFrameTime)

	rc, err := renderer.NewRunContext(camera, rt, g, seq)
	if err != nil {
		_ = writer.Close()
		_ = rt.Close()
		return nil, err
	}
	rc.OnClose(rt)
	rc.OnClose(writer)

	logger.Noticef("run %s: capture mode %s, writing %s_NNNN to %s", rc.ID, captureCfg.Mode, captureCfg.BaseName, captureCfg.OutputDir)
	return rc, nil
}

func displayFrameStats(stats renderer.FrameStats) {
	if len(stats.Frames) == 0 {
		return
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Camera position", "Sub-frames", "Output", "Render time"})
	for _, stat := range stats.Frames {
		output := stat.Output
		if output == "" {
			output = "-"
		}
		table.Append([]string{
			fmt.Sprintf("%d", stat.Index),
			stat.Pose.Position.String(),
			fmt.Sprintf("%d", stat.SubFrames),
			output,
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{
		"",
		fmt.Sprintf("%d spp", stats.EffectiveSPP),
		fmt.Sprintf("%d", stats.PhysicalFrames),
		"TOTAL",
		stats.RenderTime.String(),
	})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
