package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/turntable/capture"
	"github.com/achilleasa/turntable/config"
	"github.com/achilleasa/turntable/pipeline"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func testContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	app := cli.NewApp()
	app.Flags = append(append([]cli.Flag{}, PipelineFlags...), CaptureFlags...)

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(app, set, nil)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(testContext(t))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: ldr\nframes: 5\nwidth: 64\n"), 0o644))

	cfg, err := loadConfig(testContext(t,
		"--config", path,
		"--mode", "blend",
		"--blend", "0.5",
		"--capture", "timing",
		"--orbit",
		"--start-frame", "2",
		"--out", "runs",
	))
	require.NoError(t, err)

	require.Equal(t, pipeline.Blend, cfg.Mode, "flags override the config file")
	require.Equal(t, 5, cfg.Frames)
	require.Equal(t, 64, cfg.Width)
	require.Equal(t, float32(0.5), cfg.Denoiser.Blend)
	require.Equal(t, capture.Timing, cfg.Capture.Mode)
	require.True(t, cfg.Orbit.Enabled)
	require.Equal(t, 2, cfg.Capture.StartFrame)
	require.Equal(t, "runs", cfg.Capture.OutputRoot)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(testContext(t, "--mode", "turbo"))
	require.ErrorIs(t, err, pipeline.ErrUnsupportedMode)

	_, err = loadConfig(testContext(t, "--capture", "video"))
	require.ErrorIs(t, err, capture.ErrUnknownMode)

	_, err = loadConfig(testContext(t, "--frames", "0"))
	require.ErrorIs(t, err, config.ErrInvalidValue)

	_, err = loadConfig(testContext(t, "--denoiser", "magic"))
	require.ErrorIs(t, err, config.ErrInvalidValue)
}

func TestSetupRunAndCapture(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = pipeline.Reference
	cfg.Width, cfg.Height = 8, 4
	cfg.Accumulation.SubFrames = 3
	cfg.Capture.Mode = capture.Both
	cfg.Capture.OutputRoot = t.TempDir()

	rc, err := setupRun(cfg)
	require.NoError(t, err)

	for i := 0; i < cfg.Accumulation.SubFrames; i++ {
		require.NoError(t, rc.Runtime.AdvanceFrame())
	}
	file, err := rc.Capture.Capture()
	require.NoError(t, err)
	require.FileExists(t, file)
	require.NoError(t, rc.Close())

	timing, err := os.ReadFile(filepath.Join(cfg.Capture.OutputRoot, "REF", capture.TimingFile))
	require.NoError(t, err)
	require.Equal(t, 4, len(strings.Split(strings.TrimSpace(string(timing)), "\n")), "header plus one row per physical frame")
}
