package pipeline

import (
	"fmt"

	"github.com/achilleasa/turntable/graph"
	"github.com/achilleasa/turntable/stage"
)

// StageFactory loads stage libraries and instantiates stages.
type StageFactory interface {
	RegisterLibrary(name string) error
	CreateStage(typeName stage.Type, cfg stage.Config) (stage.Handle, error)
}

type topology func(d *dispatcher) error

var topologies = map[Mode]topology{
	Reference: buildReference,
	HDR:       buildHDR,
	LDR:       buildLDR,
	NoDenoise: buildNoDenoise,
	Blend:     buildBlend,
}

// Build a graph builder populated with the canonical stages and edges for
// the given mode. The caller finalizes it with Build; on error any stages
// created so far are released.
func Build(mode Mode, factory StageFactory, opts Options) (*graph.Builder, error) {
	if err := opts.validate(mode); err != nil {
		return nil, err
	}
	build, ok := topologies[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}

	d := &dispatcher{
		mode:    mode,
		factory: factory,
		opts:    opts,
		b:       graph.NewBuilder(GraphName(mode)),
	}
	if err := build(d); err != nil {
		_ = d.b.Close()
		return nil, fmt.Errorf("pipeline %s: %w", mode, err)
	}
	return d.b, nil
}

// Build and finalize the graph for the given mode.
func BuildGraph(mode Mode, factory StageFactory, opts Options) (*graph.Graph, error) {
	b, err := Build(mode, factory, opts)
	if err != nil {
		return nil, err
	}
	g, err := b.Build()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("pipeline %s: %w", mode, err)
	}
	return g, nil
}

func buildReference(d *dispatcher) error {
	if err := d.insertLightTransport(); err != nil {
		return err
	}
	if err := d.insertAccumulation(stage.AccumulateConfig{Enabled: true, AutoReset: false}); err != nil {
		return err
	}
	if err := d.insertToneMap(StageToneMap, ref(StageAccumulate, stage.PortOutput), d.opts.ToneMap); err != nil {
		return err
	}
	return d.b.MarkOutput(ref(StageToneMap, stage.PortDst))
}

// light-transport -> accumulation (disabled) -> [denoiser] -> tone-map
func buildHDRStyle(d *dispatcher, denoise bool) error {
	if err := d.insertLightTransport(); err != nil {
		return err
	}
	if err := d.insertAccumulation(stage.AccumulateConfig{Enabled: false}); err != nil {
		return err
	}

	src := ref(StageAccumulate, stage.PortOutput)
	tonemapName := StageToneMap
	if denoise {
		out, err := d.insertDenoiser(src)
		if err != nil {
			return err
		}
		src = out
		if d.mode != Blend {
			tonemapName = StagePrimaryToneMap
		}
	}

	if err := d.insertToneMap(tonemapName, src, d.opts.ToneMap); err != nil {
		return err
	}
	return d.b.MarkOutput(ref(tonemapName, stage.PortDst))
}

func buildHDR(d *dispatcher) error       { return buildHDRStyle(d, true) }
func buildBlend(d *dispatcher) error     { return buildHDRStyle(d, true) }
func buildNoDenoise(d *dispatcher) error { return buildHDRStyle(d, false) }

// light-transport -> accumulation (disabled) -> tone-map -> denoiser -> writeout
func buildLDR(d *dispatcher) error {
	if err := d.insertLightTransport(); err != nil {
		return err
	}
	if err := d.insertAccumulation(stage.AccumulateConfig{Enabled: false}); err != nil {
		return err
	}
	if err := d.insertToneMap(StagePrimaryToneMap, ref(StageAccumulate, stage.PortOutput), d.opts.ToneMap); err != nil {
		return err
	}
	out, err := d.insertDenoiser(ref(StagePrimaryToneMap, stage.PortDst))
	if err != nil {
		return err
	}
	if err = d.insertToneMap(StageWriteout, out, WriteoutToneMapConfig()); err != nil {
		return err
	}
	return d.b.MarkOutput(ref(StageWriteout, stage.PortDst))
}

type dispatcher struct {
	mode    Mode
	factory StageFactory
	opts    Options
	b       *graph.Builder
}

func ref(stageName, port string) string {
	return stageName + "." + port
}

// Create a stage loading its library on demand and add it to the builder.
func (d *dispatcher) add(name string, cfg stage.Config) error {
	if err := d.factory.RegisterLibrary(string(cfg.StageType())); err != nil {
		return err
	}
	h, err := d.factory.CreateStage(cfg.StageType(), cfg)
	if err != nil {
		return err
	}
	if err = d.b.AddStage(name, h); err != nil {
		_ = h.Close()
		return err
	}
	return nil
}

func (d *dispatcher) insertLightTransport() error {
	return d.add(StageLightTransport, LightTransportConfig(d.mode, d.opts))
}

// Get the light-transport configuration a mode builds. The reference mode
// switches to the reference estimator at opts.BaselineSPP samples per frame
// with reuse disabled; every other mode uses the interactive estimator.
func LightTransportConfig(mode Mode, opts Options) stage.LightTransportConfig {
	cfg := opts.LightTransport
	if mode != Reference {
		cfg.UseReference = false
		return cfg
	}

	refCfg := stage.ReferenceLightTransportConfig(opts.BaselineSPP)
	refCfg.UseSurfaceScene = cfg.UseSurfaceScene
	refCfg.UseEmissiveLights = cfg.UseEmissiveLights
	refCfg.UseEnvironmentLights = cfg.UseEnvironmentLights
	refCfg.UseAnalyticLights = cfg.UseAnalyticLights
	refCfg.TemporalReuseMThreshold = cfg.TemporalReuseMThreshold
	return refCfg
}

func (d *dispatcher) insertAccumulation(cfg stage.AccumulateConfig) error {
	if err := d.add(StageAccumulate, cfg); err != nil {
		return err
	}
	return d.b.Connect(ref(StageLightTransport, stage.PortAccumulatedColor), ref(StageAccumulate, stage.PortInput))
}

func (d *dispatcher) insertToneMap(name, src string, cfg stage.ToneMapConfig) error {
	if err := d.add(name, cfg); err != nil {
		return err
	}
	return d.b.Connect(src, ref(name, stage.PortSrc))
}

// Insert the configured denoiser fed by src and return the reference to its
// output port.
func (d *dispatcher) insertDenoiser(src string) (string, error) {
	kind := d.opts.Denoiser
	if d.mode == Blend {
		kind = DenoiserOptix
	}
	name := DenoiserStage(d.mode, kind)

	if kind == DenoiserOIDN {
		cfg := d.opts.OIDN
		cfg.Enabled = true
		cfg.HDR = d.mode != LDR
		if err := d.add(name, cfg); err != nil {
			return "", err
		}
		if err := d.b.Connect(src, ref(name, stage.PortSrc)); err != nil {
			return "", err
		}
		return ref(name, stage.PortDst), nil
	}

	cfg := d.opts.Optix
	cfg.Enabled = true
	switch {
	case d.opts.Temporal:
		cfg.Model = stage.OptixModelTemporal
	case d.mode == LDR:
		cfg.Model = stage.OptixModelLDR
	default:
		cfg.Model = stage.OptixModelHDR
	}
	if d.mode == Blend {
		cfg.BlendFactor = d.opts.BlendFactor
	}

	if err := d.add(name, cfg); err != nil {
		return "", err
	}
	if err := d.b.Connect(src, ref(name, stage.PortColor)); err != nil {
		return "", err
	}
	if d.opts.Temporal {
		if err := d.b.Connect(ref(StageLightTransport, stage.PortMotionVectors), ref(name, stage.PortMotionVectors)); err != nil {
			return "", err
		}
	}
	return ref(name, stage.PortOutput), nil
}

// Get the name of the denoiser stage a mode inserts for the given denoiser
// family. The blend topology always uses a generic "Denoiser" stage.
func DenoiserStage(mode Mode, kind DenoiserKind) string {
	switch {
	case mode == Blend:
		return StageBlendDenoiser
	case kind == DenoiserOIDN:
		return StageOIDN
	default:
		return StageOptix
	}
}
