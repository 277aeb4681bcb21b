package tracer

import (
	"fmt"

	"github.com/achilleasa/turntable/stage"
)

// Average every pixel with its (2r+1)x(2r+1) neighbourhood.
func boxFilter(pool *rowPool, src, dst *stage.Buffer, radius int) error {
	return pool.run(src.H, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.W; x++ {
				var acc [4]float32
				var n float32
				for dy := -radius; dy <= radius; dy++ {
					sy := y + dy
					if sy < 0 || sy >= src.H {
						continue
					}
					for dx := -radius; dx <= radius; dx++ {
						sx := x + dx
						if sx < 0 || sx >= src.W {
							continue
						}
						px := src.At(sx, sy)
						for c := range acc {
							acc[c] += px[c]
						}
						n++
					}
				}
				for c := range acc {
					acc[c] /= n
				}
				dst.Set(x, y, acc)
			}
		}
		return nil
	})
}

// ----------------------------------------------------------------------------

type oidnDenoiser struct {
	cfg  stage.OIDNConfig
	pool *rowPool

	scaled *stage.Buffer
	out    *stage.Buffer
}

func newOIDNDenoiser(pool *rowPool) stage.Factory {
	return func(cfg stage.Config) (stage.Runner, error) {
		return &oidnDenoiser{cfg: cfg.(stage.OIDNConfig), pool: pool}, nil
	}
}

func (d *oidnDenoiser) Execute(_ *stage.FrameContext, in stage.Resources) (stage.Resources, error) {
	src := in[stage.PortSrc]
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, stage.PortSrc)
	}
	if !d.cfg.Enabled {
		return stage.Resources{stage.PortDst: src}, nil
	}

	// Two working buffers of RGBA float32 pixels.
	if d.cfg.MaxMemoryMB >= 0 {
		required := int64(len(src.Pix)) * 4 * 2
		if budget := int64(d.cfg.MaxMemoryMB) << 20; required > budget {
			return nil, fmt.Errorf("%w: need %d bytes; budget is %d MB", ErrMemoryBudget, required, d.cfg.MaxMemoryMB)
		}
	}

	if d.out == nil || !d.out.SameSize(src.W, src.H) {
		d.out = stage.NewBuffer(src.W, src.H)
		d.scaled = stage.NewBuffer(src.W, src.H)
	}

	scale := float32(1)
	if !d.cfg.AutoInputScale() {
		scale = d.cfg.InputScale
	}

	// Tone-mapped input is expected in [0, 1].
	for idx, v := range src.Pix {
		v *= scale
		if !d.cfg.HDR {
			v = min(max(v, 0), 1)
		}
		d.scaled.Pix[idx] = v
	}

	// Quality levels map to wider filter kernels.
	if err := boxFilter(d.pool, d.scaled, d.out, d.cfg.Quality); err != nil {
		return nil, err
	}

	if scale != 1 {
		invScale := 1 / scale
		for idx := range d.out.Pix {
			d.out.Pix[idx] *= invScale
		}
	}

	return stage.Resources{stage.PortDst: d.out}, nil
}

// ----------------------------------------------------------------------------

// The weight of the current frame when blending with the temporal history.
const temporalCurrentWeight = 0.2

type optixDenoiser struct {
	cfg  stage.OptixConfig
	pool *rowPool

	denoised *stage.Buffer
	history  *stage.Buffer
	out      *stage.Buffer
}

func newOptixDenoiser(pool *rowPool) stage.Factory {
	return func(cfg stage.Config) (stage.Runner, error) {
		return &optixDenoiser{cfg: cfg.(stage.OptixConfig), pool: pool}, nil
	}
}

func (d *optixDenoiser) Execute(_ *stage.FrameContext, in stage.Resources) (stage.Resources, error) {
	color := in[stage.PortColor]
	if color == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, stage.PortColor)
	}
	if !d.cfg.Enabled {
		return stage.Resources{stage.PortOutput: color}, nil
	}

	if d.out == nil || !d.out.SameSize(color.W, color.H) {
		d.out = stage.NewBuffer(color.W, color.H)
		d.denoised = stage.NewBuffer(color.W, color.H)
		d.history = nil
	}

	radius := 2
	if d.cfg.Model == stage.OptixModelLDR {
		radius = 1
	}
	if err := boxFilter(d.pool, color, d.denoised, radius); err != nil {
		return nil, err
	}

	if d.cfg.Model == stage.OptixModelTemporal {
		d.applyHistory(in[stage.PortMotionVectors])
	}

	blend := d.cfg.BlendFactor
	for idx, v := range d.denoised.Pix {
		if idx%4 == 3 && !d.cfg.DenoiseAlpha {
			d.out.Pix[idx] = color.Pix[idx]
			continue
		}
		d.out.Pix[idx] = v*(1-blend) + color.Pix[idx]*blend
	}

	return stage.Resources{stage.PortOutput: d.out}, nil
}

// Blend the denoised frame with the previous one while the motion vectors
// report no movement. Any motion discards the history.
func (d *optixDenoiser) applyHistory(mvec *stage.Buffer) {
	static := mvec != nil && mvec.SameSize(d.denoised.W, d.denoised.H)
	if static {
		for _, v := range mvec.Pix {
			if v > 1e-6 || v < -1e-6 {
				static = false
				break
			}
		}
	}

	if static && d.history != nil {
		for idx, v := range d.denoised.Pix {
			d.denoised.Pix[idx] = d.history.Pix[idx]*(1-temporalCurrentWeight) + v*temporalCurrentWeight
		}
	}

	if d.history == nil {
		d.history = stage.NewBuffer(d.denoised.W, d.denoised.H)
	}
	copy(d.history.Pix, d.denoised.Pix)
}
