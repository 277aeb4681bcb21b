package tracer

import (
	"fmt"
	"math"

	"github.com/achilleasa/turntable/stage"
)

type toneMapper struct {
	cfg  stage.ToneMapConfig
	pool *rowPool
	out  *stage.Buffer
}

func newToneMapper(pool *rowPool) stage.Factory {
	return func(cfg stage.Config) (stage.Runner, error) {
		return &toneMapper{cfg: cfg.(stage.ToneMapConfig), pool: pool}, nil
	}
}

// Get the linear exposure scale for the given source image.
func (tm *toneMapper) exposureScale(src *stage.Buffer) float32 {
	ev := float64(tm.cfg.ExposureValue)
	if tm.cfg.AutoExposure {
		ev = math.Log2(averageLuminance(src) / 0.18)
	}

	// Photometric exposure from the camera settings relative to the
	// neutral defaults.
	photometric := float64(tm.cfg.FilmSpeed) / 100 / float64(tm.cfg.FNumber*tm.cfg.FNumber)
	if tm.cfg.ExposureMode == stage.ShutterPriority {
		photometric *= float64(tm.cfg.Shutter)
	}

	return float32(math.Exp2(float64(tm.cfg.ExposureCompensation)-ev) * photometric)
}

// Per channel white balance gains. A white point of 6500K is neutral.
func (tm *toneMapper) whiteBalance() [3]float32 {
	gains := [3]float32{1, 1, 1}
	if !tm.cfg.WhiteBalance {
		return gains
	}
	ratio := tm.cfg.WhitePoint / 6500
	gains[0] = 1 / ratio
	gains[2] = ratio
	for c := range gains {
		gains[c] *= tm.cfg.WhiteScale
	}
	return gains
}

func (tm *toneMapper) Execute(_ *stage.FrameContext, in stage.Resources) (stage.Resources, error) {
	src := in[stage.PortSrc]
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, stage.PortSrc)
	}
	if tm.out == nil || !tm.out.SameSize(src.W, src.H) {
		tm.out = stage.NewBuffer(src.W, src.H)
	}

	scale := tm.exposureScale(src)
	gains := tm.whiteBalance()
	whiteNorm := (1 + tm.cfg.WhiteMaxLuminance) / tm.cfg.WhiteMaxLuminance

	err := tm.pool.run(src.H, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.W; x++ {
				px := src.At(x, y)
				for c := 0; c < 3; c++ {
					v := px[c] * scale * gains[c]
					if tm.cfg.Operator == stage.ToneMapReinhard {
						// Normalized so that the white luminance maps to 1.
						v = max(v, 0)
						v = v / (1 + v) * whiteNorm
					}
					if tm.cfg.Clamp {
						v = min(max(v, 0), 1)
					}
					px[c] = v
				}
				tm.out.Set(x, y, px)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stage.Resources{stage.PortDst: tm.out}, nil
}

// Get the log-average luminance of an image.
func averageLuminance(buf *stage.Buffer) float64 {
	if len(buf.Pix) == 0 {
		return 0.18
	}

	var sum float64
	for idx := 0; idx < len(buf.Pix); idx += 4 {
		lum := 0.2126*float64(buf.Pix[idx]) + 0.7152*float64(buf.Pix[idx+1]) + 0.0722*float64(buf.Pix[idx+2])
		sum += math.Log(1e-4 + lum)
	}
	return math.Exp(sum / float64(len(buf.Pix)/4))
}
