package tracer

import (
	"math"
	"math/rand/v2"

	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/stage"
	"github.com/achilleasa/turntable/types"
)

var (
	sunDir     = types.XYZ(0.3, 0.8, 0.5).Normalize()
	sunColor   = types.XYZ(4.0, 3.6, 3.0)
	horizonSky = types.XYZ(0.9, 0.9, 1.0)
	zenithSky  = types.XYZ(0.3, 0.5, 0.9)
	groundSky  = types.XYZ(0.1, 0.1, 0.1)
	lampPos    = types.XYZ(0, 4, 0)
	lampColor  = types.XYZ(2.0, 1.6, 1.0)
)

// A stochastic radiance estimator for a procedural scene: a sky dome, a sun,
// a checkered ground plane and a point lamp. Every sample multiplies the
// radiance by uniform noise with unit mean so repeated frames converge to
// the noise-free image.
type lightTransport struct {
	cfg  stage.LightTransportConfig
	pool *rowPool

	color   *stage.Buffer
	scratch *stage.Buffer
	mvec    *stage.Buffer

	havePrev     bool
	prevPose     scene.CameraPose
	prevFrustrum scene.Frustrum
}

func newLightTransport(pool *rowPool) stage.Factory {
	return func(cfg stage.Config) (stage.Runner, error) {
		return &lightTransport{
			cfg:  cfg.(stage.LightTransportConfig),
			pool: pool,
		}, nil
	}
}

func (lt *lightTransport) Execute(fc *stage.FrameContext, _ stage.Resources) (stage.Resources, error) {
	if fc.Width <= 0 || fc.Height <= 0 {
		return nil, ErrInvalidFrameSize
	}

	if lt.color == nil || !lt.color.SameSize(fc.Width, fc.Height) {
		lt.color = stage.NewBuffer(fc.Width, fc.Height)
		lt.scratch = stage.NewBuffer(fc.Width, fc.Height)
		lt.mvec = stage.NewBuffer(fc.Width, fc.Height)
		lt.havePrev = false
	}

	// History is only reused while the camera is static.
	reuseHistory := lt.havePrev && lt.cfg.EnableTemporalReuse && !lt.cfg.UseReference &&
		lt.prevPose.ApproxEqual(fc.Camera, 1e-6)
	historyWeight := 1 - 1/lt.cfg.TemporalReuseMThreshold

	spp := lt.cfg.SamplesPerFrame()
	invW, invH := 1/float32(fc.Width), 1/float32(fc.Height)

	err := lt.pool.run(fc.Height, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			rng := rand.New(rand.NewPCG(fc.Frame, uint64(y)))
			for x := 0; x < fc.Width; x++ {
				var sum types.Vec3
				for s := 0; s < spp; s++ {
					u := (float32(x) + rng.Float32()) * invW
					v := (float32(y) + rng.Float32()) * invH
					sample := lt.radiance(fc.Camera.Position, fc.Frustrum.Ray(u, v))
					sum = sum.Add(sample.Mul(2 * rng.Float32()))
				}
				est := sum.Mul(1 / float32(spp))

				if reuseHistory {
					prev := lt.color.At(x, y)
					est = types.XYZ(prev[0], prev[1], prev[2]).Mul(historyWeight).Add(est.Mul(1 - historyWeight))
				}
				lt.color.Set(x, y, [4]float32{est[0], est[1], est[2], 1})

				// Screen-space displacement of this pixel's view ray since
				// the previous frame.
				var motion [4]float32
				if lt.havePrev {
					pu, pv := (float32(x)+0.5)*invW, (float32(y)+0.5)*invH
					delta := fc.Frustrum.Ray(pu, pv).Sub(lt.prevFrustrum.Ray(pu, pv))
					motion = [4]float32{delta[0], delta[1], delta[2], 0}
				}
				lt.mvec.Set(x, y, motion)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if lt.cfg.EnableSpatialReuse && !lt.cfg.UseReference {
		if err = lt.spatialReuse(fc.Width, fc.Height); err != nil {
			return nil, err
		}
	}

	lt.havePrev = true
	lt.prevPose = fc.Camera
	lt.prevFrustrum = fc.Frustrum

	return stage.Resources{
		stage.PortAccumulatedColor: lt.color,
		stage.PortMotionVectors:    lt.mvec,
	}, nil
}

// Blend every pixel with the mean of its 4-neighbourhood.
func (lt *lightTransport) spatialReuse(w, h int) error {
	err := lt.pool.run(h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				center := lt.color.At(x, y)
				var mean [3]float32
				var n float32
				for _, off := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
					nx, ny := x+off[0], y+off[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					px := lt.color.At(nx, ny)
					mean[0] += px[0]
					mean[1] += px[1]
					mean[2] += px[2]
					n++
				}
				if n == 0 {
					lt.scratch.Set(x, y, center)
					continue
				}
				for c := 0; c < 3; c++ {
					center[c] = 0.5*center[c] + 0.5*mean[c]/n
				}
				lt.scratch.Set(x, y, center)
			}
		}
		return nil
	})
	lt.color, lt.scratch = lt.scratch, lt.color
	return err
}

func (lt *lightTransport) radiance(origin, dir types.Vec3) types.Vec3 {
	var out types.Vec3

	if dir[1] >= 0 {
		if lt.cfg.UseEnvironmentLights {
			out = out.Add(horizonSky.Mul(1 - dir[1]).Add(zenithSky.Mul(dir[1])))
		}
		if lt.cfg.UseEmissiveLights {
			if d := dir.Dot(sunDir); d > 0 {
				out = out.Add(sunColor.Mul(float32(math.Pow(float64(d), 256))))
			}
		}
	} else if lt.cfg.UseSurfaceScene && origin[1] > 0 {
		t := -origin[1] / dir[1]
		hit := origin.Add(dir.Mul(t))

		albedo := float32(0.2)
		if (int(math.Floor(float64(hit[0])))+int(math.Floor(float64(hit[2]))))&1 == 0 {
			albedo = 0.8
		}

		light := float32(0.1)
		if lt.cfg.UseEmissiveLights {
			light += sunDir[1]
		}
		if lt.cfg.UseEnvironmentLights {
			light += 0.3
		}
		out = out.Add(types.XYZ(albedo, albedo, albedo).Mul(light))
	} else if lt.cfg.UseEnvironmentLights {
		out = out.Add(groundSky)
	}

	if lt.cfg.UseAnalyticLights {
		// Glow falls off with the distance between the lamp and the ray.
		toLamp := lampPos.Sub(origin)
		along := toLamp.Dot(dir)
		if along > 0 {
			dist := toLamp.Sub(dir.Mul(along)).Len()
			out = out.Add(lampColor.Mul(1 / (1 + 50*dist*dist)))
		}
	}

	return out
}
