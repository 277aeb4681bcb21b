package tracer

import "github.com/achilleasa/turntable/stage"

// Build the built-in stage libraries. Each library is named after the stage
// family it provides and its stages share the supplied row pool.
func libraries(pool *rowPool) []stage.Library {
	lib := func(def stage.Definition) stage.Library {
		def.Ports = stage.BuiltinPorts(def.Type)
		return stage.Library{Name: string(def.Type), Definitions: []stage.Definition{def}}
	}

	return []stage.Library{
		lib(stage.Definition{
			Type:          stage.LightTransport,
			Description:   "Stochastic radiance estimator with temporal and spatial reuse",
			DefaultConfig: func() stage.Config { return stage.DefaultLightTransportConfig() },
			New:           newLightTransport(pool),
		}),
		lib(stage.Definition{
			Type:          stage.Accumulate,
			Description:   "Running mean of the input across frames",
			DefaultConfig: func() stage.Config { return stage.DefaultAccumulateConfig() },
			New:           newAccumulator,
		}),
		lib(stage.Definition{
			Type:          stage.ToneMap,
			Description:   "Exposure, white balance and linear or Reinhard tone-mapping",
			DefaultConfig: func() stage.Config { return stage.DefaultToneMapConfig() },
			New:           newToneMapper(pool),
		}),
		lib(stage.Definition{
			Type:          stage.DenoiseOIDN,
			Description:   "Single image denoiser with selectable quality",
			DefaultConfig: func() stage.Config { return stage.DefaultOIDNConfig() },
			New:           newOIDNDenoiser(pool),
		}),
		lib(stage.Definition{
			Type:          stage.DenoiseOptix,
			Description:   "Blendable denoiser with optional temporal history",
			DefaultConfig: func() stage.Config { return stage.DefaultOptixConfig() },
			New:           newOptixDenoiser(pool),
		}),
	}
}
