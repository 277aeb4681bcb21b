package stage

import "fmt"

// A stage type tag.
type Type string

// The built-in stage families.
const (
	LightTransport Type = "light-transport"
	Accumulate     Type = "accumulate"
	ToneMap        Type = "tone-map"
	DenoiseOIDN    Type = "denoise-oidn"
	DenoiseOptix   Type = "denoise-optix"
)

// Port direction.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// A named input or output slot on a stage.
type Port struct {
	Name      string
	Direction Direction

	// Optional inputs may be left unconnected.
	Optional bool

	Description string
}

func (p Port) String() string {
	if p.Optional {
		return fmt.Sprintf("%s (%s, optional)", p.Name, p.Direction)
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Direction)
}

// Port names used by the built-in stage families.
const (
	PortAccumulatedColor = "accumulated_color"
	PortMotionVectors    = "mvec"
	PortInput            = "input"
	PortOutput           = "output"
	PortSrc              = "src"
	PortDst              = "dst"
	PortColor            = "color"
	PortAlbedo           = "albedo"
	PortNormal           = "normal"
)

// The declared ports of each built-in stage family.
var builtinPorts = map[Type][]Port{
	LightTransport: {
		{Name: PortAccumulatedColor, Direction: Output, Description: "Estimated radiance"},
		{Name: PortMotionVectors, Direction: Output, Description: "Screen-space motion vectors"},
	},
	Accumulate: {
		{Name: PortInput, Direction: Input, Description: "Per-frame estimate"},
		{Name: PortOutput, Direction: Output, Description: "Running mean"},
	},
	ToneMap: {
		{Name: PortSrc, Direction: Input, Description: "Linear radiance"},
		{Name: PortDst, Direction: Output, Description: "Tone-mapped image"},
	},
	DenoiseOIDN: {
		{Name: PortSrc, Direction: Input, Description: "Noisy image"},
		{Name: PortDst, Direction: Output, Description: "Denoised image"},
	},
	DenoiseOptix: {
		{Name: PortColor, Direction: Input, Description: "Color input"},
		{Name: PortAlbedo, Direction: Input, Optional: true, Description: "Albedo input"},
		{Name: PortNormal, Direction: Input, Optional: true, Description: "Normal input"},
		{Name: PortMotionVectors, Direction: Input, Optional: true, Description: "Motion vector input"},
		{Name: PortOutput, Direction: Output, Description: "Denoised output"},
	},
}

// Get the declared ports for a built-in stage family.
func BuiltinPorts(t Type) []Port {
	ports := builtinPorts[t]
	out := make([]Port, len(ports))
	copy(out, ports)
	return out
}

// Look up a port by name.
func FindPort(ports []Port, name string) (Port, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}
