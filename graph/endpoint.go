package graph

import (
	"fmt"
	"strings"
)

// A stage port reference.
type Endpoint struct {
	Stage string
	Port  string
}

// Parse a "stage.port" reference. The stage name is everything before the
// last dot.
func ParseEndpoint(ref string) (Endpoint, error) {
	idx := strings.LastIndexByte(ref, '.')
	if idx <= 0 || idx == len(ref)-1 {
		return Endpoint{}, fmt.Errorf("%w: malformed reference %q; expected stage.port", ErrUnknownPort, ref)
	}
	return Endpoint{Stage: ref[:idx], Port: ref[idx+1:]}, nil
}

func (e Endpoint) String() string {
	return e.Stage + "." + e.Port
}

// A directed connection from a stage output port to a stage input port.
type Edge struct {
	Src Endpoint
	Dst Endpoint
}

func (e Edge) String() string {
	return e.Src.String() + " -> " + e.Dst.String()
}
