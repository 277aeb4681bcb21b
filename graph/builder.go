package graph

import (
	"fmt"
	"strings"

	"github.com/achilleasa/turntable/stage"
)

// The Builder assembles stages and edges into a Graph. Builders are not safe
// for concurrent use.
type Builder struct {
	name string

	// Stage names in insertion order.
	names  []string
	stages map[string]stage.Handle

	edges    []Edge
	incoming map[Endpoint]Edge

	output *Endpoint
	built  bool
}

// Create a new builder for a graph with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:     name,
		stages:   make(map[string]stage.Handle),
		incoming: make(map[Endpoint]Edge),
	}
}

// Get the name of the graph being built.
func (b *Builder) Name() string {
	return b.name
}

// Add a stage instance under a name that is unique within the graph.
func (b *Builder) AddStage(name string, h stage.Handle) error {
	if b.built {
		return ErrGraphBuilt
	}
	if name == "" || strings.ContainsRune(name, '.') {
		return fmt.Errorf("graph: invalid stage name %q", name)
	}
	if h == nil {
		return fmt.Errorf("%w: %q", ErrNilStage, name)
	}
	if _, exists := b.stages[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStageName, name)
	}

	b.stages[name] = h
	b.names = append(b.names, name)
	return nil
}

// Get a previously added stage.
func (b *Builder) Stage(name string) (stage.Handle, bool) {
	h, ok := b.stages[name]
	return h, ok
}

// Connect "src.port" to "dst.port".
func (b *Builder) Connect(src, dst string) error {
	srcEp, err := ParseEndpoint(src)
	if err != nil {
		return err
	}
	dstEp, err := ParseEndpoint(dst)
	if err != nil {
		return err
	}
	return b.ConnectEndpoints(srcEp, dstEp)
}

// Connect a source output port to a destination input port. An input port
// accepts at most one incoming edge while outputs may fan out.
func (b *Builder) ConnectEndpoints(src, dst Endpoint) error {
	if b.built {
		return ErrGraphBuilt
	}
	if err := b.checkPort(src, stage.Output); err != nil {
		return err
	}
	if err := b.checkPort(dst, stage.Input); err != nil {
		return err
	}

	if existing, connected := b.incoming[dst]; connected {
		return fmt.Errorf("%w: %s is fed by %s", ErrPortAlreadyConnected, dst, existing.Src)
	}

	edge := Edge{Src: src, Dst: dst}
	b.edges = append(b.edges, edge)
	b.incoming[dst] = edge
	return nil
}

// Designate "stage.port" as the graph output.
func (b *Builder) MarkOutput(ref string) error {
	if b.built {
		return ErrGraphBuilt
	}
	ep, err := ParseEndpoint(ref)
	if err != nil {
		return err
	}
	if err := b.checkPort(ep, stage.Output); err != nil {
		return err
	}
	b.output = &ep
	return nil
}

func (b *Builder) checkPort(ep Endpoint, dir stage.Direction) error {
	h, ok := b.stages[ep.Stage]
	if !ok {
		return fmt.Errorf("%w: %s: stage %q has not been added", ErrUnknownPort, ep, ep.Stage)
	}
	port, ok := stage.FindPort(h.Ports(), ep.Port)
	if !ok {
		return fmt.Errorf("%w: %s: stage type %s declares no port %q", ErrUnknownPort, ep, h.Type(), ep.Port)
	}
	if port.Direction != dir {
		return fmt.Errorf("%w: %s is an %s port; expected %s", ErrPortDirection, ep, port.Direction, dir)
	}
	return nil
}

// Validate the topology and produce an immutable Graph. The builder can not
// be used after a successful build.
func (b *Builder) Build() (*Graph, error) {
	if b.built {
		return nil, ErrGraphBuilt
	}
	if b.output == nil {
		return nil, ErrNoOutputMarked
	}

	for _, name := range b.names {
		for _, port := range b.stages[name].Ports() {
			if port.Direction != stage.Input || port.Optional {
				continue
			}
			ep := Endpoint{Stage: name, Port: port.Name}
			if _, connected := b.incoming[ep]; !connected {
				return nil, fmt.Errorf("%w: %s", ErrUnconnectedInput, ep)
			}
		}
	}

	order, err := topoSort(b.names, b.edges)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		name:    b.name,
		stages:  make(map[string]stage.Handle, len(b.stages)),
		order:   order,
		edges:   append([]Edge(nil), b.edges...),
		inbound: make(map[string][]Edge),
		output:  *b.output,
	}
	for name, h := range b.stages {
		g.stages[name] = h
	}
	for _, edge := range g.edges {
		g.inbound[edge.Dst.Stage] = append(g.inbound[edge.Dst.Stage], edge)
	}

	b.built = true
	return g, nil
}

// Close every stage added to the builder. Used to release stages when a
// build fails; after a successful build the stages are owned by the Graph.
func (b *Builder) Close() error {
	if b.built {
		return nil
	}
	var firstErr error
	for _, name := range b.names {
		if err := b.stages[name].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
