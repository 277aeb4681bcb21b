package graph

import (
	"fmt"
	"strings"

	"github.com/achilleasa/turntable/stage"
)

// An immutable, validated stage graph.
type Graph struct {
	name    string
	stages  map[string]stage.Handle
	order   []string
	edges   []Edge
	inbound map[string][]Edge
	output  Endpoint
}

func (g *Graph) Name() string {
	return g.name
}

// Get the stage names in execution order. Every stage appears after all
// stages feeding it.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Get the graph edges in the order they were connected.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Get the edges feeding the named stage.
func (g *Graph) Inbound(stageName string) []Edge {
	return append([]Edge(nil), g.inbound[stageName]...)
}

// Lookup a stage by name.
func (g *Graph) Stage(name string) (stage.Handle, bool) {
	h, ok := g.stages[name]
	return h, ok
}

// Get the port designated as the graph output.
func (g *Graph) Output() Endpoint {
	return g.output
}

// Close all stages in reverse execution order.
func (g *Graph) Close() error {
	var firstErr error
	for i := len(g.order) - 1; i >= 0; i-- {
		if err := g.stages[g.order[i]].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Render the graph as a human readable listing.
func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graph %q\n", g.name)
	for idx, name := range g.order {
		fmt.Fprintf(&sb, "  [%d] %s (%s)\n", idx, name, g.stages[name].Type())
		for _, edge := range g.inbound[name] {
			fmt.Fprintf(&sb, "        <- %s\n", edge)
		}
	}
	fmt.Fprintf(&sb, "  output: %s\n", g.output)
	return sb.String()
}

// Sort stages using Kahn's algorithm. Ties are broken by insertion order so
// the result is deterministic.
func topoSort(names []string, edges []Edge) ([]string, error) {
	inDegree := make(map[string]int, len(names))
	successors := make(map[string][]string, len(names))
	for _, name := range names {
		inDegree[name] = 0
	}
	for _, edge := range edges {
		inDegree[edge.Dst.Stage]++
		successors[edge.Src.Stage] = append(successors[edge.Src.Stage], edge.Dst.Stage)
	}

	order := make([]string, 0, len(names))
	emitted := make(map[string]bool, len(names))
	for len(order) < len(names) {
		progress := false
		for _, name := range names {
			if emitted[name] || inDegree[name] != 0 {
				continue
			}
			emitted[name] = true
			order = append(order, name)
			for _, next := range successors[name] {
				inDegree[next]--
			}
			progress = true
		}

		if !progress {
			return nil, fmt.Errorf("%w: %s", ErrCycleDetected, formatLoops(findLoops(names, successors, emitted)))
		}
	}
	return order, nil
}

// Find the cycles among the stages that could not be scheduled.
func findLoops(names []string, successors map[string][]string, emitted map[string]bool) [][]string {
	var (
		loops   [][]string
		visited = make(map[string]bool)
		onPath  = make(map[string]int)
		path    []string
	)

	var dfs func(name string)
	dfs = func(name string) {
		if idx, ok := onPath[name]; ok {
			loop := append([]string(nil), path[idx:]...)
			loops = append(loops, append(loop, name))
			return
		}
		if visited[name] {
			return
		}
		visited[name] = true
		onPath[name] = len(path)
		path = append(path, name)
		for _, next := range successors[name] {
			if !emitted[next] {
				dfs(next)
			}
		}
		path = path[:len(path)-1]
		delete(onPath, name)
	}

	for _, name := range names {
		if !emitted[name] {
			dfs(name)
		}
	}
	return loops
}

func formatLoops(loops [][]string) string {
	parts := make([]string, 0, len(loops))
	for _, loop := range loops {
		parts = append(parts, "["+strings.Join(loop, "->")+"]")
	}
	return strings.Join(parts, ", ")
}
