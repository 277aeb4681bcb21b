package renderer

import (
	"fmt"

	"github.com/achilleasa/turntable/stage"
)

// The state of an AccumulationDriver.
type DriverState uint8

const (
	Idle DriverState = iota
	Resetting
	Accumulating
)

func (s DriverState) String() string {
	switch s {
	case Resetting:
		return "resetting"
	case Accumulating:
		return "accumulating"
	}
	return "idle"
}

// The AccumulationDriver produces one converged logical frame by resetting
// the accumulation stage and advancing a fixed number of sub-frames.
// Sub-frames run strictly one after the other.
type AccumulationDriver struct {
	rt          Runtime
	accumulator stage.Resetter
	subFrames   int
	state       DriverState
}

// Create a driver for the named accumulation stage of a graph.
func NewAccumulationDriver(rt Runtime, graphName, stageName string, subFrames int) (*AccumulationDriver, error) {
	if subFrames < 1 {
		return nil, fmt.Errorf("%w; got %d", ErrInvalidSubFrames, subFrames)
	}

	h, err := rt.StageByName(graphName, stageName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAccumulationStage, err)
	}
	resetter, ok := h.(stage.Resetter)
	if !ok {
		return nil, fmt.Errorf("%w: stage %q of type %s", ErrNoAccumulationStage, stageName, h.Type())
	}

	return &AccumulationDriver{
		rt:          rt,
		accumulator: resetter,
		subFrames:   subFrames,
	}, nil
}

func (d *AccumulationDriver) State() DriverState {
	return d.state
}

func (d *AccumulationDriver) SubFrames() int {
	return d.subFrames
}

// Clear the accumulation state. Must precede every Accumulate call.
func (d *AccumulationDriver) Reset() {
	d.state = Resetting
	d.accumulator.Reset()
}

// Advance the configured number of sub-frames. On return the driver is
// Idle and the graph output holds the converged estimate.
func (d *AccumulationDriver) Accumulate() (int, error) {
	d.state = Accumulating
	defer func() { d.state = Idle }()

	for i := 0; i < d.subFrames; i++ {
		if err := d.rt.AdvanceFrame(); err != nil {
			return i, fmt.Errorf("sub-frame %d/%d: %w", i+1, d.subFrames, err)
		}
	}
	return d.subFrames, nil
}

// Reset and accumulate one logical frame.
func (d *AccumulationDriver) Run() (int, error) {
	d.Reset()
	return d.Accumulate()
}
