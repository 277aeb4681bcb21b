package stage

import (
	"fmt"
	"io"
	"sync"
)

// A Runner implements the per-frame work of a stage.
type Runner interface {
	Execute(fc *FrameContext, in Resources) (Resources, error)
}

// Stages holding accumulated state implement Resetter.
type Resetter interface {
	Reset()
}

// A runnable stage instance exposing its declared ports.
type Handle interface {
	Type() Type
	Config() Config
	Ports() []Port

	// Execute one frame. The input map contains a buffer for every
	// connected input port.
	Execute(fc *FrameContext, in Resources) (Resources, error)

	// Release any resources held by the stage.
	Close() error
}

type handle struct {
	def    Definition
	cfg    Config
	runner Runner

	closeOnce sync.Once
	closed    bool
	closeErr  error
}

func (h *handle) Type() Type     { return h.def.Type }
func (h *handle) Config() Config { return h.cfg }
func (h *handle) Ports() []Port {
	out := make([]Port, len(h.def.Ports))
	copy(out, h.def.Ports)
	return out
}

func (h *handle) Execute(fc *FrameContext, in Resources) (Resources, error) {
	if h.closed {
		return nil, ErrStageClosed
	}

	out, err := h.runner.Execute(fc, in)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", h.def.Type, err)
	}
	return out, nil
}

func (h *handle) Close() error {
	h.closeOnce.Do(func() {
		h.closed = true
		if closer, ok := h.runner.(io.Closer); ok {
			h.closeErr = closer.Close()
		}
	})
	return h.closeErr
}

// A handle whose runner keeps accumulated state.
type resettableHandle struct {
	*handle
	resetter Resetter
}

// Clear the accumulated state. Resetting is idempotent.
func (h *resettableHandle) Reset() {
	h.resetter.Reset()
}

func newHandle(def Definition, cfg Config, runner Runner) Handle {
	h := &handle{def: def, cfg: cfg, runner: runner}
	if r, ok := runner.(Resetter); ok {
		return &resettableHandle{handle: h, resetter: r}
	}
	return h
}
