package graph

import "errors"

var (
	ErrDuplicateStageName   = errors.New("graph: duplicate stage name")
	ErrUnknownPort          = errors.New("graph: unknown port")
	ErrPortDirection        = errors.New("graph: port direction mismatch")
	ErrPortAlreadyConnected = errors.New("graph: input port already connected")
	ErrNoOutputMarked       = errors.New("graph: no output marked")
	ErrCycleDetected        = errors.New("graph: cycle detected")
	ErrUnconnectedInput     = errors.New("graph: required input port not connected")
	ErrGraphBuilt           = errors.New("graph: builder already produced a graph")
	ErrNilStage             = errors.New("graph: nil stage handle")
)
