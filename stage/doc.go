// Package stage defines the contract between pipeline graphs and the stage
// runtime: stage types, their declared ports, typed configuration records and
// a registry that resolves a stage type into a runnable handle.
//
// Stage implementations are provided by libraries (see tracer.Libraries) that
// must be loaded into a Registry with RegisterLibrary before any of their
// stage types can be created.
package stage
