package stage

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownStageType     = errors.New("stage: unknown stage type")
	ErrInvalidConfiguration = errors.New("stage: invalid configuration")
	ErrUnknownLibrary       = errors.New("stage: unknown stage library")
	ErrDuplicateStageType   = errors.New("stage: stage type already registered")
	ErrStageClosed          = errors.New("stage: stage is closed")
)

// A factory creates a runner for a validated configuration.
type Factory func(cfg Config) (Runner, error)

// Describes a stage type that can be instantiated by a Registry.
type Definition struct {
	Type        Type
	Description string
	Ports       []Port

	// Configuration used when CreateStage is called with a nil config.
	DefaultConfig func() Config

	New Factory
}

// A named group of stage definitions.
type Library struct {
	Name        string
	Definitions []Definition
}

// The Registry maps stage type keys to factories. Libraries are known to the
// registry up front but their stage types only become available once loaded.
type Registry struct {
	available map[string]Library
	loaded    map[string]bool
	defs      map[Type]Definition
}

// Create a registry that can load any of the supplied libraries.
func NewRegistry(libraries ...Library) *Registry {
	r := &Registry{
		available: make(map[string]Library),
		loaded:    make(map[string]bool),
		defs:      make(map[Type]Definition),
	}
	for _, lib := range libraries {
		r.available[lib.Name] = lib
	}
	return r
}

// Load a library making its stage types available. Loading an already loaded
// library is a no-op.
func (r *Registry) RegisterLibrary(name string) error {
	if r.loaded[name] {
		return nil
	}

	lib, ok := r.available[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLibrary, name)
	}

	for _, def := range lib.Definitions {
		if err := r.Register(def); err != nil {
			return fmt.Errorf("library %q: %w", name, err)
		}
	}
	r.loaded[name] = true
	return nil
}

// Register a single stage definition.
func (r *Registry) Register(def Definition) error {
	if _, exists := r.defs[def.Type]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStageType, def.Type)
	}
	if def.New == nil {
		return fmt.Errorf("stage: definition for %s has no factory", def.Type)
	}
	r.defs[def.Type] = def
	return nil
}

// Get the definition for a registered stage type.
func (r *Registry) Definition(typeName Type) (Definition, bool) {
	def, ok := r.defs[typeName]
	return def, ok
}

// List registered stage definitions sorted by type.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Create a new stage instance. A nil config selects the type's default
// configuration. Every call returns an independent instance.
func (r *Registry) CreateStage(typeName Type, cfg Config) (Handle, error) {
	def, ok := r.defs[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStageType, typeName)
	}

	if cfg == nil {
		if def.DefaultConfig == nil {
			return nil, fmt.Errorf("%w: %s: configuration required", ErrInvalidConfiguration, typeName)
		}
		cfg = def.DefaultConfig()
	}

	if cfg.StageType() != typeName {
		return nil, fmt.Errorf("%w: %s configuration supplied for stage type %s", ErrInvalidConfiguration, cfg.StageType(), typeName)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runner, err := def.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", typeName, err)
	}

	return newHandle(def, cfg, runner), nil
}
