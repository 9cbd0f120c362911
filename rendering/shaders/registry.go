// Package shaders holds the named GLSL variants the frame loop can select
// between at run time.
package shaders

import (
	"errors"
	"fmt"

	"icoviewer/gpu"
)

// Default variant names.
const (
	DefaultVertex   = "fireball"
	DefaultFragment = "fireball"
)

var ErrUnknownVariant = errors.New("unknown shader variant")

// Source is the text of one shader stage variant.
type Source struct {
	Name  string
	Stage gpu.Stage
	Text  string
}

// Registry maps variant names to source text, per stage.
type Registry struct {
	sources map[gpu.Stage]map[string]Source
	order   map[gpu.Stage][]string
}

func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[gpu.Stage]map[string]Source),
		order:   make(map[gpu.Stage][]string),
	}
}

// Register adds a variant. Names are unique per stage.
func (r *Registry) Register(src Source) error {
	if src.Name == "" {
		return fmt.Errorf("register %s shader: empty name", src.Stage)
	}
	if src.Text == "" {
		return fmt.Errorf("register %s shader %q: empty source", src.Stage, src.Name)
	}
	byName, ok := r.sources[src.Stage]
	if !ok {
		byName = make(map[string]Source)
		r.sources[src.Stage] = byName
	}
	if _, dup := byName[src.Name]; dup {
		return fmt.Errorf("register %s shader %q: already registered", src.Stage, src.Name)
	}
	byName[src.Name] = src
	r.order[src.Stage] = append(r.order[src.Stage], src.Name)
	return nil
}

// Lookup resolves a variant name for a stage.
func (r *Registry) Lookup(stage gpu.Stage, name string) (Source, error) {
	src, ok := r.sources[stage][name]
	if !ok {
		return Source{}, fmt.Errorf("%w: %s %q", ErrUnknownVariant, stage, name)
	}
	return src, nil
}

// Names lists the variants of a stage in registration order.
func (r *Registry) Names(stage gpu.Stage) []string {
	return append([]string(nil), r.order[stage]...)
}

// Next returns the variant registered after current, wrapping around.
// An unknown current name yields the first variant.
func (r *Registry) Next(stage gpu.Stage, current string) string {
	names := r.order[stage]
	if len(names) == 0 {
		return ""
	}
	for i, name := range names {
		if name == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// Default returns a registry holding the built-in variants.
func Default() *Registry {
	r := NewRegistry()
	for _, src := range builtin {
		if err := r.Register(src); err != nil {
			panic(err)
		}
	}
	return r
}

var builtin = []Source{
	{Name: "fireball", Stage: gpu.VertexStage, Text: fireballVertex},
	{Name: "lambert", Stage: gpu.VertexStage, Text: lambertVertex},
	{Name: "expand", Stage: gpu.VertexStage, Text: expandVertex},
	{Name: "collapse", Stage: gpu.VertexStage, Text: collapseVertex},

	{Name: "fireball", Stage: gpu.FragmentStage, Text: fireballFragment},
	{Name: "lambert", Stage: gpu.FragmentStage, Text: lambertFragment},
	{Name: "perlin", Stage: gpu.FragmentStage, Text: perlinFragment},
	{Name: "worley", Stage: gpu.FragmentStage, Text: worleyFragment},
	{Name: "custom", Stage: gpu.FragmentStage, Text: customFragment},
}
