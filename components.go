package plait

import (
	"fmt"
	"sync"

	"github.com/devashishdxt/plait/internal/plait/ast"
	"github.com/devashishdxt/plait/internal/plait/parser"
	"github.com/devashishdxt/plait/internal/plait/validate"
)

// Prop declares one named input of a component. Optional props may carry
// a default value bound when the caller omits them.
type Prop struct {
	Name     string
	Required bool
	Default  any
}

// ComponentDef is a named, invocable template. Inside Source, #children
// marks where caller children splice in and #attrs marks where the
// caller's extra attributes land.
type ComponentDef struct {
	Name   string
	Props  []Prop
	Source string
}

// Registry holds component definitions for compilation. Define all
// components before compiling templates that use them; a Registry is
// safe for concurrent use once populated.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]ComponentDef
	parsed map[string][]ast.Node
}

func NewRegistry() *Registry {
	return &Registry{
		defs:   map[string]ComponentDef{},
		parsed: map[string][]ast.Node{},
	}
}

// Define registers a component, replacing any previous definition with
// the same name. The source is parsed and validated eagerly so a broken
// component fails at definition time, not first use.
func (r *Registry) Define(def ComponentDef) error {
	if def.Name == "" {
		return fmt.Errorf("component definition needs a name")
	}
	nodes, err := parser.Parse(def.Source)
	if err != nil {
		return fmt.Errorf("component %s: %w", def.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Name] = def
	r.parsed[def.Name] = nodes
	return nil
}

// MustDefine is Define that panics on error, for static definitions.
func (r *Registry) MustDefine(def ComponentDef) *Registry {
	if err := r.Define(def); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (ComponentDef, bool) {
	if r == nil {
		return ComponentDef{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// parseComponent returns the cached parse of a definition, validated
// with slot placeholders allowed.
func (r *Registry) parseComponent(def ComponentDef) ([]ast.Node, error) {
	r.mu.RLock()
	nodes, ok := r.parsed[def.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("component %s is not defined", def.Name)
	}
	if err := validate.Check(nodes, validate.Options{
		Components: r.validateComponents(),
		AllowSlots: true,
	}); err != nil {
		return nil, err
	}
	return nodes, nil
}

// validateComponents converts the registry into the validator's view.
func (r *Registry) validateComponents() map[string]validate.Component {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]validate.Component, len(r.defs))
	for name, def := range r.defs {
		vc := validate.Component{}
		for _, p := range def.Props {
			vc.Props = append(vc.Props, validate.Prop{Name: p.Name, Required: p.Required})
		}
		out[name] = vc
	}
	return out
}
