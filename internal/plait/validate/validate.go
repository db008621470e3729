// Package validate checks a parsed template for structural
// well-formedness before lowering.
package validate

import (
	"fmt"

	"github.com/devashishdxt/plait/internal/plait/ast"
	"github.com/devashishdxt/plait/internal/plait/token"
)

// Error reports the first structural problem found.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid template at %s: %s", e.Pos, e.Msg)
}

// Component describes an invocable component for validation purposes.
type Component struct {
	Props []Prop
}

type Prop struct {
	Name     string
	Required bool
}

// Options configure one validation pass.
type Options struct {
	// Components maps invocable component names to their declared props.
	Components map[string]Component
	// AllowSlots permits #children and #attrs placeholders. Set when
	// validating a component's own template; top-level templates have no
	// caller to fill the slots.
	AllowSlots bool
}

// Check walks the tree and returns the first structural error, or nil.
func Check(nodes []ast.Node, opts Options) error {
	v := &validator{opts: opts}
	return v.nodes(nodes)
}

type validator struct {
	opts Options
}

func (v *validator) nodes(nodes []ast.Node) error {
	for _, n := range nodes {
		if err := v.node(n); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) node(n ast.Node) error {
	switch n := n.(type) {
	case *ast.Text, *ast.Splice, *ast.Doctype:
		return nil
	case *ast.Children:
		if !v.opts.AllowSlots {
			return &Error{Pos: n.Pos, Msg: "#children is only allowed inside a component template"}
		}
		return nil
	case *ast.Element:
		return v.element(n)
	case *ast.If:
		for _, br := range n.Branches {
			if err := v.nodes(br.Body); err != nil {
				return err
			}
		}
		return v.nodes(n.Else)
	case *ast.For:
		return v.nodes(n.Body)
	case *ast.Match:
		return v.match(n)
	case *ast.Component:
		return v.component(n)
	default:
		return &Error{Msg: fmt.Sprintf("unhandled node type %T", n)}
	}
}

func (v *validator) element(el *ast.Element) error {
	if el.Void && el.HasBody {
		return &Error{Pos: el.Pos, Msg: fmt.Sprintf("void element %s cannot have children", el.Name)}
	}
	if !el.Void && !el.HasBody {
		return &Error{Pos: el.Pos, Msg: fmt.Sprintf("element %s needs a braced body; only void elements end with ';'", el.Name)}
	}
	if err := v.attrs(el.Attrs, el.Name); err != nil {
		return err
	}
	return v.nodes(el.Children)
}

func (v *validator) attrs(attrs []ast.Attr, owner string) error {
	slotSeen := false
	for _, a := range attrs {
		if a.Kind != ast.AttrSlot {
			continue
		}
		if !v.opts.AllowSlots {
			return &Error{Pos: a.Pos, Msg: "#attrs is only allowed inside a component template"}
		}
		if slotSeen {
			return &Error{Pos: a.Pos, Msg: fmt.Sprintf("duplicate #attrs on element %s", owner)}
		}
		slotSeen = true
	}
	return nil
}

func (v *validator) match(m *ast.Match) error {
	for i, arm := range m.Arms {
		if arm.Pattern.Kind == ast.PatWildcard && i != len(m.Arms)-1 {
			return &Error{Pos: m.Arms[i+1].Pos, Msg: "unreachable match arm after _"}
		}
		if err := v.nodes(arm.Body); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) component(c *ast.Component) error {
	def, ok := v.opts.Components[c.Name]
	if !ok {
		return &Error{Pos: c.Pos, Msg: fmt.Sprintf("unknown component %s", c.Name)}
	}

	declared := make(map[string]Prop, len(def.Props))
	for _, p := range def.Props {
		declared[p.Name] = p
	}
	given := make(map[string]bool, len(c.Props))
	for _, p := range c.Props {
		if _, ok := declared[p.Name]; !ok {
			return &Error{Pos: p.Pos, Msg: fmt.Sprintf("component %s has no prop %q", c.Name, p.Name)}
		}
		if given[p.Name] {
			return &Error{Pos: p.Pos, Msg: fmt.Sprintf("duplicate prop %q on component %s", p.Name, c.Name)}
		}
		given[p.Name] = true
	}
	for _, p := range def.Props {
		if p.Required && !given[p.Name] {
			return &Error{Pos: c.Pos, Msg: fmt.Sprintf("component %s requires prop %q", c.Name, p.Name)}
		}
	}

	if err := v.attrs(c.Attrs, c.Name); err != nil {
		return err
	}
	return v.nodes(c.Children)
}
