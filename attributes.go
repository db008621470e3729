package plait

import (
	"github.com/devashishdxt/plait/internal/plait/escape"
)

type attrValue struct {
	val       string
	valueless bool
	pre       bool
}

// escaped returns the value ready to write verbatim.
func (v attrValue) escaped() string {
	if v.pre {
		return v.val
	}
	return escape.HTMLString(v.val)
}

// Attributes is an ordered, name-keyed attribute collection. It backs
// the `..(expr)` spread form and the #attrs component slot, and works as
// a standalone value for building attribute sets in host code.
//
// Merging is last-write-wins per name, except class, which concatenates
// values with a space. Insertion order is preserved; overwriting a name
// keeps its original position.
type Attributes struct {
	keys []string
	vals map[string]attrValue
}

// Attrs builds an Attributes collection from name/value pairs. It panics
// on an odd number of arguments.
func Attrs(pairs ...string) *Attributes {
	if len(pairs)%2 != 0 {
		panic("plait.Attrs: odd number of arguments")
	}
	a := &Attributes{}
	for i := 0; i < len(pairs); i += 2 {
		a.Set(pairs[i], pairs[i+1])
	}
	return a
}

func (a *Attributes) put(name string, v attrValue) {
	if a.vals == nil {
		a.vals = map[string]attrValue{}
	}
	if prev, ok := a.vals[name]; ok {
		if name == "class" && !prev.valueless && !v.valueless {
			if prev.pre || v.pre {
				v = attrValue{val: prev.escaped() + " " + v.escaped(), pre: true}
			} else {
				v.val = prev.val + " " + v.val
			}
		}
		a.vals[name] = v
		return
	}
	a.keys = append(a.keys, name)
	a.vals[name] = v
}

// Set adds or replaces a valued attribute.
func (a *Attributes) Set(name, value string) *Attributes {
	a.put(name, attrValue{val: value})
	return a
}

// SetHtml adds or replaces an attribute whose value is already escaped.
// It writes through verbatim, with no further escaping or sanitization.
func (a *Attributes) SetHtml(name string, value Html) *Attributes {
	a.put(name, attrValue{val: string(value), pre: true})
	return a
}

// setValue records a formatted value with its pre-escaped flag.
func (a *Attributes) setValue(name, value string, pre bool) {
	a.put(name, attrValue{val: value, pre: pre})
}

// SetFlag adds a valueless boolean attribute like disabled or hidden.
func (a *Attributes) SetFlag(name string) *Attributes {
	a.put(name, attrValue{valueless: true})
	return a
}

// Merge folds other into a, pairwise with Set/SetFlag semantics.
func (a *Attributes) Merge(other *Attributes) *Attributes {
	if other == nil {
		return a
	}
	for _, k := range other.keys {
		a.put(k, other.vals[k])
	}
	return a
}

// Get returns the value for name. Valueless attributes return "", true.
func (a *Attributes) Get(name string) (string, bool) {
	v, ok := a.vals[name]
	return v.val, ok
}

// Len returns the number of distinct attribute names.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Clone returns an independent copy.
func (a *Attributes) Clone() *Attributes {
	out := &Attributes{}
	return out.Merge(a)
}

// writeTo emits the collection in insertion order, each entry prefixed
// with a space. Values are escaped and names carrying navigable URLs are
// scheme-sanitized first; pre-escaped values write through verbatim.
func (a *Attributes) writeTo(b *Buffer) {
	if a == nil {
		return
	}
	for _, k := range a.keys {
		v := a.vals[k]
		b.WriteString(" ")
		b.WriteString(k)
		if v.valueless {
			continue
		}
		b.WriteString(`="`)
		switch {
		case v.pre:
			b.WriteString(v.val)
		case escape.IsURLAttribute(k):
			b.WriteURL(v.val)
		default:
			b.WriteEscaped(v.val)
		}
		b.WriteString(`"`)
	}
}
