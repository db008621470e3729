package plait

import (
	"fmt"
	"strconv"
)

// Bindings supplies the named values a template's expressions resolve
// against at render time. Values may be primitives, Html, Option,
// Renderable, nested maps or structs (reached with dotted paths), or
// zero-argument producer functions.
type Bindings map[string]any

// Option is an optional value. Absent options render as nothing and make
// optional attributes disappear entirely.
type Option struct {
	value   any
	present bool
}

// Some wraps a present value.
func Some(v any) Option { return Option{value: v, present: true} }

// None is the absent value.
func None() Option { return Option{} }

// IsSome reports whether the option holds a value.
func (o Option) IsSome() bool { return o.present }

// Get returns the inner value and whether it is present.
func (o Option) Get() (any, bool) { return o.value, o.present }

// RenderInto writes the inner value if present, nothing otherwise.
func (o Option) RenderInto(b *Buffer) error {
	if !o.present {
		return nil
	}
	return renderValue(b, o.value, false)
}

// renderValue is the rendering dispatch: strings escape, numbers and
// bools format verbatim, Html passes through, options render their inner
// value when present, producers are invoked, Renderables write
// themselves. raw suppresses escaping for string-shaped values.
func renderValue(b *Buffer, v any, raw bool) error {
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		if raw {
			b.WriteString(v)
		} else {
			b.WriteEscaped(v)
		}
		return nil
	case Html:
		b.WriteHtml(v)
		return nil
	case Option:
		if inner, ok := v.Get(); ok {
			return renderValue(b, inner, raw)
		}
		return nil
	case bool:
		b.WriteString(strconv.FormatBool(v))
		return nil
	case int:
		b.WriteString(strconv.Itoa(v))
		return nil
	case int8, int16, int32, int64:
		b.WriteString(fmt.Sprintf("%d", v))
		return nil
	case uint, uint8, uint16, uint32, uint64:
		b.WriteString(fmt.Sprintf("%d", v))
		return nil
	case float32:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		return nil
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		return nil
	case Renderable:
		return v.RenderInto(b)
	case func() any:
		return renderValue(b, v(), raw)
	case fmt.Stringer:
		if raw {
			b.WriteString(v.String())
		} else {
			b.WriteEscaped(v.String())
		}
		return nil
	default:
		if raw {
			b.WriteString(fmt.Sprintf("%v", v))
		} else {
			b.WriteEscaped(fmt.Sprintf("%v", v))
		}
		return nil
	}
}

// attrText formats v for use as an attribute value and reports whether
// it is already escaped. Html passes through marked pre-escaped, present
// options contribute their inner value, absent ones contribute nothing.
func attrText(v any) (s string, pre bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, false
	case Html:
		return string(v), true
	case Option:
		if inner, ok := v.Get(); ok {
			return attrText(inner)
		}
		return "", false
	case bool:
		return strconv.FormatBool(v), false
	case int:
		return strconv.Itoa(v), false
	case fmt.Stringer:
		return v.String(), false
	default:
		return fmt.Sprintf("%v", v), false
	}
}

// truthy decides conditional branches and boolean attributes: false for
// nil, false, absent options, empty strings and zero numbers.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case Option:
		return v.IsSome()
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}
