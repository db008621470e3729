package plait

import (
	"github.com/devashishdxt/plait/internal/plait/parser"
	"github.com/devashishdxt/plait/internal/plait/validate"
)

// CompileOption configures a Compile call.
type CompileOption func(*compileConfig)

type compileConfig struct {
	reg *Registry
}

// WithComponents makes the registry's components invocable from the
// compiled template.
func WithComponents(reg *Registry) CompileOption {
	return func(c *compileConfig) {
		c.reg = reg
	}
}

// Compile parses, validates and lowers template source into an
// executable Template. Errors are *SyntaxError for malformed source and
// *ValidationError for structural problems; on error no partial template
// is returned.
func Compile(source string, opts ...CompileOption) (*Template, error) {
	var cfg compileConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	nodes, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	if err := validate.Check(nodes, validate.Options{
		Components: cfg.reg.validateComponents(),
	}); err != nil {
		return nil, err
	}

	prog, err := newCompiler(cfg.reg).lower(nodes)
	if err != nil {
		return nil, err
	}
	return &Template{prog: prog}, nil
}

// MustCompile is Compile that panics on error, for templates known at
// build time.
func MustCompile(source string, opts ...CompileOption) *Template {
	t, err := Compile(source, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Render writes any renderable value to a fresh buffer with HTML
// escaping and returns the result.
func Render(v any) (Html, error) {
	b := &Buffer{}
	if err := renderValue(b, v, false); err != nil {
		return "", err
	}
	return b.Html(), nil
}
