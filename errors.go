package plait

import (
	"fmt"

	"github.com/devashishdxt/plait/internal/plait/parser"
	"github.com/devashishdxt/plait/internal/plait/validate"
)

// SyntaxError reports malformed template source with its position.
type SyntaxError = parser.SyntaxError

// ValidationError reports a structurally invalid template.
type ValidationError = validate.Error

// RenderError reports a failed render, always a host-binding problem:
// the compiled template structure itself cannot fail.
type RenderError struct {
	Path string
	Msg  string
}

func (e *RenderError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("render error at %s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("render error: %s", e.Msg)
}
