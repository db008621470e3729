// Package outfile writes generated Go sources next to their templates.
package outfile

import (
	"bytes"
	"os"
)

// WriteGeneratedFile writes src to outPath, overwriting any existing
// file. Identical content is left untouched so watch mode does not
// trigger rebuild loops on its own output.
func WriteGeneratedFile(outPath string, src []byte) error {
	if existing, err := os.ReadFile(outPath); err == nil && bytes.Equal(existing, src) {
		return nil
	}
	return os.WriteFile(outPath, src, 0o644)
}
