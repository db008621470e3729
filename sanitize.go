package plait

import (
	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeFragment strips dangerous markup from an untrusted HTML
// fragment and returns the remainder as trusted Html. Use it for
// third-party rich content that must keep its formatting; plain
// untrusted text should go through normal escaping instead.
func SanitizeFragment(s string) Html {
	return Html(ugcPolicy.Sanitize(s))
}
