package layer

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const idPrefix = "layer-"

// newID returns a lowercase ULID. ulid.Make draws from a locked monotonic
// source, so ids are unique and ordered even within one millisecond.
func newID() string {
	return idPrefix + strings.ToLower(ulid.Make().String())
}
