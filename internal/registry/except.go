package registry

import (
	"context"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vk/componentry/internal/ctxlog"
)

// GlobPrefix marks an except entry as a doublestar pattern over component
// names, as in "glob:experimental-*".
const GlobPrefix = "glob:"

// ExpandExcept turns except entries into the component names Autobind
// should skip. Plain entries are kept verbatim. Entries with GlobPrefix are
// replaced by the registered names they match, in registration order. An
// invalid pattern matches nothing and is logged.
func (r *Registry) ExpandExcept(ctx context.Context, entries []string) []string {
	logger := ctxlog.FromContext(ctx)
	names := r.Names()

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		pattern, ok := strings.CutPrefix(e, GlobPrefix)
		if !ok {
			out = append(out, e)
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			logger.Warn("Ignoring invalid except pattern.", "pattern", pattern)
			continue
		}
		for _, name := range names {
			if doublestar.MatchUnvalidated(pattern, name) && !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}
