package config

import (
	"strings"
)

// EnvPrefix starts every environment variable that overrides component
// configuration: COMPONENTRY_<COMPONENT>__<KEY>=value.
const EnvPrefix = "COMPONENTRY_"

// EnvName returns the environment variable that overrides key of the named
// component.
func EnvName(component, key string) string {
	return EnvPrefix + envSegment(component) + "__" + envSegment(key)
}

func envSegment(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
}

// ApplyEnv overlays environment overrides for the given components onto the
// model. environ has the os.Environ format. Keys are lower-cased; values
// stay strings and are converted when a component decodes its
// configuration. It returns the number of applied overrides.
func (m *Model) ApplyEnv(components []string, environ []string) int {
	prefixes := make(map[string]string, len(components))
	for _, name := range components {
		prefixes[EnvPrefix+envSegment(name)+"__"] = name
	}

	applied := 0
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		for prefix, name := range prefixes {
			attr, found := strings.CutPrefix(key, prefix)
			if !found || attr == "" {
				continue
			}
			m.Merge(name, map[string]any{strings.ToLower(attr): value})
			applied++
			break
		}
	}
	return applied
}
