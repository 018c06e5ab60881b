package registry

import (
	"fmt"
	"strings"

	"github.com/vk/componentry/internal/token"
)

// ResolveInterface turns a "component/interface" reference, as written in
// configuration files, into the interface token.
func ResolveInterface(lookup LookupService, ref string) (token.Token, error) {
	compName, ifaceName, ok := strings.Cut(ref, "/")
	if !ok || compName == "" || ifaceName == "" {
		return token.Token{}, fmt.Errorf("invalid interface reference '%s': want <component>/<interface>", ref)
	}
	c, err := lookup.Lookup(compName)
	if err != nil {
		return token.Token{}, err
	}
	return c.Interface(ifaceName)
}

// ResolveInterfaces resolves a list of references, stopping at the first error.
func ResolveInterfaces(lookup LookupService, refs []string) ([]token.Token, error) {
	out := make([]token.Token, 0, len(refs))
	for _, ref := range refs {
		t, err := ResolveInterface(lookup, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
