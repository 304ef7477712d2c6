package access

import "sort"

type Capability string

const (
	CapabilityUser   Capability = "user"
	CapabilityVendor Capability = "vendor"
	CapabilityAdmin  Capability = "admin"
)

func (c Capability) Valid() bool {
	switch c {
	case CapabilityUser, CapabilityVendor, CapabilityAdmin:
		return true
	}
	return false
}

// CapabilitySet is the full set of capabilities held by a principal.
// Capabilities are non-exclusive; a principal may hold several.
type CapabilitySet map[Capability]struct{}

// DefaultSet is what a principal with no stored assignment holds.
func DefaultSet() CapabilitySet {
	return CapabilitySet{CapabilityUser: {}}
}

func NewSet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

func SetFromStrings(names []string) CapabilitySet {
	set := make(CapabilitySet, len(names))
	for _, name := range names {
		set[Capability(name)] = struct{}{}
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func (s CapabilitySet) Add(c Capability) {
	s[c] = struct{}{}
}

// Strings returns the set in stable order, for storage and transport.
func (s CapabilitySet) Strings() []string {
	names := make([]string, 0, len(s))
	for c := range s {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}
