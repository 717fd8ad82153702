package deadcode

import "fmt"

// Origin tells how a Reference was discovered.
type Origin uint8

const (
	// OriginSyntactic references come from call sites and constant uses.
	OriginSyntactic Origin = iota
	// OriginSynthetic references are registered by plugins.
	OriginSynthetic
)

func (o Origin) String() string {
	if o == OriginSynthetic {
		return "synthetic"
	}
	return "syntactic"
}

// MarshalText encodes the origin as a word.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an origin word.
func (o *Origin) UnmarshalText(text []byte) error {
	switch string(text) {
	case "syntactic":
		*o = OriginSyntactic
	case "synthetic":
		*o = OriginSynthetic
	default:
		return fmt.Errorf("unknown origin %q", text)
	}
	return nil
}

// RefKind tells which namespace of names a reference targets.
// Resolution ignores it; it is kept for reporting and plugins.
type RefKind string

const (
	RefMethod   RefKind = "method"
	RefConstant RefKind = "constant"
)

// ReferenceKey is the identity of a Reference.
type ReferenceKey struct {
	Name     string
	Location Location
	Origin   Origin
}

// Reference is an observed or plugin-asserted usage of a name. References are
// never attributed to a Definition; resolution matches bare names.
type Reference struct {
	name     string
	kind     RefKind
	location Location
	origin   Origin
}

func newReference(name string, kind RefKind, loc Location, origin Origin) Reference {
	return Reference{name: name, kind: kind, location: loc, origin: origin}
}

func (r Reference) Name() string { return r.name }

func (r Reference) Kind() RefKind { return r.kind }

func (r Reference) Location() Location { return r.location }

func (r Reference) Origin() Origin { return r.origin }

// Key returns the identity tuple of the reference.
func (r Reference) Key() ReferenceKey {
	return ReferenceKey{Name: r.name, Location: r.location, Origin: r.origin}
}

func (r Reference) String() string {
	return fmt.Sprintf("%s %s %s (%s)", r.origin, r.kind, r.name, r.location)
}
