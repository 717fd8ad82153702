package deadcode

import (
	"fmt"
	"sync/atomic"
)

// Kind classifies a Definition.
type Kind string

const (
	KindClass           Kind = "class"
	KindModule          Kind = "module"
	KindMethod          Kind = "method"
	KindSingletonMethod Kind = "singleton_method"
	KindAccessor        Kind = "accessor"
	KindConstant        Kind = "constant"
)

// Kinds lists every Kind in report order.
var Kinds = []Kind{KindClass, KindModule, KindConstant, KindMethod, KindSingletonMethod, KindAccessor}

// IsMethodLike reports whether definitions of this kind are invoked through sends.
func (k Kind) IsMethodLike() bool {
	return k == KindMethod || k == KindSingletonMethod || k == KindAccessor
}

// Visibility is the Ruby method visibility in effect at definition time.
type Visibility uint32

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
	VisibilityProtected
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityProtected:
		return "protected"
	default:
		return "public"
	}
}

// MarshalText encodes the visibility as its Ruby keyword.
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a Ruby visibility keyword.
func (v *Visibility) UnmarshalText(text []byte) error {
	parsed, ok := ParseVisibility(string(text))
	if !ok {
		return fmt.Errorf("unknown visibility %q", text)
	}
	*v = parsed
	return nil
}

// ParseVisibility maps a Ruby visibility keyword to a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	switch s {
	case "public":
		return VisibilityPublic, true
	case "private":
		return VisibilityPrivate, true
	case "protected":
		return VisibilityProtected, true
	default:
		return VisibilityPublic, false
	}
}

// DefinitionKey is the identity of a Definition.
type DefinitionKey struct {
	Kind     Kind
	FullName string
	Location Location
}

// Definition is a declared symbol. Every field except visibility and the
// ignored flag is fixed at creation; only the indexer constructs definitions.
type Definition struct {
	id         uint32
	kind       Kind
	name       string
	fullName   string
	owner      string
	superclass string
	location   Location

	visibility atomic.Uint32
	ignored    atomic.Bool

	// sealed points at the owning index's seal flag once inserted.
	sealed *atomic.Bool
}

func newDefinition(kind Kind, name, fullName, owner string, loc Location, vis Visibility) *Definition {
	d := &Definition{
		kind:     kind,
		name:     name,
		fullName: fullName,
		owner:    owner,
		location: loc,
	}
	d.visibility.Store(uint32(vis))
	return d
}

// ID is the sequential identifier assigned when the definition entered the index.
func (d *Definition) ID() uint32 { return d.id }

func (d *Definition) Kind() Kind { return d.kind }

// Name is the bare identifier as written.
func (d *Definition) Name() string { return d.name }

// FullName is the name qualified by the lexical nesting, e.g. Outer::Inner#run.
func (d *Definition) FullName() string { return d.fullName }

// Owner is the full name of the enclosing namespace, empty at top level.
func (d *Definition) Owner() string { return d.owner }

// Superclass is the superclass expression of a class definition as written.
func (d *Definition) Superclass() string { return d.superclass }

func (d *Definition) Location() Location { return d.location }

func (d *Definition) Visibility() Visibility {
	return Visibility(d.visibility.Load())
}

// Ignored reports whether a plugin excluded the definition from reporting.
func (d *Definition) Ignored() bool {
	return d.ignored.Load()
}

// Ignore excludes the definition from dead-code reporting. The flag can never
// be cleared. Calling Ignore after the index is sealed panics.
func (d *Definition) Ignore() {
	d.mustBeMutable()
	d.ignored.Store(true)
}

// Key returns the identity tuple of the definition.
func (d *Definition) Key() DefinitionKey {
	return DefinitionKey{Kind: d.kind, FullName: d.fullName, Location: d.location}
}

func (d *Definition) String() string {
	return fmt.Sprintf("%s %s (%s)", d.kind, d.fullName, d.location)
}

func (d *Definition) setVisibility(v Visibility) {
	d.mustBeMutable()
	d.visibility.Store(uint32(v))
}

func (d *Definition) mustBeMutable() {
	if d.sealed != nil && d.sealed.Load() {
		panic(fmt.Sprintf("deadcode: %s mutated after the index was sealed", d.fullName))
	}
}

// validate panics when a definition is missing a required attribute.
func (d *Definition) validate() {
	switch {
	case d.kind == "":
		panic(fmt.Sprintf("deadcode: definition %q has no kind", d.fullName))
	case d.name == "" || d.fullName == "":
		panic(fmt.Sprintf("deadcode: %s definition at %s has no name", d.kind, d.location))
	case d.location.File == "" || d.location.StartLine == 0:
		panic(fmt.Sprintf("deadcode: definition %s has no location", d.fullName))
	}
}
