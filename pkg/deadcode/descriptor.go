package deadcode

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrRegistration is wrapped by every plugin registration error.
var ErrRegistration = errors.New("invalid plugin registration")

// matcher is a set of exact names plus an ordered list of patterns.
type matcher struct {
	names    map[string]struct{}
	patterns []*regexp.Regexp
}

func (m *matcher) add(arg any) error {
	switch v := arg.(type) {
	case string:
		if v == "" {
			return fmt.Errorf("%w: empty name", ErrRegistration)
		}
		if len(v) > 2 && strings.HasPrefix(v, "/") && strings.HasSuffix(v, "/") {
			re, err := regexp.Compile(v[1 : len(v)-1])
			if err != nil {
				return fmt.Errorf("%w: pattern %s: %v", ErrRegistration, v, err)
			}
			m.patterns = append(m.patterns, re)
			return nil
		}
		if m.names == nil {
			m.names = make(map[string]struct{})
		}
		m.names[v] = struct{}{}
	case *regexp.Regexp:
		if v == nil {
			return fmt.Errorf("%w: nil pattern", ErrRegistration)
		}
		m.patterns = append(m.patterns, v)
	default:
		return fmt.Errorf("%w: expected string or *regexp.Regexp, got %T", ErrRegistration, arg)
	}
	return nil
}

func (m *matcher) match(name string) bool {
	if _, ok := m.names[name]; ok {
		return true
	}
	for _, re := range m.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func (m *matcher) empty() bool {
	return len(m.names) == 0 && len(m.patterns) == 0
}

func (m *matcher) sortedNames() []string {
	names := make([]string, 0, len(m.names))
	for n := range m.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *matcher) patternSources() []string {
	out := make([]string, len(m.patterns))
	for i, re := range m.patterns {
		out[i] = re.String()
	}
	return out
}

func (m *matcher) String() string {
	return strings.Join(m.sortedNames(), ",") + "|" + strings.Join(m.patternSources(), ",")
}

// Descriptor is the immutable registration data of a plugin type: the names
// and patterns its default hooks ignore. One Descriptor is shared by every
// instance of a plugin type.
type Descriptor struct {
	methods      matcher
	classes      matcher
	modules      matcher
	constants    matcher
	superclasses map[string]struct{}
}

// DescriptorOption is one declarative registration call.
type DescriptorOption func(*Descriptor) error

func addAll(m *matcher, args []any) error {
	for _, a := range args {
		if err := m.add(a); err != nil {
			return err
		}
	}
	return nil
}

// IgnoreMethodNames registers method names to ignore. Each argument is an
// exact name, a "/regexp/" string, or a *regexp.Regexp.
func IgnoreMethodNames(args ...any) DescriptorOption {
	return func(d *Descriptor) error { return addAll(&d.methods, args) }
}

// IgnoreClassNames registers class names to ignore.
func IgnoreClassNames(args ...any) DescriptorOption {
	return func(d *Descriptor) error { return addAll(&d.classes, args) }
}

// IgnoreModuleNames registers module names to ignore.
func IgnoreModuleNames(args ...any) DescriptorOption {
	return func(d *Descriptor) error { return addAll(&d.modules, args) }
}

// IgnoreConstantNames registers constant names to ignore.
func IgnoreConstantNames(args ...any) DescriptorOption {
	return func(d *Descriptor) error { return addAll(&d.constants, args) }
}

// IgnoreClassesInheritingFrom ignores classes whose superclass expression is
// one of names. A leading :: is not significant.
func IgnoreClassesInheritingFrom(names ...string) DescriptorOption {
	return func(d *Descriptor) error {
		if d.superclasses == nil {
			d.superclasses = make(map[string]struct{})
		}
		for _, n := range names {
			n = strings.TrimPrefix(n, "::")
			if n == "" {
				return fmt.Errorf("%w: empty superclass name", ErrRegistration)
			}
			d.superclasses[n] = struct{}{}
		}
		return nil
	}
}

// NewDescriptor evaluates the registration calls once. Any malformed argument
// fails the whole registration.
func NewDescriptor(opts ...DescriptorOption) (*Descriptor, error) {
	d := &Descriptor{}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustDescriptor is NewDescriptor for package-level plugin registrations.
func MustDescriptor(opts ...DescriptorOption) *Descriptor {
	d, err := NewDescriptor(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// IgnoresMethod reports whether name matches an ignored method name or pattern.
func (d *Descriptor) IgnoresMethod(name string) bool {
	return d != nil && d.methods.match(name)
}

// IgnoresClass reports whether a class name or its superclass is ignored.
func (d *Descriptor) IgnoresClass(name, superclass string) bool {
	if d == nil {
		return false
	}
	if d.classes.match(name) {
		return true
	}
	if superclass == "" {
		return false
	}
	_, ok := d.superclasses[strings.TrimPrefix(superclass, "::")]
	return ok
}

// IgnoresModule reports whether a module name is ignored.
func (d *Descriptor) IgnoresModule(name string) bool {
	return d != nil && d.modules.match(name)
}

// IgnoresConstant reports whether a constant name is ignored.
func (d *Descriptor) IgnoresConstant(name string) bool {
	return d != nil && d.constants.match(name)
}

// IgnoredNames returns the exact method names, sorted.
func (d *Descriptor) IgnoredNames() []string {
	if d == nil {
		return nil
	}
	return d.methods.sortedNames()
}

// IgnoredPatterns returns the method name patterns in registration order.
func (d *Descriptor) IgnoredPatterns() []string {
	if d == nil {
		return nil
	}
	return d.methods.patternSources()
}

// Empty reports whether the descriptor ignores nothing.
func (d *Descriptor) Empty() bool {
	return d == nil || (d.methods.empty() && d.classes.empty() && d.modules.empty() &&
		d.constants.empty() && len(d.superclasses) == 0)
}

// String is a stable rendering used to fingerprint plugin chains.
func (d *Descriptor) String() string {
	if d == nil {
		return ""
	}
	supers := make([]string, 0, len(d.superclasses))
	for s := range d.superclasses {
		supers = append(supers, s)
	}
	sort.Strings(supers)
	return fmt.Sprintf("methods=%s;classes=%s;modules=%s;constants=%s;inherits=%s",
		d.methods.String(), d.classes.String(), d.modules.String(), d.constants.String(),
		strings.Join(supers, ","))
}
