// Package plugins provides the built-in dead-code plugins for common Ruby,
// Rails, test framework and Sorbet idioms.
package plugins

import (
	"errors"
	"fmt"
	"strings"

	"github.com/panbanda/wraith/pkg/deadcode"
)

// ErrUnknownPlugin is returned when a configured plugin name is not registered.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Info describes a registered plugin for listings.
type Info struct {
	Name        string `json:"name" toon:"name" yaml:"name"`
	Description string `json:"description" toon:"description" yaml:"description"`
}

type entry struct {
	info Info
	new  func() deadcode.Plugin
}

// registry holds the built-ins in default invocation order.
var registry = []entry{
	{Info{"ruby", "core Ruby hooks and send/respond_to?/alias_method metaprogramming"}, func() deadcode.Plugin { return NewRuby() }},
	{Info{"rails", "controller actions, callbacks, delegates, jobs, mailers and migrations"}, func() deadcode.Plugin { return NewRails() }},
	{Info{"minitest", "test_* methods, setup/teardown and Minitest::Test subclasses"}, func() deadcode.Plugin { return NewMinitest() }},
	{Info{"rspec", "spec files and let/subject helpers"}, func() deadcode.Plugin { return NewRSpec() }},
	{Info{"rake", "task names and dependencies"}, func() deadcode.Plugin { return NewRake() }},
	{Info{"thor", "public commands of Thor subclasses"}, func() deadcode.Plugin { return NewThor() }},
	{Info{"sorbet", "override/abstract signatures and T::Enum values"}, func() deadcode.Plugin { return NewSorbet() }},
}

// List returns the built-in plugins in default order.
func List() []Info {
	out := make([]Info, len(registry))
	for i, e := range registry {
		out[i] = e.info
	}
	return out
}

// Names returns the built-in plugin names in default order.
func Names() []string {
	out := make([]string, len(registry))
	for i, e := range registry {
		out[i] = e.info.Name
	}
	return out
}

// New returns a fresh instance of the named built-in plugin.
func New(name string) (deadcode.Plugin, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range registry {
		if e.info.Name == name {
			return e.new(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPlugin, name, strings.Join(Names(), ", "))
}

// Default returns a chain of every built-in plugin in default order.
func Default() *deadcode.Chain {
	chain, _ := Build(nil)
	return chain
}

// Build returns a chain of the named plugins in the given order, or every
// built-in when names is empty. Extra plugins, such as a Custom plugin built
// from configuration, run after the built-ins.
func Build(names []string, extra ...deadcode.Plugin) (*deadcode.Chain, error) {
	if len(names) == 0 {
		names = Names()
	}

	seen := make(map[string]bool, len(names))
	list := make([]deadcode.Plugin, 0, len(names)+len(extra))
	for _, name := range names {
		p, err := New(name)
		if err != nil {
			return nil, err
		}
		if seen[p.Name()] {
			continue
		}
		seen[p.Name()] = true
		list = append(list, p)
	}
	for _, p := range extra {
		if p != nil {
			list = append(list, p)
		}
	}
	return deadcode.NewChain(list...), nil
}

// sameFileSuperclass returns the superclass written on the definition of
// class full in the file being indexed. Only the current file is consulted
// so results do not depend on the order other files are indexed in.
func sameFileSuperclass(ix deadcode.Indexer, full string) string {
	if full == "" {
		return ""
	}
	name := full
	if i := strings.LastIndex(full, "::"); i >= 0 {
		name = full[i+2:]
	}
	for _, d := range ix.Index().DefinitionsNamed(name) {
		if d.Kind() == deadcode.KindClass && d.FullName() == full && d.Location().File == ix.Path() && d.Superclass() != "" {
			return strings.TrimPrefix(d.Superclass(), "::")
		}
	}
	return ""
}

func inheritsFrom(superclass string, bases map[string]bool) bool {
	return bases[strings.TrimPrefix(superclass, "::")]
}

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// referenceNames registers every symbol or string argument of s, including
// array elements, as a method reference.
func referenceNames(ix deadcode.Indexer, s *deadcode.Send) {
	for _, a := range s.NameArgs() {
		ix.ReferenceMethod(a.Value, a.Location)
	}
}

// referenceKeyword registers the symbol values of a keyword argument.
func referenceKeyword(ix deadcode.Indexer, s *deadcode.Send, key string) {
	v, ok := s.Keyword(key)
	if !ok {
		return
	}
	switch {
	case v.Kind == deadcode.ArgSymbol:
		ix.ReferenceMethod(v.Value, v.Location)
	case v.Kind == deadcode.ArgArray:
		for _, e := range v.Elems {
			if e.Kind == deadcode.ArgSymbol {
				ix.ReferenceMethod(e.Value, e.Location)
			}
		}
	}
}
