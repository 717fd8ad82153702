package deadcode

import "strings"

// Indexer is the view of the running indexer that plugin hooks receive.
type Indexer interface {
	// Path is the file being indexed.
	Path() string
	// Namespace is the full name of the innermost enclosing class or module.
	Namespace() string
	// LastSig is the source of the Sorbet sig immediately preceding the
	// definition being reported, or "".
	LastSig() string
	// Index gives read access to everything indexed so far.
	Index() *Index
	// ReferenceMethod registers a synthetic method reference.
	ReferenceMethod(name string, loc Location)
	// ReferenceConstant registers a synthetic constant reference.
	// Qualified names (A::B) reference every segment.
	ReferenceConstant(name string, loc Location)
}

// Plugin is the capability set of hooks the indexer invokes while emitting
// definitions and sends. Plugins embed Base and override what they need.
type Plugin interface {
	Name() string
	Descriptor() *Descriptor

	OnDefineClass(ix Indexer, d *Definition)
	OnDefineModule(ix Indexer, d *Definition)
	OnDefineMethod(ix Indexer, d *Definition)
	OnDefineAccessor(ix Indexer, d *Definition)
	OnDefineConstant(ix Indexer, d *Definition)
	OnSend(ix Indexer, s *Send)
}

// Base implements every hook. Method definitions are checked against the
// descriptor's ignored method names and patterns; class, module and constant
// definitions against the corresponding descriptor rules, which are empty
// unless registered. Plugins overriding OnDefineMethod must call
// Base.OnDefineMethod to keep the name filter.
type Base struct {
	name string
	desc *Descriptor
}

// NewBase returns a Base for a plugin type with a shared descriptor.
func NewBase(name string, desc *Descriptor) Base {
	if desc == nil {
		desc = &Descriptor{}
	}
	return Base{name: name, desc: desc}
}

func (b Base) Name() string { return b.name }

func (b Base) Descriptor() *Descriptor { return b.desc }

func (b Base) OnDefineClass(_ Indexer, d *Definition) {
	if b.desc.IgnoresClass(d.Name(), d.Superclass()) || b.desc.IgnoresClass(d.FullName(), d.Superclass()) {
		d.Ignore()
	}
}

func (b Base) OnDefineModule(_ Indexer, d *Definition) {
	if b.desc.IgnoresModule(d.Name()) || b.desc.IgnoresModule(d.FullName()) {
		d.Ignore()
	}
}

func (b Base) OnDefineMethod(_ Indexer, d *Definition) {
	if b.desc.IgnoresMethod(d.Name()) {
		d.Ignore()
	}
}

func (b Base) OnDefineAccessor(Indexer, *Definition) {}

func (b Base) OnDefineConstant(_ Indexer, d *Definition) {
	if b.desc.IgnoresConstant(d.Name()) || b.desc.IgnoresConstant(d.FullName()) {
		d.Ignore()
	}
}

func (b Base) OnSend(Indexer, *Send) {}

// Chain is an ordered list of plugins. Every hook visits every plugin in
// registration order.
type Chain struct {
	plugins []Plugin
}

// NewChain builds a chain from plugins in invocation order.
func NewChain(plugins ...Plugin) *Chain {
	return &Chain{plugins: append([]Plugin(nil), plugins...)}
}

// Plugins returns the chain's plugins in invocation order.
func (c *Chain) Plugins() []Plugin {
	if c == nil {
		return nil
	}
	return append([]Plugin(nil), c.plugins...)
}

// Len returns the number of plugins.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.plugins)
}

// Fingerprint identifies the chain configuration for caching.
func (c *Chain) Fingerprint() string {
	if c == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.plugins {
		sb.WriteString(p.Name())
		sb.WriteByte('{')
		sb.WriteString(p.Descriptor().String())
		sb.WriteString("}\n")
	}
	return sb.String()
}

func (c *Chain) defineClass(ix Indexer, d *Definition) {
	for _, p := range c.plugins {
		p.OnDefineClass(ix, d)
	}
}

func (c *Chain) defineModule(ix Indexer, d *Definition) {
	for _, p := range c.plugins {
		p.OnDefineModule(ix, d)
	}
}

func (c *Chain) defineMethod(ix Indexer, d *Definition) {
	for _, p := range c.plugins {
		p.OnDefineMethod(ix, d)
	}
}

func (c *Chain) defineAccessor(ix Indexer, d *Definition) {
	for _, p := range c.plugins {
		p.OnDefineAccessor(ix, d)
	}
}

func (c *Chain) defineConstant(ix Indexer, d *Definition) {
	for _, p := range c.plugins {
		p.OnDefineConstant(ix, d)
	}
}

func (c *Chain) send(ix Indexer, s *Send) {
	for _, p := range c.plugins {
		p.OnSend(ix, s)
	}
}
