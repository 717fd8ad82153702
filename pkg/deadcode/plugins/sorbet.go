package plugins

import (
	"regexp"

	"github.com/panbanda/wraith/pkg/deadcode"
)

var sorbetDescriptor = deadcode.MustDescriptor()

// Matches override, overridable and abstract as words in a sig block.
var sorbetDispatched = regexp.MustCompile(`\b(override|overridable|abstract)\b`)

// Sorbet ignores methods whose signature marks them as overriding or
// abstract, which are called through the parent type, and the values of
// T::Enum subclasses, which are often only reached through deserialization.
type Sorbet struct {
	deadcode.Base
}

func NewSorbet() *Sorbet {
	return &Sorbet{Base: deadcode.NewBase("sorbet", sorbetDescriptor)}
}

func (p *Sorbet) OnDefineMethod(ix deadcode.Indexer, d *deadcode.Definition) {
	p.Base.OnDefineMethod(ix, d)
	if sig := ix.LastSig(); sig != "" && sorbetDispatched.MatchString(sig) {
		d.Ignore()
	}
}

func (p *Sorbet) OnDefineAccessor(ix deadcode.Indexer, d *deadcode.Definition) {
	if sig := ix.LastSig(); sig != "" && sorbetDispatched.MatchString(sig) {
		d.Ignore()
	}
}

func (p *Sorbet) OnDefineConstant(ix deadcode.Indexer, d *deadcode.Definition) {
	p.Base.OnDefineConstant(ix, d)
	if sameFileSuperclass(ix, d.Owner()) == "T::Enum" {
		d.Ignore()
	}
}
