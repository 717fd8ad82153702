package plugins

import (
	"strings"

	"github.com/panbanda/wraith/pkg/deadcode"
)

var rspecDescriptor = deadcode.MustDescriptor()

var rspecHelpers = setOf("let", "let!", "subject", "subject!")

// RSpec leaves spec files alone: helpers defined there are invoked by
// examples through the DSL. let and subject names are referenced so methods
// of the same name elsewhere are not reported either.
type RSpec struct {
	deadcode.Base
}

func NewRSpec() *RSpec {
	return &RSpec{Base: deadcode.NewBase("rspec", rspecDescriptor)}
}

func isSpecFile(path string) bool {
	return strings.HasSuffix(path, "_spec.rb") || strings.HasSuffix(path, "spec_helper.rb") ||
		strings.HasSuffix(path, "rails_helper.rb")
}

func (p *RSpec) OnDefineClass(ix deadcode.Indexer, d *deadcode.Definition) {
	p.Base.OnDefineClass(ix, d)
	if isSpecFile(ix.Path()) {
		d.Ignore()
	}
}

func (p *RSpec) OnDefineModule(ix deadcode.Indexer, d *deadcode.Definition) {
	p.Base.OnDefineModule(ix, d)
	if isSpecFile(ix.Path()) {
		d.Ignore()
	}
}

func (p *RSpec) OnDefineMethod(ix deadcode.Indexer, d *deadcode.Definition) {
	p.Base.OnDefineMethod(ix, d)
	if isSpecFile(ix.Path()) {
		d.Ignore()
	}
}

func (p *RSpec) OnDefineConstant(ix deadcode.Indexer, d *deadcode.Definition) {
	p.Base.OnDefineConstant(ix, d)
	if isSpecFile(ix.Path()) {
		d.Ignore()
	}
}

func (p *RSpec) OnSend(ix deadcode.Indexer, s *deadcode.Send) {
	if !s.Implicit() || !rspecHelpers[s.Name] {
		return
	}
	if name, loc, ok := s.FirstName(); ok {
		ix.ReferenceMethod(name, loc)
	}
}
