package plugins

import "github.com/panbanda/wraith/pkg/deadcode"

var thorBases = setOf("Thor", "Thor::Group")

var thorDescriptor = deadcode.MustDescriptor(
	deadcode.IgnoreClassesInheritingFrom("Thor", "Thor::Group"),
	deadcode.IgnoreMethodNames("exit_on_failure?"),
)

// Thor ignores the public instance methods of Thor command classes, which
// the CLI dispatches by name.
type Thor struct {
	deadcode.Base
}

func NewThor() *Thor {
	return &Thor{Base: deadcode.NewBase("thor", thorDescriptor)}
}

func (p *Thor) OnDefineMethod(ix deadcode.Indexer, d *deadcode.Definition) {
	p.Base.OnDefineMethod(ix, d)
	if d.Kind() != deadcode.KindMethod || d.Visibility() != deadcode.VisibilityPublic {
		return
	}
	if inheritsFrom(sameFileSuperclass(ix, d.Owner()), thorBases) {
		d.Ignore()
	}
}
