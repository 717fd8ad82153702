package plugins

import (
	"github.com/panbanda/wraith/pkg/deadcode"
)

var rakeDescriptor = deadcode.MustDescriptor()

var rakeTasks = setOf("task", "multitask", "file", "directory", "rule")

// Rake references task names and their prerequisites. Tasks are invoked by
// name from the command line and from other tasks, so methods and constants
// sharing a task's name stay live.
type Rake struct {
	deadcode.Base
}

func NewRake() *Rake {
	return &Rake{Base: deadcode.NewBase("rake", rakeDescriptor)}
}

func (p *Rake) OnSend(ix deadcode.Indexer, s *deadcode.Send) {
	if !s.Implicit() || !rakeTasks[s.Name] {
		return
	}
	for _, a := range s.Args {
		switch {
		case a.IsName():
			ix.ReferenceMethod(a.Value, a.Location)
		case a.Kind == deadcode.ArgHash:
			// task name: [:deps] or task name: :dep
			for _, pair := range a.Pairs {
				if pair.Key.IsName() {
					ix.ReferenceMethod(pair.Key.Value, pair.Key.Location)
				}
				for _, dep := range pair.Value.Names() {
					ix.ReferenceMethod(dep, pair.Value.Location)
				}
			}
		}
	}
}
