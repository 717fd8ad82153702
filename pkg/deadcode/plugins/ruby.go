package plugins

import "github.com/panbanda/wraith/pkg/deadcode"

var rubyDescriptor = deadcode.MustDescriptor(
	deadcode.IgnoreMethodNames(
		"initialize", "initialize_copy", "method_missing", "respond_to_missing?",
		"to_s", "to_str", "inspect", "==", "eql?", "hash", "<=>", "===",
		"each", "call", "to_h", "to_hash", "to_a", "to_ary", "to_proc", "coerce",
		"included", "extended", "inherited", "prepended",
		"method_added", "singleton_method_added", "const_missing",
	),
)

// dispatchers call the method named by their first argument.
var dispatchers = setOf(
	"send", "__send__", "public_send", "try", "try!",
	"respond_to?", "method", "public_method", "instance_method",
	"method_defined?", "public_method_defined?", "private_method_defined?",
)

// Ruby covers hooks the interpreter calls implicitly and dynamic dispatch
// through send and friends.
type Ruby struct {
	deadcode.Base
}

func NewRuby() *Ruby {
	return &Ruby{Base: deadcode.NewBase("ruby", rubyDescriptor)}
}

func (p *Ruby) OnSend(ix deadcode.Indexer, s *deadcode.Send) {
	switch {
	case dispatchers[s.Name]:
		if name, loc, ok := s.FirstName(); ok {
			ix.ReferenceMethod(name, loc)
		}
	case s.Name == "alias_method":
		names := s.NameArgs()
		if len(names) == 2 {
			ix.ReferenceMethod(names[1].Value, names[1].Location)
		}
	case s.Name == "const_get" || s.Name == "const_defined?":
		if name, loc, ok := s.FirstName(); ok {
			ix.ReferenceConstant(name, loc)
		}
	}
}
