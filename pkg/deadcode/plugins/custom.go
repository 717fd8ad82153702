package plugins

import (
	"fmt"

	"github.com/panbanda/wraith/pkg/deadcode"
)

// CustomRules are project-specific ignore lists. Entries written /like this/
// are regular expressions; everything else matches exactly.
type CustomRules struct {
	Methods   []string
	Classes   []string
	Modules   []string
	Constants []string
	Inherits  []string
}

// Empty reports whether no rule is set.
func (r CustomRules) Empty() bool {
	return len(r.Methods) == 0 && len(r.Classes) == 0 && len(r.Modules) == 0 &&
		len(r.Constants) == 0 && len(r.Inherits) == 0
}

// Custom applies CustomRules through the default hooks.
type Custom struct {
	deadcode.Base
}

// NewCustom builds the plugin, failing on the first malformed rule.
func NewCustom(rules CustomRules) (*Custom, error) {
	desc, err := deadcode.NewDescriptor(
		deadcode.IgnoreMethodNames(toAny(rules.Methods)...),
		deadcode.IgnoreClassNames(toAny(rules.Classes)...),
		deadcode.IgnoreModuleNames(toAny(rules.Modules)...),
		deadcode.IgnoreConstantNames(toAny(rules.Constants)...),
		deadcode.IgnoreClassesInheritingFrom(rules.Inherits...),
	)
	if err != nil {
		return nil, fmt.Errorf("custom plugin: %w", err)
	}
	return &Custom{Base: deadcode.NewBase("custom", desc)}, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
