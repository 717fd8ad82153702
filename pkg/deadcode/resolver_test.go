package deadcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceFile struct {
	path string
	src  string
}

func resolveSources(t *testing.T, chain *Chain, files ...sourceFile) *Result {
	t.Helper()
	idx := NewIndex()
	for _, f := range files {
		indexSource(t, idx, chain, f.path, f.src)
	}
	idx.Seal()
	return Resolve(idx)
}

func deadNames(res *Result) []string {
	return fullNames(res.Dead)
}

// registerPlugin turns `register(:name)` into a synthetic reference.
type registerPlugin struct {
	Base
}

func (p registerPlugin) OnSend(ix Indexer, s *Send) {
	if s.Name != "register" {
		return
	}
	if name, loc, ok := s.FirstName(); ok {
		ix.ReferenceMethod(name, loc)
	}
}

func TestResolve_UnreferencedMethodIsDead(t *testing.T) {
	res := resolveSources(t, nil, sourceFile{"a.rb", "def foo\nend\n"})

	assert.Equal(t, []string{"Object#foo"}, deadNames(res))
	assert.Equal(t, 1, res.ByKind[KindMethod])
	assert.Equal(t, 1, res.Total)
	assert.True(t, res.IsDead(res.Dead[0]))
}

func TestResolve_CallInAnotherFileKeepsMethodLive(t *testing.T) {
	res := resolveSources(t, nil,
		sourceFile{"a.rb", "def foo(x)\n  x\nend\n"},
		sourceFile{"b.rb", "foo(42)\n"},
	)

	assert.Empty(t, res.Dead)
	assert.Equal(t, 1, res.LiveCount())
}

func TestResolve_IgnoredMethodIsNotDead(t *testing.T) {
	chain := NewChain(NewBase("ignore-foo", MustDescriptor(IgnoreMethodNames("foo"))))
	res := resolveSources(t, chain, sourceFile{"a.rb", "def foo\nend\n"})

	assert.Empty(t, res.Dead)
	assert.Equal(t, 1, res.Ignored)
	assert.Equal(t, 0, res.LiveCount())
}

func TestResolve_SyntheticReference(t *testing.T) {
	src := `class Handlers
  register(:bar)

  def bar
  end
end
`
	t.Run("with plugin", func(t *testing.T) {
		chain := NewChain(registerPlugin{Base: NewBase("register", nil)})
		res := resolveSources(t, chain, sourceFile{"handlers.rb", src})
		assert.NotContains(t, deadNames(res), "Handlers#bar")
	})

	t.Run("without plugin", func(t *testing.T) {
		res := resolveSources(t, nil, sourceFile{"handlers.rb", src})
		assert.Contains(t, deadNames(res), "Handlers#bar")
	})
}

func TestResolve_BareNameMatching(t *testing.T) {
	res := resolveSources(t, nil,
		sourceFile{"a.rb", "class A\n  def run\n  end\nend\n"},
		sourceFile{"b.rb", "class B\n  def run\n  end\nend\n"},
		sourceFile{"c.rb", "A.new.run\n"},
	)

	dead := deadNames(res)
	assert.NotContains(t, dead, "A#run")
	assert.NotContains(t, dead, "B#run")
	assert.Contains(t, dead, "B")
	assert.NotContains(t, dead, "A")
}

func TestResolve_ReferenceKindIsIgnored(t *testing.T) {
	// a constant reference named like a method keeps the method alive
	res := resolveSources(t, nil,
		sourceFile{"a.rb", "def Widget\nend\n"},
		sourceFile{"b.rb", "Widget\n"},
	)
	assert.Empty(t, res.Dead)
}

func TestResolve_Accessors(t *testing.T) {
	res := resolveSources(t, nil,
		sourceFile{"user.rb", "class User\n  attr_accessor :email\nend\n"},
		sourceFile{"main.rb", "user = User.new\nuser.email = 'x'\n"},
	)

	dead := deadNames(res)
	assert.Contains(t, dead, "User#email")
	assert.NotContains(t, dead, "User#email=")
	assert.NotContains(t, dead, "User")
}

func TestResolve_SortedByLocation(t *testing.T) {
	res := resolveSources(t, nil,
		sourceFile{"z.rb", "def zeta\nend\n"},
		sourceFile{"a.rb", "def beta\nend\n\ndef alpha\nend\n"},
	)

	assert.Equal(t, []string{"Object#beta", "Object#alpha", "Object#zeta"}, deadNames(res))
}

func TestResolve_OrderIndependence(t *testing.T) {
	files := []sourceFile{
		{"a.rb", "class A\n  def used\n  end\n  def unused\n  end\nend\n"},
		{"b.rb", "A.new.used\nB::VALUE\n"},
		{"c.rb", "class B\n  VALUE = 1\n  OTHER = 2\nend\n"},
	}

	forward := resolveSources(t, nil, files[0], files[1], files[2])
	backward := resolveSources(t, nil, files[2], files[1], files[0])

	assert.Equal(t, deadNames(forward), deadNames(backward))
	assert.Equal(t, []string{"A#unused", "B::OTHER"}, deadNames(forward))
}

func TestResolve_PartitionsIDs(t *testing.T) {
	chain := NewChain(NewBase("ignore", MustDescriptor(IgnoreMethodNames("skip"))))
	res := resolveSources(t, chain, sourceFile{"a.rb", "def skip\nend\ndef dead\nend\ndef live\nend\nlive\n"})

	assert.Equal(t, uint64(1), res.DeadIDs.GetCardinality())
	assert.Equal(t, uint64(1), res.LiveIDs.GetCardinality())
	assert.Equal(t, 1, res.Ignored)
	assert.Equal(t, 3, res.Total)
	assert.False(t, res.DeadIDs.Intersects(res.LiveIDs))
}

func TestResolve_RequiresSealedIndex(t *testing.T) {
	assert.Panics(t, func() { Resolve(NewIndex()) })
}

func TestResolve_IncompleteDefinitionPanics(t *testing.T) {
	idx := NewIndex()
	idx.addDefinition(newDefinition(KindMethod, "orphan", "Object#orphan", "", Location{}, VisibilityPublic))
	idx.Seal()

	assert.Panics(t, func() { Resolve(idx) })
}

func TestIgnore_MonotonicAndSealed(t *testing.T) {
	idx := NewIndex()
	ix := indexSource(t, idx, nil, "a.rb", "def foo\nend\n")
	d := ix.Definitions()[0]

	d.Ignore()
	d.Ignore()
	assert.True(t, d.Ignored())

	idx.Seal()
	assert.Panics(t, func() { d.Ignore() })
	assert.Panics(t, func() { idx.addReference(newReference("x", RefMethod, Location{}, OriginSyntactic)) })
	require.True(t, d.Ignored())
}
