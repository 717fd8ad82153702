package deadcode

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/wraith/pkg/parser"
)

func indexSource(t *testing.T, idx *Index, chain *Chain, path, src string) *FileIndexer {
	t.Helper()

	p := parser.New()
	defer p.Close()

	res, err := p.Parse([]byte(src), path)
	require.NoError(t, err)
	defer res.Close()

	ix := NewFileIndexer(path, res.Source, idx, chain)
	ix.IndexParsed(res)
	return ix
}

func fullNames(defs []*Definition) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.FullName()
	}
	return names
}

func refNames(refs []Reference) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range refs {
		if !seen[r.Name()] {
			seen[r.Name()] = true
			names = append(names, r.Name())
		}
	}
	sort.Strings(names)
	return names
}

func findDef(t *testing.T, defs []*Definition, fullName string) *Definition {
	t.Helper()
	for _, d := range defs {
		if d.FullName() == fullName {
			return d
		}
	}
	t.Fatalf("no definition %s in %v", fullName, fullNames(defs))
	return nil
}

// capturePlugin records everything the chain dispatches to it.
type capturePlugin struct {
	Base
	sends []*Send
	sigs  map[string]string
	seen  []string
}

func newCapturePlugin() *capturePlugin {
	return &capturePlugin{Base: NewBase("capture", nil), sigs: make(map[string]string)}
}

func (p *capturePlugin) OnDefineMethod(ix Indexer, d *Definition) {
	p.Base.OnDefineMethod(ix, d)
	p.seen = append(p.seen, d.FullName())
	p.sigs[d.Name()] = ix.LastSig()
}

func (p *capturePlugin) OnSend(_ Indexer, s *Send) {
	p.sends = append(p.sends, s)
}

func (p *capturePlugin) send(t *testing.T, name string) *Send {
	t.Helper()
	for _, s := range p.sends {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no send %s", name)
	return nil
}

func TestIndexer_Definitions(t *testing.T) {
	src := `module Outer
  class Inner < Base
    LIMIT = 10
    attr_accessor :name
    attr_reader :size

    def run
    end

    def self.build
    end

    class << self
      def make
      end
    end
  end
end

def helper
end

class ::Top
end

class Outer::Reopened
end
`
	idx := NewIndex()
	ix := indexSource(t, idx, nil, "lib/outer.rb", src)
	defs := ix.Definitions()

	assert.Equal(t, []string{
		"Outer",
		"Outer::Inner",
		"Outer::Inner::LIMIT",
		"Outer::Inner#name",
		"Outer::Inner#name=",
		"Outer::Inner#size",
		"Outer::Inner#run",
		"Outer::Inner.build",
		"Outer::Inner.make",
		"Object#helper",
		"Top",
		"Outer::Reopened",
	}, fullNames(defs))

	inner := findDef(t, defs, "Outer::Inner")
	assert.Equal(t, KindClass, inner.Kind())
	assert.Equal(t, "Inner", inner.Name())
	assert.Equal(t, "Base", inner.Superclass())
	assert.Equal(t, "Outer", inner.Owner())

	assert.Equal(t, KindConstant, findDef(t, defs, "Outer::Inner::LIMIT").Kind())
	assert.Equal(t, KindAccessor, findDef(t, defs, "Outer::Inner#name=").Kind())
	assert.Equal(t, "name=", findDef(t, defs, "Outer::Inner#name=").Name())
	assert.Equal(t, KindMethod, findDef(t, defs, "Outer::Inner#run").Kind())
	assert.Equal(t, KindSingletonMethod, findDef(t, defs, "Outer::Inner.build").Kind())
	assert.Equal(t, KindSingletonMethod, findDef(t, defs, "Outer::Inner.make").Kind())
	assert.Equal(t, "Reopened", findDef(t, defs, "Outer::Reopened").Name())
	assert.Equal(t, "", findDef(t, defs, "Object#helper").Owner())

	run := findDef(t, defs, "Outer::Inner#run")
	assert.Equal(t, Location{File: "lib/outer.rb", StartLine: 7, StartColumn: 4, EndLine: 8, EndColumn: 7}, run.Location())

	assert.Equal(t, len(defs), idx.DefinitionCount())
}

func TestIndexer_ClassNameIsNotAReference(t *testing.T) {
	idx := NewIndex()
	ix := indexSource(t, idx, nil, "a.rb", "class Lonely < Parent\nend\n")

	names := refNames(ix.References())
	assert.Contains(t, names, "Parent")
	assert.NotContains(t, names, "Lonely")
}

func TestIndexer_Visibility(t *testing.T) {
	src := `class Account
  def open
  end

  private

  def secret
  end

  def self.create
  end

  protected def compare
  end

  public

  def shown
  end

  def hidden
  end
  private :hidden
end

class Other
  def reset
  end
end
`
	idx := NewIndex()
	defs := indexSource(t, idx, nil, "account.rb", src).Definitions()

	tests := []struct {
		name string
		want Visibility
	}{
		{"Account#open", VisibilityPublic},
		{"Account#secret", VisibilityPrivate},
		{"Account.create", VisibilityPublic},
		{"Account#compare", VisibilityProtected},
		{"Account#shown", VisibilityPublic},
		{"Account#hidden", VisibilityPrivate},
		{"Other#reset", VisibilityPublic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findDef(t, defs, tt.name).Visibility())
		})
	}
}

func TestIndexer_References(t *testing.T) {
	src := `class Runner
  def go(items, limit = DEFAULT)
    count = items.size
    count += 1
    self.total = count
    items.map(&:to_s)
    helper
    Config::VALUE
    items[0]
    count == limit
    negated = -count
    alias_target
  end

  alias start go
end
`
	idx := NewIndex()
	ix := indexSource(t, idx, nil, "runner.rb", src)
	names := refNames(ix.References())

	for _, want := range []string{"size", "total=", "map", "to_s", "helper", "Config", "VALUE", "[]", "==", "-@", "DEFAULT", "go", "alias_target"} {
		assert.Contains(t, names, want)
	}
	for _, local := range []string{"items", "count", "limit", "negated", "start"} {
		assert.NotContains(t, names, local)
	}

	for _, r := range ix.References() {
		assert.Equal(t, OriginSyntactic, r.Origin(), r.String())
	}
	assert.Equal(t, len(ix.References()), idx.ReferenceCount())
}

func TestIndexer_BlockLocalsEndWithTheBlock(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "block",
			src: `class Report
  def total
    1
  end

  def print
    [1, 2].each { |total| puts total }
    puts total
  end
end
`,
		},
		{
			name: "do block",
			src: `class Report
  def total
    1
  end

  def print
    [1, 2].each do |row|
      total = row
    end
    puts total
  end
end
`,
		},
		{
			name: "lambda",
			src: `class Report
  def total
    1
  end

  def print
    double = ->(total) { total * 2 }
    double.call(total)
  end
end
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolveSources(t, nil, sourceFile{"report.rb", tt.src})
			assert.NotContains(t, deadNames(res), "Report#total")
		})
	}
}

func TestIndexer_BlocksSeeMethodLocals(t *testing.T) {
	src := `class Batch
  def run(items)
    size = items.length
    items.each { |item| item.resize(size) }
    ->(x) { x + size }
  end
end

def size
end
`
	ix := indexSource(t, NewIndex(), nil, "batch.rb", src)
	names := refNames(ix.References())

	assert.Contains(t, names, "resize")
	assert.NotContains(t, names, "size")
	assert.NotContains(t, names, "item")
	assert.NotContains(t, names, "x")
}

func TestIndexer_BlocksDoNotSeeLocalsPastTheMethod(t *testing.T) {
	src := `name = "top"

class Card
  def render
    [1].map { name }
  end
end
`
	ix := indexSource(t, NewIndex(), nil, "card.rb", src)
	assert.Contains(t, refNames(ix.References()), "name")
}

func TestIndexer_ShorthandHashArgument(t *testing.T) {
	src := `class Form
  def name
    'x'
  end

  def payload
    build(name:)
  end

  def local_payload(title)
    build(title:)
  end
end
`
	ix := indexSource(t, NewIndex(), nil, "form.rb", src)
	names := refNames(ix.References())
	assert.Contains(t, names, "name")
	assert.NotContains(t, names, "title")

	res := resolveSources(t, nil, sourceFile{"form.rb", src})
	assert.NotContains(t, deadNames(res), "Form#name")
}

func TestIndexer_ModuleFunction(t *testing.T) {
	src := `module Helpers
  def helper
  end
  module_function :helper

  def shared
  end
end

module Tools
  def before
  end

  module_function

  def after
  end
end
`
	defs := indexSource(t, NewIndex(), nil, "helpers.rb", src).Definitions()

	tests := []struct {
		name string
		want Visibility
	}{
		{"Helpers#helper", VisibilityPrivate},
		{"Helpers#shared", VisibilityPublic},
		{"Tools#before", VisibilityPublic},
		{"Tools#after", VisibilityPrivate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findDef(t, defs, tt.name).Visibility())
		})
	}
}

func TestIndexer_VisibilityInsideMethodBodyIsIgnored(t *testing.T) {
	src := `class Toggle
  def flip
    private
  end

  def shown
  end
end
`
	defs := indexSource(t, NewIndex(), nil, "toggle.rb", src).Definitions()
	assert.Equal(t, VisibilityPublic, findDef(t, defs, "Toggle#shown").Visibility())
}

func TestIndexer_OperatorAssignmentReferencesReaderAndWriter(t *testing.T) {
	idx := NewIndex()
	ix := indexSource(t, idx, nil, "counter.rb", "def bump(obj)\n  obj.hits ||= 0\n  obj.cache[:k] += 1\nend\n")

	names := refNames(ix.References())
	assert.Contains(t, names, "hits")
	assert.Contains(t, names, "hits=")
	assert.Contains(t, names, "[]")
	assert.Contains(t, names, "[]=")
}

func TestIndexer_NoDefinitionsInsideMethodBodies(t *testing.T) {
	src := `class Host
  def self.included(base)
    base.class_eval do
      def injected
      end
      attr_reader :dynamic
    end
  end
end
`
	idx := NewIndex()
	ix := indexSource(t, idx, nil, "host.rb", src)

	assert.Equal(t, []string{"Host", "Host.included"}, fullNames(ix.Definitions()))
	assert.Contains(t, refNames(ix.References()), "class_eval")
}

func TestIndexer_SendSite(t *testing.T) {
	capture := newCapturePlugin()
	src := `class PostsController
  before_action :authenticate, only: [:show, "edit"], if: :admin?
  self.table = :posts
end
`
	idx := NewIndex()
	indexSource(t, idx, NewChain(capture), "posts.rb", src)

	s := capture.send(t, "before_action")
	assert.True(t, s.Implicit())
	assert.Equal(t, ReceiverImplicit, s.ReceiverPresence)
	require.Len(t, s.Args, 2)

	name, _, ok := s.FirstName()
	require.True(t, ok)
	assert.Equal(t, "authenticate", name)

	only, ok := s.Keyword("only")
	require.True(t, ok)
	assert.Equal(t, ArgArray, only.Kind)
	assert.Equal(t, []string{"show", "edit"}, only.Names())

	cond, ok := s.Keyword("if")
	require.True(t, ok)
	assert.Equal(t, ArgSymbol, cond.Kind)
	assert.Equal(t, "admin?", cond.Value)

	setter := capture.send(t, "table=")
	assert.Equal(t, "self", setter.Receiver)
	assert.Equal(t, ReceiverExplicit, setter.ReceiverPresence)
	assert.True(t, setter.Implicit())
}

func TestIndexer_ArgKinds(t *testing.T) {
	capture := newCapturePlugin()
	src := `configure :sym, "str", Foo::Bar, 42, { a: 1 }, [1], nil, self, other.call_me, "x#{y}", &blk
register def handler
end
`
	idx := NewIndex()
	indexSource(t, idx, NewChain(capture), "args.rb", src)

	s := capture.send(t, "configure")
	kinds := make([]ArgKind, len(s.Args))
	for i, a := range s.Args {
		kinds[i] = a.Kind
	}
	assert.Equal(t, []ArgKind{
		ArgSymbol, ArgString, ArgConstant, ArgInteger, ArgHash, ArgArray,
		ArgLiteral, ArgSelf, ArgCall, ArgOther, ArgBlockPass,
	}, kinds)
	assert.Equal(t, "Foo::Bar", s.Args[2].Value)
	assert.Equal(t, "call_me", s.Args[8].Value)
	assert.Len(t, s.Positional(), 10)

	reg := capture.send(t, "register")
	require.Len(t, reg.Args, 1)
	assert.Equal(t, ArgMethodDef, reg.Args[0].Kind)
	assert.Equal(t, "handler", reg.Args[0].Value)
}

func TestIndexer_LastSig(t *testing.T) {
	capture := newCapturePlugin()
	src := `class Typed
  extend T::Sig

  sig { returns(Integer) }
  def typed
    1
  end

  def untyped
  end
end
`
	idx := NewIndex()
	indexSource(t, idx, NewChain(capture), "typed.rb", src)

	assert.Contains(t, capture.sigs["typed"], "returns(Integer)")
	assert.Equal(t, "", capture.sigs["untyped"])
}

func TestIndexer_ReferenceConstantSplitsSegments(t *testing.T) {
	idx := NewIndex()
	ix := NewFileIndexer("x.rb", nil, idx, nil)
	ix.ReferenceConstant("::A::B", Location{File: "x.rb", StartLine: 1})

	refs := ix.References()
	require.Len(t, refs, 2)
	assert.Equal(t, "A", refs[0].Name())
	assert.Equal(t, "B", refs[1].Name())
	assert.Equal(t, OriginSynthetic, refs[0].Origin())
	assert.Equal(t, RefConstant, refs[0].Kind())
}

func TestIndexer_Determinism(t *testing.T) {
	src := `module App
  class Service
    def call(x)
      process(x).then { |y| y.finish }
    end

    private

    def process(x)
      Helper.new(x)
    end
  end
end
`
	first := indexSource(t, NewIndex(), nil, "service.rb", src).Snapshot()
	second := indexSource(t, NewIndex(), nil, "service.rb", src).Snapshot()

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Definitions)
	assert.NotEmpty(t, first.References)
}

func TestIndexer_PluginsRunInOrder(t *testing.T) {
	ignorer := NewBase("ignorer", MustDescriptor(IgnoreMethodNames("foo")))
	var observed []bool
	observer := &observePlugin{Base: NewBase("observer", nil), observed: &observed}

	idx := NewIndex()
	indexSource(t, idx, NewChain(ignorer, observer), "foo.rb", "def foo\nend\ndef bar\nend\n")

	assert.Equal(t, []bool{true, false}, observed)
}

type observePlugin struct {
	Base
	observed *[]bool
}

func (p *observePlugin) OnDefineMethod(ix Indexer, d *Definition) {
	p.Base.OnDefineMethod(ix, d)
	*p.observed = append(*p.observed, d.Ignored())
}
