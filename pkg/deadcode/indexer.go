package deadcode

import (
	"strings"

	"github.com/panbanda/wraith/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// operators that dispatch to a method of the same name on the left operand.
var methodOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"<=>": true, "===": true, "=~": true, "!~": true,
	"<<": true, ">>": true, "&": true, "|": true, "^": true,
}

var unaryOperators = map[string]string{
	"-":   "-@",
	"+":   "+@",
	"!":   "!",
	"~":   "~",
	"not": "!",
}

// FileIndexer walks one file's syntax tree and emits its definitions and
// references into the shared Index, dispatching plugin hooks as it goes.
// A FileIndexer is single-use and not safe for concurrent use.
type FileIndexer struct {
	path   string
	source []byte
	index  *Index
	chain  *Chain

	// owners holds the full names of the enclosing classes and modules.
	owners      []string
	visibility  Visibility
	pending     *Visibility
	singleton   int
	methodDepth int
	lastSig     string
	scopes      []localScope

	defs []*Definition
	refs []Reference
}

// Compile-time check that FileIndexer implements the plugin-facing Indexer.
var _ Indexer = (*FileIndexer)(nil)

// NewFileIndexer prepares an indexer for one file.
func NewFileIndexer(path string, source []byte, index *Index, chain *Chain) *FileIndexer {
	if chain == nil {
		chain = NewChain()
	}
	return &FileIndexer{
		path:   path,
		source: source,
		index:  index,
		chain:  chain,
	}
}

// IndexTree walks the tree rooted at root.
func (ix *FileIndexer) IndexTree(root *sitter.Node) {
	ix.pushScope()
	ix.visitChildren(root)
	ix.popScope()
}

// IndexParsed walks a parse result produced for this indexer's file.
func (ix *FileIndexer) IndexParsed(result *parser.ParseResult) {
	ix.IndexTree(result.Root())
}

// Snapshot returns everything this indexer emitted, in emission order.
func (ix *FileIndexer) Snapshot() *FileSnapshot {
	snap := &FileSnapshot{
		Path:        ix.path,
		Definitions: make([]DefinitionRecord, len(ix.defs)),
		References:  make([]ReferenceRecord, len(ix.refs)),
	}
	for i, d := range ix.defs {
		snap.Definitions[i] = recordOf(d)
	}
	for i, r := range ix.refs {
		snap.References[i] = ReferenceRecord{Name: r.name, Kind: r.kind, Location: r.location, Origin: r.origin}
	}
	return snap
}

// Definitions returns the definitions emitted for this file.
func (ix *FileIndexer) Definitions() []*Definition {
	return append([]*Definition(nil), ix.defs...)
}

// References returns the references emitted for this file.
func (ix *FileIndexer) References() []Reference {
	return append([]Reference(nil), ix.refs...)
}

func (ix *FileIndexer) Path() string { return ix.path }

func (ix *FileIndexer) Namespace() string {
	if len(ix.owners) == 0 {
		return ""
	}
	return ix.owners[len(ix.owners)-1]
}

func (ix *FileIndexer) LastSig() string { return ix.lastSig }

func (ix *FileIndexer) Index() *Index { return ix.index }

func (ix *FileIndexer) ReferenceMethod(name string, loc Location) {
	ix.reference(name, RefMethod, loc, OriginSynthetic)
}

func (ix *FileIndexer) ReferenceConstant(name string, loc Location) {
	for _, seg := range strings.Split(strings.TrimPrefix(name, "::"), "::") {
		ix.reference(seg, RefConstant, loc, OriginSynthetic)
	}
}

// Traversal

func (ix *FileIndexer) visit(n *sitter.Node) {
	if n == nil || !n.IsNamed() {
		return
	}

	switch n.Type() {
	case "comment":
	case "class":
		ix.visitClass(n)
	case "module":
		ix.visitModule(n)
	case "singleton_class":
		ix.visitSingletonClass(n)
	case "method":
		ix.visitMethod(n, false)
	case "singleton_method":
		ix.visitMethod(n, true)
	case "assignment":
		ix.assignTarget(n.ChildByFieldName("left"), n)
		ix.visit(n.ChildByFieldName("right"))
	case "operator_assignment":
		ix.visitOperatorAssignment(n)
	case "call":
		ix.visitCall(n)
	case "identifier":
		ix.visitIdentifier(n)
	case "constant":
		ix.reference(ix.text(n), RefConstant, ix.loc(n), OriginSyntactic)
	case "binary":
		ix.visitBinary(n)
	case "unary":
		ix.visitUnary(n)
	case "element_reference":
		ix.reference("[]", RefMethod, ix.loc(n), OriginSyntactic)
		ix.visitChildren(n)
	case "alias":
		ix.visitAlias(n)
	case "block_argument":
		ix.visitBlockArgument(n)
	case "block", "do_block", "lambda":
		ix.pushBlockScope()
		ix.visitChildren(n)
		ix.popScope()
	case "pair":
		ix.visitPair(n)
	case "method_parameters", "parameters", "block_parameters", "lambda_parameters":
		ix.visitParameters(n)
	case "exception_variable":
		ix.bindAll(n)
	case "for":
		ix.bindAll(n.ChildByFieldName("pattern"))
		ix.visit(n.ChildByFieldName("value"))
		ix.visit(n.ChildByFieldName("body"))
	default:
		ix.visitChildren(n)
	}
}

func (ix *FileIndexer) visitChildren(n *sitter.Node) {
	if n == nil {
		return
	}
	for i := range int(n.NamedChildCount()) {
		ix.visit(n.NamedChild(i))
	}
}

// visitExcept visits the named children of n other than the given field nodes.
func (ix *FileIndexer) visitExcept(n *sitter.Node, skip ...*sitter.Node) {
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if containsNode(skip, child) {
			continue
		}
		ix.visit(child)
	}
}

func containsNode(nodes []*sitter.Node, n *sitter.Node) bool {
	for _, s := range nodes {
		if s != nil && s.StartByte() == n.StartByte() && s.EndByte() == n.EndByte() && s.Type() == n.Type() {
			return true
		}
	}
	return false
}

// Namespaces

func (ix *FileIndexer) visitClass(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	superNode := n.ChildByFieldName("superclass")
	if nameNode == nil || ix.methodDepth > 0 {
		ix.visitChildren(n)
		return
	}

	written := ix.text(nameNode)
	if nameNode.Type() == "scope_resolution" {
		ix.visit(nameNode.ChildByFieldName("scope"))
	}

	superclass := ""
	if superNode != nil {
		superclass = strings.TrimSpace(strings.TrimPrefix(ix.text(superNode), "<"))
		ix.visitChildren(superNode)
	}

	full := ix.qualify(written)
	d := newDefinition(KindClass, lastSegment(written), full, ix.Namespace(), ix.loc(n), VisibilityPublic)
	d.superclass = superclass
	ix.add(d)
	ix.chain.defineClass(ix, d)

	ix.withNamespace(full, func() {
		ix.visitExcept(n, nameNode, superNode)
	})
}

func (ix *FileIndexer) visitModule(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || ix.methodDepth > 0 {
		ix.visitChildren(n)
		return
	}

	written := ix.text(nameNode)
	if nameNode.Type() == "scope_resolution" {
		ix.visit(nameNode.ChildByFieldName("scope"))
	}

	full := ix.qualify(written)
	d := newDefinition(KindModule, lastSegment(written), full, ix.Namespace(), ix.loc(n), VisibilityPublic)
	ix.add(d)
	ix.chain.defineModule(ix, d)

	ix.withNamespace(full, func() {
		ix.visitExcept(n, nameNode)
	})
}

func (ix *FileIndexer) visitSingletonClass(n *sitter.Node) {
	value := n.ChildByFieldName("value")
	if value != nil && value.Type() != "self" {
		ix.visit(value)
	}

	savedVis, savedPending := ix.visibility, ix.pending
	ix.visibility, ix.pending = VisibilityPublic, nil
	ix.singleton++
	ix.pushScope()

	ix.visitExcept(n, value)

	ix.popScope()
	ix.singleton--
	ix.visibility, ix.pending = savedVis, savedPending
}

// withNamespace runs fn inside a class or module body. The visibility mode
// starts public and is restored on exit.
func (ix *FileIndexer) withNamespace(full string, fn func()) {
	savedVis, savedPending, savedSingleton := ix.visibility, ix.pending, ix.singleton
	ix.owners = append(ix.owners, full)
	ix.visibility, ix.pending, ix.singleton = VisibilityPublic, nil, 0
	ix.lastSig = ""
	ix.pushScope()

	fn()

	ix.popScope()
	ix.owners = ix.owners[:len(ix.owners)-1]
	ix.visibility, ix.pending, ix.singleton = savedVis, savedPending, savedSingleton
	ix.lastSig = ""
}

func (ix *FileIndexer) qualify(written string) string {
	if strings.HasPrefix(written, "::") {
		return strings.TrimPrefix(written, "::")
	}
	if ns := ix.Namespace(); ns != "" {
		return ns + "::" + written
	}
	return written
}

func (ix *FileIndexer) methodFullName(name string, singleton bool) string {
	owner := ix.Namespace()
	switch {
	case singleton && owner == "":
		return "main." + name
	case singleton:
		return owner + "." + name
	case owner == "":
		return "Object#" + name
	default:
		return owner + "#" + name
	}
}

func lastSegment(written string) string {
	if i := strings.LastIndex(written, "::"); i >= 0 {
		return written[i+2:]
	}
	return written
}

// Methods and accessors

func (ix *FileIndexer) visitMethod(n *sitter.Node, singletonDef bool) {
	nameNode := n.ChildByFieldName("name")
	objectNode := n.ChildByFieldName("object")

	if objectNode != nil && objectNode.Type() != "self" {
		ix.visit(objectNode)
	}

	if nameNode != nil && ix.methodDepth == 0 {
		name := ix.text(nameNode)
		singleton := singletonDef || ix.singleton > 0

		vis := ix.currentVisibility()
		if singletonDef && ix.pending == nil {
			vis = VisibilityPublic
		}

		full := ix.methodFullName(name, singleton)
		if objectNode != nil && objectNode.Type() != "self" {
			full = ix.text(objectNode) + "." + name
		}

		kind := KindMethod
		if singleton {
			kind = KindSingletonMethod
		}

		d := newDefinition(kind, name, full, ix.Namespace(), ix.loc(n), vis)
		ix.add(d)
		ix.chain.defineMethod(ix, d)
		ix.lastSig = ""
	}

	savedPending := ix.pending
	ix.pending = nil
	ix.methodDepth++
	ix.pushScope()

	ix.visitExcept(n, nameNode, objectNode)

	ix.popScope()
	ix.methodDepth--
	ix.pending = savedPending
}

func (ix *FileIndexer) defineAccessors(callName string, args []Arg) {
	if ix.methodDepth > 0 {
		return
	}
	singleton := ix.singleton > 0
	for _, a := range args {
		if !a.IsName() || a.Value == "" {
			continue
		}

		var names []string
		switch callName {
		case "attr_reader":
			names = []string{a.Value}
		case "attr_writer":
			names = []string{a.Value + "="}
		default:
			names = []string{a.Value, a.Value + "="}
		}

		for _, name := range names {
			d := newDefinition(KindAccessor, name, ix.methodFullName(name, singleton), ix.Namespace(), a.Location, ix.currentVisibility())
			ix.add(d)
			ix.chain.defineAccessor(ix, d)
		}
	}
	ix.lastSig = ""
}

func (ix *FileIndexer) currentVisibility() Visibility {
	if ix.pending != nil {
		return *ix.pending
	}
	return ix.visibility
}

// setVisibilityOf applies `private :name` style declarations to methods
// already defined in the current namespace of this file.
func (ix *FileIndexer) setVisibilityOf(name string, vis Visibility, singleton bool) {
	owner := ix.Namespace()
	for _, d := range ix.defs {
		if d.owner != owner || d.name != name {
			continue
		}
		switch {
		case singleton && d.kind == KindSingletonMethod:
			d.setVisibility(vis)
		case !singleton && (d.kind == KindMethod || d.kind == KindAccessor):
			d.setVisibility(vis)
		}
	}
}

// Constants

func (ix *FileIndexer) defineConstant(name, written string, loc Location) {
	if ix.methodDepth > 0 || name == "" {
		return
	}
	d := newDefinition(KindConstant, name, ix.qualify(written), ix.Namespace(), loc, VisibilityPublic)
	ix.add(d)
	ix.chain.defineConstant(ix, d)
}

// Assignments

// assignTarget handles the left-hand side of an assignment. stmt is the
// whole assignment, used as the location of single constant definitions.
func (ix *FileIndexer) assignTarget(t, stmt *sitter.Node) {
	if t == nil {
		return
	}
	switch t.Type() {
	case "identifier":
		ix.bind(ix.text(t))
	case "constant":
		ix.defineConstant(ix.text(t), ix.text(t), ix.loc(stmt))
	case "scope_resolution":
		ix.visit(t.ChildByFieldName("scope"))
		ix.defineConstant(ix.text(t.ChildByFieldName("name")), ix.text(t), ix.loc(stmt))
	case "call":
		ix.visit(t.ChildByFieldName("receiver"))
		if m := t.ChildByFieldName("method"); m != nil {
			ix.emitSend(ix.text(m)+"=", t.ChildByFieldName("receiver"), nil, false, t)
		}
	case "element_reference":
		ix.reference("[]=", RefMethod, ix.loc(t), OriginSyntactic)
		ix.visitChildren(t)
	case "left_assignment_list", "destructured_left_assignment", "rest_assignment":
		for i := range int(t.NamedChildCount()) {
			child := t.NamedChild(i)
			ix.assignTarget(child, child)
		}
	case "instance_variable", "class_variable", "global_variable":
	default:
		ix.visit(t)
	}
}

func (ix *FileIndexer) visitOperatorAssignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	if left != nil {
		switch left.Type() {
		case "identifier":
			ix.bind(ix.text(left))
		case "call":
			recv := left.ChildByFieldName("receiver")
			ix.visit(recv)
			if m := left.ChildByFieldName("method"); m != nil {
				name := ix.text(m)
				ix.emitSend(name, recv, nil, false, left)
				ix.emitSend(name+"=", recv, nil, false, left)
			}
		case "element_reference":
			ix.reference("[]", RefMethod, ix.loc(left), OriginSyntactic)
			ix.reference("[]=", RefMethod, ix.loc(left), OriginSyntactic)
			ix.visitChildren(left)
		case "constant", "scope_resolution":
			ix.assignTarget(left, n)
		default:
			ix.visit(left)
		}
	}
	ix.visit(n.ChildByFieldName("right"))
}

// Sends

func (ix *FileIndexer) visitCall(n *sitter.Node) {
	recv := n.ChildByFieldName("receiver")
	methodNode := n.ChildByFieldName("method")
	argsNode := n.ChildByFieldName("arguments")
	block := n.ChildByFieldName("block")

	name := "call"
	if methodNode != nil {
		name = ix.text(methodNode)
	}
	args := ix.argsOf(argsNode)

	var pending *Visibility
	if recv == nil {
		switch name {
		case "private", "protected", "public":
			vis, _ := ParseVisibility(name)
			pending = ix.applyVisibility(vis, args, false)
		case "module_function":
			pending = ix.applyVisibility(VisibilityPrivate, args, false)
		case "private_class_method", "public_class_method":
			vis := VisibilityPrivate
			if name == "public_class_method" {
				vis = VisibilityPublic
			}
			pending = ix.applyVisibility(vis, args, true)
		case "attr_reader", "attr_writer", "attr_accessor":
			ix.defineAccessors(name, args)
		}
	}

	ix.emitSend(name, recv, args, block != nil, n)
	ix.visit(recv)

	if pending != nil {
		saved := ix.pending
		ix.pending = pending
		ix.visit(argsNode)
		ix.pending = saved
	} else {
		ix.visit(argsNode)
	}
	ix.visit(block)

	if recv == nil && name == "sig" {
		ix.lastSig = ix.text(n)
	}
}

// applyVisibility handles private/protected/public calls. Without arguments
// the mode changes for the rest of the body. Name arguments change methods
// already defined. A def or attr_* argument returns the visibility to force
// while its definitions are emitted.
func (ix *FileIndexer) applyVisibility(vis Visibility, args []Arg, singleton bool) *Visibility {
	if len(args) == 0 {
		if !singleton && ix.methodDepth == 0 {
			ix.visibility = vis
		}
		return nil
	}

	var pending *Visibility
	for _, a := range args {
		switch {
		case a.IsName():
			ix.setVisibilityOf(a.Value, vis, singleton)
		case a.Kind == ArgArray:
			for _, name := range a.Names() {
				ix.setVisibilityOf(name, vis, singleton)
			}
		case a.Kind == ArgMethodDef, a.Kind == ArgCall && strings.HasPrefix(a.Value, "attr_"):
			v := vis
			pending = &v
		}
	}
	return pending
}

func (ix *FileIndexer) visitIdentifier(n *sitter.Node) {
	name := ix.text(n)
	if ix.isLocal(name) {
		return
	}
	if ix.methodDepth == 0 {
		if vis, ok := ParseVisibility(name); ok {
			ix.visibility = vis
		} else if name == "module_function" {
			ix.visibility = VisibilityPrivate
		}
	}
	ix.emitSend(name, nil, nil, false, n)
}

// visitPair handles hash pairs. The shorthand `name:` has no value and
// calls name unless it is a local.
func (ix *FileIndexer) visitPair(n *sitter.Node) {
	key := n.ChildByFieldName("key")
	value := n.ChildByFieldName("value")
	if value != nil {
		ix.visitChildren(n)
		return
	}
	if key == nil || key.Type() != "hash_key_symbol" {
		ix.visit(key)
		return
	}
	if name := ix.text(key); !ix.isLocal(name) {
		ix.emitSend(name, nil, nil, false, key)
	}
}

func (ix *FileIndexer) emitSend(name string, recv *sitter.Node, args []Arg, hasBlock bool, n *sitter.Node) {
	if name == "" {
		return
	}
	s := &Send{
		Name:     name,
		Args:     args,
		HasBlock: hasBlock,
		Location: ix.loc(n),
	}
	if recv != nil {
		s.Receiver = ix.text(recv)
		s.ReceiverPresence = ReceiverExplicit
	}
	ix.reference(name, RefMethod, s.Location, OriginSyntactic)
	ix.chain.send(ix, s)
}

func (ix *FileIndexer) visitBinary(n *sitter.Node) {
	if op := ix.text(n.ChildByFieldName("operator")); methodOperators[op] {
		loc := ix.loc(n)
		ix.reference(op, RefMethod, loc, OriginSyntactic)
		switch op {
		case "!=":
			ix.reference("==", RefMethod, loc, OriginSyntactic)
		case "!~":
			ix.reference("=~", RefMethod, loc, OriginSyntactic)
		}
	}
	ix.visit(n.ChildByFieldName("left"))
	ix.visit(n.ChildByFieldName("right"))
}

func (ix *FileIndexer) visitUnary(n *sitter.Node) {
	if name, ok := unaryOperators[ix.text(n.ChildByFieldName("operator"))]; ok {
		ix.reference(name, RefMethod, ix.loc(n), OriginSyntactic)
	}
	ix.visit(n.ChildByFieldName("operand"))
}

// visitAlias references the aliased method; the new name is not a definition.
func (ix *FileIndexer) visitAlias(n *sitter.Node) {
	old := n.ChildByFieldName("alias")
	if old == nil {
		return
	}
	name := strings.TrimPrefix(ix.text(old), ":")
	ix.reference(name, RefMethod, ix.loc(old), OriginSyntactic)
}

// visitBlockArgument turns `&:name` into a reference to name.
func (ix *FileIndexer) visitBlockArgument(n *sitter.Node) {
	if n.NamedChildCount() == 0 {
		return
	}
	child := n.NamedChild(0)
	if child.Type() == "simple_symbol" {
		ix.reference(strings.TrimPrefix(ix.text(child), ":"), RefMethod, ix.loc(child), OriginSyntactic)
		return
	}
	ix.visit(child)
}

// Arguments

func (ix *FileIndexer) argsOf(argsNode *sitter.Node) []Arg {
	if argsNode == nil {
		return nil
	}
	var args []Arg
	kw := -1
	for i := range int(argsNode.NamedChildCount()) {
		c := argsNode.NamedChild(i)
		switch c.Type() {
		case "comment":
			continue
		case "pair":
			if kw < 0 {
				args = append(args, Arg{Kind: ArgHash, Location: ix.loc(c)})
				kw = len(args) - 1
			}
			args[kw].Pairs = append(args[kw].Pairs, ix.pairOf(c))
		default:
			args = append(args, ix.argOf(c))
		}
	}
	return args
}

func (ix *FileIndexer) pairOf(n *sitter.Node) Pair {
	return Pair{
		Key:   ix.argOf(n.ChildByFieldName("key")),
		Value: ix.argOf(n.ChildByFieldName("value")),
	}
}

func (ix *FileIndexer) argOf(n *sitter.Node) Arg {
	if n == nil {
		return Arg{Kind: ArgOther}
	}
	text := ix.text(n)
	a := Arg{Kind: ArgOther, Value: text, Location: ix.loc(n)}

	switch n.Type() {
	case "simple_symbol":
		a.Kind, a.Value = ArgSymbol, strings.TrimPrefix(text, ":")
	case "hash_key_symbol", "bare_symbol":
		a.Kind = ArgSymbol
	case "delimited_symbol":
		if content, ok := ix.literalContent(n); ok {
			a.Kind, a.Value = ArgSymbol, content
		}
	case "string", "bare_string":
		if content, ok := ix.literalContent(n); ok {
			a.Kind, a.Value = ArgString, content
		}
	case "constant", "scope_resolution":
		a.Kind = ArgConstant
	case "integer":
		a.Kind = ArgInteger
	case "hash":
		a.Kind, a.Value = ArgHash, ""
		for i := range int(n.NamedChildCount()) {
			if c := n.NamedChild(i); c.Type() == "pair" {
				a.Pairs = append(a.Pairs, ix.pairOf(c))
			}
		}
	case "array":
		a.Kind, a.Value = ArgArray, ""
		for i := range int(n.NamedChildCount()) {
			a.Elems = append(a.Elems, ix.argOf(n.NamedChild(i)))
		}
	case "method", "singleton_method":
		a.Kind, a.Value = ArgMethodDef, ix.text(n.ChildByFieldName("name"))
	case "identifier":
		a.Kind = ArgIdentifier
	case "call":
		a.Kind, a.Value = ArgCall, ix.text(n.ChildByFieldName("method"))
	case "self":
		a.Kind = ArgSelf
	case "nil", "true", "false":
		a.Kind = ArgLiteral
	case "block_argument", "splat_argument", "hash_splat_argument":
		a.Kind = ArgSplat
		if n.Type() == "block_argument" {
			a.Kind = ArgBlockPass
		}
		if n.NamedChildCount() > 0 {
			a.Elems = []Arg{ix.argOf(n.NamedChild(0))}
		}
	}
	return a
}

// literalContent returns the contents of a string or symbol literal without
// interpolation.
func (ix *FileIndexer) literalContent(n *sitter.Node) (string, bool) {
	var sb strings.Builder
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		switch c.Type() {
		case "string_content", "escape_sequence":
			sb.WriteString(ix.text(c))
		default:
			return "", false
		}
	}
	return sb.String(), true
}

// Locals

func (ix *FileIndexer) visitParameters(n *sitter.Node) {
	for i := range int(n.NamedChildCount()) {
		p := n.NamedChild(i)
		switch p.Type() {
		case "identifier":
			ix.bind(ix.text(p))
		case "optional_parameter", "keyword_parameter":
			ix.bind(ix.text(p.ChildByFieldName("name")))
			ix.visit(p.ChildByFieldName("value"))
		case "splat_parameter", "hash_splat_parameter", "block_parameter":
			ix.bind(ix.text(p.ChildByFieldName("name")))
		case "destructured_parameter":
			ix.bindAll(p)
		}
	}
}

// bindAll binds every identifier below n as a local.
func (ix *FileIndexer) bindAll(n *sitter.Node) {
	if n == nil {
		return
	}
	parser.Walk(n, ix.source, func(node *sitter.Node, _ []byte) bool {
		if node.Type() == "identifier" {
			ix.bind(ix.text(node))
		}
		return true
	})
}

// localScope holds the locals bound in one scope. Block scopes see the
// locals of their enclosing scopes; method, class and module bodies do not.
type localScope struct {
	vars  map[string]struct{}
	block bool
}

func (ix *FileIndexer) pushScope() {
	ix.scopes = append(ix.scopes, localScope{vars: make(map[string]struct{})})
}

func (ix *FileIndexer) pushBlockScope() {
	ix.scopes = append(ix.scopes, localScope{vars: make(map[string]struct{}), block: true})
}

func (ix *FileIndexer) popScope() {
	ix.scopes = ix.scopes[:len(ix.scopes)-1]
}

func (ix *FileIndexer) bind(name string) {
	if name == "" || len(ix.scopes) == 0 {
		return
	}
	ix.scopes[len(ix.scopes)-1].vars[name] = struct{}{}
}

func (ix *FileIndexer) isLocal(name string) bool {
	for i := len(ix.scopes) - 1; i >= 0; i-- {
		if _, ok := ix.scopes[i].vars[name]; ok {
			return true
		}
		if !ix.scopes[i].block {
			return false
		}
	}
	return false
}

// Emission

func (ix *FileIndexer) add(d *Definition) {
	ix.index.addDefinition(d)
	ix.defs = append(ix.defs, d)
}

func (ix *FileIndexer) reference(name string, kind RefKind, loc Location, origin Origin) {
	if name == "" {
		return
	}
	r := newReference(name, kind, loc, origin)
	ix.index.addReference(r)
	ix.refs = append(ix.refs, r)
}

func (ix *FileIndexer) text(n *sitter.Node) string {
	return parser.GetNodeText(n, ix.source)
}

func (ix *FileIndexer) loc(n *sitter.Node) Location {
	return NodeLocation(ix.path, n)
}
