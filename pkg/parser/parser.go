// Package parser wraps tree-sitter for parsing Ruby sources.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

// ErrUnsupported is returned for paths that are not Ruby sources.
var ErrUnsupported = errors.New("unsupported file")

// ErrSyntax is matched by every SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the first ERROR or MISSING node in a parsed file.
type SyntaxError struct {
	Path   string
	Line   uint32
	Column uint32
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("%s:%d:%d: syntax error near %q", e.Path, e.Line, e.Column, e.Near)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Column)
}

// Is lets errors.Is(err, ErrSyntax) match.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Parser wraps a tree-sitter parser configured for Ruby.
// A Parser is not safe for concurrent use; create one per worker.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// Root returns the root node of the tree.
func (r *ParseResult) Root() *sitter.Node {
	return r.Tree.RootNode()
}

// Close releases the tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// New creates a new parser instance.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(ruby.GetLanguage())
	return &Parser{parser: p}
}

// ParseFile reads and parses a Ruby file.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	if !IsRubyFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return p.Parse(source, path)
}

// Parse parses Ruby source. A tree containing syntax errors is released and
// reported as a *SyntaxError.
func (p *Parser) Parse(source []byte, path string) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		bad := FirstError(root)
		serr := &SyntaxError{Path: path}
		if bad != nil {
			serr.Line = bad.StartPoint().Row + 1
			serr.Column = bad.StartPoint().Column
			serr.Near = truncate(GetNodeText(bad, source), 20)
		}
		tree.Close()
		return nil, serr
	}

	return &ParseResult{
		Tree:   tree,
		Source: source,
		Path:   path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// IsRubyFile reports whether path names a Ruby source the indexer understands.
func IsRubyFile(path string) bool {
	switch filepath.Base(path) {
	case "Rakefile", "Gemfile", "Guardfile", "Capfile", "Vagrantfile":
		return true
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".rb", ".rake", ".gemspec", ".ru", ".rbi":
		return true
	default:
		return false
	}
}

// FirstError returns the first ERROR or MISSING node in pre-order, or nil.
func FirstError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := range int(node.ChildCount()) {
		if found := FirstError(node.Child(i)); found != nil {
			return found
		}
	}
	return node
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the AST calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// FindNodesByType returns all nodes of a specific type.
func FindNodesByType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	Walk(root, source, func(node *sitter.Node, _ []byte) bool {
		if node.Type() == nodeType {
			results = append(results, node)
		}
		return true
	})
	return results
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

func truncate(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
