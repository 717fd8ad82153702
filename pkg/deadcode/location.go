package deadcode

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Location is a source span. Lines are 1-based, columns 0-based.
type Location struct {
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
	EndLine     int    `json:"end_line"`
	EndColumn   int    `json:"end_column"`
}

// NodeLocation returns the span of node within file.
func NodeLocation(file string, node *sitter.Node) Location {
	start, end := node.StartPoint(), node.EndPoint()
	return Location{
		File:        file,
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column),
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column),
	}
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", l.File, l.StartLine, l.StartColumn, l.EndLine, l.EndColumn)
}

// Less orders locations by file, then start position, then end position.
func (l Location) Less(o Location) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	if l.StartLine != o.StartLine {
		return l.StartLine < o.StartLine
	}
	if l.StartColumn != o.StartColumn {
		return l.StartColumn < o.StartColumn
	}
	if l.EndLine != o.EndLine {
		return l.EndLine < o.EndLine
	}
	return l.EndColumn < o.EndColumn
}
