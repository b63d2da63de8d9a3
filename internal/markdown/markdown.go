// Package markdown provides the structural views of Markdown sources the
// server works with: table of contents, link definitions, and hyperlink
// occurrences.
package markdown

import (
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/document"
)

// lineIndex maps byte offsets in a source to lines and positions.
type lineIndex struct {
	source []byte
	starts []int // byte offset of each line start
}

func newLineIndex(source []byte) *lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{source: source, starts: starts}
}

func (ix *lineIndex) lineCount() int { return len(ix.starts) }

func (ix *lineIndex) lineAt(offset int) uint32 {
	i := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > offset })
	return uint32(i - 1)
}

// lineText returns a line without its terminator.
func (ix *lineIndex) lineText(line uint32) string {
	start := ix.starts[line]
	end := len(ix.source)
	if int(line)+1 < len(ix.starts) {
		end = ix.starts[line+1] - 1
	}
	return strings.TrimSuffix(string(ix.source[start:end]), "\r")
}

// lineRange spans a whole line.
func (ix *lineIndex) lineRange(line uint32) protocol.Range {
	length := document.UTF16Len(ix.lineText(line))
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: 0},
		End:   protocol.Position{Line: line, Character: uint32(length)},
	}
}
