// Package document holds open text documents and the position arithmetic
// the protocol requires. Positions count UTF-16 code units, offsets count
// bytes of the UTF-8 content.
package document

import (
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Document is a snapshot of a text document. Content is never mutated in
// place; edits produce a new snapshot.
type Document struct {
	URI     protocol.DocumentUri
	Path    string // absolute filesystem path, empty for non-file URIs
	Version int32

	content string
	lines   []string
}

// New builds a snapshot from full document content.
func New(uri protocol.DocumentUri, path string, version int32, content string) *Document {
	return &Document{
		URI:     uri,
		Path:    path,
		Version: version,
		content: content,
		lines:   strings.Split(content, "\n"),
	}
}

func (d *Document) Content() string { return d.content }

func (d *Document) LineCount() uint32 { return uint32(len(d.lines)) }

// Line returns the text of a line without its terminator. Out-of-range
// lines are empty.
func (d *Document) Line(line uint32) string {
	if int(line) >= len(d.lines) {
		return ""
	}
	return strings.TrimSuffix(d.lines[line], "\r")
}

// OffsetAt converts a position to a byte offset into the content. Line and
// character are clamped to the document, and a character inside a surrogate
// pair never splits the code point.
func (d *Document) OffsetAt(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(d.lines) {
		line = len(d.lines) - 1
	}
	offset := 0
	for i := 0; i < line; i++ {
		offset += len(d.lines[i]) + 1
	}
	return offset + ByteOffsetUTF16(d.lines[line], pos.Character)
}

// PositionAt converts a byte offset into the content to a position.
func (d *Document) PositionAt(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.content) {
		offset = len(d.content)
	}
	lineStart := 0
	for i, l := range d.lines {
		lineEnd := lineStart + len(l)
		if offset <= lineEnd {
			prefix := d.content[lineStart:offset]
			return protocol.Position{Line: uint32(i), Character: uint32(UTF16Len(prefix))}
		}
		lineStart = lineEnd + 1
	}
	last := len(d.lines) - 1
	return protocol.Position{Line: uint32(last), Character: uint32(UTF16Len(d.lines[last]))}
}

// ApplyChange splices newText over the given range and returns the updated
// snapshot. An inverted range is normalized first.
func (d *Document) ApplyChange(r protocol.Range, newText string, version int32) *Document {
	start := d.OffsetAt(r.Start)
	end := d.OffsetAt(r.End)
	if end < start {
		start, end = end, start
	}
	return New(d.URI, d.Path, version, d.content[:start]+newText+d.content[end:])
}

// UTF16Len returns the number of UTF-16 code units needed to encode s.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		// Each codepoint uses 1 or 2 UTF-16 code units.
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// ByteOffsetUTF16 returns the byte offset in s after character UTF-16 code
// units, clamped to the string.
func ByteOffsetUTF16(s string, character uint32) int {
	var units, bytes int
	for _, r := range s {
		unitCount := 1
		if r > 0xFFFF {
			unitCount = 2
		}
		if uint32(units+unitCount) > character {
			break
		}
		units += unitCount
		bytes += utf8.RuneLen(r)
	}
	return bytes
}

// ShiftLeft moves a position left by units UTF-16 code units on its line,
// stopping at column zero.
func ShiftLeft(pos protocol.Position, units int) protocol.Position {
	if units >= int(pos.Character) {
		return protocol.Position{Line: pos.Line, Character: 0}
	}
	return protocol.Position{Line: pos.Line, Character: pos.Character - uint32(units)}
}

// ShiftRight moves a position right by units UTF-16 code units on its line.
func ShiftRight(pos protocol.Position, units int) protocol.Position {
	return protocol.Position{Line: pos.Line, Character: pos.Character + uint32(units)}
}

// RangeContains reports whether pos lies within r, end inclusive.
func RangeContains(r protocol.Range, pos protocol.Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}
