// Package completion turns a cursor position inside a Markdown link into
// completion candidates: heading anchors, reference-definition keys, or
// filesystem entries, each with exact insert and replace ranges.
package completion

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CandidateKind tells the client how to render a candidate.
type CandidateKind int

const (
	HeadingReference CandidateKind = iota
	DefinitionReference
	File
	Folder
)

// Candidate is one proposed completion. InsertRange covers the text the
// label replaces on plain acceptance; ReplaceRange additionally swallows
// the suffix text that already follows the cursor, so accepting over it
// never duplicates what was there.
type Candidate struct {
	Label        string
	Kind         CandidateKind
	InsertRange  protocol.Range
	ReplaceRange protocol.Range
	Retrigger    bool // reopen the completion list after acceptance
}
