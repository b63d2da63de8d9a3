package completion

import (
	"regexp"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/document"
)

// ContextKind says what kind of link target the cursor sits in.
type ContextKind int

const (
	// InlineLink is the target of [text](target).
	InlineLink ContextKind = iota
	// ReferenceLink is the key of [text][key].
	ReferenceLink
	// LinkDefinition is the target of "[key]: target". Recognized for
	// completeness; it produces no candidates.
	LinkDefinition
)

// AnchorInfo splits a link target at its "#" fragment marker.
type AnchorInfo struct {
	Before   string // target text before the "#", "" for same-document anchors
	Fragment string // partial heading slug typed after the "#"
}

// Context describes the link target around one cursor position.
type Context struct {
	Kind          ContextKind
	LinkPrefix    string            // target text between link opener and cursor
	LinkTextStart protocol.Position // where LinkPrefix begins
	LinkSuffix    string            // target text after the cursor, up to its terminator
	Anchor        *AnchorInfo       // nil when LinkPrefix has no usable "#" fragment
}

// The patterns anchor at the cursor, so only the link target immediately
// enclosing it matches, never an earlier completed link on the same line.
var (
	inlineTargetPattern    = regexp.MustCompile(`\[[^\]]*\]\(\s*([^\s()]*)$`)
	referenceKeyPattern    = regexp.MustCompile(`\[[^\]]*\]\[\s*([^\s()\[\]]*)$`)
	schemePattern          = regexp.MustCompile(`^\s*[\w\d-]+:`)
	anchorPattern          = regexp.MustCompile(`^(.*)#([\w\d-]*)$`)
	inlineSuffixPattern    = regexp.MustCompile(`^[^)\s]*`)
	referenceSuffixPattern = regexp.MustCompile(`^[^\]\s]*`)
)

// Classify parses the line around pos and reports the link context the
// cursor sits in, or nil when it is not inside a link target. Targets that
// start with a URI scheme ("http:", "mailto:") yield nil too, since they
// never name a workspace file.
func Classify(line string, pos protocol.Position) *Context {
	cut := document.ByteOffsetUTF16(line, pos.Character)
	before, after := line[:cut], line[cut:]

	if m := inlineTargetPattern.FindStringSubmatch(before); m != nil {
		prefix := m[1]
		if schemePattern.MatchString(prefix) {
			return nil
		}

		lctx := &Context{
			Kind:          InlineLink,
			LinkPrefix:    prefix,
			LinkTextStart: document.ShiftLeft(pos, document.UTF16Len(prefix)),
			LinkSuffix:    inlineSuffixPattern.FindString(after),
		}
		if am := anchorPattern.FindStringSubmatch(prefix); am != nil {
			lctx.Anchor = &AnchorInfo{Before: am[1], Fragment: am[2]}
		}
		return lctx
	}

	if m := referenceKeyPattern.FindStringSubmatch(before); m != nil {
		prefix := m[1]
		return &Context{
			Kind:          ReferenceLink,
			LinkPrefix:    prefix,
			LinkTextStart: document.ShiftLeft(pos, document.UTF16Len(prefix)),
			LinkSuffix:    referenceSuffixPattern.FindString(after),
		}
	}

	return nil
}
