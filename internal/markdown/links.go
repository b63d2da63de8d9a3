package markdown

import (
	"regexp"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/document"
)

// LinkKind distinguishes how a hyperlink names its target.
type LinkKind int

const (
	LinkInline    LinkKind = iota // [text](target)
	LinkReference                 // [text][key]
)

// Link is a hyperlink occurrence with its span in the source.
type Link struct {
	Kind   LinkKind
	Target string // raw destination for inline links, key for reference links
	Range  protocol.Range
}

var (
	inlineLinkPattern    = regexp.MustCompile(`\[[^\]]*\]\(\s*([^\s)]+)\s*\)`)
	referenceLinkPattern = regexp.MustCompile(`\[[^\]]*\]\[([^\[\]\s]+)\]`)
	targetSchemePattern  = regexp.MustCompile(`^[\w\d-]+:`)
)

// IsExternal reports whether a link target leaves the workspace, i.e.
// carries a URI scheme like "http:" or "mailto:".
func IsExternal(target string) bool {
	return targetSchemePattern.MatchString(target)
}

// Links returns the hyperlinks in source with their line spans. Fenced code
// blocks and inline code are skipped; links wrapping across lines are not
// detected.
func Links(source []byte) []Link {
	ix := newLineIndex(source)

	var links []Link
	fence := ""
	for line := 0; line < ix.lineCount(); line++ {
		text := ix.lineText(uint32(line))
		trimmed := strings.TrimLeft(text, " \t")
		if fence == "" && (strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")) {
			fence = trimmed[:3]
			continue
		}
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}

		masked := maskInlineCode(text)
		links = appendMatches(links, uint32(line), text, masked, inlineLinkPattern, LinkInline)
		links = appendMatches(links, uint32(line), text, masked, referenceLinkPattern, LinkReference)
	}
	return links
}

func appendMatches(links []Link, line uint32, text, masked string, pattern *regexp.Regexp, kind LinkKind) []Link {
	for _, m := range pattern.FindAllStringSubmatchIndex(masked, -1) {
		links = append(links, Link{
			Kind:   kind,
			Target: text[m[2]:m[3]],
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: uint32(document.UTF16Len(text[:m[0]]))},
				End:   protocol.Position{Line: line, Character: uint32(document.UTF16Len(text[:m[1]]))},
			},
		})
	}
	return links
}

// maskInlineCode blanks `code` spans byte for byte so that match offsets
// keep lining up with the original text. An unterminated span is left as
// literal text.
func maskInlineCode(line string) string {
	b := []byte(line)
	inCode := false
	for i := 0; i < len(b); i++ {
		if b[i] == '`' {
			inCode = !inCode
			b[i] = ' '
			continue
		}
		if inCode {
			b[i] = ' '
		}
	}
	if inCode {
		return line
	}
	return string(b)
}
