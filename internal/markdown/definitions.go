package markdown

import (
	"regexp"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Definition is one [key]: target declaration.
type Definition struct {
	Key    string
	Target string
	Range  protocol.Range // the declaring line
}

var definitionPattern = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:\s*(\S+)`)

// Definitions returns the link definitions declared in source, in document
// order. Repeated keys keep their first declaration; lines inside fenced
// code blocks are ignored.
func Definitions(source []byte) []Definition {
	ix := newLineIndex(source)
	seen := make(map[string]struct{})

	var defs []Definition
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

		m := definitionPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		defs = append(defs, Definition{
			Key:    m[1],
			Target: m[2],
			Range:  ix.lineRange(uint32(line)),
		})
	}
	return defs
}

// DefinitionMap returns the definitions keyed for case-insensitive lookup,
// first declaration winning.
func DefinitionMap(source []byte) map[string]string {
	m := make(map[string]string)
	for _, def := range Definitions(source) {
		key := strings.ToLower(def.Key)
		if _, ok := m[key]; !ok {
			m[key] = def.Target
		}
	}
	return m
}
