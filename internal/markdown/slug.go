package markdown

import (
	"strconv"
	"strings"
	"unicode"
)

// slugger produces GitHub-compatible heading anchors, suffixing repeated
// titles with -1, -2 and so on.
type slugger struct {
	seen map[string]int
}

func newSlugger() *slugger {
	return &slugger{seen: make(map[string]int)}
}

func (s *slugger) slug(title string) string {
	base := slugBase(title)
	count := s.seen[base]
	s.seen[base] = count + 1
	if count == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(count)
}

// slugBase lowercases the title, keeps letters, digits, hyphens and
// underscores, turns whitespace into hyphens and drops the rest.
func slugBase(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	prevHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_':
			b.WriteRune(r)
			prevHyphen = r == '-'
		case unicode.IsSpace(r):
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	out := strings.Trim(b.String(), "-")
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return out
}
