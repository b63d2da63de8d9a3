package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Heading is one table-of-contents entry.
type Heading struct {
	Level int
	Title string
	Slug  string
	Range protocol.Range
}

// TOC returns the document's headings in order. Slugs follow the GitHub
// anchor scheme and repeated titles get numeric suffixes.
func TOC(source []byte) []Heading {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	index := newLineIndex(source)
	slugs := newSlugger()

	var toc []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title := string(heading.Text(source))
		entry := Heading{Level: heading.Level, Title: title, Slug: slugs.slug(title)}
		if lines := heading.Lines(); lines.Len() > 0 {
			entry.Range = index.lineRange(index.lineAt(lines.At(0).Start))
		}
		toc = append(toc, entry)
		return ast.WalkContinue, nil
	})
	return toc
}

// Title returns the text of the document's first titled heading, or "".
func Title(source []byte) string {
	for _, h := range TOC(source) {
		if h.Title != "" {
			return h.Title
		}
	}
	return ""
}
