package completion

import (
	"context"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/document"
	"markpath/internal/markdown"
	"markpath/internal/resolver"
	"markpath/internal/workspace"
)

// Settings exposes the per-document configuration the provider honors.
type Settings interface {
	// PathSuggestionsEnabled gates the whole provider: when false,
	// Provide returns nothing for that document.
	PathSuggestionsEnabled(uri protocol.DocumentUri) bool
}

// Provider produces completion candidates for link targets. Every failure
// along the way, from unresolvable paths to unreadable directories,
// degrades to an empty contribution rather than an error: completion must
// never disrupt editing.
type Provider struct {
	workspace *workspace.Workspace
	resolver  *resolver.Resolver
	settings  Settings
}

func NewProvider(ws *workspace.Workspace, res *resolver.Resolver, settings Settings) *Provider {
	return &Provider{workspace: ws, resolver: res, settings: settings}
}

// Provide returns the candidates for the given cursor position, in
// strategy order: heading anchors, then filesystem entries or cross-file
// anchors. A nil return means the cursor is not in a completable spot.
func (p *Provider) Provide(ctx context.Context, doc *document.Document, pos protocol.Position) []Candidate {
	if p.settings != nil && !p.settings.PathSuggestionsEnabled(doc.URI) {
		return nil
	}

	lctx := Classify(doc.Line(pos.Line), pos)
	if lctx == nil {
		return nil
	}

	switch lctx.Kind {
	case ReferenceLink:
		return p.definitionCandidates(doc, lctx, pos)
	case LinkDefinition:
		return nil
	}

	var candidates []Candidate
	anchorInCurrentDoc := lctx.Anchor != nil && lctx.Anchor.Before == ""

	if lctx.LinkPrefix == "" || anchorInCurrentDoc {
		insert := protocol.Range{Start: lctx.LinkTextStart, End: pos}
		candidates = append(candidates, headingCandidates(doc, insert, lctx.LinkSuffix)...)
	}
	if anchorInCurrentDoc {
		// A target that is purely "#fragment" cannot also be a path.
		return candidates
	}

	if lctx.Anchor != nil {
		candidates = append(candidates, p.crossDocumentHeadings(ctx, doc, lctx, pos)...)
	} else {
		candidates = append(candidates, p.pathCandidates(ctx, doc, lctx, pos)...)
	}
	return candidates
}

// headingCandidates suggests "#slug" for every heading of doc.
func headingCandidates(doc *document.Document, insert protocol.Range, suffix string) []Candidate {
	replace := extendRange(insert, suffix)

	var candidates []Candidate
	for _, heading := range markdown.TOC([]byte(doc.Content())) {
		candidates = append(candidates, Candidate{
			Label:        "#" + heading.Slug,
			Kind:         HeadingReference,
			InsertRange:  insert,
			ReplaceRange: replace,
		})
	}
	return candidates
}

// crossDocumentHeadings suggests anchors of the document the typed path
// part points at, replacing only the "#fragment" portion of the target.
func (p *Provider) crossDocumentHeadings(ctx context.Context, doc *document.Document, lctx *Context, pos protocol.Position) []Candidate {
	target, ok := p.resolver.Resolve(doc.Path, lctx.Anchor.Before)
	if !ok {
		return nil
	}
	note, ok := p.workspace.LoadMarkdownDocument(ctx, target)
	if !ok {
		return nil
	}

	// The "+1" covers the "#" itself.
	start := document.ShiftLeft(pos, document.UTF16Len(lctx.Anchor.Fragment)+1)
	insert := protocol.Range{Start: start, End: pos}
	return headingCandidates(note, insert, lctx.LinkSuffix)
}

// definitionCandidates suggests every reference-definition key declared in
// doc, in declaration order. Keys are not filtered against the typed
// prefix; presentation-time filtering is the client's business.
func (p *Provider) definitionCandidates(doc *document.Document, lctx *Context, pos protocol.Position) []Candidate {
	insert := protocol.Range{Start: lctx.LinkTextStart, End: pos}
	replace := extendRange(insert, lctx.LinkSuffix)

	var candidates []Candidate
	for _, def := range markdown.Definitions([]byte(doc.Content())) {
		candidates = append(candidates, Candidate{
			Label:        def.Key,
			Kind:         DefinitionReference,
			InsertRange:  insert,
			ReplaceRange: replace,
		})
	}
	return candidates
}

// pathCandidates lists the directory the typed prefix points into and
// suggests its visible entries, completing only the final path segment.
func (p *Provider) pathCandidates(ctx context.Context, doc *document.Document, lctx *Context, pos protocol.Position) []Candidate {
	prefix := lctx.LinkPrefix
	dirPart := ""
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		dirPart = prefix[:i+1]
	}

	ref := dirPart
	if ref == "" {
		ref = "."
	}
	parent, ok := p.resolver.Resolve(doc.Path, ref)
	if !ok {
		return nil
	}

	segmentStart := document.ShiftLeft(pos, document.UTF16Len(prefix)-document.UTF16Len(dirPart))
	insert := protocol.Range{Start: segmentStart, End: pos}
	replace := extendRange(insert, lctx.LinkSuffix)

	entries, err := p.workspace.ReadDirectory(ctx, parent)
	if err != nil {
		return nil
	}

	var candidates []Candidate
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name, ".") {
			continue
		}

		candidate := Candidate{
			Label:        entry.Name,
			Kind:         File,
			InsertRange:  insert,
			ReplaceRange: replace,
		}
		if entry.IsDir {
			candidate.Label += "/"
			candidate.Kind = Folder
			candidate.Retrigger = true
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

// extendRange stretches the range end rightward over the typed suffix.
func extendRange(insert protocol.Range, suffix string) protocol.Range {
	return protocol.Range{
		Start: insert.Start,
		End:   document.ShiftRight(insert.End, document.UTF16Len(suffix)),
	}
}
