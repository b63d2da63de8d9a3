package server

import (
	stdcontext "context"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/document"
	"markpath/internal/markdown"
	"markpath/internal/workspace"
)

func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	if !s.ready() {
		return nil, nil
	}
	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	content := []byte(doc.Content())
	link := linkAt(content, params.Position)
	if link == nil {
		return nil, nil
	}

	target := link.Target
	if link.Kind == markdown.LinkReference {
		resolved, ok := markdown.DefinitionMap(content)[strings.ToLower(target)]
		if !ok {
			return nil, nil
		}
		target = resolved
	}
	if markdown.IsExternal(target) {
		return nil, nil
	}

	pathPart, fragment := splitFragment(target)
	targetPath := doc.Path
	if pathPart != "" {
		resolved, ok := s.resolver.Resolve(doc.Path, pathPart)
		if !ok {
			return nil, nil
		}
		if filepath.Ext(resolved) == "" {
			resolved += s.Config().DefaultExtension
		}
		targetPath = resolved
	}

	var targetRange protocol.Range
	if fragment != "" {
		if note, ok := s.workspace.LoadMarkdownDocument(stdcontext.Background(), targetPath); ok {
			for _, heading := range markdown.TOC([]byte(note.Content())) {
				if heading.Slug == fragment {
					targetRange = heading.Range
					break
				}
			}
		}
	} else if _, err := os.Stat(targetPath); err != nil {
		return nil, nil
	}

	return protocol.Location{
		URI:   workspace.FileURI(targetPath),
		Range: targetRange,
	}, nil
}

func (s *Server) textDocumentReferences(
	context *glsp.Context,
	params *protocol.ReferenceParams,
) ([]protocol.Location, error) {
	if s.index == nil {
		return nil, nil
	}
	path := workspace.URIPath(params.TextDocument.URI)
	if path == "" {
		return nil, nil
	}

	backlinks, err := s.index.Backlinks(path)
	if err != nil {
		return nil, err
	}

	var locations []protocol.Location
	for _, link := range backlinks {
		locations = append(locations, protocol.Location{
			URI:   workspace.FileURI(link.SourcePath),
			Range: link.Range,
		})
	}
	return locations, nil
}

func (s *Server) textDocumentDocumentSymbol(
	context *glsp.Context,
	params *protocol.DocumentSymbolParams,
) (any, error) {
	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	symbols, _ := headingSymbols(markdown.TOC([]byte(doc.Content())), 0, 1)
	return symbols, nil
}

// linkAt returns the link whose range covers pos, if any.
func linkAt(content []byte, pos protocol.Position) *markdown.Link {
	for _, link := range markdown.Links(content) {
		if document.RangeContains(link.Range, pos) {
			found := link
			return &found
		}
	}
	return nil
}

// splitFragment separates a link target into its path and "#fragment"
// parts.
func splitFragment(target string) (path, fragment string) {
	if i := strings.LastIndex(target, "#"); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, ""
}

// headingSymbols consumes headings from position i whose level is at
// least level, nesting deeper headings under the one before them. It
// returns the symbols plus the index of the first unconsumed heading.
func headingSymbols(headings []markdown.Heading, i, level int) ([]protocol.DocumentSymbol, int) {
	var symbols []protocol.DocumentSymbol
	for i < len(headings) {
		heading := headings[i]
		if heading.Level < level {
			break
		}

		symbol := protocol.DocumentSymbol{
			Name:           heading.Title,
			Kind:           protocol.SymbolKindString,
			Range:          heading.Range,
			SelectionRange: heading.Range,
		}
		symbol.Children, i = headingSymbols(headings, i+1, heading.Level+1)
		symbols = append(symbols, symbol)
	}
	return symbols, i
}
