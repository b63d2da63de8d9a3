package server

import (
	stdcontext "context"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/completion"
)

func (s *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	if !s.ready() {
		return nil, nil
	}
	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	candidates := s.provider.Provide(stdcontext.Background(), doc, params.Position)
	if len(candidates) == 0 {
		return nil, nil
	}

	items := make([]protocol.CompletionItem, 0, len(candidates))
	for rank, candidate := range candidates {
		items = append(items, s.completionItem(candidate, rank))
	}
	return items, nil
}

func (s *Server) completionItem(candidate completion.Candidate, rank int) protocol.CompletionItem {
	kind := completionItemKind(candidate.Kind)
	// Keep the provider's ordering; clients sort by label otherwise.
	sortText := fmt.Sprintf("%04d", rank)

	item := protocol.CompletionItem{
		Label:    candidate.Label,
		Kind:     &kind,
		SortText: &sortText,
	}

	if s.clientInsertReplace {
		item.TextEdit = protocol.InsertReplaceEdit{
			NewText: candidate.Label,
			Insert:  candidate.InsertRange,
			Replace: candidate.ReplaceRange,
		}
	} else {
		item.TextEdit = protocol.TextEdit{
			Range:   candidate.InsertRange,
			NewText: candidate.Label,
		}
	}

	if candidate.Retrigger {
		item.Command = &protocol.Command{
			Title:   "Suggest",
			Command: "editor.action.triggerSuggest",
		}
	}

	return item
}

func completionItemKind(kind completion.CandidateKind) protocol.CompletionItemKind {
	switch kind {
	case completion.File:
		return protocol.CompletionItemKindFile
	case completion.Folder:
		return protocol.CompletionItemKindFolder
	default:
		return protocol.CompletionItemKindReference
	}
}
