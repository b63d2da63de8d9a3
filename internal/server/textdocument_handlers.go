package server

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/workspace"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	doc := s.documents.Open(
		uri,
		workspace.URIPath(uri),
		params.TextDocument.Version,
		params.TextDocument.Text,
	)
	s.indexDocument(doc)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	_, err := s.documents.ApplyChanges(
		params.TextDocument.URI,
		params.TextDocument.Version,
		params.ContentChanges,
	)
	return err
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	doc, ok := s.documents.Get(uri)
	if !ok {
		return fmt.Errorf("document not open: %s", uri)
	}

	// With IncludeText the client sends the saved content; trust it over
	// our replayed edits.
	if params.Text != nil && *params.Text != doc.Content() {
		updated, err := s.documents.Update(uri, doc.Version, *params.Text)
		if err != nil {
			return err
		}
		doc = updated
	}

	s.indexDocument(doc)
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.documents.Close(params.TextDocument.URI)
	return nil
}
