// Package server wires the completion engine, the document store, and the
// workspace index into an LSP server speaking protocol 3.16 over stdio.
package server

import (
	"sync"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"markpath/internal/completion"
	"markpath/internal/config"
	"markpath/internal/document"
	"markpath/internal/graph"
	"markpath/internal/index"
	"markpath/internal/resolver"
	"markpath/internal/workspace"
)

var log = commonlog.GetLogger("markpath.server")

type Server struct {
	handler   *protocol.Handler
	documents *document.Manager

	// Set during initialize, once the root and settings are known.
	workspace *workspace.Workspace
	resolver  *resolver.Resolver
	provider  *completion.Provider
	index     *index.Index
	watcher   *workspace.Watcher

	configMu sync.RWMutex
	config   config.Config

	// Started on the first workspace/executeCommand "markpath.graph".
	graphMu   sync.Mutex
	graphView *graph.View
	graphURI  string

	clientInsertReplace bool
	version             string
}

func NewServer(cfg config.Config, version string) *server.Server {
	ls := &Server{
		documents: document.NewManager(),
		config:    cfg,
		version:   version,
	}
	ls.handler = &protocol.Handler{
		Initialize:                      ls.initialize,
		Initialized:                     ls.initialized,
		Shutdown:                        ls.shutdown,
		SetTrace:                        ls.setTrace,
		TextDocumentDidOpen:             ls.textDocumentDidOpen,
		TextDocumentDidChange:           ls.textDocumentDidChange,
		TextDocumentDidSave:             ls.textDocumentDidSave,
		TextDocumentDidClose:            ls.textDocumentDidClose,
		TextDocumentCompletion:          ls.textDocumentCompletion,
		TextDocumentDefinition:          ls.textDocumentDefinition,
		TextDocumentReferences:          ls.textDocumentReferences,
		TextDocumentDocumentSymbol:      ls.textDocumentDocumentSymbol,
		WorkspaceSymbol:                 ls.workspaceSymbol,
		WorkspaceExecuteCommand:         ls.workspaceExecuteCommand,
		WorkspaceDidChangeConfiguration: ls.workspaceDidChangeConfiguration,
	}

	return server.NewServer(ls.handler, "markpath", false)
}

func (s *Server) Config() config.Config {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

func (s *Server) setConfig(cfg config.Config) {
	s.configMu.Lock()
	s.config = cfg
	s.configMu.Unlock()
}

// PathSuggestionsEnabled implements completion.Settings.
func (s *Server) PathSuggestionsEnabled(protocol.DocumentUri) bool {
	return s.Config().PathSuggestions
}

// ready reports whether initialize has run.
func (s *Server) ready() bool {
	return s.workspace != nil
}
