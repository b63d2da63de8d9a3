package server

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/completion"
	"markpath/internal/config"
	"markpath/internal/index"
	"markpath/internal/resolver"
	"markpath/internal/workspace"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	// Settings
	cfg, err := config.Merge(s.Config(), params.InitializationOptions)
	if err != nil {
		return nil, err
	}
	s.setConfig(cfg)
	log.Infof("configuration: %+v", cfg)

	s.clientInsertReplace = clientSupportsInsertReplace(params.Capabilities)

	// Root
	root := ""
	if params.RootURI != nil {
		root = workspace.URIPath(*params.RootURI)
	}

	// Services
	s.workspace = workspace.New(workspace.Options{
		Extensions: cfg.FileExtensions,
		Documents:  s.documents,
	})
	if root != "" {
		s.workspace.AddRoot(root)
	}
	s.resolver = resolver.New(s.workspace)
	s.provider = completion.NewProvider(s.workspace, s.resolver, s)

	// Index, stored under the state dir and keyed by the root path.
	if cfg.Index && root != "" {
		if ix, err := openIndexFor(root); err != nil {
			log.Errorf("failed to open index: %s", err.Error())
		} else {
			s.index = ix
		}
	}

	if s.index != nil {
		go s.scanWorkspace(root)
		s.startWatcher(root)
	}

	// Capabilities
	syncKind := protocol.TextDocumentSyncKindIncremental

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.True},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "/", "#"},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{"markpath.reindex", "markpath.graph"},
	}

	version := s.version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "markpath",
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Info("client initialized")
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			log.Errorf("failed to close watcher: %s", err.Error())
		}
		s.watcher = nil
	}
	s.graphMu.Lock()
	if s.graphView != nil {
		if err := s.graphView.Close(); err != nil {
			log.Errorf("failed to close graph view: %s", err.Error())
		}
		s.graphView = nil
		s.graphURI = ""
	}
	s.graphMu.Unlock()
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			return err
		}
		s.index = nil
	}
	return nil
}

func (s *Server) setTrace(
	context *glsp.Context,
	params *protocol.SetTraceParams,
) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// openIndexFor opens the persistent index for a workspace root, keeping
// one database per root under the XDG state dir.
func openIndexFor(root string) (*index.Index, error) {
	stateDir, err := getXDGStateHome("markpath")
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256([]byte(root))
	dir := filepath.Join(stateDir, hex.EncodeToString(hash[:8]))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return index.Open(filepath.Join(dir, "index.db"))
}

func clientSupportsInsertReplace(capabilities protocol.ClientCapabilities) bool {
	if capabilities.TextDocument == nil ||
		capabilities.TextDocument.Completion == nil ||
		capabilities.TextDocument.Completion.CompletionItem == nil ||
		capabilities.TextDocument.Completion.CompletionItem.InsertReplaceSupport == nil {
		return false
	}
	return *capabilities.TextDocument.Completion.CompletionItem.InsertReplaceSupport
}
