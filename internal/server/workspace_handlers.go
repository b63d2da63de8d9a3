package server

import (
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/config"
	"markpath/internal/workspace"
)

func (s *Server) workspaceSymbol(
	context *glsp.Context,
	params *protocol.WorkspaceSymbolParams,
) ([]protocol.SymbolInformation, error) {
	if s.index == nil {
		return nil, nil
	}
	maxResults := 128
	query := strings.ToLower(params.Query)

	notes, err := s.index.Notes()
	if err != nil {
		return nil, err
	}

	var symbols []protocol.SymbolInformation
	for _, note := range notes {
		name := note.Title
		if name == "" {
			name = filepath.Base(note.Path)
		}
		if !isSubsequence(query, strings.ToLower(name)) &&
			!isSubsequence(query, strings.ToLower(note.Path)) {
			continue
		}

		symbols = append(symbols, protocol.SymbolInformation{
			Name:     name,
			Kind:     protocol.SymbolKindFile,
			Location: protocol.Location{URI: workspace.FileURI(note.Path)},
		})
		if len(symbols) == maxResults {
			break
		}
	}
	return symbols, nil
}

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	switch params.Command {
	case "markpath.reindex":
		return nil, s.reindex()
	case "markpath.graph":
		return nil, s.showGraph(context)
	}
	return nil, nil
}

func (s *Server) workspaceDidChangeConfiguration(
	context *glsp.Context,
	params *protocol.DidChangeConfigurationParams,
) error {
	settings := params.Settings
	// Clients commonly nest our settings under a section name.
	if m, ok := settings.(map[string]any); ok {
		if section, ok := m["markpath"]; ok {
			settings = section
		}
	}

	cfg, err := config.Merge(s.Config(), settings)
	if err != nil {
		return err
	}
	s.setConfig(cfg)
	log.Infof("configuration updated: %+v", cfg)
	return nil
}
