package server

import (
	"errors"
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/graph"
)

// showGraph starts the graph view on first use and asks the client to
// open it in a browser. Later invocations reuse the running server.
func (s *Server) showGraph(ctx *glsp.Context) error {
	if s.index == nil {
		return errors.New("indexing is disabled")
	}

	s.graphMu.Lock()
	if s.graphView == nil {
		view := graph.New()
		uri, err := view.Start("127.0.0.1:0")
		if err != nil {
			s.graphMu.Unlock()
			return err
		}
		s.graphView = view
		s.graphURI = uri
		log.Infof("graph view at %s", uri)
	}
	uri := s.graphURI
	s.graphMu.Unlock()

	s.publishGraph()

	ctx.Notify("window/showDocument", protocol.ShowDocumentParams{
		URI:      protocol.URI(uri),
		External: &protocol.True,
	})
	return nil
}

// publishGraph pushes a fresh snapshot to the graph view, when one is
// running.
func (s *Server) publishGraph() {
	s.graphMu.Lock()
	view := s.graphView
	s.graphMu.Unlock()
	if view == nil || s.index == nil {
		return
	}

	data, err := s.graphSnapshot()
	if err != nil {
		log.Errorf("failed to build graph snapshot: %s", err.Error())
		return
	}
	view.Publish(data)
}

// graphSnapshot builds the note graph from the index. Link targets
// without an indexed note become grayed-out placeholders.
func (s *Server) graphSnapshot() (graph.Data, error) {
	notes, err := s.index.Notes()
	if err != nil {
		return graph.Data{}, err
	}
	links, err := s.index.Links()
	if err != nil {
		return graph.Data{}, err
	}

	var data graph.Data
	ids := map[string]int{}
	add := func(path, title string, missing bool) int {
		if id, ok := ids[path]; ok {
			return id
		}
		label := title
		if label == "" {
			label = filepath.Base(path)
		}
		id := len(ids) + 1
		ids[path] = id
		data.Nodes = append(data.Nodes, graph.Node{ID: id, Label: label, Missing: missing})
		return id
	}

	for _, note := range notes {
		add(note.Path, note.Title, false)
	}
	for _, link := range links {
		source, ok := ids[link.SourcePath]
		if !ok {
			continue
		}
		target := add(link.TargetPath, "", true)
		data.Edges = append(data.Edges, graph.Edge{Source: source, Target: target})
	}
	return data, nil
}
