package server

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"markpath/internal/document"
	"markpath/internal/index"
	"markpath/internal/markdown"
	"markpath/internal/scanner"
	"markpath/internal/workspace"
)

// scanWorkspace walks root and brings the index up to date: new and
// modified files are re-read, entries for vanished files are dropped.
func (s *Server) scanWorkspace(root string) {
	start := time.Now()
	count := 0
	seen := map[string]struct{}{}

	skip := func(path string, info fs.FileInfo) bool {
		if !s.workspace.IsMarkdownFile(path) {
			return true
		}
		seen[path] = struct{}{}

		indexed, err := s.index.LastModified(path)
		if err != nil {
			return false
		}
		return indexed >= info.ModTime().Unix()
	}
	callback := func(path string, content []byte) {
		s.indexFile(path, content)
		count++
	}

	scanner.Scan(context.Background(), root, skip, callback)

	// Prune index entries whose files are gone.
	paths, err := s.index.Paths()
	if err != nil {
		log.Errorf("failed to list index: %s", err.Error())
		return
	}
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		if !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if err := s.index.DeleteNote(path); err != nil {
			log.Errorf("failed to prune %s: %s", path, err.Error())
		}
	}

	s.publishGraph()
	log.Infof("indexed %d files under %s in %s", count, root, time.Since(start))
}

func (s *Server) startWatcher(root string) {
	watcher, err := workspace.Watch(root, s.handleFileEvent)
	if err != nil {
		log.Errorf("failed to watch %s: %s", root, err.Error())
		return
	}
	s.watcher = watcher
}

// handleFileEvent keeps the index in step with filesystem changes made
// outside the editor. Events for open documents are ignored, didSave
// already covers those.
func (s *Server) handleFileEvent(event workspace.Event) {
	if !s.workspace.IsMarkdownFile(event.Path) {
		return
	}

	if event.Removed {
		err := s.index.DeleteNote(event.Path)
		if err != nil && !errors.Is(err, index.ErrNotFound) {
			log.Errorf("failed to remove %s from index: %s", event.Path, err.Error())
		}
		s.publishGraph()
		return
	}

	if _, ok := s.documents.Lookup(event.Path); ok {
		return
	}
	content, err := os.ReadFile(event.Path)
	if err != nil {
		return
	}
	s.indexFile(event.Path, content)
	s.publishGraph()
}

// indexDocument refreshes the index entry for an open document.
func (s *Server) indexDocument(doc *document.Document) {
	if s.index == nil || doc.Path == "" || !s.workspace.IsMarkdownFile(doc.Path) {
		return
	}
	s.indexFile(doc.Path, []byte(doc.Content()))
	s.publishGraph()
}

func (s *Server) indexFile(path string, content []byte) {
	note := index.Note{
		Path:         path,
		Title:        markdown.Title(content),
		LastModified: time.Now().Unix(),
	}
	if err := s.index.UpsertNote(note, s.collectLinks(path, content)); err != nil {
		log.Errorf("failed to index %s: %s", path, err.Error())
	}
}

// collectLinks turns the document's workspace-internal hyperlinks into
// index rows. Reference links go through the definition table; external
// and unresolvable targets are dropped.
func (s *Server) collectLinks(path string, content []byte) []index.Link {
	definitions := markdown.DefinitionMap(content)

	var links []index.Link
	for _, link := range markdown.Links(content) {
		target := link.Target
		if link.Kind == markdown.LinkReference {
			resolved, ok := definitions[strings.ToLower(target)]
			if !ok {
				continue
			}
			target = resolved
		}
		if markdown.IsExternal(target) {
			continue
		}

		pathPart, fragment := splitFragment(target)
		if pathPart == "" {
			continue
		}
		resolved, ok := s.resolver.Resolve(path, pathPart)
		if !ok {
			continue
		}
		if filepath.Ext(resolved) == "" {
			resolved += s.Config().DefaultExtension
		}

		links = append(links, index.Link{
			SourcePath: path,
			TargetPath: resolved,
			Fragment:   fragment,
			Range:      link.Range,
		})
	}
	return links
}

// reindex drops the index and rebuilds it from a fresh scan.
func (s *Server) reindex() error {
	if s.index == nil {
		return nil
	}
	if err := s.index.Clear(); err != nil {
		return err
	}

	go func() {
		for _, root := range s.workspace.Roots() {
			s.scanWorkspace(root)
		}
	}()
	return nil
}
