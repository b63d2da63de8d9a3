// Package workspace models the filesystem side of the server: registered
// roots, directory listings, and Markdown documents that are not open in
// the editor.
package workspace

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/document"
)

// Entry is a directory listing item.
type Entry struct {
	Name  string
	IsDir bool
}

type Workspace struct {
	mu         sync.RWMutex
	roots      []string
	extensions []string          // recognized Markdown extensions, lowercase with dot
	documents  *document.Manager // open-document overlay, may be nil
}

type Options struct {
	Extensions []string
	Documents  *document.Manager
}

func New(opts Options) *Workspace {
	extensions := make([]string, 0, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions = append(extensions, strings.ToLower(ext))
	}
	if len(extensions) == 0 {
		extensions = []string{".md"}
	}
	return &Workspace{extensions: extensions, documents: opts.Documents}
}

// AddRoot registers a workspace root.
func (w *Workspace) AddRoot(root string) {
	if root == "" {
		return
	}
	root = filepath.Clean(root)

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, r := range w.roots {
		if r == root {
			return
		}
	}
	w.roots = append(w.roots, root)
}

func (w *Workspace) Roots() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.roots...)
}

// RootFor returns the innermost registered root containing path.
func (w *Workspace) RootFor(path string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	best := ""
	for _, root := range w.roots {
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best, best != ""
}

// IsMarkdownFile reports whether path carries a recognized extension.
func (w *Workspace) IsMarkdownFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadDirectory lists dir, honoring ctx cancellation.
func (w *Workspace) ReadDirectory(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, e := range dirEntries {
		entries = append(entries, Entry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return entries, nil
}

// LoadMarkdownDocument returns the document at path: the open editor copy
// when there is one, otherwise the file content from disk. It returns false
// for unrecognized extensions and unreadable files.
func (w *Workspace) LoadMarkdownDocument(ctx context.Context, path string) (*document.Document, bool) {
	if !w.IsMarkdownFile(path) {
		return nil, false
	}
	if w.documents != nil {
		if doc, ok := w.documents.Lookup(path); ok {
			return doc, true
		}
	}
	if ctx.Err() != nil {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return document.New(FileURI(path), path, 0, string(content)), true
}

// FileURI builds a file:// URI for an absolute path.
func FileURI(path string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return protocol.DocumentUri(u.String())
}

// URIPath extracts the filesystem path of a file:// URI. Non-file URIs
// yield "".
func URIPath(uri protocol.DocumentUri) string {
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return filepath.FromSlash(u.Path)
}
