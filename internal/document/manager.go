package document

import (
	"fmt"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Manager tracks the documents the client has opened.
type Manager struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentUri]*Document
}

// NewManager creates an initialized Manager.
func NewManager() *Manager {
	return &Manager{docs: make(map[protocol.DocumentUri]*Document)}
}

// Open stores a fresh snapshot for a URI and returns it.
func (m *Manager) Open(uri protocol.DocumentUri, path string, version int32, content string) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := New(uri, path, version, content)
	m.docs[uri] = doc
	return doc
}

// Get returns the current snapshot for a URI.
func (m *Manager) Get(uri protocol.DocumentUri) (*Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[uri]
	return doc, ok
}

// Lookup finds an open document by its filesystem path.
func (m *Manager) Lookup(path string) (*Document, bool) {
	if path == "" {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.docs {
		if doc.Path == path {
			return doc, true
		}
	}
	return nil, false
}

// Update replaces the full content for a URI.
func (m *Manager) Update(uri protocol.DocumentUri, version int32, content string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.docs[uri]
	if !ok {
		return nil, fmt.Errorf("document not open: %s", uri)
	}
	doc := New(uri, old.Path, version, content)
	m.docs[uri] = doc
	return doc, nil
}

// ApplyChanges applies didChange content events in order and returns the
// resulting snapshot.
func (m *Manager) ApplyChanges(uri protocol.DocumentUri, version int32, changes []any) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[uri]
	if !ok {
		return nil, fmt.Errorf("document not open: %s", uri)
	}
	for _, raw := range changes {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				doc = New(doc.URI, doc.Path, version, change.Text)
				continue
			}
			doc = doc.ApplyChange(*change.Range, change.Text, version)
		case protocol.TextDocumentContentChangeEventWhole:
			doc = New(doc.URI, doc.Path, version, change.Text)
		default:
			return nil, fmt.Errorf("unexpected change event type %T", raw)
		}
	}
	m.docs[uri] = doc
	return doc, nil
}

// Close drops the snapshot for a URI.
func (m *Manager) Close(uri protocol.DocumentUri) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, uri)
}
