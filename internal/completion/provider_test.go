package completion_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"markpath/internal/completion"
	"markpath/internal/document"
	"markpath/internal/resolver"
	"markpath/internal/workspace"
)

type enabledSettings struct{}

func (enabledSettings) PathSuggestionsEnabled(protocol.DocumentUri) bool { return true }

type disabledSettings struct{}

func (disabledSettings) PathSuggestionsEnabled(protocol.DocumentUri) bool { return false }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// setupProvider builds a workspace with one sibling note and a
// subdirectory holding a file, a hidden file, and a nested directory.
func setupProvider(t *testing.T) (*completion.Provider, string) {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "other.md"), "# Setup\n\n## Usage\n")
	writeFile(t, filepath.Join(root, "sub", "a.md"), "alpha\n")
	writeFile(t, filepath.Join(root, "sub", ".hidden"), "")
	if err := os.MkdirAll(filepath.Join(root, "sub", "img"), 0o755); err != nil {
		t.Fatal(err)
	}

	ws := workspace.New(workspace.Options{Extensions: []string{".md"}})
	ws.AddRoot(root)
	return completion.NewProvider(ws, resolver.New(ws), enabledSettings{}), root
}

func docAt(root, name, content string) *document.Document {
	path := filepath.Join(root, name)
	return document.New(workspace.FileURI(path), path, 0, content)
}

func labels(candidates []completion.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Label)
	}
	return out
}

func TestProvidePathSegment(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "[x](sub/)")

	candidates := provider.Provide(context.Background(), doc, at(0, 8))

	require.Len(t, candidates, 2, "hidden entries must be filtered")
	assert.Equal(t, "a.md", candidates[0].Label)
	assert.Equal(t, completion.File, candidates[0].Kind)
	assert.False(t, candidates[0].Retrigger)
	assert.Equal(t, "img/", candidates[1].Label)
	assert.Equal(t, completion.Folder, candidates[1].Kind)
	assert.True(t, candidates[1].Retrigger, "folders reopen the completion list")

	segment := protocol.Range{Start: at(0, 8), End: at(0, 8)}
	assert.Equal(t, segment, candidates[0].InsertRange)
	assert.Equal(t, segment, candidates[0].ReplaceRange)
}

func TestProvidePathSegmentWithSuffix(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "[x](sub/a.md)")

	candidates := provider.Provide(context.Background(), doc, at(0, 8))

	require.NotEmpty(t, candidates)
	assert.Equal(t, protocol.Range{Start: at(0, 8), End: at(0, 8)}, candidates[0].InsertRange)
	assert.Equal(t, protocol.Range{Start: at(0, 8), End: at(0, 12)}, candidates[0].ReplaceRange,
		"replace range must swallow the trailing segment text")
}

func TestProvideWorkspaceAbsolutePath(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "[x](/sub/)")

	candidates := provider.Provide(context.Background(), doc, at(0, 9))
	assert.Equal(t, []string{"a.md", "img/"}, labels(candidates))
}

func TestProvideHeadingsInCurrentDocument(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "# Intro\n\n# Intro\n\nsee [x](#")

	candidates := provider.Provide(context.Background(), doc, at(4, 9))

	assert.Equal(t, []string{"#intro", "#intro-1"}, labels(candidates))
	for _, c := range candidates {
		assert.Equal(t, completion.HeadingReference, c.Kind)
		assert.Equal(t, protocol.Range{Start: at(4, 8), End: at(4, 9)}, c.InsertRange)
	}
}

func TestProvideEmptyPrefixMixesHeadingsAndPaths(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "# Intro\n\n[x](")

	candidates := provider.Provide(context.Background(), doc, at(2, 4))

	assert.Equal(t, []string{"#intro", "other.md", "sub/"}, labels(candidates))
}

func TestProvideCrossDocumentHeadings(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "[x](other.md#")

	candidates := provider.Provide(context.Background(), doc, at(0, 13))

	assert.Equal(t, []string{"#setup", "#usage"}, labels(candidates))
	for _, c := range candidates {
		// Only the "#fragment" part of the target is replaced.
		assert.Equal(t, protocol.Range{Start: at(0, 12), End: at(0, 13)}, c.InsertRange)
	}
}

func TestProvideCrossDocumentFailuresAreSilent(t *testing.T) {
	provider, root := setupProvider(t)

	tests := []struct {
		name    string
		content string
		pos     protocol.Position
	}{
		{"missing file", "[x](missing.md#", at(0, 15)},
		{"not markdown", "[x](other.txt#", at(0, 14)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docAt(root, "doc.md", tt.content)
			assert.Empty(t, provider.Provide(context.Background(), doc, tt.pos))
		})
	}
}

func TestProvideReferenceKeys(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "[x][\n\n[foo]: /a.md\n[bar]: /b.md\n")

	candidates := provider.Provide(context.Background(), doc, at(0, 4))

	assert.Equal(t, []string{"foo", "bar"}, labels(candidates), "declaration order is preserved")
	for _, c := range candidates {
		assert.Equal(t, completion.DefinitionReference, c.Kind)
		assert.Equal(t, protocol.Range{Start: at(0, 4), End: at(0, 4)}, c.InsertRange)
	}
}

func TestProvideDisabled(t *testing.T) {
	_, root := setupProvider(t)
	ws := workspace.New(workspace.Options{Extensions: []string{".md"}})
	ws.AddRoot(root)
	provider := completion.NewProvider(ws, resolver.New(ws), disabledSettings{})

	doc := docAt(root, "doc.md", "[x](sub/)")
	assert.Empty(t, provider.Provide(context.Background(), doc, at(0, 8)))
}

func TestProvideSchemeTarget(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "[x](http://e")

	assert.Empty(t, provider.Provide(context.Background(), doc, at(0, 12)))
}

func TestProvideIdempotent(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "[x](sub/)")

	first := provider.Provide(context.Background(), doc, at(0, 8))
	second := provider.Provide(context.Background(), doc, at(0, 8))
	assert.Equal(t, first, second)
}

func TestProvideCancelled(t *testing.T) {
	provider, root := setupProvider(t)
	doc := docAt(root, "doc.md", "[x](sub/)")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, provider.Provide(ctx, doc, at(0, 8)))
}
