package server

import (
	"testing"

	"markpath/internal/completion"
	"markpath/internal/config"
	"markpath/internal/document"
	"markpath/internal/markdown"
	"markpath/internal/resolver"
	"markpath/internal/workspace"
)

// testServer builds a Server around a workspace root without going
// through the protocol initialize handshake.
func testServer(root string) *Server {
	s := &Server{
		documents: document.NewManager(),
		config:    config.Default(),
	}
	s.workspace = workspace.New(workspace.Options{
		Extensions: s.config.FileExtensions,
		Documents:  s.documents,
	})
	s.workspace.AddRoot(root)
	s.resolver = resolver.New(s.workspace)
	s.provider = completion.NewProvider(s.workspace, s.resolver, s)
	return s
}

func TestIsSubsequence(t *testing.T) {
	tests := []struct {
		query string
		text  string
		want  bool
	}{
		{"", "anything", true},
		{"abc", "abc", true},
		{"abc", "a-b-c", true},
		{"abc", "acb", false},
		{"nts", "notes/todo.md", true},
		{"abc", "ab", false},
	}

	for _, tt := range tests {
		if got := isSubsequence(tt.query, tt.text); got != tt.want {
			t.Errorf("isSubsequence(%q, %q) = %v, want %v", tt.query, tt.text, got, tt.want)
		}
	}
}

func TestSplitFragment(t *testing.T) {
	tests := []struct {
		target   string
		path     string
		fragment string
	}{
		{"a.md", "a.md", ""},
		{"a.md#intro", "a.md", "intro"},
		{"#intro", "", "intro"},
		{"a#b#c", "a#b", "c"},
		{"a.md#", "a.md", ""},
	}

	for _, tt := range tests {
		path, fragment := splitFragment(tt.target)
		if path != tt.path || fragment != tt.fragment {
			t.Errorf("splitFragment(%q) = %q, %q, want %q, %q",
				tt.target, path, fragment, tt.path, tt.fragment)
		}
	}
}

func TestHeadingSymbols(t *testing.T) {
	source := []byte(`# One

## One A

## One B

# Two
`)
	symbols, _ := headingSymbols(markdown.TOC(source), 0, 1)

	if len(symbols) != 2 {
		t.Fatalf("got %d top-level symbols, want 2", len(symbols))
	}
	if symbols[0].Name != "One" || symbols[1].Name != "Two" {
		t.Errorf("top-level names = %q, %q", symbols[0].Name, symbols[1].Name)
	}
	if len(symbols[0].Children) != 2 {
		t.Fatalf("got %d children under One, want 2", len(symbols[0].Children))
	}
	if symbols[0].Children[0].Name != "One A" || symbols[0].Children[1].Name != "One B" {
		t.Errorf("children = %+v", symbols[0].Children)
	}
	if len(symbols[1].Children) != 0 {
		t.Errorf("Two should have no children, got %+v", symbols[1].Children)
	}
}

func TestHeadingSymbolsSkippedLevel(t *testing.T) {
	source := []byte("### Deep\n\n# Top\n")
	symbols, _ := headingSymbols(markdown.TOC(source), 0, 1)

	if len(symbols) != 2 {
		t.Fatalf("got %d symbols, want 2: %+v", len(symbols), symbols)
	}
	if symbols[0].Name != "Deep" || symbols[1].Name != "Top" {
		t.Errorf("names = %q, %q", symbols[0].Name, symbols[1].Name)
	}
}
