package resolver_test

import (
	"testing"

	"markpath/internal/resolver"
)

type fixedRoots struct {
	root string
}

func (f fixedRoots) RootFor(path string) (string, bool) {
	if f.root == "" {
		return "", false
	}
	return f.root, true
}

func TestResolve(t *testing.T) {
	r := resolver.New(fixedRoots{root: "/workspace"})

	tests := []struct {
		name      string
		docPath   string
		reference string
		want      string
		ok        bool
	}{
		{"sibling file", "/workspace/notes/a.md", "b.md", "/workspace/notes/b.md", true},
		{"subdirectory", "/workspace/notes/a.md", "sub/c.md", "/workspace/notes/sub/c.md", true},
		{"explicit current dir", "/workspace/notes/a.md", "./b.md", "/workspace/notes/b.md", true},
		{"parent dir", "/workspace/notes/a.md", "../top.md", "/workspace/top.md", true},
		{"dot only", "/workspace/notes/a.md", ".", "/workspace/notes", true},
		{"escaping the root is kept literal", "/workspace/a.md", "../../outside.md", "/outside.md", true},
		{"workspace absolute", "/workspace/notes/a.md", "/shared/x.md", "/workspace/shared/x.md", true},
		{"workspace absolute normalizes", "/workspace/notes/a.md", "/shared/../x.md", "/workspace/x.md", true},
		{"empty reference", "/workspace/notes/a.md", "", "", false},
		{"relative without document path", "", "b.md", "", false},
		{"relative document path", "notes/a.md", "b.md", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.docPath, tt.reference)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, %v, want %q, %v",
					tt.docPath, tt.reference, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveWithoutRoot(t *testing.T) {
	r := resolver.New(fixedRoots{})

	if _, ok := r.Resolve("/somewhere/a.md", "/abs.md"); ok {
		t.Error("workspace-relative reference without a root should not resolve")
	}
	got, ok := r.Resolve("/somewhere/a.md", "rel.md")
	if !ok || got != "/somewhere/rel.md" {
		t.Errorf("document-relative resolution should not need a root, got %q, %v", got, ok)
	}
}
