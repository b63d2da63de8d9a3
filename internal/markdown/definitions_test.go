package markdown_test

import (
	"testing"

	"markpath/internal/markdown"
)

func TestDefinitions(t *testing.T) {
	source := []byte(`[alpha]: /a.md
[beta]: ./b.md "Beta Title"
[alpha]: /duplicate.md
body text [not-a-def]: /nope.md
    [indented]: /code-block.md
`)

	defs := markdown.Definitions(source)
	want := []struct {
		key    string
		target string
		line   uint32
	}{
		{"alpha", "/a.md", 0},
		{"beta", "./b.md", 1},
	}

	if len(defs) != len(want) {
		t.Fatalf("got %d definitions, want %d: %v", len(defs), len(want), defs)
	}
	for i, w := range want {
		d := defs[i]
		if d.Key != w.key || d.Target != w.target || d.Range.Start.Line != w.line {
			t.Errorf("defs[%d] = {%q %q line %d}, want {%q %q line %d}",
				i, d.Key, d.Target, d.Range.Start.Line, w.key, w.target, w.line)
		}
	}
}

func TestDefinitionsSkipFencedBlocks(t *testing.T) {
	source := []byte("[a]: /a.md\n```txt\n[b]: /b.md\n```\n[c]: /c.md\n")

	defs := markdown.Definitions(source)
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2: %v", len(defs), defs)
	}
	if defs[0].Key != "a" || defs[1].Key != "c" {
		t.Errorf("keys = %q, %q, want a, c", defs[0].Key, defs[1].Key)
	}
	if defs[1].Range.Start.Line != 4 {
		t.Errorf("c declared on line %d, want 4", defs[1].Range.Start.Line)
	}
}

func TestDefinitionMap(t *testing.T) {
	source := []byte("[Alpha]: /first.md\n[alpha]: /second.md\n[beta]: /b.md\n")

	m := markdown.DefinitionMap(source)
	if len(m) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(m), m)
	}
	if m["alpha"] != "/first.md" {
		t.Errorf("alpha = %q, want /first.md", m["alpha"])
	}
	if m["beta"] != "/b.md" {
		t.Errorf("beta = %q, want /b.md", m["beta"])
	}
}
