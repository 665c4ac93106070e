// internal/diff/diff_test.go
package diff

import "testing"

func TestCompute_IdenticalInputs(t *testing.T) {
	text := "line1\nline2\nline3\n"
	res := Compute(text, text)

	if len(res.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(res.Blocks))
	}
	if res.Blocks[0].Kind != Unchanged {
		t.Errorf("kind = %s, want unchanged", res.Blocks[0].Kind)
	}
	if res.Stats != (Stats{}) {
		t.Errorf("stats = %+v, want all zero", res.Stats)
	}
}

func TestCompute_EditedLineBecomesModified(t *testing.T) {
	res := Compute("line1\nline2\n", "line1\nline2-edited\n")

	var mod *Block
	for i := range res.Blocks {
		if res.Blocks[i].Kind == Modified {
			if mod != nil {
				t.Fatal("expected exactly one modified block")
			}
			mod = &res.Blocks[i]
		}
	}
	if mod == nil {
		t.Fatal("no modified block found")
	}
	if mod.OldContent != "line2\n" {
		t.Errorf("old content = %q, want %q", mod.OldContent, "line2\n")
	}
	if mod.Content != "line2-edited\n" {
		t.Errorf("content = %q, want %q", mod.Content, "line2-edited\n")
	}

	want := Stats{Additions: 1, Deletions: 1, Modifications: 1}
	if res.Stats != want {
		t.Errorf("stats = %+v, want %+v", res.Stats, want)
	}
}

func TestCompute_PureAddition(t *testing.T) {
	res := Compute("a\nb\n", "a\nb\nc\nd\n")

	var added int
	for _, b := range res.Blocks {
		switch b.Kind {
		case Added:
			added += b.Lines
		case Removed, Modified:
			t.Errorf("unexpected %s block: %+v", b.Kind, b)
		}
	}
	if added != 2 {
		t.Errorf("added lines = %d, want 2", added)
	}
	if res.Stats.Additions != 2 || res.Stats.Deletions != 0 || res.Stats.Modifications != 0 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestCompute_PureRemoval(t *testing.T) {
	res := Compute("a\nb\nc\n", "a\n")

	if res.Stats.Deletions != 2 {
		t.Errorf("deletions = %d, want 2", res.Stats.Deletions)
	}
	if res.Stats.Additions != 0 {
		t.Errorf("additions = %d, want 0", res.Stats.Additions)
	}
}

func TestCompute_EmptyToContent(t *testing.T) {
	res := Compute("", "fresh line\n")

	if res.Stats.Additions != 1 {
		t.Errorf("additions = %d, want 1", res.Stats.Additions)
	}
	if res.Stats.Deletions != 0 {
		t.Errorf("deletions = %d, want 0", res.Stats.Deletions)
	}
}

func TestCompute_NoPhantomTrailingLine(t *testing.T) {
	// The trailing newline must not count as an extra empty line.
	res := Compute("x\n", "x\ny\n")
	if res.Stats.Additions != 1 {
		t.Errorf("additions = %d, want 1", res.Stats.Additions)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"one\n", 1},
		{"one\ntwo\n", 2},
		{"one\ntwo", 2},
		{"\n", 1},
	}
	for _, tt := range tests {
		if got := countLines(tt.in); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
