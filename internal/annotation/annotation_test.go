// internal/annotation/annotation_test.go
package annotation

import (
	"testing"
	"time"

	"planmark/internal/plan"
)

func TestNew_ValidSelection(t *testing.T) {
	sel := Selection{Text: "target phrase", BlockID: "block-2", Start: 5, End: 18}

	a, err := New(sel, TypeComment, "needs work", "reviewer")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.ID == "" {
		t.Error("expected generated id")
	}
	if a.TargetText != "target phrase" {
		t.Errorf("target = %q", a.TargetText)
	}
	if a.Position == nil || a.Position.BlockID != "block-2" || a.Position.Start != 5 || a.Position.End != 18 {
		t.Errorf("unexpected position: %+v", a.Position)
	}
}

func TestNew_EmptySelection(t *testing.T) {
	for _, typ := range []Type{TypeDeletion, TypeInsertion, TypeReplacement, TypeComment} {
		if _, err := New(Selection{Text: "   "}, typ, "note", ""); err != ErrInvalidSelection {
			t.Errorf("type %s: err = %v, want ErrInvalidSelection", typ, err)
		}
	}
}

func TestNewGlobal(t *testing.T) {
	a := NewGlobal("overall this looks good", "reviewer")
	if a.Type != TypeGlobalComment {
		t.Errorf("type = %s", a.Type)
	}
	if a.Position != nil {
		t.Error("global comment must not carry a position")
	}
	if a.TargetText != "" {
		t.Error("global comment must not carry target text")
	}
}

func TestRelocate(t *testing.T) {
	blocks := plan.Parse("# Title\n\nthe quick brown fox\n\nanother paragraph\n")

	t.Run("single match resolves", func(t *testing.T) {
		a := Annotation{ID: "a1", Type: TypeComment, TargetText: "brown fox", Note: "n"}
		got := Relocate(a, blocks)
		if got.Orphaned {
			t.Fatal("annotation unexpectedly orphaned")
		}
		if got.Position == nil {
			t.Fatal("expected position")
		}
		if got.Position.BlockID != "block-1" {
			t.Errorf("block id = %q, want block-1", got.Position.BlockID)
		}
		if got.Position.Start != 10 || got.Position.End != 19 {
			t.Errorf("offsets = [%d,%d], want [10,19]", got.Position.Start, got.Position.End)
		}
	})

	t.Run("no match orphans", func(t *testing.T) {
		a := Annotation{ID: "a2", Type: TypeDeletion, TargetText: "nowhere to be found"}
		got := Relocate(a, blocks)
		if !got.Orphaned {
			t.Error("expected orphaned annotation")
		}
		if got.Position != nil {
			t.Errorf("expected nil position, got %+v", got.Position)
		}
	})

	t.Run("first occurrence wins on duplicates", func(t *testing.T) {
		dup := plan.Parse("repeat me\n\nrepeat me\n")
		a := Annotation{ID: "a3", Type: TypeComment, TargetText: "repeat me"}
		got := Relocate(a, dup)
		if got.Position == nil || got.Position.BlockID != "block-0" {
			t.Errorf("expected first block match, got %+v", got.Position)
		}
	})

	t.Run("stale position replaced after reparse", func(t *testing.T) {
		a := Annotation{
			ID: "a4", Type: TypeComment, TargetText: "another paragraph",
			Position: &Position{BlockID: "block-9", Start: 0, End: 5},
		}
		got := Relocate(a, blocks)
		if got.Position == nil || got.Position.BlockID != "block-2" {
			t.Errorf("stale position not recomputed: %+v", got.Position)
		}
	})
}

func TestSortForDisplay(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	anns := []Annotation{
		{ID: "late", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "tie-a", CreatedAt: base},
		{ID: "tie-b", CreatedAt: base},
		{ID: "mid", CreatedAt: base.Add(time.Minute)},
	}

	SortForDisplay(anns)

	want := []string{"tie-a", "tie-b", "mid", "late"}
	for i, id := range want {
		if anns[i].ID != id {
			t.Errorf("position %d = %q, want %q", i, anns[i].ID, id)
		}
	}
}
