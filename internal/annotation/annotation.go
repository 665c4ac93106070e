// internal/annotation/annotation.go
package annotation

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"planmark/internal/plan"
)

// Type identifies the kind of feedback an annotation carries
type Type string

const (
	TypeDeletion      Type = "deletion"
	TypeInsertion     Type = "insertion"
	TypeReplacement   Type = "replacement"
	TypeComment       Type = "comment"
	TypeGlobalComment Type = "global-comment"
)

// ErrInvalidSelection is returned when an annotation that needs a target
// is created from an empty or whitespace-only selection.
var ErrInvalidSelection = errors.New("invalid selection: empty or whitespace-only target")

// Position locates an annotation's target inside a parsed block.
// It is a best-effort cache derived from TargetText, recomputed by
// Relocate after any reparse; a stale Position must never be trusted.
type Position struct {
	BlockID string `json:"block_id"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Annotation is one piece of structured feedback on a plan
type Annotation struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	TargetText string    `json:"target_text,omitempty"`
	Note       string    `json:"note,omitempty"`
	Author     string    `json:"author,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Position   *Position `json:"position,omitempty"`
	Orphaned   bool      `json:"orphaned,omitempty"`
}

// Selection is an exact text selection inside a known block
type Selection struct {
	Text    string
	BlockID string
	Start   int
	End     int
}

// New creates a position-bearing annotation from a direct user selection.
func New(sel Selection, typ Type, note, author string) (Annotation, error) {
	if typ != TypeGlobalComment && strings.TrimSpace(sel.Text) == "" {
		return Annotation{}, ErrInvalidSelection
	}

	a := Annotation{
		ID:        uuid.NewString(),
		Type:      typ,
		Note:      note,
		Author:    author,
		CreatedAt: time.Now(),
	}
	if typ != TypeGlobalComment {
		a.TargetText = sel.Text
		a.Position = &Position{BlockID: sel.BlockID, Start: sel.Start, End: sel.End}
	}
	return a, nil
}

// NewGlobal creates a document-wide comment carrying no position.
func NewGlobal(note, author string) Annotation {
	return Annotation{
		ID:        uuid.NewString(),
		Type:      TypeGlobalComment,
		Note:      note,
		Author:    author,
		CreatedAt: time.Now(),
	}
}

// Relocate resolves an annotation's position against freshly parsed blocks
// by searching for its target text. The first block containing the target
// wins; ties on duplicate text are not disambiguated further. An annotation
// whose target no longer appears anywhere is marked orphaned, which is an
// observable state rather than an error.
func Relocate(a Annotation, blocks []plan.Block) Annotation {
	if a.Type == TypeGlobalComment || a.TargetText == "" {
		return a
	}

	for _, b := range blocks {
		if idx := strings.Index(b.Content, a.TargetText); idx >= 0 {
			a.Position = &Position{BlockID: b.ID, Start: idx, End: idx + len(a.TargetText)}
			a.Orphaned = false
			return a
		}
	}

	a.Position = nil
	a.Orphaned = true
	return a
}

// RelocateAll relocates every annotation in the slice against the blocks.
func RelocateAll(anns []Annotation, blocks []plan.Block) []Annotation {
	out := make([]Annotation, len(anns))
	for i, a := range anns {
		out[i] = Relocate(a, blocks)
	}
	return out
}

// SortForDisplay orders annotations by creation time ascending, keeping
// insertion order for equal timestamps.
func SortForDisplay(anns []Annotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		return anns[i].CreatedAt.Before(anns[j].CreatedAt)
	})
}
