// internal/diff/diff.go
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies one block of a computed diff
type Kind string

const (
	Added     Kind = "added"
	Removed   Kind = "removed"
	Modified  Kind = "modified"
	Unchanged Kind = "unchanged"
)

// Block is one contiguous span of a line-level diff. Content holds the
// new/current text, except for removed blocks where it holds the old text.
// OldContent is set for modified blocks only.
type Block struct {
	Kind       Kind   `json:"kind"`
	Content    string `json:"content"`
	OldContent string `json:"old_content,omitempty"`
	Lines      int    `json:"lines"`
}

// Stats aggregates line-level change counts. Additions and Deletions count
// lines; Modifications counts modified blocks.
type Stats struct {
	Additions     int `json:"additions"`
	Deletions     int `json:"deletions"`
	Modifications int `json:"modifications"`
}

// Result is a grouped diff between two document texts
type Result struct {
	Blocks []Block `json:"blocks"`
	Stats  Stats   `json:"stats"`
}

// Compute produces a line-level diff between two full document texts,
// grouped into renderable blocks. A removed run immediately followed by an
// added run is merged into a single modified block.
func Compute(oldText, newText string) Result {
	if oldText == newText {
		return Result{Blocks: []Block{{
			Kind:    Unchanged,
			Content: newText,
			Lines:   countLines(newText),
		}}}
	}

	dmp := diffmatchpatch.New()
	oldChars, newChars, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(oldChars, newChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	return group(diffs)
}

// group merges the raw edit script into display blocks and accumulates
// stats in one pass.
func group(diffs []diffmatchpatch.Diff) Result {
	var res Result

	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			res.Blocks = append(res.Blocks, Block{
				Kind:    Unchanged,
				Content: d.Text,
				Lines:   countLines(d.Text),
			})
		case diffmatchpatch.DiffDelete:
			// Pair a removal with a directly following insertion as a
			// replacement.
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				ins := diffs[i+1]
				res.Blocks = append(res.Blocks, Block{
					Kind:       Modified,
					Content:    ins.Text,
					OldContent: d.Text,
					Lines:      countLines(ins.Text),
				})
				res.Stats.Additions += countLines(ins.Text)
				res.Stats.Deletions += countLines(d.Text)
				res.Stats.Modifications++
				i++
				continue
			}
			res.Blocks = append(res.Blocks, Block{
				Kind:    Removed,
				Content: d.Text,
				Lines:   countLines(d.Text),
			})
			res.Stats.Deletions += countLines(d.Text)
		case diffmatchpatch.DiffInsert:
			res.Blocks = append(res.Blocks, Block{
				Kind:    Added,
				Content: d.Text,
				Lines:   countLines(d.Text),
			})
			res.Stats.Additions += countLines(d.Text)
		}
	}

	return res
}

// countLines counts the lines in s without treating a trailing newline as
// a phantom empty line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Count(s, "\n") + 1
}
