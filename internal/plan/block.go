// internal/plan/block.go
package plan

// BlockKind identifies the structural type of a parsed block
type BlockKind string

const (
	KindParagraph      BlockKind = "paragraph"
	KindHeading        BlockKind = "heading"
	KindBlockquote     BlockKind = "blockquote"
	KindListItem       BlockKind = "list-item"
	KindCode           BlockKind = "code"
	KindHorizontalRule BlockKind = "horizontal-rule"
	KindTable          BlockKind = "table"
)

// Block represents one structural unit of a parsed plan document
type Block struct {
	ID        string    `json:"id"`
	Kind      BlockKind `json:"kind"`
	Content   string    `json:"content"`
	Level     int       `json:"level,omitempty"`
	Language  string    `json:"language,omitempty"`
	Order     int       `json:"order"`
	StartLine int       `json:"start_line"`
}
