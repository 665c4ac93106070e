// internal/history/slug.go
package history

import (
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

const (
	fallbackSlug = "plan"
	maxSlugLen   = 64
	maxTitleLen  = 48
)

// DeriveSlug computes the history identity for a plan document: its first
// heading (any level, document order) plus the given date, sanitized.
// Two distinct plans sharing a first heading on the same day collide; the
// grouping is deliberately coarse.
func DeriveSlug(content string, now time.Time) string {
	title := firstHeading(content)
	if title == "" {
		title = fallbackSlug
	}

	title = Sanitize(title)
	if title == "" {
		title = fallbackSlug
	}
	if len(title) > maxTitleLen {
		title = strings.Trim(title[:maxTitleLen], "-")
	}

	slug := title + "-" + now.Format("2006-01-02")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	return slug
}

// firstHeading extracts the text of the first heading in the document
// via a goldmark AST walk, empty when the document has no heading.
func firstHeading(content string) string {
	src := []byte(content)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var found string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			found = headingText(heading, src)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

func headingText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// Sanitize restricts an identity string to lowercase alphanumerics and
// hyphens, collapsing runs and trimming the ends.
func Sanitize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
