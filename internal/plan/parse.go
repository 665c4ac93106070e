// internal/plan/parse.go
package plan

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	listItemRe  = regexp.MustCompile(`^(\s*)(?:[-*]|\d+\.)\s+(.*)$`)
	hrRe        = regexp.MustCompile(`^\s*(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`)
	tableRowRe  = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	tableSepRe  = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)+\|?\s*$`)
	fencePrefix = "```"
)

// Parse splits raw plan text into an ordered sequence of typed blocks.
// It never fails: anything that does not match a structural rule degrades
// to a paragraph block.
func Parse(text string) []Block {
	lines := strings.Split(text, "\n")

	// A trailing newline produces a phantom empty last element
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	p := &parser{lines: lines}
	p.run()
	return p.blocks
}

type parser struct {
	lines  []string
	pos    int
	blocks []Block

	paragraph      []string
	paragraphStart int
}

func (p *parser) run() {
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		switch {
		case strings.TrimSpace(line) == "":
			p.flushParagraph()
			p.pos++
		case headingRe.MatchString(line):
			p.flushParagraph()
			m := headingRe.FindStringSubmatch(line)
			p.emit(Block{Kind: KindHeading, Content: strings.TrimSpace(m[2]), Level: len(m[1]), StartLine: p.pos + 1})
			p.pos++
		case strings.HasPrefix(strings.TrimSpace(line), fencePrefix):
			p.flushParagraph()
			p.readFence()
		case strings.HasPrefix(line, ">"):
			p.flushParagraph()
			p.readBlockquote()
		case listItemRe.MatchString(line):
			p.flushParagraph()
			m := listItemRe.FindStringSubmatch(line)
			p.emit(Block{Kind: KindListItem, Content: m[2], Level: indentDepth(m[1]), StartLine: p.pos + 1})
			p.pos++
		case hrRe.MatchString(line):
			p.flushParagraph()
			p.emit(Block{Kind: KindHorizontalRule, StartLine: p.pos + 1})
			p.pos++
		case p.atTableStart():
			p.flushParagraph()
			p.readTable()
		default:
			if len(p.paragraph) == 0 {
				p.paragraphStart = p.pos + 1
			}
			p.paragraph = append(p.paragraph, line)
			p.pos++
		}
	}
	p.flushParagraph()
}

// readFence consumes a fenced code block. An unterminated fence swallows
// the rest of the document rather than failing.
func (p *parser) readFence() {
	start := p.pos + 1
	lang := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p.lines[p.pos]), fencePrefix))
	p.pos++

	var body []string
	for p.pos < len(p.lines) {
		if strings.TrimSpace(p.lines[p.pos]) == fencePrefix {
			p.pos++
			break
		}
		body = append(body, p.lines[p.pos])
		p.pos++
	}
	p.emit(Block{Kind: KindCode, Content: strings.Join(body, "\n"), Language: lang, StartLine: start})
}

func (p *parser) readBlockquote() {
	start := p.pos + 1
	var body []string
	for p.pos < len(p.lines) && strings.HasPrefix(p.lines[p.pos], ">") {
		text := strings.TrimPrefix(p.lines[p.pos], ">")
		text = strings.TrimPrefix(text, " ")
		body = append(body, text)
		p.pos++
	}
	p.emit(Block{Kind: KindBlockquote, Content: strings.Join(body, "\n"), StartLine: start})
}

func (p *parser) atTableStart() bool {
	if !tableRowRe.MatchString(p.lines[p.pos]) {
		return false
	}
	return p.pos+1 < len(p.lines) && tableSepRe.MatchString(p.lines[p.pos+1])
}

func (p *parser) readTable() {
	start := p.pos + 1
	var rows []string
	for p.pos < len(p.lines) && tableRowRe.MatchString(p.lines[p.pos]) {
		rows = append(rows, p.lines[p.pos])
		p.pos++
	}
	p.emit(Block{Kind: KindTable, Content: strings.Join(rows, "\n"), StartLine: start})
}

func (p *parser) flushParagraph() {
	if len(p.paragraph) == 0 {
		return
	}
	p.emit(Block{Kind: KindParagraph, Content: strings.Join(p.paragraph, "\n"), StartLine: p.paragraphStart})
	p.paragraph = nil
}

func (p *parser) emit(b Block) {
	b.Order = len(p.blocks)
	b.ID = fmt.Sprintf("block-%d", b.Order)
	p.blocks = append(p.blocks, b)
}

// indentDepth maps leading whitespace to a list nesting depth.
// A tab or two spaces count as one level.
func indentDepth(indent string) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += 2
		} else {
			width++
		}
	}
	return width / 2
}
