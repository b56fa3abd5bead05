// Package markdown converts a markdown document into a block sequence,
// backing the page import endpoint. Goldmark parses the source; a walk over
// the document's top-level AST nodes maps each one onto the closed block
// type set.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/notefold/notefold/pkg/models"
)

// Parse converts markdown source into blocks for the given page.
//
// Mapping: headings of level 1-3 become the matching heading block, deeper
// headings clamp to heading_3; list items become bulleted_list blocks, or
// todo blocks when the item text starts with a "[ ]" or "[x]" marker; every
// other top-level node becomes a paragraph. Positions are dense 0-based in
// document order. Empty or whitespace-only source yields no blocks.
func Parse(src []byte, pageID models.PageID) []*models.Block {
	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	blocks := []*models.Block{}
	add := func(t models.BlockType, content models.BlockContent) {
		blocks = append(blocks, &models.Block{
			ID:       models.NewBlockID(),
			PageID:   pageID,
			Type:     t,
			Content:  content,
			Position: len(blocks),
		})
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			add(headingType(node.Level), models.BlockContent{Text: extractText(node, src)})
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				itemText := extractText(item, src)
				if itemText == "" {
					continue
				}
				if t, checked, ok := todoItem(itemText); ok {
					c := checked
					add(models.BlockTypeTodo, models.BlockContent{Text: t, Checked: &c})
				} else {
					add(models.BlockTypeBulletedList, models.BlockContent{Text: itemText})
				}
			}
		default:
			t := extractText(n, src)
			if t != "" {
				add(models.BlockTypeParagraph, models.BlockContent{Text: t})
			}
		}
	}
	return blocks
}

func headingType(level int) models.BlockType {
	switch level {
	case 1:
		return models.BlockTypeHeading1
	case 2:
		return models.BlockTypeHeading2
	default:
		return models.BlockTypeHeading3
	}
}

// todoItem recognizes task-list markers at the start of a list item.
func todoItem(itemText string) (string, bool, bool) {
	switch {
	case strings.HasPrefix(itemText, "[ ] "):
		return strings.TrimPrefix(itemText, "[ ] "), false, true
	case strings.HasPrefix(itemText, "[x] "), strings.HasPrefix(itemText, "[X] "):
		return itemText[4:], true, true
	}
	return itemText, false, false
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	if buf.Len() == 0 && n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	return strings.TrimSpace(buf.String())
}
