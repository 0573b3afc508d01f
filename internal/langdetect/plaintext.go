package langdetect

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// PlainText returns the prose of a markdown document: headings, paragraphs, list items and
// table cells separated by spaces. Code blocks, link targets and emphasis markers are dropped.
func PlainText(src string) string {
	content := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(content))

	var b strings.Builder
	separate := func() { b.WriteByte(' ') }

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			b.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				separate()
			}

		case *ast.String:
			b.Write(node.Value)

		default:
			if n.Type() == ast.TypeBlock || strings.Contains(n.Kind().String(), "TableCell") {
				separate()
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}
