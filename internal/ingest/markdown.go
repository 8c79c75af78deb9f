package ingest

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownToPlainText flattens markdown to the plain text the sentence
// chunker operates on: inline text is concatenated, block boundaries
// become newlines, code blocks are kept verbatim, markup is dropped.
func MarkdownToPlainText(src []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			switch node := n.(type) {
			case *ast.Text:
				buf.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.FencedCodeBlock:
				writeLines(&buf, src, node)
			case *ast.CodeBlock:
				writeLines(&buf, src, node)
			case *ast.AutoLink:
				buf.Write(node.URL(src))
			}
			return ast.WalkContinue, nil
		}

		if n.Type() == ast.TypeBlock && buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}

func writeLines(buf *bytes.Buffer, src []byte, n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(src))
	}
}
