package report

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MaxCommentLength is the longest body GitHub accepts for an issue comment.
const MaxCommentLength = 65536

// TruncatedNotice is appended to a report cut down by Truncate.
const TruncatedNotice = "\n\n_Report truncated._\n"

// Truncate shortens doc to at most limit bytes. The cut is made at the start of a
// top-level markdown block so fenced charts are never split. A document already within
// the limit is returned unchanged.
func Truncate(doc string, limit int) string {
	if len(doc) <= limit {
		return doc
	}
	budget := limit - len(TruncatedNotice)
	if budget <= 0 {
		return ""
	}

	src := []byte(doc)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	cut := 0
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		start, ok := blockStart(n, src)
		if !ok {
			continue
		}
		if start > budget {
			break
		}
		cut = start
	}
	return string(bytes.TrimRight(src[:cut], "\n")) + TruncatedNotice
}

// blockStart returns the offset of the first line belonging to a top-level block.
func blockStart(n ast.Node, src []byte) (int, bool) {
	switch b := n.(type) {
	case *ast.FencedCodeBlock:
		// Content lines start below the opening fence.
		if b.Info != nil {
			return lineStart(src, b.Info.Segment.Start), true
		}
		if b.Lines().Len() > 0 {
			return previousLineStart(src, b.Lines().At(0).Start), true
		}
		return 0, false
	}
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return lineStart(src, n.Lines().At(0).Start), true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off, ok := blockStart(c, src); ok {
			return lineStart(src, off), true
		}
	}
	return 0, false
}

func lineStart(src []byte, off int) int {
	if i := bytes.LastIndexByte(src[:off], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

func previousLineStart(src []byte, off int) int {
	start := lineStart(src, off)
	if start == 0 {
		return 0
	}
	return lineStart(src, start-1)
}
