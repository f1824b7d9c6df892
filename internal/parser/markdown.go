package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Emphasis,
// strikethrough and inline code become text formats; inline links become
// manual links. Bare and angle-bracket URLs stay plain text so that pattern
// matching owns them.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	doc := md.Parser().Parse(text.NewReader(src))

	w := &mdWalker{b: newBuilder(baseTitle(filename)), src: src}
	w.blocks(doc, "paragraph")
	return w.b.done()
}

// ParseMarkdown is MarkdownParser for in-memory input.
func ParseMarkdown(title, markdown string) (*doctree.Tree, error) {
	return (&MarkdownParser{}).Parse(strings.NewReader(markdown), title)
}

type mdWalker struct {
	b   *builder
	src []byte
}

// blocks flattens the block structure under n into top-level elements.
// tag names the element used for paragraphs found at this depth.
func (w *mdWalker) blocks(n ast.Node, tag string) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Heading:
			w.inline(w.b.heading(c.Level), c, 0)
		case *ast.Paragraph, *ast.TextBlock:
			w.inline(w.b.block(tag), c, 0)
		case *ast.Blockquote:
			w.blocks(c, "quote")
		case *ast.ListItem:
			w.blocks(c, "listitem")
		case *ast.FencedCodeBlock:
			w.code(c)
		case *ast.CodeBlock:
			w.code(c)
		case *ast.ThematicBreak, *ast.HTMLBlock:
		default:
			w.blocks(c, tag)
		}
	}
}

func (w *mdWalker) code(n ast.Node) {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(w.src))
	}
	w.b.text(w.b.block("code"), strings.TrimSuffix(sb.String(), "\n"), doctree.FormatCode)
}

func (w *mdWalker) inline(parent doctree.Key, n ast.Node, format doctree.Format) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			value := string(c.Segment.Value(w.src))
			if c.HardLineBreak() {
				value = strings.TrimRight(value, " \\")
			}
			w.b.text(parent, value, format)
			switch {
			case c.HardLineBreak():
				w.b.append(parent, w.b.tree.CreateLineBreak())
			case c.SoftLineBreak():
				w.b.text(parent, " ", format)
			}
		case *ast.String:
			w.b.text(parent, string(c.Value), format)
		case *ast.CodeSpan:
			w.inline(parent, c, format|doctree.FormatCode)
		case *ast.Emphasis:
			f := doctree.FormatItalic
			if c.Level >= 2 {
				f = doctree.FormatBold
			}
			w.inline(parent, c, format|f)
		case *east.Strikethrough:
			w.inline(parent, c, format|doctree.FormatStrikethrough)
		case *ast.Link:
			link := w.b.append(parent, w.b.tree.CreateLink(doctree.LinkAttrs{URL: string(c.Destination)}))
			w.inline(link, c, format)
		case *ast.AutoLink:
			w.b.text(parent, string(c.Label(w.src)), format)
		case *ast.RawHTML:
		default:
			w.inline(parent, c, format)
		}
	}
}
