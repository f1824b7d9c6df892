package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLParser handles HTML files. Block elements become top-level blocks,
// inline formatting elements become text formats and anchors become manual
// links.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := baseTitle(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}
	w := &htmlWalker{b: newBuilder(title)}

	if body := findBody(doc); body != nil {
		w.walk(body, 0)
	} else {
		w.walk(doc, 0)
	}
	w.endBlock()
	return w.b.done()
}

type htmlWalker struct {
	b     *builder
	block doctree.Key // open block, NoKey between blocks
	link  doctree.Key // open anchor
	pre   bool
}

var inlineFormats = map[atom.Atom]doctree.Format{
	atom.B:      doctree.FormatBold,
	atom.Strong: doctree.FormatBold,
	atom.I:      doctree.FormatItalic,
	atom.Em:     doctree.FormatItalic,
	atom.U:      doctree.FormatUnderline,
	atom.S:      doctree.FormatStrikethrough,
	atom.Strike: doctree.FormatStrikethrough,
	atom.Del:    doctree.FormatStrikethrough,
	atom.Code:   doctree.FormatCode,
	atom.Sub:    doctree.FormatSubscript,
	atom.Sup:    doctree.FormatSuperscript,
}

var blockTags = map[atom.Atom]string{
	atom.P:          "paragraph",
	atom.Li:         "listitem",
	atom.Blockquote: "quote",
	atom.Pre:        "code",
	atom.Td:         "paragraph",
	atom.Th:         "paragraph",
	atom.Dd:         "paragraph",
	atom.Dt:         "paragraph",
}

func (w *htmlWalker) walk(n *html.Node, format doctree.Format) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data, format)
		return
	case html.ElementNode:
	default:
		w.children(n, format)
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Nav, atom.Footer, atom.Header, atom.Head, atom.Title:
		return
	case atom.Br:
		w.b.append(w.target(), w.b.tree.CreateLineBreak())
		return
	case atom.A:
		if w.link != doctree.NoKey {
			w.children(n, format)
			return
		}
		w.link = w.b.append(w.target(), w.b.tree.CreateLink(doctree.LinkAttrs{
			URL:    attr(n, "href"),
			Rel:    attr(n, "rel"),
			Target: attr(n, "target"),
		}))
		w.children(n, format)
		w.link = doctree.NoKey
		return
	}

	if level := headingLevel(n.Data); level > 0 {
		w.endBlock()
		w.block = w.b.heading(level)
		w.children(n, format)
		w.endBlock()
		return
	}
	if tag, ok := blockTags[n.DataAtom]; ok {
		w.endBlock()
		w.block = w.b.block(tag)
		if n.DataAtom == atom.Pre {
			w.pre = true
			format |= doctree.FormatCode
		}
		w.children(n, format)
		w.pre = false
		w.endBlock()
		return
	}
	if f, ok := inlineFormats[n.DataAtom]; ok {
		w.children(n, format|f)
		return
	}

	// Everything else is a transparent container.
	w.children(n, format)
}

func (w *htmlWalker) children(n *html.Node, format doctree.Format) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, format)
	}
}

func (w *htmlWalker) text(s string, format doctree.Format) {
	if w.pre {
		w.b.text(w.target(), s, format)
		return
	}
	s = collapseSpace(s)
	if w.block == doctree.NoKey || w.b.tree.ChildCount(w.block) == 0 {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	w.b.text(w.target(), s, format)
}

// target is the node inline content goes into, opening an implicit
// paragraph for loose text.
func (w *htmlWalker) target() doctree.Key {
	if w.link != doctree.NoKey {
		return w.link
	}
	if w.block == doctree.NoKey {
		w.block = w.b.block("paragraph")
	}
	return w.block
}

// endBlock trims trailing blanks from the open block and closes it.
func (w *htmlWalker) endBlock() {
	if w.block == doctree.NoKey {
		return
	}
	tree := w.b.tree
	if last := tree.LastChild(w.block); tree.IsText(last) {
		trimmed := strings.TrimRight(tree.Node(last).Text, " ")
		if trimmed == "" {
			if w.b.err == nil {
				w.b.err = tree.Remove(last)
			}
		} else {
			tree.SetText(last, trimmed)
		}
	}
	w.block = doctree.NoKey
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
			if !space {
				sb.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
