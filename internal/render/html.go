package render

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// policy allows user-generated markup and keeps link rel/target as
// authored by the matchers.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowAttrs("rel", "target").OnElements("a")
	return p
}()

var formatTags = []struct {
	format doctree.Format
	tag    atom.Atom
}{
	{doctree.FormatBold, atom.Strong},
	{doctree.FormatItalic, atom.Em},
	{doctree.FormatUnderline, atom.U},
	{doctree.FormatStrikethrough, atom.S},
	{doctree.FormatSubscript, atom.Sub},
	{doctree.FormatSuperscript, atom.Sup},
	{doctree.FormatCode, atom.Code},
}

// HTML renders the document body as an HTML fragment. Consecutive list
// items share one <ul>.
func HTML(tree *doctree.Tree, opts Options) (string, error) {
	var buf bytes.Buffer
	var list *html.Node

	for _, blk := range tree.Children(tree.Root()) {
		n := tree.Node(blk)
		if n.Tag == "listitem" {
			if list == nil {
				list = element(atom.Ul)
			}
			list.AppendChild(htmlBlock(tree, blk))
			continue
		}
		if list != nil {
			if err := html.Render(&buf, list); err != nil {
				return "", fmt.Errorf("render html: %w", err)
			}
			list = nil
		}
		if err := html.Render(&buf, htmlBlock(tree, blk)); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	if list != nil {
		if err := html.Render(&buf, list); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}

	if opts.Sanitize {
		return policy.Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func blockAtom(n *doctree.Node) atom.Atom {
	switch n.Tag {
	case "heading":
		switch n.Level {
		case 1:
			return atom.H1
		case 2:
			return atom.H2
		case 3:
			return atom.H3
		case 4:
			return atom.H4
		case 5:
			return atom.H5
		}
		return atom.H6
	case "quote":
		return atom.Blockquote
	case "listitem":
		return atom.Li
	case "code":
		return atom.Pre
	}
	return atom.P
}

func htmlBlock(tree *doctree.Tree, k doctree.Key) *html.Node {
	n := tree.Node(k)
	el := element(blockAtom(n))
	htmlInline(tree, k, el)
	return el
}

func htmlInline(tree *doctree.Tree, parent doctree.Key, out *html.Node) {
	for _, c := range tree.Children(parent) {
		n := tree.Node(c)
		switch n.Kind {
		case doctree.KindText:
			out.AppendChild(htmlText(n))
		case doctree.KindLineBreak:
			out.AppendChild(element(atom.Br))
		case doctree.KindLink:
			a := element(atom.A, html.Attribute{Key: "href", Val: n.Link.URL})
			if n.Link.Rel != "" {
				a.Attr = append(a.Attr, html.Attribute{Key: "rel", Val: n.Link.Rel})
			}
			if n.Link.Target != "" {
				a.Attr = append(a.Attr, html.Attribute{Key: "target", Val: n.Link.Target})
			}
			if n.Variant == doctree.LinkAuto {
				a.Attr = append(a.Attr, html.Attribute{Key: "data-autolink", Val: "true"})
			}
			htmlInline(tree, c, a)
			out.AppendChild(a)
		}
	}
}

// htmlText wraps a text run in one element per format flag, outermost
// first.
func htmlText(n *doctree.Node) *html.Node {
	text := &html.Node{Type: html.TextNode, Data: n.Text}
	var root, leaf *html.Node
	for _, ft := range formatTags {
		if !n.Format.Has(ft.format) {
			continue
		}
		el := element(ft.tag)
		if root == nil {
			root = el
		} else {
			leaf.AppendChild(el)
		}
		leaf = el
	}
	if root == nil {
		return text
	}
	leaf.AppendChild(text)
	return root
}
