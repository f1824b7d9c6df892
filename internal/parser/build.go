package parser

import (
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
)

// builder appends blocks and inline runs to a fresh tree and keeps the
// first structural error.
type builder struct {
	tree *doctree.Tree
	err  error
}

func newBuilder(title string) *builder {
	return &builder{tree: doctree.New(title)}
}

func (b *builder) append(parent, child doctree.Key) doctree.Key {
	if b.err == nil {
		b.err = b.tree.Append(parent, child)
	}
	return child
}

// block appends a new top-level element.
func (b *builder) block(tag string) doctree.Key {
	return b.append(b.tree.Root(), b.tree.CreateElement(tag))
}

func (b *builder) heading(level int) doctree.Key {
	return b.append(b.tree.Root(), b.tree.CreateHeading(level))
}

// text appends s to parent, turning newlines into line breaks. Runs that
// continue a text node of the same format extend it.
func (b *builder) text(parent doctree.Key, s string, format doctree.Format) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.append(parent, b.tree.CreateLineBreak())
		}
		if line == "" {
			continue
		}
		if last := b.tree.LastChild(parent); b.tree.IsSimpleText(last) && b.tree.Node(last).Format == format {
			b.tree.SetText(last, b.tree.Node(last).Text+line)
			continue
		}
		b.append(parent, b.tree.CreateFormattedText(line, format))
	}
}

// paragraph appends a block holding plain text.
func (b *builder) paragraph(tag, s string) {
	b.text(b.block(tag), s, 0)
}

// prune drops trailing line breaks and removes blocks left empty.
func (b *builder) prune() {
	t := b.tree
	for _, blk := range t.Children(t.Root()) {
		for last := t.LastChild(blk); t.IsLineBreak(last); last = t.LastChild(blk) {
			if b.err == nil {
				b.err = t.Remove(last)
			}
			if b.err != nil {
				return
			}
		}
		if t.ChildCount(blk) == 0 && b.err == nil {
			b.err = t.Remove(blk)
		}
	}
}

func (b *builder) done() (*doctree.Tree, error) {
	b.prune()
	if b.err != nil {
		return nil, b.err
	}
	return b.tree, nil
}
