package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/doclink/internal/doctree"
)

// ErrInvalidEdit is returned for edits that do not address the document.
var ErrInvalidEdit = errors.New("invalid edit")

// Op names an edit operation.
type Op string

const (
	OpInsert    Op = "insert"
	OpDelete    Op = "delete"
	OpFormat    Op = "format"
	OpLineBreak Op = "linebreak"
)

// Edit addresses a byte range inside the text content of one top-level
// block. Line breaks count as one byte ("\n").
type Edit struct {
	Op     Op     `json:"op"`
	Block  int    `json:"block"`
	Offset int    `json:"offset"`
	Length int    `json:"length,omitempty"`
	Text   string `json:"text,omitempty"`
	Format string `json:"format,omitempty"`
}

var formatNames = map[string]doctree.Format{
	"bold":          doctree.FormatBold,
	"italic":        doctree.FormatItalic,
	"strikethrough": doctree.FormatStrikethrough,
	"underline":     doctree.FormatUnderline,
	"code":          doctree.FormatCode,
	"subscript":     doctree.FormatSubscript,
	"superscript":   doctree.FormatSuperscript,
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEdit, fmt.Sprintf(format, args...))
}

// leaf is a text node or line break inside a block, with its byte span in
// the block's text content.
type leaf struct {
	key        doctree.Key
	start, end int
	link       doctree.Key // enclosing link, if any
}

func collectLeaves(tree *doctree.Tree, block doctree.Key) []leaf {
	var out []leaf
	pos := 0
	var walk func(parent, link doctree.Key)
	walk = func(parent, link doctree.Key) {
		for _, c := range tree.Children(parent) {
			switch {
			case tree.IsLink(c):
				walk(c, c)
			case tree.IsText(c):
				n := len(tree.Node(c).Text)
				out = append(out, leaf{key: c, start: pos, end: pos + n, link: link})
				pos += n
			case tree.IsLineBreak(c):
				out = append(out, leaf{key: c, start: pos, end: pos + 1, link: link})
				pos++
			}
		}
	}
	walk(block, doctree.NoKey)
	return out
}

// apply performs one edit. Callers run it inside an editor update.
func apply(tree *doctree.Tree, e Edit) error {
	blocks := tree.Children(tree.Root())
	if e.Block < 0 || e.Block >= len(blocks) {
		return invalid("block %d out of range (%d blocks)", e.Block, len(blocks))
	}
	block := blocks[e.Block]
	leaves := collectLeaves(tree, block)
	size := 0
	if len(leaves) > 0 {
		size = leaves[len(leaves)-1].end
	}
	if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > size {
		return invalid("range [%d,%d) outside block of %d bytes", e.Offset, e.Offset+e.Length, size)
	}

	switch e.Op {
	case OpInsert:
		if e.Text == "" || strings.Contains(e.Text, "\n") {
			return invalid("insert needs text without newlines")
		}
		return insertText(tree, block, leaves, e.Offset, e.Text)
	case OpDelete:
		return deleteRange(tree, leaves, e.Offset, e.Offset+e.Length)
	case OpFormat:
		f, ok := formatNames[e.Format]
		if !ok {
			return invalid("unknown format %q", e.Format)
		}
		return toggleFormat(tree, leaves, e.Offset, e.Offset+e.Length, f)
	case OpLineBreak:
		return insertNode(tree, block, leaves, e.Offset, tree.CreateLineBreak())
	}
	return invalid("unknown op %q", e.Op)
}

// split locates offset inside leaves. inside is the text leaf strictly
// containing offset; otherwise left and right are the leaves touching it.
func split(leaves []leaf, offset int) (inside, left, right *leaf) {
	for i := range leaves {
		l := &leaves[i]
		switch {
		case l.start < offset && offset < l.end:
			return l, nil, nil
		case l.end == offset:
			left = l
		case l.start == offset && right == nil:
			right = l
		}
	}
	return nil, left, right
}

func checkRune(tree *doctree.Tree, l *leaf, offset int) error {
	if tree.IsText(l.key) && !utf8.RuneStart(tree.Node(l.key).Text[offset-l.start]) {
		return invalid("offset %d splits a character", offset)
	}
	return nil
}

func plain(tree *doctree.Tree, l *leaf) bool {
	return l != nil && l.link == doctree.NoKey && tree.IsSimpleText(l.key)
}

// insertText types s at offset. At a node boundary, text outside links is
// preferred so that typing next to a link creates a neighbor of it.
func insertText(tree *doctree.Tree, block doctree.Key, leaves []leaf, offset int, s string) error {
	inside, left, right := split(leaves, offset)
	switch {
	case inside != nil:
		if err := checkRune(tree, inside, offset); err != nil {
			return err
		}
		text := tree.Node(inside.key).Text
		at := offset - inside.start
		tree.SetText(inside.key, text[:at]+s+text[at:])
		return nil
	case plain(tree, left):
		tree.SetText(left.key, tree.Node(left.key).Text+s)
		return nil
	case plain(tree, right):
		tree.SetText(right.key, s+tree.Node(right.key).Text)
		return nil
	}
	return insertNode(tree, block, leaves, offset, tree.CreateText(s))
}

// insertNode places a detached inline node at offset, splitting a text
// leaf when offset falls inside one.
func insertNode(tree *doctree.Tree, block doctree.Key, leaves []leaf, offset int, k doctree.Key) error {
	inside, left, right := split(leaves, offset)
	switch {
	case inside != nil:
		if err := checkRune(tree, inside, offset); err != nil {
			return err
		}
		parts := tree.SplitText(inside.key, offset-inside.start)
		return tree.InsertAfter(parts[0], k)
	case left != nil:
		return tree.InsertAfter(left.anchorAt(tree, true), k)
	case right != nil:
		return tree.InsertBefore(right.anchorAt(tree, false), k)
	}
	return tree.Append(block, k)
}

// anchorAt picks the node to insert next to. A leaf at the outer edge of
// its link anchors on the link itself.
func (l *leaf) anchorAt(tree *doctree.Tree, after bool) doctree.Key {
	if l.link == doctree.NoKey {
		return l.key
	}
	if after && tree.LastChild(l.link) == l.key {
		return l.link
	}
	if !after && tree.FirstChild(l.link) == l.key {
		return l.link
	}
	return l.key
}

// deleteRange removes the bytes in [from, to). Manual links left without
// content are removed with it; empty auto links are unwrapped, and
// reported, when the update settles.
func deleteRange(tree *doctree.Tree, leaves []leaf, from, to int) error {
	if from == to {
		return nil
	}
	if err := deleteLeaves(tree, leaves, from, to); err != nil {
		return err
	}
	for _, l := range leaves {
		if l.link == doctree.NoKey || tree.IsAutoLink(l.link) {
			continue
		}
		if tree.IsAttached(l.link) && tree.ChildCount(l.link) == 0 {
			if err := tree.Remove(l.link); err != nil {
				return err
			}
		}
	}
	return nil
}

func deleteLeaves(tree *doctree.Tree, leaves []leaf, from, to int) error {
	for i := range leaves {
		l := &leaves[i]
		lo, hi := max(from, l.start), min(to, l.end)
		if lo >= hi {
			continue
		}
		if tree.IsLineBreak(l.key) {
			if err := tree.Remove(l.key); err != nil {
				return err
			}
			continue
		}
		if err := checkRune(tree, l, lo); err != nil {
			return err
		}
		text := tree.Node(l.key).Text
		if hi < l.end && !utf8.RuneStart(text[hi-l.start]) {
			return invalid("offset %d splits a character", hi)
		}
		rest := text[:lo-l.start] + text[hi-l.start:]
		if rest == "" {
			if err := tree.Remove(l.key); err != nil {
				return err
			}
			continue
		}
		tree.SetText(l.key, rest)
	}
	return nil
}

// toggleFormat clears f on the range when every covered text run already
// has it and sets it otherwise.
func toggleFormat(tree *doctree.Tree, leaves []leaf, from, to int, f doctree.Format) error {
	type piece struct {
		l      *leaf
		lo, hi int
	}
	var pieces []piece
	all := true
	for i := range leaves {
		l := &leaves[i]
		lo, hi := max(from, l.start), min(to, l.end)
		if lo >= hi || !tree.IsText(l.key) {
			continue
		}
		pieces = append(pieces, piece{l, lo, hi})
		if !tree.Node(l.key).Format.Has(f) {
			all = false
		}
	}
	for _, p := range pieces {
		if err := checkRune(tree, p.l, p.lo); err != nil {
			return err
		}
		text := tree.Node(p.l.key).Text
		if p.hi < p.l.end && !utf8.RuneStart(text[p.hi-p.l.start]) {
			return invalid("offset %d splits a character", p.hi)
		}
	}
	for _, p := range pieces {
		parts := tree.SplitText(p.l.key, p.lo-p.l.start, p.hi-p.l.start)
		target := parts[0]
		if p.lo > p.l.start {
			target = parts[1]
		}
		cur := tree.Node(target).Format
		if all {
			tree.SetFormat(target, cur&^f)
		} else {
			tree.SetFormat(target, cur|f)
		}
	}
	return nil
}
