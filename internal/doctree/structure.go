package doctree

import "strings"

// Parent returns the parent of k, or NoKey when detached.
func (t *Tree) Parent(k Key) Key {
	if n := t.Node(k); n != nil {
		return n.parent
	}
	return NoKey
}

// PrevSibling returns the sibling before k.
func (t *Tree) PrevSibling(k Key) Key {
	if n := t.Node(k); n != nil {
		return n.prev
	}
	return NoKey
}

// NextSibling returns the sibling after k.
func (t *Tree) NextSibling(k Key) Key {
	if n := t.Node(k); n != nil {
		return n.next
	}
	return NoKey
}

// FirstChild returns the first child of k.
func (t *Tree) FirstChild(k Key) Key {
	if n := t.Node(k); n != nil {
		return n.first
	}
	return NoKey
}

// LastChild returns the last child of k.
func (t *Tree) LastChild(k Key) Key {
	if n := t.Node(k); n != nil {
		return n.last
	}
	return NoKey
}

// ChildCount returns the number of children of k.
func (t *Tree) ChildCount(k Key) int {
	if n := t.Node(k); n != nil {
		return n.size
	}
	return 0
}

// Children returns the children of k in order. The slice is a copy.
func (t *Tree) Children(k Key) []Key {
	n := t.Node(k)
	if n == nil {
		return nil
	}
	out := make([]Key, 0, n.size)
	for c := n.first; c != NoKey; c = t.nodes[c].next {
		out = append(out, c)
	}
	return out
}

// FirstDescendant walks down the first children of k while they are
// containers. It returns NoKey when k has no children.
func (t *Tree) FirstDescendant(k Key) Key {
	node := t.FirstChild(k)
	for t.IsContainer(node) {
		child := t.FirstChild(node)
		if child == NoKey {
			break
		}
		node = child
	}
	return node
}

// LastDescendant walks down the last children of k while they are
// containers. It returns NoKey when k has no children.
func (t *Tree) LastDescendant(k Key) Key {
	node := t.LastChild(k)
	for t.IsContainer(node) {
		child := t.LastChild(node)
		if child == NoKey {
			break
		}
		node = child
	}
	return node
}

// IsAttached reports whether k is reachable from the root.
func (t *Tree) IsAttached(k Key) bool {
	for n := t.Node(k); n != nil; n = t.Node(n.parent) {
		if n.Key == t.root {
			return true
		}
	}
	return false
}

// TopLevel returns the ancestor of k that is a direct child of the root.
func (t *Tree) TopLevel(k Key) Key {
	for n := t.Node(k); n != nil; n = t.Node(n.parent) {
		if n.parent == t.root {
			return n.Key
		}
	}
	return NoKey
}

// TextContent returns the plain text of k. Line breaks become "\n" and
// sibling blocks are separated by a blank line.
func (t *Tree) TextContent(k Key) string {
	var sb strings.Builder
	t.writeText(&sb, k)
	return sb.String()
}

func (t *Tree) writeText(sb *strings.Builder, k Key) {
	n := t.Node(k)
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText:
		sb.WriteString(n.Text)
	case KindLineBreak:
		sb.WriteByte('\n')
	default:
		for c := n.first; c != NoKey; c = t.nodes[c].next {
			child := t.nodes[c]
			t.writeText(sb, c)
			if !child.IsInline() && child.next != NoKey {
				sb.WriteString("\n\n")
			}
		}
	}
}

// TextLen returns the byte length of TextContent(k).
func (t *Tree) TextLen(k Key) int {
	return len(t.TextContent(k))
}

// Walk visits k and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func (t *Tree) Walk(k Key, fn func(Key) bool) {
	n := t.Node(k)
	if n == nil {
		return
	}
	if !fn(k) {
		return
	}
	for c := n.first; c != NoKey; {
		next := t.nodes[c].next
		t.Walk(c, fn)
		c = next
	}
}

// TextNodes returns all attached text nodes in document order.
func (t *Tree) TextNodes() []Key {
	var out []Key
	t.Walk(t.root, func(k Key) bool {
		if t.IsText(k) {
			out = append(out, k)
		}
		return true
	})
	return out
}
