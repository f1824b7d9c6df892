package doctree

import "sort"

// SetText replaces the payload of a text node.
func (t *Tree) SetText(k Key, text string) {
	n := t.mustNode(k)
	if n.Kind != KindText || n.Text == text {
		return
	}
	n.Text = text
	t.touch(k)
}

// SetFormat replaces the style flags of a text node.
func (t *Tree) SetFormat(k Key, f Format) {
	n := t.mustNode(k)
	if n.Format == f {
		return
	}
	n.Format = f
	t.touch(k)
}

// ToggleFormat flips the given style flags.
func (t *Tree) ToggleFormat(k Key, f Format) {
	t.SetFormat(k, t.mustNode(k).Format^f)
}

// SetDetail replaces the detail flags of a text node.
func (t *Tree) SetDetail(k Key, d Detail) {
	n := t.mustNode(k)
	if n.Detail == d {
		return
	}
	n.Detail = d
	t.touch(k)
}

// SetMode replaces the text mode.
func (t *Tree) SetMode(k Key, m TextMode) {
	n := t.mustNode(k)
	if n.Mode == m {
		return
	}
	n.Mode = m
	t.touch(k)
}

// SetStyle replaces the inline CSS style string.
func (t *Tree) SetStyle(k Key, style string) {
	n := t.mustNode(k)
	if n.Style == style {
		return
	}
	n.Style = style
	t.touch(k)
}

// SetURL updates a link's target URL.
func (t *Tree) SetURL(k Key, url string) {
	n := t.mustNode(k)
	if n.Kind != KindLink || n.Link.URL == url {
		return
	}
	n.Link.URL = url
	t.touch(k)
}

// SetRel updates a link's rel attribute. Empty clears it.
func (t *Tree) SetRel(k Key, rel string) {
	n := t.mustNode(k)
	if n.Kind != KindLink || n.Link.Rel == rel {
		return
	}
	n.Link.Rel = rel
	t.touch(k)
}

// SetTarget updates a link's target attribute. Empty clears it.
func (t *Tree) SetTarget(k Key, target string) {
	n := t.mustNode(k)
	if n.Kind != KindLink || n.Link.Target == target {
		return
	}
	n.Link.Target = target
	t.touch(k)
}

// SplitText cuts a text node at the given byte offsets. The first piece
// keeps the key of the original node; the other pieces are new siblings that
// inherit format, detail, mode and style. Offsets at 0, at the end or
// repeated are ignored, so no empty pieces are produced. It returns every
// piece in order.
func (t *Tree) SplitText(k Key, offsets ...int) []Key {
	n := t.mustNode(k)
	if n.Kind != KindText {
		return []Key{k}
	}
	text := n.Text
	cuts := make([]int, 0, len(offsets))
	for _, o := range offsets {
		if o > 0 && o < len(text) {
			cuts = append(cuts, o)
		}
	}
	sort.Ints(cuts)
	parts := make([]string, 0, len(cuts)+1)
	prev := 0
	for _, c := range cuts {
		if c == prev {
			continue
		}
		parts = append(parts, text[prev:c])
		prev = c
	}
	parts = append(parts, text[prev:])
	if len(parts) == 1 {
		return []Key{k}
	}

	t.SetText(k, parts[0])
	keys := make([]Key, 0, len(parts))
	keys = append(keys, k)
	after := k
	for _, p := range parts[1:] {
		sib := t.alloc(&Node{
			Kind:   KindText,
			Text:   p,
			Format: n.Format,
			Detail: n.Detail,
			Mode:   n.Mode,
			Style:  n.Style,
		})
		if n.parent != NoKey {
			r := t.nodes[after]
			t.link(sib, r.parent, after, r.next)
		}
		keys = append(keys, sib)
		after = sib
	}
	return keys
}
