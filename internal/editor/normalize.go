package editor

import "github.com/dgallion1/doclink/internal/doctree"

// normalizeText drops k if it is an empty simple text node and otherwise
// merges it with adjacent simple text siblings of identical style. It
// returns the surviving key, or NoKey when k was removed.
func normalizeText(tree *doctree.Tree, k doctree.Key) doctree.Key {
	if !tree.IsSimpleText(k) {
		return k
	}
	if tree.Node(k).Text == "" {
		_ = tree.Remove(k)
		return doctree.NoKey
	}
	if prev := tree.PrevSibling(k); canMerge(tree, prev, k) {
		tree.SetText(prev, tree.Node(prev).Text+tree.Node(k).Text)
		_ = tree.Remove(k)
		k = prev
	}
	for next := tree.NextSibling(k); canMerge(tree, k, next); next = tree.NextSibling(k) {
		tree.SetText(k, tree.Node(k).Text+tree.Node(next).Text)
		_ = tree.Remove(next)
	}
	return k
}

func canMerge(tree *doctree.Tree, a, b doctree.Key) bool {
	if !tree.IsSimpleText(a) || !tree.IsSimpleText(b) {
		return false
	}
	na, nb := tree.Node(a), tree.Node(b)
	if na.Detail&doctree.DetailUnmergeable != 0 || nb.Detail&doctree.DetailUnmergeable != 0 {
		return false
	}
	return na.Format == nb.Format && na.Style == nb.Style
}
