package autolink

import (
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/doclink/internal/doctree"
)

func isSeparator(r rune) bool {
	switch r {
	case '.', ',', ';':
		return true
	}
	return unicode.IsSpace(r)
}

func startsWithSeparator(text string) bool {
	r, size := utf8.DecodeRuneInString(text)
	return size > 0 && isSeparator(r)
}

func endsWithSeparator(text string) bool {
	r, size := utf8.DecodeLastRuneInString(text)
	return size > 0 && isSeparator(r)
}

// isPreviousNodeValid reports whether whatever precedes k ends a word:
// nothing, a line break, or text ending in a separator.
func isPreviousNodeValid(tree *doctree.Tree, k doctree.Key) bool {
	prev := tree.PrevSibling(k)
	if tree.IsContainer(prev) {
		prev = tree.LastDescendant(prev)
	}
	return prev == doctree.NoKey ||
		tree.IsLineBreak(prev) ||
		(tree.IsText(prev) && endsWithSeparator(tree.Node(prev).Text))
}

// isNextNodeValid is the mirror of isPreviousNodeValid.
func isNextNodeValid(tree *doctree.Tree, k doctree.Key) bool {
	next := tree.NextSibling(k)
	if tree.IsContainer(next) {
		next = tree.FirstDescendant(next)
	}
	return next == doctree.NoKey ||
		tree.IsLineBreak(next) ||
		(tree.IsText(next) && startsWithSeparator(tree.Node(next).Text))
}

// isContentAroundValid checks both edges of text[start:end]. Edges inside
// text look at the neighboring rune; edges at the ends of text look at the
// neighbor nodes of first and last.
func isContentAroundValid(tree *doctree.Tree, start, end int, text string, first, last doctree.Key) bool {
	var before bool
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		before = isSeparator(r)
	} else {
		before = isPreviousNodeValid(tree, first)
	}
	if !before {
		return false
	}

	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		return isSeparator(r)
	}
	return isNextNodeValid(tree, last)
}
