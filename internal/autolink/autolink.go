// Package autolink turns URL and e-mail text inside a document tree into
// AutoLink nodes and keeps those links in sync while the text around them is
// edited.
//
// The package registers a text-node transform on a host editor, plus a link
// transform that re-checks links whose neighbors changed. The host
// guarantees that transforms re-run until the tree stops changing, so every
// handler here is a synchronous, idempotent re-evaluation of one node.
package autolink

import (
	"github.com/dgallion1/doclink/internal/doctree"
)

// ChangeHandler is told about every link lifecycle event: created
// (url, ""), removed ("", prevURL) and changed (url, prevURL). Without an
// AttributeHandler, rel and target changes are reported the same way. An
// empty string stands for no value.
type ChangeHandler func(url, prevURL string)

// AttributeHandler is told when the rel or target attribute of the link
// at url is reconciled with its matcher. name is "rel" or "target".
type AttributeHandler func(url, name, value, prev string)

// Options configure RegisterWithOptions.
type Options struct {
	Matchers []Matcher // nil selects DefaultMatchers
	OnChange ChangeHandler
	// OnAttribute, when set, receives attribute changes instead of OnChange.
	OnAttribute AttributeHandler
}

// Host is the editor capability the engine needs.
type Host interface {
	HasNodes(types ...doctree.NodeType) bool
	RegisterNodeTransform(kind doctree.Kind, fn func(tree *doctree.Tree, key doctree.Key)) func()
}

// ConfigurationError reports a host that cannot carry auto links.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "autolink: " + e.Msg }

// Register installs the auto-link transforms on host. A nil matcher list
// selects DefaultMatchers and a nil onChange discards events. The returned
// function deregisters them.
func Register(host Host, matchers []Matcher, onChange ChangeHandler) (func(), error) {
	return RegisterWithOptions(host, Options{Matchers: matchers, OnChange: onChange})
}

// RegisterWithOptions is Register with a separate attribute callback.
func RegisterWithOptions(host Host, opts Options) (func(), error) {
	if !host.HasNodes(doctree.TypeAutoLink) {
		return nil, &ConfigurationError{Msg: "AutoLinkNode not registered on editor"}
	}
	l := &linker{matchers: opts.Matchers, onChange: opts.OnChange, onAttribute: opts.OnAttribute}
	if l.matchers == nil {
		l.matchers = DefaultMatchers()
	}
	if l.onChange == nil {
		l.onChange = func(string, string) {}
	}
	disposeText := host.RegisterNodeTransform(doctree.KindText, l.transform)
	disposeLink := host.RegisterNodeTransform(doctree.KindLink, l.linkTransform)
	return func() {
		disposeLink()
		disposeText()
	}, nil
}

type linker struct {
	matchers    []Matcher
	onChange    ChangeHandler
	onAttribute AttributeHandler
}

func (l *linker) attributeChanged(url, name, value, prev string) {
	if l.onAttribute != nil {
		l.onAttribute(url, name, value, prev)
		return
	}
	l.onChange(value, prev)
}

func (l *linker) transform(tree *doctree.Tree, k doctree.Key) {
	parent := tree.Parent(k)
	if tree.IsAutoLink(parent) {
		l.handleLinkEdit(tree, parent)
		return
	}
	if tree.IsLink(parent) {
		return
	}
	if tree.IsSimpleText(k) &&
		(startsWithSeparator(tree.Node(k).Text) || !tree.IsAutoLink(tree.PrevSibling(k))) {
		l.handleLinkCreation(tree, k)
	}
	l.handleBadNeighbors(tree, k)
}

// linkTransform re-validates a changed auto link on the next pass by
// scheduling its outer text children. Their neighbors may still be repaired
// in the current pass. A link without text at its edges is checked at once.
func (l *linker) linkTransform(tree *doctree.Tree, link doctree.Key) {
	if !tree.IsAutoLink(link) {
		return
	}
	scheduled := false
	for _, c := range []doctree.Key{tree.FirstChild(link), tree.LastChild(link)} {
		if tree.IsText(c) {
			tree.MarkDirty(c)
			scheduled = true
		}
	}
	if !scheduled {
		l.handleLinkEdit(tree, link)
	}
}

// handleLinkCreation wraps every valid match in the text of k, left to
// right. Invalid matches are skipped by moving a cursor past them inside the
// node that is still plain text.
func (l *linker) handleLinkCreation(tree *doctree.Tree, k doctree.Key) {
	nodeText := tree.Node(k).Text
	text := nodeText
	remaining := k
	consumed := 0        // bytes of nodeText already split off into links
	invalidMatchEnd := 0 // bytes of remaining skipped by invalid matches

	for {
		match := FindFirstMatch(text, l.matchers)
		if match == nil || match.Length == 0 {
			return
		}
		matchStart := invalidMatchEnd + match.Index
		matchEnd := matchStart + match.Length

		valid := isContentAroundValid(tree,
			consumed+matchStart, consumed+matchEnd, nodeText, k, remaining)
		if !valid {
			invalidMatchEnd = matchEnd
			text = text[match.Index+match.Length:]
			continue
		}

		var linkText, rest doctree.Key
		if matchStart == 0 {
			parts := tree.SplitText(remaining, matchEnd)
			linkText, rest = parts[0], pick(parts, 1)
		} else {
			parts := tree.SplitText(remaining, matchStart, matchEnd)
			linkText, rest = parts[1], pick(parts, 2)
		}

		src := tree.Node(linkText)
		link := tree.CreateAutoLink(doctree.LinkAttrs{URL: match.URL})
		if match.Attributes != nil {
			tree.SetRel(link, match.Attributes.Rel)
			tree.SetTarget(link, match.Attributes.Target)
		}
		inner := tree.CreateFormattedText(match.Text, src.Format)
		tree.SetDetail(inner, src.Detail)
		tree.SetStyle(inner, src.Style)
		mustDo(tree.Append(link, inner))
		mustDo(tree.Replace(linkText, link))
		l.onChange(match.URL, "")

		consumed += matchEnd
		invalidMatchEnd = 0
		text = text[match.Index+match.Length:]
		if rest == doctree.NoKey {
			return
		}
		remaining = rest
	}
}

// handleLinkEdit re-validates an existing auto link and unwraps it when it
// no longer holds a single, well delimited match.
func (l *linker) handleLinkEdit(tree *doctree.Tree, link doctree.Key) {
	if !tree.IsAttached(link) || !tree.IsAutoLink(link) {
		return
	}

	if !hasSimpleChildren(tree, link) {
		l.unwrap(tree, link)
		return
	}

	text := tree.TextContent(link)
	match := FindFirstMatch(text, l.matchers)
	if match == nil || match.Text != text {
		l.unwrap(tree, link)
		return
	}

	if !isPreviousNodeValid(tree, link) || !isNextNodeValid(tree, link) {
		l.unwrap(tree, link)
		return
	}

	attrs := tree.Node(link).Link
	if attrs.URL != match.URL {
		tree.SetURL(link, match.URL)
		l.onChange(match.URL, attrs.URL)
	}

	if match.Attributes != nil {
		if attrs.Rel != match.Attributes.Rel {
			tree.SetRel(link, match.Attributes.Rel)
			l.attributeChanged(match.URL, "rel", match.Attributes.Rel, attrs.Rel)
		}
		if attrs.Target != match.Attributes.Target {
			tree.SetTarget(link, match.Attributes.Target)
			l.attributeChanged(match.URL, "target", match.Attributes.Target, attrs.Target)
		}
	}
}

// handleBadNeighbors repairs links whose boundary was broken by typing in
// the adjacent text node k. Given the creation rules such neighbors can only
// be simple text nodes.
func (l *linker) handleBadNeighbors(tree *doctree.Tree, k doctree.Key) {
	if !tree.IsAttached(k) {
		return
	}
	prev := tree.PrevSibling(k)
	next := tree.NextSibling(k)
	text := tree.Node(k).Text

	if tree.IsAutoLink(prev) && !startsWithSeparator(text) {
		mustDo(tree.Append(prev, k))
		l.handleLinkEdit(tree, prev)
	}

	if tree.IsAutoLink(next) && !endsWithSeparator(text) {
		l.unwrap(tree, next)
		l.handleLinkEdit(tree, next)
	}
}

// unwrap replaces link with its children and reports the removal.
func (l *linker) unwrap(tree *doctree.Tree, link doctree.Key) {
	url := tree.Node(link).Link.URL
	_, err := tree.ReplaceWithChildren(link)
	mustDo(err)
	l.onChange("", url)
}

// hasSimpleChildren reports whether link holds only simple text nodes that
// share one format. A formatting split inside a link counts as structure.
func hasSimpleChildren(tree *doctree.Tree, link doctree.Key) bool {
	children := tree.Children(link)
	for i, c := range children {
		if !tree.IsSimpleText(c) {
			return false
		}
		if i > 0 && tree.Node(c).Format != tree.Node(children[0]).Format {
			return false
		}
	}
	return true
}

func pick(keys []doctree.Key, i int) doctree.Key {
	if i < len(keys) {
		return keys[i]
	}
	return doctree.NoKey
}

// mustDo panics on tree errors that can only come from a broken invariant:
// every key handed to the tree here was just read from it.
func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
