// Package doctree is an editable rich-text document tree.
//
// Nodes live in an arena owned by a Tree and are addressed by stable Keys.
// Parent, sibling and child relations are stored as keys, so moving,
// replacing and unwrapping a node only rewrites a handful of links. Every
// mutation bumps the node's version and marks the touched keys dirty so that
// a host (see package editor) can re-run transforms until the tree settles.
package doctree

// Key identifies a node inside its Tree. Keys are never reused.
type Key int

// NoKey is the zero Key; it never names a node.
const NoKey Key = 0

// Kind is the closed set of node kinds.
type Kind uint8

const (
	KindRoot Kind = iota + 1
	KindElement
	KindText
	KindLineBreak
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindLineBreak:
		return "linebreak"
	case KindLink:
		return "link"
	}
	return "unknown"
}

// LinkVariant separates links authored by hand from links maintained by
// pattern matching.
type LinkVariant uint8

const (
	LinkManual LinkVariant = iota
	LinkAuto
)

// NodeType is the registration name of a node class. A host declares which
// types it supports; plugins check for the ones they need.
type NodeType string

const (
	TypeRoot      NodeType = "root"
	TypeElement   NodeType = "element"
	TypeText      NodeType = "text"
	TypeLineBreak NodeType = "linebreak"
	TypeLink      NodeType = "link"
	TypeAutoLink  NodeType = "autolink"
)

// Format holds inline style flags of a text node.
type Format uint32

const (
	FormatBold Format = 1 << iota
	FormatItalic
	FormatStrikethrough
	FormatUnderline
	FormatCode
	FormatSubscript
	FormatSuperscript
)

// Has reports whether all flags in f2 are set.
func (f Format) Has(f2 Format) bool { return f&f2 == f2 }

// Detail holds non-visual text flags.
type Detail uint32

const (
	DetailDirectionless Detail = 1 << iota
	DetailUnmergeable
)

// TextMode controls how a text node behaves under editing. Only normal text
// is considered simple.
type TextMode uint8

const (
	ModeNormal TextMode = iota
	ModeToken
	ModeSegmented
)

// LinkAttrs are the attributes carried by a link node.
type LinkAttrs struct {
	URL    string
	Rel    string
	Target string
}

// Node is one arena slot. Fields are read-only for callers; mutate through
// Tree methods so versions and dirty tracking stay correct.
type Node struct {
	Key     Key
	Kind    Kind
	Tag     string // element tag, e.g. "paragraph", "heading", "quote", "listitem"
	Level   int    // heading level for Tag "heading"
	Text    string
	Format  Format
	Detail  Detail
	Mode    TextMode
	Style   string
	Variant LinkVariant
	Link    LinkAttrs

	parent Key
	prev   Key
	next   Key
	first  Key
	last   Key
	size   int

	version uint64
}

// Version returns the number of mutations applied to the node.
func (n *Node) Version() uint64 { return n.version }

// IsContainer reports whether the node can have children.
func (n *Node) IsContainer() bool {
	return n.Kind == KindRoot || n.Kind == KindElement || n.Kind == KindLink
}

// IsInline reports whether the node flows inside a block.
func (n *Node) IsInline() bool {
	return n.Kind == KindText || n.Kind == KindLineBreak || n.Kind == KindLink
}

// Type returns the registration type name of the node.
func (n *Node) Type() NodeType {
	switch n.Kind {
	case KindRoot:
		return TypeRoot
	case KindText:
		return TypeText
	case KindLineBreak:
		return TypeLineBreak
	case KindLink:
		if n.Variant == LinkAuto {
			return TypeAutoLink
		}
		return TypeLink
	}
	return TypeElement
}

// Tree is the root of an editable document.
type Tree struct {
	Title string

	nodes []*Node // index is the Key; slot 0 is unused
	root  Key
	clock uint64
	dirty map[Key]struct{}
}

// New creates an empty tree with a root node.
func New(title string) *Tree {
	t := &Tree{
		Title: title,
		nodes: []*Node{nil},
		dirty: make(map[Key]struct{}),
	}
	t.root = t.alloc(&Node{Kind: KindRoot})
	return t
}

// Root returns the key of the root node.
func (t *Tree) Root() Key { return t.root }

// Len returns the number of nodes ever allocated, attached or not.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

// Node returns the latest state of a node, or nil for an unknown key.
func (t *Tree) Node(k Key) *Node {
	if k <= NoKey || int(k) >= len(t.nodes) {
		return nil
	}
	return t.nodes[k]
}

// Kind returns the kind of k, or 0 for an unknown key.
func (t *Tree) Kind(k Key) Kind {
	if n := t.Node(k); n != nil {
		return n.Kind
	}
	return 0
}

// IsText reports whether k is a text node.
func (t *Tree) IsText(k Key) bool { return t.Kind(k) == KindText }

// IsLineBreak reports whether k is a line break.
func (t *Tree) IsLineBreak(k Key) bool { return t.Kind(k) == KindLineBreak }

// IsContainer reports whether k can have children.
func (t *Tree) IsContainer(k Key) bool {
	n := t.Node(k)
	return n != nil && n.IsContainer()
}

// IsLink reports whether k is a link of either variant.
func (t *Tree) IsLink(k Key) bool { return t.Kind(k) == KindLink }

// IsAutoLink reports whether k is a link maintained by pattern matching.
func (t *Tree) IsAutoLink(k Key) bool {
	n := t.Node(k)
	return n != nil && n.Kind == KindLink && n.Variant == LinkAuto
}

// IsSimpleText reports whether k is a normal-mode text node.
func (t *Tree) IsSimpleText(k Key) bool {
	n := t.Node(k)
	return n != nil && n.Kind == KindText && n.Mode == ModeNormal
}

// Version returns the mutation count of k.
func (t *Tree) Version(k Key) uint64 {
	if n := t.Node(k); n != nil {
		return n.version
	}
	return 0
}

func (t *Tree) alloc(n *Node) Key {
	n.Key = Key(len(t.nodes))
	t.nodes = append(t.nodes, n)
	t.touch(n.Key)
	return n.Key
}

// touch bumps the version of k and schedules it for transforms.
func (t *Tree) touch(k Key) {
	n := t.Node(k)
	if n == nil {
		return
	}
	t.clock++
	n.version++
	t.dirty[k] = struct{}{}
}

func (t *Tree) mustNode(k Key) *Node {
	n := t.Node(k)
	if n == nil {
		panic("doctree: unknown key")
	}
	return n
}
