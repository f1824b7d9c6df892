// Package editor hosts a doctree.Tree and runs node transforms over it.
//
// Every Update runs a callback that mutates the tree and then drains the
// tree's dirty set: dirty text nodes are normalized and every transform
// registered for the kind of a dirty node is invoked. Transforms may mutate
// the tree again; the loop repeats until a pass leaves nothing dirty.
package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/doclink/internal/doctree"
)

// DefaultMaxPasses bounds the transform loop of a single Update.
const DefaultMaxPasses = 100

// ErrTransformLoop is returned when transforms keep dirtying the tree.
var ErrTransformLoop = errors.New("editor: transforms did not reach a fixed point")

// TransformFunc is called once per dirty node of the registered kind.
type TransformFunc = func(tree *doctree.Tree, key doctree.Key)

// Options configures an Editor.
type Options struct {
	// Nodes lists the optional node types the host supports. Root, element,
	// text and line break are always supported.
	Nodes     []doctree.NodeType
	MaxPasses int
	Logger    *slog.Logger
}

type transform struct {
	id int
	fn TransformFunc
}

// Editor owns a tree and its registered transforms.
type Editor struct {
	tree       *doctree.Tree
	nodes      map[doctree.NodeType]bool
	transforms map[doctree.Kind][]transform
	nextID     int
	maxPasses  int
	log        *slog.Logger
	updating   bool
}

// New wraps tree in an editor.
func New(tree *doctree.Tree, opts Options) *Editor {
	e := &Editor{
		tree: tree,
		nodes: map[doctree.NodeType]bool{
			doctree.TypeRoot:      true,
			doctree.TypeElement:   true,
			doctree.TypeText:      true,
			doctree.TypeLineBreak: true,
		},
		transforms: make(map[doctree.Kind][]transform),
		maxPasses:  opts.MaxPasses,
		log:        opts.Logger,
	}
	for _, t := range opts.Nodes {
		e.nodes[t] = true
	}
	if e.maxPasses <= 0 {
		e.maxPasses = DefaultMaxPasses
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	return e
}

// Tree returns the edited tree.
func (e *Editor) Tree() *doctree.Tree { return e.tree }

// HasNodes reports whether every given node type is supported.
func (e *Editor) HasNodes(types ...doctree.NodeType) bool {
	for _, t := range types {
		if !e.nodes[t] {
			return false
		}
	}
	return true
}

// RegisterNodeTransform runs fn for every dirty node of kind. The returned
// function removes the transform; calling it more than once is harmless.
func (e *Editor) RegisterNodeTransform(kind doctree.Kind, fn TransformFunc) func() {
	e.nextID++
	id := e.nextID
	e.transforms[kind] = append(e.transforms[kind], transform{id: id, fn: fn})
	return func() {
		list := e.transforms[kind]
		for i, t := range list {
			if t.id == id {
				e.transforms[kind] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Update applies fn to the tree and runs transforms to a fixed point.
// Nested calls from inside a transform or callback just run fn; the outer
// Update settles the result.
func (e *Editor) Update(fn func(tree *doctree.Tree) error) error {
	if fn != nil {
		if err := fn(e.tree); err != nil {
			return fmt.Errorf("update: %w", err)
		}
	}
	if e.updating {
		return nil
	}
	e.updating = true
	defer func() { e.updating = false }()
	return e.settle()
}

func (e *Editor) settle() error {
	for pass := 0; ; pass++ {
		if !e.tree.HasDirty() {
			return nil
		}
		if pass >= e.maxPasses {
			e.log.Warn("transform loop aborted", "passes", pass, "title", e.tree.Title)
			return ErrTransformLoop
		}
		for _, k := range e.tree.DrainDirty() {
			if !e.tree.IsAttached(k) {
				continue
			}
			kind := e.tree.Kind(k)
			if kind == doctree.KindText {
				if k = normalizeText(e.tree, k); k == doctree.NoKey {
					continue
				}
			}
			for _, t := range e.snapshot(kind) {
				t.fn(e.tree, k)
				if !e.tree.IsAttached(k) || e.tree.Kind(k) != kind {
					break
				}
			}
		}
	}
}

// snapshot copies the transform list so transforms may deregister while
// running.
func (e *Editor) snapshot(kind doctree.Kind) []transform {
	list := e.transforms[kind]
	if len(list) == 0 {
		return nil
	}
	out := make([]transform, len(list))
	copy(out, list)
	return out
}

// MergeRegister combines disposers into one that runs them in reverse order.
func MergeRegister(fns ...func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			if fns[i] != nil {
				fns[i]()
			}
		}
	}
}
