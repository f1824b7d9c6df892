package doctree

import "errors"

var (
	ErrUnknownNode  = errors.New("doctree: unknown node")
	ErrNotContainer = errors.New("doctree: node cannot have children")
	ErrDetached     = errors.New("doctree: node has no parent")
	ErrCycle        = errors.New("doctree: node would contain itself")
)

// detach unlinks k from its parent. Former neighbors and the parent are
// marked dirty.
func (t *Tree) detach(k Key) {
	n := t.nodes[k]
	if n.parent == NoKey {
		return
	}
	parent := t.nodes[n.parent]
	if n.prev != NoKey {
		t.nodes[n.prev].next = n.next
		t.touch(n.prev)
	} else {
		parent.first = n.next
	}
	if n.next != NoKey {
		t.nodes[n.next].prev = n.prev
		t.touch(n.next)
	} else {
		parent.last = n.prev
	}
	parent.size--
	t.touch(parent.Key)
	n.parent, n.prev, n.next = NoKey, NoKey, NoKey
	t.touch(k)
}

// link places detached k between prev and next under parent.
func (t *Tree) link(k, parent, prev, next Key) {
	n := t.nodes[k]
	p := t.nodes[parent]
	n.parent, n.prev, n.next = parent, prev, next
	if prev != NoKey {
		t.nodes[prev].next = k
		t.touch(prev)
	} else {
		p.first = k
	}
	if next != NoKey {
		t.nodes[next].prev = k
		t.touch(next)
	} else {
		p.last = k
	}
	p.size++
	t.touch(parent)
	t.touch(k)
}

func (t *Tree) checkMove(k, target Key) error {
	if t.Node(k) == nil || t.Node(target) == nil {
		return ErrUnknownNode
	}
	if k == t.root {
		return ErrCycle
	}
	for a := target; a != NoKey; a = t.nodes[a].parent {
		if a == k {
			return ErrCycle
		}
	}
	return nil
}

// Append moves child to the end of parent's children.
func (t *Tree) Append(parent, child Key) error {
	if err := t.checkMove(child, parent); err != nil {
		return err
	}
	if !t.IsContainer(parent) {
		return ErrNotContainer
	}
	t.detach(child)
	t.link(child, parent, t.nodes[parent].last, NoKey)
	return nil
}

// InsertAfter moves k to directly follow ref.
func (t *Tree) InsertAfter(ref, k Key) error {
	if ref == k {
		return nil
	}
	if err := t.checkMove(k, ref); err != nil {
		return err
	}
	if t.nodes[ref].parent == NoKey {
		return ErrDetached
	}
	t.detach(k)
	r := t.nodes[ref]
	t.link(k, r.parent, ref, r.next)
	return nil
}

// InsertBefore moves k to directly precede ref.
func (t *Tree) InsertBefore(ref, k Key) error {
	if ref == k {
		return nil
	}
	if err := t.checkMove(k, ref); err != nil {
		return err
	}
	if t.nodes[ref].parent == NoKey {
		return ErrDetached
	}
	t.detach(k)
	r := t.nodes[ref]
	t.link(k, r.parent, r.prev, ref)
	return nil
}

// Remove detaches k together with its subtree.
func (t *Tree) Remove(k Key) error {
	if t.Node(k) == nil {
		return ErrUnknownNode
	}
	if k == t.root {
		return ErrCycle
	}
	t.detach(k)
	return nil
}

// Replace puts with in the position of old and detaches old.
func (t *Tree) Replace(old, with Key) error {
	if old == with {
		return nil
	}
	if err := t.InsertAfter(old, with); err != nil {
		return err
	}
	t.detach(old)
	return nil
}

// ReplaceWithChildren splices the children of k into k's position and
// removes k. It returns the moved children.
func (t *Tree) ReplaceWithChildren(k Key) ([]Key, error) {
	n := t.Node(k)
	if n == nil {
		return nil, ErrUnknownNode
	}
	if n.parent == NoKey {
		return nil, ErrDetached
	}
	children := t.Children(k)
	for i := len(children) - 1; i >= 0; i-- {
		if err := t.InsertAfter(k, children[i]); err != nil {
			return nil, err
		}
	}
	t.detach(k)
	return children, nil
}
