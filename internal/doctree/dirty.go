package doctree

import "sort"

// MarkDirty schedules k for transforms without changing it.
func (t *Tree) MarkDirty(k Key) {
	if t.Node(k) != nil {
		t.dirty[k] = struct{}{}
	}
}

// MarkAllDirty schedules every attached node, as on first load.
func (t *Tree) MarkAllDirty() {
	t.Walk(t.root, func(k Key) bool {
		t.dirty[k] = struct{}{}
		return true
	})
}

// HasDirty reports whether any node changed since the last drain.
func (t *Tree) HasDirty() bool { return len(t.dirty) > 0 }

// DrainDirty returns the dirty keys in allocation order and clears the set.
func (t *Tree) DrainDirty() []Key {
	keys := make([]Key, 0, len(t.dirty))
	for k := range t.dirty {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	clear(t.dirty)
	return keys
}

// Clock returns a counter that increases on every mutation of the tree.
func (t *Tree) Clock() uint64 { return t.clock }
