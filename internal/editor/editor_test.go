package editor

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(t *testing.T, texts ...string) (*doctree.Tree, doctree.Key) {
	t.Helper()
	tree := doctree.New("test")
	p := tree.CreateElement("paragraph")
	require.NoError(t, tree.Append(tree.Root(), p))
	for _, s := range texts {
		require.NoError(t, tree.Append(p, tree.CreateText(s)))
	}
	return tree, p
}

func TestHasNodes(t *testing.T) {
	tree, _ := newDoc(t)
	ed := New(tree, Options{Nodes: []doctree.NodeType{doctree.TypeLink}})
	assert.True(t, ed.HasNodes(doctree.TypeText, doctree.TypeLink))
	assert.False(t, ed.HasNodes(doctree.TypeLink, doctree.TypeAutoLink))
}

func TestUpdate_RunsTransformsToFixedPoint(t *testing.T) {
	tree, p := newDoc(t, "hello")
	ed := New(tree, Options{})

	calls := 0
	ed.RegisterNodeTransform(doctree.KindText, func(tree *doctree.Tree, k doctree.Key) {
		calls++
		n := tree.Node(k)
		if !strings.HasSuffix(n.Text, "!!!") {
			tree.SetText(k, n.Text+"!")
		}
	})

	require.NoError(t, ed.Update(nil))
	assert.Equal(t, "hello!!!", tree.TextContent(p))
	assert.Equal(t, 4, calls, "three mutating passes plus one settling pass")
}

func TestUpdate_DetectsEndlessTransforms(t *testing.T) {
	tree, _ := newDoc(t, "x")
	ed := New(tree, Options{MaxPasses: 5})
	ed.RegisterNodeTransform(doctree.KindText, func(tree *doctree.Tree, k doctree.Key) {
		tree.SetText(k, tree.Node(k).Text+"x")
	})

	err := ed.Update(nil)
	assert.ErrorIs(t, err, ErrTransformLoop)
}

func TestUpdate_CallbackError(t *testing.T) {
	tree, _ := newDoc(t)
	ed := New(tree, Options{})
	boom := errors.New("boom")
	err := ed.Update(func(*doctree.Tree) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRegisterNodeTransform_Dispose(t *testing.T) {
	tree, _ := newDoc(t, "a")
	ed := New(tree, Options{})
	calls := 0
	dispose := ed.RegisterNodeTransform(doctree.KindText, func(*doctree.Tree, doctree.Key) { calls++ })

	require.NoError(t, ed.Update(nil))
	assert.Equal(t, 1, calls)

	dispose()
	dispose()
	tree.MarkAllDirty()
	require.NoError(t, ed.Update(nil))
	assert.Equal(t, 1, calls)
}

func TestNormalize_MergesEqualSiblings(t *testing.T) {
	tree, p := newDoc(t, "ab", "", "cd", "ef")
	kids := tree.Children(p)
	tree.SetFormat(kids[3], doctree.FormatBold)
	ed := New(tree, Options{})

	require.NoError(t, ed.Update(nil))
	kids = tree.Children(p)
	require.Len(t, kids, 2)
	assert.Equal(t, "abcd", tree.Node(kids[0]).Text)
	assert.Equal(t, "ef", tree.Node(kids[1]).Text)
}

func TestNormalize_KeepsTokensAndUnmergeable(t *testing.T) {
	tree, p := newDoc(t, "a", "b", "c")
	kids := tree.Children(p)
	tree.SetMode(kids[1], doctree.ModeToken)
	tree.SetDetail(kids[2], doctree.DetailUnmergeable)
	ed := New(tree, Options{})

	require.NoError(t, ed.Update(nil))
	assert.Len(t, tree.Children(p), 3)
}

func TestMergeRegister_ReverseOrder(t *testing.T) {
	var order []int
	dispose := MergeRegister(
		func() { order = append(order, 1) },
		nil,
		func() { order = append(order, 2) },
	)
	dispose()
	assert.Equal(t, []int{2, 1}, order)
}
