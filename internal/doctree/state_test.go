package doctree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RoundTrip(t *testing.T) {
	tree := New("doc")
	h := tree.CreateHeading(2)
	require.NoError(t, tree.Append(tree.Root(), h))
	require.NoError(t, tree.Append(h, tree.CreateText("Intro")))

	p, keys := paragraph(t, tree, "see ")
	tree.SetFormat(keys[0], FormatItalic)
	link := tree.CreateAutoLink(LinkAttrs{URL: "https://www.a.com", Target: "_blank"})
	require.NoError(t, tree.Append(p, link))
	require.NoError(t, tree.Append(link, tree.CreateText("www.a.com")))
	require.NoError(t, tree.Append(p, tree.CreateLineBreak()))
	token := tree.CreateText("@mention")
	tree.SetMode(token, ModeToken)
	require.NoError(t, tree.Append(p, token))

	state := tree.State()
	assert.Equal(t, "root", state.Root.Type)
	require.Len(t, state.Root.Children, 2)
	assert.Equal(t, NodeState{Type: "heading", Level: 2, Children: []NodeState{{Type: "text", Text: "Intro"}}}, state.Root.Children[0])
	assert.Equal(t, "token", state.Root.Children[1].Children[3].Mode)

	rebuilt, err := FromState(state)
	require.NoError(t, err)
	assert.Equal(t, state, rebuilt.State())
	assert.Equal(t, tree.TextContent(tree.Root()), rebuilt.TextContent(rebuilt.Root()))
}

func TestFromState_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		state State
	}{
		{"wrong top", State{Root: NodeState{Type: "paragraph"}}},
		{"inline under root", State{Root: NodeState{Children: []NodeState{{Type: "linebreak"}}}}},
		{"element inside link", State{Root: NodeState{Children: []NodeState{
			{Type: "paragraph", Children: []NodeState{{Type: "link", Children: []NodeState{{Type: "quote"}}}}},
		}}}},
		{"heading level", State{Root: NodeState{Children: []NodeState{{Type: "heading", Level: 9}}}}},
		{"missing type", State{Root: NodeState{Children: []NodeState{{}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromState(tt.state)
			assert.True(t, errors.Is(err, ErrInvalidState), "got %v", err)
		})
	}
}
