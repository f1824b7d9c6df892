package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds:
//
//	# Links
//	see <bold>www.a.com</bold> [docs](https://go.dev) <autolink www.a.com>
//	- one
//	- two
func sample(t *testing.T) *doctree.Tree {
	t.Helper()
	tree := doctree.New("sample")
	root := tree.Root()

	h := tree.CreateHeading(1)
	require.NoError(t, tree.Append(root, h))
	require.NoError(t, tree.Append(h, tree.CreateText("Links")))

	p := tree.CreateElement("paragraph")
	require.NoError(t, tree.Append(root, p))
	require.NoError(t, tree.Append(p, tree.CreateText("see ")))
	manual := tree.CreateLink(doctree.LinkAttrs{URL: "https://go.dev"})
	require.NoError(t, tree.Append(p, manual))
	require.NoError(t, tree.Append(manual, tree.CreateFormattedText("docs", doctree.FormatBold)))
	require.NoError(t, tree.Append(p, tree.CreateText(" or ")))
	auto := tree.CreateAutoLink(doctree.LinkAttrs{URL: "https://www.a.com", Target: "_blank"})
	require.NoError(t, tree.Append(p, auto))
	require.NoError(t, tree.Append(auto, tree.CreateText("www.a.com")))
	require.NoError(t, tree.Append(p, tree.CreateLineBreak()))
	require.NoError(t, tree.Append(p, tree.CreateText("a_b")))

	for _, s := range []string{"one", "two"} {
		li := tree.CreateElement("listitem")
		require.NoError(t, tree.Append(root, li))
		require.NoError(t, tree.Append(li, tree.CreateText(s)))
	}
	return tree
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatHTML,
		"HTML":     FormatHTML,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"json":     FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestHTML(t *testing.T) {
	out, err := HTML(sample(t), Options{})
	require.NoError(t, err)

	want := `<h1>Links</h1>` +
		`<p>see <a href="https://go.dev"><strong>docs</strong></a> or ` +
		`<a href="https://www.a.com" target="_blank" data-autolink="true">www.a.com</a><br/>a_b</p>` +
		`<ul><li>one</li><li>two</li></ul>`
	assert.Equal(t, want, out)
}

func TestHTML_Sanitize(t *testing.T) {
	tree := doctree.New("x")
	p := tree.CreateElement("paragraph")
	require.NoError(t, tree.Append(tree.Root(), p))
	bad := tree.CreateLink(doctree.LinkAttrs{URL: "javascript:alert(1)"})
	require.NoError(t, tree.Append(p, bad))
	require.NoError(t, tree.Append(bad, tree.CreateText("click")))
	good := tree.CreateAutoLink(doctree.LinkAttrs{URL: "https://www.example.com"})
	require.NoError(t, tree.Append(p, good))
	require.NoError(t, tree.Append(good, tree.CreateText("<b>www.example.com</b>")))

	out, err := HTML(tree, Options{Sanitize: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "javascript")
	assert.Contains(t, out, `href="https://www.example.com"`)
	assert.Contains(t, out, "&lt;b&gt;www.example.com&lt;/b&gt;")
	assert.NotContains(t, out, "data-autolink")
}

func TestMarkdown(t *testing.T) {
	got := Markdown(sample(t))
	want := "# Links\n\n" +
		"see [**docs**](https://go.dev) or [www.a.com](https://www.a.com)\\\na\\_b\n\n" +
		"- one\n- two\n"
	assert.Equal(t, want, got)
}

func TestMarkdown_Formats(t *testing.T) {
	tree := doctree.New("x")
	p := tree.CreateElement("paragraph")
	require.NoError(t, tree.Append(tree.Root(), p))
	require.NoError(t, tree.Append(p, tree.CreateFormattedText("both ", doctree.FormatBold|doctree.FormatItalic)))
	require.NoError(t, tree.Append(p, tree.CreateFormattedText("x*y", doctree.FormatCode)))
	require.NoError(t, tree.Append(p, tree.CreateFormattedText(" gone", doctree.FormatStrikethrough)))
	auto := tree.CreateAutoLink(doctree.LinkAttrs{URL: "https://go.dev"})
	require.NoError(t, tree.Append(p, tree.CreateText(" ")))
	require.NoError(t, tree.Append(p, auto))
	require.NoError(t, tree.Append(auto, tree.CreateText("https://go.dev")))

	assert.Equal(t, "***both*** `x*y` ~~gone~~ <https://go.dev>\n", Markdown(tree))
}

func TestRender_JSON(t *testing.T) {
	tree := sample(t)
	data, err := Render(tree, FormatJSON, Options{})
	require.NoError(t, err)

	var state doctree.State
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, "sample", state.Title)
	assert.Equal(t, tree.State(), state)
	assert.True(t, strings.Contains(string(data), `"type":"autolink"`))
}
