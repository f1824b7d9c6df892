package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_Blocks(t *testing.T) {
	input := `<html><head><title>Links Page</title><style>p{}</style></head>
<body>
  <nav>skip me</nav>
  <h1>Welcome</h1>
  <p>See   <b>www.example.com</b>
     today.</p>
  <ul><li>one</li><li>two<br>lines</li></ul>
  loose text
  <pre>a  b
c</pre>
  <script>var x = "www.nope.com";</script>
</body></html>`

	tree, err := (&HTMLParser{}).Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Links Page" {
		t.Errorf("expected title %q, got %q", "Links Page", tree.Title)
	}
	equalStrings(t, []string{
		"h1: Welcome",
		"paragraph: See www.example.com today.",
		"listitem: one",
		"listitem: two\nlines",
		"paragraph: loose text",
		"code: a  b\nc",
	}, blockTexts(tree))

	para := tree.Children(tree.Root())[1]
	want := `"See " "www.example.com"/1 " today."`
	if got := inlines(tree, para); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestHTMLParser_Anchors(t *testing.T) {
	input := `<p>Read <a href="https://go.dev" target="_blank">the <em>docs</em></a>.</p>`
	tree, err := (&HTMLParser{}).Parse(strings.NewReader(input), "a.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "a" {
		t.Errorf("expected title %q, got %q", "a", tree.Title)
	}
	para := tree.Children(tree.Root())[0]
	want := `"Read " link(https://go.dev)["the " "docs"/2] "."`
	if got := inlines(tree, para); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	link := tree.Children(para)[1]
	if got := tree.Node(link).Link.Target; got != "_blank" {
		t.Errorf("expected target %q, got %q", "_blank", got)
	}
}
