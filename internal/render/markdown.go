package render

import (
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "~", `\~`,
)

var mdMarks = []struct {
	format doctree.Format
	mark   string
}{
	{doctree.FormatBold, "**"},
	{doctree.FormatItalic, "*"},
	{doctree.FormatStrikethrough, "~~"},
}

// Markdown renders the document as CommonMark with the strikethrough
// extension. Formats Markdown cannot express are dropped.
func Markdown(tree *doctree.Tree) string {
	var sb strings.Builder
	prevList := false
	for i, blk := range tree.Children(tree.Root()) {
		n := tree.Node(blk)
		list := n.Tag == "listitem"
		if i > 0 {
			if list && prevList {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		prevList = list

		switch n.Tag {
		case "heading":
			sb.WriteString(strings.Repeat("#", n.Level) + " ")
			mdInline(&sb, tree, blk, "\\\n")
		case "quote":
			sb.WriteString("> ")
			mdInline(&sb, tree, blk, "\\\n> ")
		case "listitem":
			sb.WriteString("- ")
			mdInline(&sb, tree, blk, "\\\n  ")
		case "code":
			sb.WriteString("```\n")
			sb.WriteString(tree.TextContent(blk))
			sb.WriteString("\n```")
		default:
			mdInline(&sb, tree, blk, "\\\n")
		}
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func mdInline(sb *strings.Builder, tree *doctree.Tree, parent doctree.Key, br string) {
	for _, c := range tree.Children(parent) {
		n := tree.Node(c)
		switch n.Kind {
		case doctree.KindText:
			sb.WriteString(mdText(n))
		case doctree.KindLineBreak:
			sb.WriteString(br)
		case doctree.KindLink:
			text := tree.TextContent(c)
			if n.Variant == doctree.LinkAuto && text == n.Link.URL {
				sb.WriteString("<" + n.Link.URL + ">")
				continue
			}
			sb.WriteString("[")
			mdInline(sb, tree, c, br)
			sb.WriteString("](" + n.Link.URL + ")")
		}
	}
}

func mdText(n *doctree.Node) string {
	if n.Format.Has(doctree.FormatCode) {
		return wrapMarks(n.Format&^doctree.FormatCode, "`"+n.Text+"`")
	}
	return wrapMarks(n.Format, mdEscaper.Replace(n.Text))
}

func wrapMarks(f doctree.Format, s string) string {
	if s == "" {
		return s
	}
	// Emphasis cannot open or close on whitespace, so keep it outside.
	core := strings.TrimSpace(s)
	if core == "" {
		return s
	}
	lead := s[:strings.Index(s, core)]
	trail := s[len(lead)+len(core):]
	for i := len(mdMarks) - 1; i >= 0; i-- {
		m := mdMarks[i]
		if f.Has(m.format) {
			core = m.mark + core + m.mark
		}
	}
	return lead + core + trail
}
