// Package render serializes document trees as HTML, Markdown or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
)

// Format names an output format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name; the empty string selects HTML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported output format: %q", s)
}

// ContentType is the HTTP media type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	}
	return "text/html; charset=utf-8"
}

// Options control rendering.
type Options struct {
	Sanitize bool // pass HTML output through the sanitizer policy
}

// Render writes tree in format f.
func Render(tree *doctree.Tree, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatHTML:
		s, err := HTML(tree, opts)
		return []byte(s), err
	case FormatMarkdown:
		return []byte(Markdown(tree)), nil
	case FormatJSON:
		return JSON(tree)
	}
	return nil, fmt.Errorf("unsupported output format: %q", f)
}

// JSON encodes the document state.
func JSON(tree *doctree.Tree) ([]byte, error) {
	data, err := json.Marshal(tree.State())
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}
