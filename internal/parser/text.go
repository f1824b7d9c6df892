package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
)

// TextParser handles plain text. Blank lines separate paragraphs; single
// newlines inside a paragraph become line breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := newBuilder(baseTitle(filename))
	var lines []string
	flush := func() {
		if len(lines) > 0 {
			b.paragraph("paragraph", strings.Join(lines, "\n"))
			lines = lines[:0]
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return b.done()
}

// ParseText is TextParser for in-memory input.
func ParseText(title, text string) (*doctree.Tree, error) {
	return (&TextParser{}).Parse(strings.NewReader(text), title)
}
