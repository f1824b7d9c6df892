package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles map to headings and run
// properties map to bold, italic and underline.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := newBuilder(baseTitle(filename))
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var blk doctree.Key
		if level := docxHeadingLevel(para); level > 0 {
			blk = b.heading(level)
		} else {
			blk = b.block("paragraph")
		}
		for _, child := range para.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			format := runFormat(run)
			for _, rc := range run.Children {
				if t, ok := rc.(*docx.Text); ok {
					b.text(blk, t.Text, format)
				}
			}
		}
	}
	return b.done()
}

func runFormat(run *docx.Run) doctree.Format {
	var f doctree.Format
	props := run.RunProperties
	if props == nil {
		return f
	}
	if props.Bold != nil {
		f |= doctree.FormatBold
	}
	if props.Italic != nil {
		f |= doctree.FormatItalic
	}
	if props.Underline != nil {
		f |= doctree.FormatUnderline
	}
	return f
}

// docxHeadingLevel reads "Heading1" or "heading 2" style names.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	rest, ok := strings.CutPrefix(style, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(rest)
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}
