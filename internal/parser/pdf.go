package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

var errNoPDFText = errors.New("no text layer")

// PDFParser reads the text layer of a PDF. Pages without extractable text
// are skipped. When nothing comes out and FallbackPdftotext is set, the
// pdftotext binary gets a second try.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := pdfPages(data)
	if err != nil && p.FallbackPdftotext {
		pages, err = pdftotextPages(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	b := newBuilder(baseTitle(filename))
	for _, page := range pages {
		addPlainBlocks(b, page)
	}
	return b.done()
}

// addPlainBlocks appends one paragraph per blank-line separated chunk.
func addPlainBlocks(b *builder, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, chunk := range strings.Split(text, "\n\n") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			b.paragraph("paragraph", strings.Join(lines, "\n"))
		}
	}
}

func pdfPages(data []byte) (pages []string, err error) {
	// The library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	found := false
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		found = found || strings.TrimSpace(text) != ""
		pages = append(pages, text)
	}
	if !found {
		return nil, errNoPDFText
	}
	return pages, nil
}

// pdftotextPages shells out to poppler. Its output separates pages with
// form feeds.
func pdftotextPages(data []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "doclink-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	out, err := exec.Command("pdftotext", "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return strings.Split(string(out), "\f"), nil
}
