package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/doclink/internal/doctree"
)

// CSVParser handles CSV files. The header row becomes a heading and each
// data row becomes a paragraph of "header: value" pairs.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := newBuilder(baseTitle(filename))
	if len(records) == 0 {
		return b.done()
	}

	headers := records[0]
	b.text(b.heading(2), strings.Join(headers, ", "), 0)

	for _, row := range records[1:] {
		cells := make([]string, 0, len(row))
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				cells = append(cells, headers[j]+": "+cell)
			} else {
				cells = append(cells, cell)
			}
		}
		b.paragraph("paragraph", strings.Join(cells, ", "))
	}
	return b.done()
}
