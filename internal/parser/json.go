package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/doclink/internal/doctree"
)

// JSONParser reads a document previously written by render.JSON.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	var state doctree.State
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if state.Title == "" {
		state.Title = baseTitle(filename)
	}
	tree, err := doctree.FromState(state)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	return tree, nil
}
