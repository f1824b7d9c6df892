package doctree

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned by FromState for malformed documents.
var ErrInvalidState = errors.New("invalid document state")

// State is the JSON form of a document.
type State struct {
	Title string    `json:"title,omitempty"`
	Root  NodeState `json:"root"`
}

// NodeState is the JSON form of one node. Elements use their tag as Type;
// every other node uses its NodeType name.
type NodeState struct {
	Type     string      `json:"type"`
	Level    int         `json:"level,omitempty"`
	Text     string      `json:"text,omitempty"`
	Format   Format      `json:"format,omitempty"`
	Detail   Detail      `json:"detail,omitempty"`
	Mode     string      `json:"mode,omitempty"`
	Style    string      `json:"style,omitempty"`
	URL      string      `json:"url,omitempty"`
	Rel      string      `json:"rel,omitempty"`
	Target   string      `json:"target,omitempty"`
	Children []NodeState `json:"children,omitempty"`
}

func (m TextMode) String() string {
	switch m {
	case ModeToken:
		return "token"
	case ModeSegmented:
		return "segmented"
	}
	return "normal"
}

func parseMode(s string) (TextMode, error) {
	switch s {
	case "", "normal":
		return ModeNormal, nil
	case "token":
		return ModeToken, nil
	case "segmented":
		return ModeSegmented, nil
	}
	return 0, fmt.Errorf("%w: unknown text mode %q", ErrInvalidState, s)
}

// State snapshots the attached document.
func (t *Tree) State() State {
	return State{Title: t.Title, Root: t.nodeState(t.root)}
}

func (t *Tree) nodeState(k Key) NodeState {
	n := t.mustNode(k)
	s := NodeState{Type: string(n.Type())}
	switch n.Kind {
	case KindElement:
		s.Type = n.Tag
		s.Level = n.Level
	case KindText:
		s.Text = n.Text
		s.Format = n.Format
		s.Detail = n.Detail
		s.Style = n.Style
		if n.Mode != ModeNormal {
			s.Mode = n.Mode.String()
		}
	case KindLink:
		s.URL = n.Link.URL
		s.Rel = n.Link.Rel
		s.Target = n.Link.Target
	}
	for c := n.first; c != NoKey; c = t.nodes[c].next {
		s.Children = append(s.Children, t.nodeState(c))
	}
	return s
}

// FromState builds a tree from its JSON form. Root children must be
// elements and link children must be text or line breaks.
func FromState(s State) (*Tree, error) {
	if s.Root.Type != "" && s.Root.Type != string(TypeRoot) {
		return nil, fmt.Errorf("%w: top node has type %q", ErrInvalidState, s.Root.Type)
	}
	t := New(s.Title)
	if err := t.buildChildren(t.root, s.Root.Children); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) buildChildren(parent Key, children []NodeState) error {
	pk := t.Kind(parent)
	for _, cs := range children {
		k, err := t.buildNode(cs)
		if err != nil {
			return err
		}
		ck := t.Kind(k)
		switch {
		case pk == KindRoot && ck != KindElement:
			return fmt.Errorf("%w: %s directly under root", ErrInvalidState, cs.Type)
		case pk == KindLink && ck != KindText && ck != KindLineBreak:
			return fmt.Errorf("%w: %s inside link", ErrInvalidState, cs.Type)
		}
		if err := t.Append(parent, k); err != nil {
			return err
		}
		if len(cs.Children) > 0 {
			if !t.IsContainer(k) {
				return fmt.Errorf("%w: %s cannot have children", ErrInvalidState, cs.Type)
			}
			if err := t.buildChildren(k, cs.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tree) buildNode(s NodeState) (Key, error) {
	switch NodeType(s.Type) {
	case "", TypeRoot:
		return NoKey, fmt.Errorf("%w: node without a usable type", ErrInvalidState)
	case TypeText:
		mode, err := parseMode(s.Mode)
		if err != nil {
			return NoKey, err
		}
		k := t.CreateFormattedText(s.Text, s.Format)
		t.SetDetail(k, s.Detail)
		t.SetMode(k, mode)
		t.SetStyle(k, s.Style)
		return k, nil
	case TypeLineBreak:
		return t.CreateLineBreak(), nil
	case TypeLink:
		return t.CreateLink(LinkAttrs{URL: s.URL, Rel: s.Rel, Target: s.Target}), nil
	case TypeAutoLink:
		return t.CreateAutoLink(LinkAttrs{URL: s.URL, Rel: s.Rel, Target: s.Target}), nil
	case "heading":
		if s.Level < 1 || s.Level > 6 {
			return NoKey, fmt.Errorf("%w: heading level %d", ErrInvalidState, s.Level)
		}
		return t.CreateHeading(s.Level), nil
	}
	return t.CreateElement(s.Type), nil
}
