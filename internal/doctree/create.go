package doctree

// CreateElement allocates a detached block element with the given tag.
func (t *Tree) CreateElement(tag string) Key {
	return t.alloc(&Node{Kind: KindElement, Tag: tag})
}

// CreateHeading allocates a detached heading element.
func (t *Tree) CreateHeading(level int) Key {
	return t.alloc(&Node{Kind: KindElement, Tag: "heading", Level: level})
}

// CreateText allocates a detached normal-mode text node.
func (t *Tree) CreateText(text string) Key {
	return t.alloc(&Node{Kind: KindText, Text: text})
}

// CreateFormattedText allocates a detached text node with style flags.
func (t *Tree) CreateFormattedText(text string, format Format) Key {
	return t.alloc(&Node{Kind: KindText, Text: text, Format: format})
}

// CreateLineBreak allocates a detached line break.
func (t *Tree) CreateLineBreak() Key {
	return t.alloc(&Node{Kind: KindLineBreak})
}

// CreateLink allocates a detached, manually authored link.
func (t *Tree) CreateLink(attrs LinkAttrs) Key {
	return t.alloc(&Node{Kind: KindLink, Variant: LinkManual, Link: attrs})
}

// CreateAutoLink allocates a detached link owned by pattern matching.
func (t *Tree) CreateAutoLink(attrs LinkAttrs) Key {
	return t.alloc(&Node{Kind: KindLink, Variant: LinkAuto, Link: attrs})
}
