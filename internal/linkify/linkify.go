// Package linkify attaches the auto-link engine to a document tree and
// records the link lifecycle events it reports.
package linkify

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/doclink/internal/autolink"
	"github.com/dgallion1/doclink/internal/doctree"
	"github.com/dgallion1/doclink/internal/editor"
)

// EventKind classifies a link lifecycle event.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventRemoved EventKind = "removed"
	EventChanged EventKind = "changed"
)

// Classify maps a change notification to its kind.
func Classify(url, prevURL string) EventKind {
	switch {
	case prevURL == "":
		return EventCreated
	case url == "":
		return EventRemoved
	}
	return EventChanged
}

// Event is one recorded change notification. Attribute events carry the
// link URL, the attribute name and its new and previous values.
type Event struct {
	Kind      EventKind `json:"kind"`
	URL       string    `json:"url,omitempty"`
	PrevURL   string    `json:"prev_url,omitempty"`
	Attribute string    `json:"attribute,omitempty"`
	Value     string    `json:"value,omitempty"`
	PrevValue string    `json:"prev_value,omitempty"`
	At        time.Time `json:"at"`
}

// Options configure Attach.
type Options struct {
	Matchers  []autolink.Matcher // nil selects the default URL and e-mail matchers
	MaxPasses int
	Logger    *slog.Logger
	// Observe, when set, is told about every event as it is recorded.
	Observe func(Event)
}

// Document is a tree with the auto-link engine attached. It is not safe for
// concurrent use.
type Document struct {
	tree    *doctree.Tree
	ed      *editor.Editor
	dispose func()
	events  []Event
	observe func(Event)
}

// Attach registers the engine on a new editor for tree and links the
// existing content.
func Attach(tree *doctree.Tree, opts Options) (*Document, error) {
	ed := editor.New(tree, editor.Options{
		Nodes:     []doctree.NodeType{doctree.TypeLink, doctree.TypeAutoLink},
		MaxPasses: opts.MaxPasses,
		Logger:    opts.Logger,
	})
	d := &Document{tree: tree, ed: ed, observe: opts.Observe}

	dispose, err := autolink.RegisterWithOptions(ed, autolink.Options{
		Matchers:    opts.Matchers,
		OnChange:    d.record,
		OnAttribute: d.recordAttribute,
	})
	if err != nil {
		return nil, err
	}
	d.dispose = dispose

	tree.MarkAllDirty()
	if err := ed.Update(nil); err != nil {
		dispose()
		return nil, fmt.Errorf("initial linkify: %w", err)
	}
	return d, nil
}

func (d *Document) record(url, prevURL string) {
	d.add(Event{Kind: Classify(url, prevURL), URL: url, PrevURL: prevURL})
}

func (d *Document) recordAttribute(url, name, value, prev string) {
	d.add(Event{Kind: EventChanged, URL: url, Attribute: name, Value: value, PrevValue: prev})
}

func (d *Document) add(ev Event) {
	ev.At = time.Now()
	d.events = append(d.events, ev)
	if d.observe != nil {
		d.observe(ev)
	}
}

// Tree returns the linked tree.
func (d *Document) Tree() *doctree.Tree { return d.tree }

// Update applies fn and re-links until the tree settles. It returns the
// events produced by this update.
func (d *Document) Update(fn func(tree *doctree.Tree) error) ([]Event, error) {
	start := len(d.events)
	err := d.ed.Update(fn)
	return d.EventsSince(start), err
}

// Events returns a copy of every recorded event.
func (d *Document) Events() []Event { return d.EventsSince(0) }

// EventsSince returns a copy of the events recorded after the first n.
func (d *Document) EventsSince(n int) []Event {
	if n >= len(d.events) {
		return []Event{}
	}
	return append([]Event(nil), d.events[n:]...)
}

// Close detaches the engine. The tree stays usable.
func (d *Document) Close() {
	if d.dispose != nil {
		d.dispose()
		d.dispose = nil
	}
}
