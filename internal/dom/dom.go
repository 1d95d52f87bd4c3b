// Package dom is the document surface the preference applier mutates.
//
// Document and Element describe the small part of a browser DOM the applier
// needs: class lists, inline style declarations with priority, attributes,
// and id-addressed insertion into head. HTMLDocument implements them over an
// HTML tree parsed with golang.org/x/net/html, so the same code can be run
// against a real page server-side and against fixtures in tests.
package dom

import "errors"

// PriorityImportant is the only priority value Element.SetStyle understands.
const PriorityImportant = "important"

// ErrPriorityUnsupported is returned by SetStyle when the document does not
// accept prioritized declarations. Callers retry without a priority.
var ErrPriorityUnsupported = errors.New("dom: style priority not supported")

// Document is a live, mutable document.
// Implementations must be safe for concurrent use.
type Document interface {
	// Root returns the document element (<html>).
	Root() Element
	// Head returns <head>, creating it if the tree lacks one.
	Head() Element
	// Body returns <body>, creating it if the tree lacks one.
	Body() Element
	// GetElementByID returns the first element with the id, or nil.
	GetElementByID(id string) Element
	// CreateElement returns a detached element.
	CreateElement(tag string) Element
	// AppendUnique appends child to parent unless an element with child's id
	// is already in the document. The check and insert are atomic.
	// Reports whether child was inserted.
	AppendUnique(parent, child Element) bool
}

// Element is a node handle inside a Document.
type Element interface {
	Tag() string
	ID() string

	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool

	// SetStyle sets an inline declaration. priority is "" or "important".
	SetStyle(property, value, priority string) error
	// RemoveStyle drops an inline declaration; absent properties are ignored.
	RemoveStyle(property string)
	// Style returns the value and priority of an inline declaration.
	Style(property string) (value, priority string)

	SetAttr(key, value string)
	Attr(key string) (string, bool)

	SetText(text string)
	Text() string

	AppendChild(child Element)
	// Remove detaches the element from its parent.
	Remove()
}
