package dom

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const emptyDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// Option configures an HTMLDocument.
type Option func(*HTMLDocument)

// WithoutStylePriority makes SetStyle reject the "important" priority, as
// some runtimes do. Used to exercise fallback paths.
func WithoutStylePriority() Option {
	return func(d *HTMLDocument) {
		d.rejectPriority = true
	}
}

// HTMLDocument is a Document backed by an x/net/html node tree.
// All element operations serialize on the document's mutex.
type HTMLDocument struct {
	mu             sync.Mutex
	root           *html.Node
	rejectPriority bool
}

// Parse reads an HTML document. The parser always yields html, head and body.
func Parse(r io.Reader, opts ...Option) (*HTMLDocument, error) {
	n, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	d := &HTMLDocument{root: n}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ParseString is Parse over a string.
func ParseString(s string, opts ...Option) (*HTMLDocument, error) {
	return Parse(strings.NewReader(s), opts...)
}

// New returns an empty HTML5 document.
func New(opts ...Option) *HTMLDocument {
	d, err := ParseString(emptyDocument, opts...)
	if err != nil {
		// The constant above always parses.
		panic(err)
	}
	return d
}

// Render writes the document as HTML.
func (d *HTMLDocument) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the document, returning "" on failure.
func (d *HTMLDocument) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Root implements Document.
func (d *HTMLDocument) Root() Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(d.documentElement())
}

// Head implements Document.
func (d *HTMLDocument) Head() Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(d.section(atom.Head))
}

// Body implements Document.
func (d *HTMLDocument) Body() Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(d.section(atom.Body))
}

// GetElementByID implements Document.
func (d *HTMLDocument) GetElementByID(id string) Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := findByID(d.root, id); n != nil {
		return d.wrap(n)
	}
	return nil
}

// CreateElement implements Document.
func (d *HTMLDocument) CreateElement(tag string) Element {
	tag = strings.ToLower(tag)
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// AppendUnique implements Document.
func (d *HTMLDocument) AppendUnique(parent, child Element) bool {
	p, ok1 := parent.(*htmlElement)
	c, ok2 := child.(*htmlElement)
	if !ok1 || !ok2 || p.doc != d || c.doc != d {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if id := attr(c.n, "id"); id != "" && findByID(d.root, id) != nil {
		return false
	}
	detach(c.n)
	p.n.AppendChild(c.n)
	return true
}

func (d *HTMLDocument) wrap(n *html.Node) Element {
	if n == nil {
		return nil
	}
	return &htmlElement{doc: d, n: n}
}

// documentElement returns <html>, creating it under the document node if the
// tree was built without one.
func (d *HTMLDocument) documentElement() *html.Node {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return c
		}
	}
	n := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	d.root.AppendChild(n)
	return n
}

func (d *HTMLDocument) section(a atom.Atom) *html.Node {
	rootEl := d.documentElement()
	for c := rootEl.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	if a == atom.Head && rootEl.FirstChild != nil {
		rootEl.InsertBefore(n, rootEl.FirstChild)
	} else {
		rootEl.AppendChild(n)
	}
	return n
}

func findByID(n *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	for c := range n.Descendants() {
		if c.Type == html.ElementNode && attr(c, "id") == id {
			return c
		}
	}
	return nil
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

type htmlElement struct {
	doc *HTMLDocument
	n   *html.Node
}

func (e *htmlElement) Tag() string {
	return e.n.Data
}

func (e *htmlElement) ID() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attr(e.n, "id")
}

func (e *htmlElement) AddClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	classes := strings.Fields(attr(e.n, "class"))
	if slices.Contains(classes, name) {
		return
	}
	setAttr(e.n, "class", strings.Join(append(classes, name), " "))
}

func (e *htmlElement) RemoveClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	classes := strings.Fields(attr(e.n, "class"))
	if !slices.Contains(classes, name) {
		return
	}
	classes = slices.DeleteFunc(classes, func(c string) bool { return c == name })
	if len(classes) == 0 {
		removeAttr(e.n, "class")
		return
	}
	setAttr(e.n, "class", strings.Join(classes, " "))
}

func (e *htmlElement) HasClass(name string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return slices.Contains(strings.Fields(attr(e.n, "class")), name)
}

func (e *htmlElement) SetStyle(property, value, priority string) error {
	property = strings.ToLower(strings.TrimSpace(property))
	switch {
	case priority == "":
	case strings.EqualFold(priority, PriorityImportant):
		if e.doc.rejectPriority {
			return ErrPriorityUnsupported
		}
		priority = PriorityImportant
	default:
		return fmt.Errorf("dom: unknown style priority %q", priority)
	}

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	raw := attr(e.n, "style")
	decls := parseStyle(raw)
	next := declaration{property: property, value: value, priority: priority}
	idx := slices.IndexFunc(decls, func(d declaration) bool { return d.property == property })
	switch {
	case idx < 0:
		decls = append(decls, next)
	case decls[idx].value == value && decls[idx].priority == priority:
		return nil
	default:
		decls[idx] = next
	}
	setAttr(e.n, "style", formatStyle(decls, raw))
	return nil
}

func (e *htmlElement) RemoveStyle(property string) {
	property = strings.ToLower(strings.TrimSpace(property))

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	raw, ok := lookupAttr(e.n, "style")
	if !ok {
		return
	}
	decls := parseStyle(raw)
	kept := slices.DeleteFunc(slices.Clone(decls), func(d declaration) bool { return d.property == property })
	if len(kept) == len(decls) {
		return
	}
	if len(kept) == 0 {
		removeAttr(e.n, "style")
		return
	}
	setAttr(e.n, "style", formatStyle(kept, raw))
}

func (e *htmlElement) Style(property string) (string, string) {
	property = strings.ToLower(strings.TrimSpace(property))

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, d := range parseStyle(attr(e.n, "style")) {
		if d.property == property {
			return d.value, d.priority
		}
	}
	return "", ""
}

func (e *htmlElement) SetAttr(key, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.n, key, value)
}

func (e *htmlElement) Attr(key string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return lookupAttr(e.n, key)
}

func (e *htmlElement) SetText(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for c := e.n.FirstChild; c != nil; c = e.n.FirstChild {
		e.n.RemoveChild(c)
	}
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (e *htmlElement) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var sb strings.Builder
	for c := range e.n.Descendants() {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func (e *htmlElement) AppendChild(child Element) {
	c, ok := child.(*htmlElement)
	if !ok || c.doc != e.doc {
		return
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	detach(c.n)
	e.n.AppendChild(c.n)
}

func (e *htmlElement) Remove() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	detach(e.n)
}
