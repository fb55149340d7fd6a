// Package dom is a small server-side document model. A Document wraps a
// parsed HTML tree, routes events to registered listeners and patches
// subtrees in place when views re-render.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hammamikhairi/recipebook/internal/logger"
)

// ErrNoMatch is returned when a selector matches nothing in the document.
var ErrNoMatch = errors.New("dom: selector matched nothing")

// Document is an HTML tree plus a location hash and an event registry.
// All methods are safe for concurrent use. Listeners run without the
// document lock held, so they may call back into the document.
type Document struct {
	mu        sync.Mutex
	doc       *goquery.Document
	hash      string
	listeners []listener
	log       *logger.Logger
}

// Parse builds a document from a full HTML page.
func Parse(r io.Reader, log *logger.Logger) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{doc: doc, log: log}, nil
}

// ParseString is Parse over a string.
func ParseString(page string, log *logger.Logger) (*Document, error) {
	return Parse(strings.NewReader(page), log)
}

// Hash returns the location hash without the leading '#'.
func (d *Document) Hash() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hash
}

// SetHash replaces the location hash. It does not dispatch hashchange.
func (d *Document) SetHash(h string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hash = strings.TrimPrefix(h, "#")
}

// HTML serializes the whole document.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, d.doc.Nodes[0]); err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return buf.String(), nil
}

// InnerHTML serializes the children of the first element matching
// selector.
func (d *Document) InnerHTML(selector string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return sel.Html()
}

// Do runs fn with the document locked. fn must not retain the document
// or call other Document methods.
func (d *Document) Do(fn func(doc *goquery.Document) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.doc)
}

// Resolve returns the first element matching selector.
func (d *Document) Resolve(selector string) (*html.Node, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolveLocked(selector)
}

func (d *Document) resolveLocked(selector string) (*html.Node, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, fmt.Errorf("%w: empty selector", ErrNoMatch)
	}
	sel := d.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return sel.Nodes[0], nil
}

// Closest returns n or its nearest ancestor matching selector, or nil.
func (d *Document) Closest(n *html.Node, selector string) *html.Node {
	if n == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closestLocked(n, selector)
}

func (d *Document) closestLocked(n *html.Node, selector string) *html.Node {
	sel := d.doc.FindNodes(n).Closest(selector)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Nodes[0]
}

// Attr returns the value of attribute name on n.
func (d *Document) Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return attr(n, name)
}

// Clear removes every child of the element matching selector.
func (d *Document) Clear(selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	container, err := d.resolveLocked(selector)
	if err != nil {
		return err
	}
	removeChildren(container)
	return nil
}

// Replace swaps the children of the element matching selector for the
// parsed markup.
func (d *Document) Replace(selector, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	container, err := d.resolveLocked(selector)
	if err != nil {
		return err
	}
	nodes, err := parseFragment(container, markup)
	if err != nil {
		return err
	}
	removeChildren(container)
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return nil
}

// SetFormValues writes values into the named controls of form, the way a
// browser fills them before submit. Unknown names are ignored.
func (d *Document) SetFormValues(form *html.Node, values map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range controls(form) {
		name, _ := attr(c, "name")
		v, ok := values[name]
		if !ok {
			continue
		}
		setControlValue(c, v)
	}
}

// FormValues collects the named controls of form into a flat map.
func (d *Document) FormValues(form *html.Node) map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string)
	for _, c := range controls(form) {
		name, _ := attr(c, "name")
		if name == "" {
			continue
		}
		out[name] = controlValue(c)
	}
	return out
}

// ResetForm empties every text control of form.
func (d *Document) ResetForm(form *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range controls(form) {
		if t, _ := attr(c, "type"); t == "hidden" || t == "submit" {
			continue
		}
		setControlValue(c, "")
	}
}

func controls(form *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Input || c.DataAtom == atom.Textarea) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if form != nil {
		walk(form)
	}
	return out
}

func controlValue(c *html.Node) string {
	if c.DataAtom == atom.Textarea {
		return textContent(c)
	}
	v, _ := attr(c, "value")
	return v
}

func setControlValue(c *html.Node, v string) {
	if c.DataAtom == atom.Textarea {
		removeChildren(c)
		if v != "" {
			c.AppendChild(&html.Node{Type: html.TextNode, Data: v})
		}
		return
	}
	setAttr(c, "value", v)
}

func parseFragment(context *html.Node, markup string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return nodes, nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
