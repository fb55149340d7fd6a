package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// KeyAttr pairs elements across renders when both sides carry it.
const KeyAttr = "data-key"

// PatchStats counts what a Patch changed.
type PatchStats struct {
	Inserted int
	Removed  int
	Replaced int
	Text     int // text nodes rewritten
	Attrs    int // elements whose attributes changed
}

// Changed reports whether the patch touched the tree at all.
func (s PatchStats) Changed() bool {
	return s != PatchStats{}
}

// Patch reconciles the children of the element matching selector with the
// parsed markup, mutating the existing nodes in place. Sibling lists where
// every element carries data-key are matched by key; otherwise nodes pair
// by position. Nodes whose type or tag differ are replaced.
func (d *Document) Patch(selector, markup string) (PatchStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var stats PatchStats
	container, err := d.resolveLocked(selector)
	if err != nil {
		return stats, err
	}
	next, err := parseFragment(container, markup)
	if err != nil {
		return stats, err
	}
	reconcile(container, next, &stats)
	return stats, nil
}

func reconcile(parent *html.Node, next []*html.Node, stats *PatchStats) {
	cur := childNodes(parent)
	if keyed(cur) && keyed(next) {
		reconcileKeyed(parent, cur, next, stats)
		return
	}

	for i, n := range next {
		if i < len(cur) {
			patchNode(parent, cur[i], n, stats)
			continue
		}
		parent.AppendChild(n)
		stats.Inserted++
	}
	for _, c := range cur[min(len(next), len(cur)):] {
		parent.RemoveChild(c)
		stats.Removed++
	}
}

// reconcileKeyed rebuilds parent's child list in the new order, reusing
// the existing element for every key present on both sides. Whitespace
// between keyed elements is dropped.
func reconcileKeyed(parent *html.Node, cur, next []*html.Node, stats *PatchStats) {
	byKey := make(map[string]*html.Node, len(cur))
	for _, c := range cur {
		if k, ok := attr(c, KeyAttr); ok && c.Type == html.ElementNode {
			byKey[k] = c
		}
	}
	removeChildren(parent)

	for _, n := range next {
		if n.Type != html.ElementNode {
			continue
		}
		k, _ := attr(n, KeyAttr)
		c, ok := byKey[k]
		if !ok || c.Data != n.Data {
			parent.AppendChild(n)
			stats.Inserted++
			continue
		}
		delete(byKey, k)
		parent.AppendChild(c)
		patchNode(parent, c, n, stats)
	}
	stats.Removed += len(byKey)
}

// patchNode makes cur look like n. cur is a child of parent; n is detached.
func patchNode(parent, cur, n *html.Node, stats *PatchStats) {
	sameKind := cur.Type == n.Type && cur.Namespace == n.Namespace &&
		(cur.Type != html.ElementNode || cur.Data == n.Data)
	if !sameKind {
		parent.InsertBefore(n, cur)
		parent.RemoveChild(cur)
		stats.Replaced++
		return
	}

	switch cur.Type {
	case html.TextNode, html.CommentNode:
		if cur.Data != n.Data {
			cur.Data = n.Data
			stats.Text++
		}
	case html.ElementNode:
		if !sameAttrs(cur.Attr, n.Attr) {
			cur.Attr = append([]html.Attribute(nil), n.Attr...)
			stats.Attrs++
		}
		reconcile(cur, detachChildren(n), stats)
	}
}

// keyed reports whether every element in nodes carries a data-key and at
// least one element exists. Blank text nodes are ignored.
func keyed(nodes []*html.Node) bool {
	elements := 0
	for _, n := range nodes {
		switch n.Type {
		case html.ElementNode:
			if _, ok := attr(n, KeyAttr); !ok {
				return false
			}
			elements++
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return false
			}
		}
	}
	return elements > 0
}

func sameAttrs(a, b []html.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[html.Attribute]int, len(a))
	for _, x := range a {
		seen[x]++
	}
	for _, y := range b {
		if seen[y] == 0 {
			return false
		}
		seen[y]--
	}
	return true
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func detachChildren(n *html.Node) []*html.Node {
	out := childNodes(n)
	for _, c := range out {
		n.RemoveChild(c)
	}
	return out
}
