// Package doctree wraps a parsed HTML document in a document-order index.
//
// The index flattens the tree into the order nodes appear in the source
// (pre-order) and answers "nearest node before/after position p matching a
// predicate" queries. Every extraction step in the converter is phrased as one
// of those queries.
package doctree

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/exploopio/nessus-convert/pkg/errors"
)

// Predicate reports whether a node matches.
type Predicate func(n *html.Node) bool

// Index is a flat, document-ordered view of an HTML tree.
type Index struct {
	root  *html.Node
	nodes []*html.Node
	pos   map[*html.Node]int
}

// Parse reads an HTML document and indexes it.
func Parse(r io.Reader) (*Index, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.E(errors.KindDocumentUnavailable, "doctree.Parse", "parse html", err)
	}
	return New(root), nil
}

// New indexes an already-parsed tree rooted at root.
func New(root *html.Node) *Index {
	idx := &Index{
		root: root,
		pos:  make(map[*html.Node]int),
	}
	idx.walk(root)
	return idx
}

func (idx *Index) walk(n *html.Node) {
	idx.pos[n] = len(idx.nodes)
	idx.nodes = append(idx.nodes, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		idx.walk(c)
	}
}

// Root returns the document root.
func (idx *Index) Root() *html.Node {
	return idx.root
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int {
	return len(idx.nodes)
}

// Node returns the node at a position, or nil when out of range.
func (idx *Index) Node(pos int) *html.Node {
	if pos < 0 || pos >= len(idx.nodes) {
		return nil
	}
	return idx.nodes[pos]
}

// Position returns the document-order position of n.
func (idx *Index) Position(n *html.Node) (int, bool) {
	p, ok := idx.pos[n]
	return p, ok
}

// NextMatching returns the first position strictly after pos whose node
// matches pred. Descendants of the node at pos come after it.
func (idx *Index) NextMatching(pos int, pred Predicate) (int, bool) {
	if pos < -1 {
		pos = -1
	}
	for i := pos + 1; i < len(idx.nodes); i++ {
		if pred(idx.nodes[i]) {
			return i, true
		}
	}
	return -1, false
}

// PrevMatching returns the last position strictly before pos whose node
// matches pred. Ancestors of the node at pos come before it.
func (idx *Index) PrevMatching(pos int, pred Predicate) (int, bool) {
	if pos > len(idx.nodes) {
		pos = len(idx.nodes)
	}
	for i := pos - 1; i >= 0; i-- {
		if pred(idx.nodes[i]) {
			return i, true
		}
	}
	return -1, false
}

// NextAfter is NextMatching starting at node n.
func (idx *Index) NextAfter(n *html.Node, pred Predicate) (*html.Node, bool) {
	p, ok := idx.pos[n]
	if !ok {
		return nil, false
	}
	next, ok := idx.NextMatching(p, pred)
	if !ok {
		return nil, false
	}
	return idx.nodes[next], true
}

// All returns every position matching pred, in document order.
func (idx *Index) All(pred Predicate) []int {
	var out []int
	for i, n := range idx.nodes {
		if pred(n) {
			out = append(out, i)
		}
	}
	return out
}

// =============================================================================
// Predicates and node helpers
// =============================================================================

// TextEquals matches text nodes whose data is exactly s.
func TextEquals(s string) Predicate {
	return func(n *html.Node) bool {
		return n.Type == html.TextNode && n.Data == s
	}
}

// ElementNamed matches elements with the given tag name.
func ElementNamed(tag string) Predicate {
	return func(n *html.Node) bool {
		return IsElement(n, tag)
	}
}

// IsElement reports whether n is an element with the given tag name.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// Attr returns the value of an attribute on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the concatenated text of n and all its descendants.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	collectText(n, &sb)
	return sb.String()
}

func collectText(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode, html.DocumentNode:
			collectText(c, sb)
		}
	}
}
