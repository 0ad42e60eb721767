package nessus

import (
	"fmt"
	"regexp"

	"golang.org/x/net/html"

	"github.com/exploopio/nessus-convert/pkg/doctree"
)

// DefaultHeaderStyle is the inline style Nessus puts on every vulnerability
// header in the HTML export. Only the background color varies (it encodes
// severity).
const DefaultHeaderStyle = `box-sizing: border-box; width: 100%; margin: 0 0 10px 0; padding: 5px 10px; background: #[0-9a-f]+; font-weight: bold; font-size: 14px; line-height: 20px; color: #fff;`

// Signature tells the extractor which nodes carry structure.
type Signature interface {
	// IsHeader reports whether n is a vulnerability header anchor.
	IsHeader(n *html.Node) bool

	// IsBoundary reports whether n ends a port-list walk.
	IsBoundary(n *html.Node) bool

	// IsPortHeader reports whether n is a "(proto/port)" secondary header.
	IsPortHeader(n *html.Node) bool
}

// StyleSignature matches headers by their style attribute.
type StyleSignature struct {
	header  *regexp.Regexp
	portTag string
}

var defaultSignature = &StyleSignature{
	header:  regexp.MustCompile(DefaultHeaderStyle),
	portTag: "h2",
}

// DefaultSignature returns the signature of the standard Nessus HTML export.
func DefaultSignature() *StyleSignature {
	return defaultSignature
}

// NewStyleSignature builds a signature for another export variant. pattern is
// a regular expression searched for in each element's style attribute.
func NewStyleSignature(pattern string) (*StyleSignature, error) {
	if pattern == "" {
		return nil, fmt.Errorf("nessus: empty header style pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("nessus: header style pattern: %w", err)
	}
	return &StyleSignature{header: re, portTag: "h2"}, nil
}

// IsHeader matches any element, whatever its tag, whose style attribute
// contains the header pattern.
func (s *StyleSignature) IsHeader(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	style, ok := doctree.Attr(n, "style")
	return ok && s.header.MatchString(style)
}

// IsBoundary is true for a header or a div carrying an id; the export wraps
// each plugin's details in such a div.
func (s *StyleSignature) IsBoundary(n *html.Node) bool {
	if s.IsHeader(n) {
		return true
	}
	if !doctree.IsElement(n, "div") {
		return false
	}
	_, ok := doctree.Attr(n, "id")
	return ok
}

func (s *StyleSignature) IsPortHeader(n *html.Node) bool {
	return doctree.IsElement(n, s.portTag)
}

var _ Signature = (*StyleSignature)(nil)
