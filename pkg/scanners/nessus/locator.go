package nessus

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/exploopio/nessus-convert/pkg/doctree"
	"github.com/exploopio/nessus-convert/pkg/errors"
)

// Anchor is a located vulnerability header.
type Anchor struct {
	Node     *html.Node
	Position int
}

// Text returns the header's text content, trimmed.
func (a Anchor) Text() string {
	return strings.TrimSpace(doctree.Text(a.Node))
}

// Locate returns every header anchor in document order. The same plugin
// reported for several hosts appears once per host, and each occurrence is
// its own anchor.
func Locate(idx *doctree.Index, sig Signature) []Anchor {
	positions := idx.All(sig.IsHeader)
	anchors := make([]Anchor, 0, len(positions))
	for _, p := range positions {
		anchors = append(anchors, Anchor{Node: idx.Node(p), Position: p})
	}
	return anchors
}

// parseAnchorText splits "<id> - <title>" header text. The id is everything
// before the first space; the title is everything after the first " - ".
func parseAnchorText(text string) (vulnID, title string, err error) {
	id, _, ok := strings.Cut(text, " ")
	if !ok || id == "" {
		return "", "", errors.E(errors.KindStructuralViolation, "nessus.parseAnchorText",
			"header text has no id token")
	}
	_, title, ok = strings.Cut(text, " - ")
	if !ok {
		return "", "", errors.E(errors.KindStructuralViolation, "nessus.parseAnchorText",
			`header text has no " - " title separator`)
	}
	return id, title, nil
}
