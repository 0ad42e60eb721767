package nessus

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/exploopio/nessus-convert/pkg/doctree"
	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/report"
)

// resolveHost reads the host of the section the anchor at pos sits in: the
// first td after the nearest preceding "DNS Name:" label.
//
// The search is not bounded by the host section. Nessus nests each
// vulnerability inside its host's section, so the nearest label is taken as
// the owner.
func resolveHost(idx *doctree.Index, pos int) (string, bool) {
	at, ok := idx.PrevMatching(pos, doctree.TextEquals(LabelDNSName))
	if !ok {
		return "", false
	}
	label := idx.Node(at).Parent
	if label == nil {
		return "", false
	}
	for s := label.NextSibling; s != nil; s = s.NextSibling {
		if !doctree.IsElement(s, "td") {
			continue
		}
		text := doctree.Text(s)
		if strings.Contains(text, TruncationMarker) {
			continue
		}
		return strings.TrimSpace(text), true
	}
	return "", false
}

// walkState is the port-list walk state.
type walkState int

const (
	stateScanning walkState = iota
	stateStopped
)

// bindingWalk is the result of walking the siblings after "Plugin Output".
type bindingWalk struct {
	bindings  []report.HostBinding
	truncated bool
	malformed []error
}

// enumerateBindings collects the "(proto/port)" headers that follow the
// block's "Plugin Output" label. limit is the position of the next anchor,
// or -1 for the last block; nothing at or beyond it belongs to this block.
func enumerateBindings(idx *doctree.Index, sig Signature, pos, limit int, host string) bindingWalk {
	var w bindingWalk

	at, ok := idx.NextMatching(pos, doctree.TextEquals(LabelPluginOutput))
	if !ok || (limit >= 0 && at >= limit) {
		return w
	}
	label := idx.Node(at).Parent
	if label == nil {
		return w
	}

	state := stateScanning
	for s := label.NextSibling; s != nil && state == stateScanning; s = s.NextSibling {
		if limit >= 0 {
			if p, ok := idx.Position(s); ok && p >= limit {
				state = stateStopped
				continue
			}
		}
		switch {
		case sig.IsBoundary(s):
			state = stateStopped
		case containsMarker(s):
			w.truncated = true
			state = stateStopped
		case sig.IsPortHeader(s):
			token := doctree.Text(s)
			proto, port, err := parsePortSpec(token)
			if err != nil {
				w.malformed = append(w.malformed, err)
				continue
			}
			w.bindings = append(w.bindings, report.HostBinding{Host: host, Protocol: proto, Port: port})
		}
	}
	return w
}

func containsMarker(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return strings.Contains(n.Data, TruncationMarker)
	case html.ElementNode:
		return strings.Contains(doctree.Text(n), TruncationMarker)
	}
	return false
}

// parsePortSpec parses a "(proto/port)" token. Surrounding whitespace and
// parentheses are stripped and the rest is split once on "/". Both halves
// must be non-empty.
func parsePortSpec(token string) (protocol, port string, err error) {
	spec := strings.Trim(strings.TrimSpace(token), "()")
	protocol, port, ok := strings.Cut(spec, "/")
	if !ok || protocol == "" || port == "" {
		return "", "", errors.E(errors.KindMalformedPortSpec, "nessus.parsePortSpec",
			fmt.Sprintf("unparseable port token %q", strings.TrimSpace(token)))
	}
	return protocol, port, nil
}
