package doctree

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/exploopio/nessus-convert/pkg/errors"
)

const sampleDoc = `<html><body>
<div id="a">Alpha<span>inner</span></div>
<div id="b">Beta</div>
<p>Alpha</p>
</body></html>`

func mustParse(t *testing.T, doc string) *Index {
	t.Helper()
	idx, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return idx
}

func TestParse_ReaderError(t *testing.T) {
	_, err := Parse(iotest.ErrReader(assert.AnError))
	require.Error(t, err)
	assert.True(t, errors.IsDocumentUnavailable(err))
}

func TestIndex_DocumentOrder(t *testing.T) {
	idx := mustParse(t, sampleDoc)

	first, ok := idx.NextMatching(-1, TextEquals("Alpha"))
	require.True(t, ok)
	second, ok := idx.NextMatching(first, TextEquals("Alpha"))
	require.True(t, ok)
	assert.Less(t, first, second)

	assert.True(t, IsElement(idx.Node(first).Parent, "div"))
	assert.True(t, IsElement(idx.Node(second).Parent, "p"))

	_, ok = idx.NextMatching(second, TextEquals("Alpha"))
	assert.False(t, ok)
}

func TestIndex_NextMatchingIncludesDescendants(t *testing.T) {
	idx := mustParse(t, sampleDoc)

	divA, ok := idx.NextMatching(-1, ElementNamed("div"))
	require.True(t, ok)

	span, ok := idx.NextMatching(divA, ElementNamed("span"))
	require.True(t, ok)
	assert.Equal(t, divA, mustPos(t, idx, idx.Node(span).Parent))
}

func TestIndex_PrevMatching(t *testing.T) {
	idx := mustParse(t, sampleDoc)

	beta, ok := idx.NextMatching(-1, TextEquals("Beta"))
	require.True(t, ok)

	prev, ok := idx.PrevMatching(beta, TextEquals("Alpha"))
	require.True(t, ok)
	assert.True(t, IsElement(idx.Node(prev).Parent, "div"))

	// ancestors precede the position
	body, ok := idx.PrevMatching(beta, ElementNamed("body"))
	require.True(t, ok)
	assert.Less(t, body, beta)

	_, ok = idx.PrevMatching(0, ElementNamed("body"))
	assert.False(t, ok)
}

func TestIndex_OutOfRange(t *testing.T) {
	idx := mustParse(t, sampleDoc)

	assert.Nil(t, idx.Node(-1))
	assert.Nil(t, idx.Node(idx.Len()))

	_, ok := idx.NextMatching(idx.Len()+10, ElementNamed("div"))
	assert.False(t, ok)

	last, ok := idx.PrevMatching(idx.Len()+10, ElementNamed("p"))
	require.True(t, ok)
	assert.True(t, IsElement(idx.Node(last), "p"))
}

func TestIndex_NextAfter(t *testing.T) {
	idx := mustParse(t, sampleDoc)

	p, ok := idx.NextMatching(-1, TextEquals("Alpha"))
	require.True(t, ok)
	divA := idx.Node(p).Parent

	next, ok := idx.NextAfter(divA, ElementNamed("div"))
	require.True(t, ok)
	id, _ := Attr(next, "id")
	assert.Equal(t, "b", id)

	_, ok = idx.NextAfter(&html.Node{}, ElementNamed("div"))
	assert.False(t, ok)
}

func TestIndex_All(t *testing.T) {
	idx := mustParse(t, sampleDoc)
	divs := idx.All(ElementNamed("div"))
	require.Len(t, divs, 2)
	assert.Less(t, divs[0], divs[1])
}

func TestText(t *testing.T) {
	idx := mustParse(t, sampleDoc)

	p, ok := idx.NextMatching(-1, ElementNamed("div"))
	require.True(t, ok)
	assert.Equal(t, "Alphainner", Text(idx.Node(p)))
	assert.Equal(t, "", Text(nil))
}

func TestAttr(t *testing.T) {
	idx := mustParse(t, `<div style="color: red" id="x"></div>`)
	p, ok := idx.NextMatching(-1, ElementNamed("div"))
	require.True(t, ok)

	v, ok := Attr(idx.Node(p), "style")
	assert.True(t, ok)
	assert.Equal(t, "color: red", v)

	_, ok = Attr(idx.Node(p), "class")
	assert.False(t, ok)
}

func mustPos(t *testing.T, idx *Index, n *html.Node) int {
	t.Helper()
	p, ok := idx.Position(n)
	require.True(t, ok)
	return p
}
