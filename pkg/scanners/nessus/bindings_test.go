package nessus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/exploopio/nessus-convert/pkg/doctree"
	"github.com/exploopio/nessus-convert/pkg/errors"
)

func TestParsePortSpec(t *testing.T) {
	tests := []struct {
		token     string
		wantProto string
		wantPort  string
		wantErr   bool
	}{
		{token: "(tcp/443)", wantProto: "tcp", wantPort: "443"},
		{token: "  (udp/161)\n", wantProto: "udp", wantPort: "161"},
		{token: "tcp/22", wantProto: "tcp", wantPort: "22"},
		{token: "(tcp/www/8080)", wantProto: "tcp", wantPort: "www/8080"},
		{token: "(tcp)", wantErr: true},
		{token: "(/443)", wantErr: true},
		{token: "(tcp/)", wantErr: true},
		{token: "()", wantErr: true},
		{token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			proto, port, err := parsePortSpec(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsMalformedPortSpec(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProto, proto)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}

func TestParseAnchorText(t *testing.T) {
	tests := []struct {
		text      string
		wantID    string
		wantTitle string
		wantErr   bool
	}{
		{text: "12345 - Sample Vulnerability", wantID: "12345", wantTitle: "Sample Vulnerability"},
		{text: "10863 - SSL Certificate Information - Extended", wantID: "10863", wantTitle: "SSL Certificate Information - Extended"},
		{text: "12345 Sample Vulnerability", wantErr: true},
		{text: "12345", wantErr: true},
		{text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			id, title, err := parseAnchorText(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsStructuralViolation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantTitle, title)
		})
	}
}

func TestResolveHost_NearestPrecedingLabel(t *testing.T) {
	doc := buildDoc(
		testHost{name: "  first.example.com ", vulns: []testVuln{sampleVuln("(tcp/1)")}},
		testHost{name: "second.example.com", vulns: []testVuln{sampleVuln("(tcp/2)")}},
	)
	idx, err := doctree.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	anchors := Locate(idx, DefaultSignature())
	require.Len(t, anchors, 2)

	host, ok := resolveHost(idx, anchors[0].Position)
	require.True(t, ok)
	assert.Equal(t, "first.example.com", host)

	host, ok = resolveHost(idx, anchors[1].Position)
	require.True(t, ok)
	assert.Equal(t, "second.example.com", host)
}

func TestResolveHost_SkipsTruncatedCell(t *testing.T) {
	doc := `<html><body><table><tr><td>DNS Name:</td><td>` + TruncationMarker + `</td><td>real.example.com</td></tr></table>` +
		`<div style="` + testHeaderStyle + `">1 - A</div></body></html>`
	idx, err := doctree.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	anchors := Locate(idx, DefaultSignature())
	require.Len(t, anchors, 1)

	host, ok := resolveHost(idx, anchors[0].Position)
	require.True(t, ok)
	assert.Equal(t, "real.example.com", host)
}

func TestEnumerateBindings_StopsAtNextAnchor(t *testing.T) {
	// Port headers that are siblings of the label but sit after the next
	// header belong to the next block.
	doc := `<html><body><div>` +
		`<div style="` + testHeaderStyle + `">1 - A</div>` +
		`<div>Plugin Output</div><h2>(tcp/1)</h2>` +
		`<span style="` + testHeaderStyle + `">2 - B</span>` +
		`<h2>(tcp/2)</h2>` +
		`</div></body></html>`
	idx, err := doctree.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	sig := DefaultSignature()
	anchors := Locate(idx, sig)
	require.Len(t, anchors, 2)
	assert.True(t, doctree.IsElement(anchors[1].Node, "span"))

	w := enumerateBindings(idx, sig, anchors[0].Position, anchors[1].Position, "h")
	require.Len(t, w.bindings, 1)
	assert.Equal(t, "1", w.bindings[0].Port)
	assert.False(t, w.truncated)
}

func TestLocate_DocumentOrder(t *testing.T) {
	doc := buildDoc(testHost{name: "h", vulns: []testVuln{
		{anchor: "3 - C", fields: sampleFields()},
		{anchor: "1 - A", fields: sampleFields()},
		{anchor: "3 - C", fields: sampleFields()},
	}})
	idx, err := doctree.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	anchors := Locate(idx, DefaultSignature())
	require.Len(t, anchors, 3)

	var texts []string
	for i, a := range anchors {
		if i > 0 {
			assert.Less(t, anchors[i-1].Position, a.Position)
		}
		texts = append(texts, a.Text())
	}
	assert.Equal(t, []string{"3 - C", "1 - A", "3 - C"}, texts)
}

func TestStyleSignature(t *testing.T) {
	sig := DefaultSignature()

	el := func(tag string, attrs ...html.Attribute) *html.Node {
		return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
	}

	assert.True(t, sig.IsHeader(el("div", html.Attribute{Key: "style", Val: testHeaderStyle})))
	assert.True(t, sig.IsHeader(el("td", html.Attribute{Key: "style", Val: "display: block; " + testHeaderStyle})))
	assert.False(t, sig.IsHeader(el("div", html.Attribute{Key: "style", Val: "font-weight: bold;"})))
	assert.False(t, sig.IsHeader(el("div")))
	assert.False(t, sig.IsHeader(&html.Node{Type: html.TextNode, Data: testHeaderStyle}))
	assert.False(t, sig.IsHeader(nil))

	assert.True(t, sig.IsBoundary(el("div", html.Attribute{Key: "id", Val: "x"})))
	assert.True(t, sig.IsBoundary(el("div", html.Attribute{Key: "style", Val: testHeaderStyle})))
	assert.False(t, sig.IsBoundary(el("span", html.Attribute{Key: "id", Val: "x"})))
	assert.False(t, sig.IsBoundary(el("div")))

	assert.True(t, sig.IsPortHeader(el("h2")))
	assert.False(t, sig.IsPortHeader(el("h3")))
}

func TestNewStyleSignature(t *testing.T) {
	sig, err := NewStyleSignature(`background: #[0-9a-f]{6}; color: #fff`)
	require.NoError(t, err)
	n := &html.Node{Type: html.ElementNode, Data: "p", Attr: []html.Attribute{
		{Key: "style", Val: "background: #abcdef; color: #fff"},
	}}
	assert.True(t, sig.IsHeader(n))

	_, err = NewStyleSignature("(")
	assert.Error(t, err)

	_, err = NewStyleSignature("")
	assert.Error(t, err)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "structural_violation", OutcomeStructuralViolation.String())
	assert.Equal(t, "empty_binding_set", OutcomeEmptyBindingSet.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}

func TestExpand(t *testing.T) {
	b := Block{
		VulnID: "1",
		Title:  "A",
		Fields: FieldSet{
			Synopsis: FieldValue{Value: "s", Present: true},
			CVSS:     FieldValue{},
		},
		Outcome: OutcomeEmptyBindingSet,
	}

	assert.Empty(t, Expand(b, false))

	kept := Expand(b, true)
	require.Len(t, kept, 1)
	assert.Equal(t, "s", kept[0].Synopsis)
	assert.Equal(t, "N/A", kept[0].CVSS)

	b.Outcome = OutcomeStructuralViolation
	assert.Empty(t, Expand(b, true))
}
