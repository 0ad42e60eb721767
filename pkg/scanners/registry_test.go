package scanners

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exploopio/nessus-convert/pkg/errors"
	"github.com/exploopio/nessus-convert/pkg/scanners/nessus"
	"github.com/exploopio/nessus-convert/pkg/scanners/nessusxml"
)

const htmlDoc = `<!DOCTYPE html><html><body><table><tr><td>DNS Name:</td><td>h</td></tr></table></body></html>`

const htmlFragment = `<table><tr><td>DNS Name:</td><td>h</td></tr></table><div>Plugin Output</div>`

const xmlDoc = `<?xml version="1.0" ?><NessusClientData_v2><Report name="r"></Report></NessusClientData_v2>`

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(nil, nil)
	assert.Equal(t, []string{nessus.ParserName, nessusxml.ParserName}, r.List())
}

func TestSelect(t *testing.T) {
	r := NewRegistry(nil, nil)

	tests := []struct {
		name     string
		parser   string
		data     string
		wantName string
		wantKind errors.Kind
	}{
		{name: "auto html", parser: Auto, data: htmlDoc, wantName: nessus.ParserName},
		{name: "auto html fragment", parser: Auto, data: htmlFragment, wantName: nessus.ParserName},
		{name: "auto xml", parser: "", data: xmlDoc, wantName: nessusxml.ParserName},
		{name: "explicit", parser: nessusxml.ParserName, data: htmlDoc, wantName: nessusxml.ParserName},
		{name: "unknown input", parser: Auto, data: "plain text", wantKind: errors.KindDocumentUnavailable},
		{name: "unknown parser", parser: "qualys", data: htmlDoc, wantKind: errors.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Select(r, tt.parser, []byte(tt.data))
			if tt.wantName == "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, errors.GetKind(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}
