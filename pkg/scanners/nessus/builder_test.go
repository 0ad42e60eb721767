package nessus

import (
	"fmt"
	"html"
	"strings"
)

const testHeaderStyle = "box-sizing: border-box; width: 100%; margin: 0 0 10px 0; padding: 5px 10px; background: #d43f3a; font-weight: bold; font-size: 14px; line-height: 20px; color: #fff;"

// Special entries for testVuln.ports.
const (
	portTruncate = "!truncate"
	portBoundary = "!boundary"
)

var testLabelOrder = []string{
	LabelSynopsis,
	LabelDescription,
	LabelSolution,
	LabelRiskFactor,
	LabelCVSS,
	LabelReferences,
}

type testVuln struct {
	anchor string

	// fields maps label to value; a label not in the map is not rendered.
	fields map[string]string

	// ports are the raw secondary header texts under "Plugin Output".
	ports []string

	noPluginOutput bool
}

type testHost struct {
	// name is rendered as the "DNS Name:" cell; empty omits the host table.
	name  string
	vulns []testVuln
}

// sampleFields returns the fields of the sample block: no CVSS, no References.
func sampleFields() map[string]string {
	return map[string]string{
		LabelSynopsis:    "X",
		LabelRiskFactor:  "High",
		LabelSolution:    "Patch",
		LabelDescription: "Desc",
	}
}

func sampleVuln(ports ...string) testVuln {
	return testVuln{
		anchor: "12345 - Sample Vulnerability",
		fields: sampleFields(),
		ports:  ports,
	}
}

// buildDoc renders hosts in the layout of the Nessus HTML export.
func buildDoc(hosts ...testHost) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>Nessus Report</title></head><body>\n")
	for i, h := range hosts {
		fmt.Fprintf(&b, "<div class=\"host\" data-host=\"%d\">\n", i)
		if h.name != "" {
			b.WriteString("<table><tr><td>IP:</td><td>10.0.0.1</td></tr>")
			fmt.Fprintf(&b, "<tr><td>DNS Name:</td><td>%s</td></tr></table>\n", html.EscapeString(h.name))
		}
		for j, v := range h.vulns {
			writeVuln(&b, fmt.Sprintf("h%d-v%d", i, j), v)
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func writeVuln(b *strings.Builder, id string, v testVuln) {
	fmt.Fprintf(b, "<div style=\"%s\">%s</div>\n", testHeaderStyle, html.EscapeString(v.anchor))
	fmt.Fprintf(b, "<div id=\"%s\">\n", id)
	for _, label := range testLabelOrder {
		value, ok := v.fields[label]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "<div>%s</div><div class=\"clear\"></div><div><div>%s</div></div>\n",
			html.EscapeString(label), html.EscapeString(value))
	}
	if !v.noPluginOutput {
		b.WriteString("<div>Plugin Output</div>\n")
		for k, p := range v.ports {
			switch p {
			case portTruncate:
				fmt.Fprintf(b, "<div>%s</div>\n", TruncationMarker)
			case portBoundary:
				fmt.Fprintf(b, "<div id=\"%s-next-%d\"></div>\n", id, k)
			default:
				fmt.Fprintf(b, "<h2>%s</h2>\n<div class=\"output\">output %d</div>\n", html.EscapeString(p), k)
			}
		}
	}
	b.WriteString("</div>\n")
}
