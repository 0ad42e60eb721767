package nessusxml

import (
	"encoding/xml"
	"strings"
)

// ClientData is the root of a .nessus v2 export.
type ClientData struct {
	XMLName xml.Name `xml:"NessusClientData_v2"`
	Policy  Policy   `xml:"Policy"`
	Report  Report   `xml:"Report"`
}

// Policy is the scan policy the report was produced with.
type Policy struct {
	Name string `xml:"policyName"`
}

// Report holds the scanned hosts.
type Report struct {
	Name  string       `xml:"name,attr"`
	Hosts []ReportHost `xml:"ReportHost"`
}

// ReportHost is one scanned host and its plugin results.
type ReportHost struct {
	Name       string         `xml:"name,attr"`
	Properties HostProperties `xml:"HostProperties"`
	Items      []ReportItem   `xml:"ReportItem"`
}

// HostProperties are the name/value tags Nessus records per host.
type HostProperties struct {
	Tags []Tag `xml:"tag"`
}

// Tag is one host property.
type Tag struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

// Get returns the trimmed value of a tag, or "".
func (hp HostProperties) Get(name string) string {
	for _, t := range hp.Tags {
		if t.Name == name {
			return strings.TrimSpace(t.Text)
		}
	}
	return ""
}

// ReportItem is one plugin result on one port.
type ReportItem struct {
	PluginID     string `xml:"pluginID,attr"`
	PluginName   string `xml:"pluginName,attr"`
	PluginFamily string `xml:"pluginFamily,attr"`
	Port         string `xml:"port,attr"`
	Protocol     string `xml:"protocol,attr"`
	Severity     string `xml:"severity,attr"` // 0-4
	SvcName      string `xml:"svc_name,attr"`

	Synopsis    string   `xml:"synopsis"`
	Description string   `xml:"description"`
	Solution    string   `xml:"solution"`
	RiskFactor  string   `xml:"risk_factor"`
	CVSS3Base   string   `xml:"cvss3_base_score"`
	SeeAlso     string   `xml:"see_also"`
	CVE         []string `xml:"cve"`
	Output      string   `xml:"plugin_output"`
}
