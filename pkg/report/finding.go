package report

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/exploopio/nessus-convert/pkg/shared/fingerprint"
	"github.com/exploopio/nessus-convert/pkg/shared/severity"
)

// NotAvailable is rendered for optional fields whose label is absent.
const NotAvailable = "N/A"

// Field names in output order. Sinks must emit fields in exactly this order.
const (
	FieldVulnID      = "Vuln ID"
	FieldTitle       = "Title"
	FieldSynopsis    = "Synopsis"
	FieldDescription = "Description"
	FieldRisk        = "Risk"
	FieldCVSS        = "CVSS"
	FieldSolution    = "Solution"
	FieldHostname    = "Hostname"
	FieldProtocol    = "Protocol"
	FieldPort        = "Port"
	FieldReferences  = "References"
)

// FieldNames returns the fixed output field ordering.
func FieldNames() []string {
	return []string{
		FieldVulnID,
		FieldTitle,
		FieldSynopsis,
		FieldDescription,
		FieldRisk,
		FieldCVSS,
		FieldSolution,
		FieldHostname,
		FieldProtocol,
		FieldPort,
		FieldReferences,
	}
}

// HostBinding is one (host, protocol, port) triple a vulnerability was
// reported against.
type HostBinding struct {
	Host     string `json:"host" yaml:"host"`
	Protocol string `json:"protocol" yaml:"protocol"`
	Port     string `json:"port" yaml:"port"`
}

// PortSpec rejoins protocol and port as "proto/port".
func (b HostBinding) PortSpec() string {
	return b.Protocol + "/" + b.Port
}

// Finding is one flattened output record.
type Finding struct {
	VulnID      string
	Title       string
	Synopsis    string
	Description string
	Risk        string
	CVSS        string
	Solution    string
	Hostname    string
	Protocol    string
	Port        string
	References  string
}

// Values returns the field values in FieldNames order.
func (f Finding) Values() []string {
	return []string{
		f.VulnID,
		f.Title,
		f.Synopsis,
		f.Description,
		f.Risk,
		f.CVSS,
		f.Solution,
		f.Hostname,
		f.Protocol,
		f.Port,
		f.References,
	}
}

// Binding returns the host binding the finding was expanded from.
func (f Finding) Binding() HostBinding {
	return HostBinding{Host: f.Hostname, Protocol: f.Protocol, Port: f.Port}
}

// Severity resolves the normalized severity of the finding.
func (f Finding) Severity() severity.Level {
	return severity.FromRisk(f.Risk, f.CVSS)
}

// Fingerprint returns the deduplication key of the finding.
func (f Finding) Fingerprint() string {
	return fingerprint.Generate(fingerprint.Input{
		VulnID:   f.VulnID,
		Host:     f.Hostname,
		Protocol: f.Protocol,
		Port:     f.Port,
	})
}

// MarshalJSON encodes the finding as an object keyed by field name, keys in
// output order. Markup in values is written as is, not \u-escaped.
func (f Finding) MarshalJSON() ([]byte, error) {
	var buf, scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	writeString := func(s string) error {
		scratch.Reset()
		if err := enc.Encode(s); err != nil {
			return err
		}
		buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte("\n")))
		return nil
	}

	buf.WriteByte('{')
	names := FieldNames()
	for i, v := range f.Values() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(names[i]); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeString(v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by field name.
func (f *Finding) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*f = fromMap(m)
	return nil
}

// MarshalYAML encodes the finding as a mapping with keys in output order.
func (f Finding) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	names := FieldNames()
	for i, v := range f.Values() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: names[i]},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping keyed by field name.
func (f *Finding) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]string
	if err := value.Decode(&m); err != nil {
		return err
	}
	*f = fromMap(m)
	return nil
}

func fromMap(m map[string]string) Finding {
	return Finding{
		VulnID:      m[FieldVulnID],
		Title:       m[FieldTitle],
		Synopsis:    m[FieldSynopsis],
		Description: m[FieldDescription],
		Risk:        m[FieldRisk],
		CVSS:        m[FieldCVSS],
		Solution:    m[FieldSolution],
		Hostname:    m[FieldHostname],
		Protocol:    m[FieldProtocol],
		Port:        m[FieldPort],
		References:  m[FieldReferences],
	}
}
