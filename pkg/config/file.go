// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration document.
type File struct {
	GlobalDefaults Defaults    `yaml:"global_defaults"`
	Endpoints      EndpointMap `yaml:"lxd_endpoints"`
}

// Defaults holds the settings shared by global_defaults and every
// endpoint entry. Nil fields are unset and inherit the lower layer.
type Defaults struct {
	VerifySSL      *bool    `yaml:"verify_ssl,omitempty"`
	CertPath       *string  `yaml:"cert_path,omitempty"`
	KeyPath        *string  `yaml:"key_path,omitempty"`
	CACertPath     *string  `yaml:"ca_cert_path,omitempty"`
	HostnameFormat *string  `yaml:"hostname_format,omitempty"`
	Filters        *Filters `yaml:"filters,omitempty"`
}

// EndpointEntry is one lxd_endpoints value.
type EndpointEntry struct {
	// Endpoint is an https:// URL, a unix:// socket, an absolute socket
	// path, or a file:// instance snapshot.
	Endpoint string `yaml:"endpoint"`
	Defaults `yaml:",inline"`
}

// Filters is the raw filters block. Nil fields are unset.
type Filters struct {
	Status           StringList `yaml:"status,omitempty"`
	Type             StringList `yaml:"type,omitempty"`
	Projects         StringList `yaml:"projects,omitempty"`
	Profiles         StringList `yaml:"profiles,omitempty"`
	Tags             *TagMap    `yaml:"tags,omitempty"`
	IgnoreInterfaces StringList `yaml:"ignore_interfaces,omitempty"`
	PreferIPv6       *bool      `yaml:"prefer_ipv6,omitempty"`
	ExcludeNames     StringList `yaml:"exclude_names,omitempty"`
}

// StringList accepts a YAML sequence or a comma-separated scalar.
// An explicit empty sequence decodes to a non-nil empty list.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = SplitList(node.Value)
		return nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: list items must be scalars", item.Line)
			}
			out = append(out, SplitList(item.Value)...)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a list or a comma-separated string", node.Line)
	}
}

// SplitList splits comma-separated values, trimming blanks and dropping
// empty items. The result is never nil.
func SplitList(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// TagEntry is one raw tags mapping entry in declaration order.
type TagEntry struct {
	Key string
	// Value is meaningful only when HasValue is set; a YAML null leaves it unset.
	Value    string
	HasValue bool
}

// TagMap is the raw tags mapping. Scalar values are taken verbatim, so
// unquoted true or 1 match the string LXD stores.
type TagMap []TagEntry

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *TagMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: tags must be a mapping", node.Line)
	}
	out := make(TagMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: tag %q must have a scalar value", v.Line, k.Value)
		}
		entry := TagEntry{Key: k.Value}
		if v.Tag != "!!null" {
			entry.Value = v.Value
			entry.HasValue = true
		}
		out = append(out, entry)
	}
	*m = out
	return nil
}

// MarshalYAML renders the mapping back in declaration order.
func (m TagMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m {
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if e.HasValue {
			val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value}
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.Key}, val)
	}
	return node, nil
}

// NamedEndpoint pairs an endpoint name with its entry.
type NamedEndpoint struct {
	Name  string
	Entry EndpointEntry
}

// EndpointMap is lxd_endpoints in declaration order.
type EndpointMap []NamedEndpoint

// UnmarshalYAML implements yaml.Unmarshaler. Entries are decoded strictly.
func (m *EndpointMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: lxd_endpoints must be a mapping", node.Line)
	}
	out := make(EndpointMap, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.TrimSpace(node.Content[i].Value)
		if name == "" {
			return fmt.Errorf("line %d: endpoint name is empty", node.Content[i].Line)
		}
		if seen[name] {
			return fmt.Errorf("line %d: duplicate endpoint %q", node.Content[i].Line, name)
		}
		seen[name] = true

		var entry EndpointEntry
		if err := decodeStrict(node.Content[i+1], &entry); err != nil {
			return fmt.Errorf("endpoint %q: %w", name, err)
		}
		out = append(out, NamedEndpoint{Name: name, Entry: entry})
	}
	*m = out
	return nil
}

// MarshalYAML renders the endpoints back in declaration order.
func (m EndpointMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m {
		var val yaml.Node
		if err := val.Encode(e.Entry); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.Name}, &val)
	}
	return node, nil
}

// Lookup returns the entry for name.
func (m EndpointMap) Lookup(name string) (EndpointEntry, bool) {
	for _, e := range m {
		if e.Name == name {
			return e.Entry, true
		}
	}
	return EndpointEntry{}, false
}

// Names returns endpoint names in declaration order.
func (m EndpointMap) Names() []string {
	out := make([]string, len(m))
	for i, e := range m {
		out[i] = e.Name
	}
	return out
}

// decodeStrict decodes node rejecting unknown fields. Node.Decode does not
// carry the strict setting of the outer decoder, so the node is
// re-encoded and decoded by a strict decoder.
func decodeStrict(node *yaml.Node, out any) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// Parse decodes a configuration document, rejecting unknown fields.
// An empty document yields an empty File.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		return nil, err
	}
	return f, nil
}
