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

package instance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Family is the LXD address family.
type Family string

const (
	FamilyInet  Family = "inet"
	FamilyInet6 Family = "inet6"
)

// Address is one address assigned to an interface.
type Address struct {
	Address string `json:"address" yaml:"address"`
	Family  Family `json:"family" yaml:"family"`
	Netmask string `json:"netmask,omitempty" yaml:"netmask,omitempty"`
	// Scope is global, link or local. Empty when the source omits it.
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Interface is a named network interface and its addresses.
type Interface struct {
	Name      string
	Addresses []Address
}

// NetworkState lists interfaces in declaration order.
//
// LXD encodes the network state as an object keyed by interface name; both
// the JSON and YAML decoders keep the key order of the document.
type NetworkState []Interface

type interfaceBody struct {
	Addresses []Address `json:"addresses" yaml:"addresses"`
}

// Clone returns a deep copy of the network state.
func (n NetworkState) Clone() NetworkState {
	if n == nil {
		return nil
	}
	out := make(NetworkState, len(n))
	for i, iface := range n {
		out[i] = Interface{Name: iface.Name, Addresses: slices.Clone(iface.Addresses)}
	}
	return out
}

// UnmarshalJSON decodes the LXD network object keeping interface order.
func (n *NetworkState) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode network state: %w", err)
	}
	if tok == nil {
		*n = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("network state must be an object, got %v", tok)
	}

	var out NetworkState
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode network interface name: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("network interface name must be a string, got %v", keyTok)
		}
		var body interfaceBody
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("failed to decode network interface %q: %w", name, err)
		}
		out = append(out, Interface{Name: name, Addresses: body.Addresses})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode network state: %w", err)
	}

	*n = out
	return nil
}

// MarshalJSON encodes the state back into the LXD object form, in order.
func (n NetworkState) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, iface := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(iface.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(interfaceBody{Addresses: iface.Addresses})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes the LXD network mapping keeping interface order.
func (n *NetworkState) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*n = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: network state must be a mapping", node.Line)
	}

	out := make(NetworkState, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var body interfaceBody
		if err := node.Content[i+1].Decode(&body); err != nil {
			return fmt.Errorf("failed to decode network interface %q: %w", name, err)
		}
		out = append(out, Interface{Name: name, Addresses: body.Addresses})
	}

	*n = out
	return nil
}

// MarshalYAML encodes the state as an ordered mapping.
func (n NetworkState) MarshalYAML() (any, error) {
	if n == nil {
		return nil, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, iface := range n {
		var body yaml.Node
		if err := body.Encode(interfaceBody{Addresses: iface.Addresses}); err != nil {
			return nil, fmt.Errorf("failed to encode network interface %q: %w", iface.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: iface.Name}, &body)
	}
	return node, nil
}
