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

package inventory

import (
	"encoding/json"
	"fmt"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Well-known group names.
const (
	GroupAll        = "all"
	GroupContainers = "lxd_containers"
	GroupVMs        = "lxd_vms"

	groupStatusPrefix   = "lxd_"
	groupEndpointPrefix = "lxd_endpoint_"
	groupProjectPrefix  = "lxd_project_"
	groupProfilePrefix  = "lxd_profile_"
)

// HostVars are the variables published for one host.
type HostVars struct {
	Name           string            `json:"lxd_name" yaml:"lxd_name"`
	Hostname       string            `json:"lxd_hostname" yaml:"lxd_hostname"`
	Type           string            `json:"lxd_type" yaml:"lxd_type"`
	Status         string            `json:"lxd_status" yaml:"lxd_status"`
	Architecture   string            `json:"lxd_architecture" yaml:"lxd_architecture"`
	Profiles       []string          `json:"lxd_profiles" yaml:"lxd_profiles"`
	Project        string            `json:"lxd_project" yaml:"lxd_project"`
	Endpoint       string            `json:"lxd_endpoint" yaml:"lxd_endpoint"`
	EndpointURL    string            `json:"lxd_endpoint_url" yaml:"lxd_endpoint_url"`
	IP             string            `json:"lxd_ip,omitempty" yaml:"lxd_ip,omitempty"`
	Config         map[string]string `json:"lxd_config" yaml:"lxd_config"`
	ExpandedConfig map[string]string `json:"lxd_expanded_config" yaml:"lxd_expanded_config"`
	AnsibleHost    string            `json:"ansible_host,omitempty" yaml:"ansible_host,omitempty"`
}

// Document is the inventory under construction. The zero value is not
// usable; call NewDocument.
type Document struct {
	groups   map[string]sets.Set[string]
	hostvars map[string]HostVars
}

// NewDocument returns an empty document containing only "all".
func NewDocument() *Document {
	return &Document{
		groups:   map[string]sets.Set[string]{GroupAll: sets.New[string]()},
		hostvars: map[string]HostVars{},
	}
}

// SetHost adds or replaces a host. Replacing drops every previous group
// membership before the new groups are applied. "all" is implied.
func (d *Document) SetHost(name string, vars HostVars, groups ...string) {
	d.RemoveHost(name)
	d.hostvars[name] = vars
	d.groups[GroupAll].Insert(name)
	for _, g := range groups {
		set, ok := d.groups[g]
		if !ok {
			set = sets.New[string]()
			d.groups[g] = set
		}
		set.Insert(name)
	}
}

// RemoveHost deletes a host and all its memberships.
func (d *Document) RemoveHost(name string) {
	if _, ok := d.hostvars[name]; !ok {
		return
	}
	delete(d.hostvars, name)
	for _, set := range d.groups {
		set.Delete(name)
	}
}

// Host returns the variables of a host.
func (d *Document) Host(name string) (HostVars, bool) {
	v, ok := d.hostvars[name]
	return v, ok
}

// Len returns the number of hosts.
func (d *Document) Len() int { return len(d.hostvars) }

// Groups returns the non-empty group names, plus "all", sorted.
func (d *Document) Groups() []string {
	out := make([]string, 0, len(d.groups))
	for name, set := range d.groups {
		if name == GroupAll || set.Len() > 0 {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Hosts returns the sorted members of a group.
func (d *Document) Hosts(group string) []string {
	set, ok := d.groups[group]
	if !ok {
		return []string{}
	}
	return sets.List(set)
}

// Validate checks that groups and hostvars agree.
func (d *Document) Validate() error {
	all := d.groups[GroupAll]
	for name := range d.hostvars {
		if !all.Has(name) {
			return fmt.Errorf("host %q has hostvars but is not in %q", name, GroupAll)
		}
	}
	for group, set := range d.groups {
		for name := range set {
			if _, ok := d.hostvars[name]; !ok {
				return fmt.Errorf("host %q in group %q has no hostvars", name, group)
			}
		}
	}
	return nil
}

type allGroup struct {
	Hosts []string       `json:"hosts" yaml:"hosts"`
	Vars  map[string]any `json:"vars" yaml:"vars"`
}

type group struct {
	Hosts []string `json:"hosts" yaml:"hosts"`
}

type meta struct {
	HostVars map[string]HostVars `json:"hostvars" yaml:"hostvars"`
}

// view renders the document in the shape Ansible consumes.
func (d *Document) view() map[string]any {
	out := make(map[string]any, len(d.groups)+1)
	out["_meta"] = meta{HostVars: d.hostvars}
	for _, name := range d.Groups() {
		if name == GroupAll {
			out[name] = allGroup{Hosts: d.Hosts(name), Vars: map[string]any{}}
			continue
		}
		out[name] = group{Hosts: d.Hosts(name)}
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.view())
}

// MarshalYAML implements yaml.Marshaler.
func (d *Document) MarshalYAML() (any, error) {
	return d.view(), nil
}
