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
	"log/slog"
	"maps"
	"slices"

	"github.com/NVIDIA/lxd-inventory/pkg/config"
	"github.com/NVIDIA/lxd-inventory/pkg/hostname"
	"github.com/NVIDIA/lxd-inventory/pkg/instance"
	"github.com/NVIDIA/lxd-inventory/pkg/network"
)

// Collision records a hostname produced twice.
type Collision struct {
	Hostname string
	// Previous is the endpoint whose host was replaced.
	Previous string
	// Winner is the endpoint that now owns the hostname.
	Winner string
}

// Assembler folds filtered instances into a Document. Add must be
// called in endpoint order; it is not safe for concurrent use.
type Assembler struct {
	doc        *Document
	owner      map[string]string
	collisions []Collision
}

// NewAssembler returns an assembler over an empty document.
func NewAssembler() *Assembler {
	return &Assembler{
		doc:   NewDocument(),
		owner: map[string]string{},
	}
}

// Add places the instances of one endpoint. Instances are expected to
// have passed the endpoint filters already.
func (a *Assembler) Add(ep *config.Endpoint, instances []instance.Instance) {
	for i := range instances {
		inst := &instances[i]
		host := ep.Hostname.Render(hostname.VarsFor(inst))

		if prev, ok := a.owner[host]; ok {
			c := Collision{Hostname: host, Previous: prev, Winner: ep.Name}
			a.collisions = append(a.collisions, c)
			hostnameCollisions.Inc()
			slog.Warn("hostname collision, later instance replaces earlier",
				"hostname", host,
				"previous_endpoint", prev,
				"endpoint", ep.Name,
				"project", inst.Project,
				"instance", inst.Name)
		}

		a.doc.SetHost(host, hostVars(ep, inst, host), Groups(inst)...)
		a.owner[host] = ep.Name
	}
}

// Document returns the assembled document.
func (a *Assembler) Document() *Document { return a.doc }

// Collisions returns every collision seen so far in order.
func (a *Assembler) Collisions() []Collision { return slices.Clone(a.collisions) }

// Groups returns the groups of an instance, "all" excluded.
func Groups(inst *instance.Instance) []string {
	out := make([]string, 0, 4+len(inst.Profiles))
	switch inst.Type {
	case instance.TypeContainer:
		out = append(out, GroupContainers)
	case instance.TypeVirtualMachine:
		out = append(out, GroupVMs)
	}
	if inst.Status != "" {
		out = append(out, groupStatusPrefix+string(inst.Status))
	}
	out = append(out,
		groupEndpointPrefix+inst.Endpoint,
		groupProjectPrefix+inst.Project,
	)
	for _, p := range inst.Profiles {
		out = append(out, groupProfilePrefix+p)
	}
	return out
}

func hostVars(ep *config.Endpoint, inst *instance.Instance, host string) HostVars {
	hv := HostVars{
		Name:           inst.Name,
		Hostname:       host,
		Type:           string(inst.Type),
		Status:         string(inst.Status),
		Architecture:   inst.Architecture,
		Profiles:       slices.Clone(inst.Profiles),
		Project:        inst.Project,
		Endpoint:       ep.Name,
		EndpointURL:    ep.URL,
		Config:         maps.Clone(inst.Config),
		ExpandedConfig: maps.Clone(inst.ExpandedConfig),
	}
	if hv.Profiles == nil {
		hv.Profiles = []string{}
	}
	if hv.Config == nil {
		hv.Config = map[string]string{}
	}
	if hv.ExpandedConfig == nil {
		hv.ExpandedConfig = map[string]string{}
	}
	if ip, ok := network.SelectAddress(inst.Network, ep.Filters.IgnoreInterfaces, ep.Filters.PreferIPv6); ok {
		hv.IP = ip
		hv.AnsibleHost = ip
	}
	return hv
}
