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
	"maps"
	"slices"
	"strings"
)

// Type is the LXD instance type.
type Type string

const (
	// TypeContainer is a system container.
	TypeContainer Type = "container"
	// TypeVirtualMachine is a virtual machine.
	TypeVirtualMachine Type = "virtual-machine"
)

// typeAliases maps the short names accepted on the command line to LXD types.
var typeAliases = map[string]Type{
	"container":       TypeContainer,
	"lxc":             TypeContainer,
	"virtual-machine": TypeVirtualMachine,
	"vm":              TypeVirtualMachine,
}

// ParseType maps a type name or alias (vm, lxc) to a Type.
func ParseType(s string) (Type, bool) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// SupportedTypes returns the canonical instance types.
func SupportedTypes() []string {
	return []string{string(TypeContainer), string(TypeVirtualMachine)}
}

// Status is the normalized (lower-case) instance status.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusFrozen  Status = "frozen"
	StatusError   Status = "error"
)

// ParseStatus normalizes s and reports whether it is a known status.
func ParseStatus(s string) (Status, bool) {
	st := NormalizeStatus(s)
	switch st {
	case StatusRunning, StatusStopped, StatusFrozen, StatusError:
		return st, true
	default:
		return st, false
	}
}

// NormalizeStatus lower-cases an API status such as "Running".
func NormalizeStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// SupportedStatuses returns every known status.
func SupportedStatuses() []string {
	return []string{
		string(StatusRunning),
		string(StatusStopped),
		string(StatusFrozen),
		string(StatusError),
	}
}

// Instance is one LXD container or virtual machine as seen by the pipeline.
type Instance struct {
	// Name is unique within a project on one endpoint only.
	Name    string
	Project string
	// Endpoint is the name of the endpoint the instance was fetched from.
	Endpoint     string
	Type         Type
	Status       Status
	Architecture string
	// Profiles in the order LXD applies them.
	Profiles []string
	// Config holds instance-local keys only.
	Config map[string]string
	// ExpandedConfig is Config overlaid on the profile configuration.
	ExpandedConfig map[string]string
	Network        NetworkState
}

// Clone returns a deep copy of the instance.
func (i Instance) Clone() Instance {
	out := i
	out.Profiles = slices.Clone(i.Profiles)
	out.Config = maps.Clone(i.Config)
	out.ExpandedConfig = maps.Clone(i.ExpandedConfig)
	out.Network = i.Network.Clone()
	return out
}

// ExpandConfig overlays profile configuration in application order and
// then the instance-local configuration, which wins every conflict.
// Profiles missing from profileConfig contribute nothing.
func ExpandConfig(profiles []string, profileConfig map[string]map[string]string, local map[string]string) map[string]string {
	out := make(map[string]string, len(local))
	for _, p := range profiles {
		maps.Copy(out, profileConfig[p])
	}
	maps.Copy(out, local)
	return out
}
