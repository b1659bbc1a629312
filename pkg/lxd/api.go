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

package lxd

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/NVIDIA/lxd-inventory/pkg/instance"
)

// Response types of the LXD envelope.
const (
	ResponseSync  = "sync"
	ResponseAsync = "async"
	ResponseError = "error"
)

// Response is the envelope wrapping every LXD API reply.
type Response struct {
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Error      string          `json:"error"`
	ErrorCode  int             `json:"error_code"`
	Metadata   json.RawMessage `json:"metadata"`
}

// APIProject is the subset of a project object the inventory needs.
type APIProject struct {
	Name string `json:"name" yaml:"name"`
}

// APIProfile is the subset of a profile object the inventory needs.
type APIProfile struct {
	Name   string            `json:"name" yaml:"name"`
	Config map[string]string `json:"config" yaml:"config"`
}

// APIInstanceState is the runtime state returned with recursion=2.
type APIInstanceState struct {
	Status  string                `json:"status" yaml:"status"`
	Network instance.NetworkState `json:"network" yaml:"network"`
}

// APIInstance is an instance object as returned by
// GET /1.0/instances?recursion=2.
type APIInstance struct {
	Name         string   `json:"name" yaml:"name"`
	Project      string   `json:"project" yaml:"project"`
	Type         string   `json:"type" yaml:"type"`
	Status       string   `json:"status" yaml:"status"`
	Architecture string   `json:"architecture" yaml:"architecture"`
	Profiles     []string `json:"profiles" yaml:"profiles"`
	// Config holds instance-local keys.
	Config map[string]string `json:"config" yaml:"config"`
	// ExpandedConfig is nil when the server or snapshot omits it.
	ExpandedConfig map[string]string `json:"expanded_config" yaml:"expanded_config"`
	State          *APIInstanceState `json:"state" yaml:"state"`
}

// HasExpandedConfig reports whether the server sent expanded_config.
func (a *APIInstance) HasExpandedConfig() bool {
	return a.ExpandedConfig != nil
}

// ToInstance converts the API object. project is used when the object
// does not name its own project; profileConfig rebuilds expanded_config
// when the object lacks it.
func (a *APIInstance) ToInstance(endpoint, project string, profileConfig map[string]map[string]string) instance.Instance {
	inst := instance.Instance{
		Name:         a.Name,
		Project:      a.Project,
		Endpoint:     endpoint,
		Status:       instance.NormalizeStatus(a.Status),
		Architecture: a.Architecture,
		Profiles:     slices.Clone(a.Profiles),
		Config:       maps.Clone(a.Config),
	}
	if inst.Project == "" {
		inst.Project = project
	}
	if inst.Config == nil {
		inst.Config = map[string]string{}
	}

	// servers predating virtual machines omit the type
	switch t, ok := instance.ParseType(a.Type); {
	case ok:
		inst.Type = t
	case a.Type == "":
		inst.Type = instance.TypeContainer
	default:
		inst.Type = instance.Type(a.Type)
	}

	if a.HasExpandedConfig() {
		inst.ExpandedConfig = maps.Clone(a.ExpandedConfig)
	} else {
		inst.ExpandedConfig = instance.ExpandConfig(a.Profiles, profileConfig, a.Config)
	}

	if a.State != nil {
		inst.Network = a.State.Network.Clone()
		if inst.Status == "" {
			inst.Status = instance.NormalizeStatus(a.State.Status)
		}
	}
	return inst
}

// ProfileConfig indexes profile configuration by profile name.
func ProfileConfig(profiles []APIProfile) map[string]map[string]string {
	out := make(map[string]map[string]string, len(profiles))
	for _, p := range profiles {
		out[p.Name] = p.Config
	}
	return out
}
