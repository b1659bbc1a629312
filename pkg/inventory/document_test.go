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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDocument_EmptyHasAll(t *testing.T) {
	d := NewDocument()
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_meta":{"hostvars":{}},"all":{"hosts":[],"vars":{}}}`, string(data))
}

func TestDocument_SetHostReplacesMemberships(t *testing.T) {
	d := NewDocument()
	d.SetHost("web1", HostVars{Name: "web1"}, "lxd_running", "lxd_profile_a")
	d.SetHost("web1", HostVars{Name: "web1", Status: "stopped"}, "lxd_stopped")

	assert.Equal(t, []string{"all", "lxd_stopped"}, d.Groups())
	assert.Empty(t, d.Hosts("lxd_running"))
	hv, ok := d.Host("web1")
	require.True(t, ok)
	assert.Equal(t, "stopped", hv.Status)
	require.NoError(t, d.Validate())
}

func TestDocument_RemoveHost(t *testing.T) {
	d := NewDocument()
	d.SetHost("a", HostVars{}, "g")
	d.SetHost("b", HostVars{}, "g")
	d.RemoveHost("a")
	d.RemoveHost("missing")

	assert.Equal(t, 1, d.Len())
	assert.Equal(t, []string{"b"}, d.Hosts("g"))
	assert.Equal(t, []string{"b"}, d.Hosts(GroupAll))
	require.NoError(t, d.Validate())
}

func TestDocument_SortedHostsAndDroppedGroups(t *testing.T) {
	d := NewDocument()
	d.SetHost("zeta", HostVars{}, "g")
	d.SetHost("alpha", HostVars{}, "g")
	d.SetHost("solo", HostVars{}, "gone")
	d.RemoveHost("solo")

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	assert.NotContains(t, out, "gone", "empty groups are dropped")
	assert.JSONEq(t, `{"hosts":["alpha","zeta"]}`, string(out["g"]))
	assert.JSONEq(t, `{"hosts":["alpha","zeta"],"vars":{}}`, string(out["all"]))
}

func TestDocument_HostVarsOmitMissingIP(t *testing.T) {
	d := NewDocument()
	d.SetHost("a", HostVars{Name: "a", Profiles: []string{}, Config: map[string]string{}, ExpandedConfig: map[string]string{}})
	d.SetHost("b", HostVars{Name: "b", IP: "10.0.0.2", AnsibleHost: "10.0.0.2"})

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var out struct {
		Meta struct {
			HostVars map[string]map[string]any `json:"hostvars"`
		} `json:"_meta"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.NotContains(t, out.Meta.HostVars["a"], "lxd_ip")
	assert.NotContains(t, out.Meta.HostVars["a"], "ansible_host")
	assert.Equal(t, []any{}, out.Meta.HostVars["a"]["lxd_profiles"])
	assert.Equal(t, "10.0.0.2", out.Meta.HostVars["b"]["ansible_host"])
}

func TestDocument_YAML(t *testing.T) {
	d := NewDocument()
	d.SetHost("web1", HostVars{Name: "web1"}, GroupContainers)

	data, err := yaml.Marshal(d)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Contains(t, out, "_meta")
	assert.Contains(t, out, GroupAll)
	assert.Contains(t, out, GroupContainers)
}
