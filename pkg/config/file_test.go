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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleConfig = `
global_defaults:
  verify_ssl: false
  hostname_format: "{name}.{project}"
  filters:
    status: [running, stopped]
    tags:
      user.ansible: true
      user.env!=: prod
      user.managed: null
      user.tier: 1
lxd_endpoints:
  zeta:
    endpoint: unix:///var/snap/lxd/common/lxd/unix.socket
  alpha:
    endpoint: https://lxd.example.com:8443
    verify_ssl: true
    cert_path: ~/client.crt
    key_path: ~/client.key
    filters:
      projects: all
      type: vm
`

func TestParse_Sample(t *testing.T) {
	f, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	// declaration order, not alphabetical
	assert.Equal(t, []string{"zeta", "alpha"}, f.Endpoints.Names())

	require.NotNil(t, f.GlobalDefaults.Filters)
	require.NotNil(t, f.GlobalDefaults.Filters.Tags)
	assert.Equal(t, TagMap{
		{Key: "user.ansible", Value: "true", HasValue: true},
		{Key: "user.env!=", Value: "prod", HasValue: true},
		{Key: "user.managed"},
		{Key: "user.tier", Value: "1", HasValue: true},
	}, *f.GlobalDefaults.Filters.Tags)
	assert.Equal(t, StringList{"running", "stopped"}, f.GlobalDefaults.Filters.Status)

	alpha, ok := f.Endpoints.Lookup("alpha")
	require.True(t, ok)
	assert.Equal(t, "https://lxd.example.com:8443", alpha.Endpoint)
	require.NotNil(t, alpha.VerifySSL)
	assert.True(t, *alpha.VerifySSL)
	require.NotNil(t, alpha.Filters)
	assert.Equal(t, StringList{"all"}, alpha.Filters.Projects)
	assert.Equal(t, StringList{"vm"}, alpha.Filters.Type)
	assert.Nil(t, alpha.Filters.Tags, "omitted tags stay unset")
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, f.Endpoints)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown top-level key", "endpoints: {}\n"},
		{"unknown endpoint key", "lxd_endpoints:\n  a:\n    endpoint: /x\n    verifyssl: true\n"},
		{"duplicate endpoint", "lxd_endpoints:\n  a: {endpoint: /x}\n  a: {endpoint: /y}\n"},
		{"endpoints not a mapping", "lxd_endpoints: [a, b]\n"},
		{"tags not a mapping", "global_defaults:\n  filters:\n    tags: [a]\n"},
		{"nested tag value", "global_defaults:\n  filters:\n    tags: {a: {b: c}}\n"},
		{"list of mappings", "global_defaults:\n  filters:\n    status: [{a: b}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestStringList_Forms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want StringList
	}{
		{"sequence", "v: [a, b]", StringList{"a", "b"}},
		{"scalar", "v: all", StringList{"all"}},
		{"comma scalar", "v: \"a, b,,c\"", StringList{"a", "b", "c"}},
		{"empty sequence", "v: []", StringList{}},
		{"null", "v: null", nil},
		{"missing", "w: 1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				V StringList `yaml:"v"`
				W int        `yaml:"w"`
			}
			require.NoError(t, yaml.Unmarshal([]byte(tt.doc), &out))
			assert.Equal(t, tt.want, out.V)
			if tt.want != nil {
				assert.NotNil(t, out.V)
			}
		})
	}
}

func TestTagMap_EmptyIsNotNil(t *testing.T) {
	f, err := Parse([]byte("lxd_endpoints:\n  a:\n    endpoint: /x\n    filters:\n      tags: {}\n"))
	require.NoError(t, err)
	a, _ := f.Endpoints.Lookup("a")
	require.NotNil(t, a.Filters.Tags)
	assert.Empty(t, *a.Filters.Tags)
}

func TestFile_MarshalKeepsOrder(t *testing.T) {
	f, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	out, err := yaml.Marshal(f)
	require.NoError(t, err)

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, f.Endpoints.Names(), again.Endpoints.Names())
	assert.Equal(t, *f.GlobalDefaults.Filters.Tags, *again.GlobalDefaults.Filters.Tags)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList("a,b", " c ", ""))
	assert.NotNil(t, SplitList())
}
