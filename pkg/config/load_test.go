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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
)

func envOf(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

func TestLocate_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lxd_endpoints: {}\n"), 0o600))

	got, err := Locate(path, envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, path, got)

	got, err = Locate("", envOf(map[string]string{EnvConfigPath: path}))
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestLocate_ExplicitMissing(t *testing.T) {
	_, err := Locate(filepath.Join(t.TempDir(), "nope.yaml"), envOf(nil))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfig))
}

func TestLocate_XDG(t *testing.T) {
	t.Chdir(t.TempDir())
	xdg := t.TempDir()
	path := filepath.Join(xdg, "lxd-inventory", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	got, err := Locate("", envOf(map[string]string{"XDG_CONFIG_HOME": xdg}))
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestLocate_WorkingDirectoryFirst(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("lxd_inventory.yaml", []byte(""), 0o600))
	require.NoError(t, os.WriteFile("lxd_inventory.yml", []byte(""), 0o600))

	got, err := Locate("", envOf(map[string]string{"XDG_CONFIG_HOME": t.TempDir()}))
	require.NoError(t, err)
	assert.Equal(t, "lxd_inventory.yml", got)
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lxd_endpoints: [\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfig))
}

func TestLoadOrEnvironment_Fallback(t *testing.T) {
	t.Chdir(t.TempDir())
	env := envOf(map[string]string{
		"XDG_CONFIG_HOME": t.TempDir(),
		EnvEndpoint:       "https://lxd:8443",
		EnvCertPath:       "/c.crt",
		EnvKeyPath:        "/c.key",
		EnvVerifySSL:      "true",
	})

	if _, err := os.Stat("/etc/lxd-inventory/config.yaml"); err == nil {
		t.Skip("system configuration present")
	}

	f, path, err := LoadOrEnvironment("", env)
	require.NoError(t, err)
	assert.Empty(t, path)
	require.Len(t, f.Endpoints, 1)

	e := f.Endpoints[0]
	assert.Equal(t, FallbackEndpointName, e.Name)
	assert.Equal(t, "https://lxd:8443", e.Entry.Endpoint)
	assert.Equal(t, "/c.crt", *e.Entry.CertPath)
	assert.Equal(t, "/c.key", *e.Entry.KeyPath)
	assert.Nil(t, e.Entry.CACertPath)
	assert.True(t, *e.Entry.VerifySSL)
}

func TestFromEnvironment_DefaultSocket(t *testing.T) {
	f := FromEnvironment(envOf(nil))
	require.Len(t, f.Endpoints, 1)
	assert.Equal(t, "unix://"+DefaultSocketPath(), f.Endpoints[0].Entry.Endpoint)
	assert.Nil(t, f.Endpoints[0].Entry.VerifySSL)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/x/y")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y"), got)

	got, err = ExpandHome("/abs")
	require.NoError(t, err)
	assert.Equal(t, "/abs", got)

	got, err = ExpandHome("~user/x")
	require.NoError(t, err)
	assert.Equal(t, "~user/x", got)
}
