/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/lxd-inventory/pkg/serializer"
)

const snapshotJSON = `[
  {
    "name": "web1",
    "project": "default",
    "type": "container",
    "status": "Running",
    "architecture": "x86_64",
    "profiles": ["default"],
    "config": {"user.ansible": "true"},
    "expanded_config": {"user.ansible": "true", "user.role": "web"},
    "state": {"network": {
      "lo": {"addresses": [{"family": "inet", "address": "127.0.0.1", "scope": "local"}]},
      "eth0": {"addresses": [{"family": "inet", "address": "10.0.0.5", "scope": "global"}]}
    }}
  },
  {
    "name": "db1",
    "project": "default",
    "type": "virtual-machine",
    "status": "Stopped",
    "profiles": ["default"],
    "config": {},
    "expanded_config": {}
  }
]`

// fixture writes a snapshot and a configuration pointing at it.
func fixture(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	snap := filepath.Join(dir, "instances.json")
	require.NoError(t, os.WriteFile(snap, []byte(snapshotJSON), 0o600))

	cfg := "lxd_endpoints:\n  local:\n    endpoint: file://" + snap + "\n" + extra
	path := filepath.Join(dir, "lxd_inventory.yml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	argv := append([]string{name, "--log-level", "error"}, args...)
	code := Run(context.Background(), argv, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_List(t *testing.T) {
	cfg := fixture(t, "")
	code, out, _ := run(t, "--config", cfg, "--list")
	require.Equal(t, 0, code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	all := doc["all"].(map[string]any)
	assert.ElementsMatch(t, []any{"db1", "web1"}, all["hosts"])
	assert.Equal(t, map[string]any{}, all["vars"])
	assert.Contains(t, doc, "lxd_containers")
	assert.Contains(t, doc, "lxd_vms")
	assert.Contains(t, doc, "lxd_running")

	hostvars := doc["_meta"].(map[string]any)["hostvars"].(map[string]any)
	web := hostvars["web1"].(map[string]any)
	assert.Equal(t, "10.0.0.5", web["ansible_host"])
	assert.Equal(t, "running", web["lxd_status"])
	assert.NotContains(t, hostvars["db1"], "ansible_host")
}

func TestRun_FiltersFromFlags(t *testing.T) {
	cfg := fixture(t, "")
	code, out, _ := run(t, "--config", cfg, "--list", "--status", "running", "--tag", "user.ansible=true")
	require.Equal(t, 0, code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []any{"web1"}, doc["all"].(map[string]any)["hosts"])
	assert.NotContains(t, doc, "lxd_stopped")
}

func TestRun_TagValueWithComma(t *testing.T) {
	cfg := fixture(t, "")
	code, out, _ := run(t, "--config", cfg, "--list", "--tag", "user.role=web,db")
	require.Equal(t, 0, code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Empty(t, doc["all"].(map[string]any)["hosts"], "the value is the literal web,db")
}

func TestRun_Host(t *testing.T) {
	cfg := fixture(t, "")

	code, out, _ := run(t, "--config", cfg, "--host", "web1")
	require.Equal(t, 0, code)
	var hv map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &hv))
	assert.Equal(t, "web1", hv["lxd_name"])
	assert.Equal(t, "local", hv["lxd_endpoint"])

	code, out, _ = run(t, "--config", cfg, "--instance", "missing")
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{}`, out)
}

func TestRun_YAML(t *testing.T) {
	cfg := fixture(t, "")
	for _, args := range [][]string{{"--yaml"}, {"--format", "yaml"}} {
		code, out, _ := run(t, append([]string{"--config", cfg, "--list"}, args...)...)
		require.Equal(t, 0, code)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
		assert.Contains(t, doc, "_meta")
	}
}

func TestRun_HostnameFormat(t *testing.T) {
	cfg := fixture(t, "")
	code, out, _ := run(t, "--config", cfg, "--host", "web1.default.local.example.com",
		"--hostname-format", "{name}.{project}.{endpoint}.example.com")
	require.Equal(t, 0, code)
	var hv map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &hv))
	assert.Equal(t, "web1", hv["lxd_name"])
	assert.Equal(t, "web1.default.local.example.com", hv["lxd_hostname"])
}

func TestRun_UsageErrors(t *testing.T) {
	cfg := fixture(t, "")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no mode", []string{"--config", cfg}, "--list or --host"},
		{"both modes", []string{"--config", cfg, "--list", "--host", "x"}, "cannot be used together"},
		{"bad format", []string{"--config", cfg, "--list", "--format", "xml"}, "unsupported format"},
		{"negative parallelism", []string{"--config", cfg, "--list", "--parallelism=-1"}, "parallelism"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := run(t, tt.args...)
			assert.Equal(t, exitFailure, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestRun_ConfigErrorsAreFatal(t *testing.T) {
	tests := []struct {
		name string
		args func(cfg string) []string
	}{
		{"unknown endpoint", func(cfg string) []string { return []string{"--config", cfg, "--list", "--endpoint", "nope"} }},
		{"bad status", func(cfg string) []string { return []string{"--config", cfg, "--list", "--status", "sleeping"} }},
		{"bad template", func(cfg string) []string { return []string{"--config", cfg, "--list", "--hostname-format", "{uuid}"} }},
		{"missing config", func(string) []string { return []string{"--config", "/does/not/exist.yml", "--list"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := run(t, tt.args(fixture(t, ""))...)
			assert.Equal(t, exitFailure, code)
			assert.Empty(t, out, "no document on a fatal error")
			assert.Contains(t, errOut, "Error:")
		})
	}
}

func TestRun_PartialFailure(t *testing.T) {
	cfg := fixture(t, "  gone:\n    endpoint: file:///does/not/exist.json\n")

	code, out, _ := run(t, "--config", cfg, "--list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "web1")

	code, out, errOut := run(t, "--config", cfg, "--list", "--strict")
	assert.Equal(t, exitPartial, code)
	assert.Contains(t, out, "web1", "the document is printed before the strict exit")
	assert.Contains(t, errOut, "gone")
}

func TestRun_OutputAndMetricsFiles(t *testing.T) {
	cfg := fixture(t, "")
	dir := t.TempDir()
	outPath := filepath.Join(dir, "inventory.json")
	metricsPath := filepath.Join(dir, "lxdinv.prom")

	code, out, _ := run(t, "--config", cfg, "--list", "-o", outPath, "--metrics-file", metricsPath)
	require.Equal(t, 0, code)
	assert.Empty(t, out)

	doc, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "_meta")

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "lxd_inventory_hosts")
}

func TestRun_UnwritableOutput(t *testing.T) {
	cfg := fixture(t, "")
	code, _, errOut := run(t, "--config", cfg, "--list", "-o", filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "Error:")
}

func TestRun_Version(t *testing.T) {
	code, out, _ := run(t, "--version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.Contains(out, version), out)
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, o *options)
	}{
		{
			name: "defaults",
			args: []string{"--list"},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, serializer.FormatJSON, o.format)
				assert.Equal(t, "info", o.logLevel)
				assert.Empty(t, o.endpoints)
				assert.Nil(t, o.overrides.PreferIPv6)
				assert.Nil(t, o.overrides.HostnameFormat)
			},
		},
		{
			name: "comma lists and repeats",
			args: []string{"--list", "--status", "running,stopped", "--project", "a", "--project", "b", "--endpoint", "x,y"},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, []string{"running", "stopped"}, o.overrides.Statuses)
				assert.Equal(t, []string{"a", "b"}, o.overrides.Projects)
				assert.Equal(t, []string{"x", "y"}, o.endpoints)
			},
		},
		{
			name: "debug wins over log level",
			args: []string{"--host", "h", "--log-level", "error", "--debug"},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, "debug", o.logLevel)
				assert.Equal(t, "h", o.host)
			},
		},
		{
			name: "explicit booleans become pointers",
			args: []string{"--list", "--prefer-ipv6", "--hostname-format", "{name}.lab"},
			check: func(t *testing.T, o *options) {
				require.NotNil(t, o.overrides.PreferIPv6)
				assert.True(t, *o.overrides.PreferIPv6)
				require.NotNil(t, o.overrides.HostnameFormat)
				assert.Equal(t, "{name}.lab", *o.overrides.HostnameFormat)
			},
		},
		{
			name: "tags are kept whole",
			args: []string{"--list", "--tag", "a=1,2", "--tag", " b "},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, []string{"a=1,2", "b"}, o.overrides.Tags)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *options
			cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
			cmd.Action = func(_ context.Context, c *cli.Command) error {
				var err error
				got, err = parseOptions(c)
				return err
			}
			require.NoError(t, cmd.Run(context.Background(), append([]string{name}, tt.args...)))
			require.NotNil(t, got)
			tt.check(t, got)
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitPartial, exitCode(cli.Exit("partial", exitPartial)))
	assert.Equal(t, exitFailure, exitCode(cli.Exit("zero", 0)))
}
