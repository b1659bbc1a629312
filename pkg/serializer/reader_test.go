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

package serializer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"snap.json", FormatJSON},
		{"snap.JSON", FormatJSON},
		{"snap.yaml", FormatYAML},
		{"/tmp/snap.YML", FormatYAML},
		{"snap", FormatJSON},
		{"snap.txt", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFromPath(tt.path); got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewReader_UnknownFormat(t *testing.T) {
	if _, err := NewReader("table", strings.NewReader("")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestReader_Deserialize(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json", FormatJSON, `[{"name":"web1","port":22}]`},
		{"yaml", FormatYAML, "- name: web1\n  port: 22\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(tt.format, strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("NewReader failed: %v", err)
			}
			var out []testHost
			if err := r.Deserialize(&out); err != nil {
				t.Fatalf("Deserialize failed: %v", err)
			}
			if len(out) != 1 || out[0].Name != "web1" || out[0].Port != 22 {
				t.Errorf("unexpected result: %+v", out)
			}
		})
	}
}

func TestReader_DeserializeNilChecks(t *testing.T) {
	var r *Reader
	if err := r.Deserialize(&struct{}{}); err == nil {
		t.Error("expected error for nil reader")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil reader: %v", err)
	}
	r = &Reader{format: FormatJSON}
	if err := r.Deserialize(&struct{}{}); err == nil {
		t.Error("expected error for nil input")
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "hosts.yaml")
	if err := os.WriteFile(yamlPath, []byte("- name: a\n  port: 1\n- name: b\n  port: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := FromFile[[]testHost](yamlPath)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if len(*got) != 2 || (*got)[1].Name != "b" {
		t.Errorf("unexpected result: %+v", *got)
	}
}

func TestFromFile_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := FromFile[[]testHost](filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := FromFile[[]testHost](bad); err == nil {
		t.Error("expected error for malformed file")
	}
}
