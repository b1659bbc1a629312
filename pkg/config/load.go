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
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"k8s.io/utils/ptr"

	"github.com/NVIDIA/lxd-inventory/pkg/defaults"
	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
)

const (
	// EnvConfigPath names a configuration file when --config is not given.
	EnvConfigPath = "LXD_INVENTORY_CONFIG"

	// Environment fallback used when no configuration file exists.
	EnvEndpoint   = "LXD_ENDPOINT"
	EnvCertPath   = "LXD_CERT_PATH"
	EnvKeyPath    = "LXD_KEY_PATH"
	EnvCACertPath = "LXD_CA_CERT_PATH"
	EnvVerifySSL  = "LXD_VERIFY_SSL"

	// FallbackEndpointName is the name of the endpoint synthesized from the environment.
	FallbackEndpointName = "local"
)

// Getenv looks up an environment variable. It is a parameter so that
// tests do not depend on the process environment.
type Getenv func(string) string

// SearchPaths returns the implicit configuration locations in lookup order.
func SearchPaths(getenv Getenv) []string {
	paths := []string{"lxd_inventory.yml", "lxd_inventory.yaml"}
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "lxd-inventory", "config.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "lxd-inventory", "config.yaml"))
	}
	return append(paths, "/etc/lxd-inventory/config.yaml")
}

// Locate returns the configuration file to load. An explicit path, from
// the flag or EnvConfigPath, must exist. Without one the first existing
// search path wins; an empty result means no file was found.
func Locate(explicit string, getenv Getenv) (string, error) {
	if explicit == "" {
		explicit = getenv(EnvConfigPath)
	}
	if explicit != "" {
		p, err := ExpandHome(explicit)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(p); err != nil {
			return "", apperrors.WrapWithContext(apperrors.ErrCodeConfig, "configuration file not readable", err,
				map[string]any{"path": p})
		}
		return p, nil
	}
	for _, p := range SearchPaths(getenv) {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig, "configuration file not found", err,
				map[string]any{"path": path})
		}
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig, "failed to read configuration file", err,
			map[string]any{"path": path})
	}
	f, err := Parse(data)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig, "failed to parse configuration file", err,
			map[string]any{"path": path})
	}
	return f, nil
}

// LoadOrEnvironment locates and loads the configuration. When no file is
// found the configuration is synthesized from the environment. The
// returned path is empty in that case.
func LoadOrEnvironment(explicit string, getenv Getenv) (*File, string, error) {
	path, err := Locate(explicit, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return FromEnvironment(getenv), "", nil
	}
	f, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return f, path, nil
}

// FromEnvironment builds a single-endpoint configuration from the LXD_*
// variables. The socket defaults to the snap location when it exists and
// to the classic location otherwise.
func FromEnvironment(getenv Getenv) *File {
	entry := EndpointEntry{Endpoint: getenv(EnvEndpoint)}
	if entry.Endpoint == "" {
		entry.Endpoint = "unix://" + DefaultSocketPath()
	}
	if v := getenv(EnvCertPath); v != "" {
		entry.CertPath = ptr.To(v)
	}
	if v := getenv(EnvKeyPath); v != "" {
		entry.KeyPath = ptr.To(v)
	}
	if v := getenv(EnvCACertPath); v != "" {
		entry.CACertPath = ptr.To(v)
	}
	if v := getenv(EnvVerifySSL); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			entry.VerifySSL = ptr.To(b)
		}
	}
	return &File{Endpoints: EndpointMap{{Name: FallbackEndpointName, Entry: entry}}}
}

// DefaultSocketPath returns the local LXD socket path.
func DefaultSocketPath() string {
	if _, err := os.Stat(defaults.LXDSnapSocketPath); err == nil {
		return defaults.LXDSnapSocketPath
	}
	return defaults.LXDSocketPath
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", apperrors.WrapWithContext(apperrors.ErrCodeConfig, "cannot expand home directory", err,
			map[string]any{"path": p})
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
