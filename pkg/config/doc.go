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

// Package config loads the inventory configuration file and resolves it
// into one immutable Endpoint per selected LXD endpoint.
//
// # File format
//
//	global_defaults:
//	  verify_ssl: false
//	  hostname_format: "{name}.{project}"
//	  filters:
//	    status: [running]
//	    tags: {user.ansible: "true"}
//	lxd_endpoints:
//	  local:
//	    endpoint: unix:///var/snap/lxd/common/lxd/unix.socket
//	  prod:
//	    endpoint: https://lxd.prod.example.com:8443
//	    cert_path: ~/.config/lxc/client.crt
//	    key_path: ~/.config/lxc/client.key
//	    filters:
//	      projects: all
//
// # Precedence
//
// Command-line overrides win over endpoint values, which win over
// global_defaults, which win over the built-in defaults. Scalars and lists
// replace the lower layer. The tags mapping replaces the lower layer as a
// whole; an endpoint that omits tags inherits the global mapping.
//
// # Validation
//
// Everything that can be checked without contacting an endpoint is checked
// by Resolve: endpoint selection, addresses, certificate pairs, filter
// enums, tag expressions, exclusion patterns and the hostname template.
// Failures carry errors.ErrCodeConfig.
package config
