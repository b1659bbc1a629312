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

// Package inventory builds the Ansible dynamic inventory document.
//
// # Document shape
//
//	{
//	  "_meta": {"hostvars": {"web1": {"lxd_name": "web1", ...}}},
//	  "all": {"hosts": ["web1"], "vars": {}},
//	  "lxd_containers": {"hosts": ["web1"]},
//	  "lxd_running": {"hosts": ["web1"]},
//	  "lxd_endpoint_local": {"hosts": ["web1"]},
//	  "lxd_project_default": {"hosts": ["web1"]},
//	  "lxd_profile_default": {"hosts": ["web1"]}
//	}
//
// Hosts within a group are sorted, empty groups are dropped and "all" is
// always present. Every host listed in a group has exactly one hostvars
// entry.
//
// # Collisions
//
// Endpoints are assembled in configuration order. When a rendered
// hostname is already present, the later instance replaces the earlier
// one completely: its host variables and every group membership.
//
// # Building
//
// Builder fetches all endpoints concurrently, each under its own timeout.
// A failing endpoint is logged and contributes no hosts; it never stops
// the others. Filtering and assembly run after all fetches complete, in
// endpoint order, so the document does not depend on fetch timing.
package inventory
