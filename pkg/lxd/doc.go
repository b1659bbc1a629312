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

// Package lxd reads instances from LXD endpoints.
//
// Three transports are supported behind the Client interface:
//   - HTTPS with optional client certificate and CA bundle
//   - the local unix socket
//   - a file:// snapshot holding the output of
//     GET /1.0/instances?recursion=2 in JSON or YAML
//
// Requests are retried on 429 and 5xx responses, bounded by a per-client
// rate limiter, and classified into structured error codes:
//
//	401, 403       UNAUTHORIZED
//	404            NOT_FOUND
//	429, 5xx       SERVICE_UNAVAILABLE
//	deadline       TIMEOUT
//	anything else  INTERNAL
//
// FetchInstances drives a Client for one endpoint: it resolves the
// project list, lists instances per project and, when the server omits
// expanded_config, rebuilds it from the profiles. Projects that fail are
// skipped and reported in Fetch.Failures; a failed discovery lists the
// default project. CaptureInstances does
// the same but keeps the raw API objects, for writing snapshots.
package lxd
