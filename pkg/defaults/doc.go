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

// Package defaults provides centralized configuration constants for lxdinv.
//
// This package defines timeout values, retry parameters, and other
// defaults used across the codebase.
//
// # Categories
//
//   - Endpoint timeouts: per-endpoint fetch budget
//   - HTTP client timeouts: outbound requests to the LXD REST API
//   - Server timeouts: the inventory HTTP service
//   - Retry parameters: attempts and backoff for transient failures
//   - Limits: concurrency, request rate per endpoint and service rate limit
//   - Locations: well-known socket and configuration paths
//
// # Usage
//
//	import "github.com/NVIDIA/lxd-inventory/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.EndpointFetchTimeout)
//	defer cancel()
package defaults
