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

// Package api serves the inventory over HTTP.
//
// Every request runs a fresh build against the configured endpoints;
// nothing is cached between requests.
//
// # Endpoints
//
// GET /v1/inventory - Full inventory document
//
//	Query parameters:
//	  - format: json (default) or yaml; Accept: application/yaml also selects YAML
//
//	Example:
//	  curl "http://localhost:8080/v1/inventory?format=yaml"
//
// GET /v1/hosts/{name} - Variables of one inventory host
//
//	Returns 404 when the host is not in the inventory.
//
// Endpoints that could not be fetched are listed in the
// X-Inventory-Failed-Endpoints response header; the document is still
// returned with the remaining hosts.
package api
