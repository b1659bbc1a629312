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

// Package server provides the HTTP front end of the inventory service.
//
// # Architecture
//
// The server is stateless. Routes registered with WithHandler run behind
// a middleware chain:
//
//   - Prometheus request metrics labeled by route pattern
//   - Request ID tracking (X-Request-Id, generated when absent or invalid)
//   - Panic recovery
//   - Rate limiting using a token bucket (golang.org/x/time/rate)
//   - Request logging
//
// System routes bypass the chain:
//
//	GET /health   liveness, always 200
//	GET /ready    readiness, 503 while starting or shutting down
//	GET /metrics  Prometheus exposition
//	GET /         name, version and route list
//
// # Usage
//
//	s := server.New(
//	    server.WithName("lxdinv"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "GET /v1/inventory": h.HandleInventory,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// # Error Responses
//
//	{
//	    "code": "RATE_LIMIT_EXCEEDED",
//	    "message": "Rate limit exceeded",
//	    "details": {"limit": 5, "burst": 10},
//	    "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	    "timestamp": "2025-01-15T10:30:00Z",
//	    "retryable": true
//	}
//
// # Configuration
//
// PORT and SHUTDOWN_TIMEOUT_SECONDS override the defaults from
// pkg/defaults.
package server
