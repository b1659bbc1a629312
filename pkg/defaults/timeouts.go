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

package defaults

import "time"

// Endpoint timeouts.
const (
	// EndpointFetchTimeout bounds the complete fetch of one endpoint,
	// including project discovery, instance listing and profile expansion.
	EndpointFetchTimeout = 60 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for a single HTTP request.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// Server timeouts for the inventory HTTP service.
const (
	// ServerReadTimeout is the maximum duration for reading a request.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the minimum duration for writing a response.
	// The service raises it to the worst-case build time plus
	// ServerWriteMargin.
	ServerWriteTimeout = 90 * time.Second

	// ServerWriteMargin is left after the build deadline to encode and
	// write the response.
	ServerWriteMargin = 10 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Retry parameters for transient HTTP failures (429 and 5xx).
const (
	// HTTPRetryCount is the number of retries after the first attempt.
	HTTPRetryCount = 3

	// HTTPRetryWaitTime is the initial backoff between retries.
	HTTPRetryWaitTime = 1 * time.Second

	// HTTPRetryMaxWaitTime caps the exponential backoff.
	HTTPRetryMaxWaitTime = 8 * time.Second
)

// Limits.
const (
	// MaxConcurrentEndpoints bounds how many endpoints are fetched at once.
	MaxConcurrentEndpoints = 8

	// EndpointRequestRate is the sustained requests per second sent to one endpoint.
	EndpointRequestRate = 20

	// EndpointRequestBurst is the burst size of the per-endpoint limiter.
	EndpointRequestBurst = 40

	// ServerPort is the default listen port of the inventory service.
	ServerPort = 8080

	// ServerRateLimit is the sustained requests per second the service accepts.
	// Every request triggers a full fetch, so the limit is low.
	ServerRateLimit = 5

	// ServerRateLimitBurst is the burst size of the service limiter.
	ServerRateLimitBurst = 10
)

// Locations.
const (
	// LXDSocketPath is the default LXD unix socket.
	LXDSocketPath = "/var/lib/lxd/unix.socket"

	// LXDSnapSocketPath is the unix socket of a snap-installed LXD.
	LXDSnapSocketPath = "/var/snap/lxd/common/lxd/unix.socket"

	// LXDAPIVersion is the REST API prefix.
	LXDAPIVersion = "/1.0"
)
