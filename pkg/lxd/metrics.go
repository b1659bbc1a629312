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

package lxd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LXD API request metrics
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lxd_inventory_api_requests_total",
			Help: "Total number of LXD API requests",
		},
		[]string{"endpoint", "path", "code"}, // code is the HTTP status or "error"
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lxd_inventory_api_request_duration_seconds",
			Help:    "LXD API request latency in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "path"},
	)

	apiRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lxd_inventory_api_retries_total",
			Help: "Total number of retried LXD API requests",
		},
		[]string{"endpoint"},
	)
)
