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

package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Build metrics
	buildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lxd_inventory_build_duration_seconds",
			Help:    "Time taken to build a complete inventory",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	inventoryHosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lxd_inventory_hosts",
			Help: "Number of hosts in the last built inventory",
		},
	)

	// Endpoint metrics
	endpointFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lxd_inventory_endpoint_fetch_total",
			Help: "Total number of endpoint fetch attempts",
		},
		[]string{"endpoint", "status"}, // success, partial or error
	)

	endpointFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lxd_inventory_endpoint_fetch_duration_seconds",
			Help:    "Time taken to fetch all instances of one endpoint",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	// Filter metrics
	filterDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lxd_inventory_filter_decisions_total",
			Help: "Instances evaluated by the filter pipeline",
		},
		[]string{"endpoint", "reason"}, // reason is "included" or the failing predicate
	)

	hostnameCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lxd_inventory_hostname_collisions_total",
			Help: "Total number of hostnames replaced by a later instance",
		},
	)
)
