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

// Package network picks the address an inventory host is reached on.
package network

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/NVIDIA/lxd-inventory/pkg/instance"
)

// Scopes that are never selected. Addresses without a scope are kept.
const (
	ScopeLink  = "link"
	ScopeLocal = "local"
)

// SelectAddress returns one representative address from state.
//
// Interfaces in ignore are skipped, as are link- and host-local
// addresses. The preferred family is IPv6 when preferIPv6 is set and an
// IPv6 candidate exists, otherwise IPv4; the other family is the fallback.
// Within a family the first address in declaration order wins. The second
// return value is false when no candidate remains.
func SelectAddress(state instance.NetworkState, ignore sets.Set[string], preferIPv6 bool) (string, bool) {
	var v4, v6 string
	for _, iface := range state {
		if ignore.Has(iface.Name) {
			continue
		}
		for _, a := range iface.Addresses {
			if a.Address == "" || a.Scope == ScopeLink || a.Scope == ScopeLocal {
				continue
			}
			switch a.Family {
			case instance.FamilyInet:
				if v4 == "" {
					v4 = a.Address
				}
			case instance.FamilyInet6:
				if v6 == "" {
					v6 = a.Address
				}
			}
		}
	}

	first, second := v4, v6
	if preferIPv6 {
		first, second = v6, v4
	}
	if first != "" {
		return first, true
	}
	if second != "" {
		return second, true
	}
	return "", false
}
