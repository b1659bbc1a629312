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

package filter

import (
	"github.com/NVIDIA/lxd-inventory/pkg/instance"
)

// Reason names the predicate that rejected an instance.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonStatus   Reason = "status"
	ReasonType     Reason = "type"
	ReasonProject  Reason = "project"
	ReasonExcluded Reason = "exclude_names"
	ReasonProfile  Reason = "profiles"
	ReasonTags     Reason = "tags"
)

// Decision is the outcome of evaluating one instance.
type Decision struct {
	Included bool
	// Reason is ReasonNone when Included is true.
	Reason Reason
}

func reject(r Reason) Decision { return Decision{Reason: r} }

// Evaluate applies the spec to inst, cheapest predicates first, and
// returns at the first failure.
func Evaluate(inst *instance.Instance, spec *Spec) Decision {
	if spec.Statuses != nil && !spec.Statuses.Has(inst.Status) {
		return reject(ReasonStatus)
	}
	if spec.Types != nil && !spec.Types.Has(inst.Type) {
		return reject(ReasonType)
	}
	if !spec.AllProjects && !spec.Projects.Has(inst.Project) {
		return reject(ReasonProject)
	}
	if IsExcluded(spec.Exclude, inst.Name, inst.Project) {
		return reject(ReasonExcluded)
	}
	if !matchProfiles(spec.Profiles, inst) {
		return reject(ReasonProfile)
	}
	if !MatchTags(spec.Tags, inst.ExpandedConfig) {
		return reject(ReasonTags)
	}
	return Decision{Included: true}
}

// Include reports whether inst passes every predicate of spec.
func Include(inst *instance.Instance, spec *Spec) bool {
	return Evaluate(inst, spec).Included
}

func matchProfiles(refs []ProfileRef, inst *instance.Instance) bool {
	if len(refs) == 0 {
		return true
	}
	for _, r := range refs {
		if r.matches(inst) {
			return true
		}
	}
	return false
}

// Observer receives every decision made by Apply.
type Observer func(inst *instance.Instance, d Decision)

// Apply returns the instances that pass spec, in input order. observe may
// be nil.
func Apply(instances []instance.Instance, spec *Spec, observe Observer) []instance.Instance {
	out := make([]instance.Instance, 0, len(instances))
	for i := range instances {
		d := Evaluate(&instances[i], spec)
		if observe != nil {
			observe(&instances[i], d)
		}
		if d.Included {
			out = append(out, instances[i])
		}
	}
	return out
}
