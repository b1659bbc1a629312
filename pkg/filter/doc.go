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

// Package filter decides which LXD instances enter the inventory.
//
// Raw filter strings from configuration or flags are parsed once into
// tagged values (TagRequirement, ExclusionRule, ProfileRef). All matching
// operates on those values and is pure: no I/O, no logging, no globals.
//
// # Pipeline
//
// Evaluate applies the predicates of a Spec in a fixed order and stops at
// the first failure:
//
//  1. status in Spec.Statuses (nil means any)
//  2. type in Spec.Types (nil means any)
//  3. project in Spec.Projects, or Spec.AllProjects
//  4. name not matched by any ExclusionRule
//  5. Spec.Profiles empty, or at least one profile matches
//  6. every TagRequirement holds against the expanded configuration
//
// The returned Decision names the predicate that rejected the instance so
// callers can log decisions without the predicates doing so themselves.
//
// # Tag expressions
//
//	user.ansible: "true"   Equals
//	user.env!=: prod       NotEquals (absent keys satisfy it)
//	user.managed:          Exists (null value)
//
// # Exclusion rules
//
//	db1                 literal name, any project
//	prod/db1            literal name in project prod
//	regex:^tmp-         unanchored regular expression, any project
//	regex:dev/^scratch  regular expression in project dev
//	dev/regex:^scratch  same as above
package filter
