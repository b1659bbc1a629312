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
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
	"github.com/NVIDIA/lxd-inventory/pkg/instance"
)

// DefaultProject is the project inventoried when none is configured.
const DefaultProject = "default"

// DefaultIgnoredInterface is never used for address selection by default.
const DefaultIgnoredInterface = "lo"

// ProfileRef names a profile, optionally scoped to one project.
type ProfileRef struct {
	Project string
	Name    string
}

// ParseProfileRef parses "name" or "project/name".
func ParseProfileRef(s string) (ProfileRef, error) {
	v := strings.TrimSpace(s)
	project, name, scoped := strings.Cut(v, "/")
	if !scoped {
		if v == "" {
			return ProfileRef{}, apperrors.New(apperrors.ErrCodeConfig, "profile name is empty")
		}
		return ProfileRef{Name: v}, nil
	}
	if project == "" || name == "" || strings.Contains(name, "/") {
		return ProfileRef{}, apperrors.Newf(apperrors.ErrCodeConfig, "profile %q: expected name or project/name", s)
	}
	return ProfileRef{Project: project, Name: name}, nil
}

// Scoped reports whether the reference is bound to a project.
func (p ProfileRef) Scoped() bool { return p.Project != "" }

// String returns the reference in its written form.
func (p ProfileRef) String() string {
	if p.Project == "" {
		return p.Name
	}
	return p.Project + "/" + p.Name
}

func (p ProfileRef) matches(inst *instance.Instance) bool {
	if p.Project != "" && p.Project != inst.Project {
		return false
	}
	return slices.Contains(inst.Profiles, p.Name)
}

// Spec is the parsed, effective filter set of one endpoint.
// A Spec is not modified after configuration resolution.
type Spec struct {
	// Statuses to include; nil includes every status.
	Statuses sets.Set[instance.Status]
	// Types to include; nil includes every type.
	Types sets.Set[instance.Type]
	// Projects to include, ignored when AllProjects is set.
	Projects    sets.Set[string]
	AllProjects bool
	// Profiles of which an instance needs at least one; empty disables the check.
	Profiles []ProfileRef
	// Tags that must all hold.
	Tags []TagRequirement
	// Exclude rules; any match drops the instance.
	Exclude []ExclusionRule
	// IgnoreInterfaces are skipped during address selection.
	IgnoreInterfaces sets.Set[string]
	PreferIPv6       bool
}

// DefaultSpec returns the built-in filter defaults.
func DefaultSpec() *Spec {
	return &Spec{
		Statuses: sets.New(
			instance.StatusRunning,
			instance.StatusStopped,
			instance.StatusFrozen,
			instance.StatusError,
		),
		Types:            sets.New(instance.TypeContainer, instance.TypeVirtualMachine),
		Projects:         sets.New(DefaultProject),
		IgnoreInterfaces: sets.New(DefaultIgnoredInterface),
	}
}

// Clone returns a deep copy of the spec.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	out := *s
	if s.Statuses != nil {
		out.Statuses = s.Statuses.Clone()
	}
	if s.Types != nil {
		out.Types = s.Types.Clone()
	}
	if s.Projects != nil {
		out.Projects = s.Projects.Clone()
	}
	if s.IgnoreInterfaces != nil {
		out.IgnoreInterfaces = s.IgnoreInterfaces.Clone()
	}
	out.Profiles = slices.Clone(s.Profiles)
	out.Tags = slices.Clone(s.Tags)
	out.Exclude = slices.Clone(s.Exclude)
	return &out
}

// ProjectList returns the configured projects in sorted order, or nil when
// every project is selected.
func (s *Spec) ProjectList() []string {
	if s.AllProjects {
		return nil
	}
	return sets.List(s.Projects)
}

// Validate checks that every rule in the spec can be evaluated. A failure
// means a rule bypassed the parsers and is reported as a filter
// evaluation error.
func (s *Spec) Validate() error {
	if s == nil {
		return apperrors.New(apperrors.ErrCodeFilterEvaluation, "filter spec is nil")
	}
	for _, t := range s.Tags {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, r := range s.Exclude {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, p := range s.Profiles {
		if p.Name == "" {
			return apperrors.New(apperrors.ErrCodeFilterEvaluation, "profile filter has an empty name")
		}
	}
	if !s.AllProjects && s.Projects.Len() == 0 {
		return apperrors.New(apperrors.ErrCodeFilterEvaluation, "project filter is empty")
	}
	return nil
}
