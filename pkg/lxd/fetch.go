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
	"context"
	"log/slog"

	"github.com/NVIDIA/lxd-inventory/pkg/instance"
)

// ProjectFailure is a project that could not be listed. Project is empty
// when project discovery failed.
type ProjectFailure struct {
	Project string
	Err     error
}

func (f ProjectFailure) Error() string {
	if f.Project == "" {
		return "project discovery: " + f.Err.Error()
	}
	return "project " + f.Project + ": " + f.Err.Error()
}

func (f ProjectFailure) Unwrap() error { return f.Err }

// Fetch holds the instances listed on one endpoint and the projects that
// were skipped.
type Fetch struct {
	Instances []instance.Instance
	// Failures in request order; empty when every project was listed.
	Failures []ProjectFailure
}

// Complete reports whether every project was listed.
func (f *Fetch) Complete() bool { return len(f.Failures) == 0 }

// FetchInstances lists every instance of the given projects on one
// endpoint. A nil projects slice means every project on the server; when
// discovery fails the default project is listed instead. A project that
// fails is skipped and recorded. The fetch fails when ctx is done or when
// no project could be listed.
func FetchInstances(ctx context.Context, c Client, endpoint string, projects []string) (*Fetch, error) {
	res := &Fetch{}
	if projects == nil {
		discovered, err := c.Projects(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("project discovery failed, listing the default project",
				"endpoint", endpoint,
				"error", err)
			res.Failures = append(res.Failures, ProjectFailure{Err: err})
			discovered = []string{defaultProject}
		}
		projects = discovered
		slog.Debug("discovered projects", "endpoint", endpoint, "projects", projects)
	}

	listed := 0
	for _, project := range projects {
		insts, err := listProject(ctx, c, endpoint, project)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("project skipped",
				"endpoint", endpoint,
				"project", project,
				"error", err)
			res.Failures = append(res.Failures, ProjectFailure{Project: project, Err: err})
			continue
		}
		listed++
		res.Instances = append(res.Instances, insts...)
	}

	if listed == 0 && len(res.Failures) > 0 {
		return nil, res.Failures[0].Err
	}
	return res, nil
}

func listProject(ctx context.Context, c Client, endpoint, project string) ([]instance.Instance, error) {
	raw, err := c.Instances(ctx, project)
	if err != nil {
		return nil, err
	}

	var profileConfig map[string]map[string]string
	if needsProfiles(raw) {
		profiles, err := c.Profiles(ctx, project)
		if err != nil {
			return nil, err
		}
		profileConfig = ProfileConfig(profiles)
	}

	out := make([]instance.Instance, 0, len(raw))
	for i := range raw {
		out = append(out, raw[i].ToInstance(endpoint, project, profileConfig))
	}
	slog.Debug("listed instances", "endpoint", endpoint, "project", project, "count", len(raw))
	return out, nil
}

// CaptureInstances lists the raw instances of the given projects for a
// snapshot file. Project and expanded configuration are filled in so the
// snapshot is self-contained. A nil projects slice means every project.
func CaptureInstances(ctx context.Context, c Client, projects []string) ([]APIInstance, error) {
	if projects == nil {
		var err error
		if projects, err = c.Projects(ctx); err != nil {
			return nil, err
		}
	}

	out := []APIInstance{}
	for _, project := range projects {
		raw, err := c.Instances(ctx, project)
		if err != nil {
			return nil, err
		}

		var profileConfig map[string]map[string]string
		if needsProfiles(raw) {
			profiles, err := c.Profiles(ctx, project)
			if err != nil {
				return nil, err
			}
			profileConfig = ProfileConfig(profiles)
		}

		for _, a := range raw {
			if a.Project == "" {
				a.Project = project
			}
			if !a.HasExpandedConfig() {
				a.ExpandedConfig = instance.ExpandConfig(a.Profiles, profileConfig, a.Config)
			}
			out = append(out, a)
		}
	}
	return out, nil
}

func needsProfiles(raw []APIInstance) bool {
	for i := range raw {
		if !raw[i].HasExpandedConfig() && len(raw[i].Profiles) > 0 {
			return true
		}
	}
	return false
}
