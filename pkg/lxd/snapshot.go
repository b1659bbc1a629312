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

	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
	"github.com/NVIDIA/lxd-inventory/pkg/serializer"
)

// defaultProject is assumed for snapshot entries that name no project.
const defaultProject = "default"

// SnapshotClient serves instances from a file captured with
// lxc query /1.0/instances?recursion=2 (JSON or YAML by extension).
// Snapshots carry no profiles, so instances without expanded_config
// expand to their local configuration only.
type SnapshotClient struct {
	path      string
	instances []APIInstance
}

// NewSnapshotClient loads the snapshot at path.
func NewSnapshotClient(path string) (*SnapshotClient, error) {
	list, err := serializer.FromFile[[]APIInstance](path)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeEndpoint, "failed to load instance snapshot", err,
			map[string]any{"path": path})
	}
	return &SnapshotClient{path: path, instances: *list}, nil
}

func projectOf(a *APIInstance) string {
	if a.Project == "" {
		return defaultProject
	}
	return a.Project
}

// Projects returns the projects present in the snapshot in order of
// first appearance.
func (s *SnapshotClient) Projects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for i := range s.instances {
		p := projectOf(&s.instances[i])
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// Instances returns the snapshot entries of project.
func (s *SnapshotClient) Instances(ctx context.Context, project string) ([]APIInstance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []APIInstance
	for i := range s.instances {
		if projectOf(&s.instances[i]) == project {
			out = append(out, s.instances[i])
		}
	}
	return out, nil
}

// Profiles implements Client; snapshots hold none.
func (s *SnapshotClient) Profiles(ctx context.Context, _ string) ([]APIProfile, error) {
	return nil, ctx.Err()
}
