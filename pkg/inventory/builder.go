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
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/lxd-inventory/pkg/config"
	"github.com/NVIDIA/lxd-inventory/pkg/defaults"
	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
	"github.com/NVIDIA/lxd-inventory/pkg/filter"
	"github.com/NVIDIA/lxd-inventory/pkg/instance"
	"github.com/NVIDIA/lxd-inventory/pkg/lxd"
)

// Builder fetches, filters and assembles the inventory of a set of
// endpoints.
type Builder struct {
	// Endpoints in assembly order.
	Endpoints []*config.Endpoint
	// Factory creates endpoint clients; nil uses lxd.NewDefaultFactory.
	Factory lxd.Factory
	// Parallelism bounds concurrent fetches; zero uses defaults.MaxConcurrentEndpoints.
	Parallelism int
	// Timeout bounds each endpoint fetch; zero uses defaults.EndpointFetchTimeout.
	Timeout time.Duration
}

// EndpointResult describes the fetch of one endpoint.
type EndpointResult struct {
	Name     string
	Fetched  int
	Included int
	Duration time.Duration
	// Err is an endpoint error when the fetch failed.
	Err error
	// Skipped are the projects that could not be listed while the rest
	// of the endpoint was.
	Skipped []lxd.ProjectFailure
}

// Partial reports whether the endpoint was inventoried without some of
// its projects.
func (e EndpointResult) Partial() bool { return e.Err == nil && len(e.Skipped) > 0 }

// Result is the outcome of Build.
type Result struct {
	Document   *Document
	Endpoints  []EndpointResult
	Collisions []Collision
}

// Failed returns the endpoints whose fetch failed entirely or skipped a
// project.
func (r *Result) Failed() []EndpointResult {
	var out []EndpointResult
	for _, e := range r.Endpoints {
		if e.Err != nil || len(e.Skipped) > 0 {
			out = append(out, e)
		}
	}
	return out
}

type fetched struct {
	instances []instance.Instance
	skipped   []lxd.ProjectFailure
	duration  time.Duration
	err       error
}

// Build runs the pipeline. Endpoint failures are recorded in the result
// and do not fail the build; an invalid filter spec or a canceled ctx
// does.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() {
		buildDuration.Observe(time.Since(start).Seconds())
	}()

	for _, ep := range b.Endpoints {
		if err := ep.Filters.Validate(); err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeFilterEvaluation,
				"filter spec cannot be evaluated", err, map[string]any{"endpoint": ep.Name})
		}
	}

	results := b.fetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeTimeout, "inventory build canceled", err)
	}

	asm := NewAssembler()
	res := &Result{Endpoints: make([]EndpointResult, len(b.Endpoints))}
	for i, ep := range b.Endpoints {
		r := results[i]
		er := EndpointResult{Name: ep.Name, Duration: r.duration, Err: r.err, Skipped: r.skipped}

		if r.err != nil {
			endpointFetchTotal.WithLabelValues(ep.Name, "error").Inc()
			slog.Warn("endpoint skipped",
				"endpoint", ep.Name,
				"url", ep.URL,
				"code", apperrors.CodeOf(r.err),
				"error", r.err)
			res.Endpoints[i] = er
			continue
		}
		if er.Partial() {
			endpointFetchTotal.WithLabelValues(ep.Name, "partial").Inc()
			slog.Warn("endpoint partially inventoried",
				"endpoint", ep.Name,
				"url", ep.URL,
				"skipped", len(er.Skipped))
		} else {
			endpointFetchTotal.WithLabelValues(ep.Name, "success").Inc()
		}

		kept := filter.Apply(r.instances, ep.Filters, decisionLogger(ep.Name))
		asm.Add(ep, kept)

		er.Fetched, er.Included = len(r.instances), len(kept)
		res.Endpoints[i] = er
		slog.Debug("endpoint assembled",
			"endpoint", ep.Name,
			"fetched", er.Fetched,
			"included", er.Included,
			"duration", er.Duration)
	}

	res.Document = asm.Document()
	res.Collisions = asm.Collisions()
	inventoryHosts.Set(float64(res.Document.Len()))
	return res, nil
}

func (b *Builder) limits() (parallelism int, timeout time.Duration) {
	parallelism, timeout = b.Parallelism, b.Timeout
	if parallelism <= 0 {
		parallelism = defaults.MaxConcurrentEndpoints
	}
	if timeout <= 0 {
		timeout = defaults.EndpointFetchTimeout
	}
	return parallelism, timeout
}

// MaxDuration is the longest a Build can take: endpoints beyond the
// parallelism wait for a free slot before their own timeout starts.
func (b *Builder) MaxDuration() time.Duration {
	parallelism, timeout := b.limits()
	waves := (len(b.Endpoints) + parallelism - 1) / parallelism
	if waves < 1 {
		waves = 1
	}
	return time.Duration(waves) * timeout
}

// fetchAll fetches every endpoint concurrently and returns the results by
// endpoint index. Workers never return an error, so one endpoint cannot
// cancel another.
func (b *Builder) fetchAll(ctx context.Context) []fetched {
	factory := b.Factory
	if factory == nil {
		factory = lxd.NewDefaultFactory()
	}
	limit, timeout := b.limits()

	results := make([]fetched, len(b.Endpoints))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, ep := range b.Endpoints {
		g.Go(func() error {
			epStart := time.Now()
			fctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			f, err := fetchEndpoint(fctx, factory, ep)
			d := time.Since(epStart)
			endpointFetchDuration.WithLabelValues(ep.Name).Observe(d.Seconds())
			r := fetched{duration: d, err: err}
			if f != nil {
				r.instances, r.skipped = f.Instances, f.Failures
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func fetchEndpoint(ctx context.Context, factory lxd.Factory, ep *config.Endpoint) (*lxd.Fetch, error) {
	errCtx := map[string]any{"endpoint": ep.Name, "url": ep.URL}

	client, err := factory.Client(ep)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeEndpoint, "failed to create client", err, errCtx)
	}

	f, err := lxd.FetchInstances(ctx, client, ep.Name, ep.Filters.ProjectList())
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeEndpoint, "failed to fetch instances", err, errCtx)
	}
	return f, nil
}

// decisionLogger records why each instance was kept or dropped.
func decisionLogger(endpoint string) filter.Observer {
	return func(inst *instance.Instance, d filter.Decision) {
		reason := "included"
		if !d.Included {
			reason = string(d.Reason)
		}
		filterDecisions.WithLabelValues(endpoint, reason).Inc()
		slog.Debug("filter decision",
			"endpoint", endpoint,
			"project", inst.Project,
			"instance", inst.Name,
			"included", d.Included,
			"reason", reason)
	}
}
