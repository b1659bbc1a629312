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

package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/NVIDIA/lxd-inventory/pkg/defaults"
	"github.com/NVIDIA/lxd-inventory/pkg/server"
)

// bounded is a Builder that knows its worst-case build time.
type bounded interface {
	MaxDuration() time.Duration
}

// Serve runs the inventory service until ctx is canceled. opts are
// applied after the inventory routes are registered. When b reports its
// worst-case build time, each build is bounded by it and the write
// timeout is raised to leave defaults.ServerWriteMargin after it.
func Serve(ctx context.Context, b Builder, opts ...server.Option) error {
	var hopts []HandlerOption
	base := []server.Option{}
	if bb, ok := b.(bounded); ok {
		budget := bb.MaxDuration()
		hopts = append(hopts, WithBuildTimeout(budget))
		base = append(base, server.WithWriteTimeout(writeTimeout(budget)))
	}
	h := NewHandler(b, hopts...)

	base = append(base, server.WithHandler(h.Routes()))
	s := server.New(append(base, opts...)...)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}

// writeTimeout leaves room to write the response after a build that ran
// for the whole budget.
func writeTimeout(budget time.Duration) time.Duration {
	return max(defaults.ServerWriteTimeout, budget+defaults.ServerWriteMargin)
}
