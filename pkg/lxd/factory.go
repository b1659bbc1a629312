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
	"github.com/NVIDIA/lxd-inventory/pkg/config"
	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
)

// Factory creates the Client for a resolved endpoint.
type Factory interface {
	Client(ep *config.Endpoint) (Client, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ep *config.Endpoint) (Client, error)

// Client implements Factory.
func (f FactoryFunc) Client(ep *config.Endpoint) (Client, error) {
	return f(ep)
}

// DefaultFactory picks the transport from the endpoint scheme.
type DefaultFactory struct {
	opts []Option
}

// NewDefaultFactory creates a factory whose HTTP clients get opts.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	return &DefaultFactory{opts: opts}
}

// Client implements Factory.
func (f *DefaultFactory) Client(ep *config.Endpoint) (Client, error) {
	switch ep.Scheme {
	case config.SchemeFile:
		return NewSnapshotClient(ep.Path)
	case config.SchemeHTTPS, config.SchemeUnix:
		return NewHTTPClient(ep, f.opts...)
	default:
		return nil, apperrors.NewWithContext(apperrors.ErrCodeEndpoint, "unsupported endpoint scheme",
			map[string]any{"endpoint": ep.Name, "scheme": ep.Scheme})
	}
}
