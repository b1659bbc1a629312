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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/lxd-inventory/pkg/defaults"
	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
	"github.com/NVIDIA/lxd-inventory/pkg/inventory"
	"github.com/NVIDIA/lxd-inventory/pkg/server"
)

type builderFunc func(ctx context.Context) (*inventory.Result, error)

func (f builderFunc) Build(ctx context.Context) (*inventory.Result, error) { return f(ctx) }

func sampleResult() *inventory.Result {
	d := inventory.NewDocument()
	d.SetHost("web1", inventory.HostVars{
		Name:        "web1",
		Hostname:    "web1",
		Type:        "container",
		Status:      "running",
		Project:     "default",
		Endpoint:    "local",
		IP:          "10.0.0.5",
		AnsibleHost: "10.0.0.5",
	}, inventory.GroupContainers)
	return &inventory.Result{
		Document: d,
		Endpoints: []inventory.EndpointResult{
			{Name: "local", Fetched: 1, Included: 1},
			{Name: "prod", Err: apperrors.New(apperrors.ErrCodeEndpoint, "down")},
		},
	}
}

func newTestServer(t *testing.T, b Builder) *httptest.Server {
	t.Helper()
	s := server.New(server.WithHandler(NewHandler(b).Routes()), server.WithRateLimit(1000, 1000))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleInventory(t *testing.T) {
	var builds atomic.Int32
	ts := newTestServer(t, builderFunc(func(context.Context) (*inventory.Result, error) {
		builds.Add(1)
		return sampleResult(), nil
	}))

	resp := get(t, ts.URL+"/v1/inventory", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "prod", resp.Header.Get(HeaderFailedEndpoints))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Contains(t, doc, "_meta")
	assert.Equal(t, []any{"web1"}, doc[inventory.GroupContainers].(map[string]any)["hosts"])

	get(t, ts.URL+"/v1/inventory", nil)
	assert.Equal(t, int32(2), builds.Load(), "every request builds a fresh inventory")
}

func TestHandleInventory_YAML(t *testing.T) {
	ts := newTestServer(t, builderFunc(func(context.Context) (*inventory.Result, error) {
		return sampleResult(), nil
	}))

	for _, tc := range []struct {
		url    string
		header map[string]string
	}{
		{url: ts.URL + "/v1/inventory?format=yaml"},
		{url: ts.URL + "/v1/inventory", header: map[string]string{"Accept": "application/yaml"}},
	} {
		resp := get(t, tc.url, tc.header)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))

		var doc map[string]any
		require.NoError(t, yaml.NewDecoder(resp.Body).Decode(&doc))
		assert.Contains(t, doc, "all")
	}
}

func TestHandleInventory_BadFormat(t *testing.T) {
	ts := newTestServer(t, builderFunc(func(context.Context) (*inventory.Result, error) {
		t.Error("build must not run for an invalid request")
		return sampleResult(), nil
	}))

	resp := get(t, ts.URL+"/v1/inventory?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleInventory_BuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"timeout", apperrors.New(apperrors.ErrCodeTimeout, "canceled"), http.StatusGatewayTimeout},
		{"filter", apperrors.New(apperrors.ErrCodeFilterEvaluation, "bad rule"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, builderFunc(func(context.Context) (*inventory.Result, error) {
				return nil, tt.err
			}))

			resp := get(t, ts.URL+"/v1/inventory", nil)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body server.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Code)
			assert.Equal(t, resp.Header.Get("X-Request-Id"), body.RequestID)
		})
	}
}

func TestHandleHost(t *testing.T) {
	ts := newTestServer(t, builderFunc(func(context.Context) (*inventory.Result, error) {
		return sampleResult(), nil
	}))

	resp := get(t, ts.URL+"/v1/hosts/web1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hv map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hv))
	assert.Equal(t, "web1", hv["lxd_name"])
	assert.Equal(t, "10.0.0.5", hv["ansible_host"])

	resp = get(t, ts.URL+"/v1/hosts/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := builderFunc(func(context.Context) (*inventory.Result, error) { return sampleResult(), nil })
	err := Serve(ctx, b, server.WithAddress("127.0.0.1", 0))
	assert.NoError(t, err)
}

func TestHandleInventory_BuildTimeout(t *testing.T) {
	b := builderFunc(func(ctx context.Context) (*inventory.Result, error) {
		<-ctx.Done()
		return nil, apperrors.Wrap(apperrors.ErrCodeTimeout, "inventory build canceled", ctx.Err())
	})
	s := server.New(
		server.WithHandler(NewHandler(b, WithBuildTimeout(20*time.Millisecond)).Routes()),
		server.WithRateLimit(1000, 1000))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	start := time.Now()
	resp := get(t, ts.URL+"/v1/inventory", nil)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		name   string
		budget time.Duration
		want   time.Duration
	}{
		{"short build keeps the default", time.Second, defaults.ServerWriteTimeout},
		{"long build raises it", 3 * time.Minute, 3*time.Minute + defaults.ServerWriteMargin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, writeTimeout(tt.budget))
		})
	}
}
