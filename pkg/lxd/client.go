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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/lxd-inventory/pkg/config"
	"github.com/NVIDIA/lxd-inventory/pkg/defaults"
	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
)

// API paths.
const (
	pathProjects  = defaults.LXDAPIVersion + "/projects"
	pathInstances = defaults.LXDAPIVersion + "/instances"
	pathProfiles  = defaults.LXDAPIVersion + "/profiles"
)

// Client lists the objects of one LXD endpoint.
type Client interface {
	// Projects returns the names of every project.
	Projects(ctx context.Context) ([]string, error)
	// Instances returns the instances of project with state.
	Instances(ctx context.Context, project string) ([]APIInstance, error)
	// Profiles returns the profiles visible in project.
	Profiles(ctx context.Context, project string) ([]APIProfile, error)
}

// HTTPClient talks to the LXD REST API over HTTPS or the unix socket.
type HTTPClient struct {
	endpoint string
	rc       *resty.Client
	limiter  *rate.Limiter
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithLimiter replaces the default request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *HTTPClient) {
		c.limiter = l
	}
}

// WithRetry replaces the default retry policy.
func WithRetry(count int, wait, maxWait time.Duration) Option {
	return func(c *HTTPClient) {
		c.rc.SetRetryCount(count).
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(maxWait)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		c.rc.SetHeader("User-Agent", ua)
	}
}

// NewHTTPClient creates a client for an https or unix endpoint.
func NewHTTPClient(ep *config.Endpoint, opts ...Option) (*HTTPClient, error) {
	tr, baseURL, err := newTransport(ep)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeEndpoint, "failed to build transport", err,
			map[string]any{"endpoint": ep.Name})
	}

	c := &HTTPClient{
		endpoint: ep.Name,
		limiter:  rate.NewLimiter(rate.Limit(defaults.EndpointRequestRate), defaults.EndpointRequestBurst),
	}
	c.rc = resty.New().
		SetTransport(tr).
		SetBaseURL(baseURL).
		SetTimeout(defaults.HTTPClientTimeout).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{slog.Default().With("endpoint", ep.Name)}).
		SetRetryCount(defaults.HTTPRetryCount).
		SetRetryWaitTime(defaults.HTTPRetryWaitTime).
		SetRetryMaxWaitTime(defaults.HTTPRetryMaxWaitTime).
		AddRetryCondition(shouldRetry).
		AddRetryHook(func(r *resty.Response, err error) {
			apiRetriesTotal.WithLabelValues(c.endpoint).Inc()
			slog.Debug("retrying LXD request", "endpoint", c.endpoint, "status", statusOf(r), "error", err)
		})

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Projects implements Client.
func (c *HTTPClient) Projects(ctx context.Context) ([]string, error) {
	var projects []APIProject
	if err := c.get(ctx, pathProjects, map[string]string{"recursion": "1"}, &projects); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names, nil
}

// Instances implements Client.
func (c *HTTPClient) Instances(ctx context.Context, project string) ([]APIInstance, error) {
	var out []APIInstance
	q := map[string]string{"recursion": "2", "project": project}
	if err := c.get(ctx, pathInstances, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profiles implements Client.
func (c *HTTPClient) Profiles(ctx context.Context, project string) ([]APIProfile, error) {
	var out []APIProfile
	q := map[string]string{"recursion": "1", "project": project}
	if err := c.get(ctx, pathProfiles, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// get issues a GET and decodes the sync metadata into out.
func (c *HTTPClient) get(ctx context.Context, path string, query map[string]string, out any) error {
	errCtx := map[string]any{"endpoint": c.endpoint, "path": path}
	if p, ok := query["project"]; ok {
		errCtx["project"] = p
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeTimeout, "rate limiter wait aborted", err, errCtx)
	}

	start := time.Now()
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	apiRequestDuration.WithLabelValues(c.endpoint, path).Observe(time.Since(start).Seconds())
	apiRequestsTotal.WithLabelValues(c.endpoint, path, statusOf(resp)).Inc()

	if err != nil {
		return apperrors.WrapWithContext(transportCode(ctx, err), "LXD request failed", err, errCtx)
	}

	var env Response
	decodeErr := json.Unmarshal(resp.Body(), &env)

	if !resp.IsSuccess() || env.Type == ResponseError {
		code := resp.StatusCode()
		if env.ErrorCode != 0 {
			code = env.ErrorCode
		}
		msg := strings.TrimSpace(env.Error)
		if msg == "" {
			msg = http.StatusText(code)
		}
		errCtx["status"] = code
		return apperrors.NewWithContext(statusCode(code), fmt.Sprintf("LXD returned %d: %s", code, msg), errCtx)
	}
	if decodeErr != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeInternal, "malformed LXD response", decodeErr, errCtx)
	}
	if env.Type != ResponseSync {
		return apperrors.NewWithContext(apperrors.ErrCodeInternal,
			fmt.Sprintf("unexpected LXD response type %q", env.Type), errCtx)
	}
	if err := json.Unmarshal(env.Metadata, out); err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeInternal, "malformed LXD metadata", err, errCtx)
	}
	return nil
}

// shouldRetry retries transport errors and 429/5xx responses, but never
// a canceled or expired context.
func shouldRetry(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if r == nil {
		return false
	}
	switch r.StatusCode() {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// statusCode classifies an HTTP status.
func statusCode(status int) apperrors.ErrorCode {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.ErrCodeUnauthorized
	case status == http.StatusNotFound:
		return apperrors.ErrCodeNotFound
	case status == http.StatusTooManyRequests, status >= 500:
		return apperrors.ErrCodeUnavailable
	default:
		return apperrors.ErrCodeInternal
	}
}

// transportCode classifies a request that produced no response.
func transportCode(ctx context.Context, err error) apperrors.ErrorCode {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.ErrCodeTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.ErrCodeTimeout
	}
	return apperrors.ErrCodeUnavailable
}

func statusOf(r *resty.Response) string {
	if r == nil || r.RawResponse == nil {
		return "error"
	}
	return strconv.Itoa(r.StatusCode())
}

// restyLogger routes resty's own diagnostics through slog.
type restyLogger struct {
	l *slog.Logger
}

func (r restyLogger) Errorf(format string, v ...any) {
	r.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Warnf(format string, v ...any) {
	r.l.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Debugf(format string, v ...any) {
	r.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
