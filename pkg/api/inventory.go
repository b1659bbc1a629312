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
	"net/http"
	"strings"
	"time"

	"github.com/NVIDIA/lxd-inventory/pkg/inventory"
	"github.com/NVIDIA/lxd-inventory/pkg/serializer"
	"github.com/NVIDIA/lxd-inventory/pkg/server"
)

// HeaderFailedEndpoints lists endpoints missing from the response.
const HeaderFailedEndpoints = "X-Inventory-Failed-Endpoints"

// Builder produces an inventory. *inventory.Builder implements it.
type Builder interface {
	Build(ctx context.Context) (*inventory.Result, error)
}

// Handler serves inventory routes.
type Handler struct {
	builder      Builder
	buildTimeout time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithBuildTimeout bounds every build; zero leaves only the request
// context.
func WithBuildTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.buildTimeout = d
	}
}

// NewHandler returns a handler that builds with b on every request.
func NewHandler(b Builder, opts ...HandlerOption) *Handler {
	h := &Handler{builder: b}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the handler routes keyed by http.ServeMux pattern.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /v1/inventory":    h.HandleInventory,
		"GET /v1/hosts/{name}": h.HandleHost,
	}
}

// HandleInventory handles GET /v1/inventory
func (h *Handler) HandleInventory(w http.ResponseWriter, r *http.Request) {
	format, ok := requestFormat(w, r)
	if !ok {
		return
	}
	res, ok := h.build(w, r)
	if !ok {
		return
	}
	serializer.Respond(w, http.StatusOK, format, res.Document)
}

// HandleHost handles GET /v1/hosts/{name}
func (h *Handler) HandleHost(w http.ResponseWriter, r *http.Request) {
	format, ok := requestFormat(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")

	res, ok := h.build(w, r)
	if !ok {
		return
	}

	hv, found := res.Document.Host(name)
	if !found {
		server.WriteError(w, r, http.StatusNotFound, server.ErrCodeNotFound,
			"Host not in inventory", false, map[string]any{"host": name})
		return
	}
	serializer.Respond(w, http.StatusOK, format, hv)
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (*inventory.Result, bool) {
	ctx := r.Context()
	if h.buildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.buildTimeout)
		defer cancel()
	}

	res, err := h.builder.Build(ctx)
	if err != nil {
		slog.Error("inventory build failed",
			"requestID", server.RequestID(r.Context()),
			"error", err)
		server.WriteAppError(w, r, err)
		return nil, false
	}

	if failed := res.Failed(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, f := range failed {
			names = append(names, f.Name)
		}
		w.Header().Set(HeaderFailedEndpoints, strings.Join(names, ","))
	}
	return res, true
}

// requestFormat reads ?format= and falls back to the Accept header.
func requestFormat(w http.ResponseWriter, r *http.Request) (serializer.Format, bool) {
	raw := r.URL.Query().Get("format")
	if raw == "" && strings.Contains(r.Header.Get("Accept"), "yaml") {
		raw = string(serializer.FormatYAML)
	}
	format, err := serializer.ParseFormat(raw)
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, server.ErrCodeInvalidRequest,
			err.Error(), false, map[string]any{"supported": serializer.SupportedFormats()})
		return "", false
	}
	return format, true
}
