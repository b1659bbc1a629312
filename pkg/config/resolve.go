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

package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/ptr"

	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
	"github.com/NVIDIA/lxd-inventory/pkg/filter"
	"github.com/NVIDIA/lxd-inventory/pkg/hostname"
	"github.com/NVIDIA/lxd-inventory/pkg/instance"
)

// allSentinel disables a status or type filter and selects every project.
const allSentinel = "all"

// Address schemes accepted for an endpoint.
const (
	SchemeHTTPS = "https"
	SchemeUnix  = "unix"
	SchemeFile  = "file"
)

// Overrides are command-line values layered over the file. Nil or empty
// fields leave the file values untouched.
type Overrides struct {
	Statuses         []string
	Types            []string
	Projects         []string
	AllProjects      bool
	Profiles         []string
	Tags             []string
	IgnoreInterfaces []string
	PreferIPv6       *bool
	HostnameFormat   *string
}

// Endpoint is the fully resolved configuration of one endpoint. It is
// built once by Resolve and never modified.
type Endpoint struct {
	Name string
	// URL is the address as written.
	URL string
	// Scheme is one of SchemeHTTPS, SchemeUnix or SchemeFile.
	Scheme string
	// Path is the socket or snapshot path for unix and file endpoints.
	Path string

	VerifySSL  bool
	CertPath   string
	KeyPath    string
	CACertPath string

	HostnameFormat string
	Hostname       *hostname.Template
	Filters        *filter.Spec
}

// Resolve merges the global defaults, each selected endpoint and the
// overrides into immutable endpoints. With no selection every endpoint is
// returned in declaration order; otherwise in selection order.
func Resolve(f *File, selected []string, o Overrides) ([]*Endpoint, error) {
	if f == nil {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "configuration is nil")
	}
	names, err := selection(f, selected)
	if err != nil {
		return nil, err
	}

	cli, err := o.layer()
	if err != nil {
		return nil, err
	}

	out := make([]*Endpoint, 0, len(names))
	for _, name := range names {
		entry, _ := f.Endpoints.Lookup(name)
		ep, err := resolveOne(name, f.GlobalDefaults, entry, cli)
		if err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, nil
}

func selection(f *File, selected []string) ([]string, error) {
	if len(selected) == 0 {
		if len(f.Endpoints) == 0 {
			return nil, apperrors.New(apperrors.ErrCodeConfig, "no endpoints configured in lxd_endpoints")
		}
		return f.Endpoints.Names(), nil
	}
	seen := sets.New[string]()
	names := make([]string, 0, len(selected))
	for _, s := range SplitList(selected...) {
		if seen.Has(s) {
			continue
		}
		if _, ok := f.Endpoints.Lookup(s); !ok {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeConfig,
				fmt.Sprintf("endpoint %q is not defined in lxd_endpoints", s),
				map[string]any{"endpoint": s, "available": f.Endpoints.Names()})
		}
		seen.Insert(s)
		names = append(names, s)
	}
	if len(names) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "endpoint selection is empty")
	}
	return names, nil
}

// cliLayer is the override layer in file terms plus the parsed tag
// expressions, which replace the merged tags when present.
type cliLayer struct {
	defaults Defaults
	tags     []filter.TagRequirement
}

func (o Overrides) layer() (cliLayer, error) {
	var l cliLayer
	fl := &Filters{}
	if len(o.Statuses) > 0 {
		fl.Status = SplitList(o.Statuses...)
	}
	if len(o.Types) > 0 {
		fl.Type = SplitList(o.Types...)
	}
	switch {
	case o.AllProjects:
		fl.Projects = StringList{allSentinel}
	case len(o.Projects) > 0:
		fl.Projects = SplitList(o.Projects...)
	}
	if len(o.Profiles) > 0 {
		fl.Profiles = SplitList(o.Profiles...)
	}
	if len(o.IgnoreInterfaces) > 0 {
		fl.IgnoreInterfaces = SplitList(o.IgnoreInterfaces...)
	}
	fl.PreferIPv6 = o.PreferIPv6
	l.defaults.Filters = fl
	l.defaults.HostnameFormat = o.HostnameFormat

	for _, expr := range o.Tags {
		req, err := filter.ParseTagExpression(expr)
		if err != nil {
			return l, err
		}
		l.tags = append(l.tags, req)
	}
	return l, nil
}

func resolveOne(name string, global Defaults, entry EndpointEntry, cli cliLayer) (*Endpoint, error) {
	merged := mergeDefaults(mergeDefaults(global, entry.Defaults), cli.defaults)

	ep := &Endpoint{
		Name:           name,
		URL:            strings.TrimSpace(entry.Endpoint),
		VerifySSL:      ptr.Deref(merged.VerifySSL, false),
		HostnameFormat: ptr.Deref(merged.HostnameFormat, hostname.DefaultFormat),
	}
	ctx := map[string]any{"endpoint": name}

	if ep.URL == "" {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeConfig, "endpoint address is empty", ctx)
	}
	scheme, path, err := ParseAddress(ep.URL)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig, "invalid endpoint address", err, ctx)
	}
	ep.Scheme, ep.Path = scheme, path

	if ep.CertPath, err = optionalPath(merged.CertPath); err != nil {
		return nil, err
	}
	if ep.KeyPath, err = optionalPath(merged.KeyPath); err != nil {
		return nil, err
	}
	if ep.CACertPath, err = optionalPath(merged.CACertPath); err != nil {
		return nil, err
	}
	if (ep.CertPath == "") != (ep.KeyPath == "") {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeConfig,
			"cert_path and key_path must be set together", ctx)
	}

	if err := hostname.Validate(ep.HostnameFormat); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig, "invalid hostname_format", err, ctx)
	}
	if ep.Hostname, err = hostname.Compile(ep.HostnameFormat); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig, "invalid hostname_format", err, ctx)
	}

	spec, err := parseFilters(merged.Filters)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig, "invalid filters", err, ctx)
	}
	if cli.tags != nil {
		spec.Tags = append([]filter.TagRequirement(nil), cli.tags...)
	}
	ep.Filters = spec
	return ep, nil
}

// ParseAddress classifies an endpoint address. Bare absolute paths are
// unix sockets.
func ParseAddress(addr string) (scheme, path string, err error) {
	if strings.HasPrefix(addr, "/") {
		return SchemeUnix, filepath.Clean(addr), nil
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", "", err
	}
	switch strings.ToLower(u.Scheme) {
	case SchemeHTTPS:
		if u.Host == "" {
			return "", "", fmt.Errorf("%q has no host", addr)
		}
		return SchemeHTTPS, "", nil
	case SchemeUnix, SchemeFile:
		p := u.Path
		if u.Host != "" {
			// unix://relative/path or file://~/snap.json
			p = u.Host + u.Path
		}
		if p == "" {
			return "", "", fmt.Errorf("%q has no path", addr)
		}
		if p, err = ExpandHome(p); err != nil {
			return "", "", err
		}
		return strings.ToLower(u.Scheme), p, nil
	default:
		return "", "", fmt.Errorf("unsupported scheme in %q, expected https://, unix:// or file://", addr)
	}
}

func optionalPath(p *string) (string, error) {
	v := strings.TrimSpace(ptr.Deref(p, ""))
	if v == "" {
		return "", nil
	}
	return ExpandHome(v)
}

// mergeDefaults layers over onto base; set fields of over win.
func mergeDefaults(base, over Defaults) Defaults {
	out := base
	if over.VerifySSL != nil {
		out.VerifySSL = over.VerifySSL
	}
	if over.CertPath != nil {
		out.CertPath = over.CertPath
	}
	if over.KeyPath != nil {
		out.KeyPath = over.KeyPath
	}
	if over.CACertPath != nil {
		out.CACertPath = over.CACertPath
	}
	if over.HostnameFormat != nil {
		out.HostnameFormat = over.HostnameFormat
	}
	out.Filters = mergeFilters(base.Filters, over.Filters)
	return out
}

func mergeFilters(base, over *Filters) *Filters {
	switch {
	case over == nil:
		return base
	case base == nil:
		return over
	}
	out := *base
	if over.Status != nil {
		out.Status = over.Status
	}
	if over.Type != nil {
		out.Type = over.Type
	}
	if over.Projects != nil {
		out.Projects = over.Projects
	}
	if over.Profiles != nil {
		out.Profiles = over.Profiles
	}
	if over.Tags != nil {
		out.Tags = over.Tags
	}
	if over.IgnoreInterfaces != nil {
		out.IgnoreInterfaces = over.IgnoreInterfaces
	}
	if over.PreferIPv6 != nil {
		out.PreferIPv6 = over.PreferIPv6
	}
	if over.ExcludeNames != nil {
		out.ExcludeNames = over.ExcludeNames
	}
	return &out
}

func hasAll(values []string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), allSentinel) {
			return true
		}
	}
	return false
}

// parseFilters turns the merged raw filters into a Spec, starting from
// the built-in defaults.
func parseFilters(raw *Filters) (*filter.Spec, error) {
	spec := filter.DefaultSpec()
	if raw == nil {
		return spec, nil
	}

	if raw.Status != nil {
		set, err := parseEnum(raw.Status, "status", instance.SupportedStatuses(), instance.ParseStatus)
		if err != nil {
			return nil, err
		}
		spec.Statuses = set
	}

	if raw.Type != nil {
		set, err := parseEnum(raw.Type, "type", instance.SupportedTypes(), instance.ParseType)
		if err != nil {
			return nil, err
		}
		spec.Types = set
	}

	if raw.Projects != nil {
		switch {
		case hasAll(raw.Projects):
			spec.AllProjects = true
			spec.Projects = nil
		case len(raw.Projects) == 0:
			return nil, apperrors.New(apperrors.ErrCodeConfig, "projects is empty, use \"all\" to select every project")
		default:
			spec.Projects = sets.New[string](raw.Projects...)
		}
	}

	for _, p := range raw.Profiles {
		ref, err := filter.ParseProfileRef(p)
		if err != nil {
			return nil, err
		}
		if ref.Scoped() && spec.AllProjects {
			return nil, apperrors.Newf(apperrors.ErrCodeConfig,
				"profile %q is project-scoped, which cannot be combined with projects: all", p)
		}
		spec.Profiles = append(spec.Profiles, ref)
	}

	if raw.Tags != nil {
		for _, e := range *raw.Tags {
			req, err := filter.ParseTagRequirement(e.Key, e.Value, e.HasValue)
			if err != nil {
				return nil, err
			}
			spec.Tags = append(spec.Tags, req)
		}
	}

	if raw.IgnoreInterfaces != nil {
		spec.IgnoreInterfaces = sets.New[string](raw.IgnoreInterfaces...)
	}
	spec.PreferIPv6 = ptr.Deref(raw.PreferIPv6, false)

	for _, e := range raw.ExcludeNames {
		rule, err := filter.ParseExclusionRule(e)
		if err != nil {
			return nil, err
		}
		spec.Exclude = append(spec.Exclude, rule)
	}
	return spec, nil
}

// parseEnum parses a status or type list. "all" yields a nil set, which
// disables the filter.
func parseEnum[T comparable](values []string, field string, supported []string, parse func(string) (T, bool)) (sets.Set[T], error) {
	if hasAll(values) {
		return nil, nil
	}
	if len(values) == 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeConfig, "%s is empty, use \"all\" to disable the filter", field)
	}
	set := sets.New[T]()
	for _, v := range values {
		t, ok := parse(v)
		if !ok {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeConfig,
				fmt.Sprintf("unsupported %s %q", field, v),
				map[string]any{"supported": supported})
		}
		set.Insert(t)
	}
	return set, nil
}
