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
	"regexp"
	"strings"

	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
)

const regexPrefix = "regex:"

// projectNameRe decides whether the text before the first "/" of a regex
// rule is a project scope or part of the pattern.
var projectNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

type ruleKind int

const (
	kindLiteral ruleKind = iota + 1
	kindRegex
)

// ExclusionRule removes instances by name, optionally within one project.
// Build rules with ParseExclusionRule or the constructors; the zero value
// is invalid.
type ExclusionRule struct {
	kind    ruleKind
	project string
	name    string
	pattern *regexp.Regexp
	raw     string
}

// Literal excludes name in every project.
func Literal(name string) ExclusionRule {
	return ExclusionRule{kind: kindLiteral, name: name, raw: name}
}

// ScopedLiteral excludes name in project only.
func ScopedLiteral(project, name string) ExclusionRule {
	return ExclusionRule{kind: kindLiteral, project: project, name: name, raw: project + "/" + name}
}

// Regex excludes names matching pattern anywhere in every project.
func Regex(pattern string) (ExclusionRule, error) {
	return compileRule("", pattern, regexPrefix+pattern)
}

// ScopedRegex excludes names matching pattern in project only.
func ScopedRegex(project, pattern string) (ExclusionRule, error) {
	return compileRule(project, pattern, regexPrefix+project+"/"+pattern)
}

func compileRule(project, pattern, raw string) (ExclusionRule, error) {
	if pattern == "" {
		return ExclusionRule{}, apperrors.Newf(apperrors.ErrCodeConfig, "exclude rule %q: empty pattern", raw)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ExclusionRule{}, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"invalid exclude pattern", err, map[string]any{"rule": raw})
	}
	return ExclusionRule{kind: kindRegex, project: project, pattern: re, raw: raw}, nil
}

// ParseExclusionRule parses one exclude_names entry.
func ParseExclusionRule(raw string) (ExclusionRule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ExclusionRule{}, apperrors.New(apperrors.ErrCodeConfig, "exclude rule is empty")
	}

	if rest, ok := strings.CutPrefix(s, regexPrefix); ok {
		if i := strings.IndexByte(rest, '/'); i > 0 && projectNameRe.MatchString(rest[:i]) {
			return compileRule(rest[:i], rest[i+1:], s)
		}
		return compileRule("", rest, s)
	}

	project, name, scoped := strings.Cut(s, "/")
	if !scoped {
		return Literal(s), nil
	}
	if project == "" {
		return ExclusionRule{}, apperrors.Newf(apperrors.ErrCodeConfig, "exclude rule %q: empty project", raw)
	}
	if pattern, ok := strings.CutPrefix(name, regexPrefix); ok {
		return compileRule(project, pattern, s)
	}
	if name == "" || strings.Contains(name, "/") {
		return ExclusionRule{}, apperrors.Newf(apperrors.ErrCodeConfig, "exclude rule %q: expected project/name", raw)
	}
	return ScopedLiteral(project, name), nil
}

// Matches reports whether the rule excludes the named instance.
func (r ExclusionRule) Matches(name, project string) bool {
	if r.project != "" && r.project != project {
		return false
	}
	switch r.kind {
	case kindLiteral:
		return r.name == name
	case kindRegex:
		return r.pattern != nil && r.pattern.MatchString(name)
	default:
		return false
	}
}

// Project returns the scoping project, empty when the rule is unscoped.
func (r ExclusionRule) Project() string { return r.project }

// IsRegex reports whether the rule is a pattern rule.
func (r ExclusionRule) IsRegex() bool { return r.kind == kindRegex }

// String returns the rule as it was written.
func (r ExclusionRule) String() string { return r.raw }

// Validate reports rules that were not built by the parsers.
func (r ExclusionRule) Validate() error {
	switch r.kind {
	case kindLiteral:
		if r.name == "" {
			return apperrors.New(apperrors.ErrCodeFilterEvaluation, "literal exclude rule has an empty name")
		}
	case kindRegex:
		if r.pattern == nil {
			return apperrors.Newf(apperrors.ErrCodeFilterEvaluation, "exclude rule %q has no compiled pattern", r.raw)
		}
	default:
		return apperrors.New(apperrors.ErrCodeFilterEvaluation, "exclude rule has unknown kind")
	}
	return nil
}

// IsExcluded reports whether any rule matches the instance.
func IsExcluded(rules []ExclusionRule, name, project string) bool {
	for _, r := range rules {
		if r.Matches(name, project) {
			return true
		}
	}
	return false
}
