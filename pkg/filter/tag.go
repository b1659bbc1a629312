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
	"fmt"
	"strings"

	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
)

// TagOp is the comparison a TagRequirement performs.
type TagOp int

const (
	// TagExists holds when the key is present with any value.
	TagExists TagOp = iota + 1
	// TagEquals holds when the key is present with exactly the value.
	TagEquals
	// TagNotEquals holds when the key is absent or has a different value.
	TagNotEquals
)

const notEqualsSuffix = "!="

// String returns the operator as written in expressions.
func (o TagOp) String() string {
	switch o {
	case TagExists:
		return "exists"
	case TagEquals:
		return "="
	case TagNotEquals:
		return notEqualsSuffix
	default:
		return fmt.Sprintf("TagOp(%d)", int(o))
	}
}

// TagRequirement is one parsed tag condition against expanded configuration.
type TagRequirement struct {
	Key   string
	Op    TagOp
	Value string
}

// Exists returns a requirement that key is present.
func Exists(key string) TagRequirement {
	return TagRequirement{Key: key, Op: TagExists}
}

// Equals returns a requirement that key is present with value.
func Equals(key, value string) TagRequirement {
	return TagRequirement{Key: key, Op: TagEquals, Value: value}
}

// NotEquals returns a requirement that key is absent or not value.
func NotEquals(key, value string) TagRequirement {
	return TagRequirement{Key: key, Op: TagNotEquals, Value: value}
}

// ParseTagRequirement parses a configuration mapping entry. A key ending
// in "!=" yields NotEquals and requires a value; a key without a value
// (YAML null) yields Exists; anything else yields Equals.
func ParseTagRequirement(key, value string, hasValue bool) (TagRequirement, error) {
	k := strings.TrimSpace(key)
	if base, ok := strings.CutSuffix(k, notEqualsSuffix); ok {
		base = strings.TrimSpace(base)
		if base == "" {
			return TagRequirement{}, apperrors.Newf(apperrors.ErrCodeConfig, "tag %q: key is empty", key)
		}
		if !hasValue {
			return TagRequirement{}, apperrors.Newf(apperrors.ErrCodeConfig, "tag %q: a != condition requires a value", key)
		}
		return NotEquals(base, value), nil
	}

	if k == "" {
		return TagRequirement{}, apperrors.New(apperrors.ErrCodeConfig, "tag key is empty")
	}
	if !hasValue {
		return Exists(k), nil
	}
	return Equals(k, value), nil
}

// ParseTagExpression parses the command-line form: "key!=value",
// "key=value" or a bare "key".
func ParseTagExpression(expr string) (TagRequirement, error) {
	s := strings.TrimSpace(expr)
	if i := strings.Index(s, notEqualsSuffix); i >= 0 {
		return ParseTagRequirement(s[:i+len(notEqualsSuffix)], s[i+len(notEqualsSuffix):], true)
	}
	if k, v, ok := strings.Cut(s, "="); ok {
		return ParseTagRequirement(k, v, true)
	}
	return ParseTagRequirement(s, "", false)
}

// Matches evaluates the requirement against cfg.
func (r TagRequirement) Matches(cfg map[string]string) bool {
	v, ok := cfg[r.Key]
	switch r.Op {
	case TagExists:
		return ok
	case TagEquals:
		return ok && v == r.Value
	case TagNotEquals:
		return !ok || v != r.Value
	default:
		return false
	}
}

// Validate reports requirements that were not built by the parsers.
func (r TagRequirement) Validate() error {
	if r.Key == "" {
		return apperrors.New(apperrors.ErrCodeFilterEvaluation, "tag requirement has an empty key")
	}
	switch r.Op {
	case TagExists, TagEquals, TagNotEquals:
		return nil
	default:
		return apperrors.Newf(apperrors.ErrCodeFilterEvaluation, "tag requirement %q has unknown operator %s", r.Key, r.Op)
	}
}

// String renders the requirement in expression form.
func (r TagRequirement) String() string {
	switch r.Op {
	case TagExists:
		return r.Key
	case TagEquals:
		return r.Key + "=" + r.Value
	case TagNotEquals:
		return r.Key + notEqualsSuffix + r.Value
	default:
		return r.Key + "?" + r.Value
	}
}

// MatchTags reports whether every requirement holds against cfg.
// An empty requirement set always matches.
func MatchTags(reqs []TagRequirement, cfg map[string]string) bool {
	for _, r := range reqs {
		if !r.Matches(cfg) {
			return false
		}
	}
	return true
}
