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

// Package hostname renders inventory hostnames from templates such as
// "{name}.{project}.{endpoint}.example.com".
//
// Supported placeholders are {name}, {project}, {endpoint}, {type} and
// {status}. Use {{ and }} for literal braces.
package hostname

import (
	"fmt"
	"strings"

	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
	"github.com/NVIDIA/lxd-inventory/pkg/instance"
)

// DefaultFormat renders the bare instance name.
const DefaultFormat = "{name}"

// Vars are the values a template can reference.
type Vars struct {
	Name     string
	Project  string
	Endpoint string
	Type     string
	Status   string
}

// VarsFor extracts template values from an instance.
func VarsFor(inst *instance.Instance) Vars {
	return Vars{
		Name:     inst.Name,
		Project:  inst.Project,
		Endpoint: inst.Endpoint,
		Type:     string(inst.Type),
		Status:   string(inst.Status),
	}
}

type field int

const (
	fieldLiteral field = iota
	fieldName
	fieldProject
	fieldEndpoint
	fieldType
	fieldStatus
)

var placeholders = map[string]field{
	"name":     fieldName,
	"project":  fieldProject,
	"endpoint": fieldEndpoint,
	"type":     fieldType,
	"status":   fieldStatus,
}

// SupportedPlaceholders returns the placeholder names in template order.
func SupportedPlaceholders() []string {
	return []string{"name", "project", "endpoint", "type", "status"}
}

type segment struct {
	field   field
	literal string
}

// Template is a compiled hostname format.
type Template struct {
	raw      string
	segments []segment
}

// Compile parses format. Unknown placeholders and unbalanced braces are
// configuration errors.
func Compile(format string) (*Template, error) {
	if strings.TrimSpace(format) == "" {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "hostname format is empty")
	}

	t := &Template{raw: format}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c == '{' && i+1 < len(format) && format[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(format) && format[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(format[i+1:], '}')
			if end < 0 {
				return nil, configErr(format, fmt.Sprintf("unclosed placeholder at offset %d", i))
			}
			token := format[i+1 : i+1+end]
			f, ok := placeholders[token]
			if !ok {
				return nil, configErr(format, fmt.Sprintf("unsupported placeholder {%s} (supported: %s)",
					token, strings.Join(SupportedPlaceholders(), ", ")))
			}
			flush()
			t.segments = append(t.segments, segment{field: f})
			i += end + 1
		case c == '}':
			return nil, configErr(format, fmt.Sprintf("unmatched } at offset %d", i))
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	return t, nil
}

func configErr(format, msg string) error {
	return apperrors.NewWithContext(apperrors.ErrCodeConfig, "invalid hostname format: "+msg,
		map[string]any{"hostname_format": format})
}

// Render substitutes v into the template.
func (t *Template) Render(v Vars) string {
	var b strings.Builder
	for _, s := range t.segments {
		switch s.field {
		case fieldLiteral:
			b.WriteString(s.literal)
		case fieldName:
			b.WriteString(v.Name)
		case fieldProject:
			b.WriteString(v.Project)
		case fieldEndpoint:
			b.WriteString(v.Endpoint)
		case fieldType:
			b.WriteString(v.Type)
		case fieldStatus:
			b.WriteString(v.Status)
		}
	}
	return b.String()
}

// String returns the original format.
func (t *Template) String() string { return t.raw }

// Validate compiles format and renders it against a synthetic instance.
func Validate(format string) error {
	t, err := Compile(format)
	if err != nil {
		return err
	}
	probe := Vars{
		Name:     "probe",
		Project:  "default",
		Endpoint: "local",
		Type:     string(instance.TypeContainer),
		Status:   string(instance.StatusRunning),
	}
	if strings.TrimSpace(t.Render(probe)) == "" {
		return configErr(format, "renders an empty hostname")
	}
	return nil
}

// Render compiles format and renders it once.
func Render(format string, v Vars) (string, error) {
	t, err := Compile(format)
	if err != nil {
		return "", err
	}
	return t.Render(v), nil
}
