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

// Package serializer provides encoding and decoding of inventory data in
// JSON and YAML.
//
// # Overview
//
// Writers emit the inventory document on stdout or into a file. Readers
// load instance snapshots for file:// endpoints. The format of a file is
// detected from its extension.
//
// # Supported Formats
//
// JSON:
//   - The format Ansible expects from a dynamic inventory
//   - Indented, HTML escaping disabled
//   - Standard encoding/json package
//
// YAML:
//   - Human-readable, selected with --yaml or --format yaml
//   - gopkg.in/yaml.v3 package
//
// # Usage - Encoding
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatJSON, "")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Serialize(ctx, doc); err != nil {
//	    return err
//	}
//
// # Usage - Decoding
//
//	snap, err := serializer.FromFile[[]lxd.APIInstance]("snapshot.yaml")
//	if err != nil {
//	    return err
//	}
//
// # Format Detection
//
// File extension-based detection:
//   - .json → JSON
//   - .yaml, .yml → YAML
//   - Other → JSON (default)
//
// # Resource Management
//
// Close writers and readers that manage files. Stdout writers don't
// require closing but Close() is safe to call.
package serializer
