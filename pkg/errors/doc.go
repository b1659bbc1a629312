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

// Package errors provides structured error types for the inventory pipeline.
//
// Three codes drive control flow:
//   - ErrCodeConfig: broken configuration, aborts the run before any endpoint is contacted
//   - ErrCodeEndpoint: a single endpoint failed, the run continues without it
//   - ErrCodeFilterEvaluation: a parsed rule could not be evaluated, aborts the run
//
// The remaining codes classify transport failures and appear as the
// cause of an endpoint error.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeEndpoint,
//	    "failed to list instances",
//	    cause,
//	    map[string]any{
//	        "endpoint": "prod",
//	        "project":  "default",
//	    },
//	)
//
//	if errors.IsCode(err, errors.ErrCodeConfig) {
//	    os.Exit(1)
//	}
package errors
