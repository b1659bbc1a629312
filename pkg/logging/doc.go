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

// Package logging configures structured logging for lxdinv.
//
// # Overview
//
// The package wraps log/slog with the defaults every component shares.
// Logs are JSON on stderr so stdout stays reserved for the inventory
// document Ansible consumes.
//
// # Log Levels
//
// Supported levels (case-insensitive):
//   - DEBUG: per-instance filter decisions and request traces, with source location
//   - INFO: run summary (default)
//   - WARN/WARNING: skipped endpoints and hostname collisions
//   - ERROR: fatal failures
//
// # Usage
//
//	logging.SetDefaultStructuredLoggerWithLevel("lxdinv", version, "debug")
//	slog.Debug("filter decision", "endpoint", "local", "instance", "web1")
//
// An empty level falls back to the LOG_LEVEL environment variable:
//
//	LOG_LEVEL=debug lxdinv --list
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "WARN",
//	    "msg": "endpoint skipped",
//	    "module": "lxdinv",
//	    "version": "v1.0.0",
//	    "endpoint": "prod",
//	    "code": "ENDPOINT_ERROR"
//	}
package logging
