/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/lxd-inventory/pkg/config"
	"github.com/NVIDIA/lxd-inventory/pkg/defaults"
	"github.com/NVIDIA/lxd-inventory/pkg/logging"
	"github.com/NVIDIA/lxd-inventory/pkg/serializer"
)

const (
	categoryMode    = "Mode"
	categoryFilters = "Filters"
	categoryOutput  = "Output"
	categoryRuntime = "Runtime"
	categoryServer  = "Server"
)

// The flag constructors return new values on every call; urfave flags
// keep parse state and cannot be shared between runs.

// rootFlags are the flags of the inventory script itself. Mode and output
// flags are local; selection flags are inherited by subcommands.
func rootFlags() []cli.Flag {
	return append(modeFlags(), selectionFlags()...)
}

func modeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     "list",
			Usage:    "Print the full inventory document",
			Category: categoryMode,
			Local:    true,
		},
		&cli.StringFlag{
			Name:     "host",
			Aliases:  []string{"instance"},
			Usage:    "Print the variables of one inventory host",
			Category: categoryMode,
			Local:    true,
		},
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "Output file path (default: stdout)",
			Category: categoryOutput,
			Local:    true,
		},
		&cli.StringFlag{
			Name:     "format",
			Aliases:  []string{"t"},
			Value:    string(serializer.FormatJSON),
			Usage:    "Output format: json or yaml",
			Category: categoryOutput,
			Local:    true,
		},
		&cli.BoolFlag{
			Name:     "yaml",
			Usage:    "Shorthand for --format yaml",
			Category: categoryOutput,
			Local:    true,
		},
		&cli.BoolFlag{
			Name:     "strict",
			Usage:    "Exit non-zero when any endpoint could not be inventoried",
			Category: categoryRuntime,
			Local:    true,
		},
		&cli.StringFlag{
			Name:     "metrics-file",
			Usage:    "Write Prometheus metrics in text format to this file after the run",
			Category: categoryRuntime,
			Local:    true,
		},
	}
}

// selectionFlags choose the configuration, endpoints and filters.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "status",
			Usage:    "Instance statuses to include (running, stopped, frozen, error or all)",
			Category: categoryFilters,
		},
		&cli.StringSliceFlag{
			Name:     "type",
			Usage:    "Instance types to include (container, virtual-machine, vm, lxc or all)",
			Category: categoryFilters,
		},
		&cli.StringSliceFlag{
			Name:     "project",
			Usage:    "Projects to inventory",
			Category: categoryFilters,
		},
		&cli.BoolFlag{
			Name:     "all-projects",
			Usage:    "Inventory every project on each endpoint",
			Category: categoryFilters,
		},
		&cli.StringSliceFlag{
			Name:     "profile",
			Usage:    "Profiles an instance must have at least one of (name or project/name)",
			Category: categoryFilters,
		},
		&cli.StringSliceFlag{
			Name:     "tag",
			Usage:    "Tag condition key, key=value or key!=value (can be repeated)",
			Category: categoryFilters,
		},
		&cli.StringSliceFlag{
			Name:     "ignore-interface",
			Usage:    "Network interfaces never used for ansible_host",
			Category: categoryFilters,
		},
		&cli.BoolFlag{
			Name:     "prefer-ipv6",
			Usage:    "Prefer a global IPv6 address for ansible_host",
			Category: categoryFilters,
		},
		&cli.StringFlag{
			Name:     "hostname-format",
			Usage:    "Inventory hostname template, e.g. {name}.{project}",
			Category: categoryFilters,
		},
		&cli.StringSliceFlag{
			Name:     "endpoint",
			Usage:    "Configured endpoints to query, in order (default: all)",
			Category: categoryRuntime,
		},
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    "Configuration file",
			Sources:  cli.EnvVars(config.EnvConfigPath),
			Category: categoryRuntime,
		},
		&cli.StringFlag{
			Name:     "log-level",
			Usage:    "Log level: debug, info, warn or error",
			Sources:  cli.EnvVars(logging.EnvLogLevel),
			Value:    "info",
			Category: categoryRuntime,
		},
		&cli.BoolFlag{
			Name:     "debug",
			Usage:    "Log filter decisions and requests (same as --log-level debug)",
			Category: categoryRuntime,
		},
		&cli.IntFlag{
			Name:     "parallelism",
			Usage:    "Maximum endpoints fetched concurrently",
			Value:    defaults.MaxConcurrentEndpoints,
			Category: categoryRuntime,
		},
		&cli.DurationFlag{
			Name:     "timeout",
			Usage:    "Time limit for fetching one endpoint",
			Value:    defaults.EndpointFetchTimeout,
			Category: categoryRuntime,
		},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "address",
			Usage:    "Listen host (default: all interfaces)",
			Category: categoryServer,
		},
		&cli.IntFlag{
			Name:     "port",
			Usage:    "Listen port",
			Sources:  cli.EnvVars("PORT"),
			Value:    defaults.ServerPort,
			Category: categoryServer,
		},
		&cli.FloatFlag{
			Name:     "rate-limit",
			Usage:    "Requests per second accepted; every request fetches all endpoints",
			Value:    defaults.ServerRateLimit,
			Category: categoryServer,
		},
		&cli.IntFlag{
			Name:     "rate-burst",
			Usage:    "Request burst size",
			Value:    defaults.ServerRateLimitBurst,
			Category: categoryServer,
		},
	}
}
