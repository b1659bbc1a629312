/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/lxd-inventory/pkg/api"
	"github.com/NVIDIA/lxd-inventory/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the inventory over HTTP",
		Description: `Run an HTTP service that builds the inventory on every request.

Routes:
  GET /v1/inventory        full document (?format=yaml for YAML)
  GET /v1/hosts/{name}     variables of one host
  GET /health, /ready      probes
  GET /metrics             Prometheus metrics

Configuration and filter flags are the same as for --list:
  lxdinv serve --config /etc/lxd-inventory/config.yaml --status running --port 8080`,
		Flags:  serveFlags(),
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	sel, err := parseSelection(cmd)
	if err != nil {
		return err
	}
	port := cmd.Int("port")
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid --port %d", port)
	}
	if cmd.Float("rate-limit") <= 0 || cmd.Int("rate-burst") < 1 {
		return fmt.Errorf("--rate-limit must be positive and --rate-burst at least 1")
	}
	startLogging(sel.logLevel, "serve")

	b, err := sel.builder()
	if err != nil {
		return err
	}

	return api.Serve(ctx, b,
		server.WithName(name),
		server.WithVersion(version),
		server.WithAddress(cmd.String("address"), port),
		server.WithRateLimit(rate.Limit(cmd.Float("rate-limit")), cmd.Int("rate-burst")),
	)
}
