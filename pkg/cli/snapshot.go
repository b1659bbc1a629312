/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/lxd-inventory/pkg/defaults"
	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
	"github.com/NVIDIA/lxd-inventory/pkg/lxd"
	"github.com/NVIDIA/lxd-inventory/pkg/serializer"
)

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Capture the instances of one endpoint to a file",
		Description: `Capture the raw instance list of one endpoint, with expanded
configuration and network state, in the format file:// endpoints read.

The snapshot is not filtered; filters apply when it is inventoried.
The configured projects are captured, or every project with --all-projects.
A file:// endpoint is re-captured, which converts it between formats.

# Examples

  lxdinv snapshot --endpoint prod --all-projects -o prod.yaml

Then inventory it offline:

  lxd_endpoints:
    prod-cached:
      endpoint: file:///var/cache/lxdinv/prod.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path; the extension selects the format (default: stdout)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   "Output format: json or yaml (default: from --output, else json)",
			},
		},
		Action: runSnapshot,
	}
}

func runSnapshot(ctx context.Context, cmd *cli.Command) error {
	sel, err := parseSelection(cmd)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	format := serializer.FormatJSON
	if output != "" && output != "-" {
		format = serializer.FormatFromPath(output)
	}
	if cmd.IsSet("format") {
		if format, err = serializer.ParseFormat(cmd.String("format")); err != nil {
			return err
		}
	}
	startLogging(sel.logLevel, "snapshot")

	b, err := sel.builder()
	if err != nil {
		return err
	}
	if len(b.Endpoints) != 1 {
		return errors.New("snapshot captures one endpoint; select it with --endpoint")
	}
	ep := b.Endpoints[0]

	client, err := lxd.NewDefaultFactory(lxd.WithUserAgent(name+"/"+version)).Client(ep)
	if err != nil {
		return err
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaults.EndpointFetchTimeout
	}
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	instances, err := lxd.CaptureInstances(fctx, client, ep.Filters.ProjectList())
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeEndpoint, "failed to capture instances", err,
			map[string]any{"endpoint": ep.Name, "url": ep.URL})
	}

	w, err := newWriter(cmd.Root().Writer, output, format)
	if err != nil {
		return err
	}
	defer closeWriter(w, output)

	if err := w.Serialize(ctx, instances); err != nil {
		return err
	}
	slog.Info("snapshot captured",
		"endpoint", ep.Name,
		"instances", len(instances),
		"output", output)
	return nil
}
