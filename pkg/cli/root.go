/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

const (
	name           = "lxdinv"
	versionDefault = "dev"

	// exitFailure is returned for configuration, usage and fatal errors.
	exitFailure = 1
	// exitPartial is returned by --strict when an endpoint failed.
	exitPartial = 2
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the CLI against the process arguments and exits.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Run executes the command with args and returns the process exit code.
// The inventory goes to stdout; diagnostics go to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newRootCmd(stdout, stderr).Run(ctx, args)
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) && ec.ExitCode() != 0 {
		return ec.ExitCode()
	}
	return exitFailure
}

func newRootCmd(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Ansible dynamic inventory for LXD",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Description: `Query one or more LXD servers and print an Ansible inventory.

Ansible calls the command with --list for the whole inventory and
--host <name> for the variables of one host. Endpoints and filters are read
from lxd_inventory.yml; command-line filters replace the configured ones.

# Examples

Full inventory of running containers in every project:
  lxdinv --list --status running --type container --all-projects

Only instances tagged for Ansible, as YAML:
  lxdinv --list --tag user.ansible=true --yaml

Variables of one host:
  lxdinv --host web1

Inventory over HTTP:
  lxdinv serve --port 8080

Capture an endpoint for offline use:
  lxdinv snapshot --endpoint prod -o prod.json`,
		Writer:                    stdout,
		ErrWriter:                 stderr,
		HideHelpCommand:           true,
		DisableSliceFlagSeparator: true,
		Flags:                     rootFlags(),
		Action:                    runInventory,
		Commands:                  []*cli.Command{serveCmd(), snapshotCmd()},
		// errors are reported by Run
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}
