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
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/lxd-inventory/pkg/config"
	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
	"github.com/NVIDIA/lxd-inventory/pkg/inventory"
	"github.com/NVIDIA/lxd-inventory/pkg/logging"
	"github.com/NVIDIA/lxd-inventory/pkg/lxd"
	"github.com/NVIDIA/lxd-inventory/pkg/serializer"
)

// selection is shared by every mode: where the configuration lives and
// which endpoints and filters apply.
type selection struct {
	configPath  string
	endpoints   []string
	overrides   config.Overrides
	logLevel    string
	parallelism int
	timeout     time.Duration
}

type options struct {
	selection

	list bool
	host string

	format      serializer.Format
	output      string
	strict      bool
	metricsFile string
}

func parseOptions(cmd *cli.Command) (*options, error) {
	o := &options{
		list:        cmd.Bool("list"),
		host:        strings.TrimSpace(cmd.String("host")),
		output:      cmd.String("output"),
		strict:      cmd.Bool("strict"),
		metricsFile: cmd.String("metrics-file"),
	}

	switch {
	case o.list && o.host != "":
		return nil, errors.New("--list and --host cannot be used together")
	case !o.list && o.host == "":
		return nil, errors.New("one of --list or --host is required")
	}

	format, err := serializer.ParseFormat(cmd.String("format"))
	if err != nil {
		return nil, err
	}
	if cmd.Bool("yaml") {
		format = serializer.FormatYAML
	}
	o.format = format

	sel, err := parseSelection(cmd)
	if err != nil {
		return nil, err
	}
	o.selection = sel
	return o, nil
}

func parseSelection(cmd *cli.Command) (selection, error) {
	s := selection{
		configPath:  cmd.String("config"),
		endpoints:   config.SplitList(cmd.StringSlice("endpoint")...),
		logLevel:    cmd.String("log-level"),
		parallelism: cmd.Int("parallelism"),
		timeout:     cmd.Duration("timeout"),
	}
	if cmd.Bool("debug") {
		s.logLevel = "debug"
	}
	if s.parallelism < 0 {
		return selection{}, fmt.Errorf("invalid --parallelism %d: must not be negative", s.parallelism)
	}
	if s.timeout < 0 {
		return selection{}, fmt.Errorf("invalid --timeout %s: must not be negative", s.timeout)
	}

	s.overrides = config.Overrides{
		Statuses:         config.SplitList(cmd.StringSlice("status")...),
		Types:            config.SplitList(cmd.StringSlice("type")...),
		Projects:         config.SplitList(cmd.StringSlice("project")...),
		AllProjects:      cmd.Bool("all-projects"),
		Profiles:         config.SplitList(cmd.StringSlice("profile")...),
		Tags:             tagExpressions(cmd.StringSlice("tag")),
		IgnoreInterfaces: config.SplitList(cmd.StringSlice("ignore-interface")...),
	}
	if cmd.IsSet("prefer-ipv6") {
		s.overrides.PreferIPv6 = ptr.To(cmd.Bool("prefer-ipv6"))
	}
	if cmd.IsSet("hostname-format") {
		s.overrides.HostnameFormat = ptr.To(cmd.String("hostname-format"))
	}
	return s, nil
}

// startLogging installs the process logger tagged with a fresh run ID.
func startLogging(level, mode string) {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	slog.SetDefault(slog.Default().With("run_id", uuid.NewString()))
	slog.Debug("starting",
		"commit", commit,
		"date", date,
		"mode", mode)
}

// builder loads and resolves the configuration. Any error here is fatal
// and happens before an endpoint is contacted.
func (s selection) builder() (*inventory.Builder, error) {
	file, path, err := config.LoadOrEnvironment(s.configPath, os.Getenv)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return nil, err
	}
	if path == "" {
		slog.Info("no configuration file found, using environment defaults")
	} else {
		slog.Debug("loaded configuration", "path", path)
	}

	endpoints, err := config.Resolve(file, s.endpoints, s.overrides)
	if err != nil {
		slog.Error("invalid configuration", "path", path, "error", err)
		return nil, err
	}

	return &inventory.Builder{
		Endpoints:   endpoints,
		Factory:     lxd.NewDefaultFactory(lxd.WithUserAgent(name + "/" + version)),
		Parallelism: s.parallelism,
		Timeout:     s.timeout,
	}, nil
}

// tagExpressions keeps each --tag whole; values may contain commas.
func tagExpressions(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func runInventory(ctx context.Context, cmd *cli.Command) error {
	opts, err := parseOptions(cmd)
	if err != nil {
		return err
	}
	startLogging(opts.logLevel, modeOf(opts))

	b, err := opts.builder()
	if err != nil {
		return err
	}
	res, err := b.Build(ctx)
	if err != nil {
		slog.Error("inventory build failed", "error", err)
		return err
	}

	if err := emit(ctx, cmd.Root().Writer, opts, res.Document); err != nil {
		return err
	}

	failed := res.Failed()
	slog.Info("inventory complete",
		"hosts", res.Document.Len(),
		"endpoints", len(b.Endpoints),
		"failed", len(failed),
		"collisions", len(res.Collisions))

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, prometheus.DefaultGatherer); err != nil {
			return apperrors.WrapWithContext(apperrors.ErrCodeInternal, "failed to write metrics", err,
				map[string]any{"path": opts.metricsFile})
		}
	}

	if opts.strict && len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, f := range failed {
			names = append(names, f.Name)
		}
		return cli.Exit(fmt.Sprintf("%d of %d endpoints failed: %s",
			len(failed), len(b.Endpoints), strings.Join(names, ", ")), exitPartial)
	}
	return nil
}

func modeOf(o *options) string {
	if o.list {
		return "list"
	}
	return "host"
}

// emit writes the document for --list or the host variables for --host.
// An unknown host prints an empty object.
func emit(ctx context.Context, stdout io.Writer, opts *options, doc *inventory.Document) error {
	w, err := newWriter(stdout, opts.output, opts.format)
	if err != nil {
		return err
	}
	defer closeWriter(w, opts.output)

	var v any = doc
	if !opts.list {
		hv, ok := doc.Host(opts.host)
		if !ok {
			slog.Debug("host not in inventory", "host", opts.host)
			v = map[string]any{}
		} else {
			v = hv
		}
	}
	return w.Serialize(ctx, v)
}

// newWriter writes to stdout for an empty or "-" output.
func newWriter(stdout io.Writer, output string, format serializer.Format) (*serializer.Writer, error) {
	if output == "" || output == "-" {
		return serializer.NewWriter(format, stdout), nil
	}
	return serializer.NewFileWriterOrStdout(format, output)
}

func closeWriter(w *serializer.Writer, output string) {
	if err := w.Close(); err != nil {
		slog.Warn("failed to close output", "output", output, "error", err)
	}
}
