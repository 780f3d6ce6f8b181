// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/samber/lo"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg/apply"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg/cmdrun"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg/lldp"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg/metrics"
)

const (
	BackendExec    = "exec"
	BackendNetlink = "netlink"

	ModeIfcfg = "ifcfg"
	ModeIP    = "ip"
)

var Backends = []string{BackendExec, BackendNetlink}

type Options struct {
	Interface     string
	CreateIfcfg   bool
	DryRun        bool
	RemoveIPAddrs bool
	SkipReload    bool
	InputFile     string
	Backend       string
	MetricsFile   string
	Settings      netcfg.Settings

	// Source and Runner override what's picked based on the options above, used in tests
	Source netcfg.Source
	Runner cmdrun.Runner
	Stdout io.Writer
}

// Run discovers the fabric config for the interface over LLDP and applies it
func Run(ctx context.Context, opts Options) (funcErr error) { //nolint:nonamedreturns
	if opts.Interface == "" {
		return fmt.Errorf("interface name is required") //nolint:goerr113
	}
	if !netcfg.ValidInterfaceName(opts.Interface) {
		return fmt.Errorf("invalid interface name %q", opts.Interface) //nolint:goerr113
	}
	if opts.Backend == "" {
		opts.Backend = BackendExec
	}
	if !lo.Contains(Backends, opts.Backend) {
		return fmt.Errorf("unsupported backend %q, supported: %v", opts.Backend, Backends) //nolint:goerr113
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	mode := lo.Ternary(opts.CreateIfcfg, ModeIfcfg, ModeIP)

	slog.Debug("Options", "ifname", opts.Interface, "mode", mode, "dryRun", opts.DryRun, "inputFile", opts.InputFile,
		"backend", opts.Backend, "removeIPAddrs", opts.RemoveIPAddrs, "skipReload", opts.SkipReload)

	var fc *netcfg.FabricConfig
	if opts.MetricsFile != "" {
		defer func() {
			run := metrics.Run{
				Interface: opts.Interface,
				Mode:      mode,
				Config:    fc,
				Err:       funcErr,
				Finished:  time.Now(),
			}
			if err := run.WriteTextfile(opts.MetricsFile); err != nil {
				slog.Warn("Failed to write metrics", "path", opts.MetricsFile, "err", err.Error())
			}
		}()
	}

	src := opts.Source
	if src == nil {
		src = lldp.ForInput(opts.Settings.LLDPToolPath, opts.InputFile)
	}

	fc, err := netcfg.Parse(ctx, src, opts.Interface)
	if err != nil {
		return fmt.Errorf("failed to parse TLV provided by LLDP: %w", err)
	}

	runner, err := newRunner(opts)
	if err != nil {
		return err
	}

	applier := apply.New(runner, opts.Settings, apply.Options{
		CreateIfcfg:   opts.CreateIfcfg,
		DryRun:        opts.DryRun,
		RemoveIPAddrs: opts.RemoveIPAddrs,
		SkipReload:    opts.SkipReload,
		Stdout:        opts.Stdout,
	})
	if err := applier.Apply(ctx, fc); err != nil {
		return fmt.Errorf("applying fabric config (%s): %w", mode, err)
	}

	slog.Info("Fabric config applied", "ifname", opts.Interface, "mode", mode)

	return nil
}

func newRunner(opts Options) (cmdrun.Runner, error) {
	if opts.Runner != nil {
		return opts.Runner, nil
	}
	if opts.DryRun {
		// stdout carries the ifcfg document in that mode, the reload commands are only logged
		if opts.CreateIfcfg {
			return cmdrun.DryRun{}, nil
		}

		return cmdrun.DryRun{Out: opts.Stdout}, nil
	}
	if opts.Backend == BackendNetlink {
		nl, err := apply.NewNetlink(opts.Settings.IPPath, cmdrun.Exec{})
		if err != nil {
			return nil, fmt.Errorf("creating netlink backend: %w", err)
		}

		return nl, nil
	}

	return cmdrun.Exec{}, nil
}
