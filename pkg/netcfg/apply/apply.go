// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg/cmdrun"
	"go.githedgehog.com/fabric-netcfg/pkg/util/iputil"
)

type Options struct {
	// CreateIfcfg writes a persisted ifcfg file instead of configuring the link live
	CreateIfcfg bool
	// DryRun renders the ifcfg to Stdout instead of the filesystem, the Runner is expected to be a dry run too
	DryRun        bool
	RemoveIPAddrs bool
	SkipReload    bool

	IPPath       string
	WickedPath   string
	IfcfgDir     string
	PostUpScript string

	Stdout io.Writer
}

type Applier struct {
	Runner  cmdrun.Runner
	Options Options
}

func New(runner cmdrun.Runner, settings netcfg.Settings, opts Options) *Applier {
	if opts.IPPath == "" {
		opts.IPPath = settings.IPPath
	}
	if opts.WickedPath == "" {
		opts.WickedPath = settings.WickedPath
	}
	if opts.IfcfgDir == "" {
		opts.IfcfgDir = settings.IfcfgDir
	}
	if opts.PostUpScript == "" {
		opts.PostUpScript = settings.PostUpScript
	}

	return &Applier{
		Runner:  runner,
		Options: opts,
	}
}

// Apply configures the interface from a fabric config using the mode selected in the options
func (a *Applier) Apply(ctx context.Context, fc *netcfg.FabricConfig) error {
	if fc == nil {
		return errors.New("no fabric config")
	}
	if err := fc.Validate(); err != nil {
		return errors.Wrapf(err, "refusing to apply invalid fabric config")
	}

	if a.Options.CreateIfcfg {
		return a.WriteIfcfg(ctx, fc)
	}

	return a.DoIPCommands(ctx, fc)
}

// ReloadInterface cycles the interface through wicked so it picks up the ifcfg file
func (a *Applier) ReloadInterface(ctx context.Context, ifname string) error {
	slog.Info("Reloading interface", "ifname", ifname)

	return errors.Wrapf(cmdrun.RunAll(ctx, a.Runner,
		cmdrun.New(a.wicked(), "ifdown", ifname),
		cmdrun.New(a.wicked(), "ifup", ifname),
	), "failed to reload interface %s", ifname)
}

// IPCommands returns the ordered ip commands applying fc to the live interface. TTL goes into valid_lft and MTU
// into preferred_lft as the fabric tooling has always done it.
func (a *Applier) IPCommands(fc *netcfg.FabricConfig) []cmdrun.Command {
	ip := a.ip()
	cmds := []cmdrun.Command{}

	if a.Options.RemoveIPAddrs {
		cmds = append(cmds, cmdrun.New(ip, "addr", "flush", "dev", fc.Interface))
	}
	if !a.Options.SkipReload {
		cmds = append(cmds, cmdrun.New(ip, "link", "set", "dev", fc.Interface, "down"))
	}

	cmds = append(cmds, cmdrun.New(ip, "link", "set", "dev", fc.Interface, "addr", fc.MACAddr))

	if !a.Options.SkipReload {
		cmds = append(cmds, cmdrun.New(ip, "link", "set", "dev", fc.Interface, "up"))
	}

	// TODO: preferred_lft should probably not be the MTU, keep it until the TLV format is revisited with the switch side
	cmds = append(cmds,
		cmdrun.New(ip, "addr", "add", fc.IPAddr, "dev", fc.Interface, "valid_lft", fc.TTL, "preferred_lft", fc.MTU),
		cmdrun.New(ip, "link", "set", "dev", fc.Interface, "mtu", fc.MTU),
	)

	return cmds
}

func (a *Applier) DoIPCommands(ctx context.Context, fc *netcfg.FabricConfig) error {
	slog.Info("Configuring interface", "ifname", fc.Interface, "dryRun", a.Options.DryRun)

	if LifetimesConflict(fc) {
		slog.Warn("Preferred lifetime (MTU) exceeds valid lifetime (TTL), the address may be rejected",
			"ifname", fc.Interface, "ttl", fc.TTL, "mtu", fc.MTU)
	}

	return errors.Wrapf(cmdrun.RunAll(ctx, a.Runner, a.IPCommands(fc)...), "failed to configure interface %s", fc.Interface)
}

// LifetimesConflict reports whether the preferred_lft taken from the MTU is longer than the valid_lft taken from
// the TTL, which the kernel refuses
func LifetimesConflict(fc *netcfg.FabricConfig) bool {
	valid, err := iputil.ParseLifetime(fc.TTL)
	if err != nil {
		return false
	}
	preferred, err := iputil.ParseLifetime(fc.MTU)
	if err != nil {
		return false
	}

	slog.Debug("Address lifetimes", "ifname", fc.Interface,
		"valid", iputil.FormatLifetime(valid), "preferred", iputil.FormatLifetime(preferred))

	return preferred > valid
}

func (a *Applier) ip() string {
	if a.Options.IPPath != "" {
		return a.Options.IPPath
	}

	return netcfg.DefaultIPPath
}

func (a *Applier) wicked() string {
	if a.Options.WickedPath != "" {
		return a.Options.WickedPath
	}

	return netcfg.DefaultWickedPath
}
