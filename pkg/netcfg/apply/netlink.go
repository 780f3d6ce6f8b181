// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg/cmdrun"
	"go.githedgehog.com/fabric-netcfg/pkg/util/iputil"
)

// LinkHandle is the subset of *netlink.Handle used to apply the ip commands
type LinkHandle interface {
	LinkByName(name string) (netlink.Link, error)
	LinkSetUp(link netlink.Link) error
	LinkSetDown(link netlink.Link) error
	LinkSetHardwareAddr(link netlink.Link, hwaddr net.HardwareAddr) error
	LinkSetMTU(link netlink.Link, mtu int) error
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
	AddrDel(link netlink.Link, addr *netlink.Addr) error
}

var _ LinkHandle = &netlink.Handle{}

const macLen = 6

// Netlink executes the ip commands produced by the Applier directly over netlink, anything else (e.g. wicked)
// is passed to the Fallback runner
type Netlink struct {
	Handle   LinkHandle
	IPPath   string
	Fallback cmdrun.Runner
}

var _ cmdrun.Runner = &Netlink{}

func NewNetlink(ipPath string, fallback cmdrun.Runner) (*Netlink, error) {
	h, err := netlink.NewHandle()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create netlink handle")
	}

	return &Netlink{
		Handle:   h,
		IPPath:   ipPath,
		Fallback: fallback,
	}, nil
}

func (n *Netlink) Run(ctx context.Context, cmd cmdrun.Command) error {
	ipPath := n.IPPath
	if ipPath == "" {
		ipPath = netcfg.DefaultIPPath
	}

	if cmd.Name != ipPath {
		if n.Fallback == nil {
			return errors.Errorf("unsupported command %q", cmd)
		}

		return n.Fallback.Run(ctx, cmd) //nolint:wrapcheck
	}

	slog.Info("Command to execute (netlink)", "cmd", cmd.String())

	args := cmd.Args
	switch {
	case len(args) == 4 && args[0] == "addr" && args[1] == "flush" && args[2] == "dev":
		return n.flush(args[3])
	case len(args) == 5 && args[0] == "link" && args[1] == "set" && args[2] == "dev" && args[4] == "down":
		return n.withLink(args[3], n.Handle.LinkSetDown)
	case len(args) == 5 && args[0] == "link" && args[1] == "set" && args[2] == "dev" && args[4] == "up":
		return n.withLink(args[3], n.Handle.LinkSetUp)
	case len(args) == 6 && args[0] == "link" && args[1] == "set" && args[2] == "dev" && args[4] == "addr":
		return n.setHardwareAddr(args[3], args[5])
	case len(args) == 6 && args[0] == "link" && args[1] == "set" && args[2] == "dev" && args[4] == "mtu":
		return n.setMTU(args[3], args[5])
	case len(args) == 9 && args[0] == "addr" && args[1] == "add" && args[3] == "dev" &&
		args[5] == "valid_lft" && args[7] == "preferred_lft":
		return n.addAddr(args[4], args[2], args[6], args[8])
	}

	return errors.Errorf("unsupported ip command %q", cmd)
}

func (n *Netlink) link(name string) (netlink.Link, error) {
	link, err := n.Handle.LinkByName(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get link %s", name)
	}

	return link, nil
}

func (n *Netlink) withLink(name string, f func(netlink.Link) error) error {
	link, err := n.link(name)
	if err != nil {
		return err
	}

	return errors.Wrapf(f(link), "failed to set link %s state", name)
}

func (n *Netlink) flush(name string) error {
	link, err := n.link(name)
	if err != nil {
		return err
	}

	addrs, err := n.Handle.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return errors.Wrapf(err, "failed to get addresses for link %s", name)
	}

	for _, addr := range addrs {
		slog.Debug("Removing address", "ifname", name, "addr", addr.String())

		if err := n.Handle.AddrDel(link, &addr); err != nil {
			return errors.Wrapf(err, "failed to remove address %s from link %s", addr, name)
		}
	}

	return nil
}

func (n *Netlink) setHardwareAddr(name, mac string) error {
	hwaddr, err := parseHardwareAddr(mac)
	if err != nil {
		return errors.Wrapf(err, "failed to parse mac %s", mac)
	}

	link, err := n.link(name)
	if err != nil {
		return err
	}

	return errors.Wrapf(n.Handle.LinkSetHardwareAddr(link, hwaddr), "failed to set mac %s on link %s", mac, name)
}

// parseHardwareAddr accepts the same 1-3 hex digit octets as netcfg.ValidMACAddr (and ip), which net.ParseMAC
// would reject
func parseHardwareAddr(mac string) (net.HardwareAddr, error) {
	octets := strings.Split(mac, ":")
	if len(octets) != macLen {
		return nil, errors.Errorf("expected %d octets in %s", macLen, mac)
	}

	hwaddr := make(net.HardwareAddr, 0, macLen)
	for _, octet := range octets {
		val, err := strconv.ParseUint(octet, 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid octet %q in %s", octet, mac)
		}
		hwaddr = append(hwaddr, byte(val))
	}

	return hwaddr, nil
}

func (n *Netlink) setMTU(name, mtu string) error {
	val, err := strconv.Atoi(mtu)
	if err != nil {
		return errors.Wrapf(err, "failed to parse mtu %s", mtu)
	}

	link, err := n.link(name)
	if err != nil {
		return err
	}

	return errors.Wrapf(n.Handle.LinkSetMTU(link, val), "failed to set mtu %d on link %s", val, name)
}

func (n *Netlink) addAddr(name, cidr, validLft, preferredLft string) error {
	parsed, err := iputil.ParseCIDR(cidr)
	if err != nil {
		return errors.Wrapf(err, "failed to parse ip %s", cidr)
	}

	valid, err := iputil.ParseLifetime(validLft)
	if err != nil {
		return errors.Wrapf(err, "failed to parse valid_lft")
	}
	preferred, err := iputil.ParseLifetime(preferredLft)
	if err != nil {
		return errors.Wrapf(err, "failed to parse preferred_lft")
	}

	link, err := n.link(name)
	if err != nil {
		return err
	}

	slog.Debug("Adding address", "ifname", name, "addr", cidr, "subnet", parsed.Subnet.String(),
		"first", parsed.First.String(), "last", parsed.Last.String())

	addr := &netlink.Addr{
		IPNet: &net.IPNet{
			IP:   parsed.IP,
			Mask: parsed.Subnet.Mask,
		},
		ValidLft:    valid,
		PreferedLft: preferred,
	}

	return errors.Wrapf(n.Handle.AddrAdd(link, addr), "failed to add address %s to link %s", cidr, name)
}
