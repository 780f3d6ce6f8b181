// Copyright 2023 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package iputil

import (
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	cidrlib "github.com/apparentlymart/go-cidr/cidr"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// LifetimeForever is the kernel's infinite address lifetime
const LifetimeForever = math.MaxUint32

type ParsedCIDR struct {
	IP     net.IP
	Subnet net.IPNet
	First  net.IP
	Last   net.IP
}

// ParseCIDR parses an IPv4 address with prefix length, e.g. 10.1.2.3/24
func ParseCIDR(cidr string) (*ParsedCIDR, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse cidr %s", cidr)
	}

	ip4 := ip.To4()
	if ip4 == nil {
		return nil, errors.Errorf("not an IPv4 address %s", cidr)
	}

	first, last := cidrlib.AddressRange(ipNet)

	return &ParsedCIDR{
		IP:     ip4,
		Subnet: *ipNet,
		First:  first,
		Last:   last,
	}, nil
}

// ParseLifetime parses an address lifetime in seconds or "forever" the way ip(8) accepts it
func ParseLifetime(lft string) (int, error) {
	if lft == "forever" {
		return LifetimeForever, nil
	}

	val, err := strconv.ParseUint(lft, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid lifetime %s", lft)
	}

	return int(val), nil
}

// FormatLifetime renders a lifetime in seconds as a rough duration, e.g. "1 hour" or "forever"
func FormatLifetime(lft int) string {
	if lft == LifetimeForever {
		return "forever"
	}

	start := time.Time{}

	return strings.TrimSpace(humanize.RelTime(start, start.Add(time.Duration(lft)*time.Second), "", ""))
}
