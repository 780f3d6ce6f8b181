// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package netcfg

import (
	"log/slog"
)

// FabricConfig is the per-link configuration advertised by the fabric switch for a single local interface
type FabricConfig struct {
	Interface string `json:"interface,omitempty"`
	MACAddr   string `json:"macAddr,omitempty"`
	IPAddr    string `json:"ipAddr,omitempty"`
	MTU       string `json:"mtu,omitempty"`
	TTL       string `json:"ttl,omitempty"`
}

var _ slog.LogValuer = FabricConfig{}

func (fc FabricConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("ifname", fc.Interface),
		slog.String("mac", fc.MACAddr),
		slog.String("ip", fc.IPAddr),
		slog.String("mtu", fc.MTU),
		slog.String("ttl", fc.TTL),
	)
}

// Validate checks all fields parsed from LLDP and returns a *FieldError for the first invalid one
func (fc *FabricConfig) Validate() error {
	checks := []struct {
		field string
		value string
		valid func(string) bool
	}{
		{FieldMACAddr, fc.MACAddr, ValidMACAddr},
		{FieldIPAddr, fc.IPAddr, ValidIPAddr},
		{FieldMTU, fc.MTU, ValidMTU},
		{FieldTTL, fc.TTL, ValidTTL},
	}

	for _, check := range checks {
		if !check.valid(check.value) {
			return &FieldError{Field: check.field, Value: check.value}
		}
	}

	return nil
}
