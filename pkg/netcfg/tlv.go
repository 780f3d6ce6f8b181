// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package netcfg

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MACLinePrefix is how lldptool prints the MAC from both the Chassis ID and the Port ID TLVs
	MACLinePrefix = "\tMAC: "

	// OrgTLVHeader identifies the fabric configuration TLV: Cray OUI, subtype 1. Subtype gets bumped if the
	// payload format ever changes.
	OrgTLVHeader = "\tOUI: 0x000eab, Subtype: 1, Info: "

	// DeviceInactive is printed by lldptool instead of any TLVs if the adapter isn't usable
	DeviceInactive = "Device not found or inactive"
)

// ParseMACAddr extracts the address from a line already matched by MACLinePrefix and masks the second octet
// to 00 so both directions of the same link produce the same address.
func ParseMACAddr(line string) string {
	mac := []byte(strings.TrimPrefix(line, MACLinePrefix))
	if len(mac) >= 5 {
		mac[3] = '0'
		mac[4] = '0'
	}

	return string(mac)
}

// ParseOrgTLV decodes the hex encoded payload following OrgTLVHeader.
func ParseOrgTLV(line string) (string, error) {
	payload, ok := strings.CutPrefix(line, OrgTLVHeader)
	if !ok {
		return "", fmt.Errorf("%w: missing header", ErrMalformedTLV)
	}
	if len(payload)%2 != 0 {
		return "", fmt.Errorf("%w: odd payload length %d", ErrMalformedTLV, len(payload))
	}

	out := make([]byte, 0, len(payload)/2)
	for i := 0; i < len(payload); i += 2 {
		b, err := hexToByte(payload[i : i+2])
		if err != nil {
			return "", fmt.Errorf("%w: offset %d: %w", ErrMalformedTLV, i, err)
		}
		out = append(out, b)
	}

	return string(out), nil
}

func hexToByte(pair string) (byte, error) {
	if len(pair) != 2 || !isDigit(pair[0], baseHex) || !isDigit(pair[1], baseHex) {
		return 0, fmt.Errorf("invalid hex pair %q", pair) //nolint:goerr113
	}

	v, err := strconv.ParseUint(pair, baseHex, 8)
	if err != nil {
		return 0, fmt.Errorf("parsing hex pair %q: %w", pair, err)
	}

	return byte(v), nil
}
