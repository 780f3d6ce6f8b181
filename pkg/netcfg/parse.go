// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package netcfg

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Source produces lldptool style text describing the LLDP neighbor of a given interface. Close reports an
// error if the underlying query failed.
type Source interface {
	Open(ctx context.Context, ifname string) (io.ReadCloser, error)
}

const (
	orgKeyIPAddr = "ip_addr"
	orgKeyMTU    = "mtu"
	orgKeyTTL    = "ttl"
)

// Parse reads LLDP data for ifname from src and returns a validated fabric config
func Parse(ctx context.Context, src Source, ifname string) (*FabricConfig, error) {
	fc := &FabricConfig{Interface: ifname}

	slog.Debug("Parsing LLDP TLVs", "ifname", ifname)

	payload, err := readTLVs(ctx, src, fc)
	if err != nil {
		return nil, err
	}

	if err := decodeOrgPayload(payload, fc); err != nil {
		return nil, err
	}

	slog.Info("Parsed fabric config", "config", fc)

	if err := fc.Validate(); err != nil {
		return nil, fmt.Errorf("validating fabric config: %w", err)
	}

	return fc, nil
}

// readTLVs populates the MAC address and returns the decoded org TLV payload. The first matching line wins for
// both, duplicates later in the output are ignored.
func readTLVs(ctx context.Context, src Source, fc *FabricConfig) (string, error) {
	r, err := src.Open(ctx, fc.Interface)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceFailed, err)
	}

	closed := false
	defer func() {
		if closed {
			return
		}
		if err := r.Close(); err != nil {
			slog.Debug("Closing LLDP source after abort", "err", err.Error())
		}
	}()

	payload := ""
	foundOrg := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		slog.Debug("LLDP", "line", line)

		if fc.MACAddr == "" && strings.HasPrefix(line, MACLinePrefix) {
			fc.MACAddr = ParseMACAddr(line)
		}

		if !foundOrg && strings.HasPrefix(line, OrgTLVHeader) {
			payload, err = ParseOrgTLV(line)
			if err != nil {
				return "", err
			}
			foundOrg = true
		}

		if strings.HasPrefix(line, DeviceInactive) {
			return "", ErrDeviceInactive
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: reading: %w", ErrSourceFailed, err)
	}

	closed = true
	if err := r.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceFailed, err)
	}

	if fc.MACAddr == "" {
		return "", ErrNoLLDPData
	}
	if !foundOrg {
		return "", ErrMissingOrgTLV
	}

	return payload, nil
}

// decodeOrgPayload fills IP, MTU and TTL from the JSON payload, missing or mistyped keys are left empty and
// caught by validation
func decodeOrgPayload(payload string, fc *FabricConfig) error {
	slog.Debug("Org TLV json", "payload", payload)

	fields := map[string]any{}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("%w: decoding json: %w", ErrMalformedTLV, err)
	}

	if ip, ok := fields[orgKeyIPAddr].(string); ok {
		fc.IPAddr = ip
	}
	fc.MTU = numberOrString(fields[orgKeyMTU])
	fc.TTL = numberOrString(fields[orgKeyTTL])

	return nil
}

func numberOrString(v any) string {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := v.Float64(); err == nil {
			return strconv.FormatInt(int64(f), 10)
		}
	case string:
		return v
	}

	return ""
}
