// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package netcfg

import (
	"errors"
	"fmt"
)

var (
	ErrSourceFailed   = errors.New("lldp query failed")
	ErrDeviceInactive = errors.New("device not found or inactive according to lldp")
	ErrNoLLDPData     = errors.New("lldpad not receiving any data from switch")
	ErrMissingOrgTLV  = errors.New("missing fabric configuration org TLV in lldp output")
	ErrMalformedTLV   = errors.New("malformed fabric configuration org TLV")
)

const (
	FieldMACAddr = "MAC addr"
	FieldIPAddr  = "IP addr"
	FieldMTU     = "MTU"
	FieldTTL     = "TTL"
)

// FieldError is returned when a parsed fabric config field doesn't pass validation
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: '%s'", e.Field, e.Value)
}

var hints = []struct {
	err   error
	hints []string
}{
	{ErrDeviceInactive, []string{
		"check local adapter state, the adapter may be down",
		"carrier signal may also be absent",
	}},
	{ErrSourceFailed, []string{
		"check that lldpad is running and lldptool is installed",
	}},
	{ErrNoLLDPData, []string{
		"check local LLDPAD configuration for administrative status",
		"check the switch to see if it is advertising TLVs on other adapters",
	}},
	{ErrMissingOrgTLV, []string{
		"check switch configuration for LLDP, fabric TLV not advertised",
		"fabric configuration is not active or not advertised",
	}},
	{ErrMalformedTLV, []string{
		"fabric TLV is malformed, check switch LLDP configuration",
	}},
}

var fieldHints = map[string][]string{
	FieldMACAddr: {"MAC address is malformed, check LLDP output"},
	FieldIPAddr:  {"fabric TLV is malformed, expected a valid IP address", "check switch LLDP configuration"},
	FieldMTU:     {"fabric TLV is malformed, expected a valid MTU", "check switch LLDP configuration"},
	FieldTTL:     {"fabric TLV is malformed, expected a valid TTL", "check switch LLDP configuration"},
}

// Hints returns operator guidance for the suspected root cause of err, if it's known
func Hints(err error) []string {
	if err == nil {
		return nil
	}

	fieldErr := &FieldError{}
	if errors.As(err, &fieldErr) {
		return fieldHints[fieldErr.Field]
	}

	for _, h := range hints {
		if errors.Is(err, h.err) {
			return h.hints
		}
	}

	return nil
}
