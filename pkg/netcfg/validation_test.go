// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package netcfg

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidNumber(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]+$`)

	for _, in := range []string{
		"0", "1", "9000", "007", "3600", "99999999999999999999999999",
		"", "-1", "+1", " 1", "1 ", "1a", "0x10", "1.5", "forever", "١",
	} {
		t.Run(in, func(t *testing.T) {
			require.Equal(t, digits.MatchString(in), ValidNumber(in))
		})
	}
}

func TestValidOctet(t *testing.T) {
	for _, tt := range []struct {
		name string
		in   string
		pos  int
		base int
		term byte
		next int
		ok   bool
	}{
		{name: "dec-dot", in: "10.1", base: baseDec, term: '.', next: 3, ok: true},
		{name: "dec-from-offset", in: "10.255/24", pos: 3, base: baseDec, term: '/', next: 7, ok: true},
		{name: "dec-out-of-range", in: "256.", base: baseDec, term: '.', ok: false},
		{name: "dec-wrong-term", in: "10/", base: baseDec, term: '.', ok: false},
		{name: "dec-missing-term", in: "10", base: baseDec, term: '.', ok: false},
		{name: "dec-empty-token", in: ".1", base: baseDec, term: '.', ok: false},
		{name: "hex-colon", in: "ff:00", base: baseHex, term: ':', next: 3, ok: true},
		{name: "hex-end", in: "aa:Bc", pos: 3, base: baseHex, term: endOfInput, next: 5, ok: true},
		{name: "hex-end-trailing", in: "bc:", base: baseHex, term: endOfInput, ok: false},
		{name: "hex-not-hex", in: "zz:", base: baseHex, term: ':', ok: false},
		{name: "hex-out-of-range", in: "100:", base: baseHex, term: ':', ok: false},
		{name: "negative", in: "-1.", base: baseDec, term: '.', ok: false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := validOctet(tt.in, tt.pos, tt.base, tt.term)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.next, next)
			} else {
				require.Equal(t, tt.pos, next, "cursor must not move on failure")
			}
		})
	}
}

func TestValidMACAddr(t *testing.T) {
	for _, tt := range []struct {
		in    string
		valid bool
	}{
		{"aa:00:cc:dd:ee:ff", true},
		{"AA:00:CC:DD:EE:FF", true},
		{"02:00:00:00:00:01", true},
		{"", false},
		{"aa:00:cc:dd:ee", false},
		{"aa:00:cc:dd:ee:ff:11", false},
		{"aa:00:cc:dd:ee:ff:", false},
		{"aa00:cc:dd:ee:ff", false},
		{"aa:00:cc:dd:ee:fg", false},
		{"aa-00-cc-dd-ee-ff", false},
		{"aa:00:cc:dd:ee:ff ", false},
		{"aa:00:cc:dd:ee:100", false},
	} {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.valid, ValidMACAddr(tt.in))
		})
	}
}

func TestValidIPAddr(t *testing.T) {
	for _, tt := range []struct {
		in    string
		valid bool
	}{
		{"10.1.2.3/24", true},
		{"0.0.0.0/0", true},
		{"255.255.255.255/32", true},
		{"", false},
		{"10.1.2.3", false},
		{"10.1.2.3/", false},
		{"10.1.2.3/33", false},
		{"10.1.2.256/24", false},
		{"10.1.2/24", false},
		{"10.1.2.3.4/24", false},
		{"10.1.2.3/24 ", false},
		{"10.1.2.3/24x", false},
		{"10.1.-2.3/24", false},
		{"a.b.c.d/24", false},
	} {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.valid, ValidIPAddr(tt.in))
		})
	}
}

func TestValidMTUAndTTL(t *testing.T) {
	require.True(t, ValidMTU("9000"))
	require.False(t, ValidMTU(""))
	require.False(t, ValidMTU("forever"))

	require.True(t, ValidTTL("forever"))
	require.True(t, ValidTTL("3600"))
	require.True(t, ValidTTL("0"))
	require.False(t, ValidTTL("-1"))
	require.False(t, ValidTTL("Forever"))
	require.False(t, ValidTTL(""))
}

func TestValidInterfaceName(t *testing.T) {
	for _, tt := range []struct {
		in string
		ok bool
	}{
		{in: "hsn0", ok: true},
		{in: "enp1s0f1np1", ok: true},
		{in: "eth0.100", ok: true},
		{in: "abcdefghijklmno", ok: true},
		{in: "abcdefghijklmnop"},
		{in: ""},
		{in: "."},
		{in: ".."},
		{in: "../../etc/x"},
		{in: "a/b"},
		{in: "hsn 0"},
		{in: "hsn0:1"},
	} {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.ok, ValidInterfaceName(tt.in))
		})
	}
}
