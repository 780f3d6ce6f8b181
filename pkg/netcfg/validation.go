// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package netcfg

import (
	"strconv"
	"strings"
)

const (
	baseDec = 10
	baseHex = 16

	octetMax    = 255
	ipPrefixMax = 32
	ttlForever  = "forever"
	macOctets   = 6
	ipv4Octets  = 4
	endOfInput  = byte(0)

	// IFNAMSIZ minus the terminating NUL
	ifnameMax = 15
)

var (
	macTerms = [macOctets]byte{':', ':', ':', ':', ':', endOfInput}
	ipTerms  = [ipv4Octets]byte{'.', '.', '.', '/'}
)

// scanDigits returns the position of the first character at or after pos that is not a digit in base.
func scanDigits(s string, pos, base int) int {
	for pos < len(s) && isDigit(s[pos], base) {
		pos++
	}

	return pos
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == baseHex && c >= 'a' && c <= 'f':
		return true
	case base == baseHex && c >= 'A' && c <= 'F':
		return true
	}

	return false
}

// parseUint parses the unsigned token starting at pos and returns its value and the position right after it.
func parseUint(s string, pos, base int) (uint64, int, bool) {
	end := scanDigits(s, pos, base)
	if end == pos {
		return 0, pos, false
	}

	val, err := strconv.ParseUint(s[pos:end], base, 64)
	if err != nil {
		return 0, pos, false
	}

	return val, end, true
}

// ValidNumber accepts any non-empty run of decimal digits, overflow included.
func ValidNumber(s string) bool {
	end := scanDigits(s, 0, baseDec)

	return end > 0 && end == len(s)
}

// validOctet parses a [0,255] token at pos that must be followed by term (endOfInput meaning the string ends
// there) and returns the position after the terminator.
func validOctet(s string, pos, base int, term byte) (int, bool) {
	val, end, ok := parseUint(s, pos, base)
	if !ok || val > octetMax {
		return pos, false
	}

	if term == endOfInput {
		if end != len(s) {
			return pos, false
		}

		return end, true
	}

	if end >= len(s) || s[end] != term {
		return pos, false
	}

	return end + 1, true
}

func ValidMACAddr(s string) bool {
	pos := 0
	for _, term := range macTerms {
		next, ok := validOctet(s, pos, baseHex, term)
		if !ok {
			return false
		}
		pos = next
	}

	return true
}

// ValidIPAddr accepts a dotted quad IPv4 address with a mandatory /prefix, e.g. 10.1.2.3/24.
func ValidIPAddr(s string) bool {
	pos := 0
	for _, term := range ipTerms {
		next, ok := validOctet(s, pos, baseDec, term)
		if !ok {
			return false
		}
		pos = next
	}

	prefix, end, ok := parseUint(s, pos, baseDec)

	return ok && end == len(s) && prefix <= ipPrefixMax
}

func ValidMTU(s string) bool {
	return ValidNumber(s)
}

func ValidTTL(s string) bool {
	if s == ttlForever {
		return true
	}

	return ValidNumber(s)
}

// ValidInterfaceName accepts names the kernel would accept for a link, it's also used as part of the ifcfg file
// name so nothing that could escape the config directory gets through
func ValidInterfaceName(s string) bool {
	if s == "" || len(s) > ifnameMax || s == "." || s == ".." {
		return false
	}

	return !strings.ContainsAny(s, "/: \t\n\x00")
}
