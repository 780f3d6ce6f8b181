// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
)

func TestReason(t *testing.T) {
	for _, tt := range []struct {
		err  error
		want string
	}{
		{nil, ReasonNone},
		{fmt.Errorf("%w: exit status 1", netcfg.ErrSourceFailed), ReasonSourceFailed},
		{netcfg.ErrDeviceInactive, ReasonDeviceInactive},
		{netcfg.ErrNoLLDPData, ReasonNoLLDPData},
		{netcfg.ErrMissingOrgTLV, ReasonMissingOrgTLV},
		{fmt.Errorf("%w: odd payload length 3", netcfg.ErrMalformedTLV), ReasonMalformedTLV},
		{fmt.Errorf("validating: %w", &netcfg.FieldError{Field: netcfg.FieldMTU, Value: "x"}), ReasonInvalidField},
		{errors.New("ip exited with error status"), ReasonApplyFailed}, //nolint:goerr113
	} {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, Reason(tt.err))
		})
	}
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fabric-netcfg.prom")

	err := Run{
		Interface: "hsn0",
		Mode:      "ip",
		Config:    &netcfg.FabricConfig{Interface: "hsn0", MTU: "9000"},
		Finished:  time.Unix(1700000000, 0),
	}.WriteTextfile(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `fabric_netcfg_last_run_success{interface="hsn0",mode="ip",reason="none"} 1`)
	require.Contains(t, string(data), `fabric_netcfg_advertised_mtu_bytes{interface="hsn0"} 9000`)
	require.Contains(t, string(data), `fabric_netcfg_last_run_timestamp_seconds{interface="hsn0"} 1.7e+09`)
}
