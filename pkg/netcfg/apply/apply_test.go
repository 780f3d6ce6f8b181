// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg/cmdrun"
)

type recordingRunner struct {
	ran    []string
	failOn string
}

func (r *recordingRunner) Run(_ context.Context, cmd cmdrun.Command) error {
	r.ran = append(r.ran, cmd.String())
	if cmd.String() == r.failOn {
		return errors.New("exit status 2") //nolint:goerr113
	}

	return nil
}

func testConfig() *netcfg.FabricConfig {
	return &netcfg.FabricConfig{
		Interface: "hsn0",
		MACAddr:   "02:00:00:00:00:2a",
		IPAddr:    "10.1.2.3/24",
		MTU:       "9000",
		TTL:       "3600",
	}
}

func TestIPCommands(t *testing.T) {
	for _, tt := range []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "default",
			want: []string{
				"ip link set dev hsn0 down",
				"ip link set dev hsn0 addr 02:00:00:00:00:2a",
				"ip link set dev hsn0 up",
				"ip addr add 10.1.2.3/24 dev hsn0 valid_lft 3600 preferred_lft 9000",
				"ip link set dev hsn0 mtu 9000",
			},
		},
		{
			name: "remove-ip-addrs",
			opts: Options{RemoveIPAddrs: true},
			want: []string{
				"ip addr flush dev hsn0",
				"ip link set dev hsn0 down",
				"ip link set dev hsn0 addr 02:00:00:00:00:2a",
				"ip link set dev hsn0 up",
				"ip addr add 10.1.2.3/24 dev hsn0 valid_lft 3600 preferred_lft 9000",
				"ip link set dev hsn0 mtu 9000",
			},
		},
		{
			name: "skip-reload",
			opts: Options{SkipReload: true, RemoveIPAddrs: true, IPPath: "/sbin/ip"},
			want: []string{
				"/sbin/ip addr flush dev hsn0",
				"/sbin/ip link set dev hsn0 addr 02:00:00:00:00:2a",
				"/sbin/ip addr add 10.1.2.3/24 dev hsn0 valid_lft 3600 preferred_lft 9000",
				"/sbin/ip link set dev hsn0 mtu 9000",
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			a := &Applier{Options: tt.opts}

			got := []string{}
			for _, cmd := range a.IPCommands(testConfig()) {
				got = append(got, cmd.String())
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestApplyIPCommandsStopsOnFailure(t *testing.T) {
	r := &recordingRunner{failOn: "ip link set dev hsn0 addr 02:00:00:00:00:2a"}
	a := New(r, netcfg.DefaultSettings(), Options{})

	err := a.Apply(context.Background(), testConfig())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to configure interface hsn0")
	require.Equal(t, []string{
		"ip link set dev hsn0 down",
		"ip link set dev hsn0 addr 02:00:00:00:00:2a",
	}, r.ran)
}

func TestApplyRejectsInvalidConfig(t *testing.T) {
	r := &recordingRunner{}
	a := New(r, netcfg.DefaultSettings(), Options{})

	fc := testConfig()
	fc.TTL = "-1"
	err := a.Apply(context.Background(), fc)
	fieldErr := &netcfg.FieldError{}
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, netcfg.FieldTTL, fieldErr.Field)
	require.Empty(t, r.ran)

	require.Error(t, a.Apply(context.Background(), nil))
}

func TestRenderIfcfg(t *testing.T) {
	content, err := RenderIfcfg(testConfig(), netcfg.DefaultPostUpScript)
	require.NoError(t, err)
	require.Equal(t, `NAME=hsn0
STARTMODE=auto
BOOTPROTO=static
LLADDR=02:00:00:00:00:2a
IPADDR=10.1.2.3/24
MTU=9000
POST_UP_SCRIPT=wicked:/etc/sysconfig/network/if-up.d
`, content)
}

func TestWriteIfcfgDryRun(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}
	r := &recordingRunner{ran: []string{}}

	a := New(r, netcfg.DefaultSettings(), Options{
		CreateIfcfg: true,
		DryRun:      true,
		IfcfgDir:    dir,
		Stdout:      out,
	})
	require.NoError(t, a.Apply(context.Background(), testConfig()))

	expected, err := RenderIfcfg(testConfig(), netcfg.DefaultPostUpScript)
	require.NoError(t, err)
	require.Equal(t, expected, out.String())
	require.Equal(t, []string{"wicked ifdown hsn0", "wicked ifup hsn0"}, r.ran)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "dry run must not touch the filesystem")
}

func TestWriteIfcfg(t *testing.T) {
	for _, tt := range []struct {
		name       string
		skipReload bool
		failOn     string
		ran        []string
		err        bool
	}{
		{
			name: "reload",
			ran:  []string{"wicked ifdown hsn0", "wicked ifup hsn0"},
		},
		{
			name:       "skip-reload",
			skipReload: true,
			ran:        []string{},
		},
		{
			name:   "ifdown-fails",
			failOn: "wicked ifdown hsn0",
			ran:    []string{"wicked ifdown hsn0"},
			err:    true,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			r := &recordingRunner{ran: []string{}, failOn: tt.failOn}
			a := New(r, netcfg.DefaultSettings(), Options{
				CreateIfcfg: true,
				SkipReload:  tt.skipReload,
				IfcfgDir:    dir,
			})

			err := a.Apply(context.Background(), testConfig())
			if tt.err {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.ran, r.ran)

			data, err := os.ReadFile(filepath.Join(dir, "ifcfg-hsn0"))
			require.NoError(t, err)
			require.Contains(t, string(data), "LLADDR=02:00:00:00:00:2a\n")
		})
	}
}

func TestWriteIfcfgMissingDir(t *testing.T) {
	r := &recordingRunner{}
	a := New(r, netcfg.DefaultSettings(), Options{
		CreateIfcfg: true,
		IfcfgDir:    filepath.Join(t.TempDir(), "missing"),
	})

	require.Error(t, a.Apply(context.Background(), testConfig()))
	require.Empty(t, r.ran)
}

func TestLifetimesConflict(t *testing.T) {
	for _, tt := range []struct {
		name     string
		ttl      string
		mtu      string
		conflict bool
	}{
		{name: "mtu-above-ttl", ttl: "3600", mtu: "9000", conflict: true},
		{name: "ttl-above-mtu", ttl: "86400", mtu: "9000"},
		{name: "equal", ttl: "9000", mtu: "9000"},
		{name: "forever", ttl: "forever", mtu: "9000"},
		{name: "unparsable", ttl: "99999999999999999999", mtu: "9000"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			fc := testConfig()
			fc.TTL = tt.ttl
			fc.MTU = tt.mtu
			require.Equal(t, tt.conflict, LifetimesConflict(fc))
		})
	}
}
