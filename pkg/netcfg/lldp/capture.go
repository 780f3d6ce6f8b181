// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package lldp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
)

// Capture reads LLDP frames from a pcap or pcapng file and renders them the way lldptool prints them, so the
// result goes through the same parser as a live query
type Capture struct {
	Path string
}

var _ netcfg.Source = &Capture{}

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

func (c *Capture) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	slog.Debug("Reading LLDP frames from capture", "path", c.Path)

	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("opening capture %s: %w", c.Path, err)
	}
	defer f.Close()

	out := &bytes.Buffer{}
	if err := RenderCapture(f, out); err != nil {
		return nil, fmt.Errorf("rendering capture %s: %w", c.Path, err)
	}

	return io.NopCloser(out), nil
}

// RenderCapture writes every LLDP frame found in the pcap/pcapng stream r as lldptool text into w
func RenderCapture(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)

	pr, err := newPacketReader(br)
	if err != nil {
		return err
	}
	if pr.LinkType() != layers.LinkTypeEthernet {
		return fmt.Errorf("unsupported link type %s", pr.LinkType()) //nolint:goerr113
	}

	frames := 0
	for {
		data, _, err := pr.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading packet: %w", err)
		}

		packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

		lldpLayer := packet.Layer(layers.LayerTypeLinkLayerDiscovery)
		if lldpLayer == nil {
			continue
		}
		lldp, ok := lldpLayer.(*layers.LinkLayerDiscovery)
		if !ok {
			continue
		}

		var info *layers.LinkLayerDiscoveryInfo
		if infoLayer := packet.Layer(layers.LayerTypeLinkLayerDiscoveryInfo); infoLayer != nil {
			info, _ = infoLayer.(*layers.LinkLayerDiscoveryInfo)
		}

		if err := renderFrame(w, lldp, info); err != nil {
			return err
		}
		frames++
	}

	slog.Debug("Capture processed", "lldpFrames", frames)

	return nil
}

func newPacketReader(br *bufio.Reader) (packetReader, error) {
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading capture magic: %w", err)
	}

	// pcapng always starts with a section header block
	if bytes.Equal(magic, []byte{0x0a, 0x0d, 0x0d, 0x0a}) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("creating pcapng reader: %w", err)
		}

		return ng, nil
	}

	pr, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("creating pcap reader: %w", err)
	}

	return pr, nil
}

func renderFrame(w io.Writer, lldp *layers.LinkLayerDiscovery, info *layers.LinkLayerDiscoveryInfo) error {
	buf := &bytes.Buffer{}

	buf.WriteString("Chassis ID TLV\n")
	if lldp.ChassisID.Subtype == layers.LLDPChassisIDSubTypeMACAddr && len(lldp.ChassisID.ID) == 6 {
		fmt.Fprintf(buf, "%s%s\n", netcfg.MACLinePrefix, net.HardwareAddr(lldp.ChassisID.ID))
	} else {
		fmt.Fprintf(buf, "\t%s\n", string(lldp.ChassisID.ID))
	}

	buf.WriteString("Port ID TLV\n")
	switch {
	case lldp.PortID.Subtype == layers.LLDPPortIDSubtypeMACAddr && len(lldp.PortID.ID) == 6:
		fmt.Fprintf(buf, "%s%s\n", netcfg.MACLinePrefix, net.HardwareAddr(lldp.PortID.ID))
	case lldp.PortID.Subtype == layers.LLDPPortIDSubtypeIfaceName:
		fmt.Fprintf(buf, "\tIfname: %s\n", string(lldp.PortID.ID))
	default:
		fmt.Fprintf(buf, "\t%s\n", string(lldp.PortID.ID))
	}

	fmt.Fprintf(buf, "Time to Live TLV\n\t%d\n", lldp.TTL)

	if info != nil {
		if info.SysName != "" {
			fmt.Fprintf(buf, "System Name TLV\n\t%s\n", info.SysName)
		}
		for _, org := range info.OrgTLVs {
			buf.WriteString("Organizationally Specific TLV\n")
			fmt.Fprintf(buf, "\tOUI: 0x%06x, Subtype: %d, Info: %x\n", uint32(org.OUI), org.SubType, org.Info)
		}
	}

	buf.WriteString("End of LLDPDU TLV\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing rendered frame: %w", err)
	}

	return nil
}
