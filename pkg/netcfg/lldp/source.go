// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package lldp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
	"go.githedgehog.com/fabric-netcfg/pkg/util/logutil"
)

var captureExts = []string{".pcap", ".pcapng", ".cap"}

// ForInput picks the source to read LLDP data from: a live lldptool query if inputFile is empty, a packet
// capture for pcap/pcapng files and saved lldptool output otherwise
func ForInput(lldptoolPath, inputFile string) netcfg.Source {
	if inputFile == "" {
		return &LLDPTool{Path: lldptoolPath}
	}

	ext := strings.ToLower(filepath.Ext(inputFile))
	for _, captureExt := range captureExts {
		if ext == captureExt {
			return &Capture{Path: inputFile}
		}
	}

	return &File{Path: inputFile}
}

// LLDPTool queries lldpad for the neighbor TLVs of the interface
type LLDPTool struct {
	Path string
}

var _ netcfg.Source = &LLDPTool{}

func (t *LLDPTool) Open(ctx context.Context, ifname string) (io.ReadCloser, error) {
	path := t.Path
	if path == "" {
		path = netcfg.DefaultLLDPToolPath
	}

	cmd := exec.CommandContext(ctx, path, "get-tlv", "-i", ifname, "-n")
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating lldptool stdout pipe: %w", err)
	}

	slog.Debug("Running", "cmd", cmd.String())

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting lldptool: %w", err)
	}

	return &cmdReader{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type cmdReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
}

func (r *cmdReader) Read(p []byte) (int, error) {
	return r.stdout.Read(p) //nolint:wrapcheck
}

// Close drains the remaining output so the process can't block on a full pipe and reports its exit status
func (r *cmdReader) Close() error {
	if _, err := io.Copy(io.Discard, r.stdout); err != nil {
		slog.Debug("Draining lldptool output", "err", err.Error())
	}

	err := r.cmd.Wait()

	sink := logutil.NewSink(slog.Debug, "lldptool: ")
	_, _ = sink.Write(r.stderr.Bytes())
	_ = sink.Close()

	if err != nil {
		return fmt.Errorf("lldptool exited with error status: %w", err)
	}

	return nil
}

// File is a saved lldptool output
type File struct {
	Path string
}

var _ netcfg.Source = &File{}

func (f *File) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	slog.Debug("Reading LLDP data from file", "path", f.Path)

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening input file %s: %w", f.Path, err)
	}

	return file, nil
}
