// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"github.com/pkg/errors"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
)

var ifcfgTmpl = `
NAME={{ .Interface }}
STARTMODE=auto
BOOTPROTO=static
LLADDR={{ .MACAddr }}
IPADDR={{ .IPAddr }}
MTU={{ .MTU }}
POST_UP_SCRIPT=wicked:{{ .PostUpScript }}
`

// TODO: wicked has no ifcfg key for the address lifetime, TTL isn't persisted

type ifcfgData struct {
	*netcfg.FabricConfig
	PostUpScript string
}

// IfcfgPath is where wicked expects the config for the interface
func IfcfgPath(dir, ifname string) string {
	return filepath.Join(dir, "ifcfg-"+ifname)
}

func RenderIfcfg(fc *netcfg.FabricConfig, postUpScript string) (string, error) {
	t, err := template.New("ifcfg").Parse(ifcfgTmpl[1:])
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse template")
	}

	buf := bytes.NewBuffer(nil)
	err = t.Execute(buf, ifcfgData{FabricConfig: fc, PostUpScript: postUpScript})
	if err != nil {
		return "", errors.Wrapf(err, "failed to execute template")
	}

	return buf.String(), nil
}

// WriteIfcfg persists fc as an ifcfg file (or prints it on dry run) and reloads the interface unless asked not to
func (a *Applier) WriteIfcfg(ctx context.Context, fc *netcfg.FabricConfig) error {
	dir := a.Options.IfcfgDir
	if dir == "" {
		dir = netcfg.DefaultIfcfgDir
	}
	postUp := a.Options.PostUpScript
	if postUp == "" {
		postUp = netcfg.DefaultPostUpScript
	}
	path := IfcfgPath(dir, fc.Interface)

	content, err := RenderIfcfg(fc, postUp)
	if err != nil {
		return errors.Wrapf(err, "failed to render ifcfg for %s", fc.Interface)
	}

	if a.Options.DryRun {
		slog.Info("Dry run, printing ifcfg instead of writing it", "path", path)

		out := a.Options.Stdout
		if out == nil {
			out = os.Stdout
		}
		if _, err := out.Write([]byte(content)); err != nil {
			return errors.Wrapf(err, "failed to print ifcfg")
		}
	} else {
		slog.Info("Writing ifcfg", "path", path)

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec
			return errors.Wrapf(err, "unable to create ifcfg file %s", path)
		}
	}

	if a.Options.SkipReload {
		slog.Info("Skipping interface reload", "ifname", fc.Interface)

		return nil
	}

	return a.ReloadInterface(ctx, fc.Interface)
}
