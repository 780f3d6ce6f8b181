// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package netcfg

import (
	"fmt"
	"os"

	kyaml "sigs.k8s.io/yaml"
)

const (
	DefaultLLDPToolPath = "lldptool"
	DefaultIPPath       = "ip"
	DefaultWickedPath   = "wicked"
	DefaultIfcfgDir     = "/etc/sysconfig/network"
	DefaultPostUpScript = "/etc/sysconfig/network/if-up.d"
)

// Settings are the host specific paths used to query LLDP and apply the config
type Settings struct {
	LLDPToolPath string `json:"lldptoolPath,omitempty"`
	IPPath       string `json:"ipPath,omitempty"`
	WickedPath   string `json:"wickedPath,omitempty"`
	IfcfgDir     string `json:"ifcfgDir,omitempty"`
	PostUpScript string `json:"postUpScript,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		LLDPToolPath: DefaultLLDPToolPath,
		IPPath:       DefaultIPPath,
		WickedPath:   DefaultWickedPath,
		IfcfgDir:     DefaultIfcfgDir,
		PostUpScript: DefaultPostUpScript,
	}
}

// LoadSettings returns defaults overridden by the YAML file at path, if path isn't empty
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	if err := kyaml.UnmarshalStrict(data, &settings); err != nil {
		return settings, fmt.Errorf("unmarshalling settings file %s: %w", path, err)
	}

	return settings, nil
}
