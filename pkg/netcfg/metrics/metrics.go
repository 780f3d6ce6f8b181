// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.githedgehog.com/fabric-netcfg/pkg/netcfg"
)

const (
	MetricNamespace = "fabric"
	MetricSubsystem = "netcfg"
)

const (
	ReasonNone           = "none"
	ReasonSourceFailed   = "source_failed"
	ReasonDeviceInactive = "device_inactive"
	ReasonNoLLDPData     = "no_lldp_data"
	ReasonMissingOrgTLV  = "missing_org_tlv"
	ReasonMalformedTLV   = "malformed_tlv"
	ReasonInvalidField   = "invalid_field"
	ReasonApplyFailed    = "apply_failed"
)

// Reason classifies the run result for the failure metric label
func Reason(err error) string {
	fieldErr := &netcfg.FieldError{}

	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, netcfg.ErrDeviceInactive):
		return ReasonDeviceInactive
	case errors.Is(err, netcfg.ErrSourceFailed):
		return ReasonSourceFailed
	case errors.Is(err, netcfg.ErrNoLLDPData):
		return ReasonNoLLDPData
	case errors.Is(err, netcfg.ErrMissingOrgTLV):
		return ReasonMissingOrgTLV
	case errors.Is(err, netcfg.ErrMalformedTLV):
		return ReasonMalformedTLV
	case errors.As(err, &fieldErr):
		return ReasonInvalidField
	}

	return ReasonApplyFailed
}

// Run is the outcome of a single fabric-netcfg invocation
type Run struct {
	Interface string
	Mode      string
	Config    *netcfg.FabricConfig
	Err       error
	Finished  time.Time
}

// Registry builds a registry holding the metrics describing the run
func (r Run) Registry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	success := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricNamespace,
		Subsystem: MetricSubsystem,
		Name:      "last_run_success",
		Help:      "Whether the last run configured the interface successfully",
	}, []string{"interface", "mode", "reason"})
	timestamp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricNamespace,
		Subsystem: MetricSubsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last run",
	}, []string{"interface"})
	mtu := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricNamespace,
		Subsystem: MetricSubsystem,
		Name:      "advertised_mtu_bytes",
		Help:      "MTU advertised by the fabric switch",
	}, []string{"interface"})

	for _, c := range []prometheus.Collector{success, timestamp, mtu} {
		if err := reg.Register(c); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	val := 0.0
	if r.Err == nil {
		val = 1
	}
	success.WithLabelValues(r.Interface, r.Mode, Reason(r.Err)).Set(val)
	timestamp.WithLabelValues(r.Interface).Set(float64(r.Finished.Unix()))

	if r.Config != nil {
		if v, err := strconv.ParseFloat(r.Config.MTU, 64); err == nil {
			mtu.WithLabelValues(r.Interface).Set(v)
		}
	}

	return reg, nil
}

// WriteTextfile stores the run metrics in the node exporter textfile collector format
func (r Run) WriteTextfile(path string) error {
	reg, err := r.Registry()
	if err != nil {
		return err
	}

	slog.Debug("Writing metrics", "path", path)

	return prometheus.WriteToTextfile(path, reg) //nolint:wrapcheck
}
