// control/telemetry.go
// Author: momentics <momentics@gmail.com>
//
// Metrics sink wiring. Components emit through the go-metrics global API;
// this file decides where those samples go.

package control

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/armon/go-metrics"
	gmprom "github.com/armon/go-metrics/prometheus"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TelemetryConfig selects metric sinks.
type TelemetryConfig struct {
	Disable bool

	// MetricsPrefix is prepended to every key.
	MetricsPrefix string

	// PrometheusAddr, when set, serves /metrics on this address.
	PrometheusAddr string

	// PrometheusRetentionTime is how long an idle series is kept.
	PrometheusRetentionTime time.Duration
}

// DefaultTelemetryConfig returns an inmem-only setup.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		MetricsPrefix:           "framebench",
		PrometheusRetentionTime: time.Minute,
	}
}

// Telemetry owns the installed sinks.
type Telemetry struct {
	InmemSink *metrics.InmemSink

	registry *prometheus.Registry
	server   *http.Server
	listener net.Listener
	logger   hclog.Logger
}

// InitTelemetry installs the global metrics client. With Disable set it
// returns a nil *Telemetry and leaves the default blackhole sink in place.
func InitTelemetry(cfg TelemetryConfig, logger hclog.Logger) (*Telemetry, error) {
	if cfg.Disable {
		return nil, nil
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if cfg.MetricsPrefix == "" {
		cfg.MetricsPrefix = "framebench"
	}

	memSink := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(memSink)

	t := &Telemetry{InmemSink: memSink, logger: logger}
	sinks := metrics.FanoutSink{memSink}

	if cfg.PrometheusAddr != "" {
		t.registry = prometheus.NewRegistry()
		promSink, err := gmprom.NewPrometheusSinkFrom(gmprom.PrometheusOpts{
			Expiration: cfg.PrometheusRetentionTime,
			Registerer: t.registry,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, promSink)
		if err := t.serve(cfg.PrometheusAddr); err != nil {
			return nil, err
		}
	}

	mCfg := metrics.DefaultConfig(cfg.MetricsPrefix)
	mCfg.EnableHostname = false
	mCfg.EnableRuntimeMetrics = false
	if _, err := metrics.NewGlobal(mCfg, sinks); err != nil {
		t.Shutdown(context.Background())
		return nil, err
	}
	return t, nil
}

func (t *Telemetry) serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))
	t.listener = ln
	t.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := t.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("metrics endpoint stopped", "error", err)
		}
	}()
	t.logger.Info("serving prometheus metrics", "addr", ln.Addr().String())
	return nil
}

// MetricsAddr returns the bound Prometheus address, or "" when disabled.
func (t *Telemetry) MetricsAddr() string {
	if t == nil || t.listener == nil {
		return ""
	}
	return t.listener.Addr().String()
}

// Shutdown stops the metrics endpoint. Safe on a nil receiver.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.server == nil {
		return nil
	}
	return t.server.Shutdown(ctx)
}
