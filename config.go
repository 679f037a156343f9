// Copyright 2026 Sectworks
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package warden

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sectworks/warden/platform"
	"github.com/sectworks/warden/roles"
)

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	registry         *roles.Registry
	platform         platform.Adapter
	points           platform.PointsSource
	dataDir          string
	discordToken     string
	fallbackChannels []string
	retirementDelay  time.Duration
	shutdownTimeout  time.Duration
	tracing          bool
	tracingStdout    bool
}

func (e *Engine) configValidate() error {
	if e.config.platform == nil && e.config.discordToken == "" {
		return errors.New(
			"no platform adapter or discord token configured",
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the Engine config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new warden config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithRolesRegistry specifies the role classification tables to use. This
// defaults to the embedded reference deployment tables
func WithRolesRegistry(registry *roles.Registry) ConfigOptionFunc {
	return func(c *Config) {
		c.registry = registry
	}
}

// WithPlatform specifies the platform adapter to use. When set, the engine
// never creates its own Discord session, which is the hook tests and
// embedders use to supply a fake platform
func WithPlatform(adapter platform.Adapter) ConfigOptionFunc {
	return func(c *Config) {
		c.platform = adapter
	}
}

// WithPointsSource overrides the source of member point totals. The default
// reads the engine's own member_stats table
func WithPointsSource(points platform.PointsSource) ConfigOptionFunc {
	return func(c *Config) {
		c.points = points
	}
}

// WithDiscordToken specifies the bot token for the built-in Discord adapter.
// Ignored when a platform adapter is injected with WithPlatform
func WithDiscordToken(token string) ConfigOptionFunc {
	return func(c *Config) {
		c.discordToken = token
	}
}

// WithRetirementDelay specifies the debounce window between a member losing
// their last authority role and the retirement notice. The default is 60 seconds
func WithRetirementDelay(delay time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.retirementDelay = delay
	}
}

// WithFallbackChannels specifies the ordered channel names tried when a
// community has no configured destination channel
func WithFallbackChannels(names ...string) ConfigOptionFunc {
	return func(c *Config) {
		c.fallbackChannels = append(c.fallbackChannels, names...)
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
