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
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	// Logger defaults to a discard handler, never nil
	assert.NotNil(t, cfg.logger)
	assert.Empty(t, cfg.dataDir)
	assert.Empty(t, cfg.discordToken)
	assert.Nil(t, cfg.platform)
	assert.Nil(t, cfg.registry)
	assert.Zero(t, cfg.retirementDelay)
	assert.False(t, cfg.tracing)
}

func TestWithLogger(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := NewConfig(WithLogger(logger))
	assert.Equal(t, logger, cfg.logger)
}

func TestWithDatabasePath(t *testing.T) {
	cfg := NewConfig(WithDatabasePath(".warden"))
	assert.Equal(t, ".warden", cfg.dataDir)
}

func TestWithRetirementDelay(t *testing.T) {
	cfg := NewConfig(WithRetirementDelay(5 * time.Minute))
	assert.Equal(t, 5*time.Minute, cfg.retirementDelay)
}

func TestWithShutdownTimeout(t *testing.T) {
	cfg := NewConfig(WithShutdownTimeout(10 * time.Second))
	assert.Equal(t, 10*time.Second, cfg.shutdownTimeout)
}

func TestWithFallbackChannels(t *testing.T) {
	cfg := NewConfig(WithFallbackChannels("rank-board", "general"))
	assert.Equal(t, []string{"rank-board", "general"}, cfg.fallbackChannels)
}

func TestWithTracing(t *testing.T) {
	cfg := &Config{}

	WithTracing(true)(cfg)
	assert.True(t, cfg.tracing)

	WithTracingStdout(true)(cfg)
	assert.True(t, cfg.tracingStdout)
}

func TestNewRequiresPlatform(t *testing.T) {
	_, err := New(NewConfig())
	require.ErrorContains(
		t,
		err,
		"no platform adapter or discord token configured",
	)
}

func TestNewWithDiscordToken(t *testing.T) {
	e, err := New(NewConfig(WithDiscordToken("test-token")))
	require.NoError(t, err)
	require.NoError(t, e.Stop())
}
