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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/sectworks/warden/roles"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "warden.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultRetirementDelay = "60s"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DiscordToken     string   `yaml:"discordToken"     envconfig:"DISCORD_TOKEN"`
	DatabasePath     string   `yaml:"databasePath"                                split_words:"true"`
	BindAddr         string   `yaml:"bindAddr"                                    split_words:"true"`
	LogFilePath      string   `yaml:"logFilePath"                                 split_words:"true"`
	RolesFile        string   `yaml:"rolesFile"                                   split_words:"true"`
	RetirementDelay  string   `yaml:"retirementDelay"                             split_words:"true"`
	ShutdownTimeout  string   `yaml:"shutdownTimeout"                             split_words:"true"`
	FallbackChannels []string `yaml:"fallbackChannels"                            split_words:"true"`
	MetricsPort      uint     `yaml:"metricsPort"                                 split_words:"true"`
	Tracing          bool     `yaml:"tracing"`
	TracingStdout    bool     `yaml:"tracingStdout"                               split_words:"true"`
}

var globalConfig = &Config{
	DiscordToken:    "",
	DatabasePath:    ".warden",
	BindAddr:        "0.0.0.0",
	LogFilePath:     "",
	RolesFile:       "",
	RetirementDelay: DefaultRetirementDelay,
	ShutdownTimeout: DefaultShutdownTimeout,
	MetricsPort:     12798,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.warden/warden.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".warden", "warden.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/warden/warden.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/warden/warden.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("warden", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	_, err = LoadRolesConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading roles: %+w", err)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}

var globalRegistry = roles.DefaultRegistry()

// LoadRolesConfig loads the role registry named by the config, falling back
// to the embedded default tables when no roles file is configured.
func LoadRolesConfig() (*roles.Registry, error) {
	if globalConfig.RolesFile == "" {
		return globalRegistry, nil
	}
	registry, err := roles.LoadFile(globalConfig.RolesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles file: %+w", err)
	}
	// update globalRegistry
	globalRegistry = registry
	return globalRegistry, nil
}

func GetRolesRegistry() *roles.Registry {
	return globalRegistry
}
