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

// Package warden implements the member rank lifecycle engine: promotion and
// retirement notices, departure and reincarnation tracking, and holder-limit
// enforcement for authority roles. The Engine wires the event bus, store,
// and managers together; the surrounding service feeds it platform events
// through an adapter.
package warden

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sectworks/warden/afterlife"
	"github.com/sectworks/warden/capacity"
	"github.com/sectworks/warden/database"
	"github.com/sectworks/warden/event"
	"github.com/sectworks/warden/lifecycle"
	"github.com/sectworks/warden/notify"
	"github.com/sectworks/warden/platform"
	"github.com/sectworks/warden/platform/discord"
	"github.com/sectworks/warden/roles"
)

type Engine struct {
	eventBus      *event.EventBus
	db            *database.Database
	registry      *roles.Registry
	dispatcher    *notify.Dispatcher
	lifecycle     *lifecycle.Manager
	capacity      *capacity.Enforcer
	afterlife     *afterlife.Tracker
	platform      platform.Adapter
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Engine, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	e := &Engine{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := e.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return e, nil
}

// Run starts the engine and blocks until the context is cancelled or Stop
// is called. Call Stop afterwards to release resources.
func (e *Engine) Run(ctx context.Context) error {
	// Configure tracing
	if e.config.tracing {
		if err := e.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(
		e.config.dataDir,
		e.config.logger,
		e.config.promRegistry,
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	e.db = db
	// Load role registry
	e.registry = e.config.registry
	if e.registry == nil {
		e.registry = roles.DefaultRegistry()
	}
	// Initialize platform adapter
	e.platform = e.config.platform
	if e.platform == nil {
		adapter, err := discord.New(discord.Config{
			Logger:       e.config.logger,
			EventBus:     e.eventBus,
			Token:        e.config.discordToken,
			PromRegistry: e.config.promRegistry,
		})
		if err != nil {
			return fmt.Errorf("failed to create discord adapter: %w", err)
		}
		e.platform = adapter
	}
	// Resolve points source
	points := e.config.points
	if points == nil {
		points = storePoints{db: e.db}
	}
	// Initialize notification dispatcher
	e.dispatcher = notify.NewDispatcher(notify.DispatcherConfig{
		Logger:           e.config.logger,
		Messenger:        e.platform,
		PromRegistry:     e.config.promRegistry,
		FallbackChannels: e.config.fallbackChannels,
	})
	// Initialize rank lifecycle manager
	e.lifecycle, err = lifecycle.New(lifecycle.ManagerConfig{
		Logger:          e.config.logger,
		EventBus:        e.eventBus,
		Database:        e.db,
		Dispatcher:      e.dispatcher,
		Registry:        e.registry,
		Points:          points,
		PromRegistry:    e.config.promRegistry,
		RetirementDelay: e.config.retirementDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to create lifecycle manager: %w", err)
	}
	// Initialize capacity enforcer
	e.capacity, err = capacity.New(capacity.EnforcerConfig{
		Logger:       e.config.logger,
		EventBus:     e.eventBus,
		Database:     e.db,
		Dispatcher:   e.dispatcher,
		Registry:     e.registry,
		Directory:    e.platform,
		Audit:        e.platform,
		PromRegistry: e.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to create capacity enforcer: %w", err)
	}
	// Initialize departure tracker
	e.afterlife, err = afterlife.New(afterlife.TrackerConfig{
		Logger:       e.config.logger,
		EventBus:     e.eventBus,
		Database:     e.db,
		Dispatcher:   e.dispatcher,
		Registry:     e.registry,
		Points:       points,
		PromRegistry: e.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to create afterlife tracker: %w", err)
	}
	// Connect to the platform
	if err := e.platform.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect platform adapter: %w", err)
	}
	e.config.logger.Info(
		"engine started",
		"component", "engine",
	)

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case <-e.done:
	}
	return nil
}

func (e *Engine) Stop() error {
	var err error
	e.shutdownOnce.Do(func() {
		err = e.shutdown()
	})
	return err
}

func (e *Engine) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if e.config.shutdownTimeout > 0 {
		shutdownTimeout = e.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	e.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new platform events
	e.config.logger.Debug("shutdown phase 1: disconnecting platform")

	if e.platform != nil {
		if closeErr := e.platform.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("platform adapter close: %w", closeErr),
			)
		}
	}

	// Phase 2: Cancel pending work and drain handlers
	e.config.logger.Debug("shutdown phase 2: draining handlers")

	if e.lifecycle != nil {
		e.lifecycle.Stop()
	}

	if e.eventBus != nil {
		e.eventBus.Stop()
	}

	// Phase 3: Cleanup resources
	e.config.logger.Debug("shutdown phase 3: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range e.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	e.shutdownFuncs = nil

	// Phase 4: Close the store
	e.config.logger.Debug("shutdown phase 4: closing store")

	if e.db != nil {
		if closeErr := e.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	e.config.logger.Debug("graceful shutdown complete")
	close(e.done)
	return err
}

// storePoints is the default points source, reading totals the surrounding
// bot accumulates in the engine's own store.
type storePoints struct {
	db *database.Database
}

func (p storePoints) CurrentPoints(
	_ context.Context,
	communityId uint64,
	memberId uint64,
) (int64, error) {
	return p.db.MemberPoints(communityId, memberId)
}
