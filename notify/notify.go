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

// Package notify delivers lifecycle notices to the best available channel.
// Delivery is fire-and-forget: failures are logged and counted, never
// propagated back into the event handlers that requested the notice.
package notify

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sectworks/warden/platform"
)

// DefaultFallbackChannels is the conventional channel-name cascade used when
// a community has no configured destination for a notice kind.
var DefaultFallbackChannels = []string{
	"general",
	"announcements",
	"leaderboard",
	"bot-commands",
}

type DispatcherConfig struct {
	Logger           *slog.Logger
	Messenger        platform.Messenger
	PromRegistry     prometheus.Registerer
	FallbackChannels []string
}

// Dispatcher resolves a destination channel for each notice and posts it
// exactly once. Channel resolution cascades; the post itself is never
// retried.
type Dispatcher struct {
	logger           *slog.Logger
	messenger        platform.Messenger
	fallbackChannels []string
	metrics          *dispatcherMetrics
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		logger:           cfg.Logger,
		messenger:        cfg.Messenger,
		fallbackChannels: cfg.FallbackChannels,
	}
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if len(d.fallbackChannels) == 0 {
		d.fallbackChannels = DefaultFallbackChannels
	}
	d.initMetrics(cfg.PromRegistry)
	return d
}

// Deliver posts a notice to the community. The destination is the configured
// primary channel when it resolves and is postable, otherwise the first
// postable channel matching the fallback name cascade, otherwise the first
// postable channel at all. When nothing is postable the notice is dropped
// with a warning.
func (d *Dispatcher) Deliver(
	ctx context.Context,
	communityId uint64,
	primaryChannelId uint64,
	msg platform.Message,
) {
	channelId, ok := d.resolveTarget(ctx, communityId, primaryChannelId)
	if !ok {
		d.logger.Warn(
			"no postable channel for notice",
			"component", "notify",
			"community", communityId,
			"title", msg.Title,
		)
		d.metrics.undeliverable.Inc()
		return
	}
	if err := d.messenger.PostMessage(ctx, channelId, msg); err != nil {
		d.logger.Warn(
			"failed to post notice",
			"component", "notify",
			"community", communityId,
			"channel", channelId,
			"error", err,
		)
		d.metrics.undeliverable.Inc()
		return
	}
	d.metrics.delivered.Inc()
}

// DirectMessage sends a notice straight to a member. Best effort: members
// routinely block DMs, so failures are logged at debug and swallowed.
func (d *Dispatcher) DirectMessage(
	ctx context.Context,
	memberId uint64,
	msg platform.Message,
) {
	if err := d.messenger.SendDirectMessage(ctx, memberId, msg); err != nil {
		d.logger.Debug(
			"failed to send direct message",
			"component", "notify",
			"member", memberId,
			"error", err,
		)
		return
	}
	d.metrics.directMessages.Inc()
}

func (d *Dispatcher) resolveTarget(
	ctx context.Context,
	communityId uint64,
	primaryChannelId uint64,
) (uint64, bool) {
	if primaryChannelId != 0 {
		channel, err := d.messenger.ResolveChannel(
			ctx,
			communityId,
			primaryChannelId,
		)
		if err != nil {
			d.logger.Debug(
				"failed to resolve configured channel",
				"component", "notify",
				"community", communityId,
				"channel", primaryChannelId,
				"error", err,
			)
		}
		if channel != nil && channel.Postable {
			return channel.ID, true
		}
	}
	channels, err := d.messenger.Channels(ctx, communityId)
	if err != nil {
		d.logger.Warn(
			"failed to list community channels",
			"component", "notify",
			"community", communityId,
			"error", err,
		)
		return 0, false
	}
	for _, name := range d.fallbackChannels {
		for _, channel := range channels {
			if channel.Name == name && channel.Postable {
				d.metrics.fallbacks.Inc()
				return channel.ID, true
			}
		}
	}
	for _, channel := range channels {
		if channel.Postable {
			d.metrics.fallbacks.Inc()
			return channel.ID, true
		}
	}
	return 0, false
}
