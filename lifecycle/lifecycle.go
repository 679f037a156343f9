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

// Package lifecycle reacts to rank role changes: it announces promotions and
// debounces retirement notices so that a quick role swap never reads as a
// member leaving their post.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sectworks/warden/database"
	"github.com/sectworks/warden/database/models"
	"github.com/sectworks/warden/event"
	"github.com/sectworks/warden/notify"
	"github.com/sectworks/warden/platform"
	"github.com/sectworks/warden/roles"
)

// DefaultRetirementDelay is how long a member must remain without any
// authority role before the retirement notice fires.
const DefaultRetirementDelay = 60 * time.Second

type ManagerConfig struct {
	Logger          *slog.Logger
	EventBus        *event.EventBus
	Database        *database.Database
	Dispatcher      *notify.Dispatcher
	Registry        *roles.Registry
	Points          platform.PointsSource
	Scheduler       *Scheduler
	PromRegistry    prometheus.Registerer
	RetirementDelay time.Duration
}

// Manager subscribes to member role changes and drives promotion and
// retirement notices.
type Manager struct {
	logger          *slog.Logger
	eventBus        *event.EventBus
	db              *database.Database
	dispatcher      *notify.Dispatcher
	registry        *roles.Registry
	points          platform.PointsSource
	scheduler       *Scheduler
	retirementDelay time.Duration
	metrics         *managerMetrics
}

func New(cfg ManagerConfig) (*Manager, error) {
	if cfg.EventBus == nil {
		return nil, fmt.Errorf("lifecycle manager requires an event bus")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("lifecycle manager requires a database")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("lifecycle manager requires a dispatcher")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("lifecycle manager requires a role registry")
	}
	if cfg.Points == nil {
		return nil, fmt.Errorf("lifecycle manager requires a points source")
	}
	m := &Manager{
		logger:          cfg.Logger,
		eventBus:        cfg.EventBus,
		db:              cfg.Database,
		dispatcher:      cfg.Dispatcher,
		registry:        cfg.Registry,
		points:          cfg.Points,
		scheduler:       cfg.Scheduler,
		retirementDelay: cfg.RetirementDelay,
	}
	if m.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		m.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if m.scheduler == nil {
		m.scheduler = NewScheduler(m.logger)
	}
	if m.retirementDelay <= 0 {
		m.retirementDelay = DefaultRetirementDelay
	}
	m.initMetrics(cfg.PromRegistry)
	// Setup event handlers
	m.eventBus.SubscribeFunc(
		platform.MemberRolesChangedEventType,
		m.handleRolesChanged,
	)
	return m, nil
}

// Stop cancels all pending retirement notices.
func (m *Manager) Stop() {
	m.scheduler.Stop()
}

// Scheduler exposes the retirement registry, mainly for inspection in tests.
func (m *Manager) Scheduler() *Scheduler {
	return m.scheduler
}

func (m *Manager) handleRolesChanged(evt event.Event) {
	payload, ok := evt.Data.(platform.MemberRolesChangedEvent)
	if !ok {
		m.logger.Error(
			"unexpected event payload",
			"component", "lifecycle",
			"type", evt.Type,
		)
		return
	}
	added, removed := roles.Diff(payload.Before, payload.Member.Roles)
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	ctx := context.Background()
	if len(added) > 0 {
		m.cancelRetirement(payload.Member, added)
		m.detectPromotion(ctx, payload.Member, added)
	}
	if len(removed) > 0 {
		m.scheduleRetirement(payload.Member, removed)
	}
}

// cancelRetirement clears a pending retirement when the member gains any
// ranked role: a fresh rank means the earlier removal was a swap, not an
// exit.
func (m *Manager) cancelRetirement(
	member platform.MemberSnapshot,
	added []platform.Role,
) {
	key := Key{CommunityID: member.CommunityID, MemberID: member.MemberID}
	for _, role := range added {
		if !m.registry.IsRanked(role.ID) {
			continue
		}
		if m.scheduler.Cancel(key) {
			m.metrics.retirementsCancelled.Inc()
			m.logger.Info(
				"cancelled pending retirement",
				"component", "lifecycle",
				"community", member.CommunityID,
				"member", member.MemberID,
				"role", role.Name,
			)
		}
		return
	}
}

// scheduleRetirement starts the debounce window when the member has just
// lost their last authority role. The most recently removed authority role
// names the rank in the eventual notice.
func (m *Manager) scheduleRetirement(
	member platform.MemberSnapshot,
	removed []platform.Role,
) {
	var lastRemoved platform.Role
	found := false
	for _, role := range removed {
		if m.registry.IsAuthority(role.ID) {
			lastRemoved = role
			found = true
		}
	}
	if !found {
		return
	}
	if m.registry.HasAuthorityRole(member.Roles) {
		m.logger.Debug(
			"member retains authority roles, no retirement",
			"component", "lifecycle",
			"community", member.CommunityID,
			"member", member.MemberID,
		)
		return
	}
	key := Key{CommunityID: member.CommunityID, MemberID: member.MemberID}
	trigger := Trigger{
		RoleID:   lastRemoved.ID,
		RankName: m.registry.RankName(lastRemoved.ID),
	}
	m.scheduler.Schedule(
		key,
		m.retirementDelay,
		trigger,
		func(fired Trigger) {
			m.announceRetirement(member, fired)
		},
	)
	m.metrics.retirementsScheduled.Inc()
	m.logger.Info(
		"scheduled retirement check",
		"component", "lifecycle",
		"community", member.CommunityID,
		"member", member.MemberID,
		"rank", trigger.RankName,
		"delay", m.retirementDelay,
	)
}

func (m *Manager) announceRetirement(
	member platform.MemberSnapshot,
	trigger Trigger,
) {
	ctx := context.Background()
	var primary uint64
	if config := m.channelConfig(member.CommunityID); config != nil {
		primary = config.RetirementChannel
	}
	body := fmt.Sprintf("%s has retired.", member.Name())
	if trigger.RankName != "" {
		body += fmt.Sprintf("\n\nPrevious Rank: %s", trigger.RankName)
	}
	m.dispatcher.Deliver(ctx, member.CommunityID, primary, platform.Message{
		Title:     "Retirement",
		Body:      body,
		MentionID: member.MemberID,
	})
	m.metrics.retirementsFired.Inc()
	m.logger.Info(
		"retirement announced",
		"component", "lifecycle",
		"community", member.CommunityID,
		"member", member.MemberID,
		"rank", trigger.RankName,
	)
}

// detectPromotion announces at most one promotion per event, scanning the
// added roles in report order. Authority roles always qualify; tier roles
// qualify on points, or unconditionally for members who also hold an
// authority role.
func (m *Manager) detectPromotion(
	ctx context.Context,
	member platform.MemberSnapshot,
	added []platform.Role,
) {
	for _, role := range added {
		if authority, ok := m.registry.Authority(role.ID); ok {
			m.announcePromotion(ctx, member, role, authority.Name, 0, true)
			return
		}
		tier, ok := m.registry.Tier(role.ID)
		if !ok {
			continue
		}
		points, err := m.points.CurrentPoints(
			ctx,
			member.CommunityID,
			member.MemberID,
		)
		if err != nil {
			// No false promotions on a failed gate check
			m.logger.Warn(
				"failed to fetch member points for promotion gate",
				"component", "lifecycle",
				"community", member.CommunityID,
				"member", member.MemberID,
				"error", err,
			)
			continue
		}
		if points < tier.MinPoints &&
			!m.registry.HasAuthorityRole(member.Roles) {
			m.logger.Warn(
				"tier role granted below its point threshold",
				"component", "lifecycle",
				"community", member.CommunityID,
				"member", member.MemberID,
				"rank", tier.Name,
				"points", points,
				"required", tier.MinPoints,
			)
			continue
		}
		m.announcePromotion(ctx, member, role, tier.Name, points, false)
		return
	}
}

func (m *Manager) announcePromotion(
	ctx context.Context,
	member platform.MemberSnapshot,
	granted platform.Role,
	rankName string,
	points int64,
	isAuthority bool,
) {
	previous := m.previousRank(member, granted.ID)
	body := fmt.Sprintf(
		"%s has been promoted to a higher rank!\n\nPrevious Rank: %s\nNew Rank: %s",
		member.Name(),
		previous,
		rankName,
	)
	if !isAuthority {
		body += fmt.Sprintf("\nPoints: %d", points)
	}
	var primary uint64
	if config := m.channelConfig(member.CommunityID); config != nil {
		primary = config.NotificationChannel
	}
	msg := platform.Message{
		Title:     "Rank Promotion",
		Body:      body,
		MentionID: member.MemberID,
	}
	m.dispatcher.Deliver(ctx, member.CommunityID, primary, msg)
	// Members also get the good news directly
	m.dispatcher.DirectMessage(ctx, member.MemberID, msg)
	m.metrics.promotions.Inc()
	m.logger.Info(
		"promotion announced",
		"component", "lifecycle",
		"community", member.CommunityID,
		"member", member.MemberID,
		"rank", rankName,
		"previous", previous,
	)
}

// previousRank picks the display name for the member's standing before this
// grant: their highest-positioned ranked role other than the granted one.
func (m *Manager) previousRank(
	member platform.MemberSnapshot,
	grantedRoleId uint64,
) string {
	best := ""
	bestPosition := -1
	for _, role := range member.Roles {
		if role.ID == grantedRoleId || !m.registry.IsRanked(role.ID) {
			continue
		}
		if role.Position > bestPosition {
			bestPosition = role.Position
			best = role.Name
		}
	}
	if best == "" {
		return "None"
	}
	return best
}

func (m *Manager) channelConfig(communityId uint64) *models.ChannelConfig {
	config, err := m.db.ChannelConfig(communityId)
	if err != nil {
		m.logger.Warn(
			"failed to load channel config",
			"component", "lifecycle",
			"community", communityId,
			"error", err,
		)
		return nil
	}
	return config
}
