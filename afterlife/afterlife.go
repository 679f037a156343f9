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

// Package afterlife tracks members across departures and returns. Every
// departure is recorded, but ceremony is role-gated: only members who held
// the trackable role when they left get funeral rites, and only they get a
// reincarnation notice on return. A member who returns without the role is
// parked as a pending reincarnation until the role is granted back, at
// which point the deferred notice goes out exactly once.
package afterlife

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sectworks/warden/database"
	"github.com/sectworks/warden/database/models"
	"github.com/sectworks/warden/event"
	"github.com/sectworks/warden/notify"
	"github.com/sectworks/warden/platform"
	"github.com/sectworks/warden/roles"
)

type TrackerConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Database     *database.Database
	Dispatcher   *notify.Dispatcher
	Registry     *roles.Registry
	Points       platform.PointsSource
	PromRegistry prometheus.Registerer
}

// Tracker subscribes to member join/leave/role events and maintains the
// departed-member ledger and its notices.
type Tracker struct {
	logger     *slog.Logger
	eventBus   *event.EventBus
	db         *database.Database
	dispatcher *notify.Dispatcher
	registry   *roles.Registry
	points     platform.PointsSource
	metrics    *trackerMetrics
}

func New(cfg TrackerConfig) (*Tracker, error) {
	if cfg.EventBus == nil {
		return nil, fmt.Errorf("afterlife tracker requires an event bus")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("afterlife tracker requires a database")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("afterlife tracker requires a dispatcher")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("afterlife tracker requires a role registry")
	}
	if cfg.Points == nil {
		return nil, fmt.Errorf("afterlife tracker requires a points source")
	}
	t := &Tracker{
		logger:     cfg.Logger,
		eventBus:   cfg.EventBus,
		db:         cfg.Database,
		dispatcher: cfg.Dispatcher,
		registry:   cfg.Registry,
		points:     cfg.Points,
	}
	if t.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		t.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	t.initMetrics(cfg.PromRegistry)
	// Setup event handlers
	t.eventBus.SubscribeFunc(
		platform.MemberLeftEventType,
		t.handleMemberLeft,
	)
	t.eventBus.SubscribeFunc(
		platform.MemberJoinedEventType,
		t.handleMemberJoined,
	)
	t.eventBus.SubscribeFunc(
		platform.MemberRolesChangedEventType,
		t.handleRolesChanged,
	)
	return t, nil
}

func (t *Tracker) handleMemberLeft(evt event.Event) {
	payload, ok := evt.Data.(platform.MemberLeftEvent)
	if !ok {
		t.logger.Error(
			"unexpected event payload",
			"component", "afterlife",
			"type", evt.Type,
		)
		return
	}
	member := payload.Member
	ctx := context.Background()
	record := t.recordDeparture(ctx, member)
	if record == nil {
		return
	}
	if !record.HadTrackableRole {
		t.logger.Debug(
			"member left without the trackable role, no funeral rites",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
		)
		return
	}
	t.announceFuneral(ctx, member, record)
}

func (t *Tracker) handleMemberJoined(evt event.Event) {
	payload, ok := evt.Data.(platform.MemberJoinedEvent)
	if !ok {
		t.logger.Error(
			"unexpected event payload",
			"component", "afterlife",
			"type", evt.Type,
		)
		return
	}
	member := payload.Member
	ctx := context.Background()
	record, err := t.db.DepartedMember(member.CommunityID, member.MemberID)
	if err != nil {
		t.logger.Error(
			"failed to look up departure record",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return
	}
	if record == nil {
		return
	}
	if !record.HadTrackableRole {
		// Tracked silently: the record keeps counting departures, but a
		// member who left without the role returns without ceremony
		t.logger.Debug(
			"returning member never held the trackable role",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
		)
		return
	}
	if t.registry.HoldsTrackable(member.Roles) {
		t.processReturn(ctx, member, record)
		return
	}
	if err := t.db.AddPendingReincarnation(
		member.CommunityID,
		member.MemberID,
		time.Now(),
	); err != nil {
		t.logger.Error(
			"failed to defer reincarnation",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return
	}
	t.metrics.deferred.Inc()
	t.logger.Info(
		"reincarnation deferred until the trackable role is granted",
		"component", "afterlife",
		"community", member.CommunityID,
		"member", member.MemberID,
	)
}

func (t *Tracker) handleRolesChanged(evt event.Event) {
	payload, ok := evt.Data.(platform.MemberRolesChangedEvent)
	if !ok {
		t.logger.Error(
			"unexpected event payload",
			"component", "afterlife",
			"type", evt.Type,
		)
		return
	}
	added, _ := roles.Diff(payload.Before, payload.Member.Roles)
	if !platform.HasRole(added, t.registry.TrackableRoleID()) {
		return
	}
	member := payload.Member
	ctx := context.Background()
	// Claiming the marker first makes the deferred notice at-most-once even
	// when the grant is delivered more than once
	claimed, err := t.db.ClaimPendingReincarnation(
		member.CommunityID,
		member.MemberID,
	)
	if err != nil {
		t.logger.Error(
			"failed to claim pending reincarnation",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return
	}
	if !claimed {
		return
	}
	record, err := t.db.DepartedMember(member.CommunityID, member.MemberID)
	if err != nil {
		t.logger.Error(
			"failed to look up departure record",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return
	}
	if record == nil {
		t.logger.Warn(
			"pending reincarnation without a departure record",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
		)
		return
	}
	if _, err := t.db.ClaimReturn(
		member.CommunityID,
		member.MemberID,
		time.Now(),
	); err != nil {
		t.logger.Warn(
			"failed to record return time",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
	}
	t.announceReincarnation(ctx, member, record)
}

// recordDeparture snapshots the departing member into the ledger. Returns
// the saved record, nil when the store failed.
func (t *Tracker) recordDeparture(
	ctx context.Context,
	member platform.MemberSnapshot,
) *models.DepartedMember {
	prior, err := t.db.DepartedMember(member.CommunityID, member.MemberID)
	if err != nil {
		t.logger.Error(
			"failed to look up departure record",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return nil
	}
	timesLeft := 1
	if prior != nil {
		timesLeft = prior.TimesLeft + 1
	}
	record := &models.DepartedMember{
		MemberID:         member.MemberID,
		CommunityID:      member.CommunityID,
		Username:         member.Username,
		DisplayName:      member.DisplayName,
		AvatarURL:        member.AvatarURL,
		HighestRole:      highestRoleName(member.Roles),
		TotalPoints:      t.memberPoints(ctx, member),
		JoinDate:         member.JoinedAt,
		LeaveDate:        time.Now(),
		TimesLeft:        timesLeft,
		HadTrackableRole: t.registry.HoldsTrackable(member.Roles),
		FuneralMessage:   epitaph(member.Name()),
	}
	if err := t.db.SaveDeparture(record); err != nil {
		t.logger.Error(
			"failed to save departure record",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return nil
	}
	t.metrics.departures.Inc()
	t.logger.Info(
		"departure recorded",
		"component", "afterlife",
		"community", member.CommunityID,
		"member", member.MemberID,
		"times_left", timesLeft,
		"trackable", record.HadTrackableRole,
	)
	return record
}

// processReturn handles a member who rejoined already holding the trackable
// role. The returned_at claim keeps the notice to one per departure cycle.
func (t *Tracker) processReturn(
	ctx context.Context,
	member platform.MemberSnapshot,
	record *models.DepartedMember,
) {
	claimed, err := t.db.ClaimReturn(
		member.CommunityID,
		member.MemberID,
		time.Now(),
	)
	if err != nil {
		t.logger.Error(
			"failed to claim return",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return
	}
	if !claimed {
		t.logger.Debug(
			"return already recorded for this departure cycle",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
		)
		return
	}
	t.announceReincarnation(ctx, member, record)
}

func (t *Tracker) announceFuneral(
	ctx context.Context,
	member platform.MemberSnapshot,
	record *models.DepartedMember,
) {
	name := record.DisplayName
	if name == "" {
		name = record.Username
	}
	body := departureLine(name) + "\n" + departureCycleLine(record.TimesLeft)
	details := make([]string, 0, 3)
	if record.HighestRole != "" {
		details = append(details, "Final Demonic Rank: "+record.HighestRole)
	}
	if record.TotalPoints > 0 {
		details = append(details, fmt.Sprintf(
			"Blood Contribution: %d points", record.TotalPoints,
		))
	}
	if !record.JoinDate.IsZero() {
		days := int(record.LeaveDate.Sub(record.JoinDate).Hours() / 24)
		details = append(details, fmt.Sprintf(
			"Time in Dark Brotherhood: %d days", days,
		))
	}
	if len(details) == 0 {
		details = append(
			details,
			"A demon's soul wanders the forbidden realms beyond mortal comprehension.",
		)
	}
	body += "\n\n" + strings.Join(details, "\n")
	if record.FuneralMessage != "" {
		body += "\n\n" + record.FuneralMessage
	}
	var primary uint64
	if config := t.channelConfig(member.CommunityID); config != nil {
		primary = config.FuneralChannel
	}
	t.dispatcher.Deliver(ctx, member.CommunityID, primary, platform.Message{
		Title: "Funeral Rites",
		Body:  body,
	})
	t.metrics.funerals.Inc()
	t.logger.Info(
		"funeral rites announced",
		"component", "afterlife",
		"community", member.CommunityID,
		"member", member.MemberID,
	)
}

func (t *Tracker) announceReincarnation(
	ctx context.Context,
	member platform.MemberSnapshot,
	record *models.DepartedMember,
) {
	name := member.Name()
	body := returnLine(name) + "\n" + returnCycleLine(record.TimesLeft)
	details := []string{
		"Time in Shadow Realm: " + formatTimeAway(time.Since(record.LeaveDate)),
	}
	if record.HighestRole != "" {
		details = append(details, "Previous Demonic Rank: "+record.HighestRole)
	}
	if record.TotalPoints > 0 {
		details = append(details, fmt.Sprintf(
			"Previous Blood Contribution: %d points", record.TotalPoints,
		))
	}
	body += "\n\n" + strings.Join(details, "\n")
	body += "\n\n" + welcomeLine(name)
	var primary uint64
	if config := t.channelConfig(member.CommunityID); config != nil {
		primary = config.ReincarnationChannel
	}
	t.dispatcher.Deliver(ctx, member.CommunityID, primary, platform.Message{
		Title:     "Reincarnation",
		Body:      body,
		MentionID: member.MemberID,
	})
	t.metrics.reincarnations.Inc()
	t.logger.Info(
		"reincarnation announced",
		"component", "afterlife",
		"community", member.CommunityID,
		"member", member.MemberID,
		"times_left", record.TimesLeft,
	)
}

func (t *Tracker) memberPoints(
	ctx context.Context,
	member platform.MemberSnapshot,
) int64 {
	points, err := t.points.CurrentPoints(
		ctx,
		member.CommunityID,
		member.MemberID,
	)
	if err != nil {
		t.logger.Warn(
			"failed to fetch final point total",
			"component", "afterlife",
			"community", member.CommunityID,
			"member", member.MemberID,
			"error", err,
		)
		return 0
	}
	return points
}

func (t *Tracker) channelConfig(communityId uint64) *models.ChannelConfig {
	config, err := t.db.ChannelConfig(communityId)
	if err != nil {
		t.logger.Warn(
			"failed to load channel config",
			"component", "afterlife",
			"community", communityId,
			"error", err,
		)
		return nil
	}
	return config
}

// highestRoleName picks the most senior role by platform position. Empty
// when the member held no roles.
func highestRoleName(memberRoles []platform.Role) string {
	best := ""
	bestPosition := -1
	for _, role := range memberRoles {
		if role.Position > bestPosition {
			bestPosition = role.Position
			best = role.Name
		}
	}
	return best
}
