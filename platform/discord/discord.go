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

// Package discord implements the platform contracts against the Discord
// gateway and REST API. Gateway member events are translated into bus
// events; the adapter keeps its own last-known member cache because Discord
// omits roles and join time from the leave payload and drops the member
// from session state before handlers run.
package discord

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sectworks/warden/event"
	"github.com/sectworks/warden/platform"
)

type Config struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Token        string
	PromRegistry prometheus.Registerer
}

// Adapter connects the engine to Discord. It implements platform.Adapter.
type Adapter struct {
	logger   *slog.Logger
	eventBus *event.EventBus
	session  *discordgo.Session
	metrics  *adapterMetrics

	mutex   sync.RWMutex
	members map[string]map[string]memberState
}

// memberState is the last-known gateway state for a member, kept so leave
// events can be translated with the roles the member actually held.
type memberState struct {
	roles    []string
	joinedAt time.Time
}

func New(cfg Config) (*Adapter, error) {
	if cfg.EventBus == nil {
		return nil, fmt.Errorf("discord adapter requires an event bus")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord adapter requires a bot token")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	a := &Adapter{
		logger:   cfg.Logger,
		eventBus: cfg.EventBus,
		session:  session,
		members:  make(map[string]map[string]memberState),
	}
	if a.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		a.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	a.initMetrics(cfg.PromRegistry)
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers
	session.StateEnabled = true
	// Setup gateway handlers
	session.AddHandler(a.onReady)
	session.AddHandler(a.onGuildCreate)
	session.AddHandler(a.onGuildMembersChunk)
	session.AddHandler(a.onGuildMemberAdd)
	session.AddHandler(a.onGuildMemberUpdate)
	session.AddHandler(a.onGuildMemberRemove)
	return a, nil
}

// Connect opens the gateway connection. Events flow onto the bus until
// Close.
func (a *Adapter) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (a *Adapter) Close() error {
	if err := a.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	return nil
}

func (a *Adapter) onReady(s *discordgo.Session, evt *discordgo.Ready) {
	a.logger.Info(
		"connected to discord",
		"component", "discord",
		"user", evt.User.Username,
		"guilds", len(evt.Guilds),
	)
}

func (a *Adapter) onGuildCreate(
	s *discordgo.Session,
	evt *discordgo.GuildCreate,
) {
	for _, member := range evt.Members {
		a.rememberMember(evt.ID, member)
	}
	a.logger.Info(
		"guild available",
		"component", "discord",
		"guild", evt.ID,
		"name", evt.Name,
		"members", len(evt.Members),
	)
}

func (a *Adapter) onGuildMembersChunk(
	s *discordgo.Session,
	evt *discordgo.GuildMembersChunk,
) {
	for _, member := range evt.Members {
		a.rememberMember(evt.GuildID, member)
	}
}

func (a *Adapter) onGuildMemberAdd(
	s *discordgo.Session,
	evt *discordgo.GuildMemberAdd,
) {
	if evt.User == nil || evt.User.Bot {
		return
	}
	a.rememberMember(evt.GuildID, evt.Member)
	a.metrics.joins.Inc()
	a.eventBus.PublishAsync(
		platform.MemberJoinedEventType,
		event.NewEvent(
			platform.MemberJoinedEventType,
			platform.MemberJoinedEvent{
				Member: a.snapshotMember(evt.GuildID, evt.Member),
			},
		),
	)
}

func (a *Adapter) onGuildMemberUpdate(
	s *discordgo.Session,
	evt *discordgo.GuildMemberUpdate,
) {
	if evt.User == nil || evt.User.Bot {
		return
	}
	before := evt.BeforeUpdate
	a.rememberMember(evt.GuildID, evt.Member)
	if before == nil {
		// Without the cached previous state a diff would misreport every
		// held role as newly granted. The next update has the cache.
		a.metrics.skippedUpdates.Inc()
		a.logger.Debug(
			"member update without previous state, skipping",
			"component", "discord",
			"guild", evt.GuildID,
			"member", evt.User.ID,
		)
		return
	}
	if slices.Equal(before.Roles, evt.Roles) {
		// Nickname or avatar change, not a role change
		return
	}
	a.metrics.roleChanges.Inc()
	a.eventBus.PublishAsync(
		platform.MemberRolesChangedEventType,
		event.NewEvent(
			platform.MemberRolesChangedEventType,
			platform.MemberRolesChangedEvent{
				Member: a.snapshotMember(evt.GuildID, evt.Member),
				Before: a.resolveRoles(evt.GuildID, before.Roles),
			},
		),
	)
}

func (a *Adapter) onGuildMemberRemove(
	s *discordgo.Session,
	evt *discordgo.GuildMemberRemove,
) {
	if evt.User == nil || evt.User.Bot {
		return
	}
	// The leave payload carries no roles or join time; fall back to the
	// last state the gateway showed us
	cached, ok := a.forgetMember(evt.GuildID, evt.User.ID)
	if !ok {
		a.logger.Debug(
			"member left without cached state",
			"component", "discord",
			"guild", evt.GuildID,
			"member", evt.User.ID,
		)
	}
	snapshot := platform.MemberSnapshot{
		Username:    evt.User.Username,
		DisplayName: displayName(evt.Member),
		AvatarURL:   evt.User.AvatarURL(""),
		Roles:       a.resolveRoles(evt.GuildID, cached.roles),
		JoinedAt:    cached.joinedAt,
		CommunityID: parseSnowflake(evt.GuildID),
		MemberID:    parseSnowflake(evt.User.ID),
	}
	a.metrics.leaves.Inc()
	a.eventBus.PublishAsync(
		platform.MemberLeftEventType,
		event.NewEvent(
			platform.MemberLeftEventType,
			platform.MemberLeftEvent{Member: snapshot},
		),
	)
}

func (a *Adapter) rememberMember(guildId string, member *discordgo.Member) {
	if member == nil || member.User == nil || member.User.Bot {
		return
	}
	a.mutex.Lock()
	defer a.mutex.Unlock()
	guildMembers, ok := a.members[guildId]
	if !ok {
		guildMembers = make(map[string]memberState)
		a.members[guildId] = guildMembers
	}
	guildMembers[member.User.ID] = memberState{
		roles:    slices.Clone(member.Roles),
		joinedAt: member.JoinedAt,
	}
}

func (a *Adapter) forgetMember(
	guildId string,
	memberId string,
) (memberState, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	guildMembers, ok := a.members[guildId]
	if !ok {
		return memberState{}, false
	}
	state, ok := guildMembers[memberId]
	if ok {
		delete(guildMembers, memberId)
	}
	return state, ok
}

func (a *Adapter) snapshotMember(
	guildId string,
	member *discordgo.Member,
) platform.MemberSnapshot {
	return platform.MemberSnapshot{
		Username:    member.User.Username,
		DisplayName: displayName(member),
		AvatarURL:   member.User.AvatarURL(""),
		Roles:       a.resolveRoles(guildId, member.Roles),
		JoinedAt:    member.JoinedAt,
		CommunityID: parseSnowflake(guildId),
		MemberID:    parseSnowflake(member.User.ID),
	}
}

// resolveRoles maps role ids onto named, positioned roles via the guild's
// role table in session state. Unknown ids keep their id with no name.
func (a *Adapter) resolveRoles(
	guildId string,
	roleIds []string,
) []platform.Role {
	var table []*discordgo.Role
	if guild, err := a.session.State.Guild(guildId); err == nil {
		table = guild.Roles
	} else {
		a.logger.Debug(
			"guild not in state, roles resolve without names",
			"component", "discord",
			"guild", guildId,
		)
	}
	return mapRoles(table, roleIds)
}

func mapRoles(table []*discordgo.Role, roleIds []string) []platform.Role {
	byId := make(map[string]*discordgo.Role, len(table))
	for _, role := range table {
		byId[role.ID] = role
	}
	ret := make([]platform.Role, 0, len(roleIds))
	for _, id := range roleIds {
		mapped := platform.Role{ID: parseSnowflake(id)}
		if role, ok := byId[id]; ok {
			mapped.Name = role.Name
			mapped.Position = role.Position
		}
		ret = append(ret, mapped)
	}
	return ret
}

// displayName prefers the per-guild nickname, then the account display
// name, then the username.
func displayName(member *discordgo.Member) string {
	if member == nil || member.User == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
