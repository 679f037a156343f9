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

// Package platform defines the contracts between the engine and the chat
// platform it runs against. The engine consumes these interfaces and reacts
// to the member events published on the event bus; the discord subpackage
// provides the production implementation.
package platform

import (
	"context"
	"time"
)

// Role is a platform role as seen on a member. Position carries the
// platform's display ordering (higher is more senior) so rank-display
// decisions need no further platform calls.
type Role struct {
	Name     string
	ID       uint64
	Position int
}

// RoleIDs extracts the role ids from a role list, preserving order.
func RoleIDs(roles []Role) []uint64 {
	ids := make([]uint64, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	return ids
}

// HasRole reports whether a role list contains the given role id.
func HasRole(roles []Role, id uint64) bool {
	for _, role := range roles {
		if role.ID == id {
			return true
		}
	}
	return false
}

// MemberSnapshot is a member's state as captured at event time.
type MemberSnapshot struct {
	Username    string
	DisplayName string
	AvatarURL   string
	Roles       []Role
	JoinedAt    time.Time
	CommunityID uint64
	MemberID    uint64
}

// Name returns the member's display name, falling back to the username.
func (m MemberSnapshot) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}

// Channel is a postable destination within a community. Postable reflects
// whether the bot holds send permission at lookup time.
type Channel struct {
	Name     string
	ID       uint64
	Postable bool
}

// Message is the content contract for notices. Rendering beyond plain
// title/body is left to the adapter. MentionID, when non-zero, asks the
// adapter to address the member in whatever form the platform supports.
type Message struct {
	Title     string
	Body      string
	MentionID uint64
}

// PointsSource provides a member's current point total. The engine treats
// lookup failures as "not qualified" rather than propagating them.
type PointsSource interface {
	CurrentPoints(
		ctx context.Context,
		communityID uint64,
		memberID uint64,
	) (int64, error)
}

// Directory is the authoritative view of live membership. The persisted
// assignment log orders holders; it never defines who currently holds a
// role.
type Directory interface {
	// RoleHolders returns the members currently holding a role.
	RoleHolders(
		ctx context.Context,
		communityID uint64,
		roleID uint64,
	) ([]uint64, error)
	// RevokeRole removes a role from a member. The engine only ever
	// revokes; it never grants.
	RevokeRole(
		ctx context.Context,
		communityID uint64,
		memberID uint64,
		roleID uint64,
		reason string,
	) error
}

// Messenger delivers notices to channels and members.
type Messenger interface {
	// ResolveChannel looks up a single channel, nil when it does not exist.
	ResolveChannel(
		ctx context.Context,
		communityID uint64,
		channelID uint64,
	) (*Channel, error)
	// Channels lists the community's text channels in display order.
	Channels(ctx context.Context, communityID uint64) ([]Channel, error)
	PostMessage(ctx context.Context, channelID uint64, msg Message) error
	SendDirectMessage(ctx context.Context, memberID uint64, msg Message) error
}

// AuditSource attributes a recent role grant to the moderator who performed
// it. Best effort: 0 with a nil error means nothing was found within the
// window.
type AuditSource interface {
	RoleModerator(
		ctx context.Context,
		communityID uint64,
		memberID uint64,
		roleID uint64,
		within time.Duration,
	) (uint64, error)
}

// Adapter is the full surface the engine expects from a platform
// integration: the collaborator contracts plus connection lifecycle.
// Implementations publish member events onto the engine's event bus while
// connected.
type Adapter interface {
	Directory
	Messenger
	AuditSource
	Connect(ctx context.Context) error
	Close() error
}
