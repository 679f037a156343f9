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

package platform

import (
	"github.com/sectworks/warden/event"
)

const (
	// MemberJoinedEventType is emitted when a member joins a community
	MemberJoinedEventType event.EventType = "platform.member_joined"

	// MemberLeftEventType is emitted when a member leaves, is kicked, or is
	// banned; the platform does not distinguish these on the way out
	MemberLeftEventType event.EventType = "platform.member_left"

	// MemberRolesChangedEventType is emitted when a member's role set
	// changes. Consumers diff Before against Member.Roles
	MemberRolesChangedEventType event.EventType = "platform.member_roles_changed"
)

// MemberJoinedEvent is the payload for MemberJoinedEventType. Roles on the
// snapshot are the roles held at join time, which the platform may have
// restored from a previous membership.
type MemberJoinedEvent struct {
	Member MemberSnapshot
}

// MemberLeftEvent is the payload for MemberLeftEventType. The snapshot is
// the last state the platform reported before the member left.
type MemberLeftEvent struct {
	Member MemberSnapshot
}

// MemberRolesChangedEvent is the payload for MemberRolesChangedEventType.
// Member.Roles is the post-change set; Before is the pre-change set.
type MemberRolesChangedEvent struct {
	Member MemberSnapshot
	Before []Role
}
