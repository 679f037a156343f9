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

package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// auditLogPageSize bounds the single audit page inspected per lookup. Role
// grants are attributed moments after they happen, so the newest page is
// enough.
const auditLogPageSize = 50

// RoleModerator scans the guild's recent role-update audit entries for the
// grant of roleId to memberId and returns the moderator who performed it.
// 0 with a nil error means no matching entry inside the window.
func (a *Adapter) RoleModerator(
	ctx context.Context,
	communityId uint64,
	memberId uint64,
	roleId uint64,
	within time.Duration,
) (uint64, error) {
	auditLog, err := a.session.GuildAuditLog(
		formatSnowflake(communityId),
		"",
		"",
		int(discordgo.AuditLogActionMemberRoleUpdate),
		auditLogPageSize,
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("fetch guild audit log: %w", err)
	}
	target := formatSnowflake(memberId)
	role := formatSnowflake(roleId)
	cutoff := time.Now().Add(-within)
	for _, entry := range auditLog.AuditLogEntries {
		if entry.TargetID != target {
			continue
		}
		created, err := discordgo.SnowflakeTimestamp(entry.ID)
		if err != nil || created.Before(cutoff) {
			continue
		}
		if auditEntryAddsRole(entry, role) {
			return parseSnowflake(entry.UserID), nil
		}
	}
	return 0, nil
}

// auditEntryAddsRole reports whether a member-role-update entry includes
// roleId in its added set. The $add change value arrives as a JSON array of
// partial roles.
func auditEntryAddsRole(
	entry *discordgo.AuditLogEntry,
	roleId string,
) bool {
	for _, change := range entry.Changes {
		if change.Key == nil ||
			*change.Key != discordgo.AuditLogChangeKeyRoleAdd {
			continue
		}
		added, ok := change.NewValue.([]any)
		if !ok {
			continue
		}
		for _, raw := range added {
			role, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := role["id"].(string); ok && id == roleId {
				return true
			}
		}
	}
	return false
}
