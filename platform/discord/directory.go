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

	"github.com/bwmarrin/discordgo"
)

// guildMembersPageSize is Discord's maximum page size for member listing.
const guildMembersPageSize = 1000

// RoleHolders returns the members currently holding a role. Session state
// answers when it has the full member list; otherwise the member list is
// paged over REST.
func (a *Adapter) RoleHolders(
	ctx context.Context,
	communityId uint64,
	roleId uint64,
) ([]uint64, error) {
	guildId := formatSnowflake(communityId)
	target := formatSnowflake(roleId)
	if guild, err := a.session.State.Guild(guildId); err == nil &&
		guild.MemberCount > 0 &&
		len(guild.Members) >= guild.MemberCount {
		return holdersWithRole(guild.Members, target), nil
	}
	var ret []uint64
	after := ""
	for {
		members, err := a.session.GuildMembers(
			guildId,
			after,
			guildMembersPageSize,
			discordgo.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("list guild members: %w", err)
		}
		if len(members) == 0 {
			break
		}
		ret = append(ret, holdersWithRole(members, target)...)
		after = members[len(members)-1].User.ID
		if len(members) < guildMembersPageSize {
			break
		}
	}
	return ret, nil
}

// RevokeRole removes a role from a member, recording the reason in the
// guild's audit log.
func (a *Adapter) RevokeRole(
	ctx context.Context,
	communityId uint64,
	memberId uint64,
	roleId uint64,
	reason string,
) error {
	err := a.session.GuildMemberRoleRemove(
		formatSnowflake(communityId),
		formatSnowflake(memberId),
		formatSnowflake(roleId),
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(reason),
	)
	if err != nil {
		return fmt.Errorf("remove guild member role: %w", err)
	}
	return nil
}

func holdersWithRole(
	members []*discordgo.Member,
	roleId string,
) []uint64 {
	var ret []uint64
	for _, member := range members {
		if member.User == nil {
			continue
		}
		for _, id := range member.Roles {
			if id == roleId {
				ret = append(ret, parseSnowflake(member.User.ID))
				break
			}
		}
	}
	return ret
}
