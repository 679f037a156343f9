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
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/sectworks/warden/platform"
)

// embedColor is Discord's blurple, used for every notice embed.
const embedColor = 0x5865F2

// ResolveChannel looks up a channel, nil when it does not exist.
func (a *Adapter) ResolveChannel(
	ctx context.Context,
	communityId uint64,
	channelId uint64,
) (*platform.Channel, error) {
	channelIdStr := formatSnowflake(channelId)
	channel, err := a.session.State.Channel(channelIdStr)
	if err != nil {
		channel, err = a.session.Channel(
			channelIdStr,
			discordgo.WithContext(ctx),
		)
		if err != nil {
			var restErr *discordgo.RESTError
			if errors.As(err, &restErr) && restErr.Response != nil &&
				restErr.Response.StatusCode == http.StatusNotFound {
				return nil, nil
			}
			return nil, fmt.Errorf("fetch channel: %w", err)
		}
	}
	if channel.GuildID != formatSnowflake(communityId) {
		return nil, nil
	}
	return &platform.Channel{
		Name:     channel.Name,
		ID:       parseSnowflake(channel.ID),
		Postable: a.canPost(channel),
	}, nil
}

// Channels lists the community's text channels in display order.
func (a *Adapter) Channels(
	ctx context.Context,
	communityId uint64,
) ([]platform.Channel, error) {
	guildId := formatSnowflake(communityId)
	var channels []*discordgo.Channel
	if guild, err := a.session.State.Guild(guildId); err == nil &&
		len(guild.Channels) > 0 {
		channels = guild.Channels
	} else {
		channels, err = a.session.GuildChannels(
			guildId,
			discordgo.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("list guild channels: %w", err)
		}
	}
	text := sortedTextChannels(channels)
	ret := make([]platform.Channel, 0, len(text))
	for _, channel := range text {
		ret = append(ret, platform.Channel{
			Name:     channel.Name,
			ID:       parseSnowflake(channel.ID),
			Postable: a.canPost(channel),
		})
	}
	return ret, nil
}

// PostMessage renders a notice as an embed, with a plain mention above it
// when the notice addresses a member.
func (a *Adapter) PostMessage(
	ctx context.Context,
	channelId uint64,
	msg platform.Message,
) error {
	_, err := a.session.ChannelMessageSendComplex(
		formatSnowflake(channelId),
		buildMessageSend(msg),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("send channel message: %w", err)
	}
	return nil
}

// SendDirectMessage opens (or reuses) the member's DM channel and posts the
// notice there. Members with DMs disabled surface as an error the caller is
// expected to swallow.
func (a *Adapter) SendDirectMessage(
	ctx context.Context,
	memberId uint64,
	msg platform.Message,
) error {
	channel, err := a.session.UserChannelCreate(
		formatSnowflake(memberId),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("open direct message channel: %w", err)
	}
	_, err = a.session.ChannelMessageSendComplex(
		channel.ID,
		buildMessageSend(msg),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("send direct message: %w", err)
	}
	return nil
}

// canPost reports whether the bot can send to a channel. Permission lookup
// failures count as not postable so the dispatcher moves on.
func (a *Adapter) canPost(channel *discordgo.Channel) bool {
	if !textChannel(channel) {
		return false
	}
	self := a.session.State.User
	if self == nil {
		return false
	}
	perms, err := a.session.State.UserChannelPermissions(self.ID, channel.ID)
	if err != nil {
		a.logger.Debug(
			"failed to compute channel permissions",
			"component", "discord",
			"channel", channel.ID,
			"error", err,
		)
		return false
	}
	return perms&discordgo.PermissionSendMessages != 0
}

func textChannel(channel *discordgo.Channel) bool {
	return channel.Type == discordgo.ChannelTypeGuildText ||
		channel.Type == discordgo.ChannelTypeGuildNews
}

func sortedTextChannels(
	channels []*discordgo.Channel,
) []*discordgo.Channel {
	ret := make([]*discordgo.Channel, 0, len(channels))
	for _, channel := range channels {
		if textChannel(channel) {
			ret = append(ret, channel)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Position < ret[j].Position
	})
	return ret
}

func buildMessageSend(msg platform.Message) *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       msg.Title,
				Description: msg.Body,
				Color:       embedColor,
			},
		},
	}
	if msg.MentionID != 0 {
		send.Content = memberMention(msg.MentionID)
	}
	return send
}

func memberMention(memberId uint64) string {
	return "<@" + formatSnowflake(memberId) + ">"
}
