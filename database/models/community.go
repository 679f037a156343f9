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

package models

// ChannelConfig holds per-community destination channels for each notice
// kind. A zero channel ID means unconfigured; the dispatcher falls back to
// conventional channel names.
type ChannelConfig struct {
	ID                   uint   `gorm:"primarykey"`
	CommunityID          uint64 `gorm:"uniqueIndex"`
	NotificationChannel  uint64
	RetirementChannel    uint64
	FuneralChannel       uint64
	ReincarnationChannel uint64
}

func (ChannelConfig) TableName() string {
	return "channel_configs"
}

// MemberStat carries a member's accumulated point total within a community.
// The engine only reads totals; point awards happen elsewhere.
type MemberStat struct {
	ID          uint   `gorm:"primarykey"`
	CommunityID uint64 `gorm:"uniqueIndex:idx_member_stat_community_member"`
	MemberID    uint64 `gorm:"uniqueIndex:idx_member_stat_community_member"`
	TotalPoints int64
}

func (MemberStat) TableName() string {
	return "member_stats"
}
