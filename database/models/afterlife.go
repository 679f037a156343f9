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

import "time"

// DepartedMember preserves a member's profile as of their most recent
// departure from a community. One row per (member, community); each new
// departure overwrites the snapshot, bumps TimesLeft, and begins a new
// return cycle (ReturnedAt reset to NULL).
type DepartedMember struct {
	ID               uint   `gorm:"primarykey"`
	MemberID         uint64 `gorm:"uniqueIndex:idx_departed_member_community"`
	CommunityID      uint64 `gorm:"uniqueIndex:idx_departed_member_community"`
	Username         string
	DisplayName      string
	AvatarURL        string
	HighestRole      string
	TotalPoints      int64
	JoinDate         time.Time
	LeaveDate        time.Time
	TimesLeft        int
	HadTrackableRole bool
	FuneralMessage   string
	ReturnedAt       *time.Time
}

func (DepartedMember) TableName() string {
	return "departed_members"
}

// PendingReincarnation marks a returned member whose reincarnation notice is
// deferred until they regain the trackable role. Claimed (deleted) exactly
// once when the notice goes out.
type PendingReincarnation struct {
	ID          uint   `gorm:"primarykey"`
	MemberID    uint64 `gorm:"uniqueIndex:idx_pending_reincarnation_member"`
	CommunityID uint64 `gorm:"uniqueIndex:idx_pending_reincarnation_member"`
	ReturnDate  time.Time
}

func (PendingReincarnation) TableName() string {
	return "pending_reincarnations"
}
